package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeMessages(n int) []Message {
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = Message{Role: "user", Content: string(rune('a' + i%26))}
	}
	return msgs
}

func TestTrimPreservesHeadAndTail(t *testing.T) {
	cfg := Config{MaxMessages: 10, PreserveFirstN: 2, PreserveLastN: 3}
	w := NewWindow(cfg, nil)
	msgs := makeMessages(50)

	out := w.Trim(msgs)
	require.Equal(t, msgs[:2], out[:2])
	require.Equal(t, msgs[len(msgs)-3:], out[len(out)-3:])
	require.LessOrEqual(t, len(out), 10)
}

func TestTrimNoopUnderCap(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWindow(cfg, nil)
	msgs := makeMessages(5)
	out := w.Trim(msgs)
	require.Equal(t, msgs, out)
}

func TestTrimZeroCapDisables(t *testing.T) {
	cfg := Config{MaxMessages: 0}
	w := NewWindow(cfg, nil)
	msgs := makeMessages(500)
	out := w.Trim(msgs)
	require.Equal(t, msgs, out)
}

func TestEstimateTokensMonotone(t *testing.T) {
	require.Equal(t, 0, EstimateTokens(nil))
	short := EstimateTokens([]Message{{Role: "u", Content: "hi"}})
	long := EstimateTokens([]Message{{Role: "u", Content: "hello world this is longer"}})
	require.Less(t, short, long)
}
