// Package conversation implements message-history trimming for providers
// that carry an explicit conversation window across iterations.
package conversation

import "math"

// Message is an opaque role/content pair.
type Message struct {
	Role    string
	Content string
}

// Summarizer condenses evicted messages into a short summary string. A
// returned error is treated as summarizer failure: trimming falls back to
// plain eviction silently.
type Summarizer func(evicted []Message) (string, error)

// Config controls the trimming policy.
type Config struct {
	MaxMessages     int // default 100, 0 disables trimming entirely
	PreserveFirstN  int // default 1
	PreserveLastN   int // default 20
	SummarizeOnTrim bool
}

// DefaultConfig returns the spec's default window configuration.
func DefaultConfig() Config {
	return Config{MaxMessages: 100, PreserveFirstN: 1, PreserveLastN: 20}
}

// Window applies Config across the lifetime of one conversation, tracking
// cumulative evictions since the last inserted summary.
type Window struct {
	Config          Config
	Summarize       Summarizer
	evictedSinceSum int
	pendingEvicted  []Message
}

// NewWindow constructs a Window with cfg and an optional summarizer.
func NewWindow(cfg Config, summarize Summarizer) *Window {
	return &Window{Config: cfg, Summarize: summarize}
}

// Trim applies the window policy to msgs and returns the resulting message
// list, per spec §4.4.
func (w *Window) Trim(msgs []Message) []Message {
	cfg := w.Config
	if cfg.MaxMessages == 0 || len(msgs) <= cfg.MaxMessages {
		return msgs
	}

	firstN := cfg.PreserveFirstN
	lastN := cfg.PreserveLastN
	if firstN > len(msgs) {
		firstN = len(msgs)
	}
	if lastN > len(msgs)-firstN {
		lastN = len(msgs) - firstN
	}
	if lastN < 0 {
		lastN = 0
	}

	head := msgs[:firstN]
	tail := msgs[len(msgs)-lastN:]
	middle := msgs[firstN : len(msgs)-lastN]

	if firstN+lastN >= cfg.MaxMessages {
		w.recordEviction(middle)
		return append(append([]Message{}, head...), tail...)
	}

	keepCount := cfg.MaxMessages - firstN - lastN
	var kept, evicted []Message
	if keepCount >= len(middle) {
		kept = middle
	} else {
		evicted = middle[:len(middle)-keepCount]
		kept = middle[len(middle)-keepCount:]
	}
	w.recordEviction(evicted)

	result := append([]Message{}, head...)
	if summary, ok := w.maybeSummarize(); ok {
		result = append(result, Message{Role: "assistant", Content: "[Conversation Summary] " + summary})
	}
	result = append(result, kept...)
	result = append(result, tail...)
	return result
}

func (w *Window) recordEviction(evicted []Message) {
	w.evictedSinceSum += len(evicted)
	w.pendingEvicted = append(w.pendingEvicted, evicted...)
}

// maybeSummarize invokes the summarizer once the cumulative eviction count
// reaches 10, resetting the counter on success. Summarizer absence or
// failure is a silent no-op (plain eviction already applied by the caller).
func (w *Window) maybeSummarize() (string, bool) {
	if !w.Config.SummarizeOnTrim || w.Summarize == nil {
		return "", false
	}
	if w.evictedSinceSum < 10 {
		return "", false
	}
	summary, err := w.Summarize(w.pendingEvicted)
	if err != nil {
		return "", false
	}
	w.evictedSinceSum = 0
	w.pendingEvicted = nil
	return summary, true
}

// EstimateTokens walks message role/content pairs and returns
// ceil(totalChars/4).
func EstimateTokens(msgs []Message) int {
	total := 0
	for _, m := range msgs {
		total += len(m.Role) + len(m.Content)
	}
	if total == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / 4.0))
}
