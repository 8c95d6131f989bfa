package executor

import "github.com/aidf-dev/aidf/internal/types"

// Observer carries the optional, fire-and-forget callbacks an executor run
// invokes as it progresses (spec §4.5). Every field may be nil.
type Observer struct {
	OnIteration func(state *types.ExecutorState)
	OnPhase     func(phase string, iteration int)
	OnOutput    func(chunk string)
	// OnAskUser is invoked for an ASK_USER scope decision; its return
	// value decides approval (true) or denial (false). A nil OnAskUser
	// always denies.
	OnAskUser func(files []string, reason string) bool
}

func (o Observer) phase(name string, iteration int) {
	if o.OnPhase != nil {
		o.OnPhase(name, iteration)
	}
}

func (o Observer) iteration(state *types.ExecutorState) {
	if o.OnIteration != nil {
		o.OnIteration(state)
	}
}

func (o Observer) output(chunk string) {
	if o.OnOutput != nil {
		o.OnOutput(chunk)
	}
}

func (o Observer) askUser(files []string, reason string) bool {
	if o.OnAskUser == nil {
		return false
	}
	return o.OnAskUser(files, reason)
}
