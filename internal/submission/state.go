package submission

import "sync"

// State is where a submission lifecycle currently sits.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateSubmitting
	StateRedirectingCRM
	StateRedirectingBot
	StateCompleted
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateRedirectingCRM:
		return "redirecting_crm"
	case StateRedirectingBot:
		return "redirecting_bot"
	case StateCompleted:
		return "completed"
	default:
		return "terminal"
	}
}

// Outcome is the terminal classification of one submission attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeEmailFailed    Outcome = "email_failed"
	OutcomeCrmFailed      Outcome = "crm_failed"
	OutcomeRedirectFailed Outcome = "redirect_failed"
)

// Form steps shown in the page's step indicator.
const (
	StepInput      = 1
	StepTransition = 2
	StepTerminal   = 3
)

// flow tracks the lifecycle of one (form, session) pair. The step only moves
// forward within a cycle and resets when a new cycle begins.
type flow struct {
	mu    sync.Mutex
	state State
	step  int
}

func newFlow() *flow {
	return &flow{state: StateEditing, step: StepInput}
}

// begin starts a new submission cycle. It returns false while an earlier
// cycle is still in flight; those attempts are ignored.
func (f *flow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing && f.state != StateTerminal {
		return false
	}
	f.state = StateValidating
	f.step = StepInput
	return true
}

// backToEditing returns the flow to the editable state after a validation
// failure. No side effects have happened yet.
func (f *flow) backToEditing() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateEditing
	f.step = StepInput
}

// advance moves to the given state and bumps the step monotonically.
func (f *flow) advance(state State, step int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	if step > f.step {
		f.step = step
	}
}

// finish ends the cycle at the given step. The next begin() starts a fresh
// cycle.
func (f *flow) finish(step int) {
	f.advance(StateTerminal, step)
}

func (f *flow) currentStep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}
