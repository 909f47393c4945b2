package submission

import "testing"

func TestFlowBeginIgnoresInFlightCycle(t *testing.T) {
	f := newFlow()
	if !f.begin() {
		t.Fatal("expected the first begin to succeed")
	}
	if f.begin() {
		t.Fatal("expected a second begin during the cycle to be ignored")
	}
	f.finish(StepTerminal)
	if !f.begin() {
		t.Fatal("expected begin after a finished cycle to succeed")
	}
}

func TestFlowBeginAfterValidationFailure(t *testing.T) {
	f := newFlow()
	f.begin()
	f.backToEditing()
	if !f.begin() {
		t.Fatal("expected begin to succeed after returning to editing")
	}
}

func TestFlowStepIsMonotonicWithinCycle(t *testing.T) {
	f := newFlow()
	f.begin()
	f.advance(StateSubmitting, StepTransition)
	if got := f.currentStep(); got != StepTransition {
		t.Fatalf("expected step %d, got %d", StepTransition, got)
	}
	// A later advance with a lower step must not move the indicator back.
	f.advance(StateRedirectingCRM, StepInput)
	if got := f.currentStep(); got != StepTransition {
		t.Fatalf("expected step to stay at %d, got %d", StepTransition, got)
	}
	f.finish(StepTerminal)
	if got := f.currentStep(); got != StepTerminal {
		t.Fatalf("expected terminal step, got %d", got)
	}
}

func TestFlowStepResetsOnNewCycle(t *testing.T) {
	f := newFlow()
	f.begin()
	f.finish(StepTerminal)
	f.begin()
	if got := f.currentStep(); got != StepInput {
		t.Fatalf("expected a fresh cycle to reset to step %d, got %d", StepInput, got)
	}
}
