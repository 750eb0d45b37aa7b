// Package pitchflow models the business pitch wizard as a linear sequence
// of steps. Only the verify step may be entered without a verified UID.
package pitchflow

// Step is one screen of the wizard.
type Step string

// Wizard steps in order.
const (
	StepVerify       Step = "verify"
	StepGuidelines   Step = "guidelines"
	StepRequirements Step = "requirements"
	StepSubmit       Step = "submit"
	StepSuccess      Step = "success"
)

var order = []Step{StepVerify, StepGuidelines, StepRequirements, StepSubmit, StepSuccess}

// Parse maps a path segment to a step.
func Parse(s string) (Step, bool) {
	for _, st := range order {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Next returns the step that follows s. Success wraps to verify.
func (s Step) Next() Step {
	for i, st := range order {
		if st == s && i+1 < len(order) {
			return order[i+1]
		}
	}
	return StepVerify
}

// RequiresUID reports whether entering s needs a verified delegate.
func (s Step) RequiresUID() bool {
	return s != StepVerify && s != ""
}

// State is what a wizard screen renders.
type State struct {
	Step  Step
	UID   string
	Name  string
	Error string
}

// Advance completes step from. When the delegate is not verified the wizard
// restarts at verify, carrying errMsg.
func Advance(from Step, uid, name string, verified bool, errMsg string) State {
	if !verified {
		return State{Step: StepVerify, UID: uid, Error: errMsg}
	}
	next := from.Next()
	if next == StepSuccess {
		uid = ""
	}
	return State{Step: next, UID: uid, Name: name}
}

// Stay re-renders from with an error, keeping the verified UID.
func Stay(from Step, uid, name, errMsg string) State {
	return State{Step: from, UID: uid, Name: name, Error: errMsg}
}
