package environment

import "github.com/samuelfneumann/gradgrid/timestep"

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits. Episodes ended by a StepLimit are truncated.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is timestep.Timeout. TimeSteps
// that are already last are left untouched.
func (s StepLimit) End(t *timestep.TimeStep) bool {
	if t.Last() {
		return true
	}
	if t.Number >= s.episodeSteps {
		t.StepType = timestep.Last
		t.SetEnd(timestep.Timeout)
		return true
	}
	return false
}

// Steps returns the step budget of the StepLimit
func (s StepLimit) Steps() int {
	return s.episodeSteps
}
