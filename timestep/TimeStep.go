// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. Only TimeSteps with StepType
// Last have a meaningful EndType.
type EndType int

const (
	// Unended is the EndType of any non-terminal TimeStep
	Unended EndType = iota

	// TerminalStateReached denotes that the goal was reached
	TerminalStateReached

	// Failure denotes that the episode ended in a failure state, such
	// as an obstacle
	Failure

	// Timeout denotes that the episode was cut off by a step budget.
	// Episodes ending this way are truncated, not terminated.
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Failure:
		return "Failure"
	case Timeout:
		return "Timeout"
	default:
		return "Unended"
	}
}

// State is the cell (x, y) of a grid occupied by the agent
type State struct {
	X, Y int
}

func (s State) String() string {
	return fmt.Sprintf("(%d, %d)", s.X, s.Y)
}

// Info holds diagnostic information about a TimeStep which is not
// consumed by any learning update
type Info struct {
	// DistanceToGoal is the vector difference goal - Observation
	DistanceToGoal State
	Life           int
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Observation State
	Number      int
	Info        Info
	endType     EndType
}

// New returns a new TimeStep
func New(t StepType, r float64, o State, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Observation: o, Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the reason the episode ended
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns the reason the episode ended
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminated returns whether the episode ended due to the task itself,
// either by reaching the goal or by failing
func (t *TimeStep) Terminated() bool {
	return t.Last() && (t.endType == TerminalStateReached ||
		t.endType == Failure)
}

// Truncated returns whether the episode was cut off by a step budget
func (t *TimeStep) Truncated() bool {
	return t.Last() && t.endType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  State: %v  |  Reward:  %.2f  |  " +
		"Step Number:  %v  |  End: %v"

	return fmt.Sprintf(str, t.StepType, t.Observation, t.Reward, t.Number,
		t.endType)
}
