// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"github.com/samuelfneumann/gradgrid/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() timestep.State
}

// Ender determines when episodes should end. If an episode should
// end, End() modifies the argument TimeStep so that its StepType is
// timestep.Last and its EndType describes why the episode ended.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some environment
type Task interface {
	Ender
	GetReward(state timestep.State, a Action, nextState timestep.State) float64
	AtGoal(state timestep.State) bool
	Min() float64 // Minimum attainable reward
	Max() float64 // Maximum attainable reward
}

// Environment implements a simualted environment, which includes a Task to
// complete
type Environment interface {
	Task
	Reset() (timestep.TimeStep, error) // Resets between episodes
	Step(action Action) (timestep.TimeStep, bool, error)
	CurrentTimeStep() timestep.TimeStep
	ObservationSpec() Spec
	ActionSpec() Spec
	Render() error
	Close() error
}
