// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how action
// values are updated.
//
// The Learner and Policy of an Agent should share the same action
// values so that any changes the Learner makes are reflected in the
// actions the Policy chooses.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action environment.Action, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// TdError returns the TD error on a transition
	TdError(t timestep.Transition) float64

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. Agents usually have a
// target and behaviour policy.
type Policy interface {
	SelectAction(t timestep.TimeStep) environment.Action
}

// EGreedyPolicy is a Policy which selects a random action with
// probability ε and the greedy action otherwise. The value of ε can be
// changed between episodes to implement exploration schedules.
type EGreedyPolicy interface {
	Policy
	Epsilon() float64
	SetEpsilon(float64)
}
