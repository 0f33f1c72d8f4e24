package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
)

// QLearner implements the learning part of the one-step tabular
// Q-learning algorithm. On each update,
//
//	Q(s, a) += α * (r + γ * max_a' Q(s', a') - Q(s, a))
//
// where the update is written only to the state in which the action
// was taken.
type QLearner struct {
	table        *qtable.QTable
	learningRate float64
	discount     float64

	step     timestep.TimeStep
	action   environment.Action
	nextStep timestep.TimeStep
	observed bool
}

// NewQLearner creates a new QLearner which updates the values in table
func NewQLearner(table *qtable.QTable, learningRate,
	discount float64) (*QLearner, error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("newQLearner: learning rate must be "+
			"positive, got %v", learningRate)
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("newQLearner: discount %v not in [0, 1]",
			discount)
	}
	return &QLearner{
		table:        table,
		learningRate: learningRate,
		discount:     discount,
	}, nil
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep is not first: %v", t)
	}
	q.step = t
	q.observed = false
	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (q *QLearner) Observe(action environment.Action,
	nextStep timestep.TimeStep) error {
	if !action.Valid() {
		return fmt.Errorf("observe: invalid action %d", int(action))
	}
	q.action = action
	q.nextStep = nextStep
	q.observed = true
	return nil
}

// Step updates the action value of the last observed transition
func (q *QLearner) Step() error {
	if !q.observed {
		return fmt.Errorf("step: no transition observed")
	}

	t := timestep.NewTransition(q.step, int(q.action), q.nextStep)
	delta := q.learningRate * q.TdError(t)
	q.table.Add(t.State, t.Action, delta)

	q.step = q.nextStep
	q.observed = false
	return nil
}

// TdError returns the one-step Q-learning TD error of a transition
func (q *QLearner) TdError(t timestep.Transition) float64 {
	target := t.Reward + q.discount*q.table.Max(t.NextState)
	return target - q.table.At(t.State, t.Action)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {
	q.observed = false
}
