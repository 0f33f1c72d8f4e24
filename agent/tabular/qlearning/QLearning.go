// Package qlearning implements the tabular Q-Learning algorithm.
//
// Q-Learning is an off-policy temporal difference control algorithm.
// The agent behaves ε-greedily with respect to its action values while
// learning the values of the greedy policy.
package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/agent/tabular/policy"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*QLearner
	*policy.EGreedy
	target *policy.EGreedy
	seed   uint64
}

// New creates a new QLearning struct learning action values for env.
// The action values are initialized to zero.
func New(env environment.Environment, c Config, seed uint64) (*QLearning,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	// Get the environment specifications
	obsSpec := env.ObservationSpec()
	if obsSpec.Shape.Len() != 2 || obsSpec.Cardinality != environment.Discrete {
		return nil, fmt.Errorf("new: Q-learning requires discrete 2D " +
			"observations")
	}
	if obsSpec.Count(0) != obsSpec.Count(1) {
		return nil, fmt.Errorf("new: Q-learning requires a square grid, "+
			"got (%d, %d)", obsSpec.Count(0), obsSpec.Count(1))
	}
	actions := env.ActionSpec().Count(0)

	table, err := qtable.New(obsSpec.Count(0), actions)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return NewWithTable(table, c, seed)
}

// NewWithTable creates a new QLearning struct which learns the action
// values in table
func NewWithTable(table *qtable.QTable, c Config, seed uint64) (*QLearning,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newWithTable: %v", err)
	}

	behaviour := policy.NewEGreedy(c.Epsilon, seed, table)
	target := policy.NewGreedy(seed, table)
	learner, err := NewQLearner(table, c.LearningRate, c.Discount)
	if err != nil {
		return nil, fmt.Errorf("newWithTable: %v", err)
	}

	return &QLearning{learner, behaviour, target, seed}, nil
}

// Table returns the action values learned by the agent
func (q *QLearning) Table() *qtable.QTable {
	return q.QLearner.table
}

// TargetPolicy returns the greedy policy whose values are learned
func (q *QLearning) TargetPolicy() *policy.EGreedy {
	return q.target
}
