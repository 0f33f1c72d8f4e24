// Package policy implements policies over tabular action values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
	"github.com/samuelfneumann/gradgrid/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a QTable. With
// probability ε an action is sampled uniformly at random, otherwise
// the action with the highest value is taken, breaking ties by the
// lowest action index.
type EGreedy struct {
	table   *qtable.QTable
	epsilon float64
	rng     *rand.Rand
}

// NewEGreedy constructs a new EGreedy policy, where e=epislon is the
// probability with which a random action is selected
func NewEGreedy(e float64, seed uint64, table *qtable.QTable) *EGreedy {
	if e < 0 || e > 1 {
		panic(fmt.Sprintf("newEGreedy: epsilon %v not in [0, 1]", e))
	}
	return &EGreedy{
		table:   table,
		epsilon: e,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SelectAction selects and action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) environment.Action {
	if p.epsilon > 0 && p.rng.Float64() < p.epsilon {
		return environment.Action(p.rng.Intn(p.table.Actions()))
	}
	return environment.Action(p.table.ArgMax(t.Observation))
}

// Epsilon returns the probability of selecting a random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the probability of selecting a random action. The
// probability is clipped to [0, 1].
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = floatutils.Clip(e, 0, 1)
}

// Table returns the action values the policy acts greedily with
// respect to
func (p *EGreedy) Table() *qtable.QTable {
	return p.table
}
