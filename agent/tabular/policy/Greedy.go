package policy

import "github.com/samuelfneumann/gradgrid/agent/tabular/qtable"

// NewGreedy creates a new Greedy policy
func NewGreedy(seed uint64, table *qtable.QTable) *EGreedy {
	return NewEGreedy(0.0, seed, table)
}
