package policy

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
)

// Random selects actions uniformly at random
type Random struct {
	actions int
	rng     *rand.Rand
}

// NewRandom returns a new Random policy over the given number of
// actions
func NewRandom(seed uint64, actions int) *Random {
	return &Random{actions, rand.New(rand.NewSource(seed))}
}

// SelectAction selects an action uniformly at random
func (r *Random) SelectAction(timestep.TimeStep) environment.Action {
	return environment.Action(r.rng.Intn(r.actions))
}
