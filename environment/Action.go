package environment

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/timestep"
)

// Action is one of the four cardinal moves an agent can make on a grid
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// NumActions is the number of discrete actions available
const NumActions int = 4

// Actions lists all valid actions in index order
var Actions = []Action{Up, Down, Left, Right}

// Valid returns whether the Action is one of the four enumerated moves
func (a Action) Valid() bool {
	return a >= Up && a <= Right
}

// Displacement returns the unit displacement (dx, dy) of the Action.
// Up increases y and Right increases x.
func (a Action) Displacement() timestep.State {
	switch a {
	case Up:
		return timestep.State{X: 0, Y: 1}
	case Down:
		return timestep.State{X: 0, Y: -1}
	case Left:
		return timestep.State{X: -1, Y: 0}
	case Right:
		return timestep.State{X: 1, Y: 0}
	}
	panic(fmt.Sprintf("displacement: invalid action %d", int(a)))
}

func (a Action) String() string {
	switch a {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
