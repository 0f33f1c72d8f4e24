package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
)

// SingleStart always starts episodes in the same cell
type SingleStart struct {
	state timestep.State
}

// NewSingleStart returns a Starter which always starts in cell (x, y)
// of a size x size grid
func NewSingleStart(x, y, size int) (*SingleStart, error) {
	state := timestep.State{X: x, Y: y}
	if !inBounds(state, size) {
		return nil, &GridWorldError{
			Op:  "newSingleStart",
			Err: fmt.Errorf("start %v: %w", state, errOutOfBounds),
		}
	}
	return &SingleStart{state}, nil
}

// Start returns the starting state
func (s *SingleStart) Start() timestep.State {
	return s.state
}

// NewUniformStart returns a Starter which samples starting cells
// uniformly from all cells of the grid that are neither the goal nor
// an obstacle of task
func NewUniformStart(task *Goal, seed uint64) (environment.Starter, error) {
	free := FreeCells(task)
	if len(free) == 0 {
		return nil, &GridWorldError{Op: "newUniformStart", Err: errNoFreeCells}
	}
	return environment.NewCategoricalStarter(free, seed)
}

// FreeCells returns all cells of the task's grid that are neither the
// goal nor an obstacle, ordered by x, then y
func FreeCells(task *Goal) []timestep.State {
	var free []timestep.State
	for x := 0; x < task.size; x++ {
		for y := 0; y < task.size; y++ {
			s := timestep.State{X: x, Y: y}
			if task.AtGoal(s) || task.AtObstacle(s) {
				continue
			}
			free = append(free, s)
		}
	}
	return free
}
