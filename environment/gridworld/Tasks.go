package gridworld

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
	"gonum.org/v1/gonum/floats"
)

const (
	// Rewards of the Goal task
	TimeStepReward float64 = -1.0
	GoalReward     float64 = 10.0
	ObstacleReward float64 = -5.0
)

// Goal represents the task of reaching a goal cell in a GridWorld
// while avoiding obstacle cells. Stepping onto the goal yields
// GoalReward and ends the episode. Stepping onto an obstacle yields
// ObstacleReward and ends the episode in failure. All other steps
// yield TimeStepReward.
type Goal struct {
	goal      timestep.State
	obstacles map[timestep.State]struct{}
	size      int // rows and columns in environment

	timeStepReward float64
	goalReward     float64
	obstacleReward float64
}

// NewGoal creates and returns a new goal task on a size x size grid. An
// error is returned if the goal or any obstacle lies outside the grid,
// or if an obstacle overlaps the goal.
func NewGoal(goal timestep.State, obstacles []timestep.State,
	size int) (*Goal, error) {
	if !inBounds(goal, size) {
		return nil, &GridWorldError{
			Op:  "newGoal",
			Err: fmt.Errorf("goal %v: %w", goal, errOutOfBounds),
		}
	}

	blocked := make(map[timestep.State]struct{}, len(obstacles))
	for _, o := range obstacles {
		if !inBounds(o, size) {
			return nil, &GridWorldError{
				Op:  "newGoal",
				Err: fmt.Errorf("obstacle %v: %w", o, errOutOfBounds),
			}
		}
		if o == goal {
			return nil, &GridWorldError{
				Op:  "newGoal",
				Err: fmt.Errorf("obstacle %v: %w", o, errGoalObstacle),
			}
		}
		blocked[o] = struct{}{}
	}

	return &Goal{
		goal:           goal,
		obstacles:      blocked,
		size:           size,
		timeStepReward: TimeStepReward,
		goalReward:     GoalReward,
		obstacleReward: ObstacleReward,
	}, nil
}

// GetReward returns the reward for transitioning into nextState
func (g *Goal) GetReward(_ timestep.State, _ environment.Action,
	nextState timestep.State) float64 {
	if g.AtGoal(nextState) {
		return g.goalReward
	} else if g.AtObstacle(nextState) {
		return g.obstacleReward
	}
	return g.timeStepReward
}

// AtGoal returns whether state is the goal
func (g *Goal) AtGoal(state timestep.State) bool {
	return state == g.goal
}

// AtObstacle returns whether state is an obstacle
func (g *Goal) AtObstacle(state timestep.State) bool {
	_, ok := g.obstacles[state]
	return ok
}

// End determines whether the argument TimeStep ends the episode. If
// the TimeStep's observation is the goal or an obstacle, its StepType
// is set to timestep.Last and its EndType is set appropriately.
func (g *Goal) End(t *timestep.TimeStep) bool {
	if g.AtGoal(t.Observation) {
		t.StepType = timestep.Last
		t.SetEnd(timestep.TerminalStateReached)
		return true
	} else if g.AtObstacle(t.Observation) {
		t.StepType = timestep.Last
		t.SetEnd(timestep.Failure)
		return true
	}
	return false
}

// GoalState returns the goal cell
func (g *Goal) GoalState() timestep.State {
	return g.goal
}

// Obstacles returns the obstacle cells ordered by x, then y
func (g *Goal) Obstacles() []timestep.State {
	obstacles := make([]timestep.State, 0, len(g.obstacles))
	for o := range g.obstacles {
		obstacles = append(obstacles, o)
	}
	sort.Slice(obstacles, func(i, j int) bool {
		if obstacles[i].X != obstacles[j].X {
			return obstacles[i].X < obstacles[j].X
		}
		return obstacles[i].Y < obstacles[j].Y
	})
	return obstacles
}

// String returns the Goal as a string
func (g *Goal) String() string {
	return fmt.Sprintf("%v", g.goal)
}

// Min returns the minimum reward attainable in the Task
func (g *Goal) Min() float64 {
	rewards := []float64{g.timeStepReward, g.goalReward, g.obstacleReward}
	return floats.Min(rewards)
}

// Max returns the maximum reward attainable in the Task
func (g *Goal) Max() float64 {
	rewards := []float64{g.timeStepReward, g.goalReward, g.obstacleReward}
	return floats.Max(rewards)
}

func inBounds(s timestep.State, size int) bool {
	return s.X >= 0 && s.X < size && s.Y >= 0 && s.Y < size
}
