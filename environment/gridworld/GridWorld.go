// Package gridworld implements 2D gridworld environments
package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/timestep"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultSize is the default number of rows and columns
	DefaultSize int = 8

	// InitialLife is the life of the agent at the start of an episode.
	// Life is reported for diagnostics only and does not affect the
	// environment dynamics.
	InitialLife int = 100
)

// Renderer draws frames of a GridWorld. Renderers are optional and are
// never needed for learning.
type Renderer interface {
	// Draw draws a single frame of the GridWorld
	Draw(*GridWorld) error

	// Reset clears any pending rendering state
	Reset()

	// Close releases any rendering resources. Close must be idempotent.
	Close() error
}

// GridWorld represents a gridworld environment
//
// A GridWorld is a square grid with a single goal cell and a set of
// obstacle cells. Positions are (x, y) coordinates with (0, 0) in the
// bottom left corner. Moves which would leave the grid leave the
// position unchanged on that axis.
//
// Once an episode ends, by reaching the goal or an obstacle, Step
// returns an error until Reset is called. GridWorld never truncates
// episodes itself; step budgets are enforced by the caller.
type GridWorld struct {
	*Goal
	size     int
	position timestep.State
	life     int

	fixed       environment.Starter
	uniform     environment.Starter
	randomStart bool

	currentStep timestep.TimeStep
	renderer    Renderer
	closed      bool
}

// New creates a new GridWorld with the reward scheme and layout of
// task. Episodes start at the cell given by start unless randomStart
// is true, in which case episodes start uniformly at random in any
// cell which is neither the goal nor an obstacle. The renderer r may
// be nil for headless operation.
func New(task *Goal, start environment.Starter, randomStart bool,
	seed uint64, r Renderer) (*GridWorld, timestep.TimeStep, error) {
	if task == nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: task cannot be nil")
	}
	if task.size <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: grid size must "+
			"be positive, got %d", task.size)
	}

	uniform, err := NewUniformStart(task, seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	if start == nil {
		start, err = NewSingleStart(0, 0, task.size)
		if err != nil {
			return nil, timestep.TimeStep{}, fmt.Errorf("new: %w", err)
		}
	}

	if err := checkStart(task, start); err != nil {
		return nil, timestep.TimeStep{}, &GridWorldError{Op: "new", Err: err}
	}

	g := &GridWorld{
		Goal:        task,
		size:        task.size,
		fixed:       start,
		uniform:     uniform,
		randomStart: randomStart,
		renderer:    r,
	}

	step, err := g.Reset()
	return g, step, err
}

// checkStart returns an error if a deterministic or categorical
// starter can place the agent on the goal or an obstacle
func checkStart(task *Goal, start environment.Starter) error {
	var states []timestep.State
	switch s := start.(type) {
	case *SingleStart:
		states = []timestep.State{s.Start()}
	case *environment.CategoricalStarter:
		states = s.States()
	}

	for _, state := range states {
		if task.AtGoal(state) || task.AtObstacle(state) {
			return fmt.Errorf("%w: %v", errStartBlocked, state)
		}
	}
	return nil
}

// Reset resets the GridWorld between episodes, using the starting
// distribution chosen at construction
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	return g.ResetWith(g.randomStart)
}

// ResetWith resets the GridWorld between episodes. If randomStart is
// true, the starting cell is sampled uniformly from the cells which are
// neither the goal nor an obstacle. Otherwise, the fixed starting cell
// is used.
func (g *GridWorld) ResetWith(randomStart bool) (timestep.TimeStep, error) {
	var start timestep.State
	if randomStart {
		start = g.uniform.Start()
	} else {
		start = g.fixed.Start()
	}

	if !inBounds(start, g.size) {
		return timestep.TimeStep{}, &GridWorldError{
			Op:  "reset",
			Err: fmt.Errorf("start %v: %w", start, errOutOfBounds),
		}
	}

	g.position = start
	g.life = InitialLife
	if g.renderer != nil {
		g.renderer.Reset()
	}

	step := timestep.New(timestep.First, 0, start, 0)
	step.Info = g.info()
	g.currentStep = step
	return step, nil
}

// Step takes one action in the environment, returning the next
// TimeStep and whether or not the episode has ended
func (g *GridWorld) Step(action environment.Action) (timestep.TimeStep,
	bool, error) {
	if !action.Valid() {
		return timestep.TimeStep{}, false, &GridWorldError{
			Op:  "step",
			Err: fmt.Errorf("%w: %d", errInvalidAction, int(action)),
		}
	}
	if g.currentStep.Last() {
		return timestep.TimeStep{}, true, &GridWorldError{
			Op:  "step",
			Err: errEpisodeOver,
		}
	}

	nextPosition := g.move(g.position, action)
	reward := g.GetReward(g.position, action, nextPosition)
	g.position = nextPosition

	step := timestep.New(timestep.Mid, reward, nextPosition,
		g.currentStep.Number+1)
	last := g.End(&step)
	if step.EndType() == timestep.Failure {
		g.life = 0
	}
	step.Info = g.info()

	g.currentStep = step
	return step, last, nil
}

// move returns the cell reached by taking action from position,
// clamped to the grid boundaries
func (g *GridWorld) move(position timestep.State,
	action environment.Action) timestep.State {
	d := action.Displacement()
	next := timestep.State{X: position.X + d.X, Y: position.Y + d.Y}

	if next.X < 0 || next.X >= g.size {
		next.X = position.X
	}
	if next.Y < 0 || next.Y >= g.size {
		next.Y = position.Y
	}
	return next
}

// info returns the diagnostic information of the current position
func (g *GridWorld) info() timestep.Info {
	goal := g.GoalState()
	return timestep.Info{
		DistanceToGoal: timestep.State{
			X: goal.X - g.position.X,
			Y: goal.Y - g.position.Y,
		},
		Life: g.life,
	}
}

// SetPosition moves the agent to position without ending or starting
// an episode. The current episode continues from position, even if the
// previous TimeStep was the last in the episode.
func (g *GridWorld) SetPosition(position timestep.State) error {
	if !inBounds(position, g.size) {
		return &GridWorldError{
			Op:  "setPosition",
			Err: fmt.Errorf("position %v: %w", position, errOutOfBounds),
		}
	}

	g.position = position
	step := timestep.New(timestep.Mid, 0, position, g.currentStep.Number)
	step.Info = g.info()
	g.currentStep = step
	return nil
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// Position returns the current position of the agent
func (g *GridWorld) Position() timestep.State {
	return g.position
}

// Life returns the life of the agent
func (g *GridWorld) Life() int {
	return g.life
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.size, g.size
}

// RandomStart returns whether Reset samples random starting cells
func (g *GridWorld) RandomStart() bool {
	return g.randomStart
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(environment.Up)})
	upperBound := mat.NewVecDense(1, []float64{float64(environment.Right)})

	return environment.NewSpec(shape, environment.ActionSpec, lowerBound,
		upperBound, environment.Discrete)
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GridWorld) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, nil)
	upperBound := mat.NewVecDense(2, []float64{
		float64(g.size - 1),
		float64(g.size - 1),
	})

	return environment.NewSpec(shape, environment.ObservationSpec, lowerBound,
		upperBound, environment.Discrete)
}

// Render draws the current state of the environment if a Renderer was
// given at construction. Render is a no-op for headless GridWorlds.
func (g *GridWorld) Render() error {
	if g.renderer == nil || g.closed {
		return nil
	}
	return g.renderer.Draw(g)
}

// Close releases any rendering resources. Close is idempotent.
func (g *GridWorld) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	if g.renderer != nil {
		return g.renderer.Close()
	}
	return nil
}

func (g *GridWorld) String() string {
	str := "GridWorld | At: %v  |   Goal: %v  |  Obstacles: %v  |  " +
		"Bounds: (%d, %d)"

	return fmt.Sprintf(str, g.position, g.Goal, g.Obstacles(), g.size, g.size)
}
