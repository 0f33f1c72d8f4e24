// Package envconfig provides configuration structs for configuring
// gridworld environments with default layouts and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/gradgrid/environment/gridworld"
	ts "github.com/samuelfneumann/gradgrid/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	GridWorld EnvName = "GridWorld"
)

// Config implements a specific configuration of a gridworld
// environment. Cells are given as [x, y] pairs.
type Config struct {
	Environment EnvName
	GridSize    int
	Goal        [2]int
	Obstacles   [][2]int
	Start       [2]int
	RandomStart bool
}

// Default returns the default gridworld configuration: an 8x8 grid with
// the goal at (6, 6) and episodes starting at (0, 0)
func Default() Config {
	return Config{
		Environment: GridWorld,
		GridSize:    gridworld.DefaultSize,
		Goal:        [2]int{6, 6},
		Obstacles: [][2]int{
			{0, 3}, {2, 1}, {3, 7}, {3, 4}, {6, 3}, {5, 0},
		},
	}
}

// Load loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func Load(filename string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("load: could not read config: %v", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("load: could not decode config: %v", err)
	}
	return c, c.Validate()
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Environment != GridWorld {
		return fmt.Errorf("validate: no such environment %q", c.Environment)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("validate: grid size must be positive, got %d",
			c.GridSize)
	}
	task, err := c.Task()
	if err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if _, err := gridworld.NewSingleStart(c.Start[0], c.Start[1],
		c.GridSize); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if !c.RandomStart {
		start := ts.State{X: c.Start[0], Y: c.Start[1]}
		if task.AtGoal(start) || task.AtObstacle(start) {
			return fmt.Errorf("validate: start %v is not a free cell", start)
		}
	}
	return nil
}

// Task returns the goal task described by the Config
func (c Config) Task() (*gridworld.Goal, error) {
	obstacles := make([]ts.State, len(c.Obstacles))
	for i, o := range c.Obstacles {
		obstacles[i] = ts.State{X: o[0], Y: o[1]}
	}
	goal := ts.State{X: c.Goal[0], Y: c.Goal[1]}
	return gridworld.NewGoal(goal, obstacles, c.GridSize)
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment. The renderer r may be nil.
func (c Config) Create(seed uint64, r gridworld.Renderer) (*gridworld.GridWorld,
	ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	task, err := c.Task()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}
	start, err := gridworld.NewSingleStart(c.Start[0], c.Start[1], c.GridSize)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	return gridworld.New(task, start, c.RandomStart, seed, r)
}
