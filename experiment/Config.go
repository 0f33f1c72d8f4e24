package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/gradgrid/agent"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qlearning"
	"github.com/samuelfneumann/gradgrid/environment/envconfig"
	"github.com/samuelfneumann/gradgrid/experiment/trackers"
)

// Config represents a configuration of an episodic experiment: the
// environment, the agent, and the training schedule. Configs are JSON
// serializable.
type Config struct {
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig

	Episodes int

	// The exploration rate starts at the agent's configured ε and is
	// multiplied by EpsilonDecay after each episode, never falling
	// below EpsilonMin.
	EpsilonMin   float64
	EpsilonDecay float64

	// MaxSteps is the step budget of each episode. Episodes which reach
	// the budget are truncated.
	MaxSteps int

	// OutputPath is where the learned action values are saved after
	// training. If empty, the action values are not saved.
	OutputPath string

	Seed uint64

	// LogEvery determines how often, in episodes, the episodic return
	// is logged. If 0, nothing is logged.
	LogEvery int
}

// DefaultConfig returns the default experiment configuration
func DefaultConfig() Config {
	return Config{
		EnvConf: envconfig.Default(),
		AgentConf: agent.NewTypedConfig(qlearning.Config{
			Epsilon:      1.0,
			LearningRate: 0.1,
			Discount:     0.95,
		}),
		Episodes:     1000,
		EpsilonMin:   0.015,
		EpsilonDecay: 0.995,
		MaxSteps:     100,
		OutputPath:   "q_table.gob",
		Seed:         1923812,
		LogEvery:     100,
	}
}

// Load loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func Load(filename string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("load: could not read config: %v", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("load: could not decode config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("load: %v", err)
	}
	return c, nil
}

// Save saves the Config to filename as indented JSON
func (c Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %v", err)
	}
	return nil
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.EnvConf.Validate(); err != nil {
		return err
	}
	if err := c.AgentConf.Validate(); err != nil {
		return err
	}
	return c.validateSchedule()
}

// validateSchedule ensures that the training schedule of the Config is
// valid
func (c Config) validateSchedule() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > 1 {
		return fmt.Errorf("epsilon min must be in [0, 1], got %v",
			c.EpsilonMin)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0, 1], got %v",
			c.EpsilonDecay)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log every must be non-negative, got %d",
			c.LogEvery)
	}
	return nil
}

// Create creates the environment and agent described by the Config and
// returns an experiment which trains the agent in the environment. The
// caller should Close the experiment's environment once finished.
func (c Config) Create(t ...trackers.Tracker) (*Episodic, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}

	env, _, err := c.EnvConf.Create(c.Seed, nil)
	if err != nil {
		return nil, fmt.Errorf("create: could not create environment: %v",
			err)
	}

	a, err := c.AgentConf.CreateAgent(env, c.Seed)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("create: could not create agent: %v", err)
	}
	learner, ok := a.(Learner)
	if !ok {
		env.Close()
		return nil, fmt.Errorf("create: agent of type %v cannot be trained "+
			"episodically", c.AgentConf.Type)
	}

	e, err := NewEpisodic(env, learner, c, t...)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("create: %v", err)
	}
	return e, nil
}
