package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/gradgrid/agent"
	"github.com/samuelfneumann/gradgrid/environment"
)

var _ agent.Config = Config{}

func init() {
	agent.Register(agent.EGreedyQLearningTabular, Config{})
}

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 // epislon for behaviour policy
	LearningRate float64
	Discount     float64
}

// CreateAgent creates the agent from the Config. Action values are
// always initialized to zero.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	q, err := New(env, c, seed)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epislon must be in [0, 1], got %v", c.Epsilon)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v",
			c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], got %v", c.Discount)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyQLearningTabular
}
