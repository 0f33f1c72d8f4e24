// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samuelfneumann/gradgrid/agent"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	env "github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/experiment/checkpointer"
	"github.com/samuelfneumann/gradgrid/experiment/trackers"
	ts "github.com/samuelfneumann/gradgrid/timestep"
	"github.com/samuelfneumann/gradgrid/utils/floatutils"
	"github.com/samuelfneumann/gradgrid/utils/progressbar"
	"gonum.org/v1/gonum/stat"
)

// Learner is an agent which explores ε-greedily over a table of action
// values
type Learner interface {
	agent.Agent
	Epsilon() float64
	SetEpsilon(float64)
	Table() *qtable.QTable
}

// Result summarizes a training run
type Result struct {
	Episodes    int
	Successes   int
	SuccessRate float64
	MeanReturn  float64

	// Epsilons holds the exploration rate used in each episode
	Epsilons []float64
	Returns  []float64
	Lengths  []int
}

// Episodic is an Experiment that trains an agent for a fixed number of
// episodes, each with a fixed step budget. The agent's exploration rate
// is decayed once at the end of each episode.
type Episodic struct {
	env.Environment
	agent  Learner
	config Config
	limit  env.StepLimit

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer

	logger *log.Logger
	bar    *progressbar.ManualProgressBar
}

// NewEpisodic creates and returns a new episodic experiment on a given
// environment with a given agent. The t parameter is a slice of
// trackers.Tracker which determine what data is saved. Only the
// training schedule of c is used; its environment and agent
// configurations are ignored. Exploration starts at the agent's current
// ε.
func NewEpisodic(e env.Environment, a Learner, c Config,
	t ...trackers.Tracker) (*Episodic, error) {
	if err := c.validateSchedule(); err != nil {
		return nil, fmt.Errorf("newEpisodic: %v", err)
	}
	if e == nil || a == nil {
		return nil, fmt.Errorf("newEpisodic: environment and agent " +
			"cannot be nil")
	}

	return &Episodic{
		Environment: e,
		agent:       a,
		config:      c,
		limit:       env.NewStepLimit(c.MaxSteps),
		trackers:    t,
		logger:      log.New(os.Stdout, "", 0),
	}, nil
}

// Agent returns the agent trained by the experiment
func (e *Episodic) Agent() Learner {
	return e.agent
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (e *Episodic) Register(t trackers.Tracker) {
	e.trackers = append(e.trackers, t)
}

// RegisterCheckpointer registers a Checkpointer which is called at the
// end of every episode
func (e *Episodic) RegisterCheckpointer(c checkpointer.Checkpointer) {
	e.checkpointers = append(e.checkpointers, c)
}

// SetLogger sets the logger used to report training progress. If l is
// nil, nothing is logged.
func (e *Episodic) SetLogger(l *log.Logger) {
	e.logger = l
}

// SetProgressBar sets a progress bar which is incremented after each
// episode
func (e *Episodic) SetProgressBar(p *progressbar.ManualProgressBar) {
	e.bar = p
}

// RunEpisode runs a single episode of the experiment, returning the
// last TimeStep of the episode and the episodic return
func (e *Episodic) RunEpisode(ctx context.Context) (ts.TimeStep, float64,
	error) {
	step, err := e.Environment.Reset()
	if err != nil {
		return step, 0, fmt.Errorf("runEpisode: could not reset: %v", err)
	}
	if err := e.agent.ObserveFirst(step); err != nil {
		return step, 0, fmt.Errorf("runEpisode: %v", err)
	}
	e.track(step)

	var episodeReturn float64
	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return step, episodeReturn, err
		}

		// Select action, step in environment
		action := e.agent.SelectAction(step)
		step, _, err = e.Environment.Step(action)
		if err != nil {
			return step, episodeReturn, fmt.Errorf("runEpisode: %v", err)
		}
		e.limit.End(&step)
		episodeReturn += step.Reward

		// Cache the environment step in each Tracker
		e.track(step)

		// Observe the timestep and step the agent
		if err := e.agent.Observe(action, step); err != nil {
			return step, episodeReturn, fmt.Errorf("runEpisode: %v", err)
		}
		if err := e.agent.Step(); err != nil {
			return step, episodeReturn, fmt.Errorf("runEpisode: %v", err)
		}
	}
	e.agent.EndEpisode()

	return step, episodeReturn, nil
}

// Run runs the entire experiment for all episodes. If ctx is cancelled,
// training stops before the next environment step and the result of
// the finished episodes is returned along with the context's error.
func (e *Episodic) Run(ctx context.Context) (Result, error) {
	result := Result{
		Epsilons: make([]float64, 0, e.config.Episodes),
		Returns:  make([]float64, 0, e.config.Episodes),
		Lengths:  make([]int, 0, e.config.Episodes),
	}
	if e.bar != nil {
		defer e.bar.Close()
	}

	for episode := 1; episode <= e.config.Episodes; episode++ {
		epsilon := e.agent.Epsilon()
		last, episodeReturn, err := e.RunEpisode(ctx)
		if err != nil {
			return e.summarize(result), err
		}

		result.Episodes++
		result.Epsilons = append(result.Epsilons, epsilon)
		result.Returns = append(result.Returns, episodeReturn)
		result.Lengths = append(result.Lengths, last.Number)
		if last.Reward == e.Environment.Max() {
			result.Successes++
		}

		e.agent.SetEpsilon(floatutils.Decay(epsilon, e.config.EpsilonDecay,
			e.config.EpsilonMin))

		if e.logger != nil && e.config.LogEvery > 0 &&
			episode%e.config.LogEvery == 0 {
			e.logger.Printf("Episode %d: Total Reward: %v", episode,
				episodeReturn)
		}
		if e.bar != nil {
			e.bar.SetSuffix(fmt.Sprintf("ε=%.3f", e.agent.Epsilon()))
			e.bar.Increment()
			e.bar.Display()
		}

		for _, c := range e.checkpointers {
			if err := c.Checkpoint(episode); err != nil {
				return e.summarize(result), fmt.Errorf("run: could not "+
					"checkpoint: %v", err)
			}
		}
	}
	result = e.summarize(result)
	if e.logger != nil {
		e.logger.Printf("Training finished. Success count: %d/%d",
			result.Successes, result.Episodes)
	}

	if e.config.OutputPath != "" {
		if err := e.agent.Table().Save(e.config.OutputPath); err != nil {
			return result, fmt.Errorf("run: %v", err)
		}
	}
	return result, nil
}

// summarize computes the summary statistics of result
func (e *Episodic) summarize(result Result) Result {
	if result.Episodes > 0 {
		result.SuccessRate = float64(result.Successes) /
			float64(result.Episodes)
		result.MeanReturn = stat.Mean(result.Returns, nil)
	}
	return result
}

// Save saves all the data cached by the Trackers to disk
func (e *Episodic) Save() error {
	for _, tracker := range e.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (e *Episodic) track(t ts.TimeStep) {
	for _, tracker := range e.trackers {
		tracker.Track(t)
	}
}
