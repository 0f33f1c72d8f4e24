package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/samuelfneumann/gradgrid/agent"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qlearning"
	"github.com/samuelfneumann/gradgrid/analysis"
	"github.com/samuelfneumann/gradgrid/experiment"
	"github.com/samuelfneumann/gradgrid/experiment/checkpointer"
	"github.com/samuelfneumann/gradgrid/experiment/trackers"
	"github.com/samuelfneumann/gradgrid/utils/progressbar"
	"github.com/spf13/cobra"
)

// Checkpoint file naming schemes
const (
	EnumerateCheckpoints = "enumerate"
	TimeCheckpoints      = "time"
)

// TrainOptions holds the outputs of a training run other than the
// Q-table itself. Empty paths disable the corresponding output.
type TrainOptions struct {
	HeatmapPath     string
	CurvePath       string
	ChartPath       string
	DataDir         string
	CheckpointEvery int

	// CheckpointNaming is EnumerateCheckpoints (the default when empty)
	// or TimeCheckpoints
	CheckpointNaming string
	Progress         bool
}

// checkpointNamer returns the filename generator for checkpoints of
// the Q-table saved at tablePath
func checkpointNamer(naming, tablePath string) (func() string, error) {
	prefix := strings.TrimSuffix(tablePath, filepath.Ext(tablePath))
	switch naming {
	case "", EnumerateCheckpoints:
		return checkpointer.FilenameEnumerator(0, prefix+"_", ".gob"), nil
	case TimeCheckpoints:
		return checkpointer.FileTimer(prefix, ".gob"), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint naming %q", naming)
	}
}

// Train trains the agent described by c in the environment described
// by c and saves the learned Q-table to c.OutputPath
func Train(ctx context.Context, out io.Writer, c experiment.Config,
	opts TrainOptions) (experiment.Result, error) {
	var namer func() string
	if opts.CheckpointEvery > 0 {
		var err error
		namer, err = checkpointNamer(opts.CheckpointNaming, c.OutputPath)
		if err != nil {
			return experiment.Result{}, fmt.Errorf("train: %v", err)
		}
	}

	var tracked []trackers.Tracker
	if opts.DataDir != "" {
		if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
			return experiment.Result{}, fmt.Errorf("train: %v", err)
		}
		tracked = append(tracked,
			trackers.NewReturn(filepath.Join(opts.DataDir, "returns.bin")),
			trackers.NewEpisodeLength(filepath.Join(opts.DataDir,
				"lengths.bin")),
		)
	}

	e, err := c.Create(tracked...)
	if err != nil {
		return experiment.Result{}, fmt.Errorf("train: %v", err)
	}
	defer e.Close()
	table := e.Agent().Table()

	e.SetLogger(log.New(out, "", 0))
	if opts.Progress {
		e.SetProgressBar(progressbar.NewManualProgressBar(out, 40,
			c.Episodes))
	}
	if namer != nil {
		check, err := checkpointer.NewNStep(opts.CheckpointEvery, table, namer)
		if err != nil {
			return experiment.Result{}, fmt.Errorf("train: %v", err)
		}
		e.RegisterCheckpointer(check)
	}

	result, err := e.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("train: %v", err)
	}
	if err := e.Save(); err != nil {
		return result, fmt.Errorf("train: %v", err)
	}
	if opts.DataDir != "" {
		if err := c.Save(filepath.Join(opts.DataDir,
			"experiment.json")); err != nil {
			return result, fmt.Errorf("train: %v", err)
		}
	}

	if opts.HeatmapPath != "" {
		task, err := c.EnvConf.Task()
		if err != nil {
			return result, fmt.Errorf("train: %v", err)
		}
		layout := analysis.Layout{
			Goal:      task.GoalState(),
			Obstacles: task.Obstacles(),
		}
		if err := analysis.SaveHeatmap(opts.HeatmapPath, table,
			layout); err != nil {
			return result, fmt.Errorf("train: %v", err)
		}
	}
	if opts.CurvePath != "" {
		if err := analysis.SaveLearningCurve(opts.CurvePath,
			result.Returns); err != nil {
			return result, fmt.Errorf("train: %v", err)
		}
	}
	if opts.ChartPath != "" {
		if err := analysis.SaveLearningCurveHTML(opts.ChartPath,
			result.Returns, result.Epsilons); err != nil {
			return result, fmt.Errorf("train: %v", err)
		}
	}
	return result, nil
}

// trainFlags holds the values of the train command's flags which
// override an experiment file
type trainFlags struct {
	experimentPath string
	episodes       int
	maxSteps       int
	epsilonMin     float64
	epsilonDecay   float64
	logEvery       int
	epsilon        float64
	alpha          float64
	gamma          float64
}

// experimentConfig builds the experiment configuration of a train
// command. Values come from the --experiment file, or the defaults if
// no file is given, and are overridden by any flag set explicitly.
func (f trainFlags) experimentConfig(cmd *cobra.Command) (experiment.Config,
	error) {
	c := experiment.DefaultConfig()
	if f.experimentPath != "" {
		var err error
		if c, err = experiment.Load(f.experimentPath); err != nil {
			return c, err
		}
	}
	changed := func(name string) bool {
		return f.experimentPath == "" || cmd.Flags().Changed(name)
	}

	if envConfigPath != "" {
		envConf, err := loadEnvConfig()
		if err != nil {
			return c, err
		}
		c.EnvConf = envConf
	}
	if changed("table") {
		c.OutputPath = tablePath
	}
	if changed("seed") {
		c.Seed = seed
	}
	if changed("episodes") {
		c.Episodes = f.episodes
	}
	if changed("max-steps") {
		c.MaxSteps = f.maxSteps
	}
	if changed("epsilon-min") {
		c.EpsilonMin = f.epsilonMin
	}
	if changed("epsilon-decay") {
		c.EpsilonDecay = f.epsilonDecay
	}
	if changed("log-every") {
		c.LogEvery = f.logEvery
	}

	if changed("epsilon") || changed("alpha") || changed("gamma") {
		q, ok := c.AgentConf.Config.(qlearning.Config)
		if !ok {
			return c, fmt.Errorf("agent flags do not apply to agent type %v",
				c.AgentConf.Type)
		}
		if changed("epsilon") {
			q.Epsilon = f.epsilon
		}
		if changed("alpha") {
			q.LearningRate = f.alpha
		}
		if changed("gamma") {
			q.Discount = f.gamma
		}
		c.AgentConf = agent.NewTypedConfig(q)
	}
	return c, c.Validate()
}

// TrainCommand returns the command which trains a Q-learning agent
func TrainCommand() *cobra.Command {
	def := experiment.DefaultConfig()
	defAgent := def.AgentConf.Config.(qlearning.Config)
	var f trainFlags
	var opts TrainOptions

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent and save its Q-table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.experimentConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt)
			defer cancel()

			st := newStatus(cmd.OutOrStdout(), !noColour)
			result, err := Train(ctx, cmd.OutOrStdout(), c, opts)
			if err != nil {
				st.Failure("Training failed: %v", err)
				return err
			}

			st.Success("Q-table saved to %v", c.OutputPath)
			st.Info("Success rate: %.3f, mean return: %.3f",
				result.SuccessRate, result.MeanReturn)
			if opts.HeatmapPath != "" {
				st.Info("Heatmap saved to %v", opts.HeatmapPath)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.experimentPath, "experiment", "x", "",
		"JSON experiment configuration; explicitly set flags override it")
	flags.IntVarP(&f.episodes, "episodes", "e", def.Episodes,
		"Number of episodes to train for")
	flags.IntVar(&f.maxSteps, "max-steps", def.MaxSteps,
		"Step budget of each episode")
	flags.Float64Var(&f.epsilon, "epsilon", defAgent.Epsilon,
		"Initial exploration rate")
	flags.Float64Var(&f.epsilonMin, "epsilon-min", def.EpsilonMin,
		"Minimum exploration rate")
	flags.Float64Var(&f.epsilonDecay, "epsilon-decay", def.EpsilonDecay,
		"Multiplicative exploration decay per episode")
	flags.Float64Var(&f.alpha, "alpha", defAgent.LearningRate,
		"Learning rate")
	flags.Float64Var(&f.gamma, "gamma", defAgent.Discount, "Discount factor")
	flags.IntVar(&f.logEvery, "log-every", def.LogEvery,
		"Log the episodic return every this many episodes (0 disables)")

	flags.StringVar(&opts.HeatmapPath, "heatmap", "q_table_heatmap.png",
		"Save a heatmap of the Q-table here (empty disables)")
	flags.StringVar(&opts.CurvePath, "curve", "",
		"Save a learning curve here (empty disables)")
	flags.StringVar(&opts.ChartPath, "chart", "",
		"Save an interactive HTML learning curve here (empty disables)")
	flags.StringVar(&opts.DataDir, "data", "",
		"Save episodic returns, lengths and the experiment configuration "+
			"in this directory")
	flags.IntVar(&opts.CheckpointEvery, "checkpoint-every", 0,
		"Checkpoint the Q-table every this many episodes (0 disables)")
	flags.StringVar(&opts.CheckpointNaming, "checkpoint-naming",
		EnumerateCheckpoints, "Checkpoint file naming: enumerate or time")
	flags.BoolVar(&opts.Progress, "progress", false, "Show a progress bar")
	return cmd
}
