package commands

import (
	"fmt"
	"io"

	"github.com/samuelfneumann/gradgrid/agent/tabular/policy"
	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment/envconfig"
	"github.com/samuelfneumann/gradgrid/environment/gridworld"
	"github.com/samuelfneumann/gradgrid/timestep"
	"github.com/spf13/cobra"
)

// PlayResult describes a single greedy episode
type PlayResult struct {
	Path        []timestep.State
	TotalReward float64
	Graduated   bool
	Failed      bool
}

// Play runs the greedy policy of table for at most steps steps in the
// environment described by envConf, printing each step to out. The
// renderer r may be nil.
func Play(out io.Writer, envConf envconfig.Config, table *qtable.QTable,
	steps int, r gridworld.Renderer) (PlayResult, error) {
	if table.Size() != envConf.GridSize {
		return PlayResult{}, fmt.Errorf("play: Q-table grid size %d does "+
			"not match environment grid size %d", table.Size(),
			envConf.GridSize)
	}

	g, step, err := envConf.Create(seed, r)
	if err != nil {
		return PlayResult{}, fmt.Errorf("play: %v", err)
	}
	defer g.Close()

	greedy := policy.NewGreedy(seed, table)
	result := PlayResult{Path: []timestep.State{step.Observation}}
	if err := g.Render(); err != nil {
		return result, fmt.Errorf("play: %v", err)
	}

	for i := 0; i < steps && !step.Last(); i++ {
		action := greedy.SelectAction(step)
		step, _, err = g.Step(action)
		if err != nil {
			return result, fmt.Errorf("play: %v", err)
		}
		if err := g.Render(); err != nil {
			return result, fmt.Errorf("play: %v", err)
		}

		result.Path = append(result.Path, step.Observation)
		result.TotalReward += step.Reward
		fmt.Fprintf(out, "State: %v, Action: %v, Reward: %v, Life: %d\n",
			step.Observation, action, step.Reward, step.Info.Life)
	}

	result.Graduated = step.Last() && step.EndType() == timestep.TerminalStateReached
	result.Failed = step.Last() && step.EndType() == timestep.Failure
	return result, nil
}

// loadTable loads the Q-table given by the --table flag, printing an
// explanation if it does not exist
func loadTable(st status) (*qtable.QTable, error) {
	table, err := qtable.Load(tablePath)
	if qtable.IsNotFound(err) {
		st.Failure("Q-table %v not found. Run `gradgrid train` first to "+
			"learn one.", tablePath)
	}
	return table, err
}

// PlayCommand returns the command which plays back a learned policy
func PlayCommand() *cobra.Command {
	var steps int
	var render string
	var framesDir string
	var assets gridworld.Assets

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play back the greedy policy of a saved Q-table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := newStatus(out, !noColour)

			table, err := loadTable(st)
			if err != nil {
				return err
			}
			envConf, err := loadEnvConfig()
			if err != nil {
				return err
			}

			var r gridworld.Renderer
			switch render {
			case "terminal":
				r = gridworld.NewTerminalRenderer(out, !noColour,
					gridworld.DefaultFPS)
			case "frames":
				r, err = gridworld.NewFrameRenderer(framesDir,
					gridworld.DefaultCellSize, gridworld.DefaultFPS, assets)
				if err != nil {
					return err
				}
			case "none":
			default:
				return fmt.Errorf("play: unknown renderer %q", render)
			}

			st.Info("Q-table loaded from %v", tablePath)
			result, err := Play(out, envConf, table, steps, r)
			if err != nil {
				return err
			}

			switch {
			case result.Graduated:
				st.Success("Yehhh! Student graduated!")
			case result.Failed:
				st.Failure("Oh no, the student failed an exam.")
			default:
				st.Failure("Failed to reach the goal within %d steps.", steps)
			}
			st.Info("Total reward: %v", result.TotalReward)
			st.Info("Path taken: %v", result.Path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&steps, "steps", 100, "Maximum number of steps to play")
	flags.StringVar(&render, "render", "terminal",
		"Renderer to use: terminal, frames or none")
	flags.StringVar(&framesDir, "frames-dir", "frames",
		"Directory to save PNG frames in when rendering frames")
	flags.StringVar(&assets.Student, "student-image", "",
		"Image used to draw the student")
	flags.StringVar(&assets.Goal, "goal-image", "",
		"Image used to draw the goal")
	flags.StringVar(&assets.Obstacle, "obstacle-image", "",
		"Image used to draw obstacles")
	return cmd
}
