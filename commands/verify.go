package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/samuelfneumann/gradgrid/agent/tabular/qtable"
	"github.com/samuelfneumann/gradgrid/environment"
	"github.com/samuelfneumann/gradgrid/environment/envconfig"
	"github.com/samuelfneumann/gradgrid/environment/gridworld"
	"github.com/samuelfneumann/gradgrid/timestep"
	"github.com/spf13/cobra"
)

// checker records the outcome of verification checks
type checker struct {
	out    io.Writer
	failed int
}

func (c *checker) check(ok bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ok {
		fmt.Fprintf(c.out, "PASS: %v\n", msg)
	} else {
		c.failed++
		fmt.Fprintf(c.out, "FAIL: %v\n", msg)
	}
}

// goalNeighbour returns a free cell next to the goal and the action
// which moves from that cell into the goal
func goalNeighbour(g *gridworld.GridWorld) (timestep.State,
	environment.Action, bool) {
	goal := g.GoalState()
	size, _ := g.Dims()

	for _, a := range environment.Actions {
		d := a.Displacement()
		s := timestep.State{X: goal.X - d.X, Y: goal.Y - d.Y}
		if s.X < 0 || s.X >= size || s.Y < 0 || s.Y >= size {
			continue
		}
		if !g.AtObstacle(s) {
			return s, a, true
		}
	}
	return timestep.State{}, 0, false
}

// Verify checks the dynamics of the environment described by envConf
// and, if table is not nil, that the learned values of the goal are
// zero. A report of each check is written to out. Verify returns
// whether all checks passed.
func Verify(out io.Writer, envConf envconfig.Config,
	table *qtable.QTable) (bool, error) {
	g, step, err := envConf.Create(seed, nil)
	if err != nil {
		return false, fmt.Errorf("verify: %v", err)
	}
	defer g.Close()
	c := &checker{out: out}

	fmt.Fprintln(out, "--- Verifying Environment Logic ---")
	if !envConf.RandomStart {
		start := timestep.State{X: envConf.Start[0], Y: envConf.Start[1]}
		c.check(step.Observation == start, "reset state %v (expected %v)",
			step.Observation, start)
	}
	c.check(step.Info.Life == gridworld.InitialLife, "reset life %d "+
		"(expected %d)", step.Info.Life, gridworld.InitialLife)

	neighbour, action, ok := goalNeighbour(g)
	c.check(ok, "goal %v has a free neighbour", g.GoalState())
	if ok {
		if err := g.SetPosition(neighbour); err != nil {
			return false, fmt.Errorf("verify: %v", err)
		}
		step, _, err = g.Step(action)
		if err != nil {
			return false, fmt.Errorf("verify: %v", err)
		}
		c.check(step.Observation == g.GoalState(), "%v + %v reached %v "+
			"(expected %v)", neighbour, action, step.Observation,
			g.GoalState())
		c.check(step.Reward == gridworld.GoalReward, "reward %v "+
			"(expected %v)", step.Reward, gridworld.GoalReward)
		c.check(step.Terminated() && !step.Truncated(), "terminated %v, "+
			"truncated %v (expected true, false)", step.Terminated(),
			step.Truncated())

		_, _, err = g.Step(action)
		c.check(gridworld.IsEpisodeOver(err), "step from goal rejected "+
			"until reset (got %v)", err)
	}

	if table != nil {
		fmt.Fprintln(out, "--- Inspecting Q-Table ---")
		size, _, actions := table.Shape()
		fmt.Fprintf(out, "Q-table shape: (%d, %d, %d)\n", size, size, actions)

		if size != envConf.GridSize {
			c.check(false, "Q-table grid size %d matches environment "+
				"grid size %d", size, envConf.GridSize)
		} else {
			goal := g.GoalState()
			values := table.Row(goal)
			fmt.Fprintf(out, "Q-values at goal %v: %v\n", goal,
				values.RawVector().Data)
			if ok {
				fmt.Fprintf(out, "Q-values at neighbour %v: %v\n", neighbour,
					table.Row(neighbour).RawVector().Data)
			}
			c.check(zeroRow(table, goal),
				"Q-values at goal are all zero")
		}
	}

	return c.failed == 0, nil
}

func zeroRow(table *qtable.QTable, s timestep.State) bool {
	for a := 0; a < table.Actions(); a++ {
		if table.At(s, a) != 0 {
			return false
		}
	}
	return true
}

// VerifyCommand returns the command which verifies the environment
// dynamics and a saved Q-table
func VerifyCommand() *cobra.Command {
	var report string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the environment dynamics and a saved Q-table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newStatus(cmd.OutOrStdout(), !noColour)
			envConf, err := loadEnvConfig()
			if err != nil {
				return err
			}

			table, err := qtable.Load(tablePath)
			if qtable.IsNotFound(err) {
				st.Info("Q-table %v not found, skipping Q-table checks",
					tablePath)
				table = nil
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report != "" {
				file, err := os.Create(report)
				if err != nil {
					return fmt.Errorf("verify: could not create report: %v",
						err)
				}
				defer file.Close()
				out = io.MultiWriter(out, file)
			}

			passed, err := Verify(out, envConf, table)
			if err != nil {
				return err
			}
			if !passed {
				st.Failure("Verification failed")
				return fmt.Errorf("verify: some checks failed")
			}
			st.Success("All checks passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&report, "report", "",
		"Also write the verification report to this file")
	return cmd
}
