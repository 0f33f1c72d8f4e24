// Package commands implements the gradgrid command line interface
package commands

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/gradgrid/environment/envconfig"
	"github.com/spf13/cobra"
)

var (
	envConfigPath string
	tablePath     string
	seed          uint64
	noColour      bool
)

// GetRootCommand returns the root command with all subcommands added
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "gradgrid",
		Short:         "Tabular Q-learning in a student gridworld",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVarP(&envConfigPath, "config", "c", "",
		"JSON environment configuration (default layout if empty)")
	rootCommand.PersistentFlags().StringVarP(&tablePath, "table", "t",
		"q_table.gob", "Path of the saved Q-table")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 1923812,
		"Seed for all random number generators")
	rootCommand.PersistentFlags().BoolVar(&noColour, "no-color", false,
		"Disable coloured terminal output")

	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(HeatmapCommand())
	rootCommand.AddCommand(VerifyCommand())
	return rootCommand
}

// loadEnvConfig returns the environment configuration given by the
// --config flag
func loadEnvConfig() (envconfig.Config, error) {
	if envConfigPath == "" {
		return envconfig.Default(), nil
	}
	return envconfig.Load(envConfigPath)
}

// status prints coloured status lines
type status struct {
	out io.Writer
	au  aurora.Aurora
}

func newStatus(out io.Writer, colours bool) status {
	return status{out, aurora.NewAurora(colours)}
}

func (s status) Info(format string, args ...interface{}) {
	fmt.Fprintln(s.out, s.au.Cyan(fmt.Sprintf(format, args...)))
}

func (s status) Success(format string, args ...interface{}) {
	fmt.Fprintln(s.out, s.au.Green(fmt.Sprintf(format, args...)).Bold())
}

func (s status) Failure(format string, args ...interface{}) {
	fmt.Fprintln(s.out, s.au.Red(fmt.Sprintf(format, args...)).Bold())
}
