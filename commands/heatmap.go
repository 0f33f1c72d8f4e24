package commands

import (
	"github.com/samuelfneumann/gradgrid/analysis"
	"github.com/spf13/cobra"
)

// HeatmapCommand returns the command which exports a heatmap of a
// saved Q-table
func HeatmapCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Export a heatmap of a saved Q-table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newStatus(cmd.OutOrStdout(), !noColour)

			table, err := loadTable(st)
			if err != nil {
				return err
			}
			envConf, err := loadEnvConfig()
			if err != nil {
				return err
			}
			task, err := envConf.Task()
			if err != nil {
				return err
			}

			layout := analysis.Layout{
				Goal:      task.GoalState(),
				Obstacles: task.Obstacles(),
			}
			if err := analysis.SaveHeatmap(out, table, layout); err != nil {
				return err
			}
			st.Success("Heatmap saved to %v", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "q_table_heatmap.png",
		"Save the heatmap here")
	return cmd
}
