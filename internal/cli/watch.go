package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/chimera/internal/report"
	"github.com/tessro/chimera/internal/scenario"
	"github.com/tessro/chimera/internal/tui"
)

var watchTimeout time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <scenario.yaml|sample>",
	Short: "Run a scenario in the interactive view",
	Long: `Run a scenario while showing live job state and the step log.

Press q to quit; quitting before the barrier fires cancels the run.
The text report is printed after the view closes.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		runner := scenario.NewRunner(sc, resolveTimeout(watchTimeout))
		res, runErr := tui.Run(cmd.Context(), runner)
		if res != nil {
			if _, err := io.WriteString(cmd.OutOrStdout(), report.Text(res, globalConfig.GetReportWidth())); err != nil {
				return err
			}
		}
		if errors.Is(runErr, context.Canceled) {
			return nil
		}
		return runErr
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "run timeout (default from config, or 30s)")
	rootCmd.AddCommand(watchCmd)
}
