package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/chimera/internal/report"
	"github.com/tessro/chimera/internal/scenario"
)

// run flags
var (
	runHTML     bool
	runMarkdown bool
	runWidth    int
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml|sample>",
	Short: "Run a scenario and print a report",
	Long: `Run a scenario file to completion and print a report of every step.

Each job is registered on a completion barrier and finishes after its delay.
The run ends when the armed barrier has no pending jobs.

Examples:
  chimera run fanout.yaml
  chimera run fanout             # built-in sample
  chimera run fanout.yaml --html > fanout.html
  chimera run fanout.yaml --timeout 5s --width 100
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		runner := scenario.NewRunner(sc, resolveTimeout(runTimeout))
		res, runErr := runner.Run(cmd.Context())
		if res != nil {
			if err := writeReport(cmd.OutOrStdout(), res); err != nil {
				return err
			}
		}
		if runErr != nil {
			slog.Warn("cli: run did not complete", "scenario", sc.Name, "error", runErr)
			return runErr
		}
		if len(res.Failed) > 0 {
			slog.Info("cli: run completed with failed jobs", "scenario", sc.Name, "failed", res.Failed)
		}
		return nil
	},
}

// resolveTimeout prefers the flag, then config, then the built-in default.
func resolveTimeout(flag time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return globalConfig.GetRunTimeout()
}

// resolveWidth prefers the flag, then config.
func resolveWidth(flag int) int {
	if flag > 0 {
		return flag
	}
	return globalConfig.GetReportWidth()
}

func writeReport(w io.Writer, res *scenario.Result) error {
	var out string
	switch {
	case runHTML:
		html, err := report.HTML(res)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		out = html
	case runMarkdown:
		out = report.Markdown(res)
	default:
		out = report.Text(res, resolveWidth(runWidth))
	}
	_, err := io.WriteString(w, out)
	return err
}

func init() {
	runCmd.Flags().BoolVar(&runHTML, "html", false, "render the report as HTML")
	runCmd.Flags().BoolVar(&runMarkdown, "markdown", false, "render the report as Markdown")
	runCmd.Flags().IntVar(&runWidth, "width", 0, "text report width (default from config, or 80)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "run timeout (default from config, or 30s)")
	runCmd.MarkFlagsMutuallyExclusive("html", "markdown")
	rootCmd.AddCommand(runCmd)
}
