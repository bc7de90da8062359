package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessro/chimera/internal/samples"
	"github.com/tessro/chimera/internal/scenario"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the built-in sample scenarios",
	Long: `List the built-in sample scenarios.

A sample name can be passed to 'chimera run' or 'chimera watch' in place
of a file path.

Examples:
  chimera samples
  chimera samples show fanout
  chimera samples install ./scenarios
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range samples.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var samplesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a sample scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := samples.Read(args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var samplesInstallCmd = &cobra.Command{
	Use:   "install [dir]",
	Short: "Write every sample scenario to a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		written, err := samples.Install(dir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

// loadScenario loads arg as a file, falling back to a sample of that name.
func loadScenario(arg string) (*scenario.Scenario, error) {
	if _, err := os.Stat(arg); err == nil {
		return scenario.Load(arg)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	sc, err := samples.Load(arg)
	if errors.Is(err, samples.ErrUnknownSample) {
		return nil, fmt.Errorf("%s: no such file or sample", arg)
	}
	return sc, err
}

func init() {
	samplesCmd.AddCommand(samplesShowCmd)
	samplesCmd.AddCommand(samplesInstallCmd)
	rootCmd.AddCommand(samplesCmd)
}
