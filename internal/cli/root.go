// Package cli implements the chimera command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tessro/chimera/internal/config"
	"github.com/tessro/chimera/internal/logging"
	"github.com/tessro/chimera/internal/paths"
)

// Global flag values.
var (
	configPath string
	logLevel   string
	logFile    string
	verbose    bool
	chimeraDir string
)

// globalConfig is loaded before every command. Nil when no config file exists;
// its getters are nil-safe.
var globalConfig *config.GlobalConfig

// logCleanup closes the log file after the command finishes.
var logCleanup func()

var rootCmd = &cobra.Command{
	Use:   "chimera",
	Short: "Multicast, interception and completion barrier playground",
	Long: `chimera runs scenarios that exercise multicast events, method
interception and completion barriers, and reports what happened.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set CHIMERA_DIR so every path helper uses the override.
		if chimeraDir != "" {
			if err := os.Setenv(paths.EnvChimeraDir, chimeraDir); err != nil {
				return err
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		globalConfig = cfg

		level := cfg.GetLogLevel()
		if logLevel != "" {
			if err := config.ValidateLogLevel(logLevel); err != nil {
				return err
			}
			level = logLevel
		}
		path := logFile
		if path == "" {
			path = cfg.GetLogFile()
		}

		if verbose {
			logCleanup, err = logging.SetupMulti(path, cmd.ErrOrStderr(), logging.ParseLevel(level))
		} else {
			logCleanup, err = logging.Setup(path, logging.ParseLevel(level))
		}
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}
		slog.Debug("cli: command starting", "command", cmd.Name(), "level", level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

// loadConfig reads --config, or the default config path when unset.
func loadConfig() (*config.GlobalConfig, error) {
	if configPath != "" {
		cfg, err := config.LoadGlobalConfigFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/chimera/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default ~/.chimera/chimera.log)")
	rootCmd.PersistentFlags().StringVar(&chimeraDir, "chimera-dir", "", "base directory for chimera data (overrides ~/.chimera)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write logs to stderr")
}

// Execute runs the root command, cancelling on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
