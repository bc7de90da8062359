// Package config provides configuration loading and validation for chimera.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tessro/chimera/internal/paths"
)

// GlobalConfig represents the global chimera configuration.
type GlobalConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`
	// LogFile overrides the default log path (~/.chimera/chimera.log).
	LogFile string `toml:"log_file"`

	// Run contains scenario run settings.
	Run RunConfig `toml:"run"`

	// Report contains report rendering settings.
	Report ReportConfig `toml:"report"`
}

// RunConfig contains scenario run settings.
type RunConfig struct {
	// Timeout bounds a scenario run (e.g., "30s").
	Timeout string `toml:"timeout"`
}

// ReportConfig contains report rendering settings.
type ReportConfig struct {
	// Width is the column width of text reports.
	Width int `toml:"width"`
}

// DefaultLogLevel is the log level used when none is configured.
const DefaultLogLevel = "info"

// DefaultRunTimeout is the run timeout used when none is configured.
const DefaultRunTimeout = 30 * time.Second

// DefaultReportWidth is the text report width used when none is configured.
const DefaultReportWidth = 80

// GlobalConfigPath returns the path to the global chimera config.
func GlobalConfigPath() (string, error) {
	return paths.ConfigPath()
}

// LoadGlobalConfig loads the global chimera configuration.
// Returns nil config and nil error if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadGlobalConfigFromPath(path)
}

// LoadGlobalConfigFromPath loads the global config from a specific path.
// Returns nil config and nil error if the file doesn't exist.
func LoadGlobalConfigFromPath(path string) (*GlobalConfig, error) {
	var cfg GlobalConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetLogLevel returns the configured log level or the default.
func (c *GlobalConfig) GetLogLevel() string {
	if c != nil && c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

// GetLogFile returns the configured log file, or empty for the default path.
func (c *GlobalConfig) GetLogFile() string {
	if c == nil {
		return ""
	}
	return c.LogFile
}

// GetRunTimeout returns the configured run timeout or the default.
// Invalid values fall back to the default; Validate reports them.
func (c *GlobalConfig) GetRunTimeout() time.Duration {
	if c == nil || c.Run.Timeout == "" {
		return DefaultRunTimeout
	}
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil || d <= 0 {
		return DefaultRunTimeout
	}
	return d
}

// GetReportWidth returns the configured report width or the default.
func (c *GlobalConfig) GetReportWidth() int {
	if c != nil && c.Report.Width > 0 {
		return c.Report.Width
	}
	return DefaultReportWidth
}
