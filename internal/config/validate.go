package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidLogLevel    = errors.New("log_level must be 'debug', 'info', 'warn', or 'error'")
	ErrInvalidTimeout     = errors.New("run.timeout must be a positive duration")
	ErrInvalidReportWidth = errors.New("report.width must be between 20 and 500")
)

// Report width bounds.
const (
	MinReportWidth = 20
	MaxReportWidth = 500
)

// validLogLevels is the set of accepted log levels (case-insensitive).
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks all configured values. Unset values are valid.
func (c *GlobalConfig) Validate() error {
	if c == nil {
		return nil
	}
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := ValidateTimeout(c.Run.Timeout); err != nil {
		return err
	}
	if c.Report.Width != 0 && (c.Report.Width < MinReportWidth || c.Report.Width > MaxReportWidth) {
		return fmt.Errorf("%w: got %d", ErrInvalidReportWidth, c.Report.Width)
	}
	return nil
}

// ValidateLogLevel checks a log level string. Empty is valid.
func ValidateLogLevel(level string) error {
	if level == "" || validLogLevels[strings.ToLower(level)] {
		return nil
	}
	return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, level)
}

// ValidateTimeout checks a duration string. Empty is valid.
func ValidateTimeout(timeout string) error {
	if timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: got %q", ErrInvalidTimeout, timeout)
	}
	return nil
}
