// Package scenario loads and runs YAML job scenarios against a completion
// barrier.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrEmptyName     = errors.New("scenario name cannot be empty")
	ErrNoJobs        = errors.New("scenario has no jobs")
	ErrEmptyJobName  = errors.New("job name cannot be empty")
	ErrDuplicateJob  = errors.New("duplicate job name")
	ErrNegativeDelay = errors.New("delay cannot be negative")
)

// Job is a unit of work that finishes after Delay.
type Job struct {
	Name  string        `yaml:"name"`
	Delay time.Duration `yaml:"delay"`
	// Fail makes the job body return an error.
	Fail bool `yaml:"fail,omitempty"`
}

// Scenario describes a set of jobs and when the barrier is armed.
type Scenario struct {
	Name string `yaml:"name"`
	// ArmAfter delays arming the barrier. With a delay longer than every
	// job, all jobs finish before the barrier is armed.
	ArmAfter time.Duration `yaml:"arm_after,omitempty"`
	// Hold keeps the barrier open with an empty job for this long.
	Hold time.Duration `yaml:"hold,omitempty"`
	Jobs []Job         `yaml:"jobs"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the scenario for structural errors.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if len(s.Jobs) == 0 {
		return ErrNoJobs
	}
	if s.ArmAfter < 0 || s.Hold < 0 {
		return ErrNegativeDelay
	}

	seen := make(map[string]bool, len(s.Jobs))
	for i, job := range s.Jobs {
		if job.Name == "" {
			return fmt.Errorf("job %d: %w", i, ErrEmptyJobName)
		}
		if seen[job.Name] {
			return fmt.Errorf("job %q: %w", job.Name, ErrDuplicateJob)
		}
		if job.Delay < 0 {
			return fmt.Errorf("job %q: %w", job.Name, ErrNegativeDelay)
		}
		seen[job.Name] = true
	}
	return nil
}

// Longest returns the largest job delay.
func (s *Scenario) Longest() time.Duration {
	var longest time.Duration
	for _, job := range s.Jobs {
		longest = max(longest, job.Delay)
	}
	return longest
}
