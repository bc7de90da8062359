package tui

import "github.com/tessro/chimera/internal/scenario"

// StepMsg carries one step recorded by the runner.
type StepMsg scenario.Step

// DoneMsg is sent when the run returns.
type DoneMsg struct {
	Result *scenario.Result
	Err    error
}
