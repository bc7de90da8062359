package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/chimera/internal/scenario"
)

// jobState is the display state of one job.
type jobState int

const (
	jobPending jobState = iota
	jobRunning
	jobDone
	jobFailed
)

// jobRow is one line in the job list.
type jobRow struct {
	name  string
	state jobState
	at    time.Duration // Offset of the last state change
}

// JobList displays every registered job with a state indicator.
type JobList struct {
	width int
	rows  []jobRow
	index map[string]int
}

// NewJobList creates an empty job list.
func NewJobList() JobList {
	return JobList{index: make(map[string]int)}
}

// SetWidth updates the component width.
func (l *JobList) SetWidth(width int) {
	l.width = width
}

// Apply updates the list from a runner step. Returns false for steps that
// don't concern a listed job.
func (l *JobList) Apply(step scenario.Step) bool {
	if step.Kind == scenario.StepRegistered {
		if _, ok := l.index[step.Job]; !ok {
			l.index[step.Job] = len(l.rows)
			l.rows = append(l.rows, jobRow{name: step.Job, at: step.At})
		}
		return true
	}

	i, ok := l.index[step.Job]
	if !ok {
		return false
	}
	switch step.Kind {
	case scenario.StepStart:
		l.rows[i].state = jobRunning
	case scenario.StepFinish:
		l.rows[i].state = jobDone
	case scenario.StepFailed:
		l.rows[i].state = jobFailed
	default:
		return false
	}
	l.rows[i].at = step.At
	return true
}

// Len returns the number of listed jobs.
func (l JobList) Len() int {
	return len(l.rows)
}

// Finished returns how many jobs are done or failed.
func (l JobList) Finished() int {
	n := 0
	for _, r := range l.rows {
		if r.state == jobDone || r.state == jobFailed {
			n++
		}
	}
	return n
}

// View renders the job list. spin is the current spinner frame for pending jobs.
func (l JobList) View(spin string) string {
	if len(l.rows) == 0 {
		return jobListEmptyStyle.Width(l.width).Render("No jobs registered")
	}

	rows := make([]string, 0, len(l.rows))
	for _, r := range l.rows {
		rows = append(rows, l.renderRow(r, spin))
	}
	return strings.Join(rows, "\n")
}

func (l JobList) renderRow(r jobRow, spin string) string {
	left := lipgloss.JoinHorizontal(lipgloss.Center,
		stateIcon(r.state, spin), " ",
		jobNameStyle.Render(r.name),
	)
	offset := jobOffsetStyle.Render(formatOffset(r.at))

	spacerWidth := l.width - lipgloss.Width(left) - lipgloss.Width(offset) - 2 // padding
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	return jobRowStyle.Render(left + strings.Repeat(" ", spacerWidth) + offset)
}

// stateIcon returns the indicator for a job state.
func stateIcon(state jobState, spin string) string {
	switch state {
	case jobPending, jobRunning:
		return spin
	case jobDone:
		return lipgloss.NewStyle().Foreground(secondaryColor).Render("✓")
	case jobFailed:
		return lipgloss.NewStyle().Foreground(errorColor).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("?")
	}
}

// formatOffset formats a run offset compactly (e.g., "120ms", "1.5s", "2m3s").
func formatOffset(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
