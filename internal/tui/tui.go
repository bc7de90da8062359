// Package tui provides the live terminal view for a scenario run.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/chimera/internal/logging"
	"github.com/tessro/chimera/internal/scenario"
)

// Model is the main model for the watch view.
type Model struct {
	width  int
	height int
	ready  bool

	header  Header
	jobs    JobList
	log     viewport.Model
	spinner spinner.Model
	helpBar HelpBar
	keys    KeyBindings

	// Rendered step log lines, oldest first
	lines []string

	done   bool
	result *scenario.Result
	err    error
}

// New creates a watch model for the named scenario.
func New(name string) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	return Model{
		header:  NewHeader(name),
		jobs:    NewJobList(),
		spinner: s,
		helpBar: NewHelpBar(),
		keys:    DefaultKeyBindings(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Top):
			m.log.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.log.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StepMsg:
		m.applyStep(scenario.Step(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if msg.Err != nil {
			m.helpBar.SetError(msg.Err.Error())
		} else if msg.Result != nil {
			m.helpBar.SetOutcome(fmt.Sprintf("complete in %s", formatOffset(msg.Result.Elapsed)))
		}
		return m, nil
	}
	return m, nil
}

// applyStep folds one runner step into the header, job list and log.
func (m *Model) applyStep(step scenario.Step) {
	m.jobs.Apply(step)
	m.header.SetProgress(m.jobs.Finished(), m.jobs.Len())
	switch step.Kind {
	case scenario.StepArmed:
		m.header.SetArmed(true)
	case scenario.StepComplete:
		m.header.SetComplete(true)
	}

	m.lines = append(m.lines, renderStep(step))
	atBottom := m.log.AtBottom()
	m.log.SetContent(strings.Join(m.lines, "\n"))
	if atBottom {
		m.log.GotoBottom()
	}
	m.layout()
}

// layout sizes every component from the window dimensions.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.header.SetWidth(m.width)
	m.jobs.SetWidth(m.width)
	m.helpBar.SetWidth(m.width)

	jobHeight := m.jobs.Len()
	if jobHeight == 0 {
		jobHeight = 3 // Empty placeholder with padding
	}
	// header + help bar + log border
	logHeight := m.height - jobHeight - 3
	if logHeight < 1 {
		logHeight = 1
	}

	if !m.ready {
		m.log = viewport.New(m.width, logHeight)
		m.log.SetContent(strings.Join(m.lines, "\n"))
		m.ready = true
		return
	}
	m.log.Width = m.width
	m.log.Height = logHeight
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return strings.Join([]string{
		m.header.View(),
		m.jobs.View(m.spinner.View()),
		stepLogStyle.Width(m.width).Render(m.log.View()),
		m.helpBar.View(),
	}, "\n")
}

// Result returns the run outcome once DoneMsg has arrived.
func (m Model) Result() (*scenario.Result, error) {
	return m.result, m.err
}

// renderStep formats one step for the log pane.
func renderStep(s scenario.Step) string {
	line := fmt.Sprintf("%8s  %s", formatOffset(s.At), stepKindStyle.Render(fmt.Sprintf("%-10s", s.Kind)))
	if s.Job != "" {
		line += " " + s.Job
	}
	if s.Err != "" {
		line += "  " + stepErrStyle.Render(s.Err)
	}
	return line
}

// deliver records m as the run's outcome and forwards it to the view.
// Only the first outcome is kept; later ones are still shown.
func deliver(done chan<- DoneMsg, send func(tea.Msg), m DoneMsg) {
	select {
	case done <- m:
	default:
	}
	send(m)
}

// Run executes r while showing the watch view. The run is cancelled if the
// user quits first.
func Run(ctx context.Context, r *scenario.Runner) (*scenario.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(r.Scenario().Name), tea.WithAltScreen())

	if err := r.OnStep(func(_ *scenario.Runner, s scenario.Step) error {
		p.Send(StepMsg(s))
		return nil
	}); err != nil {
		return nil, err
	}

	done := make(chan DoneMsg, 1)
	go func() {
		defer logging.LogPanic("watch-run", func(v any) {
			deliver(done, p.Send, DoneMsg{Err: fmt.Errorf("run panicked: %v", v)})
		})
		res, err := r.Run(ctx)
		deliver(done, p.Send, DoneMsg{Result: res, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		slog.Error("tui: program failed", "error", err)
		cancel()
		<-done
		return nil, err
	}

	cancel()
	out := <-done
	return out.Result, out.Err
}
