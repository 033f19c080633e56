// Package ui is the terminal dashboard shown while recording.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/recorder"
)

// StateController is the recording state the dashboard drives
type StateController interface {
	recorder.StateSource
	Set(s recorder.RecordingState)
	Toggle() recorder.RecordingState
}

// Dashboard shows the recording state, the hovered selector and the
// actions recorded so far
type Dashboard struct {
	state  StateController
	shown  recorder.RecordingState
	styles *Styles
	target string

	actions  []action.Action
	viewport viewport.Model

	hoverSelector string
	hoverCount    int

	width  int
	height int
	err    error
}

// NewDashboard creates a dashboard. target names the page being recorded.
func NewDashboard(state StateController, target string) *Dashboard {
	return &Dashboard{
		state:    state,
		shown:    state.State(),
		styles:   NewStyles(),
		target:   target,
		viewport: viewport.New(80, 12),
	}
}

// Actions returns the actions shown so far
func (d *Dashboard) Actions() []action.Action {
	return d.actions
}

// Err returns the error that ended the session, if any
func (d *Dashboard) Err() error {
	return d.err
}

// Init implements tea.Model
func (d *Dashboard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "r":
			d.state.Set(recorder.StateRecording)
			d.shown = d.state.State()
			return d, nil
		case "p":
			if d.state.State() == recorder.StateRecording {
				d.state.Set(recorder.StatePaused)
			}
			d.shown = d.state.State()
			return d, nil
		case " ":
			d.shown = d.state.Toggle()
			return d, nil
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.viewport.Width = max(msg.Width-4, 20)
		d.viewport.Height = max(msg.Height-10, 3)
		d.refreshLog()

	case ActionMsg:
		d.actions = append(d.actions, msg.Action)
		d.refreshLog()
		return d, nil

	case HoverMsg:
		d.hoverSelector = msg.Selector
		d.hoverCount = msg.Count
		return d, nil

	case StateMsg:
		d.shown = msg.State
		return d, nil

	case ErrMsg:
		d.err = msg.Err
		return d, tea.Quit
	}

	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d *Dashboard) refreshLog() {
	var sb strings.Builder
	for i, a := range d.actions {
		fmt.Fprintf(&sb, "%3d  %s\n", i+1, a.String())
	}
	d.viewport.SetContent(sb.String())
	d.viewport.GotoBottom()
}

// View implements tea.Model
func (d *Dashboard) View() string {
	header := d.styles.Header.Render("todrec")
	status := lipgloss.JoinHorizontal(lipgloss.Center,
		d.styles.Badge(d.shown),
		" ",
		d.styles.Muted.Render(d.target),
	)

	hover := d.styles.Muted.Render("hover an element to preview its selector")
	if d.hoverSelector != "" {
		hover = d.styles.Hover.Render(fmt.Sprintf("%s  (%d match%s)", d.hoverSelector, d.hoverCount, plural(d.hoverCount)))
	}

	log := d.styles.Muted.Render("no actions recorded yet")
	if len(d.actions) > 0 {
		log = d.viewport.View()
	}

	footer := d.styles.Footer.Render("[r Record/Resume] [p Pause] [space Toggle] [q Quit]")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		status,
		"",
		hover,
		"",
		d.styles.ActionBox.Render(log),
		footer,
	)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "es"
}
