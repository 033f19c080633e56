package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lance13c/todrec/internal/recorder"
)

// Styles holds all the styling for the TUI
type Styles struct {
	Header    lipgloss.Style
	Recording lipgloss.Style
	Paused    lipgloss.Style
	Idle      lipgloss.Style
	Hover     lipgloss.Style
	Muted     lipgloss.Style
	ActionBox lipgloss.Style
	Footer    lipgloss.Style
}

// NewStyles creates a new styles instance
func NewStyles() *Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			MarginBottom(1),

		Recording: badge.
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#FF5F87")),

		Paused: badge.
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#FFD75F")),

		Idle: badge.
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#626262")),

		Hover: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),

		ActionBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1),
	}
}

// Badge renders the recording state
func (s *Styles) Badge(state recorder.RecordingState) string {
	switch state {
	case recorder.StateRecording:
		return s.Recording.Render("● REC")
	case recorder.StatePaused:
		return s.Paused.Render("❚❚ PAUSED")
	default:
		return s.Idle.Render("○ IDLE")
	}
}
