package recorder

import (
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
)

// RecordingState is the recorder UI state
type RecordingState int

const (
	StateIdle RecordingState = iota
	StateRecording
	StatePaused
)

func (s RecordingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// StateSource yields the current recording state. The recorder only reads it.
type StateSource interface {
	State() RecordingState
}

// Sink receives actions leaving the recorder. The recorder does not wait on
// anything beyond the call itself; a returned error is logged and dropped.
type Sink interface {
	HandleAction(a action.Action) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(a action.Action) error

// HandleAction implements Sink
func (f SinkFunc) HandleAction(a action.Action) error {
	return f(a)
}

// Highlighter renders the hover overlay
type Highlighter interface {
	UpdateHighlight(elements []*html.Node, selector string)
	ClearHighlight()
}

// Options are the read-only recorder settings
type Options interface {
	HighlightEnabled() bool
}

// LiveOptions is an Options value that another goroutine (the config
// watcher) may update while the recorder runs
type LiveOptions struct {
	showHighlight atomic.Bool
}

// NewLiveOptions creates options with the given highlight flag
func NewLiveOptions(showHighlight bool) *LiveOptions {
	o := &LiveOptions{}
	o.showHighlight.Store(showHighlight)
	return o
}

// HighlightEnabled implements Options
func (o *LiveOptions) HighlightEnabled() bool {
	return o.showHighlight.Load()
}

// SetHighlightEnabled updates the highlight flag
func (o *LiveOptions) SetHighlightEnabled(v bool) {
	o.showHighlight.Store(v)
}
