package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/recorder"
	"github.com/lance13c/todrec/internal/sink"
)

// ActionMsg carries a recorded action to the dashboard
type ActionMsg struct {
	Action action.Action
}

// HoverMsg reports the highlighted selector and how many elements it matches
type HoverMsg struct {
	Selector string
	Count    int
}

// StateMsg reports a recording state change made outside the dashboard
type StateMsg struct {
	State recorder.RecordingState
}

// ErrMsg reports a fatal error from the recording session
type ErrMsg struct {
	Err error
}

// Notifier feeds recorder output into a running tea.Program without
// blocking the recorder's event loop
type Notifier struct {
	actions *sink.Channel
	hovers  chan HoverMsg
	states  chan StateMsg
	errs    chan ErrMsg
}

// NewNotifier creates a notifier with room for size pending messages
func NewNotifier(size int) *Notifier {
	return &Notifier{
		actions: sink.NewChannel(size),
		hovers:  make(chan HoverMsg, 1),
		states:  make(chan StateMsg, 1),
		errs:    make(chan ErrMsg, 1),
	}
}

// HandleAction implements recorder.Sink
func (n *Notifier) HandleAction(a action.Action) error {
	return n.actions.HandleAction(a)
}

// Hover queues a hover update, replacing one not yet delivered
func (n *Notifier) Hover(msg HoverMsg) {
	offerLatest(n.hovers, msg)
}

// State queues a recording state change, replacing one not yet delivered
func (n *Notifier) State(s recorder.RecordingState) {
	offerLatest(n.states, StateMsg{State: s})
}

// Fail reports the error that ended the session. Only the first is kept.
func (n *Notifier) Fail(err error) {
	if err == nil {
		return
	}
	select {
	case n.errs <- ErrMsg{Err: err}:
	default:
	}
}

func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Pump forwards queued messages to send until done is closed
func (n *Notifier) Pump(done <-chan struct{}, send func(tea.Msg)) {
	for {
		select {
		case <-done:
			return
		case a := <-n.actions.C():
			send(ActionMsg{Action: a})
		case h := <-n.hovers:
			send(h)
		case st := <-n.states:
			send(st)
		case e := <-n.errs:
			send(e)
		}
	}
}

// HoverReporter is a recorder.Highlighter that forwards to next and reports
// the hover to the dashboard
type HoverReporter struct {
	next     recorder.Highlighter
	notifier *Notifier
}

// NewHoverReporter wraps next, which may be nil
func NewHoverReporter(next recorder.Highlighter, notifier *Notifier) *HoverReporter {
	return &HoverReporter{next: next, notifier: notifier}
}

// UpdateHighlight implements recorder.Highlighter
func (h *HoverReporter) UpdateHighlight(elements []*html.Node, selector string) {
	if h.next != nil {
		h.next.UpdateHighlight(elements, selector)
	}
	h.notifier.Hover(HoverMsg{Selector: selector, Count: len(elements)})
}

// ClearHighlight implements recorder.Highlighter
func (h *HoverReporter) ClearHighlight() {
	if h.next != nil {
		h.next.ClearHighlight()
	}
	h.notifier.Hover(HoverMsg{})
}
