package dom

import (
	"golang.org/x/net/html"
)

// EventType is the tag of a DOM event
type EventType string

// Event types the recorder captures
const (
	Click           EventType = "click"
	KeyDown         EventType = "keydown"
	Input           EventType = "input"
	MouseDown       EventType = "mousedown"
	MouseUp         EventType = "mouseup"
	SelectionChange EventType = "selectionchange"
	MouseMove       EventType = "mousemove"
)

// Selection is the text range reported with a selectionchange event
type Selection struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Collapsed reports whether the selection is a caret with no selected text
func (s *Selection) Collapsed() bool {
	return s == nil || (s.Start == s.End && s.Text == "")
}

// Event is a dispatched DOM event. Fields mirror the browser's MouseEvent,
// KeyboardEvent and InputEvent; fields irrelevant to a type stay zero.
type Event struct {
	Type EventType

	// path is the composed path, deepest originating node first
	path []*html.Node

	Button  int
	Buttons int
	// Detail is the click count; browsers report 0 for clicks that were
	// not produced by a pointing device.
	Detail int

	AltKey   bool
	CtrlKey  bool
	MetaKey  bool
	ShiftKey bool

	ClientX float64
	ClientY float64
	OffsetX float64
	OffsetY float64

	Key         string
	Code        string
	Repeat      bool
	IsComposing bool

	InputType string
	Data      string
	// Value is the target's value after an input event
	Value   string
	Checked bool

	Selection *Selection

	Trusted   bool
	TimeStamp float64

	stopped bool
}

// NewEvent creates an event of the given type originating at target
func NewEvent(typ EventType, target *html.Node) *Event {
	return &Event{
		Type:    typ,
		path:    ComposedPathOf(target),
		Trusted: true,
	}
}

// ComposedPath returns the event path, deepest node first
func (e *Event) ComposedPath() []*html.Node {
	return e.path
}

// DeepTarget returns the innermost originating node, across shadow
// boundaries
func (e *Event) DeepTarget() *html.Node {
	if len(e.path) == 0 {
		return nil
	}
	return e.path[0]
}

// Target returns the retargeted node visible to a document listener
func (e *Event) Target() *html.Node {
	return Retarget(e.DeepTarget())
}

// StopPropagation prevents the event from reaching listeners further along
// the path. Capture listeners on the document have already run by then.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called
func (e *Event) PropagationStopped() bool {
	return e.stopped
}
