package slots

import (
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/recorder"
)

type pendingFill struct {
	target   *html.Node
	selector string
	value    string
}

// InputSlot records text edits as one fill per contiguous edit of an
// element, and <select> changes as select actions. Other widgets are left to
// the click slot.
type InputSlot struct {
	pending *pendingFill
}

// NewInputSlot creates an input slot
func NewInputSlot() *InputSlot {
	return &InputSlot{}
}

func (s *InputSlot) String() string { return "input" }

// Handles implements recorder.Slot
func (s *InputSlot) Handles() []dom.EventType {
	return []dom.EventType{dom.Input}
}

// Handle implements recorder.Slot
func (s *InputSlot) Handle(typ dom.EventType, ev *dom.Event, rc *recorder.Context) {
	target := rc.DOM
	switch {
	case target == nil:
		return
	case dom.IsSelect(target):
		rc.AddAction(action.NewSelectOption(selectorFor(rc, target), ev.Value))
		return
	case !dom.IsEditable(target):
		return
	}

	value := ev.Value
	if value == "" && !dom.IsTextInput(target) {
		value = dom.TextContent(target)
	}

	if s.pending != nil && s.sameTarget(rc, target) {
		s.pending.target = target
		s.pending.value = value
		return
	}
	s.pending = &pendingFill{
		target:   target,
		selector: selectorFor(rc, target),
		value:    value,
	}
}

// Settle implements recorder.Settler
func (s *InputSlot) Settle(next *dom.Event, rc *recorder.Context) {
	if s.pending == nil {
		return
	}
	if next != nil && s.continues(next, rc) {
		return
	}
	p := s.pending
	s.pending = nil
	rc.AddAction(action.NewFill(p.selector, p.value))
}

// continues reports whether next is part of the pending edit
func (s *InputSlot) continues(next *dom.Event, rc *recorder.Context) bool {
	target := next.DeepTarget()
	switch next.Type {
	case dom.Input:
		return s.sameTarget(rc, target)
	case dom.KeyDown:
		if next.CtrlKey || next.MetaKey || next.AltKey || !s.sameTarget(rc, target) {
			return false
		}
		return isPrintable(next.Key) || next.Key == "Backspace" || next.Key == "Delete" || next.IsComposing
	case dom.SelectionChange:
		return next.Selection.Collapsed() || s.sameTarget(rc, target)
	}
	return false
}

// sameTarget matches by node, or by selector once the page snapshot has
// been replaced and the node is a different copy of the same element
func (s *InputSlot) sameTarget(rc *recorder.Context, n *html.Node) bool {
	if n == nil {
		return false
	}
	if n == s.pending.target {
		return true
	}
	if dom.DocumentOf(n) == dom.DocumentOf(s.pending.target) {
		return false
	}
	return s.pending.selector != "" && selectorFor(rc, n) == s.pending.selector
}
