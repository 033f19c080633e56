package slots

import (
	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/recorder"
)

type textRange struct {
	selector string
	start    int
	end      int
	text     string
}

// SelectionSlot records text selections. selectionchange fires for every
// step of a drag, so the latest range stays pending until another kind of
// event arrives.
type SelectionSlot struct {
	pending *textRange
	last    *textRange
}

// NewSelectionSlot creates a selection slot
func NewSelectionSlot() *SelectionSlot {
	return &SelectionSlot{}
}

func (s *SelectionSlot) String() string { return "selection" }

// Handles implements recorder.Slot
func (s *SelectionSlot) Handles() []dom.EventType {
	return []dom.EventType{dom.SelectionChange}
}

// Handle implements recorder.Slot
func (s *SelectionSlot) Handle(typ dom.EventType, ev *dom.Event, rc *recorder.Context) {
	sel := ev.Selection
	if sel.Collapsed() {
		s.pending = nil
		return
	}
	if rc.DOM == nil {
		return
	}
	s.pending = &textRange{
		selector: selectorFor(rc, rc.DOM),
		start:    sel.Start,
		end:      sel.End,
		text:     sel.Text,
	}
}

// Settle implements recorder.Settler
func (s *SelectionSlot) Settle(next *dom.Event, rc *recorder.Context) {
	if s.pending == nil {
		return
	}
	if next != nil && next.Type == dom.SelectionChange {
		return
	}
	p := s.pending
	s.pending = nil
	if s.last != nil && *s.last == *p {
		return
	}
	s.last = p
	rc.AddAction(action.NewSelectText(p.selector, p.start, p.end, p.text))
}
