package slots

import (
	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/recorder"
)

// ClickSlot records clicks. It watches mousedown to tell pointer clicks from
// synthetic ones and leaves suppression to the context's ClickPolicy.
type ClickSlot struct {
	pressed  bool
	pressSeq uint64
}

// NewClickSlot creates a click slot
func NewClickSlot() *ClickSlot {
	return &ClickSlot{}
}

func (s *ClickSlot) String() string { return "click" }

// Handles implements recorder.Slot
func (s *ClickSlot) Handles() []dom.EventType {
	return []dom.EventType{dom.MouseDown, dom.Click}
}

// Handle implements recorder.Slot
func (s *ClickSlot) Handle(typ dom.EventType, ev *dom.Event, rc *recorder.Context) {
	switch typ {
	case dom.MouseDown:
		s.pressed = true
		if rc.Recent != nil {
			s.pressSeq = rc.Recent.Seq()
		}
	case dom.Click:
		info := recorder.ClickInfo{
			Selector: selectorFor(rc, rc.DOM),
			Pointer:  s.pressed,
			PressSeq: s.pressSeq,
			Detail:   ev.Detail,
		}
		s.pressed = false
		if rc.DOM == nil {
			return
		}
		if rc.ClickPolicy != nil && rc.ClickPolicy.SuppressClick(info, rc.Recent) {
			return
		}
		count := ev.Detail
		if count < 1 {
			count = 1
		}
		rc.AddAction(action.NewClick(
			info.Selector,
			rc.ButtonForEvent(ev),
			rc.ModifiersForEvent(ev),
			count,
			rc.PositionForEvent(ev),
		))
	}
}
