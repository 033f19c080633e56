package recorder

import (
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/selector"
)

// Context is what a slot sees for one captured event. A fresh value is built
// for every event and must not be kept after the slot returns.
type Context struct {
	// DOM is the deepest originating element of the event
	DOM      *html.Node
	Selector selector.Generator

	ModifiersForEvent func(ev *dom.Event) []string
	ButtonForEvent    func(ev *dom.Event) string
	PositionForEvent  func(ev *dom.Event) action.Position

	// AddAction hands a candidate action to the dispatcher
	AddAction func(a action.Action)

	// ClickPolicy decides which clicks are side effects of actions already
	// recorded. Nil means every click is recorded.
	ClickPolicy ClickPolicy
	Recent      RecentActions
}

// ClickInfo describes a click for the suppression policy
type ClickInfo struct {
	Selector string
	// Pointer is set when a mousedown was seen since the previous click
	Pointer bool
	// PressSeq is the candidate sequence number at that mousedown
	PressSeq uint64
	Detail   int
}

// ClickPolicy decides whether a click is a synthetic side effect of an
// action already recorded
type ClickPolicy interface {
	SuppressClick(click ClickInfo, recent RecentActions) bool
}

// RecentActions is a read-only view of the candidates produced so far
type RecentActions interface {
	// Seq counts candidate actions, recorded or dropped by the state gate
	Seq() uint64
	Last() (action.Action, bool)
}

// history tracks the last candidate action. Candidates are counted before
// the recording gate so translation does not depend on recording state.
type history struct {
	seq  uint64
	last action.Action
}

func (h *history) Seq() uint64 {
	return h.seq
}

func (h *history) Last() (action.Action, bool) {
	return h.last, h.seq > 0
}

func (h *history) record(a action.Action) {
	h.seq++
	h.last = a
}

// newContext builds the per-event context
func (r *Recorder) newContext(ev *dom.Event) *Context {
	var target *html.Node
	if ev != nil {
		target = ev.DeepTarget()
	}
	return &Context{
		DOM:               target,
		Selector:          r.selector,
		ModifiersForEvent: ModifiersForEvent,
		ButtonForEvent:    ButtonForEvent,
		PositionForEvent:  PositionForEvent,
		AddAction:         r.dispatchAction,
		ClickPolicy:       r.clickPolicy,
		Recent:            &r.history,
	}
}

// ModifiersForEvent lists the held modifier keys in a fixed order
func ModifiersForEvent(ev *dom.Event) []string {
	var mods []string
	if ev.AltKey {
		mods = append(mods, "Alt")
	}
	if ev.CtrlKey {
		mods = append(mods, "Control")
	}
	if ev.MetaKey {
		mods = append(mods, "Meta")
	}
	if ev.ShiftKey {
		mods = append(mods, "Shift")
	}
	return mods
}

// ButtonForEvent names the mouse button of ev
func ButtonForEvent(ev *dom.Event) string {
	switch ev.Button {
	case 1:
		return "middle"
	case 2:
		return "right"
	default:
		return "left"
	}
}

// PositionForEvent returns the pointer position relative to the target
func PositionForEvent(ev *dom.Event) action.Position {
	return action.Position{X: ev.OffsetX, Y: ev.OffsetY}
}
