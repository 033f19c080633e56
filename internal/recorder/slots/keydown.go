package slots

import (
	"unicode/utf8"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/recorder"
)

// namedKeys always matter to a replayed script
var namedKeys = map[string]bool{
	"Enter":      true,
	"Tab":        true,
	"Escape":     true,
	"ArrowUp":    true,
	"ArrowDown":  true,
	"ArrowLeft":  true,
	"ArrowRight": true,
	"Home":       true,
	"End":        true,
	"PageUp":     true,
	"PageDown":   true,
	"F1":         true,
	"F2":         true,
	"F3":         true,
	"F4":         true,
	"F5":         true,
	"F6":         true,
	"F7":         true,
	"F8":         true,
	"F9":         true,
	"F10":        true,
	"F11":        true,
	"F12":        true,
}

var modifierKeys = map[string]bool{
	"Shift":    true,
	"Control":  true,
	"Alt":      true,
	"Meta":     true,
	"AltGraph": true,
	"CapsLock": true,
}

// KeydownSlot records presses of keys a script must replay. Text typed into
// editable elements reaches the input slot instead.
type KeydownSlot struct{}

// NewKeydownSlot creates a keydown slot
func NewKeydownSlot() *KeydownSlot {
	return &KeydownSlot{}
}

func (s *KeydownSlot) String() string { return "keydown" }

// Handles implements recorder.Slot
func (s *KeydownSlot) Handles() []dom.EventType {
	return []dom.EventType{dom.KeyDown}
}

// Handle implements recorder.Slot
func (s *KeydownSlot) Handle(typ dom.EventType, ev *dom.Event, rc *recorder.Context) {
	if ev.IsComposing || ev.Key == "" || modifierKeys[ev.Key] {
		return
	}
	// a select consumes printable keys for type-ahead
	typing := dom.IsEditable(rc.DOM) || dom.IsSelect(rc.DOM)
	if !meaningfulKey(ev, typing) {
		return
	}
	rc.AddAction(action.NewPress(selectorFor(rc, rc.DOM), ev.Key, rc.ModifiersForEvent(ev)))
}

func meaningfulKey(ev *dom.Event, editable bool) bool {
	switch {
	case namedKeys[ev.Key]:
		return true
	case ev.CtrlKey || ev.MetaKey || ev.AltKey:
		return true
	case ev.Key == "Backspace" || ev.Key == "Delete":
		return !editable
	case isPrintable(ev.Key):
		// page shortcuts such as j/k; in a field the input slot has it
		return !editable
	}
	return false
}

// isPrintable reports whether key is a single character key value
func isPrintable(key string) bool {
	return key != "" && utf8.RuneCountInString(key) == 1
}
