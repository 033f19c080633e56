// Package slots holds the built-in translators from captured events to
// recorded actions.
package slots

import (
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/recorder"
)

// Defaults returns fresh instances of the built-in slots in registration
// order. Slots keep per-recorder state, so never share them.
func Defaults() []recorder.Slot {
	return []recorder.Slot{
		NewClickSlot(),
		NewInputSlot(),
		NewKeydownSlot(),
		NewSelectionSlot(),
	}
}

// selectorFor resolves n through the context's generator. An empty result
// still produces an action; code generation decides how to treat it.
func selectorFor(rc *recorder.Context, n *html.Node) string {
	if rc.Selector == nil || n == nil {
		return ""
	}
	return rc.Selector.GenerateSelector(n).Selector
}
