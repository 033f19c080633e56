package slots

import (
	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/recorder"
)

// DefaultClickPolicy suppresses clicks that replay an action already
// recorded. A click is pointer-originated when a mousedown was seen since the
// previous click; every other click is synthetic. Suppressed are:
//
//  1. a synthetic click on the element targeted by the most recent candidate
//     (the click a browser fires after a recorded fill or press on a control)
//  2. a synthetic click directly after a recorded click, Enter or Space press
//     (label forwarding and keyboard activation)
//  3. a pointer click when a text selection was recorded after its mousedown
//     (the click that ends a selection drag)
type DefaultClickPolicy struct{}

// SuppressClick implements recorder.ClickPolicy
func (DefaultClickPolicy) SuppressClick(click recorder.ClickInfo, recent recorder.RecentActions) bool {
	if recent == nil {
		return false
	}
	last, ok := recent.Last()
	if !ok {
		return false
	}

	if click.Pointer {
		return last.Kind == action.KindSelectText && recent.Seq() > click.PressSeq
	}

	if click.Selector != "" && last.Selector == click.Selector {
		return true
	}
	switch last.Kind {
	case action.KindClick:
		return click.Detail == 0
	case action.KindPress:
		return last.Key == "Enter" || last.Key == " "
	}
	return false
}

// NoClickPolicy records every click
type NoClickPolicy struct{}

// SuppressClick implements recorder.ClickPolicy
func (NoClickPolicy) SuppressClick(recorder.ClickInfo, recorder.RecentActions) bool {
	return false
}
