// Package action defines the recorded action vocabulary handed to code
// generation.
package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names a semantic user interaction
type Kind string

const (
	KindClick      Kind = "click"
	KindFill       Kind = "fill"
	KindSelect     Kind = "select"
	KindPress      Kind = "press"
	KindSelectText Kind = "select-text"
)

// Position is a point relative to the target element
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Action is one recorded interaction. Values are built by the constructors
// below and never modified afterwards.
type Action struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"action"`
	Selector   string    `json:"selector"`
	Button     string    `json:"button,omitempty"`
	Modifiers  []string  `json:"modifiers,omitempty"`
	ClickCount int       `json:"clickCount,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Text       string    `json:"text,omitempty"`
	Options    []string  `json:"options,omitempty"`
	Key        string    `json:"key,omitempty"`
	Start      int       `json:"start,omitempty"`
	End        int       `json:"end,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func newAction(kind Kind, selector string) Action {
	return Action{
		ID:        uuid.NewString(),
		Kind:      kind,
		Selector:  selector,
		Timestamp: time.Now(),
	}
}

// NewClick records a click
func NewClick(selector, button string, modifiers []string, clickCount int, pos Position) Action {
	a := newAction(KindClick, selector)
	a.Button = button
	a.Modifiers = clone(modifiers)
	a.ClickCount = clickCount
	a.Position = &pos
	return a
}

// NewFill records the final text of one contiguous edit
func NewFill(selector, text string) Action {
	a := newAction(KindFill, selector)
	a.Text = text
	return a
}

// NewSelectOption records a <select> value change
func NewSelectOption(selector string, values ...string) Action {
	a := newAction(KindSelect, selector)
	a.Options = clone(values)
	return a
}

// NewPress records a key press
func NewPress(selector, key string, modifiers []string) Action {
	a := newAction(KindPress, selector)
	a.Key = key
	a.Modifiers = clone(modifiers)
	return a
}

// NewSelectText records a text selection range
func NewSelectText(selector string, start, end int, text string) Action {
	a := newAction(KindSelectText, selector)
	a.Start = start
	a.End = end
	a.Text = text
	return a
}

// String renders a one-line summary for logs and the dashboard
func (a Action) String() string {
	switch a.Kind {
	case KindClick:
		prefix := ""
		if len(a.Modifiers) > 0 {
			prefix = strings.Join(a.Modifiers, "+") + "+"
		}
		if a.Button != "" && a.Button != "left" {
			return fmt.Sprintf("%s%s click %s", prefix, a.Button, a.Selector)
		}
		return fmt.Sprintf("%sclick %s", prefix, a.Selector)
	case KindFill:
		return fmt.Sprintf("fill %s %q", a.Selector, a.Text)
	case KindSelect:
		return fmt.Sprintf("select %s %q", a.Selector, strings.Join(a.Options, ","))
	case KindPress:
		key := a.Key
		if len(a.Modifiers) > 0 {
			key = strings.Join(append(clone(a.Modifiers), a.Key), "+")
		}
		return fmt.Sprintf("press %s %s", a.Selector, key)
	case KindSelectText:
		return fmt.Sprintf("select-text %s [%d:%d]", a.Selector, a.Start, a.End)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Selector)
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
