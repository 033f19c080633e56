package browser

import (
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
)

// eventMessage is one captured event as posted by the capture script
type eventMessage struct {
	Type dom.EventType `json:"type"`
	Path []int         `json:"path"`
	// TargetID is the target element's id, used when the locator does not
	// land on it in the parsed snapshot
	TargetID string `json:"targetId,omitempty"`
	// HTML is a fresh serialisation of the page, present when the DOM
	// changed since the previous message
	HTML string `json:"html,omitempty"`

	Button  int `json:"button"`
	Buttons int `json:"buttons"`
	Detail  int `json:"detail"`

	AltKey   bool `json:"altKey"`
	CtrlKey  bool `json:"ctrlKey"`
	MetaKey  bool `json:"metaKey"`
	ShiftKey bool `json:"shiftKey"`

	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`

	Key         string `json:"key"`
	Code        string `json:"code"`
	Repeat      bool   `json:"repeat"`
	IsComposing bool   `json:"isComposing"`

	InputType string `json:"inputType"`
	Data      string `json:"data"`
	Value     string `json:"value"`
	Checked   bool   `json:"checked"`

	Selection *dom.Selection `json:"selection,omitempty"`

	Trusted   bool    `json:"trusted"`
	TimeStamp float64 `json:"timeStamp"`
}

func decodeMessage(payload string) (*eventMessage, error) {
	var msg eventMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, fmt.Errorf("failed to decode event message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("event message has no type")
	}
	return &msg, nil
}

// toEvent resolves the message's locator against root and builds the event
func (m *eventMessage) toEvent(root *html.Node) (*dom.Event, error) {
	if m.Path == nil {
		return nil, fmt.Errorf("%s event has no addressable target", m.Type)
	}
	target, err := dom.Resolve(root, dom.Locator(m.Path))
	if m.TargetID != "" && (err != nil || dom.AttrOr(target, "id", "") != m.TargetID) {
		// the parser rebuilt this part of the tree differently from the page
		if n := uniqueByID(root, m.TargetID); n != nil {
			target, err = n, nil
		}
	}
	if err != nil {
		return nil, err
	}

	ev := dom.NewEvent(m.Type, target)
	ev.Button = m.Button
	ev.Buttons = m.Buttons
	ev.Detail = m.Detail
	ev.AltKey = m.AltKey
	ev.CtrlKey = m.CtrlKey
	ev.MetaKey = m.MetaKey
	ev.ShiftKey = m.ShiftKey
	ev.ClientX = m.ClientX
	ev.ClientY = m.ClientY
	ev.OffsetX = m.OffsetX
	ev.OffsetY = m.OffsetY
	ev.Key = m.Key
	ev.Code = m.Code
	ev.Repeat = m.Repeat
	ev.IsComposing = m.IsComposing
	ev.InputType = m.InputType
	ev.Data = m.Data
	ev.Value = m.Value
	ev.Checked = m.Checked
	ev.Selection = m.Selection
	ev.Trusted = m.Trusted
	ev.TimeStamp = m.TimeStamp
	return ev, nil
}

// uniqueByID returns the only element with the given id, or nil when there
// is none or more than one
func uniqueByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	for _, n := range dom.Elements(root) {
		if dom.AttrOr(n, "id", "") != id {
			continue
		}
		if found != nil {
			return nil
		}
		found = n
	}
	return found
}
