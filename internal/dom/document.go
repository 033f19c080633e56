package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Listener handles a dispatched event
type Listener func(ev *Event)

// EventTarget is anything the recorder can attach document-level listeners
// to. The returned function removes the listener; calling it more than once
// is harmless.
type EventTarget interface {
	AddEventListener(typ EventType, fn Listener, capture bool) (remove func())
}

type registration struct {
	fn      Listener
	removed bool
}

// Document is a parsed page plus its listener registry. It is not safe for
// concurrent use; the owner drives it from a single goroutine.
type Document struct {
	root *html.Node

	capture  map[EventType][]*registration
	bubble   map[EventType][]*registration
	elements map[*html.Node]map[EventType][]*registration
}

// NewDocument wraps an existing document node. A nil root yields an empty
// document.
func NewDocument(root *html.Node) *Document {
	if root == nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return &Document{
		root:     root,
		capture:  make(map[EventType][]*registration),
		bubble:   make(map[EventType][]*registration),
		elements: make(map[*html.Node]map[EventType][]*registration),
	}
}

// Parse reads an HTML document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewDocument(root), nil
}

// ParseString parses an HTML document held in a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node
func (d *Document) Root() *html.Node {
	return d.root
}

// SetRoot replaces the node tree, keeping document listeners. Element
// listeners belong to the old tree and are dropped.
func (d *Document) SetRoot(root *html.Node) {
	if root == nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	d.root = root
	d.elements = make(map[*html.Node]map[EventType][]*registration)
}

// GetElementByID finds an element by id anywhere in the document, shadow
// trees included
func (d *Document) GetElementByID(id string) *html.Node {
	return FindByID(d.root, id)
}

// AddEventListener registers a document-level listener. Capture listeners
// run before anything on the event path.
func (d *Document) AddEventListener(typ EventType, fn Listener, capture bool) func() {
	reg := &registration{fn: fn}
	table := d.bubble
	if capture {
		table = d.capture
	}
	table[typ] = append(table[typ], reg)
	return func() {
		if reg.removed {
			return
		}
		reg.removed = true
		table[typ] = without(table[typ], reg)
	}
}

// AddElementListener registers a page listener on an element. These model
// the page's own handlers, which run after document capture listeners and
// may stop propagation.
func (d *Document) AddElementListener(n *html.Node, typ EventType, fn Listener) func() {
	reg := &registration{fn: fn}
	byType := d.elements[n]
	if byType == nil {
		byType = make(map[EventType][]*registration)
		d.elements[n] = byType
	}
	byType[typ] = append(byType[typ], reg)
	return func() {
		if reg.removed {
			return
		}
		reg.removed = true
		byType[typ] = without(byType[typ], reg)
	}
}

// ListenerCount returns the number of document listeners for typ, both phases
func (d *Document) ListenerCount(typ EventType) int {
	return len(d.capture[typ]) + len(d.bubble[typ])
}

// Dispatch delivers ev: document capture listeners, then element listeners
// from the deepest target outwards, then document bubble listeners.
func (d *Document) Dispatch(ev *Event) {
	for _, reg := range snapshot(d.capture[ev.Type]) {
		if !reg.removed {
			reg.fn(ev)
		}
	}
	for _, n := range ev.ComposedPath() {
		if ev.PropagationStopped() {
			return
		}
		for _, reg := range snapshot(d.elements[n][ev.Type]) {
			if !reg.removed {
				reg.fn(ev)
			}
		}
	}
	if ev.PropagationStopped() {
		return
	}
	for _, reg := range snapshot(d.bubble[ev.Type]) {
		if !reg.removed {
			reg.fn(ev)
		}
	}
}

func snapshot(regs []*registration) []*registration {
	return append([]*registration(nil), regs...)
}

func without(regs []*registration, drop *registration) []*registration {
	out := regs[:0]
	for _, r := range regs {
		if r != drop {
			out = append(out, r)
		}
	}
	return out
}
