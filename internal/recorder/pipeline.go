package recorder

import (
	"fmt"

	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/logging"
)

// Slot translates captured events into candidate actions. Handles lists the
// event types the slot wants; an empty list means every captured event.
type Slot interface {
	Handles() []dom.EventType
	Handle(typ dom.EventType, ev *dom.Event, rc *Context)
}

// Settler is implemented by slots that keep a pending action across events.
// Settle runs before any slot handles the next event, so a pending action is
// emitted ahead of whatever the next event produces. next is nil when the
// recorder is flushing or shutting down.
type Settler interface {
	Settle(next *dom.Event, rc *Context)
}

type slotFunc struct {
	types []dom.EventType
	fn    func(typ dom.EventType, ev *dom.Event, rc *Context)
}

func (s slotFunc) Handles() []dom.EventType { return s.types }

func (s slotFunc) Handle(typ dom.EventType, ev *dom.Event, rc *Context) {
	s.fn(typ, ev, rc)
}

// NewSlot wraps a stateless translator function
func NewSlot(fn func(typ dom.EventType, ev *dom.Event, rc *Context), types ...dom.EventType) Slot {
	return slotFunc{types: types, fn: fn}
}

// Pipeline is the ordered slot registry. Slots are never removed.
type Pipeline struct {
	slots  []Slot
	routes map[dom.EventType][]Slot
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{routes: make(map[dom.EventType][]Slot)}
}

// Register appends slots in order
func (p *Pipeline) Register(slots ...Slot) {
	for _, s := range slots {
		if s == nil {
			continue
		}
		p.slots = append(p.slots, s)
	}
	p.routes = make(map[dom.EventType][]Slot)
}

// Len returns the number of registered slots
func (p *Pipeline) Len() int {
	return len(p.slots)
}

// route returns the slots interested in typ, in registration order
func (p *Pipeline) route(typ dom.EventType) []Slot {
	if r, ok := p.routes[typ]; ok {
		return r
	}
	var r []Slot
	for _, s := range p.slots {
		types := s.Handles()
		if len(types) == 0 {
			r = append(r, s)
			continue
		}
		for _, t := range types {
			if t == typ {
				r = append(r, s)
				break
			}
		}
	}
	p.routes[typ] = r
	return r
}

// Run settles pending slots and then hands the event to every interested
// slot. A failing slot never stops the ones after it.
func (p *Pipeline) Run(ev *dom.Event, rc *Context) {
	p.Settle(ev, rc)
	for _, s := range p.route(ev.Type) {
		guard(s, ev.Type, func() { s.Handle(ev.Type, ev, rc) })
	}
}

// Settle asks every settler to flush unless next continues its gesture
func (p *Pipeline) Settle(next *dom.Event, rc *Context) {
	var typ dom.EventType = "flush"
	if next != nil {
		typ = next.Type
	}
	for _, s := range p.slots {
		st, ok := s.(Settler)
		if !ok {
			continue
		}
		guard(s, typ, func() { st.Settle(next, rc) })
	}
}

func guard(s Slot, typ dom.EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("slot %s failed on %s: %v", slotName(s), typ, r)
		}
	}()
	fn()
}

func slotName(s Slot) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
