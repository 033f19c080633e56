// Package recorder turns captured DOM events into recorded actions. It owns
// the capture listeners, the slot pipeline, the recording-state gate and the
// hover highlight model.
package recorder

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/logging"
	"github.com/lance13c/todrec/internal/selector"
)

// capturedTypes are routed through the slot pipeline
var capturedTypes = []dom.EventType{
	dom.Click,
	dom.KeyDown,
	dom.Input,
	dom.MouseDown,
	dom.MouseUp,
	dom.SelectionChange,
}

// ErrActive is returned by Start when the recorder is already capturing
var ErrActive = errors.New("recorder is already active")

// Deps are the collaborators a Recorder consumes
type Deps struct {
	Selector    selector.Generator
	Highlighter Highlighter
	State       StateSource
	Sink        Sink
	Options     Options
	ClickPolicy ClickPolicy
}

// HighlightModel is the resolution of the hovered element
type HighlightModel struct {
	Selector string
	Elements []*html.Node
}

// Recorder captures events from one document. All methods must be called
// from the goroutine that dispatches the document's events.
type Recorder struct {
	selector    selector.Generator
	highlight   Highlighter
	state       StateSource
	sink        Sink
	options     Options
	clickPolicy ClickPolicy

	pipeline *Pipeline
	history  history

	active    bool
	disposers []func()

	hoveredElement *html.Node
	hoveredModel   *HighlightModel
}

// New creates a recorder. A nil Selector falls back to the CSS generator.
func New(deps Deps) *Recorder {
	r := &Recorder{
		selector:    deps.Selector,
		highlight:   deps.Highlighter,
		state:       deps.State,
		sink:        deps.Sink,
		options:     deps.Options,
		clickPolicy: deps.ClickPolicy,
		pipeline:    NewPipeline(),
	}
	if r.selector == nil {
		r.selector = selector.NewGenerator()
	}
	if r.options == nil {
		r.options = NewLiveOptions(false)
	}
	return r
}

// RegisterSlot appends one or more slots to the pipeline
func (r *Recorder) RegisterSlot(slots ...Slot) {
	r.pipeline.Register(slots...)
}

// Active reports whether capture listeners are installed
func (r *Recorder) Active() bool {
	return r.active
}

// Start installs capture-phase listeners on target
func (r *Recorder) Start(target dom.EventTarget) error {
	if r.active {
		return ErrActive
	}
	if target == nil {
		return fmt.Errorf("no event target to record from")
	}

	if r.options.HighlightEnabled() {
		r.disposers = append(r.disposers, target.AddEventListener(dom.MouseMove, r.onMouseMove, true))
	}
	for _, typ := range capturedTypes {
		r.disposers = append(r.disposers, target.AddEventListener(typ, r.onEvent, true))
	}
	r.active = true

	logging.Info("recorder started with %d slots (highlight=%t)", r.pipeline.Len(), r.options.HighlightEnabled())
	return nil
}

// Flush emits any pending coalesced actions without stopping capture
func (r *Recorder) Flush() {
	r.pipeline.Settle(nil, r.newContext(nil))
}

// Stop removes every listener, flushes pending actions, clears the overlay
// and drops hover state. Each step runs even if an earlier one fails.
// Calling Stop again is a no-op.
func (r *Recorder) Stop() {
	if !r.active {
		return
	}
	r.active = false

	teardown("flush", r.Flush)
	for _, dispose := range r.disposers {
		teardown("remove listener", dispose)
	}
	r.disposers = nil
	if r.highlight != nil {
		teardown("clear highlight", r.highlight.ClearHighlight)
	}
	r.hoveredModel = nil
	r.hoveredElement = nil

	logging.Info("recorder stopped")
}

func teardown(step string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("recorder teardown step %q failed: %v", step, rec)
		}
	}()
	fn()
}

// onEvent routes a captured event through the slot pipeline
func (r *Recorder) onEvent(ev *dom.Event) {
	r.pipeline.Run(ev, r.newContext(ev))
}

// dispatchAction is the only path by which an action leaves the recorder
func (r *Recorder) dispatchAction(a action.Action) {
	r.history.record(a)

	if r.state == nil || r.state.State() != StateRecording {
		logging.Debug("dropped %s: not recording", a.Kind)
		return
	}
	if r.sink == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("action sink failed on %s: %v", a.Kind, rec)
		}
	}()
	if err := r.sink.HandleAction(a); err != nil {
		logging.Warn("action sink rejected %s: %v", a.Kind, err)
	}
}

// Hovered returns the current hover model, if any
func (r *Recorder) Hovered() (HighlightModel, bool) {
	if r.hoveredModel == nil {
		return HighlightModel{}, false
	}
	return *r.hoveredModel, true
}

// HoveredElement returns the tracked hovered element
func (r *Recorder) HoveredElement() *html.Node {
	return r.hoveredElement
}

func (r *Recorder) onMouseMove(ev *dom.Event) {
	if !r.options.HighlightEnabled() {
		return
	}
	target := ev.DeepTarget()
	if r.hoveredElement == target {
		return
	}
	r.hoveredElement = target
	r.guardHover(r.updateModelForHoveredElement)
}

// guardHover runs a hover update; a failure leaves no highlight shown
func (r *Recorder) guardHover(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("hover highlight failed: %v", rec)
			r.hoveredModel = nil
			if r.highlight != nil {
				teardown("clear highlight", r.highlight.ClearHighlight)
			}
		}
	}()
	fn()
}

func (r *Recorder) updateModelForHoveredElement() {
	if r.hoveredElement == nil {
		r.hoveredModel = nil
		r.updateHighlight()
		return
	}

	hovered := r.hoveredElement
	res := r.selector.GenerateSelector(hovered)
	if r.hoveredElement != hovered {
		return
	}
	if r.hoveredModel != nil && r.hoveredModel.Selector == res.Selector {
		return
	}

	if res.Selector != "" {
		r.hoveredModel = &HighlightModel{Selector: res.Selector, Elements: res.Elements}
	} else {
		r.hoveredModel = nil
	}
	r.updateHighlight()
}

func (r *Recorder) updateHighlight() {
	if r.highlight == nil {
		return
	}
	if r.hoveredModel == nil {
		r.highlight.UpdateHighlight(nil, "")
		return
	}
	r.highlight.UpdateHighlight(r.hoveredModel.Elements, r.hoveredModel.Selector)
}
