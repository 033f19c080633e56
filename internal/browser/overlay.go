package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/logging"
)

type overlayCommand struct {
	clear    bool
	locators []dom.Locator
	label    string
}

// script renders the command as an overlay call
func (c overlayCommand) script() (string, error) {
	if c.clear {
		return `window.__todrecOverlay && window.__todrecOverlay.clear()`, nil
	}
	locs := c.locators
	if locs == nil {
		locs = []dom.Locator{}
	}
	locJSON, err := json.Marshal(locs)
	if err != nil {
		return "", err
	}
	labelJSON, err := json.Marshal(c.label)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`window.__todrecOverlay && window.__todrecOverlay.update(%s, %s)`, locJSON, labelJSON), nil
}

// Overlay draws the hover highlight in the page. Updates are queued to a
// worker so the event loop never waits on Chrome; only the latest pending
// update is kept.
type Overlay struct {
	eval func(script string) error

	mu      sync.Mutex
	closed  bool
	pending chan overlayCommand
	done    chan struct{}
}

// NewOverlay creates an overlay drawing into the tab behind ctx
func NewOverlay(ctx context.Context) *Overlay {
	return newOverlay(func(script string) error {
		return chromedp.Run(ctx, chromedp.Evaluate(script, nil))
	})
}

func newOverlay(eval func(script string) error) *Overlay {
	o := &Overlay{
		eval:    eval,
		pending: make(chan overlayCommand, 1),
		done:    make(chan struct{}),
	}
	go o.worker()
	return o
}

// UpdateHighlight implements recorder.Highlighter
func (o *Overlay) UpdateHighlight(elements []*html.Node, selector string) {
	cmd := overlayCommand{label: selector}
	for _, n := range elements {
		if loc := dom.Locate(n); loc != nil {
			cmd.locators = append(cmd.locators, loc)
		}
	}
	if len(cmd.locators) == 0 {
		cmd = overlayCommand{clear: true}
	}
	o.send(cmd)
}

// ClearHighlight implements recorder.Highlighter
func (o *Overlay) ClearHighlight() {
	o.send(overlayCommand{clear: true})
}

func (o *Overlay) send(cmd overlayCommand) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	// replace a stale update that the worker has not picked up yet
	select {
	case <-o.pending:
	default:
	}
	o.pending <- cmd
}

func (o *Overlay) worker() {
	defer close(o.done)
	for cmd := range o.pending {
		script, err := cmd.script()
		if err != nil {
			logging.Warn("failed to build overlay update: %v", err)
			continue
		}
		if err := o.eval(script); err != nil {
			logging.Debug("overlay update failed: %v", err)
		}
	}
}

// Close applies any pending update and stops the worker
func (o *Overlay) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.pending)
	o.mu.Unlock()
	<-o.done
}
