package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/logging"
)

const messageBuffer = 1024

// Bridge carries events from the page into a dom.Document. Chrome posts
// messages on its own goroutine; Run replays them one at a time on the
// caller's goroutine, which is where the recorder's listeners execute.
type Bridge struct {
	doc  *dom.Document
	msgs chan string

	// refresh asks the page to resend its DOM with the next event
	refresh func()
}

// NewBridge creates a bridge that dispatches into doc
func NewBridge(doc *dom.Document) *Bridge {
	return &Bridge{
		doc:  doc,
		msgs: make(chan string, messageBuffer),
	}
}

// Document returns the mirrored page document
func (b *Bridge) Document() *dom.Document {
	return b.doc
}

// Install registers the binding and page scripts in the tab behind ctx and
// starts forwarding binding calls to Run
func (b *Bridge) Install(ctx context.Context) error {
	b.refresh = func() {
		go func() {
			if err := chromedp.Run(ctx, chromedp.Evaluate(`window.__todrec && window.__todrec.markDirty()`, nil)); err != nil {
				logging.Debug("failed to request DOM refresh: %v", err)
			}
		}()
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != BindingName {
			return
		}
		b.Deliver(called.Payload)
	})

	actions := []chromedp.Action{runtime.AddBinding(BindingName)}
	for _, script := range pageScripts() {
		src := script
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(src).Do(ctx)
			return err
		}))
	}
	// the current document predates the registration above
	actions = append(actions, chromedp.Evaluate(strings.Join(pageScripts(), "\n"), nil))

	if err := chromedp.Run(ctx, actions...); err != nil {
		return fmt.Errorf("failed to install capture scripts: %w", err)
	}

	logging.Info("capture scripts installed (binding %s)", BindingName)
	return nil
}

// Deliver queues a raw message without blocking. Messages that do not fit
// are dropped and the page is asked for a fresh DOM.
func (b *Bridge) Deliver(payload string) {
	select {
	case b.msgs <- payload:
	default:
		logging.Warn("event queue full, dropping message")
		if b.refresh != nil {
			b.refresh()
		}
	}
}

// Run dispatches queued messages until ctx is done
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case payload := <-b.msgs:
			b.handle(payload)
		}
	}
}

// handle applies one message: refresh the tree if the page sent one, then
// dispatch the event at its resolved target
func (b *Bridge) handle(payload string) {
	msg, err := decodeMessage(payload)
	if err != nil {
		logging.Warn("%v", err)
		return
	}

	if msg.HTML != "" {
		root, err := dom.ParseString(msg.HTML)
		if err != nil {
			logging.Warn("failed to parse page snapshot: %v", err)
		} else {
			b.doc.SetRoot(root.Root())
		}
	}

	// nothing listens, e.g. mousemove with highlighting off
	if b.doc.ListenerCount(msg.Type) == 0 {
		return
	}

	ev, err := msg.toEvent(b.doc.Root())
	if err != nil {
		logging.Debug("skipping %s: %v", msg.Type, err)
		if msg.Path != nil && b.refresh != nil {
			b.refresh()
		}
		return
	}
	b.doc.Dispatch(ev)
}
