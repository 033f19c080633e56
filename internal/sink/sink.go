// Package sink holds destinations for recorded actions.
package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/recorder"
)

// ErrFull is returned by Channel when the consumer has fallen behind
var ErrFull = errors.New("action channel is full")

// Format names an output encoding
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatText  Format = "text"
)

// Writer encodes actions onto an io.Writer, one per line
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	enc    *json.Encoder
}

// NewWriter creates a writer sink. Unknown formats fall back to JSON lines.
func NewWriter(w io.Writer, format Format) *Writer {
	if format != FormatText {
		format = FormatJSONL
	}
	return &Writer{w: w, format: format, enc: json.NewEncoder(w)}
}

// HandleAction implements recorder.Sink
func (s *Writer) HandleAction(a action.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatText {
		if _, err := fmt.Fprintln(s.w, a.String()); err != nil {
			return fmt.Errorf("failed to write action: %w", err)
		}
		return nil
	}
	if err := s.enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode action: %w", err)
	}
	return nil
}

// Channel forwards actions to a buffered channel without blocking the
// recorder's event loop
type Channel struct {
	ch chan action.Action
}

// NewChannel creates a channel sink with the given buffer size
func NewChannel(size int) *Channel {
	return &Channel{ch: make(chan action.Action, size)}
}

// C returns the receive side
func (c *Channel) C() <-chan action.Action {
	return c.ch
}

// HandleAction implements recorder.Sink
func (c *Channel) HandleAction(a action.Action) error {
	select {
	case c.ch <- a:
		return nil
	default:
		return ErrFull
	}
}

// Multi delivers every action to each sink in order
type Multi []recorder.Sink

// HandleAction implements recorder.Sink. Every sink is tried even when an
// earlier one fails.
func (m Multi) HandleAction(a action.Action) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.HandleAction(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
