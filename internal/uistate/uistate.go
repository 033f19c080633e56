// Package uistate owns the recording state shared by the dashboard, the CLI
// and the recorder's dispatch gate.
package uistate

import (
	"sync"

	"github.com/lance13c/todrec/internal/logging"
	"github.com/lance13c/todrec/internal/recorder"
)

// UIState holds the current recording state. It is safe for concurrent use:
// the recorder reads it on the event goroutine while the dashboard writes it.
type UIState struct {
	mu          sync.RWMutex
	state       recorder.RecordingState
	subscribers []func(from, to recorder.RecordingState)
}

// New creates a state holder starting in initial
func New(initial recorder.RecordingState) *UIState {
	return &UIState{state: initial}
}

// State implements recorder.StateSource
func (u *UIState) State() recorder.RecordingState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

// Set moves to state s and notifies subscribers if it changed
func (u *UIState) Set(s recorder.RecordingState) {
	u.mu.Lock()
	from := u.state
	if from == s {
		u.mu.Unlock()
		return
	}
	u.state = s
	subs := append([]func(from, to recorder.RecordingState){}, u.subscribers...)
	u.mu.Unlock()

	logging.Info("recording state %s -> %s", from, s)
	for _, fn := range subs {
		fn(from, s)
	}
}

// Toggle starts or resumes recording, or pauses it when already recording.
// It returns the new state.
func (u *UIState) Toggle() recorder.RecordingState {
	next := recorder.StateRecording
	if u.State() == recorder.StateRecording {
		next = recorder.StatePaused
	}
	u.Set(next)
	return next
}

// Subscribe registers fn to run after every state change. Subscribers run on
// the goroutine that changed the state.
func (u *UIState) Subscribe(fn func(from, to recorder.RecordingState)) {
	if fn == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.subscribers = append(u.subscribers, fn)
}
