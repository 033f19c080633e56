package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/action"
	"github.com/lance13c/todrec/internal/recorder"
	"github.com/lance13c/todrec/internal/uistate"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboardKeysDriveState(t *testing.T) {
	state := uistate.New(recorder.StateIdle)
	d := NewDashboard(state, "http://localhost")

	d.Update(key("p"))
	require.Equal(t, recorder.StateIdle, state.State(), "nothing to pause")

	d.Update(key("r"))
	require.Equal(t, recorder.StateRecording, state.State())

	d.Update(key("p"))
	require.Equal(t, recorder.StatePaused, state.State())

	d.Update(key("r"))
	require.Equal(t, recorder.StateRecording, state.State())

	_, cmd := d.Update(key("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboardShowsActionsAndHover(t *testing.T) {
	d := NewDashboard(uistate.New(recorder.StateRecording), "page")
	d.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	require.Contains(t, d.View(), "no actions recorded yet")

	fill := action.NewFill("#email", "a@b.c")
	d.Update(ActionMsg{Action: fill})
	d.Update(HoverMsg{Selector: "#submit", Count: 1})

	view := d.View()
	require.Contains(t, view, "REC")
	require.Contains(t, view, "#submit")
	require.Contains(t, view, "(1 match)")
	require.Contains(t, view, fill.String())
	require.Len(t, d.Actions(), 1)
}

func TestDashboardQuitsOnError(t *testing.T) {
	d := NewDashboard(uistate.New(recorder.StateIdle), "page")
	boom := errors.New("browser closed")

	_, cmd := d.Update(ErrMsg{Err: boom})
	require.NotNil(t, cmd)
	require.ErrorIs(t, d.Err(), boom)
}

type countingHighlighter struct{ updates, clears int }

func (c *countingHighlighter) UpdateHighlight([]*html.Node, string) { c.updates++ }
func (c *countingHighlighter) ClearHighlight()                      { c.clears++ }

func TestNotifierForwardsInOrder(t *testing.T) {
	n := NewNotifier(8)
	next := &countingHighlighter{}
	hr := NewHoverReporter(next, n)

	require.NoError(t, n.HandleAction(action.NewFill("#a", "1")))
	require.NoError(t, n.HandleAction(action.NewFill("#a", "2")))
	hr.UpdateHighlight([]*html.Node{{}, {}}, "li")
	hr.UpdateHighlight([]*html.Node{{}}, "#only")
	hr.ClearHighlight()

	require.Equal(t, 2, next.updates)
	require.Equal(t, 1, next.clears)

	msgs := make(chan tea.Msg, 8)
	done := make(chan struct{})
	go n.Pump(done, func(m tea.Msg) { msgs <- m })
	defer close(done)

	var texts []string
	var hovers []HoverMsg
	deadline := time.After(2 * time.Second)
	for len(texts) < 2 || len(hovers) < 1 {
		select {
		case m := <-msgs:
			switch m := m.(type) {
			case ActionMsg:
				texts = append(texts, m.Action.Text)
			case HoverMsg:
				hovers = append(hovers, m)
			}
		case <-deadline:
			t.Fatal("messages not forwarded")
		}
	}
	require.Equal(t, []string{"1", "2"}, texts)
	require.Equal(t, HoverMsg{}, hovers[0], "only the latest hover is kept")
}

func TestDashboardFollowsStateChanges(t *testing.T) {
	state := uistate.New(recorder.StateIdle)
	d := NewDashboard(state, "page")
	require.Contains(t, d.View(), "IDLE")

	d.Update(key(" "))
	require.Equal(t, recorder.StateRecording, state.State())
	require.Contains(t, d.View(), "REC")

	d.Update(key(" "))
	require.Equal(t, recorder.StatePaused, state.State())
	require.Contains(t, d.View(), "PAUSED")

	// changed elsewhere, reported through the notifier
	state.Set(recorder.StateRecording)
	require.Contains(t, d.View(), "PAUSED")
	d.Update(StateMsg{State: recorder.StateRecording})
	require.Contains(t, d.View(), "REC")
}

func TestNotifierForwardsStateAndFailure(t *testing.T) {
	n := NewNotifier(1)
	state := uistate.New(recorder.StateIdle)
	state.Subscribe(func(_, to recorder.RecordingState) { n.State(to) })

	state.Set(recorder.StateRecording)
	state.Set(recorder.StatePaused)
	boom := errors.New("event loop failed")
	n.Fail(boom)
	n.Fail(errors.New("second"))
	n.Fail(nil)

	msgs := make(chan tea.Msg, 8)
	done := make(chan struct{})
	go n.Pump(done, func(m tea.Msg) { msgs <- m })
	defer close(done)

	var states []StateMsg
	var errs []ErrMsg
	deadline := time.After(2 * time.Second)
	for len(states) < 1 || len(errs) < 1 {
		select {
		case m := <-msgs:
			switch m := m.(type) {
			case StateMsg:
				states = append(states, m)
			case ErrMsg:
				errs = append(errs, m)
			}
		case <-deadline:
			t.Fatal("messages not forwarded")
		}
	}
	require.Equal(t, StateMsg{State: recorder.StatePaused}, states[0], "only the latest state is kept")
	require.ErrorIs(t, errs[0].Err, boom)
}
