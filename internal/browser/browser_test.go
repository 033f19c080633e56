package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
)

const snapshot = `<!DOCTYPE html><html><head></head><body>` +
	`<button id="go">Go</button>` +
	`<x-card id="card"><template shadowrootmode="open"><input id="inner" type="text"></template><span>light</span></x-card>` +
	`</body></html>`

func payload(t *testing.T, msg map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(b)
}

func TestBridgeDispatchesResolvedEvents(t *testing.T) {
	b := NewBridge(dom.NewDocument(nil))
	var got []*dom.Event
	b.Document().AddEventListener(dom.Input, func(ev *dom.Event) { got = append(got, ev) }, true)

	// html > body > x-card > shadow > input
	b.handle(payload(t, map[string]interface{}{
		"type":  "input",
		"path":  []int{0, 1, 1, dom.EnterShadow, 0},
		"html":  snapshot,
		"value": "hello",
	}))

	require.Len(t, got, 1)
	target := got[0].DeepTarget()
	require.Equal(t, "inner", dom.AttrOr(target, "id", ""))
	require.Equal(t, "hello", got[0].Value)
	require.Equal(t, "card", dom.AttrOr(got[0].Target(), "id", ""), "retargeted to the host")
}

func TestBridgeKeepsTreeWithoutSnapshot(t *testing.T) {
	b := NewBridge(dom.NewDocument(nil))
	var targets []*html.Node
	b.Document().AddEventListener(dom.Click, func(ev *dom.Event) { targets = append(targets, ev.DeepTarget()) }, true)

	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 1, 0}, "html": snapshot, "detail": 1}))
	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 1, 0}, "detail": 2}))

	require.Len(t, targets, 2)
	require.Same(t, targets[0], targets[1])
}

func TestBridgeSkipsUnresolvableMessages(t *testing.T) {
	b := NewBridge(dom.NewDocument(nil))
	refreshed := 0
	b.refresh = func() { refreshed++ }
	calls := 0
	b.Document().AddEventListener(dom.Click, func(*dom.Event) { calls++ }, true)

	b.handle(`not json`)
	b.handle(payload(t, map[string]interface{}{"path": []int{0}}))
	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 9}, "html": snapshot}))
	b.handle(payload(t, map[string]interface{}{"type": "click"}))

	require.Zero(t, calls)
	require.Equal(t, 1, refreshed, "only a stale locator asks for a new snapshot")
}

func TestBridgeIgnoresEventsNobodyListensFor(t *testing.T) {
	b := NewBridge(dom.NewDocument(nil))
	refreshed := 0
	b.refresh = func() { refreshed++ }
	clicks := 0
	b.Document().AddEventListener(dom.Click, func(*dom.Event) { clicks++ }, true)

	b.handle(payload(t, map[string]interface{}{"type": "mousemove", "path": []int{0, 1, 0}, "html": snapshot}))
	require.NotNil(t, b.Document().GetElementByID("go"), "the snapshot is still applied")

	for i := 0; i < 100; i++ {
		b.handle(payload(t, map[string]interface{}{"type": "mousemove", "path": []int{0, 9, i}}))
	}
	require.Zero(t, refreshed, "stale locators of unheard events never ask for a snapshot")

	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 1, 0}, "detail": 1}))
	require.Equal(t, 1, clicks)
}

func TestBridgeFallsBackToTargetID(t *testing.T) {
	// the parser moves a trailing element of <html> into <body>
	const reshaped = `<!DOCTYPE html><html><head></head><body><button id="go">Go</button></body><div id="late">late</div></html>`

	b := NewBridge(dom.NewDocument(nil))
	refreshed := 0
	b.refresh = func() { refreshed++ }
	var targets []string
	b.Document().AddEventListener(dom.Click, func(ev *dom.Event) {
		targets = append(targets, dom.AttrOr(ev.DeepTarget(), "id", ""))
	}, true)

	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 2}, "targetId": "late", "html": reshaped}))
	// resolves, but to the wrong element
	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 1, 0}, "targetId": "late"}))
	b.handle(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 2}}))

	require.Equal(t, []string{"late", "late"}, targets)
	require.Equal(t, 1, refreshed, "only the message without an id is dropped")
}

func TestTargetIDMustBeUnique(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p id="dup"></p>` +
		`<x-a><template shadowrootmode="open"><p id="dup"></p></template></x-a></body></html>`)
	require.NoError(t, err)

	msg := &eventMessage{Type: dom.Click, Path: []int{0, 5}, TargetID: "dup"}
	_, err = msg.toEvent(doc.Root())
	require.Error(t, err)
}

func TestBridgeRunDrainsQueue(t *testing.T) {
	b := NewBridge(dom.NewDocument(nil))
	done := make(chan struct{})
	b.Document().AddEventListener(dom.Click, func(*dom.Event) { close(done) }, true)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	b.Deliver(payload(t, map[string]interface{}{"type": "click", "path": []int{0, 1, 0}, "html": snapshot}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}

	cancel()
	require.NoError(t, <-errc)
}

func TestOverlayCommandScript(t *testing.T) {
	s, err := overlayCommand{locators: []dom.Locator{{0, 1, -1, 0}}, label: `a "b"`}.script()
	require.NoError(t, err)
	require.Equal(t, `window.__todrecOverlay && window.__todrecOverlay.update([[0,1,-1,0]], "a \"b\"")`, s)

	s, err = overlayCommand{clear: true}.script()
	require.NoError(t, err)
	require.Contains(t, s, ".clear()")
}

func TestOverlayTranslatesNodes(t *testing.T) {
	doc, err := dom.ParseString(snapshot)
	require.NoError(t, err)

	var mu sync.Mutex
	var scripts []string
	o := newOverlay(func(script string) error {
		mu.Lock()
		defer mu.Unlock()
		scripts = append(scripts, script)
		return nil
	})

	o.UpdateHighlight([]*html.Node{doc.GetElementByID("inner")}, "#card >> #inner")
	o.Close()
	o.ClearHighlight()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, scripts)
	last := scripts[len(scripts)-1]
	require.True(t, strings.HasPrefix(last, "window.__todrecOverlay && window.__todrecOverlay.update([[0,1,1,-1,0]]"), last)
}

func TestOverlayEmptyUpdateClears(t *testing.T) {
	var mu sync.Mutex
	var scripts []string
	o := newOverlay(func(script string) error {
		mu.Lock()
		defer mu.Unlock()
		scripts = append(scripts, script)
		return nil
	})
	o.UpdateHighlight(nil, "")
	o.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, scripts, 1)
	require.Contains(t, scripts[0], ".clear()")
}

func fakeDevTools(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/devtools/browser/abc"
		json.NewEncoder(w).Encode(map[string]string{
			"Browser":              "Chrome/130.0",
			"webSocketDebuggerUrl": wsURL,
		})
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]ChromeTarget{
			{ID: "w1", Type: "service_worker"},
			{ID: "p1", Type: "page", Title: "Home", URL: "http://localhost/"},
		})
	})
	mux.HandleFunc("/devtools/browser/abc", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		conn.WriteJSON(map[string]interface{}{"method": "Target.targetCreated"})
		conn.WriteJSON(map[string]interface{}{
			"id":     req.ID,
			"result": map[string]string{"product": "HeadlessChrome/130.0", "protocolVersion": "1.3"},
		})
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeDebuggerOverHTTP(t *testing.T) {
	srv := fakeDevTools(t)

	info, err := ProbeDebugger(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "HeadlessChrome/130.0", info.Product)
	require.Equal(t, "1.3", info.ProtocolVersion)
	require.True(t, strings.HasSuffix(info.WebSocketURL, "/devtools/browser/abc"))

	p, ok := info.FirstPage()
	require.True(t, ok)
	require.Equal(t, "p1", p.ID)
}

func TestProbeDebuggerWebSocketURL(t *testing.T) {
	srv := fakeDevTools(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/devtools/browser/abc"

	info, err := ProbeDebugger(context.Background(), wsURL)
	require.NoError(t, err)
	require.Equal(t, wsURL, info.WebSocketURL)
	_, ok := info.FirstPage()
	require.False(t, ok)
}

func TestProbeDebuggerErrors(t *testing.T) {
	_, err := ProbeDebugger(context.Background(), "nonsense")
	require.Error(t, err)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err = ProbeDebugger(context.Background(), srv.URL)
	require.ErrorContains(t, err, "404")
}

func TestEmbeddedScripts(t *testing.T) {
	require.Contains(t, captureScript, BindingName)
	require.Contains(t, overlayScript, "__todrecOverlay")
	require.Len(t, pageScripts(), 2)
}
