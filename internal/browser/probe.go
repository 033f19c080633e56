package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lance13c/todrec/internal/logging"
)

// ChromeTarget represents a Chrome DevTools target
type ChromeTarget struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// DebuggerInfo describes a running Chrome reached through its debugging port
type DebuggerInfo struct {
	Product         string
	ProtocolVersion string
	// WebSocketURL is the browser endpoint chromedp attaches to
	WebSocketURL string
	Pages        []ChromeTarget
}

// FirstPage returns the first page target, if any
func (d *DebuggerInfo) FirstPage() (ChromeTarget, bool) {
	for _, t := range d.Pages {
		if t.Type == "page" {
			return t, true
		}
	}
	return ChromeTarget{}, false
}

// ProbeDebugger checks that a DevTools endpoint answers before attaching.
// debuggerURL is either http://host:port or a ws:// browser endpoint.
func ProbeDebugger(ctx context.Context, debuggerURL string) (*DebuggerInfo, error) {
	u, err := url.Parse(debuggerURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid debugger URL %q", debuggerURL)
	}

	info := &DebuggerInfo{WebSocketURL: debuggerURL}
	if u.Scheme == "http" || u.Scheme == "https" {
		base := strings.TrimSuffix(u.String(), "/")
		var version struct {
			Browser              string `json:"Browser"`
			WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
		}
		if err := getJSON(ctx, base+"/json/version", &version); err != nil {
			return nil, err
		}
		if version.WebSocketDebuggerURL == "" {
			return nil, fmt.Errorf("no browser WebSocket endpoint at %s", base)
		}
		info.WebSocketURL = version.WebSocketDebuggerURL
		if err := getJSON(ctx, base+"/json", &info.Pages); err != nil {
			logging.Debug("could not list targets: %v", err)
		}
	}

	if err := browserVersion(ctx, info); err != nil {
		return nil, err
	}
	logging.Info("found %s (protocol %s) at %s", info.Product, info.ProtocolVersion, info.WebSocketURL)
	return info, nil
}

func getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Chrome DevTools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", endpoint, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", endpoint, err)
	}
	return nil
}

// browserVersion asks the browser endpoint for Browser.getVersion over a
// short-lived WebSocket connection
func browserVersion(ctx context.Context, info *DebuggerInfo) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, httpResp, err := dialer.DialContext(ctx, info.WebSocketURL, http.Header{})
	if err != nil {
		if httpResp != nil {
			return fmt.Errorf("failed to connect to WebSocket %s: status %d: %w", info.WebSocketURL, httpResp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to WebSocket %s: %w", info.WebSocketURL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	const requestID = 1
	if err := conn.WriteJSON(map[string]interface{}{
		"id":     requestID,
		"method": "Browser.getVersion",
	}); err != nil {
		return fmt.Errorf("failed to send Browser.getVersion: %w", err)
	}

	for {
		var resp struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
			Result struct {
				Product         string `json:"product"`
				ProtocolVersion string `json:"protocolVersion"`
			} `json:"result"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("failed to read Browser.getVersion response: %w", err)
		}
		if resp.ID != requestID {
			// an event or an unrelated reply
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("Browser.getVersion failed: %s", resp.Error.Message)
		}
		info.Product = resp.Result.Product
		info.ProtocolVersion = resp.Result.ProtocolVersion
		return nil
	}
}
