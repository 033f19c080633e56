// Package browser connects the recorder to a live Chrome tab.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/lance13c/todrec/internal/config"
	"github.com/lance13c/todrec/internal/logging"
)

// Session is one Chrome tab driven through chromedp
type Session struct {
	ctx      context.Context
	cancels  []context.CancelFunc
	attached bool
}

// findChrome attempts to find Chrome executable
func findChrome() (string, error) {
	var paths []string

	switch runtime.GOOS {
	case "darwin":
		paths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		}
	case "linux":
		paths = []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
		}
	case "windows":
		paths = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chrome.exe`,
		}
	}

	for _, path := range paths {
		if runtime.GOOS == "darwin" {
			if _, err := os.Stat(path); err == nil {
				logging.Debug("Found Chrome at: %s", path)
				return path, nil
			}
			continue
		}
		if found, err := exec.LookPath(path); err == nil {
			logging.Debug("Found Chrome at: %s", found)
			return found, nil
		}
	}

	if path, err := exec.LookPath("chrome"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("Chrome browser not found. Please install Chrome, Chromium, or Brave")
}

// Open launches Chrome, or attaches to one when a debugger URL is set
func Open(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	if cfg.DebuggerURL != "" {
		return Attach(ctx, cfg.DebuggerURL)
	}
	return Launch(ctx, cfg)
}

// Launch starts a new Chrome process
func Launch(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	chromePath := cfg.ChromePath
	if chromePath == "" {
		var err error
		if chromePath, err = findChrome(); err != nil {
			return nil, err
		}
	}
	logging.Info("Using Chrome from: %s", chromePath)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		logging.Debug("[Chrome] "+format, v...)
	}))

	s := &Session{ctx: tabCtx, cancels: []context.CancelFunc{tabCancel, allocCancel}}
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}
	return s, nil
}

// Attach connects to a Chrome started with --remote-debugging-port and
// drives its first page, or a new tab when it has none
func Attach(ctx context.Context, debuggerURL string) (*Session, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	info, err := ProbeDebugger(probeCtx, debuggerURL)
	cancel()
	if err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, info.WebSocketURL)
	ctxOpts := []chromedp.ContextOption{chromedp.WithLogf(func(format string, v ...interface{}) {
		logging.Debug("[Chrome] "+format, v...)
	})}
	if p, ok := info.FirstPage(); ok {
		logging.Info("attaching to %q (%s)", p.Title, p.URL)
		ctxOpts = append(ctxOpts, chromedp.WithTargetID(target.ID(p.ID)))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &Session{ctx: tabCtx, cancels: []context.CancelFunc{tabCancel, allocCancel}, attached: true}
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to attach to %s: %w", debuggerURL, err)
	}
	return s, nil
}

// Context returns the chromedp context of the tab
func (s *Session) Context() context.Context {
	return s.ctx
}

// Attached reports whether the session drives a browser it did not start
func (s *Session) Attached() bool {
	return s.attached
}

// Navigate navigates to a URL
func (s *Session) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		if s.ctx.Err() != nil {
			return fmt.Errorf("Chrome context was cancelled")
		}
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Close shuts the tab and, for launched sessions, the browser
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}
