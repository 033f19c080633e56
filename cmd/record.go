package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lance13c/todrec/internal/browser"
	"github.com/lance13c/todrec/internal/config"
	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/logging"
	"github.com/lance13c/todrec/internal/recorder"
	"github.com/lance13c/todrec/internal/recorder/slots"
	"github.com/lance13c/todrec/internal/sink"
	"github.com/lance13c/todrec/internal/ui"
	"github.com/lance13c/todrec/internal/uistate"
	"github.com/lance13c/todrec/internal/watcher"
)

var recordCmd = &cobra.Command{
	Use:   "record [url]",
	Short: "Record interactions in a Chrome tab",
	Long: `Open a Chrome tab (or attach to a running Chrome with --debugger-url) and
record every click, fill, select, key press and text selection as an action.

In a terminal a dashboard shows the recording state and the selector of
the element under the mouse; press r to record, p to pause and q to stop.
With --plain, or when stdout is not a terminal, recording starts at once
and actions stream out until Ctrl+C or the tab closes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().String("debugger-url", "", "attach to Chrome at this DevTools URL (http://host:port or ws://...)")
	recordCmd.Flags().Bool("headless", false, "run a launched Chrome headless")
	recordCmd.Flags().Bool("no-highlight", false, "do not highlight the hovered element")
	recordCmd.Flags().StringP("out", "o", "", "write actions to this file instead of stdout")
	recordCmd.Flags().String("format", "", "action output format: jsonl or text")
	recordCmd.Flags().Bool("plain", false, "no dashboard; start recording immediately")
}

// applyRecordFlags layers command-line flags over the loaded config
func applyRecordFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.Browser.StartURL = args[0]
	}
	if flags.Changed("debugger-url") {
		cfg.Browser.DebuggerURL, _ = flags.GetString("debugger-url")
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless, _ = flags.GetBool("headless")
	}
	if noHighlight, _ := flags.GetBool("no-highlight"); noHighlight {
		cfg.Recorder.ShowHighlight = false
	}
	if flags.Changed("out") {
		cfg.Output.Path, _ = flags.GetString("out")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	return cfg.Validate()
}

func clickPolicy(cfg *config.Config) recorder.ClickPolicy {
	if cfg.SuppressSyntheticClicks() {
		return slots.DefaultClickPolicy{}
	}
	return slots.NoClickPolicy{}
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	if err := applyRecordFlags(cmd, args, cfg); err != nil {
		return err
	}
	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && term.IsTerminal(int(os.Stdout.Fd()))

	var out io.Writer = cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	// the dashboard owns stdout, so actions bound for it wait until exit
	var held *bytes.Buffer
	if interactive && cfg.Output.Path == "" {
		held = &bytes.Buffer{}
		out = held
	}
	writer := sink.NewWriter(out, sink.Format(cfg.Output.Format))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.Open(ctx, cfg.Browser)
	if err != nil {
		return err
	}
	defer session.Close()
	tab := session.Context()

	doc := dom.NewDocument(nil)
	bridge := browser.NewBridge(doc)
	if err := bridge.Install(tab); err != nil {
		return err
	}
	overlay := browser.NewOverlay(tab)
	defer overlay.Close()

	options := recorder.NewLiveOptions(cfg.Recorder.ShowHighlight)
	startWatcher(ctx, options)

	state := uistate.New(recorder.StateIdle)
	deps := recorder.Deps{
		Highlighter: overlay,
		State:       state,
		Sink:        writer,
		Options:     options,
		ClickPolicy: clickPolicy(cfg),
	}

	var program *tea.Program
	var dashboard *ui.Dashboard
	var notifier *ui.Notifier
	if interactive {
		notifier = ui.NewNotifier(256)
		state.Subscribe(func(_, to recorder.RecordingState) { notifier.State(to) })
		deps.Sink = sink.Multi{writer, notifier}
		deps.Highlighter = ui.NewHoverReporter(overlay, notifier)

		dashboard = ui.NewDashboard(state, cfg.Browser.StartURL)
		program = tea.NewProgram(dashboard, tea.WithAltScreen(), tea.WithContext(ctx))
		pumpDone := make(chan struct{})
		defer close(pumpDone)
		go notifier.Pump(pumpDone, program.Send)
	} else {
		state.Set(recorder.StateRecording)
	}

	rec := recorder.New(deps)
	rec.RegisterSlot(slots.Defaults()...)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	go func() {
		select {
		case <-tab.Done():
			logging.Info("browser tab closed")
			cancelLoop()
			if program != nil {
				program.Quit()
			}
		case <-loopCtx.Done():
		}
	}()

	// the recorder and the bridge share one goroutine
	loopDone := make(chan error, 1)
	go func() {
		err := eventLoop(loopCtx, rec, doc, bridge.Run)
		if err != nil && notifier != nil {
			notifier.Fail(err)
		}
		loopDone <- err
	}()

	if cfg.Browser.StartURL != "" && !(session.Attached() && len(args) == 0) {
		if err := session.Navigate(cfg.Browser.StartURL); err != nil {
			logging.Warn("initial navigation failed: %v", err)
		}
	}

	if program != nil {
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			logging.Error("dashboard failed: %v", err)
		}
		cancelLoop()
	} else {
		fmt.Fprintln(os.Stderr, "Recording. Press Ctrl+C to stop.")
		select {
		case <-loopCtx.Done():
		case err := <-loopDone:
			return err
		}
	}

	loopErr := <-loopDone
	if held != nil {
		if _, err := cmd.OutOrStdout().Write(held.Bytes()); err != nil {
			return fmt.Errorf("failed to write actions: %w", err)
		}
	}
	if dashboard != nil && dashboard.Err() != nil {
		return dashboard.Err()
	}
	return loopErr
}

// eventLoop starts rec on target and runs the message loop on the calling
// goroutine. rec is stopped however run ends.
func eventLoop(ctx context.Context, rec *recorder.Recorder, target dom.EventTarget, run func(context.Context) error) (err error) {
	if err := rec.Start(target); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			logging.Error("event loop panicked: %v", p)
			err = fmt.Errorf("event loop failed: %v", p)
		}
		rec.Stop()
	}()
	return run(ctx)
}

// startWatcher republishes show_highlight whenever the config file changes
func startWatcher(ctx context.Context, options *recorder.LiveOptions) {
	if configPath == "" {
		return
	}
	cw, err := watcher.NewConfigWatcher(configPath, watcher.DefaultConfig())
	if err != nil {
		logging.Warn("config changes will not apply live: %v", err)
		return
	}
	cw.SetChangeCallback(func(c *config.Config) {
		options.SetHighlightEnabled(c.Recorder.ShowHighlight)
	})
	go func() {
		if err := cw.Start(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("config watcher stopped: %v", err)
		}
	}()
}
