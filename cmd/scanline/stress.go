package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vito/scanline/pkg/scanline"
)

func stressCmd(cfg *Config) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Interactive rendering stress test",
		Long: `An interactive stress test with a large scrollable log and hotkeys to
exercise every rendering code path: appends, deletes, color churn,
overlays, spinners, and forced full redraws. Per-frame stats go to the
--debug-log file when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cfg, lines)
		},
	}
	cmd.Flags().IntVar(&lines, "lines", 200, "initial number of log lines")
	return cmd
}

func runStress(cfg *Config, initialLines int) error {
	theme, err := LoadTheme(cfg.Theme)
	if err != nil {
		return err
	}
	logger, cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	term := scanline.NewProcessTerminal()
	r := scanline.New(term)
	r.SetLogger(logger)

	if debugW, err := openDebugWriter(cfg); err != nil {
		return err
	} else if debugW != nil {
		defer debugW.Close() //nolint:errcheck
		r.SetDebugWriter(debugW)
	}

	log := newStressLog(initialLines)
	statusBar := newStatusBar()
	statusBar.set(" c=color a/A=append d=delete o=overlay s=spinner r=force q/Ctrl+C=quit ")

	spinner := scanline.NewSpinner(r)
	spinner.Label = "evaluating..."
	spinner.Style = style(theme.Spinner)
	spinnerSlot := scanline.NewSlot(nil)

	r.AddChild(log)
	r.AddChild(spinnerSlot)
	r.AddChild(statusBar)

	var overlayHandle *scanline.OverlayHandle
	quit := make(chan struct{})
	doQuit := func() {
		select {
		case <-quit:
		default:
			close(quit)
		}
	}

	r.AddInputListener(func(data []byte) *scanline.InputListenerResult {
		consumed := &scanline.InputListenerResult{Consume: true}
		switch string(data) {
		case "q", scanline.KeyCtrlC:
			doQuit()
			return consumed

		case "c":
			log.toggleColor()
			statusBar.set(" color toggled ")
			r.RequestRender(false)
			return consumed

		case "a":
			log.appendLines(10)
			statusBar.set(" +10 lines appended ")
			r.RequestRender(false)
			return consumed

		case "A":
			log.appendLines(100)
			statusBar.set(" +100 lines appended ")
			r.RequestRender(false)
			return consumed

		case "d":
			n := log.dropLines(10)
			statusBar.set(fmt.Sprintf(" deleted 10 lines (now %d) ", n))
			r.RequestRender(false)
			return consumed

		case "o":
			if overlayHandle != nil {
				overlayHandle.Hide()
				overlayHandle = nil
				statusBar.set(" overlay hidden ")
			} else {
				overlay := scanline.NewText(
					"╭──────────────────╮\n" +
						"│ Completions      │\n" +
						"│  container       │\n" +
						"│  directory       │\n" +
						"│  withExec        │\n" +
						"│  stdout          │\n" +
						"│  stderr          │\n" +
						"╰──────────────────╯")
				overlayHandle = r.ShowOverlay(overlay, &scanline.OverlayOptions{
					Width:   scanline.SizeAbs(22),
					Anchor:  scanline.AnchorBottomLeft,
					OffsetX: 2,
					OffsetY: -1,
					NoFocus: true,
				})
				statusBar.set(" overlay shown (press o to hide) ")
			}
			r.RequestRender(false)
			return consumed

		case "s":
			if spinnerSlot.Get() != nil {
				spinner.Stop()
				spinnerSlot.Set(nil)
				statusBar.set(" spinner stopped ")
			} else {
				spinnerSlot.Set(spinner)
				spinner.Start()
				statusBar.set(" spinner running (continuous repaints) ")
			}
			r.RequestRender(false)
			return consumed

		case "r":
			statusBar.set(" forced full redraw ")
			r.RequestRender(true)
			return consumed
		}
		return nil
	})

	if err := r.Start(); err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-sigCh:
	}
	signal.Stop(sigCh)

	spinner.Stop()
	r.Stop()
	fmt.Println("Done.")
	return nil
}

// ── stress log component ───────────────────────────────────────────────────

type stressLog struct {
	mu       sync.Mutex
	entries  []stressEntry
	colorize bool
}

type stressEntry struct {
	ts      time.Time
	level   string
	message string
}

func newStressLog(n int) *stressLog {
	levels := []string{"INFO", "DEBUG", "WARN", "ERROR", "TRACE"}
	modules := []string{"scanline.render", "scanline.diff", "scanline.overlay",
		"scanline.input", "scanline.cursor"}
	messages := []string{
		"processing request",
		"cache miss for key",
		"rendering frame",
		"overlay composited",
		"differential update applied",
		"component tree walked",
		"escape sequence generated",
		"viewport scrolled",
		"cursor repositioned",
		"focus changed",
	}

	entries := make([]stressEntry, n)
	base := time.Now().Add(-time.Duration(n) * 100 * time.Millisecond)
	for i := range entries {
		entries[i] = stressEntry{
			ts:    base.Add(time.Duration(i) * 100 * time.Millisecond),
			level: levels[rand.Intn(len(levels))],
			message: fmt.Sprintf("[%s] %s id=%d latency=%dµs",
				modules[rand.Intn(len(modules))],
				messages[rand.Intn(len(messages))],
				rand.Intn(10000), rand.Intn(5000)),
		}
	}
	return &stressLog{entries: entries}
}

func (s *stressLog) toggleColor() {
	s.mu.Lock()
	s.colorize = !s.colorize
	s.mu.Unlock()
}

func (s *stressLog) appendLines(n int) {
	levels := []string{"INFO", "DEBUG", "WARN"}
	s.mu.Lock()
	for range n {
		s.entries = append(s.entries, stressEntry{
			ts:      time.Now(),
			level:   levels[rand.Intn(len(levels))],
			message: fmt.Sprintf("[append] new line %d val=%d", len(s.entries), rand.Intn(99999)),
		})
	}
	s.mu.Unlock()
}

func (s *stressLog) dropLines(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > n {
		s.entries = s.entries[:len(s.entries)-n]
	} else {
		s.entries = nil
	}
	return len(s.entries)
}

func (s *stressLog) Invalidate() {}

func (s *stressLog) Render(width int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		ts := e.ts.Format("15:04:05.000")
		levelStyled := e.level
		if s.colorize {
			switch e.level {
			case "ERROR":
				levelStyled = "\x1b[31m" + e.level + "\x1b[0m"
			case "WARN":
				levelStyled = "\x1b[33m" + e.level + "\x1b[0m"
			case "DEBUG":
				levelStyled = "\x1b[36m" + e.level + "\x1b[0m"
			case "TRACE":
				levelStyled = "\x1b[90m" + e.level + "\x1b[0m"
			default:
				levelStyled = "\x1b[32m" + e.level + "\x1b[0m"
			}
		}
		line := fmt.Sprintf("%s %-5s %s", ts, levelStyled, e.message)
		if scanline.VisibleWidth(line) > width {
			line = scanline.Truncate(line, width, "")
		}
		lines = append(lines, line)
	}
	return lines
}

// ── helper components ──────────────────────────────────────────────────────

type statusBar struct {
	mu   sync.Mutex
	line string
}

func newStatusBar() *statusBar {
	return &statusBar{}
}

func (s *statusBar) set(line string) {
	s.mu.Lock()
	s.line = "\x1b[7m" + line + "\x1b[0m"
	s.mu.Unlock()
}

func (s *statusBar) Invalidate() {}

func (s *statusBar) Render(width int) []string {
	s.mu.Lock()
	line := s.line
	s.mu.Unlock()
	if scanline.VisibleWidth(line) > width {
		line = scanline.Truncate(line, width, "")
	}
	return []string{line}
}
