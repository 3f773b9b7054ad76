package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vito/scanline/pkg/scanline"
)

func demoCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Interactive echo UI exercising the renderer",
		Long: `An interactive transcript UI: type a line and it is appended to the
scrollback-backed log after a short simulated delay. Ctrl+O toggles a help
overlay, Ctrl+C or Ctrl+D quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cfg)
		},
	}
}

// transcript is an append-only log of submitted lines. Mutations run on
// the render goroutine via Dispatch.
type transcript struct {
	r     *scanline.Renderer
	text  *scanline.Text
	lines []string
}

func newTranscript(r *scanline.Renderer) *transcript {
	tr := &transcript{r: r, text: scanline.NewText("")}
	tr.lines = []string{"Welcome to the scanline demo. Type something and press Enter."}
	tr.text.SetContent(tr.lines[0])
	return tr
}

func (tr *transcript) append(line string) {
	tr.r.Dispatch(func() {
		tr.lines = append(tr.lines, line)
		tr.text.SetContent(strings.Join(tr.lines, "\n"))
	})
}

func runDemo(cfg *Config) error {
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

	tr := newTranscript(r)

	spinner := scanline.NewSpinner(r)
	spinner.Label = "thinking..."
	spinner.Style = style(theme.Spinner)
	working := scanline.NewSlot(nil)

	input := scanline.NewTextInput(style(theme.Prompt)("> "))
	input.SuggestionStyle = style(theme.Dim)

	quit := make(chan struct{})
	doQuit := func() {
		select {
		case <-quit:
		default:
			close(quit)
		}
	}

	var history []string
	input.OnSubmit = func(value string) bool {
		if value == "" {
			return false
		}
		if value == "exit" || value == "quit" {
			doQuit()
			return true
		}
		history = append(history, value)
		tr.append("> " + value)

		// Simulated work: spinner runs while the "answer" is produced.
		working.Set(spinner)
		spinner.Start()
		go func() {
			time.Sleep(600 * time.Millisecond)
			spinner.Stop()
			working.Set(nil)
			tr.append(fmt.Sprintf("echo: %s (%d chars)", value, len(value)))
		}()
		return true
	}

	// Fish-style suggestion from submit history.
	input.OnChange = func() {
		val := input.Value()
		input.Suggestion = ""
		if val == "" {
			return
		}
		for i := len(history) - 1; i >= 0; i-- {
			if strings.HasPrefix(history[i], val) && history[i] != val {
				input.Suggestion = history[i]
				break
			}
		}
	}

	var helpHandle *scanline.OverlayHandle
	help := scanline.NewText(strings.Join([]string{
		"  Ctrl+O  toggle this help   ",
		"  Ctrl+L  force full redraw  ",
		"  Ctrl+C  quit               ",
	}, "\n"))
	help.Style = style(theme.Status)

	r.AddInputListener(func(data []byte) *scanline.InputListenerResult {
		switch string(data) {
		case scanline.KeyCtrlC, scanline.KeyCtrlD:
			doQuit()
			return &scanline.InputListenerResult{Consume: true}
		case scanline.KeyCtrlO:
			if helpHandle != nil {
				helpHandle.Hide()
				helpHandle = nil
			} else {
				helpHandle = r.ShowOverlay(help, &scanline.OverlayOptions{
					Width:   scanline.SizeAbs(30),
					Anchor:  scanline.AnchorTopRight,
					Margin:  scanline.OverlayMargin{Top: 1, Right: 1},
					NoFocus: true,
				})
			}
			return &scanline.InputListenerResult{Consume: true}
		case scanline.KeyCtrlL:
			r.RequestRender(true)
			return &scanline.InputListenerResult{Consume: true}
		}
		return nil
	})

	r.AddChild(tr.text)
	r.AddChild(working)
	r.AddChild(input)
	r.SetFocus(input)

	if err := r.Start(); err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}
	<-quit
	r.Stop()
	return nil
}
