package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// Config holds the application configuration
type Config struct {
	Debug    bool
	DebugLog string
	Theme    string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "scanline",
		Short: "Differential terminal rendering playground",
		Long: `Scanline renders component trees onto the normal terminal
scrollback buffer and rewrites only the lines that changed between frames.
The subcommands exercise the renderer interactively.`,
		Example: `  # Interactive demo UI
  scanline demo

  # Rendering stress test with per-frame stats
  scanline stress --lines 500 --debug-log /tmp/scanline_stats.jsonl

  # Custom colors
  scanline demo --theme ./theme.toml`,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.DebugLog, "debug-log", "", "Write per-frame render stats (JSONL) to this file")
	rootCmd.PersistentFlags().StringVar(&cfg.Theme, "theme", "", "Path to a theme.toml file")

	rootCmd.AddCommand(demoCmd(&cfg))
	rootCmd.AddCommand(stressCmd(&cfg))

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

// setupLogger builds the process logger. Log output goes to a file when
// rendering is active: stderr writes would corrupt the frame.
func setupLogger(cfg *Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	cleanup := func() {}
	if cfg.Debug {
		f, err := os.OpenFile("/tmp/scanline_debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open debug log: %w", err)
		}
		out = f
		cleanup = func() { f.Close() } //nolint:errcheck
	}

	logger := slog.New(tint.NewHandler(out, &tint.Options{Level: level}))
	return logger, cleanup, nil
}

// openDebugWriter opens the JSONL stats sink, if configured.
func openDebugWriter(cfg *Config) (io.WriteCloser, error) {
	if cfg.DebugLog == "" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return f, nil
}
