package scanline

import (
	"fmt"
	"log/slog"
	"strings"
)

// CursorPos is a cursor position within a frame. Row 0 is the first
// rendered line; Col is a visible-column offset.
type CursorPos struct {
	Row, Col int
}

// Frame is one render pass: the full ordered set of display lines plus the
// basis they were computed under. Every line is at most Width visible
// columns.
type Frame struct {
	Lines  []string
	Width  int
	Height int

	// Cursor is where the hardware cursor belongs, extracted from the
	// first CursorMarker found in the assembled lines. Nil when no
	// component emitted a marker.
	Cursor *CursorPos
}

// frameBuilder flattens a component tree into a frame. A panic inside one
// component's Render is confined to that subtree: a single diagnostic line
// takes its place and the rest of the frame is unaffected.
type frameBuilder struct {
	logger *slog.Logger
}

func (b frameBuilder) flatten(comp Component, width int, out []string) []string {
	if c, ok := comp.(*Container); ok {
		for _, ch := range c.children {
			out = b.flatten(ch, width, out)
		}
		return out
	}
	return append(out, b.renderLeaf(comp, width)...)
}

func (b frameBuilder) renderLeaf(comp Component, width int) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Error("component render panicked",
					"component", fmt.Sprintf("%T", comp),
					"panic", r)
			}
			lines = []string{Truncate(fmt.Sprintf("⚠ %T render failed", comp), width, Ellipsis)}
		}
	}()
	return comp.Render(width)
}

// extractCursor scans lines for the first CursorMarker, strips every
// marker, and returns the cursor position it denoted. Lines are modified
// in place.
func extractCursor(lines []string) *CursorPos {
	var cursor *CursorPos
	for i, line := range lines {
		idx := strings.Index(line, CursorMarker)
		if idx < 0 {
			continue
		}
		if cursor == nil {
			cursor = &CursorPos{Row: i, Col: VisibleWidth(line[:idx])}
		}
		lines[i] = strings.ReplaceAll(line, CursorMarker, "")
	}
	return cursor
}
