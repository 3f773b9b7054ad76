package scanline

import (
	"fmt"
	"strings"
)

// Escape groups shared by both emission paths. Synchronized output brackets
// every frame so partially written updates never flash.
const (
	syncBegin = "\x1b[?2026h"
	syncEnd   = "\x1b[?2026l"
	// clearAll erases scrollback, erases the screen, and homes the cursor
	// as one escape group, issued atomically before a repaint.
	clearAll = "\x1b[3J\x1b[2J\x1b[H"
	eraseLine = "\x1b[2K"
)

// emitFull produces the byte sequence for a full redraw: optionally clear
// everything, then write every line, each preceded by an erase so longer
// stale content cannot survive underneath. Returns the sequence and the
// content row the cursor ends on.
func emitFull(f Frame, clear bool) (string, int) {
	var buf strings.Builder
	buf.WriteString(syncBegin)
	if clear {
		buf.WriteString(clearAll)
	}
	for i, line := range f.Lines {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		buf.WriteString(eraseLine)
		buf.WriteString(line)
	}
	buf.WriteString(syncEnd)
	return buf.String(), max(0, len(f.Lines)-1)
}

// emitPatch produces the byte sequence for an incremental patch: move the
// cursor to each changed range (relative to its tracked row, never
// recomputed from scratch), erase and rewrite those lines, write appended
// lines forward from the previous frame's end, and blank removed trailing
// rows. Returns the sequence and the content row the cursor ends on.
func emitPatch(prev, next Frame, d DiffResult, cursorRow int) (string, int) {
	var buf strings.Builder
	buf.WriteString(syncBegin)
	row := cursorRow

	moveTo := func(target int) {
		if delta := target - row; delta > 0 {
			fmt.Fprintf(&buf, "\x1b[%dB", delta)
		} else if delta < 0 {
			fmt.Fprintf(&buf, "\x1b[%dA", -delta)
		}
		row = target
	}

	for _, rg := range d.Ranges {
		moveTo(rg.start)
		buf.WriteString("\r")
		for i := rg.start; i <= rg.end; i++ {
			if i > rg.start {
				buf.WriteString("\r\n")
			}
			buf.WriteString(eraseLine)
			buf.WriteString(next.Lines[i])
		}
		row = rg.end
	}

	if d.Appended > 0 {
		if last := len(prev.Lines) - 1; last >= 0 {
			moveTo(last)
		}
		for i := len(prev.Lines); i < len(next.Lines); i++ {
			if i == 0 {
				buf.WriteString("\r")
			} else {
				buf.WriteString("\r\n")
			}
			buf.WriteString(eraseLine)
			buf.WriteString(next.Lines[i])
			row = i
		}
	}

	if d.Removed > 0 {
		target := max(0, len(next.Lines)-1)
		moveTo(target)
		buf.WriteString("\r")
		extra := d.Removed
		if len(next.Lines) == 0 {
			// No kept lines; the first stale row is cleared in place.
			buf.WriteString(eraseLine)
			extra--
		}
		for i := 0; i < extra; i++ {
			buf.WriteString("\x1b[1B\r")
			buf.WriteString(eraseLine)
			row++
		}
		moveTo(target)
	}

	buf.WriteString(syncEnd)
	return buf.String(), row
}
