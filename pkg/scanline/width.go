package scanline

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks a line that was truncated to fit the available width.
const Ellipsis = "…"

// VisibleWidth returns the terminal display width of a string, ignoring ANSI
// escape sequences and accounting for wide characters.
func VisibleWidth(s string) int {
	return ansi.StringWidth(s)
}

// Truncate truncates s to at most maxWidth visible columns, appending tail
// (e.g. Ellipsis) if truncation occurred.
func Truncate(s string, maxWidth int, tail string) string {
	return ansi.Truncate(s, maxWidth, tail)
}

// Wrap hard-wraps s into lines of at most width visible columns. Escape
// sequences carry across wrap points.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return strings.Split(ansi.Hardwrap(s, width, true), "\n")
}

// SliceByColumn extracts a range of visible columns from a line, preserving
// ANSI escape codes active at that point.
func SliceByColumn(line string, startCol, length int) string {
	if length <= 0 {
		return ""
	}
	if startCol > 0 {
		line = ansi.TruncateLeft(line, startCol, "")
	}
	return ansi.Truncate(line, length, "")
}

// CompositeLineAt overlays content onto base at the given column. The base
// line is padded to termW columns, the overlay content is padded or truncated
// to exactly w columns, and style state is reset at both seams so neither
// side bleeds into the other.
func CompositeLineAt(base, overlay string, col, w, termW int) string {
	if col < 0 {
		col = 0
	}
	if col+w > termW {
		w = termW - col
	}
	if w <= 0 {
		return base
	}

	if bw := VisibleWidth(base); bw < termW {
		base += strings.Repeat(" ", termW-bw)
	}

	left := ansi.Truncate(base, col, "")
	if lw := VisibleWidth(left); lw < col {
		left += strings.Repeat(" ", col-lw)
	}

	mid := overlay
	if mw := VisibleWidth(mid); mw > w {
		mid = ansi.Truncate(mid, w, "")
	} else if mw < w {
		mid += strings.Repeat(" ", w-mw)
	}

	right := ansi.TruncateLeft(base, col+w, "")

	return left + segmentReset + mid + segmentReset + right
}

// ExpandTabs replaces tab characters with spaces, advancing to the next
// multiple of tabWidth in visible columns. Escape sequences count as zero
// width.
func ExpandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	if tabWidth <= 0 {
		tabWidth = 8
	}
	var b strings.Builder
	col := 0
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			if seq, n := parseEscape(s[i:]); n > 0 {
				b.WriteString(seq)
				i += n
				continue
			}
		}
		if s[i] == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			i++
			continue
		}
		// Advance one rune; width accounting via the ansi decoder keeps
		// wide characters correct.
		j := i + 1
		for j < len(s) && s[j]&0xc0 == 0x80 {
			j++
		}
		b.WriteString(s[i:j])
		col += ansi.StringWidth(s[i:j])
		i = j
	}
	return b.String()
}

// parseEscape detects an ANSI escape sequence at the start of s and returns
// the full sequence and its byte length. Returns ("", 0) if s does not start
// with a recognized sequence.
func parseEscape(s string) (string, int) {
	if len(s) < 2 || s[0] != '\x1b' {
		return "", 0
	}

	switch s[1] {
	case '[': // CSI sequence: ESC [ ... <letter>
		for j := 2; j < len(s); j++ {
			b := s[j]
			if b >= 0x40 && b <= 0x7e {
				return s[:j+1], j + 1
			}
		}
	case ']': // OSC sequence: ESC ] ... BEL  or  ESC ] ... ST
		for j := 2; j < len(s); j++ {
			if s[j] == '\x07' {
				return s[:j+1], j + 1
			}
			if s[j] == '\x1b' && j+1 < len(s) && s[j+1] == '\\' {
				return s[:j+2], j + 2
			}
		}
	case '_': // APC sequence: ESC _ ... BEL  or  ESC _ ... ST
		for j := 2; j < len(s); j++ {
			if s[j] == '\x07' {
				return s[:j+1], j + 1
			}
			if s[j] == '\x1b' && j+1 < len(s) && s[j+1] == '\\' {
				return s[:j+2], j + 2
			}
		}
	}
	return "", 0
}

// segmentReset resets all SGR attributes and cancels any active hyperlink.
const segmentReset = "\x1b[0m\x1b]8;;\x07"
