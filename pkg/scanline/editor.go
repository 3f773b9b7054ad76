package scanline

import (
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
)

// Editor is a multi-line text editor rendered inside a rounded border.
// Enter submits the buffer; Alt+Enter inserts a newline. When focused the
// cursor marker is embedded so the renderer places the hardware cursor at
// the edit point inside the box.
type Editor struct {
	value  []rune
	cursor int

	focused bool

	// OnSubmit is called when Enter is pressed with the full buffer.
	// Return true to clear the editor after submission.
	OnSubmit func(value string) bool

	// OnKey is called for keys not handled by the editor. Return true if
	// the key was consumed.
	OnKey func(data []byte) bool

	// BorderColor is the lipgloss color of the border. Defaults to "63".
	BorderColor string
}

// NewEditor creates an empty Editor.
func NewEditor() *Editor {
	return &Editor{BorderColor: "63"}
}

func (e *Editor) SetFocused(focused bool) { e.focused = focused }

// Value returns the current buffer.
func (e *Editor) Value() string { return string(e.value) }

// SetValue replaces the buffer and moves the cursor to the end.
func (e *Editor) SetValue(s string) {
	e.value = []rune(s)
	e.cursor = len(e.value)
}

func (e *Editor) Invalidate() {}

// Render draws the buffer inside a rounded border, one terminal line per
// buffer line.
func (e *Editor) Render(width int) []string {
	// Two columns of border; the box must never exceed the render width.
	innerW := max(1, width-2)

	var buf strings.Builder
	buf.WriteString(string(e.value[:e.cursor]))
	if e.focused {
		buf.WriteString(CursorMarker)
	}
	buf.WriteString(string(e.value[e.cursor:]))

	inner := strings.Split(buf.String(), "\n")
	for i, line := range inner {
		if VisibleWidth(line) > innerW {
			inner[i] = Truncate(line, innerW, "")
		}
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(e.BorderColor))

	box := borderStyle.Width(innerW).Render(strings.Join(inner, "\n"))
	return strings.Split(box, "\n")
}

// HandleInput processes raw terminal input.
func (e *Editor) HandleInput(data []byte) {
	s := string(data)

	switch s {
	case KeyEnter:
		if e.OnSubmit != nil {
			if e.OnSubmit(string(e.value)) {
				e.value = nil
				e.cursor = 0
			}
		}

	case KeyAltEnter, KeyCtrlJ:
		e.insert([]rune{'\n'})

	case KeyBackspace, KeyCtrlH:
		if e.cursor > 0 {
			e.value = append(e.value[:e.cursor-1], e.value[e.cursor:]...)
			e.cursor--
		}

	case KeyDelete:
		if e.cursor < len(e.value) {
			e.value = append(e.value[:e.cursor], e.value[e.cursor+1:]...)
		}

	case KeyLeft, KeyCtrlB:
		if e.cursor > 0 {
			e.cursor--
		}
	case KeyRight, KeyCtrlF:
		if e.cursor < len(e.value) {
			e.cursor++
		}

	case KeyUp:
		e.moveVertical(-1)
	case KeyDown:
		e.moveVertical(1)

	case KeyHome, KeyHome2, KeyCtrlA:
		e.cursor = e.lineStart(e.cursor)
	case KeyEnd, KeyEnd2, KeyCtrlE:
		e.cursor = e.lineEnd(e.cursor)

	case KeyCtrlU:
		start := e.lineStart(e.cursor)
		e.value = append(e.value[:start], e.value[e.cursor:]...)
		e.cursor = start
	case KeyCtrlK:
		end := e.lineEnd(e.cursor)
		e.value = append(e.value[:e.cursor], e.value[end:]...)

	default:
		if e.OnKey != nil && e.OnKey(data) {
			return
		}
		e.insertPrintable(data)
	}
}

func (e *Editor) insertPrintable(data []byte) {
	rest := data
	var runes []rune
	for len(rest) > 0 {
		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size <= 1 {
			return
		}
		if r < 0x20 && r != '\t' {
			return
		}
		runes = append(runes, r)
		rest = rest[size:]
	}
	if len(runes) > 0 {
		e.insert(runes)
	}
}

func (e *Editor) insert(runes []rune) {
	newVal := make([]rune, 0, len(e.value)+len(runes))
	newVal = append(newVal, e.value[:e.cursor]...)
	newVal = append(newVal, runes...)
	newVal = append(newVal, e.value[e.cursor:]...)
	e.value = newVal
	e.cursor += len(runes)
}

// lineStart returns the index of the first rune of the line containing pos.
func (e *Editor) lineStart(pos int) int {
	for pos > 0 && e.value[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the index just past the last rune of the line containing
// pos (the index of the newline, or len(value) on the last line).
func (e *Editor) lineEnd(pos int) int {
	for pos < len(e.value) && e.value[pos] != '\n' {
		pos++
	}
	return pos
}

func (e *Editor) moveVertical(delta int) {
	col := e.cursor - e.lineStart(e.cursor)

	if delta < 0 {
		start := e.lineStart(e.cursor)
		if start == 0 {
			return
		}
		prevStart := e.lineStart(start - 1)
		e.cursor = min(prevStart+col, start-1)
	} else {
		end := e.lineEnd(e.cursor)
		if end == len(e.value) {
			return
		}
		nextStart := end + 1
		nextEnd := e.lineEnd(nextStart)
		e.cursor = min(nextStart+col, nextEnd)
	}
}
