package scanline

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

// mockTerminal records writes and simulates a fixed-size terminal.
type mockTerminal struct {
	cols, rows int
	written    strings.Builder
	onInput    func([]byte)
	onResize   func()
	moved      []int
	stopped    bool
}

func newMockTerminal(cols, rows int) *mockTerminal {
	return &mockTerminal{cols: cols, rows: rows}
}

func (m *mockTerminal) Start(onInput func([]byte), onResize func()) error {
	m.onInput = onInput
	m.onResize = onResize
	return nil
}
func (m *mockTerminal) Stop()                { m.stopped = true }
func (m *mockTerminal) Write(p []byte)       { m.written.Write(p) }
func (m *mockTerminal) WriteString(s string) { m.written.WriteString(s) }
func (m *mockTerminal) Columns() int         { return m.cols }
func (m *mockTerminal) Rows() int            { return m.rows }
func (m *mockTerminal) MoveCursorBy(n int)   { m.moved = append(m.moved, n) }
func (m *mockTerminal) ClearLine()           { m.written.WriteString("\x1b[2K") }
func (m *mockTerminal) ClearFromCursor()     { m.written.WriteString("\x1b[0J") }
func (m *mockTerminal) ClearScreen()         { m.written.WriteString(clearAll) }
func (m *mockTerminal) HideCursor()          { m.written.WriteString("\x1b[?25l") }
func (m *mockTerminal) ShowCursor()          { m.written.WriteString("\x1b[?25h") }
func (m *mockTerminal) EnterAltScreen()      { m.written.WriteString("\x1b[?1049h") }
func (m *mockTerminal) LeaveAltScreen()      { m.written.WriteString("\x1b[?1049l") }
func (m *mockTerminal) SetTitle(string)      {}

func (m *mockTerminal) reset() { m.written.Reset() }

// staticComponent renders fixed lines, re-rendered every frame.
type staticComponent struct {
	lines []string
}

func (s *staticComponent) Invalidate() {}

func (s *staticComponent) Render(width int) []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		if VisibleWidth(l) > width {
			out[i] = Truncate(l, width, "")
		} else {
			out[i] = l
		}
	}
	return out
}

// renderSync calls doRender directly. Tests use newRenderer (no
// renderLoop), so there's no concurrency to worry about.
func renderSync(r *Renderer) {
	r.doRender()
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			_, n := parseEscape(s[i:])
			if n > 0 {
				i += n
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// snapshotRenderedLines renders and returns the tracked lines joined with
// newlines, ANSI stripped, each padded to terminal width using
// visible-width accounting.
func snapshotRenderedLines(r *Renderer, term *mockTerminal) string {
	renderSync(r)

	r.mu.Lock()
	tracked := r.tracked.Lines
	r.mu.Unlock()

	w := term.Columns()
	var sb strings.Builder
	for i, line := range tracked {
		stripped := stripANSI(line)
		vw := VisibleWidth(stripped)
		if vw < w {
			stripped += strings.Repeat(" ", w-vw)
		} else if vw > w {
			stripped = Truncate(stripped, w, "")
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(stripped)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func TestFirstRender(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"hello", "world"}})

	renderSync(r)

	out := term.written.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
	// Should use synchronized output.
	assert.Contains(t, out, "\x1b[?2026h")
	assert.Contains(t, out, "\x1b[?2026l")
	// The first render must not clear: there is nothing of ours to erase
	// and the user's scrollback survives.
	assert.NotContains(t, out, "\x1b[3J")
	assert.Equal(t, 1, r.FullRedraws())
}

func TestDifferentialRender(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &staticComponent{lines: []string{"line1", "line2", "line3"}}
	r.AddChild(comp)

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Change only the second line.
	comp.lines[1] = "LINE2"
	term.reset()
	renderSync(r)

	out := term.written.String()
	// Should NOT be a full redraw (no clear scrollback sequence).
	assert.NotContains(t, out, "\x1b[3J")
	assert.Contains(t, out, "LINE2")
	// Should NOT re-render unchanged lines.
	assert.NotContains(t, out, "line1")
	assert.NotContains(t, out, "line3")
	assert.Equal(t, 1, r.FullRedraws())
}

func TestAppendLines(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &staticComponent{lines: []string{"a"}}
	r.AddChild(comp)

	renderSync(r)
	term.reset()

	comp.lines = []string{"a", "b", "c"}
	renderSync(r)

	out := term.written.String()
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "c")
	// "a" is unchanged, should not be rewritten.
	assert.NotContains(t, out, "\x1b[2Ka"+segmentReset)
	assert.Equal(t, 1, r.FullRedraws())
}

func TestShrinkAfterGrowStaysIncremental(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &staticComponent{lines: []string{"a", "b", "c"}}
	r.AddChild(comp)

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Grow past the initial extent.
	comp.lines = []string{"a", "b", "c", "d"}
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Shrink. The growth happened right after the full redraw anchored the
	// cursor, so the removed rows can still be blanked in place.
	comp.lines = []string{"a", "b"}
	term.reset()
	renderSync(r)

	out := term.written.String()
	assert.NotContains(t, out, "\x1b[3J")
	assert.Contains(t, out, "\x1b[2K", "removed trailing rows must be blanked")
	assert.Equal(t, 1, r.FullRedraws())
}

func TestUpdateAfterShrinkTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &staticComponent{lines: []string{"a", "b", "c"}}
	r.AddChild(comp)

	renderSync(r)
	comp.lines = []string{"a", "b", "c", "d"}
	renderSync(r)
	comp.lines = []string{"a", "b"}
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// The rendered region once reached 4 lines and the shrink is now two
	// frames past the last full redraw; an in-place rewrite can no longer
	// be trusted, so this update repaints everything.
	comp.lines = []string{"a", "B!"}
	term.reset()
	renderSync(r)

	assert.Equal(t, 2, r.FullRedraws())
	out := term.written.String()
	assert.Contains(t, out, "\x1b[3J")
	assert.Contains(t, out, "B!")
}

func TestShrinkThenRegrowTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)

	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "x"
	}
	comp := &staticComponent{lines: lines}
	r.AddChild(comp)

	renderSync(r)
	for i := 20; i < 30; i++ {
		comp.lines = append(comp.lines, "x")
	}
	renderSync(r)
	comp.lines = comp.lines[:25]
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// The screen scrolled when the content reached 30 rows and the shrink
	// did not scroll it back: rows 20-29 are the physical viewport. Row 16
	// cannot be reached by relative movement even though it is inside the
	// previous frame's last 10 lines.
	comp.lines = append(comp.lines, "x", "x", "x", "x", "x")
	comp.lines[16] = "CHANGED"
	term.reset()
	renderSync(r)

	assert.Equal(t, 2, r.FullRedraws())
	out := term.written.String()
	assert.Contains(t, out, "\x1b[3J")
	assert.Contains(t, out, "CHANGED")
}

func TestRemovedTailFillingScreenTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 5)
	r := newRenderer(term)
	r.SetFullRedrawFraction(0)
	comp := &staticComponent{lines: []string{"a", "b"}}
	r.AddChild(comp)

	renderSync(r)
	comp.lines = []string{"a", "b", "c", "d", "e", "f"}
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Removing five rows on a five-row screen would re-anchor on a row
	// that has scrolled above the viewport.
	comp.lines = []string{"a"}
	term.reset()
	renderSync(r)

	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "\x1b[3J")
}

func TestWidthChangeTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"hello"}})

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Simulate resize.
	term.cols = 60
	term.reset()
	renderSync(r)
	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "\x1b[3J")
}

func TestOffscreenChangeTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 5) // only 5 rows visible
	r := newRenderer(term)

	lines := make([]string, 20)
	for i := range lines {
		lines[i] = strings.Repeat("x", 10)
	}
	comp := &staticComponent{lines: lines}
	r.AddChild(comp)

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Change a line that has scrolled above the viewport; relative cursor
	// movement cannot reach it.
	comp.lines[0] = "CHANGED"
	term.reset()
	renderSync(r)

	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "\x1b[3J")
}

// framedComponent draws its content between box-drawing borders, like an
// editor pane.
type framedComponent struct {
	lines []string
}

func (f *framedComponent) Invalidate() {}

func (f *framedComponent) Render(width int) []string {
	const inner = 16
	out := []string{"╭" + strings.Repeat("─", inner) + "╮"}
	for _, l := range f.lines {
		out = append(out, "│"+l+strings.Repeat(" ", inner-VisibleWidth(l))+"│")
	}
	return append(out, "╰"+strings.Repeat("─", inner)+"╯")
}

func TestBorderedContentSurvivesGrowShrinkCycle(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &framedComponent{lines: []string{"alpha", "beta"}}
	r.AddChild(comp)

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Grow then shrink without an intervening full redraw.
	comp.lines = []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	renderSync(r)
	comp.lines = []string{"alpha", "beta", "gamma"}
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Editing inside the shrunk box repaints everything; the borders must
	// come back in their original positions around the updated content.
	comp.lines = []string{"alpha", "EDITED", "gamma"}
	term.reset()
	renderSync(r)

	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "EDITED")

	r.mu.Lock()
	tracked := r.tracked.Lines
	r.mu.Unlock()
	require.Len(t, tracked, 5)
	assert.True(t, strings.HasPrefix(stripANSI(tracked[0]), "╭"))
	assert.Contains(t, tracked[1], "alpha")
	assert.Contains(t, tracked[2], "EDITED")
	assert.Contains(t, tracked[3], "gamma")
	assert.True(t, strings.HasPrefix(stripANSI(tracked[4]), "╰"))
}

func TestNoChangeNoOutput(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"stable"}})

	renderSync(r)
	term.reset()

	renderSync(r)

	out := term.written.String()
	assert.NotContains(t, out, "stable")
	assert.NotContains(t, out, "\x1b[2K") // no line clears
}

func TestHighChurnTriggersFullRedraw(t *testing.T) {
	term := newMockTerminal(40, 24)
	r := newRenderer(term)
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	comp := &staticComponent{lines: lines}
	r.AddChild(comp)

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// 8 of 10 lines changed: past the churn threshold one repaint writes
	// fewer bytes than eight cursor hops.
	for i := 0; i < 8; i++ {
		comp.lines[i] = "CHANGED"
	}
	term.reset()
	renderSync(r)
	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "\x1b[3J")
}

func TestFullRedrawFractionDisabled(t *testing.T) {
	term := newMockTerminal(40, 24)
	r := newRenderer(term)
	r.SetFullRedrawFraction(0)
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	comp := &staticComponent{lines: lines}
	r.AddChild(comp)

	renderSync(r)
	for i := 0; i < 8; i++ {
		comp.lines[i] = "CHANGED"
	}
	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())
}

func TestShrinkToEmptyBlanksInPlace(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	comp := &staticComponent{lines: []string{"a"}}
	r.AddChild(comp)

	renderSync(r)
	comp.lines = []string{"a", "b"}
	renderSync(r)

	comp.lines = nil
	term.reset()
	renderSync(r)

	out := term.written.String()
	assert.NotContains(t, out, "\x1b[3J")
	assert.Contains(t, out, "\x1b[2K")
	assert.Equal(t, 1, r.FullRedraws())
}

func TestForceRender(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"content"}})

	renderSync(r)
	assert.Equal(t, 1, r.FullRedraws())

	// Force discards all tracked state; the next render repaints even
	// with no changes.
	r.RequestRender(true)
	term.reset()
	renderSync(r)
	assert.Equal(t, 2, r.FullRedraws())
	assert.Contains(t, term.written.String(), "content")
}

func TestCursorMarkerExtraction(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{
		"first line",
		"input> " + CursorMarker + "tail",
	}})

	renderSync(r)

	out := term.written.String()
	assert.NotContains(t, out, CursorMarker, "marker must never reach the terminal")
	// Column escape is 1-based: visible col 7 -> \x1b[8G.
	assert.Contains(t, out, "\x1b[8G")

	r.mu.Lock()
	row := r.cursorRow
	r.mu.Unlock()
	assert.Equal(t, 1, row)
}

func TestShowHardwareCursor(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.showHardwareCursor = true
	r.AddChild(&staticComponent{lines: []string{"x" + CursorMarker}})

	renderSync(r)
	assert.Contains(t, term.written.String(), "\x1b[?25h")
}

func TestPanicInRenderIsIsolated(t *testing.T) {
	var logBuf bytes.Buffer
	term := newMockTerminal(60, 10)
	r := newRenderer(term)
	r.SetLogger(slog.New(slog.NewTextHandler(&logBuf, nil)))
	r.AddChild(&staticComponent{lines: []string{"before"}})
	r.AddChild(&panicComponent{})
	r.AddChild(&staticComponent{lines: []string{"after"}})

	renderSync(r)

	out := term.written.String()
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
	assert.Contains(t, out, "render failed")
	assert.Contains(t, logBuf.String(), "component render panicked")
}

type panicComponent struct{}

func (p *panicComponent) Invalidate()               {}
func (p *panicComponent) Render(width int) []string { panic("boom") }

func TestFocusedComponentReceivesInput(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	input := NewTextInput("> ")
	r.AddChild(input)
	r.SetFocus(input)

	r.handleInput([]byte("hi"))
	assert.Equal(t, "hi", input.Value())
}

func TestInputListenerConsume(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	input := NewTextInput("> ")
	r.AddChild(input)
	r.SetFocus(input)

	remove := r.AddInputListener(func(data []byte) *InputListenerResult {
		if string(data) == "x" {
			return &InputListenerResult{Consume: true}
		}
		return nil
	})

	r.handleInput([]byte("x"))
	assert.Equal(t, "", input.Value(), "consumed input must not reach focus")

	r.handleInput([]byte("y"))
	assert.Equal(t, "y", input.Value())

	remove()
	r.handleInput([]byte("x"))
	assert.Equal(t, "yx", input.Value(), "removed listener no longer intercepts")
}

func TestInputListenerRewrite(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	input := NewTextInput("> ")
	r.AddChild(input)
	r.SetFocus(input)

	r.AddInputListener(func(data []byte) *InputListenerResult {
		return &InputListenerResult{Data: bytes.ToUpper(data)}
	})

	r.handleInput([]byte("abc"))
	assert.Equal(t, "ABC", input.Value())
}

func TestSetFocusTogglesFocusable(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	a := NewTextInput("> ")
	b := NewTextInput("$ ")
	r.AddChild(a)
	r.AddChild(b)

	r.SetFocus(a)
	assert.True(t, a.focused)

	r.SetFocus(b)
	assert.False(t, a.focused)
	assert.True(t, b.focused)
}

func TestStopMovesCursorBelowContent(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"a", "b", "c"}})

	renderSync(r)
	r.Stop()

	// Cursor ended on the last content row (2); Stop moves one row past
	// the content so the shell prompt lands on a fresh line.
	require.NotEmpty(t, term.moved)
	assert.Equal(t, 1, term.moved[len(term.moved)-1])
	assert.Contains(t, term.written.String(), "\x1b[?25h")
	assert.True(t, term.stopped)

	// Requests after Stop are dropped.
	r.RequestRender(false)
}

func TestDebugWriterEmitsStats(t *testing.T) {
	var buf bytes.Buffer
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.SetDebugWriter(&buf)
	r.AddChild(&staticComponent{lines: []string{"one", "two"}})

	renderSync(r)
	renderSync(r)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first renderStatsJSON
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.True(t, first.FullRedraw)
	assert.Equal(t, 2, first.TotalLines)
	assert.Equal(t, 2, first.LinesRepainted)
	assert.Equal(t, uint64(1), first.Epoch)

	var second renderStatsJSON
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.False(t, second.FullRedraw)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, -1, second.FirstChanged)
}

func TestStartWiresTerminal(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	input := NewTextInput("> ")
	r.AddChild(input)
	r.SetFocus(input)

	require.NoError(t, r.Start())
	require.NotNil(t, term.onInput)
	require.NotNil(t, term.onResize)

	term.onInput([]byte("ok"))
	assert.Equal(t, "ok", input.Value())
}

func TestDispatchRunsBeforeNextFrame(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"base"}})

	renderSync(r)
	term.reset()

	r.Dispatch(func() {
		r.AddChild(&staticComponent{lines: []string{"added"}})
	})
	renderSync(r)

	assert.Contains(t, term.written.String(), "added")
}

func TestOverlayCompositing(t *testing.T) {
	term := newMockTerminal(20, 5)
	r := newRenderer(term)
	bg := &staticComponent{lines: []string{
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
	}}
	r.AddChild(bg)

	overlay := &staticComponent{lines: []string{"OVERLAY"}}
	r.ShowOverlay(overlay, &OverlayOptions{
		Width:  SizeAbs(10),
		Anchor: AnchorCenter,
	})

	snap := snapshotRenderedLines(r, term)
	golden.Assert(t, snap, "overlay_center.golden")
}

func TestOverlayBottomRightWithMargin(t *testing.T) {
	term := newMockTerminal(20, 6)
	r := newRenderer(term)
	bg := &staticComponent{lines: []string{
		"row-0", "row-1", "row-2", "row-3", "row-4", "row-5",
	}}
	r.AddChild(bg)

	overlay := &staticComponent{lines: []string{"HI"}}
	r.ShowOverlay(overlay, &OverlayOptions{
		Width:  SizeAbs(4),
		Anchor: AnchorBottomRight,
		Margin: OverlayMargin{Bottom: 1, Right: 1},
	})

	snap := snapshotRenderedLines(r, term)
	golden.Assert(t, snap, "overlay_bottom_right_margin.golden")
}

func TestContentRelativeOverlay(t *testing.T) {
	term := newMockTerminal(30, 10)
	r := newRenderer(term)
	bg := &staticComponent{lines: []string{
		"line-0",
		"line-1",
		"line-2",
	}}
	r.AddChild(bg)

	menu := &staticComponent{lines: []string{"MENU-A", "MENU-B"}}
	r.ShowOverlay(menu, &OverlayOptions{
		Width:           SizeAbs(10),
		Anchor:          AnchorBottomLeft,
		ContentRelative: true,
		OffsetY:         -1, // above the last content line
	})

	renderSync(r)

	r.mu.Lock()
	tracked := r.tracked.Lines
	r.mu.Unlock()

	require.True(t, len(tracked) >= 3)
	assert.Contains(t, tracked[0], "MENU-A")
	assert.Contains(t, tracked[1], "MENU-B")
	assert.Contains(t, tracked[2], "line-2")
}

func TestOverlayMaxHeightClampsLines(t *testing.T) {
	term := newMockTerminal(40, 24)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{"bg"}})

	tall := &staticComponent{lines: []string{
		"o-0", "o-1", "o-2", "o-3", "o-4", "o-5", "o-6", "o-7",
	}}
	r.ShowOverlay(tall, &OverlayOptions{
		Width:     SizeAbs(10),
		MaxHeight: SizeAbs(3),
		Anchor:    AnchorTopLeft,
	})

	renderSync(r)

	r.mu.Lock()
	tracked := r.tracked.Lines
	r.mu.Unlock()

	var shown int
	for _, line := range tracked {
		if strings.Contains(line, "o-") {
			shown++
		}
	}
	assert.Equal(t, 3, shown)
}

func TestOverlayHideRestoresBackground(t *testing.T) {
	term := newMockTerminal(20, 5)
	r := newRenderer(term)
	r.AddChild(&staticComponent{lines: []string{strings.Repeat(".", 20)}})

	handle := r.ShowOverlay(&staticComponent{lines: []string{"POPUP"}}, &OverlayOptions{
		Width:  SizeAbs(8),
		Anchor: AnchorTopLeft,
	})
	renderSync(r)
	assert.True(t, r.HasOverlay())

	handle.Hide()
	renderSync(r)
	assert.False(t, r.HasOverlay())

	r.mu.Lock()
	tracked := r.tracked.Lines
	r.mu.Unlock()
	for _, line := range tracked {
		assert.NotContains(t, line, "POPUP")
	}
}

func TestOverlayDoesNotStealFocus(t *testing.T) {
	term := newMockTerminal(40, 10)
	r := newRenderer(term)
	input := NewTextInput("> ")
	r.AddChild(input)
	r.SetFocus(input)

	r.ShowOverlay(&staticComponent{lines: []string{"hint"}}, &OverlayOptions{
		Width:   SizeAbs(10),
		Anchor:  AnchorTopRight,
		NoFocus: true,
	})

	r.handleInput([]byte("z"))
	assert.Equal(t, "z", input.Value())
}
