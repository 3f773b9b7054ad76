package scanline

import (
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// InputListenerResult controls how input propagates through listeners.
type InputListenerResult struct {
	// Consume stops propagation entirely.
	Consume bool
	// Data replaces the input data for downstream listeners. Nil means keep
	// the original data.
	Data []byte
}

// InputListener is called before input reaches the focused component.
// Return nil to pass through unchanged.
type InputListener func(data []byte) *InputListenerResult

type inputListenerEntry struct {
	fn  InputListener
	tok any // unique token for removal
}

// RenderStats captures performance metrics for a single render cycle.
type RenderStats struct {
	// RenderTime is how long it took to flatten the component tree.
	RenderTime time.Duration

	// CompositeTime is how long overlay compositing took. Zero when there
	// are no overlays.
	CompositeTime time.Duration

	// DiffTime is how long the diff computation and escape generation took.
	DiffTime time.Duration

	// WriteTime is how long the terminal write took.
	WriteTime time.Duration

	// TotalTime is the wall-clock duration of the entire render cycle.
	TotalTime time.Duration

	// TotalLines is the number of lines in the desired frame.
	TotalLines int

	// LinesRepainted is the number of lines actually written.
	LinesRepainted int

	// CacheHits is the number of lines that matched the previous frame and
	// were skipped.
	CacheHits int

	// FullRedraw is true when the entire screen was repainted.
	FullRedraw bool

	// OverlayCount is the number of visible overlays composited.
	OverlayCount int

	// BytesWritten is the number of bytes sent to the terminal. Large
	// values indicate potential slowness over SSH or on slow terminals.
	BytesWritten int

	// FirstChangedLine / LastChangedLine bound the differing region, or -1
	// when nothing changed.
	FirstChangedLine int
	LastChangedLine  int

	// Epoch counts full redraws since the renderer was created; every full
	// redraw re-anchors the positional basis.
	Epoch uint64
}

// renderStatsJSON is the JSONL record written by the debug writer.
type renderStatsJSON struct {
	Ts             int64  `json:"ts"`
	TotalUs        int64  `json:"total_us"`
	RenderUs       int64  `json:"render_us"`
	CompositeUs    int64  `json:"composite_us"`
	DiffUs         int64  `json:"diff_us"`
	WriteUs        int64  `json:"write_us"`
	TotalLines     int    `json:"total_lines"`
	LinesRepainted int    `json:"lines_repainted"`
	CacheHits      int    `json:"cache_hits"`
	FullRedraw     bool   `json:"full_redraw"`
	OverlayCount   int    `json:"overlay_count"`
	BytesWritten   int    `json:"bytes_written"`
	FirstChanged   int    `json:"first_changed"`
	LastChanged    int    `json:"last_changed"`
	Epoch          uint64 `json:"epoch"`
}

// Renderer drives differential rendering of a component tree onto a
// Terminal. It embeds Container, so the UI is assembled with AddChild. The
// renderer exclusively owns both the terminal and its model of what the
// terminal currently shows; nothing else may write to the terminal while it
// is active.
type Renderer struct {
	Container

	term Terminal

	mu sync.Mutex // protects all mutable state below

	tracked    Frame // last committed frame
	hasTracked bool

	cursorRow     int  // content row the hardware cursor is on
	maxLines      int  // largest line count since the last full redraw
	afterFull     bool // the last render was a full redraw
	prevAfterFull bool // the previous frame was produced right after one

	epoch       uint64
	fullRedraws int

	fullRedrawFraction float64

	showHardwareCursor bool
	focused            Component
	inputListeners     []inputListenerEntry
	overlays           []*overlayEntry

	stopped  bool
	renderCh chan struct{} // serialized, coalesced render requests
	dispatch []func()      // queued tree mutations, run on the render goroutine

	logger      *slog.Logger
	debugWriter io.Writer
}

// defaultFullRedrawFraction is the churn ratio past which a repaint is
// preferred over a large patch. Tunable via SetFullRedrawFraction.
const defaultFullRedrawFraction = 0.6

// New creates a Renderer backed by the given terminal and starts its render
// loop.
func New(term Terminal) *Renderer {
	r := newRenderer(term)
	go r.renderLoop()
	return r
}

// newRenderer creates a Renderer without starting the render loop. Used by
// tests that call doRender synchronously.
func newRenderer(term Terminal) *Renderer {
	return &Renderer{
		term:               term,
		renderCh:           make(chan struct{}, 1),
		fullRedrawFraction: defaultFullRedrawFraction,
		logger:             slog.Default(),
	}
}

// renderLoop processes render requests serially on a dedicated goroutine.
func (r *Renderer) renderLoop() {
	for range r.renderCh {
		r.doRender()
	}
}

// Terminal returns the underlying terminal.
func (r *Renderer) Terminal() Terminal { return r.term }

// SetLogger replaces the logger used for component failure reports.
func (r *Renderer) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// SetDebugWriter enables render performance logging. Each render cycle
// writes a single JSONL stats record to w. Pass nil to disable.
func (r *Renderer) SetDebugWriter(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debugWriter = w
}

// SetFullRedrawFraction sets the fraction of changed lines past which a
// full redraw is preferred over an incremental patch. This is an efficiency
// heuristic, not a correctness knob. Zero or negative disables it.
func (r *Renderer) SetFullRedrawFraction(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fullRedrawFraction = f
}

// FullRedraws returns the number of full (non-differential) redraws
// performed. Useful for diagnostics and tests.
func (r *Renderer) FullRedraws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fullRedraws
}

// SetShowHardwareCursor enables or disables the hardware cursor (for IME).
func (r *Renderer) SetShowHardwareCursor(enabled bool) {
	r.mu.Lock()
	if r.showHardwareCursor == enabled {
		r.mu.Unlock()
		return
	}
	r.showHardwareCursor = enabled
	r.mu.Unlock()
	if !enabled {
		r.term.HideCursor()
	}
	r.RequestRender(false)
}

// SetFocus gives keyboard focus to the given component (or nil).
func (r *Renderer) SetFocus(comp Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setFocusLocked(comp)
}

func (r *Renderer) setFocusLocked(comp Component) {
	if f, ok := r.focused.(Focusable); ok {
		f.SetFocused(false)
	}
	r.focused = comp
	if f, ok := comp.(Focusable); ok {
		f.SetFocused(true)
	}
}

// AddInputListener registers a listener that intercepts input before it
// reaches the focused component. Returns a function that removes it.
func (r *Renderer) AddInputListener(l InputListener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	type token struct{}
	tok := &token{}
	r.inputListeners = append(r.inputListeners, inputListenerEntry{fn: l, tok: tok})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, entry := range r.inputListeners {
			if entry.tok == tok {
				r.inputListeners = append(r.inputListeners[:i], r.inputListeners[i+1:]...)
				return
			}
		}
	}
}

// Start begins the event loop: raw mode, input and resize listeners, and an
// initial render.
func (r *Renderer) Start() error {
	err := r.term.Start(
		func(data []byte) { r.handleInput(data) },
		func() { r.RequestRender(false) },
	)
	if err != nil {
		return err
	}
	r.term.HideCursor()
	r.RequestRender(false)
	return nil
}

// Stop ends the event loop and restores the terminal. The cursor is moved
// below the rendered content so the shell prompt appears underneath it.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	total := len(r.tracked.Lines)
	row := r.cursorRow
	r.mu.Unlock()

	if total > 0 {
		r.term.MoveCursorBy(total - row)
		r.term.WriteString("\r\n")
	}
	r.term.WriteString("\r")
	r.term.ShowCursor()
	r.term.Stop()

	r.mu.Lock()
	close(r.renderCh)
	r.mu.Unlock()
}

// RequestRender schedules a render on the next loop iteration. If force is
// true, all tracked state is discarded and a full repaint occurs.
func (r *Renderer) RequestRender(force bool) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if force {
		r.hasTracked = false
		r.tracked = Frame{}
		r.cursorRow = 0
		r.maxLines = 0
		r.afterFull = false
		r.prevAfterFull = false
	}
	// Non-blocking send so rapid requests and resize storms coalesce. Done
	// under the lock so Stop cannot close the channel mid-send.
	select {
	case r.renderCh <- struct{}{}:
	default:
	}
	r.mu.Unlock()
}

// Dispatch queues fn to run on the render goroutine before the next frame
// is built. Component trees are not locked; any mutation made after Start
// (adding or removing children, changing focus) must go through Dispatch to
// avoid racing the frame builder.
func (r *Renderer) Dispatch(fn func()) {
	r.mu.Lock()
	r.dispatch = append(r.dispatch, fn)
	r.mu.Unlock()
	r.RequestRender(false)
}

// Invalidate clears cached rendering state of all components, including
// overlays.
func (r *Renderer) Invalidate() {
	r.Container.Invalidate()
	r.mu.Lock()
	overlays := make([]*overlayEntry, len(r.overlays))
	copy(overlays, r.overlays)
	r.mu.Unlock()
	for _, o := range overlays {
		o.component.Invalidate()
	}
}

// ---------- input handling --------------------------------------------------

func (r *Renderer) handleInput(data []byte) {
	r.mu.Lock()
	listeners := make([]inputListenerEntry, len(r.inputListeners))
	copy(listeners, r.inputListeners)
	r.mu.Unlock()

	current := data
	for _, entry := range listeners {
		res := entry.fn(current)
		if res != nil {
			if res.Consume {
				return
			}
			if res.Data != nil {
				current = res.Data
			}
		}
	}
	if len(current) == 0 {
		return
	}

	r.mu.Lock()
	comp := r.focused
	r.mu.Unlock()

	if h, ok := comp.(InputHandler); ok {
		h.HandleInput(current)
		r.RequestRender(false)
	}
}

// ---------- render cycle ----------------------------------------------------

// doRender performs one render-to-completion: build the desired frame, diff
// it against the tracked frame, choose a redraw strategy, emit, and commit.
// Whatever path was taken, the tracked state afterwards equals the desired
// frame, so the next diff always compares against what was actually written.
func (r *Renderer) doRender() {
	totalStart := time.Now()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	fns := r.dispatch
	r.dispatch = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	width := r.term.Columns()
	height := r.term.Rows()
	prev := r.tracked
	hasPrev := r.hasTracked
	bs := basis{maxLines: r.maxLines, prevAfterFull: r.prevAfterFull}
	cursorRow := r.cursorRow
	fraction := r.fullRedrawFraction
	logger := r.logger
	debugW := r.debugWriter
	overlays := make([]*overlayEntry, len(r.overlays))
	copy(overlays, r.overlays)
	r.mu.Unlock()

	var stats RenderStats
	stats.FirstChangedLine = -1
	stats.LastChangedLine = -1

	renderStart := time.Now()
	lines := frameBuilder{logger: logger}.flatten(&r.Container, width, nil)
	stats.RenderTime = time.Since(renderStart)

	if len(overlays) > 0 {
		compositeStart := time.Now()
		var visible int
		lines, visible = r.compositeOverlays(lines, overlays, width, height, bs.maxLines)
		stats.OverlayCount = visible
		stats.CompositeTime = time.Since(compositeStart)
	}

	cursor := extractCursor(lines)
	for i := range lines {
		lines[i] += segmentReset
	}
	next := Frame{Lines: lines, Width: width, Height: height, Cursor: cursor}
	stats.TotalLines = len(next.Lines)

	diffStart := time.Now()
	var d DiffResult
	decision := FullRedraw
	if hasPrev {
		d = diffFrames(prev, next, bs)
		decision = decide(d, next, fraction)
		if decision == Incremental && !patchSafe(d, prev, bs, height) {
			decision = FullRedraw
		}
	}

	var out string
	var endRow int
	switch {
	case decision == FullRedraw:
		// Clearing only makes sense when reconciling previous output; the
		// very first frame has nothing to erase and should not eat the
		// user's scrollback.
		out, endRow = emitFull(next, hasPrev)
		stats.FullRedraw = true
		stats.LinesRepainted = len(next.Lines)
		stats.FirstChangedLine = 0
		stats.LastChangedLine = max(0, len(next.Lines)-1)
	case d.FirstChanged == -1:
		// Identical frame: zero writes.
		endRow = cursorRow
		stats.CacheHits = len(next.Lines)
	default:
		out, endRow = emitPatch(prev, next, d, cursorRow)
		stats.LinesRepainted = d.Repainted
		stats.CacheHits = len(next.Lines) - d.Repainted
		stats.FirstChangedLine = d.FirstChanged
		stats.LastChangedLine = d.LastChanged
	}
	stats.DiffTime = time.Since(diffStart)
	stats.BytesWritten = len(out)

	if out != "" {
		writeStart := time.Now()
		r.term.WriteString(out)
		stats.WriteTime = time.Since(writeStart)
	}

	// Commit: tracked state becomes the desired frame atomically, whichever
	// path ran.
	isFull := decision == FullRedraw
	r.mu.Lock()
	if isFull {
		r.fullRedraws++
		r.epoch++
		r.maxLines = len(next.Lines)
	} else {
		r.maxLines = max(r.maxLines, len(next.Lines))
	}
	r.prevAfterFull = r.afterFull
	r.afterFull = isFull
	r.tracked = next
	r.hasTracked = true
	r.cursorRow = endRow
	stats.Epoch = r.epoch
	r.mu.Unlock()

	r.positionHardwareCursor(cursor, len(next.Lines))

	stats.TotalTime = time.Since(totalStart)
	if debugW != nil {
		emitStats(debugW, stats)
	}
}

func emitStats(w io.Writer, stats RenderStats) {
	rec := renderStatsJSON{
		Ts:             time.Now().UnixMilli(),
		TotalUs:        stats.TotalTime.Microseconds(),
		RenderUs:       stats.RenderTime.Microseconds(),
		CompositeUs:    stats.CompositeTime.Microseconds(),
		DiffUs:         stats.DiffTime.Microseconds(),
		WriteUs:        stats.WriteTime.Microseconds(),
		TotalLines:     stats.TotalLines,
		LinesRepainted: stats.LinesRepainted,
		CacheHits:      stats.CacheHits,
		FullRedraw:     stats.FullRedraw,
		OverlayCount:   stats.OverlayCount,
		BytesWritten:   stats.BytesWritten,
		FirstChanged:   stats.FirstChangedLine,
		LastChanged:    stats.LastChangedLine,
		Epoch:          stats.Epoch,
	}
	data, _ := json.Marshal(rec)
	data = append(data, '\n')
	w.Write(data) //nolint:errcheck
}

// ---------- cursor ----------------------------------------------------------

func (r *Renderer) positionHardwareCursor(pos *CursorPos, totalLines int) {
	if pos == nil || totalLines <= 0 {
		r.term.HideCursor()
		return
	}

	targetRow := clamp(pos.Row, 0, totalLines-1)
	targetCol := max(0, pos.Col)

	r.mu.Lock()
	row := r.cursorRow
	show := r.showHardwareCursor
	r.mu.Unlock()

	var buf strings.Builder
	if delta := targetRow - row; delta > 0 {
		buf.WriteString("\x1b[" + strconv.Itoa(delta) + "B")
	} else if delta < 0 {
		buf.WriteString("\x1b[" + strconv.Itoa(-delta) + "A")
	}
	buf.WriteString("\x1b[" + strconv.Itoa(targetCol+1) + "G")
	r.term.WriteString(buf.String())

	r.mu.Lock()
	r.cursorRow = targetRow
	r.mu.Unlock()

	if show {
		r.term.ShowCursor()
	} else {
		r.term.HideCursor()
	}
}

// ---------- helpers ---------------------------------------------------------

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
