package scanline

// OverlayAnchor specifies where an overlay is positioned relative to the
// terminal viewport.
type OverlayAnchor int

const (
	AnchorCenter OverlayAnchor = iota
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
	AnchorTopCenter
	AnchorBottomCenter
	AnchorLeftCenter
	AnchorRightCenter
)

// OverlayMargin specifies spacing from the viewport edges, in cells.
type OverlayMargin struct {
	Top, Right, Bottom, Left int
}

// SizeValue represents either an absolute column/row count or a percentage
// of the terminal dimension. Use the SizeAbs and SizePct helpers.
type SizeValue struct {
	abs   int
	pct   float64
	isPct bool
	isSet bool
}

// SizeAbs returns an absolute SizeValue.
func SizeAbs(n int) SizeValue { return SizeValue{abs: n, isSet: true} }

// SizePct returns a percentage SizeValue (0-100).
func SizePct(p float64) SizeValue { return SizeValue{pct: p, isPct: true, isSet: true} }

func (v SizeValue) resolve(ref int) (int, bool) {
	if !v.isSet {
		return 0, false
	}
	if v.isPct {
		return int(float64(ref) * v.pct / 100), true
	}
	return v.abs, true
}

// OverlayOptions configures overlay positioning and sizing.
type OverlayOptions struct {
	Width     SizeValue
	MinWidth  int
	MaxHeight SizeValue

	Anchor  OverlayAnchor
	OffsetX int
	OffsetY int

	Row SizeValue
	Col SizeValue

	Margin OverlayMargin

	// ContentRelative positions the overlay relative to the rendered
	// content bounds rather than the terminal viewport: AnchorBottomLeft
	// then means the bottom of the content, which is useful for menus that
	// float just above the last content line.
	ContentRelative bool

	// NoFocus, when true, prevents the overlay from stealing focus when
	// shown. Useful for non-modal popups like completion menus.
	NoFocus bool
}

// OverlayHandle controls a displayed overlay.
type OverlayHandle struct {
	r     *Renderer
	entry *overlayEntry
}

// Hide permanently removes the overlay.
func (h *OverlayHandle) Hide() {
	h.r.removeOverlay(h.entry)
}

// SetOptions replaces the overlay's positioning/sizing options without
// destroying and recreating the overlay.
func (h *OverlayHandle) SetOptions(opts *OverlayOptions) {
	h.entry.options = opts
}

// SetHidden temporarily hides or shows the overlay.
func (h *OverlayHandle) SetHidden(hidden bool) {
	h.r.mu.Lock()
	if h.entry.hidden == hidden {
		h.r.mu.Unlock()
		return
	}
	h.entry.hidden = hidden
	if hidden {
		h.r.restoreFocusFromOverlayLocked(h.entry)
	} else {
		noFocus := h.entry.options != nil && h.entry.options.NoFocus
		if !noFocus {
			h.r.setFocusLocked(h.entry.component)
		}
	}
	h.r.mu.Unlock()
	h.r.RequestRender(false)
}

// IsHidden reports whether the overlay is temporarily hidden.
func (h *OverlayHandle) IsHidden() bool {
	return h.entry.hidden
}

type overlayEntry struct {
	component Component
	options   *OverlayOptions
	preFocus  Component
	hidden    bool
}

// ShowOverlay displays a component as a modal overlay on top of the base
// content. If NoFocus is set in opts, focus is not changed.
func (r *Renderer) ShowOverlay(comp Component, opts *OverlayOptions) *OverlayHandle {
	r.mu.Lock()
	entry := &overlayEntry{
		component: comp,
		options:   opts,
		preFocus:  r.focused,
	}
	r.overlays = append(r.overlays, entry)
	noFocus := opts != nil && opts.NoFocus
	if !noFocus {
		r.setFocusLocked(comp)
	}
	r.mu.Unlock()
	r.term.HideCursor()
	r.RequestRender(false)
	return &OverlayHandle{r: r, entry: entry}
}

// HideOverlay removes the topmost overlay and restores previous focus.
func (r *Renderer) HideOverlay() {
	r.mu.Lock()
	if len(r.overlays) == 0 {
		r.mu.Unlock()
		return
	}
	entry := r.overlays[len(r.overlays)-1]
	r.overlays = r.overlays[:len(r.overlays)-1]
	r.restoreFocusFromOverlayLocked(entry)
	noOverlays := len(r.overlays) == 0
	r.mu.Unlock()
	if noOverlays {
		r.term.HideCursor()
	}
	r.RequestRender(false)
}

// HasOverlay reports whether any overlay is currently visible.
func (r *Renderer) HasOverlay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.overlays {
		if !o.hidden {
			return true
		}
	}
	return false
}

func (r *Renderer) removeOverlay(entry *overlayEntry) {
	r.mu.Lock()
	found := false
	for i, e := range r.overlays {
		if e == entry {
			r.overlays = append(r.overlays[:i], r.overlays[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return
	}
	r.restoreFocusFromOverlayLocked(entry)
	noOverlays := len(r.overlays) == 0
	r.mu.Unlock()
	if noOverlays {
		r.term.HideCursor()
	}
	r.RequestRender(false)
}

func (r *Renderer) topmostVisibleOverlayLocked() *overlayEntry {
	for i := len(r.overlays) - 1; i >= 0; i-- {
		if !r.overlays[i].hidden {
			return r.overlays[i]
		}
	}
	return nil
}

// restoreFocusFromOverlayLocked updates focus when an overlay loses
// visibility. If the overlay had focus, focus moves to the next visible
// overlay or falls back to the overlay's preFocus. Caller must hold r.mu.
func (r *Renderer) restoreFocusFromOverlayLocked(entry *overlayEntry) {
	if r.focused != entry.component {
		return
	}
	if top := r.topmostVisibleOverlayLocked(); top != nil {
		r.setFocusLocked(top.component)
	} else {
		r.setFocusLocked(entry.preFocus)
	}
}

// compositeOverlays splices each visible overlay's rendered lines into the
// base content by column-level line surgery, extending the working area
// when an overlay reaches past it. Returns the composited lines and the
// number of visible overlays.
func (r *Renderer) compositeOverlays(lines []string, overlays []*overlayEntry, termW, termH, maxLines int) ([]string, int) {
	contentH := len(lines)
	result := make([]string, contentH)
	copy(result, lines)

	r.mu.Lock()
	logger := r.logger
	r.mu.Unlock()
	b := frameBuilder{logger: logger}

	type rendered struct {
		lines           []string
		row, col, w     int
		contentRelative bool
	}
	var items []rendered
	visible := 0
	minNeeded := len(result)

	for _, e := range overlays {
		if e.hidden {
			continue
		}
		visible++
		cr := e.options != nil && e.options.ContentRelative
		refH := termH
		if cr {
			refH = contentH
		}
		// First pass resolves width and maxHeight (height-independent).
		w, _, _, maxH, maxHSet := resolveOverlayLayout(e.options, 0, termW, refH)
		oLines := b.flatten(e.component, w, nil)
		// Second pass resolves placement with the actual height, clamping
		// if needed (row may shift for bottom-anchored overlays).
		var row, col int
		_, row, col, maxH, maxHSet = resolveOverlayLayout(e.options, len(oLines), termW, refH)
		if maxHSet && len(oLines) > maxH {
			oLines = oLines[:maxH]
			_, row, col, _, _ = resolveOverlayLayout(e.options, len(oLines), termW, refH)
		}
		items = append(items, rendered{
			lines:           oLines,
			row:             row,
			col:             col,
			w:               w,
			contentRelative: cr,
		})
		if row+len(oLines) > minNeeded {
			minNeeded = row + len(oLines)
		}
	}

	// Overlays can extend the working height past the content.
	workingH := max(maxLines, minNeeded)
	for len(result) < workingH {
		result = append(result, "")
	}

	viewportStart := max(0, workingH-termH)

	for _, item := range items {
		for i, ol := range item.lines {
			idx := item.row + i
			if !item.contentRelative {
				idx += viewportStart
			}
			if idx >= 0 && idx < len(result) {
				result[idx] = CompositeLineAt(result[idx], ol, item.col, item.w, termW)
			}
		}
	}

	return result, visible
}

// resolveOverlayLayout determines the width, row, col, and maxHeight for an
// overlay given its options and the reference dimensions.
func resolveOverlayLayout(opts *OverlayOptions, overlayHeight, termW, termH int) (width, row, col int, maxH int, maxHSet bool) {
	if opts == nil {
		opts = &OverlayOptions{}
	}

	mTop := max(0, opts.Margin.Top)
	mRight := max(0, opts.Margin.Right)
	mBottom := max(0, opts.Margin.Bottom)
	mLeft := max(0, opts.Margin.Left)

	availW := max(1, termW-mLeft-mRight)
	availH := max(1, termH-mTop-mBottom)

	if w, ok := opts.Width.resolve(termW); ok {
		width = w
	} else {
		width = min(80, availW)
	}
	if opts.MinWidth > 0 && width < opts.MinWidth {
		width = opts.MinWidth
	}
	width = clamp(width, 1, availW)

	if mh, ok := opts.MaxHeight.resolve(termH); ok {
		maxH = clamp(mh, 1, availH)
		maxHSet = true
	}

	effectiveH := overlayHeight
	if maxHSet && effectiveH > maxH {
		effectiveH = maxH
	}

	if opts.Row.isSet {
		if opts.Row.isPct {
			maxRow := max(0, availH-effectiveH)
			row = mTop + int(float64(maxRow)*opts.Row.pct/100)
		} else {
			row = opts.Row.abs
		}
	} else {
		row = anchorRow(opts.Anchor, effectiveH, availH, mTop)
	}

	if opts.Col.isSet {
		if opts.Col.isPct {
			maxCol := max(0, availW-width)
			col = mLeft + int(float64(maxCol)*opts.Col.pct/100)
		} else {
			col = opts.Col.abs
		}
	} else {
		col = anchorCol(opts.Anchor, width, availW, mLeft)
	}

	row += opts.OffsetY
	col += opts.OffsetX

	row = clamp(row, mTop, max(mTop, termH-mBottom-effectiveH))
	col = clamp(col, mLeft, max(mLeft, termW-mRight-width))

	return
}

func anchorRow(a OverlayAnchor, h, availH, mTop int) int {
	switch a {
	case AnchorTopLeft, AnchorTopCenter, AnchorTopRight:
		return mTop
	case AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight:
		return mTop + availH - h
	default: // center variants
		return mTop + (availH-h)/2
	}
}

func anchorCol(a OverlayAnchor, w, availW, mLeft int) int {
	switch a {
	case AnchorTopLeft, AnchorLeftCenter, AnchorBottomLeft:
		return mLeft
	case AnchorTopRight, AnchorRightCenter, AnchorBottomRight:
		return mLeft + availW - w
	default: // center variants
		return mLeft + (availW-w)/2
	}
}
