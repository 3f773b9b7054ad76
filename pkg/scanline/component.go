package scanline

import (
	"strings"
	"sync"
)

// CursorMarker is a zero-width APC sequence components embed in their
// rendered output to indicate where the hardware cursor belongs. The
// renderer strips it while assembling the frame and positions the real
// cursor at that spot. Terminals ignore the sequence, and width helpers
// treat it as zero columns.
const CursorMarker = "\x1b_sl:c\x07"

// Component is a node in the UI tree. Render produces the component's
// display lines for the given width; no line may exceed width visible
// columns (truncation or wrapping is the component's per-line policy).
// Invalidate clears any memoized output so the next Render recomputes.
type Component interface {
	Render(width int) []string
	Invalidate()
}

// InputHandler is implemented by components that process keyboard input
// when focused. Data is raw bytes from the terminal in raw mode.
type InputHandler interface {
	HandleInput(data []byte)
}

// Focusable is implemented by components that want to know when they gain
// or lose focus (e.g. to show a cursor marker).
type Focusable interface {
	SetFocused(focused bool)
}

// Container holds an ordered list of child components and renders them as
// a vertical stack: its lines are the concatenation of its children's
// lines in child order. A container exclusively owns its children.
type Container struct {
	children []Component
}

// AddChild appends a component to the container.
func (c *Container) AddChild(comp Component) {
	c.children = append(c.children, comp)
}

// RemoveChild removes a component from the container.
func (c *Container) RemoveChild(comp Component) {
	for i, ch := range c.children {
		if ch == comp {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// Children returns the container's children in render order.
func (c *Container) Children() []Component {
	return c.children
}

// Invalidate propagates to every child.
func (c *Container) Invalidate() {
	for _, ch := range c.children {
		ch.Invalidate()
	}
}

// Render flattens the subtree. The renderer itself uses a frame builder
// with its own logger instead, but containers nested inside other
// components, and overlays, render through here.
func (c *Container) Render(width int) []string {
	b := frameBuilder{}
	return b.flatten(c, width, nil)
}

// Slot holds a single swappable child. Swapping is safe against a
// concurrent render, so goroutines can mount and unmount components (a
// spinner, a progress view) without touching the tree structure.
type Slot struct {
	mu   sync.Mutex
	comp Component
}

// NewSlot creates a Slot holding comp, which may be nil.
func NewSlot(comp Component) *Slot {
	return &Slot{comp: comp}
}

// Set replaces the slot's child. Nil empties the slot.
func (s *Slot) Set(comp Component) {
	s.mu.Lock()
	s.comp = comp
	s.mu.Unlock()
}

// Get returns the current child, or nil.
func (s *Slot) Get() Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comp
}

func (s *Slot) Invalidate() {
	if c := s.Get(); c != nil {
		c.Invalidate()
	}
}

func (s *Slot) Render(width int) []string {
	c := s.Get()
	if c == nil {
		return nil
	}
	return c.Render(width)
}

// WrapMode selects how a Text component handles lines wider than the
// available width.
type WrapMode int

const (
	// TruncateLines cuts long lines at the width, ending with Ellipsis.
	TruncateLines WrapMode = iota
	// WrapLines hard-wraps long lines onto continuation lines.
	WrapLines
)

// Text is a leaf component rendering static text. Output is memoized per
// width until the content changes or Invalidate is called.
type Text struct {
	// Mode selects truncation (default) or wrapping for long lines.
	Mode WrapMode
	// Style, if non-nil, wraps each source line before width handling
	// (e.g. a lipgloss style's Render).
	Style func(string) string

	content string
	lines   []string
	width   int
	dirty   bool
}

// NewText creates a Text component with the given content.
func NewText(content string) *Text {
	return &Text{content: content, dirty: true}
}

// SetContent replaces the displayed text.
func (t *Text) SetContent(content string) {
	t.content = content
	t.dirty = true
}

// Content returns the current text.
func (t *Text) Content() string {
	return t.content
}

func (t *Text) Invalidate() {
	t.dirty = true
}

func (t *Text) Render(width int) []string {
	if !t.dirty && t.width == width && t.lines != nil {
		return t.lines
	}
	var out []string
	for _, line := range strings.Split(t.content, "\n") {
		line = ExpandTabs(line, 8)
		if t.Style != nil {
			line = t.Style(line)
		}
		switch {
		case t.Mode == WrapLines && VisibleWidth(line) > width:
			out = append(out, Wrap(line, width)...)
		case VisibleWidth(line) > width:
			out = append(out, Truncate(line, width, Ellipsis))
		default:
			out = append(out, line)
		}
	}
	t.lines = out
	t.width = width
	t.dirty = false
	return out
}
