// Package scanline implements a differential renderer for line-oriented
// terminal UIs on the normal scrollback buffer (no alternate screen). A
// component tree produces display lines each frame; the renderer diffs the
// new frame against what it last wrote and surgically rewrites only the
// changed lines via relative cursor movement. Whenever the cheap path cannot
// be proven safe (resize, drift after the content grew and shrank again) it
// falls back to a full clear+repaint, which is always correct.
// Synchronized output brackets every write to prevent flicker.
package scanline

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Terminal abstracts terminal I/O so the renderer can be driven against a
// fake terminal in tests. The renderer calls these operations and nothing
// else; it never opens a device or inspects capability strings.
type Terminal interface {
	// Start puts the terminal into raw mode and begins listening for input
	// and resize events. onInput receives raw bytes from stdin. onResize is
	// called when the terminal dimensions change.
	Start(onInput func([]byte), onResize func()) error

	// Stop restores the terminal to its original state.
	Stop()

	// Write sends raw bytes to the terminal.
	Write(p []byte)

	// WriteString sends a string to the terminal.
	WriteString(s string)

	// Columns returns the current terminal width.
	Columns() int

	// Rows returns the current terminal height.
	Rows() int

	// MoveCursorBy moves the cursor deltaLines rows down (negative = up).
	MoveCursorBy(deltaLines int)

	// ClearLine erases the entire line under the cursor.
	ClearLine()

	// ClearFromCursor erases from the cursor to the end of the screen.
	ClearFromCursor()

	// ClearScreen erases the visible screen and the scrollback buffer and
	// homes the cursor, as a single escape group.
	ClearScreen()

	// HideCursor hides the hardware cursor.
	HideCursor()

	// ShowCursor shows the hardware cursor.
	ShowCursor()

	// EnterAltScreen switches to the alternate screen buffer.
	EnterAltScreen()

	// LeaveAltScreen switches back to the normal screen buffer.
	LeaveAltScreen()

	// SetTitle sets the terminal window title.
	SetTitle(title string)
}

// ProcessTerminal is a Terminal backed by os.Stdin / os.Stdout.
// Terminal dimensions are cached and refreshed on SIGWINCH to avoid
// repeated ioctl syscalls during rendering.
type ProcessTerminal struct {
	// OnWriteError, when non-nil, receives write failures (e.g. broken
	// pipe). Writes are never retried; the host decides whether to shut
	// down. Must be set before Start.
	OnWriteError func(error)

	origTermios *unix.Termios
	onInput     func([]byte)
	onResize    func()
	sigCh       chan os.Signal
	stopCancel  context.CancelFunc
	stopCtx     context.Context

	sizeMu sync.RWMutex
	cols   int
	rows   int
}

func NewProcessTerminal() *ProcessTerminal {
	return &ProcessTerminal{}
}

func (t *ProcessTerminal) Start(onInput func([]byte), onResize func()) error {
	t.onInput = onInput
	t.onResize = onResize
	t.stopCtx, t.stopCancel = context.WithCancel(context.Background())

	// Save and set raw mode.
	fd := int(os.Stdin.Fd())
	orig, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	t.origTermios = orig

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return fmt.Errorf("set raw: %w", err)
	}

	// Cache initial terminal size.
	t.refreshSize()

	// Enable bracketed paste.
	t.WriteString("\x1b[?2004h")

	// Read stdin in a goroutine.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				// Copy so the callback can keep the slice.
				data := make([]byte, n)
				copy(data, buf[:n])
				t.onInput(data)
			}
			if err != nil {
				return
			}
		}
	}()

	// Listen for SIGWINCH.
	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go func() {
		for {
			select {
			case <-t.sigCh:
				t.refreshSize()
				if t.onResize != nil {
					t.onResize()
				}
			case <-t.stopCtx.Done():
				return
			}
		}
	}()

	return nil
}

func (t *ProcessTerminal) Stop() {
	// Disable bracketed paste.
	t.WriteString("\x1b[?2004l")

	if t.stopCancel != nil {
		t.stopCancel()
	}
	if t.sigCh != nil {
		signal.Stop(t.sigCh)
	}
	if t.origTermios != nil {
		fd := int(os.Stdin.Fd())
		_ = unix.IoctlSetTermios(fd, ioctlWriteTermios, t.origTermios)
	}
}

func (t *ProcessTerminal) Write(p []byte) {
	if _, err := os.Stdout.Write(p); err != nil && t.OnWriteError != nil {
		t.OnWriteError(err)
	}
}

func (t *ProcessTerminal) WriteString(s string) {
	if _, err := os.Stdout.WriteString(s); err != nil && t.OnWriteError != nil {
		t.OnWriteError(err)
	}
}

func (t *ProcessTerminal) Columns() int {
	t.sizeMu.RLock()
	c := t.cols
	t.sizeMu.RUnlock()
	if c == 0 {
		return 80
	}
	return c
}

func (t *ProcessTerminal) Rows() int {
	t.sizeMu.RLock()
	r := t.rows
	t.sizeMu.RUnlock()
	if r == 0 {
		return 24
	}
	return r
}

// refreshSize queries the kernel for current terminal dimensions and caches
// them. Called once at Start and on every SIGWINCH.
func (t *ProcessTerminal) refreshSize() {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return
	}
	t.sizeMu.Lock()
	if ws.Col > 0 {
		t.cols = int(ws.Col)
	}
	if ws.Row > 0 {
		t.rows = int(ws.Row)
	}
	t.sizeMu.Unlock()
}

func (t *ProcessTerminal) MoveCursorBy(deltaLines int) {
	if deltaLines > 0 {
		t.WriteString("\x1b[" + strconv.Itoa(deltaLines) + "B")
	} else if deltaLines < 0 {
		t.WriteString("\x1b[" + strconv.Itoa(-deltaLines) + "A")
	}
}

func (t *ProcessTerminal) ClearLine() {
	t.WriteString("\x1b[2K")
}

func (t *ProcessTerminal) ClearFromCursor() {
	t.WriteString("\x1b[0J")
}

func (t *ProcessTerminal) ClearScreen() {
	t.WriteString("\x1b[3J\x1b[2J\x1b[H")
}

func (t *ProcessTerminal) HideCursor() {
	t.WriteString("\x1b[?25l")
}

func (t *ProcessTerminal) ShowCursor() {
	t.WriteString("\x1b[?25h")
}

func (t *ProcessTerminal) EnterAltScreen() {
	t.WriteString("\x1b[?1049h")
}

func (t *ProcessTerminal) LeaveAltScreen() {
	t.WriteString("\x1b[?1049l")
}

func (t *ProcessTerminal) SetTitle(title string) {
	t.WriteString("\x1b]2;" + title + "\x07")
}
