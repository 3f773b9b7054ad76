package scanline

// lineRange is an inclusive range of line indexes within the new frame.
type lineRange struct {
	start, end int
}

// basis is the positional context the previous frame was committed under.
// maxLines is the largest line count rendered since the last full redraw,
// the reference the cursor-relative bookkeeping is anchored to. prevAfterFull
// records whether the previous frame was produced immediately after a full
// redraw, which is the only case where a shrink below maxLines is known to
// have been reconciled from an absolute cursor position.
type basis struct {
	maxLines      int
	prevAfterFull bool
}

// DiffResult classifies every line of the new frame against the previous
// tracked frame.
type DiffResult struct {
	// FirstChanged / LastChanged bound the differing region across both
	// frames, or -1 when the frames are identical.
	FirstChanged int
	LastChanged  int

	// Ranges are contiguous runs of in-place rewrites within the
	// min(prevLen, newLen) overlap.
	Ranges []lineRange

	// Appended is the number of new-frame lines past the previous length;
	// Removed is the number of previous-frame lines past the new length.
	// At most one of the two is non-zero.
	Appended int
	Removed  int

	// Repainted is the number of lines an incremental patch would write.
	Repainted int

	// BasisValid reports whether cursor-relative positional comparison
	// between the two frames can be trusted.
	BasisValid bool

	// DimsChanged reports whether terminal dimensions differ between the
	// two frames' bases.
	DimsChanged bool
}

// diffFrames compares the previous tracked frame against the desired frame
// line by line over their overlap, classifying the rest as appended or
// removed.
func diffFrames(prev, next Frame, bs basis) DiffResult {
	d := DiffResult{FirstChanged: -1, LastChanged: -1}
	d.DimsChanged = prev.Width != next.Width || prev.Height != next.Height

	// Positional comparison can drift once the rendered region has grown
	// past the current line count and shrunk again: the tracked line count
	// no longer proves which physical row a relative movement lands on.
	// Only a frame committed right after a full redraw re-anchors it.
	d.BasisValid = prev.Width == next.Width
	if len(next.Lines) < bs.maxLines && !bs.prevAfterFull {
		d.BasisValid = false
	}

	overlap := min(len(prev.Lines), len(next.Lines))
	for i := 0; i < overlap; i++ {
		if prev.Lines[i] == next.Lines[i] {
			continue
		}
		if d.FirstChanged == -1 {
			d.FirstChanged = i
		}
		d.LastChanged = i
		if n := len(d.Ranges); n > 0 && d.Ranges[n-1].end == i-1 {
			d.Ranges[n-1].end = i
		} else {
			d.Ranges = append(d.Ranges, lineRange{start: i, end: i})
		}
		d.Repainted++
	}

	if len(next.Lines) > len(prev.Lines) {
		d.Appended = len(next.Lines) - len(prev.Lines)
		if d.FirstChanged == -1 {
			d.FirstChanged = len(prev.Lines)
		}
		d.LastChanged = len(next.Lines) - 1
		d.Repainted += d.Appended
	} else if len(prev.Lines) > len(next.Lines) {
		d.Removed = len(prev.Lines) - len(next.Lines)
		if d.FirstChanged == -1 {
			d.FirstChanged = len(next.Lines)
		}
		d.LastChanged = len(prev.Lines) - 1
	}

	return d
}

// Decision is the redraw strategy chosen for a frame.
type Decision int

const (
	// Incremental rewrites only the changed line ranges via relative
	// cursor movement. Cheap, but only correct when the basis holds.
	Incremental Decision = iota
	// FullRedraw clears the screen and rewrites everything. Always
	// correct; the fallback whenever the patch cannot be proven safe.
	FullRedraw
)

// decide classifies a diff as safe-for-incremental or not. The rules fail
// toward FullRedraw whenever a precondition is merely unprovable: checking
// patch safety is strictly cheaper than emitting the patch, and the full
// path restores correctness unconditionally.
func decide(d DiffResult, next Frame, fullRedrawFraction float64) Decision {
	if !d.BasisValid {
		return FullRedraw
	}
	if d.DimsChanged {
		return FullRedraw
	}
	// Efficiency heuristic, not a correctness rule: past a certain churn a
	// single repaint writes fewer bytes than many cursor hops.
	if fullRedrawFraction > 0 && len(next.Lines) > 0 {
		if float64(d.Repainted)/float64(len(next.Lines)) > fullRedrawFraction {
			return FullRedraw
		}
	}
	return Incremental
}

// patchSafe reports whether the incremental patch is physically emittable:
// every rewrite target must be inside the physical viewport (rows above it
// have scrolled into history and cannot be reached by relative movement),
// and a removed tail filling the screen cannot be blanked row by row.
func patchSafe(d DiffResult, prev Frame, bs basis, height int) bool {
	if d.FirstChanged == -1 {
		return true
	}
	// The physical scroll position is set by the maximum extent rendered
	// since the last full redraw, not the previous frame's length: an
	// incremental shrink blanks rows in place without scrolling the screen
	// back up.
	viewportTop := max(0, max(len(prev.Lines), bs.maxLines)-height)
	if len(d.Ranges) > 0 && d.Ranges[0].start < viewportTop {
		return false
	}
	// Blanking a removed tail re-anchors at the last remaining row; a tail
	// of height rows or more puts that row above the reachable viewport.
	if d.Removed >= height {
		return false
	}
	return true
}
