package buffer

// Scope is the minimum redraw region an EditHint describes.
type Scope int

const (
	// ScopeNone means no redraw is needed — a cursor-only change.
	ScopeNone Scope = iota
	// ScopeLine means the single changed line must be redrawn in full.
	ScopeLine
	// ScopeLinePastPoint means redraw from StartCol to end of line on
	// StartRow only.
	ScopeLinePastPoint
	// ScopeScreenPastPoint means redraw from (StartRow, StartCol) to the
	// end of the viewport.
	ScopeScreenPastPoint
)

// Hint is produced by every buffer mutation and describes the minimum area
// that must repaint (spec.md §3's EditHint, §9's "edit hints as algebra").
type Hint struct {
	Scope    Scope
	StartRow int
	StartCol int
}

// noHint is the shared no-op hint, returned by rejected mutations.
var noHint = Hint{Scope: ScopeNone}

// Combine returns the widest-scoped hint of h and other, for folding the
// hints of several mutations into one repaint region (spec.md §9); no
// caller in this module combines hints. Wider is defined
// by the Scope ordering above; ScreenPastPoint dominates, then
// LinePastPoint, then Line, then None. When scopes tie, the earlier
// StartRow wins so the combined region still covers both hints.
func (h Hint) Combine(other Hint) Hint {
	if other.Scope > h.Scope {
		return other
	}
	if h.Scope > other.Scope {
		return h
	}
	if h.Scope == ScopeNone {
		return h
	}
	combined := h
	if other.StartRow < combined.StartRow {
		combined.StartRow = other.StartRow
		combined.StartCol = other.StartCol
	} else if other.StartRow == combined.StartRow && other.StartCol < combined.StartCol {
		combined.StartCol = other.StartCol
	}
	return combined
}
