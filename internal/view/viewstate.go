package view

// ViewState names the portion of viewport position that survives switching
// away from a buffer and back (spec.md §4.2's setBuffer/persisted view).
// EditView.SetBuffer keeps that pair on the buffer itself through
// Buffer.SetPersistedView; nothing in this module constructs a ViewState.
type ViewState struct {
	FirstVisibleRow int
	FirstVisibleCol int
}
