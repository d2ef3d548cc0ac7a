package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStyles struct{}

func (fakeStyles) StatusStyle() tcell.Style      { return tcell.StyleDefault }
func (fakeStyles) DefaultStyle() tcell.Style     { return tcell.StyleDefault }
func (fakeStyles) CurrentLineStyle() tcell.Style { return tcell.StyleDefault }

func newTestView(t *testing.T, root string) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 10)
	v := New(screen, fakeStyles{}, root)
	t.Cleanup(func() { v.Close() })
	return v, screen
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestActivateListsDirectoryEntriesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "zeta.txt", "alpha.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "mdir"), 0o755))

	v, _ := newTestView(t, dir)
	v.Activate()

	require.Len(t, v.entries, 3)
	assert.Equal(t, []string{"alpha.txt", "mdir" + string(filepath.Separator), "zeta.txt"}, v.entries)
	assert.Equal(t, 0, v.cursor)
}

func TestHandleKeyEnterReportsSelectedPath(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	v, _ := newTestView(t, dir)
	v.Activate()

	done := v.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	assert.True(t, done)

	path, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a.txt"), path)

	// Selected clears after being read.
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestHandleKeyEscReturnsDoneWithoutSelection(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")

	v, _ := newTestView(t, dir)
	v.Activate()

	done := v.HandleKey(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	assert.True(t, done)

	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestHandleKeyUpDownClampsCursor(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	v, _ := newTestView(t, dir)
	v.Activate()

	v.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 0, v.cursor)

	v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	assert.Equal(t, 1, v.cursor)

	v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	assert.Equal(t, 1, v.cursor, "cursor must not advance past the last entry")
}

func TestUpdateScreenDoesNotPanicOnEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	v, _ := newTestView(t, dir)
	v.Activate()
	v.UpdateScreen()
}
