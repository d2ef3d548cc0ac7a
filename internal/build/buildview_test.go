package build

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStyles struct{}

func (fakeStyles) StatusStyle() tcell.Style  { return tcell.StyleDefault }
func (fakeStyles) DefaultStyle() tcell.Style { return tcell.StyleDefault }

func waitUntilFinished(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.Running() {
		if time.Now().After(deadline) {
			t.Fatal("runner did not finish in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunnerStartCapturesOutputLines(t *testing.T) {
	r := NewRunner("/bin/echo", "hello", "from", "build")
	require.NoError(t, r.Start())
	waitUntilFinished(t, r)

	require.Len(t, r.Lines(), 1)
	assert.Equal(t, "hello from build", r.Lines()[0])
	assert.NoError(t, r.ExitError())
}

func TestRunnerExitErrorOnNonZeroStatus(t *testing.T) {
	r := NewRunner("/bin/sh", "-c", "exit 3")
	require.NoError(t, r.Start())
	waitUntilFinished(t, r)

	assert.Error(t, r.ExitError())
}

func TestRunnerStartPropagatesSpawnError(t *testing.T) {
	r := NewRunner("/no/such/binary")
	err := r.Start()
	assert.Error(t, err)
	assert.False(t, r.Running())
}

func newTestView(t *testing.T) (*View, *Runner, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 10)
	r := NewRunner("/bin/echo", "build output")
	v := New(screen, fakeStyles{}, r)
	return v, r, screen
}

func TestActivateStartsTheRunner(t *testing.T) {
	v, r, _ := newTestView(t)
	v.Activate()
	waitUntilFinished(t, r)
	assert.Equal(t, []string{"build output"}, r.Lines())
}

func TestHandleKeyEscReturnsDone(t *testing.T) {
	v, _, _ := newTestView(t)
	done := v.HandleKey(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	assert.True(t, done)
}

func TestHandleKeyUpClampsAtZero(t *testing.T) {
	v, _, _ := newTestView(t)
	v.HandleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 0, v.top)
}

func TestUpdateScreenDoesNotPanic(t *testing.T) {
	v, r, _ := newTestView(t)
	v.Activate()
	waitUntilFinished(t, r)
	v.UpdateScreen()
}
