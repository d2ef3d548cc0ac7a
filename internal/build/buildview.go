// Package build implements the BUILDVIEW modal and its Runner: the
// configured build command is run attached to a pty so its own ANSI
// diagnostics render correctly, and its output streams into a scrollable
// pane (SPEC_FULL.md's DOMAIN STACK note on creack/pty). Grounded in the
// teacher's message-area append pattern in editor.go, generalized from a
// one-line status message to a captured, scrollable output buffer.
package build

import (
	"bufio"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"
)

// StyleSource is the subset of view.StyleSource the build view needs.
type StyleSource interface {
	StatusStyle() tcell.Style
	DefaultStyle() tcell.Style
}

// Runner runs one build command attached to a pty, collecting output lines
// in a mutex-guarded slice that the view snapshots with Lines on each
// redraw.
type Runner struct {
	command string
	args    []string

	mu      sync.Mutex
	lines   []string
	running bool
	exitErr error
}

// NewRunner creates a runner for command with args, not yet started.
func NewRunner(command string, args ...string) *Runner {
	return &Runner{command: command, args: args}
}

// Start launches the build command attached to a pty and begins
// collecting its output in the background. It is safe to call again once
// the previous run has finished.
func (r *Runner) Start() error {
	r.mu.Lock()
	r.lines = nil
	r.running = true
	r.exitErr = nil
	r.mu.Unlock()

	cmd := exec.Command(r.command, r.args...)
	f, err := pty.Start(cmd)
	if err != nil {
		r.mu.Lock()
		r.running = false
		r.exitErr = err
		r.mu.Unlock()
		return err
	}

	go func() {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			r.mu.Lock()
			r.lines = append(r.lines, scanner.Text())
			r.mu.Unlock()
		}
		waitErr := cmd.Wait()
		f.Close()
		r.mu.Lock()
		r.running = false
		r.exitErr = waitErr
		r.mu.Unlock()
	}()
	return nil
}

// Lines returns a snapshot of the output collected so far.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Running reports whether the build is still in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// ExitError reports the build command's exit error, if any, once finished.
func (r *Runner) ExitError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitErr
}

// View renders a Runner's captured output as a scrollable pane.
type View struct {
	screen tcell.Screen
	styles StyleSource
	runner *Runner
	top    int
}

// New creates a build view over runner.
func New(screen tcell.Screen, styles StyleSource, runner *Runner) *View {
	return &View{screen: screen, styles: styles, runner: runner}
}

// Activate (re)starts the build when BUILDVIEW is entered, satisfying
// mode.ModalView.
func (v *View) Activate() {
	v.top = 0
	_ = v.runner.Start()
}

// HandleKey scrolls the output pane; esc returns to EDIT.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEsc:
		return true
	case tcell.KeyUp:
		if v.top > 0 {
			v.top--
		}
	case tcell.KeyDown:
		v.top++
	}
	return false
}

// UpdateScreen redraws the captured build output.
func (v *View) UpdateScreen() {
	w, h := v.screen.Size()
	lines := v.runner.Lines()
	if v.top > len(lines) {
		v.top = len(lines)
	}

	row := 0
	for i := v.top; i < len(lines) && row < h-1; i++ {
		x := 0
		for _, r := range lines[i] {
			if x >= w {
				break
			}
			v.screen.SetContent(x, row, r, nil, v.styles.DefaultStyle())
			x++
		}
		for ; x < w; x++ {
			v.screen.SetContent(x, row, ' ', nil, v.styles.DefaultStyle())
		}
		row++
	}
	for ; row < h-1; row++ {
		for x := 0; x < w; x++ {
			v.screen.SetContent(x, row, ' ', nil, v.styles.DefaultStyle())
		}
	}

	label := "-- build: running --"
	if !v.runner.Running() {
		if err := v.runner.ExitError(); err != nil {
			label = "-- build: failed (" + err.Error() + ") --"
		} else {
			label = "-- build: finished --"
		}
	}
	x := 0
	for _, r := range label {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, v.styles.StatusStyle())
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-1, '=', nil, v.styles.StatusStyle())
	}
}
