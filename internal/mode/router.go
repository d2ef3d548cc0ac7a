// Package mode implements the modal state machine that routes keyboard
// input between the editing surface, the command line, and the full-screen
// project/help/build views (spec.md §4.5). Grounded in editor.go's
// handleKeyEvent/executeCommand split in the teacher repo, generalized from
// a single fixed mode switch to a five-state router with a two-key C-X
// prefix and hint-mode command line.
package mode

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tvernon-cm/cm/internal/buffer"
	"github.com/tvernon-cm/cm/internal/complete"
	"github.com/tvernon-cm/cm/internal/view"
)

// State names one of the five modal surfaces.
type State int

const (
	StateEdit State = iota
	StateCommandLine
	StateProjectView
	StateHelpView
	StateBuildView
)

// ModalView is satisfied by the project/help/build full-screen views: each
// owns its own key handling and reports whether a key should return control
// to EDIT mode.
type ModalView interface {
	Activate()
	HandleKey(ev *tcell.EventKey) (done bool)
	UpdateScreen()
}

// Router owns all modal state and is the single entry point the main loop
// calls per input event (spec.md §5's single-threaded event loop).
type Router struct {
	list      *buffer.List
	editView  *view.EditView
	cmdline   *view.CommandLineView
	completer *complete.Table

	project ModalView
	help    ModalView
	build   ModalView

	state         State
	pendingCtrlX  bool
	hintMode      bool
	killRing      string
	quitRequested bool
	lastMessage   string
}

// NewRouter assembles a router over the given buffer list and views. project,
// help, and build may be nil if those surfaces are not wired yet.
func NewRouter(list *buffer.List, editView *view.EditView, cmdline *view.CommandLineView, project, help, build ModalView) *Router {
	r := &Router{
		list:     list,
		editView: editView,
		cmdline:  cmdline,
		project:  project,
		help:     help,
		build:    build,
		state:    StateEdit,
	}
	r.completer = r.buildCommandTable()
	return r
}

// State reports the router's current modal surface.
func (r *Router) State() State { return r.state }

// QuitRequested reports whether a quit command has been issued.
func (r *Router) QuitRequested() bool { return r.quitRequested }

// LastMessage returns the most recent command result message, if any, for
// display on the command line.
func (r *Router) LastMessage() string { return r.lastMessage }

func (r *Router) switchToBuffer(b *buffer.Buffer) {
	if b == nil {
		return
	}
	r.editView.SetBuffer(b)
	r.editView.Reframe()
}

// HandleKey is the router's single entry point: it dispatches the event to
// whichever modal surface is active, possibly transitioning state.
func (r *Router) HandleKey(ev *tcell.EventKey) {
	if r.pendingCtrlX {
		r.pendingCtrlX = false
		r.handleCtrlXSecondKey(ev)
		return
	}

	switch r.state {
	case StateEdit:
		r.handleEditKey(ev)
	case StateCommandLine:
		r.handleCommandLineKey(ev)
	case StateProjectView:
		r.handleModalKey(ev, r.project)
		r.openProjectSelection()
	case StateHelpView:
		r.handleModalKey(ev, r.help)
	case StateBuildView:
		r.handleModalKey(ev, r.build)
	}
}

func (r *Router) handleModalKey(ev *tcell.EventKey, modal ModalView) {
	if modal == nil {
		r.state = StateEdit
		return
	}
	if done := modal.HandleKey(ev); done {
		r.state = StateEdit
	}
}

// fileSelector is implemented by project.View: it reports the path chosen
// with enter, if any, so the router can open it the same way the load
// command does.
type fileSelector interface {
	Selected() (string, bool)
}

// openProjectSelection opens whatever path PROJECTVIEW's last key handled
// selected, mirroring the load command (spec.md's PROJECTVIEW entry).
func (r *Router) openProjectSelection() {
	selector, ok := r.project.(fileSelector)
	if !ok {
		return
	}
	path, ok := selector.Selected()
	if !ok {
		return
	}
	if err := r.cmdLoad(path); err != nil {
		r.lastMessage = err.Error()
	}
}

// handleEditKey intercepts the router-level control keys named in spec.md
// §4.5 before handing the event to the active EditView.
func (r *Router) handleEditKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyCtrlX:
		r.pendingCtrlX = true
		return
	case ev.Key() == tcell.KeyCtrlP:
		r.enterModal(StateProjectView, r.project)
		return
	case ev.Key() == tcell.KeyCtrlUnderscore:
		r.enterModal(StateHelpView, r.help)
		return
	case ev.Key() == tcell.KeyCtrlB:
		r.enterModal(StateBuildView, r.build)
		return
	case ev.Key() == tcell.KeyCtrlY:
		if r.killRing != "" {
			if b := r.list.Current(); b != nil {
				b.Paste(r.killRing)
			}
		}
		return
	case ev.Key() == tcell.KeyCtrlW:
		if b := r.list.Current(); b != nil {
			text, _ := b.CutToMark()
			if text != "" {
				r.killRing = text
			}
		}
		return
	}

	result := r.editView.HandleKey(ev)
	switch result {
	case view.ResultEnterCommand:
		r.enterCommandLine()
	case view.ResultQuit:
		r.quitRequested = true
	}
}

func (r *Router) enterModal(state State, modal ModalView) {
	if modal == nil {
		return
	}
	r.state = state
	modal.Activate()
}

// enterCommandLine starts COMMANDLINE mode in hint mode: the very next
// keystroke decides whether this is an immediate single-key hint (like
// <space> to set the mark, mirroring the EditView's own C-Space binding) or
// the start of a typed command name (spec.md §4.5).
func (r *Router) enterCommandLine() {
	r.state = StateCommandLine
	r.hintMode = true
	r.cmdline.Reset("")
}

// handleCommandLineKey processes one keystroke while COMMANDLINE is active.
func (r *Router) handleCommandLineKey(ev *tcell.EventKey) {
	if r.hintMode {
		r.hintMode = false
		if r.handleImmediateHint(ev) {
			r.state = StateEdit
			return
		}
	}

	switch ev.Key() {
	case tcell.KeyEsc:
		r.cmdline.Reset("")
		r.state = StateEdit
	case tcell.KeyEnter:
		line := r.cmdline.Text()
		r.cmdline.Reset("")
		r.state = StateEdit
		if err := r.Execute(line); err != nil {
			r.lastMessage = err.Error()
		} else {
			r.lastMessage = ""
		}
	case tcell.KeyTab:
		completed := r.completer.CompletePrefix(r.cmdline.Text())
		r.cmdline.ReplaceText(completed)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		r.cmdline.Backspace()
	case tcell.KeyLeft:
		r.cmdline.MoveLeft()
	case tcell.KeyRight:
		r.cmdline.MoveRight()
	case tcell.KeyRune:
		r.cmdline.InsertRune(ev.Rune())
	}
}

// handleImmediateHint implements the command line's deferred-vs-immediate
// hint distinction: a bare <space> as the very first keystroke sets the
// mark and returns to EDIT without ever showing a typed command (spec.md
// §4.5), and a first <esc> returns to EDIT; any other first keystroke falls
// through to ordinary command-line text entry.
func (r *Router) handleImmediateHint(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
		if b := r.list.Current(); b != nil {
			b.SetMark()
		}
		return true
	}
	if ev.Key() == tcell.KeyEsc {
		return true
	}
	return false
}

func (r *Router) handleCtrlXSecondKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlS:
		if err := r.cmdSave(""); err != nil {
			r.lastMessage = err.Error()
		}
	case tcell.KeyCtrlC:
		r.quitRequested = true
	}
}
