// Package project implements the PROJECTVIEW modal: a scrollable file
// listing over the working directory, refreshed live via fsnotify when
// files are added or removed from outside the editor (spec.md's
// MODULE LAYOUT entry for internal/project). Grounded in the teacher's
// drawFileList/directory-walk helpers in editor.go, generalized into its
// own modal surface with a filesystem watcher the teacher never had.
package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
)

// StyleSource is the subset of view.StyleSource the project view needs.
type StyleSource interface {
	StatusStyle() tcell.Style
	DefaultStyle() tcell.Style
	CurrentLineStyle() tcell.Style
}

// View renders a single-column file list over root, highlighting a
// selectable cursor row. Pressing enter reports the selected path through
// Selected; esc (handled by the caller via HandleKey's return) exits back
// to EDIT.
type View struct {
	screen tcell.Screen
	styles StyleSource
	root   string

	entries  []string
	cursor   int
	top      int
	selected string

	watcher *fsnotify.Watcher
	dirty   bool
}

// New creates a project view rooted at root.
func New(screen tcell.Screen, styles StyleSource, root string) *View {
	v := &View{screen: screen, styles: styles, root: root}
	if w, err := fsnotify.NewWatcher(); err == nil {
		if err := w.Add(root); err == nil {
			v.watcher = w
			go v.watch()
		} else {
			w.Close()
		}
	}
	return v
}

func (v *View) watch() {
	for {
		select {
		case ev, ok := <-v.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				v.dirty = true
			}
		case _, ok := <-v.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the background watcher.
func (v *View) Close() error {
	if v.watcher == nil {
		return nil
	}
	return v.watcher.Close()
}

// Activate refreshes the listing and resets the cursor, satisfying
// mode.ModalView.
func (v *View) Activate() {
	v.refresh()
	v.cursor = 0
	v.top = 0
}

func (v *View) refresh() {
	entries, err := os.ReadDir(v.root)
	if err != nil {
		v.entries = nil
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	v.entries = names
	v.dirty = false
}

// Selected returns the last path chosen with enter, and clears it.
func (v *View) Selected() (string, bool) {
	if v.selected == "" {
		return "", false
	}
	s := v.selected
	v.selected = ""
	return s, true
}

// HandleKey processes one key while PROJECTVIEW is active, returning
// true when the router should return to EDIT mode.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	if v.dirty {
		v.refresh()
	}
	switch ev.Key() {
	case tcell.KeyEsc:
		return true
	case tcell.KeyUp:
		if v.cursor > 0 {
			v.cursor--
		}
	case tcell.KeyDown:
		if v.cursor < len(v.entries)-1 {
			v.cursor++
		}
	case tcell.KeyEnter:
		if v.cursor < len(v.entries) {
			v.selected = filepath.Join(v.root, v.entries[v.cursor])
			return true
		}
	}
	return false
}

// UpdateScreen redraws the file list.
func (v *View) UpdateScreen() {
	w, h := v.screen.Size()
	if v.cursor < v.top {
		v.top = v.cursor
	} else if v.cursor >= v.top+h-1 {
		v.top = v.cursor - h + 2
	}

	row := 0
	for i := v.top; i < len(v.entries) && row < h-1; i++ {
		style := v.styles.DefaultStyle()
		if i == v.cursor {
			style = v.styles.CurrentLineStyle()
		}
		x := 0
		for _, r := range v.entries[i] {
			if x >= w {
				break
			}
			v.screen.SetContent(x, row, r, nil, style)
			x++
		}
		for ; x < w; x++ {
			v.screen.SetContent(x, row, ' ', nil, style)
		}
		row++
	}
	for ; row < h-1; row++ {
		for x := 0; x < w; x++ {
			v.screen.SetContent(x, row, ' ', nil, v.styles.DefaultStyle())
		}
	}

	label := "-- project: " + v.root + " --"
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
