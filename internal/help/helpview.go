// Package help implements the HELPVIEW modal: a static list of topics next
// to a scrollable text pane, grounded in the teacher's single embedded
// help-text constant in editor.go, generalized into a topic/body table
// the way a larger pack repo (cogentcore-core) structures its doc viewer.
package help

import (
	"github.com/gdamore/tcell/v2"
)

// StyleSource is the subset of view.StyleSource the help view needs.
type StyleSource interface {
	StatusStyle() tcell.Style
	DefaultStyle() tcell.Style
	CurrentLineStyle() tcell.Style
}

// Topic is one help-browser entry.
type Topic struct {
	Title string
	Body  []string
}

var defaultTopics = []Topic{
	{
		Title: "Modes",
		Body: []string{
			"<esc>        enter the command line",
			"C-P          open the project file list",
			"C-B          open the build output view",
			"C-_  / C-/   open this help view",
			"<esc> (here) return to editing",
		},
	},
	{
		Title: "Editing",
		Body: []string{
			"arrows       move the cursor",
			"C-space      set the mark at the cursor",
			"C-w          cut from the mark to the cursor",
			"C-y          paste the last cut text",
			"C-k          cut to the end of the line",
			"page up/down scroll a screenful",
		},
	},
	{
		Title: "Command line",
		Body: []string{
			"find <text>            search forward for text",
			"replace <a> <b>        step to the next match of a, replacing on the match",
			"replace-all <a> <b>    replace every occurrence of a from the cursor on with b",
			"goto-line <n>          move the cursor to line n",
			"save / save-as <path>  write the current buffer",
			"load <path>            open a file in a new buffer",
			"buffer-next/-prev/-new/-list  switch between open buffers",
			"quit                   exit cm",
		},
	},
	{
		Title: "Two-key commands",
		Body: []string{
			"C-X C-S      save the current buffer",
			"C-X C-C      quit",
		},
	},
}

// View renders a topic list on the left and the selected topic's body on
// the right.
type View struct {
	screen tcell.Screen
	styles StyleSource
	topics []Topic
	cursor int
}

// New creates a help view over the built-in topic table.
func New(screen tcell.Screen, styles StyleSource) *View {
	return &View{screen: screen, styles: styles, topics: defaultTopics}
}

// Activate resets the selected topic to the first one, satisfying
// mode.ModalView.
func (v *View) Activate() { v.cursor = 0 }

// HandleKey processes one key while HELPVIEW is active, returning true
// when the router should return to EDIT mode.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEsc:
		return true
	case tcell.KeyUp:
		if v.cursor > 0 {
			v.cursor--
		}
	case tcell.KeyDown:
		if v.cursor < len(v.topics)-1 {
			v.cursor++
		}
	}
	return false
}

const topicColumnWidth = 20

// UpdateScreen redraws the topic list and the selected topic's body.
func (v *View) UpdateScreen() {
	w, h := v.screen.Size()
	for row := 0; row < h-1; row++ {
		lineStyle := v.styles.DefaultStyle()
		var leftText string
		if row < len(v.topics) {
			leftText = v.topics[row].Title
			if row == v.cursor {
				lineStyle = v.styles.CurrentLineStyle()
			}
		}
		x := 0
		for _, r := range leftText {
			if x >= topicColumnWidth {
				break
			}
			v.screen.SetContent(x, row, r, nil, lineStyle)
			x++
		}
		for ; x < topicColumnWidth && x < w; x++ {
			v.screen.SetContent(x, row, ' ', nil, lineStyle)
		}
		if topicColumnWidth < w {
			v.screen.SetContent(topicColumnWidth, row, tcell.RuneVLine, nil, v.styles.DefaultStyle())
		}

		var bodyLine string
		if v.cursor < len(v.topics) && row < len(v.topics[v.cursor].Body) {
			bodyLine = v.topics[v.cursor].Body[row]
		}
		bx := topicColumnWidth + 1
		for _, r := range bodyLine {
			if bx >= w {
				break
			}
			v.screen.SetContent(bx, row, r, nil, v.styles.DefaultStyle())
			bx++
		}
		for ; bx < w; bx++ {
			v.screen.SetContent(bx, row, ' ', nil, v.styles.DefaultStyle())
		}
	}

	label := "-- help (esc to return) --"
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
