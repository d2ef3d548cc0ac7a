package view

import (
	"github.com/gdamore/tcell/v2"
)

// CommandLineView is the single-line prompt/edit widget at the bottom of
// the screen, with its own horizontal scroll independent of any EditView
// (spec.md §4.4's CommandLineView / §4.5's hint mode).
type CommandLineView struct {
	screen tcell.Screen
	styles StyleSource
	row    int

	text   []rune
	cursor int
	offset int
}

// NewCommandLineView creates a command line rendered at screen row.
func NewCommandLineView(screen tcell.Screen, styles StyleSource, row int) *CommandLineView {
	return &CommandLineView{screen: screen, styles: styles, row: row}
}

// Reset clears the line and seeds it with prefill (a hint such as "find: ").
func (c *CommandLineView) Reset(prefill string) {
	c.text = []rune(prefill)
	c.cursor = len(c.text)
	c.offset = 0
}

// Text returns the current line content.
func (c *CommandLineView) Text() string { return string(c.text) }

// InsertRune inserts r at the cursor.
func (c *CommandLineView) InsertRune(r rune) {
	c.text = append(c.text[:c.cursor], append([]rune{r}, c.text[c.cursor:]...)...)
	c.cursor++
}

// Backspace removes the rune before the cursor, if any.
func (c *CommandLineView) Backspace() {
	if c.cursor == 0 {
		return
	}
	c.text = append(c.text[:c.cursor-1], c.text[c.cursor:]...)
	c.cursor--
}

// MoveLeft/MoveRight move the cursor within the line, clipped to bounds.
func (c *CommandLineView) MoveLeft() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *CommandLineView) MoveRight() {
	if c.cursor < len(c.text) {
		c.cursor++
	}
}

// ReplaceText overwrites the whole line (used for Tab completion with the
// result of complete.Table.CompletePrefix).
func (c *CommandLineView) ReplaceText(s string) {
	c.text = []rune(s)
	c.cursor = len(c.text)
}

// Draw renders the prompt line, scrolling horizontally to keep the cursor
// visible, the same way the teacher's drawCmd/drawStatusBar pair works.
func (c *CommandLineView) Draw() {
	w, _ := c.screen.Size()
	if c.cursor < c.offset {
		c.offset = c.cursor
	} else if c.cursor >= c.offset+w {
		c.offset = c.cursor - w + 1
	}

	style := c.styles.StatusStyle()
	x := 0
	for i := c.offset; i < len(c.text) && x < w; i++ {
		c.screen.SetContent(x, c.row, c.text[i], nil, style)
		x++
	}
	for ; x < w; x++ {
		c.screen.SetContent(x, c.row, ' ', nil, style)
	}
	c.screen.ShowCursor(c.cursor-c.offset, c.row)
}
