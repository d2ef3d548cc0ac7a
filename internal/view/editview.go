// Package view implements the viewport onto an EditBuffer: reframing,
// row formatting via the markup colorizer, the status line, and split
// regions (spec.md §4.2). Grounded in editor.go's draw/adjustOffsets/
// handleInsertMode pattern from the teacher repo, generalized from a
// single whole-screen buffer to a region-addressable, multi-language view.
package view

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/tvernon-cm/cm/internal/buffer"
	"github.com/tvernon-cm/cm/internal/markup"
)

// Result is what handleKey reports back to the mode router.
type Result int

const (
	ResultOK Result = iota
	ResultEnterCommand
	ResultQuit
)

// StyleSource maps a markup color class (and a few structural roles) to a
// concrete terminal style. Implemented by internal/config.
type StyleSource interface {
	Style(lang markup.Language, class markup.ColorClass) tcell.Style
	GutterStyle() tcell.Style
	CurrentLineStyle() tcell.Style
	StatusStyle() tcell.Style
	DefaultStyle() tcell.Style
}

// EditView is a viewport onto one buffer.Buffer, optionally confined to a
// horizontal band of screen rows (split mode).
type EditView struct {
	screen tcell.Screen
	engine *markup.Engine
	styles StyleSource

	buf *buffer.Buffer

	regionTop, regionBottom int // inclusive screen row band; regionBottom-regionTop+1 includes the status line
	active                  bool

	showLineNumbers      bool
	highlightCurrentLine bool
	utf8Mode             bool
	jumpScroll           bool

	firstVisibleRow int
	firstVisibleCol int
	gutterWidth     int

	agentConnected bool
	identity       string
}

// NewEditView creates a view bound to the screen rows [top, bottom]
// inclusive. The last row of the band is reserved for the status line.
func NewEditView(screen tcell.Screen, engine *markup.Engine, styles StyleSource, top, bottom int) *EditView {
	return &EditView{
		screen:               screen,
		engine:               engine,
		styles:               styles,
		regionTop:            top,
		regionBottom:         bottom,
		showLineNumbers:      true,
		highlightCurrentLine: true,
		utf8Mode:             true,
		identity:             "cm",
	}
}

func (v *EditView) SetActive(active bool)          { v.active = active }
func (v *EditView) SetAgentConnected(connected bool) { v.agentConnected = connected }
func (v *EditView) SetJumpScroll(on bool)           { v.jumpScroll = on }
func (v *EditView) Buffer() *buffer.Buffer          { return v.buf }

func (v *EditView) viewportRows() int {
	// last row of the region is the status line
	rows := v.regionBottom - v.regionTop
	if rows < 0 {
		return 0
	}
	return rows
}

func (v *EditView) viewportCols() int {
	w, _ := v.screen.Size()
	cols := w - v.gutterWidth
	if cols < 0 {
		return 0
	}
	return cols
}

// SetBuffer saves the outgoing buffer's view state, installs buf, restores
// its persisted view state, and recomputes the gutter width. It does not
// redraw — the caller does that (spec.md §4.2).
func (v *EditView) SetBuffer(buf *buffer.Buffer) {
	if v.buf != nil {
		v.buf.SetPersistedView(v.firstVisibleRow, v.firstVisibleCol)
	}
	v.buf = buf
	top, left := buf.PersistedView()
	v.firstVisibleRow = top
	v.firstVisibleCol = left
	v.recomputeGutter()
}

func (v *EditView) recomputeGutter() {
	if !v.showLineNumbers || v.buf == nil {
		v.gutterWidth = 0
		return
	}
	v.gutterWidth = len(fmt.Sprintf("%d", v.buf.NumberOfLines())) + 2 // digits + "| "
}

func (v *EditView) language() markup.Language {
	if v.buf == nil {
		return markup.LangNone
	}
	return markup.DetectLanguage(v.buf.FilePath())
}

// Reframe adjusts the viewport so the cursor is visible, returning whether
// it moved (spec.md §4.2's smooth/jump-scroll algorithm).
func (v *EditView) Reframe() bool {
	if v.buf == nil {
		return false
	}
	cur := v.buf.Cursor()
	rows := v.viewportRows()
	cols := v.viewportCols()
	if rows <= 0 || cols <= 0 {
		return false
	}

	lastRow := v.firstVisibleRow + rows - 1
	lastCol := v.firstVisibleCol + cols - 1
	const rightMargin = 10
	effectiveLastCol := lastCol - rightMargin

	inside := cur.Row >= v.firstVisibleRow && cur.Row <= lastRow &&
		cur.Col >= v.firstVisibleCol && cur.Col <= effectiveLastCol
	if inside {
		return false
	}

	lineCount := v.buf.NumberOfLines()

	switch {
	case cur.Row < v.firstVisibleRow:
		if v.jumpScroll {
			v.firstVisibleRow = clamp(cur.Row-rows/2, 0, max0(lineCount-1))
		} else {
			v.firstVisibleRow = cur.Row
		}
	case cur.Row > lastRow:
		if v.jumpScroll {
			v.firstVisibleRow = clamp(cur.Row-rows/2, 0, max0(lineCount-1))
		} else {
			v.firstVisibleRow = cur.Row - rows + 1
		}
	}

	switch {
	case cur.Col < v.firstVisibleCol:
		v.firstVisibleCol = cur.Col
	case cur.Col > effectiveLastCol:
		v.firstVisibleCol = cur.Col - cols + 1 + rightMargin
	}
	if v.firstVisibleCol < 0 {
		v.firstVisibleCol = 0
	}

	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// displayColumnOf translates a buffer cursor column to a display column,
// summing per-character widths in UTF-8 mode (spec.md §4.2).
func (v *EditView) displayColumnOf(row, col int) int {
	if v.buf == nil || row >= v.buf.NumberOfLines() {
		return col
	}
	return v.buf.Line(row).DisplayColumnOf(col, v.buf.TabWidth(), v.utf8Mode)
}

// UpdateScreen redraws every visible buffer row plus the status line.
func (v *EditView) UpdateScreen() {
	if v.buf == nil {
		return
	}
	for r := v.regionTop; r < v.regionBottom; r++ {
		v.formatRow(r)
	}
	if v.active {
		v.drawStatusLine()
	} else {
		v.clearRow(v.regionBottom)
	}
}

func (v *EditView) formatRow(screenRow int) {
	bufRow := v.firstVisibleRow + (screenRow - v.regionTop)
	w, _ := v.screen.Size()

	col := 0
	if v.showLineNumbers {
		col = v.drawGutter(screenRow, bufRow, w)
	}

	if bufRow >= v.buf.NumberOfLines() {
		v.clearFrom(screenRow, col, w, v.styles.DefaultStyle())
		return
	}

	line := v.buf.Line(bufRow)
	full := line.String()
	runes := []rune(full)
	start := clamp(v.firstVisibleCol, 0, len(runes))
	end := clamp(start+v.viewportCols(), 0, len(runes))
	slice := string(runes[start:end])

	spans := v.engine.Colorize(v.language(), full, slice)
	lineStyle := v.styles.DefaultStyle()
	if v.highlightCurrentLine && bufRow == v.buf.Cursor().Row {
		lineStyle = v.styles.CurrentLineStyle()
	}

	for _, s := range spans {
		style := v.styles.Style(v.language(), s.Class)
		if v.highlightCurrentLine && bufRow == v.buf.Cursor().Row {
			style = overlayBackground(style, v.styles.CurrentLineStyle())
		}
		for _, r := range s.Text {
			if col >= w {
				break
			}
			v.screen.SetContent(col, screenRow, r, nil, style)
			col++
		}
	}
	v.clearFrom(screenRow, col, w, lineStyle)
}

func overlayBackground(style, bg tcell.Style) tcell.Style {
	_, b, _ := bg.Decompose()
	return style.Background(b)
}

func (v *EditView) drawGutter(screenRow, bufRow, w int) int {
	if bufRow >= v.buf.NumberOfLines() {
		for x := 0; x < v.gutterWidth && x < w; x++ {
			v.screen.SetContent(x, screenRow, ' ', nil, v.styles.GutterStyle())
		}
		return v.gutterWidth
	}
	numWidth := v.gutterWidth - 2
	text := fmt.Sprintf("%*d| ", numWidth, bufRow+1)
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		v.screen.SetContent(x, screenRow, r, nil, v.styles.GutterStyle())
		x++
	}
	return x
}

func (v *EditView) clearFrom(screenRow, fromCol, w int, style tcell.Style) {
	for x := fromCol; x < w; x++ {
		v.screen.SetContent(x, screenRow, ' ', nil, style)
	}
}

func (v *EditView) clearRow(screenRow int) {
	w, _ := v.screen.Size()
	v.clearFrom(screenRow, 0, w, v.styles.DefaultStyle())
}

// drawStatusLine renders identity/path on the left and cursor
// position/line count/percentage/column on the right, filled with '='.
func (v *EditView) drawStatusLine() {
	w, _ := v.screen.Size()
	cur := v.buf.Cursor()
	total := v.buf.NumberOfLines()
	pct := 100
	if total > 1 {
		pct = (cur.Row * 100) / (total - 1)
	}

	left := fmt.Sprintf("%s: %s", v.identity, v.buf.FilePath())
	if v.buf.Touched() {
		left += " [modified]"
	}
	right := fmt.Sprintf("L%d/%d (%d%%) C%d", cur.Row+1, total, pct, cur.Col+1)
	if v.agentConnected {
		right = "[ Agent ] " + right
	}

	fill := w - len(left) - len(right)
	if fill < 1 {
		fill = 1
	}
	line := left + strings.Repeat("=", fill) + right
	lineRunes := []rune(line)

	x := 0
	for _, r := range lineRunes {
		if x >= w {
			break
		}
		v.screen.SetContent(x, v.regionBottom, r, nil, v.styles.StatusStyle())
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, v.regionBottom, '=', nil, v.styles.StatusStyle())
	}
}

// PlaceCursor emits a terminal cursor-position command at the screen
// coordinates corresponding to the current buffer cursor.
func (v *EditView) PlaceCursor() {
	if v.buf == nil || !v.active {
		return
	}
	cur := v.buf.Cursor()
	screenRow := cur.Row - v.firstVisibleRow + v.regionTop
	screenCol := v.displayColumnOf(cur.Row, cur.Col) - v.firstVisibleCol + v.gutterWidth
	if screenRow < v.regionTop || screenRow >= v.regionBottom {
		return
	}
	v.screen.ShowCursor(screenCol, screenRow)
}

// HandleKey processes one key event against the current buffer, returning
// whether the router should stay in edit mode, switch to command-line
// mode, or quit (spec.md §4.5).
func (v *EditView) HandleKey(ev *tcell.EventKey) Result {
	if v.buf == nil {
		return ResultOK
	}
	switch ev.Key() {
	case tcell.KeyEsc:
		return ResultEnterCommand
	case tcell.KeyRune:
		v.buf.InsertChar(ev.Rune())
	case tcell.KeyTab:
		v.buf.InsertTab()
	case tcell.KeyEnter:
		v.buf.InsertNewline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.buf.Backspace()
	case tcell.KeyLeft:
		v.buf.MoveLeft()
	case tcell.KeyRight:
		v.buf.MoveRight()
	case tcell.KeyUp:
		v.buf.MoveUp()
	case tcell.KeyDown:
		v.buf.MoveDown()
	case tcell.KeyHome:
		v.buf.GotoPosition(buffer.Position{Row: v.buf.Cursor().Row, Col: 0})
	case tcell.KeyEnd:
		row := v.buf.Cursor().Row
		v.buf.GotoPosition(buffer.Position{Row: row, Col: v.buf.Line(row).CharCount()})
	case tcell.KeyPgUp:
		v.pageUp()
	case tcell.KeyPgDn:
		v.pageDown()
	case tcell.KeyCtrlSpace:
		v.buf.SetMark()
	case tcell.KeyCtrlW:
		v.buf.CutToMark()
	case tcell.KeyCtrlK:
		v.buf.CutToEndOfLine()
	case tcell.KeyCtrlY:
		// paste is wired by the router, which owns the kill-ring/clipboard.
	default:
	}
	v.Reframe()
	return ResultOK
}

func (v *EditView) pageUp() {
	rows := v.viewportRows()
	target := v.buf.Cursor().Row - rows
	if target < 0 {
		target = 0
	}
	col := v.buf.Cursor().Col
	v.buf.GotoPosition(buffer.Position{Row: target, Col: col})
	v.firstVisibleRow = max0(v.firstVisibleRow - rows)
}

func (v *EditView) pageDown() {
	rows := v.viewportRows()
	last := v.buf.NumberOfLines() - 1
	target := v.buf.Cursor().Row + rows
	if target > last {
		target = last
	}
	col := v.buf.Cursor().Col
	v.buf.GotoPosition(buffer.Position{Row: target, Col: col})
	if v.firstVisibleRow+rows <= last {
		v.firstVisibleRow += rows
	}
}

// DrawDivider paints a split-region divider row (spec.md §4.2's split mode).
func DrawDivider(screen tcell.Screen, row int, style tcell.Style) {
	w, _ := screen.Size()
	for x := 0; x < w; x++ {
		screen.SetContent(x, row, tcell.RuneHLine, nil, style)
	}
}
