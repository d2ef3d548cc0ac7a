// Package buffer implements the line-structured edit buffer model: the
// TextLine/EditBuffer/BufferList hierarchy that every other package in cm
// builds on.
package buffer

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TextLine is a single line of a buffer: a sequence of runes with knowledge
// of tab expansion and display width. Lines never contain the trailing
// newline; that's implicit in being a separate slice element.
type TextLine struct {
	runes []rune
}

// NewTextLine builds a TextLine from raw text.
func NewTextLine(s string) TextLine {
	return TextLine{runes: []rune(s)}
}

// Runes returns the line's raw, unexpanded rune content. Callers must not
// mutate the returned slice.
func (l TextLine) Runes() []rune {
	return l.runes
}

// String returns the raw (unexpanded) text of the line.
func (l TextLine) String() string {
	return string(l.runes)
}

// CharCount returns the number of characters (runes) in the line.
func (l TextLine) CharCount() int {
	return len(l.runes)
}

// Expanded returns the line with tabs expanded to spaces, column-aligned to
// tabWidth stops.
func (l TextLine) Expanded(tabWidth int) string {
	if !strings.ContainsRune(string(l.runes), '\t') {
		return string(l.runes)
	}
	var b strings.Builder
	col := 0
	for _, r := range l.runes {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		b.WriteRune(r)
		col += runeDisplayWidth(r, true)
	}
	return b.String()
}

// DisplayWidth returns the total display width of the line: each character
// contributes 0 (combining mark), 1 (ordinary), or 2 (wide East-Asian)
// columns in UTF-8 mode, or exactly 1 byte-column per byte otherwise. In
// UTF-8 mode tabs expand to the next tabWidth stop; otherwise a tab counts
// as one byte like any other.
func (l TextLine) DisplayWidth(tabWidth int, utf8Mode bool) int {
	if !utf8Mode {
		return len(string(l.runes))
	}
	col := 0
	for _, r := range l.runes {
		if r == '\t' {
			col += tabWidth - (col % tabWidth)
			continue
		}
		col += runeDisplayWidth(r, true)
	}
	return col
}

// DisplayColumnOf returns the display column corresponding to character
// index charIdx within the line (the sum of display widths of characters
// before it, with tab expansion) in UTF-8 mode; otherwise it is charIdx
// itself. Used by EditView's coordinate translation (spec.md §4.2).
func (l TextLine) DisplayColumnOf(charIdx int, tabWidth int, utf8Mode bool) int {
	if charIdx > len(l.runes) {
		charIdx = len(l.runes)
	}
	if !utf8Mode {
		return charIdx
	}
	col := 0
	for _, r := range l.runes[:charIdx] {
		if r == '\t' {
			col += tabWidth - (col % tabWidth)
			continue
		}
		col += runeDisplayWidth(r, true)
	}
	return col
}

func runeDisplayWidth(r rune, utf8Mode bool) int {
	if !utf8Mode {
		return 1
	}
	return runewidth.RuneWidth(r)
}

// sliceByChar returns the substring [from, to) of the line in character
// (rune) indices, clamped to bounds.
func (l TextLine) sliceByChar(from, to int) []rune {
	if from < 0 {
		from = 0
	}
	if to > len(l.runes) {
		to = len(l.runes)
	}
	if from >= to {
		return nil
	}
	return l.runes[from:to]
}

// graphemeBoundaries returns the character-index boundaries of each
// grapheme cluster in the line: {0, c1, c2, ..., CharCount()}. Used so
// cursor motion steps over a combining-mark sequence or multi-rune emoji
// as a single unit instead of splitting it mid-cluster.
func (l TextLine) graphemeBoundaries() []int {
	if len(l.runes) == 0 {
		return []int{0}
	}
	bounds := make([]int, 0, len(l.runes)+1)
	bounds = append(bounds, 0)
	g := uniseg.NewGraphemes(string(l.runes))
	count := 0
	for g.Next() {
		count += len(g.Runes())
		bounds = append(bounds, count)
	}
	if bounds[len(bounds)-1] != len(l.runes) {
		bounds = append(bounds, len(l.runes))
	}
	return bounds
}

// prevGraphemeBoundary returns the largest grapheme boundary strictly less
// than col.
func prevGraphemeBoundary(l TextLine, col int) int {
	bounds := l.graphemeBoundaries()
	prev := 0
	for _, b := range bounds {
		if b >= col {
			break
		}
		prev = b
	}
	return prev
}

// nextGraphemeBoundary returns the smallest grapheme boundary strictly
// greater than col.
func nextGraphemeBoundary(l TextLine, col int) int {
	bounds := l.graphemeBoundaries()
	for _, b := range bounds {
		if b > col {
			return b
		}
	}
	return len(l.runes)
}
