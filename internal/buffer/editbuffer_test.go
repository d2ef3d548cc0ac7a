package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(b *Buffer, s string) {
	for _, r := range s {
		if r == '\n' {
			b.InsertNewline()
			continue
		}
		b.InsertChar(r)
	}
}

// S1: empty buffer, type "abc\n def".
func TestTypeAcrossNewline(t *testing.T) {
	b := New()
	typeString(b, "abc\n def")

	require.Equal(t, 2, b.NumberOfLines())
	assert.Equal(t, "abc", b.Line(0).String())
	assert.Equal(t, " def", b.Line(1).String())
	assert.Equal(t, Position{Row: 1, Col: 4}, b.Cursor())
}

// S2: lines ["hello"], cursor (0,5), insertNewline.
func TestInsertNewlineSplitsScreenPastPoint(t *testing.T) {
	b := New()
	typeString(b, "hello")
	require.Equal(t, Position{Row: 0, Col: 5}, b.Cursor())

	hint := b.InsertNewline()

	assert.Equal(t, 2, b.NumberOfLines())
	assert.Equal(t, "hello", b.Line(0).String())
	assert.Equal(t, "", b.Line(1).String())
	assert.Equal(t, Position{Row: 1, Col: 0}, b.Cursor())
	assert.Equal(t, Hint{Scope: ScopeScreenPastPoint, StartRow: 0}, hint)
}

// S3: lines ["abcdef"], cursor (0,3), backspace.
func TestBackspaceWithinLine(t *testing.T) {
	b := New()
	typeString(b, "abcdef")
	b.GotoPosition(Position{Row: 0, Col: 3})

	hint := b.Backspace()

	assert.Equal(t, "abdef", b.Line(0).String())
	assert.Equal(t, Position{Row: 0, Col: 2}, b.Cursor())
	assert.Equal(t, Hint{Scope: ScopeLine, StartRow: 0}, hint)
}

func TestBackspaceAtOriginIsNoOp(t *testing.T) {
	b := New()
	hint := b.Backspace()
	assert.Equal(t, noHint, hint)
	assert.Equal(t, Position{}, b.Cursor())
	assert.False(t, b.Touched())
}

func TestBackspaceJoinsLines(t *testing.T) {
	b := New()
	typeString(b, "foo\nbar")
	b.GotoPosition(Position{Row: 1, Col: 0})

	hint := b.Backspace()

	require.Equal(t, 1, b.NumberOfLines())
	assert.Equal(t, "foobar", b.Line(0).String())
	assert.Equal(t, Position{Row: 0, Col: 3}, b.Cursor())
	assert.Equal(t, ScopeScreenPastPoint, hint.Scope)
}

// S4: "foo bar baz foo" find/findAgain sequence.
func TestFindAndFindAgain(t *testing.T) {
	b := New()
	typeString(b, "foo bar baz foo")
	b.GotoPosition(Position{Row: 0, Col: 0})

	require.True(t, b.FindString("foo"))
	assert.Equal(t, Position{Row: 0, Col: 0}, b.Cursor())

	require.True(t, b.FindAgain("foo"))
	assert.Equal(t, Position{Row: 0, Col: 12}, b.Cursor())

	assert.False(t, b.FindAgain("foo"))
	assert.Equal(t, Position{Row: 0, Col: 12}, b.Cursor())
}

func TestReplaceStringStepToMatchThenReplace(t *testing.T) {
	b := New()
	typeString(b, "one two three two")
	b.GotoPosition(Position{Row: 0, Col: 0})

	// cursor not on a match: replaceString advances like findAgain, no replace.
	replaced := b.ReplaceString("two", "TWO")
	assert.False(t, replaced)
	assert.Equal(t, Position{Row: 0, Col: 4}, b.Cursor())

	// now cursor sits on the match: replace occurs.
	replaced = b.ReplaceString("two", "TWO")
	assert.True(t, replaced)
	assert.Equal(t, "one TWO three two", b.Line(0).String())
	assert.Equal(t, Position{Row: 0, Col: 7}, b.Cursor())
}

func TestReplaceAllCountsEveryOccurrence(t *testing.T) {
	b := New()
	typeString(b, "aa bb aa cc aa")
	b.GotoPosition(Position{Row: 0, Col: 0})

	count := b.ReplaceAll("aa", "X")

	assert.Equal(t, 3, count)
	assert.Equal(t, "X bb X cc X", b.Line(0).String())
}

// Mark/cut idempotence: setMark then cutToMark immediately is a no-op.
func TestMarkCutImmediateIsNoOp(t *testing.T) {
	b := New()
	typeString(b, "hello world")
	b.GotoPosition(Position{Row: 0, Col: 5})

	b.SetMark()
	text, hint := b.CutToMark()

	assert.Equal(t, "", text)
	assert.Equal(t, ScopeNone, hint.Scope)
	assert.Equal(t, "hello world", b.Line(0).String())
}

func TestCutToMarkNormalizesOrder(t *testing.T) {
	b := New()
	typeString(b, "hello world")
	b.GotoPosition(Position{Row: 0, Col: 11})
	b.SetMark()
	b.GotoPosition(Position{Row: 0, Col: 6})

	text, hint := b.CutToMark()

	assert.Equal(t, "world", text)
	assert.Equal(t, "hello ", b.Line(0).String())
	assert.Equal(t, Position{Row: 0, Col: 6}, b.Cursor())
	assert.NotEqual(t, ScopeNone, hint.Scope)
}

func TestCutToMarkNoMarkIsNoOp(t *testing.T) {
	b := New()
	typeString(b, "hello")
	text, hint := b.CutToMark()
	assert.Equal(t, "", text)
	assert.Equal(t, noHint, hint)
}

func TestCopyToMarkLeavesBufferAndMarkIntact(t *testing.T) {
	b := New()
	typeString(b, "hello world")
	b.GotoPosition(Position{Row: 0, Col: 11})
	b.SetMark()
	b.GotoPosition(Position{Row: 0, Col: 6})

	text := b.CopyToMark()

	assert.Equal(t, "world", text)
	assert.Equal(t, "hello world", b.Line(0).String())
	_, hasMark := b.Mark()
	assert.True(t, hasMark)
}

func TestCopyToMarkNoMarkReturnsEmpty(t *testing.T) {
	b := New()
	typeString(b, "hello")
	assert.Equal(t, "", b.CopyToMark())
}

func TestFindAllMatchesOptCaseInsensitive(t *testing.T) {
	b := New()
	typeString(b, "Foo bar foo")
	matches, err := b.FindAllMatchesOpt("foo", true, false)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindAllMatchesOptRegex(t *testing.T) {
	b := New()
	typeString(b, "a1 b2 c3")
	matches, err := b.FindAllMatchesOpt(`[a-z][0-9]`, false, true)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestFindAllMatchesOptInvalidRegexErrors(t *testing.T) {
	b := New()
	typeString(b, "x")
	_, err := b.FindAllMatchesOpt("(", false, true)
	assert.Error(t, err)
}

func TestReplaceAllFromStartOptCaseInsensitive(t *testing.T) {
	b := New()
	typeString(b, "Foo bar FOO")
	count, err := b.ReplaceAllFromStartOpt("foo", "X", true, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "X bar X", b.Line(0).String())
}

func TestReplaceAllFromStartOptRegexRespectsMax(t *testing.T) {
	b := New()
	typeString(b, "a1 a2 a3")
	count, err := b.ReplaceAllFromStartOpt("a[0-9]", "X", false, true, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "X X a3", b.Line(0).String())
}

func TestCutToEndOfLineWithinLine(t *testing.T) {
	b := New()
	typeString(b, "hello world")
	b.GotoPosition(Position{Row: 0, Col: 5})

	text, hint := b.CutToEndOfLine()

	assert.Equal(t, " world", text)
	assert.Equal(t, "hello", b.Line(0).String())
	assert.Equal(t, ScopeLine, hint.Scope)
}

func TestCutToEndOfLineAtEOLJoinsNextLine(t *testing.T) {
	b := New()
	typeString(b, "hello\nworld")
	b.GotoPosition(Position{Row: 0, Col: 5})

	text, hint := b.CutToEndOfLine()

	assert.Equal(t, "\n", text)
	require.Equal(t, 1, b.NumberOfLines())
	assert.Equal(t, "helloworld", b.Line(0).String())
	assert.Equal(t, ScopeScreenPastPoint, hint.Scope)
}

func TestCutToEndOfLineOnLastLineIsNoOp(t *testing.T) {
	b := New()
	typeString(b, "hello")
	b.GotoPosition(Position{Row: 0, Col: 5})

	text, hint := b.CutToEndOfLine()

	assert.Equal(t, "", text)
	assert.Equal(t, noHint, hint)
}

func TestPasteSpansLines(t *testing.T) {
	b := New()
	typeString(b, "hello")
	b.GotoPosition(Position{Row: 0, Col: 5})

	hint := b.Paste(" world\nsecond line")

	require.Equal(t, 2, b.NumberOfLines())
	assert.Equal(t, "hello world", b.Line(0).String())
	assert.Equal(t, "second line", b.Line(1).String())
	assert.Equal(t, ScopeScreenPastPoint, hint.Scope)
}

func TestRoundTripSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.txt")

	b := New()
	typeString(b, "line one\nline two\nline three")

	require.NoError(t, b.SaveText(path))
	assert.False(t, b.Touched())

	loaded := New()
	require.NoError(t, loaded.LoadText(path, true))

	require.Equal(t, b.NumberOfLines(), loaded.NumberOfLines())
	for i := 0; i < b.NumberOfLines(); i++ {
		assert.Equal(t, b.Line(i).String(), loaded.Line(i).String())
	}
	assert.False(t, loaded.Touched())
}

func TestLoadTextDeferredWithoutPreload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deferred.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))

	b := New()
	require.NoError(t, b.LoadText(path, false))
	assert.False(t, b.Loaded())
	assert.Equal(t, 1, b.NumberOfLines())

	require.NoError(t, b.EnsureLoaded())
	assert.True(t, b.Loaded())
	assert.Equal(t, 2, b.NumberOfLines())
}

func TestEntabDetabRoundTrip(t *testing.T) {
	b := New()
	typeString(b, "        indented")
	b.SetTabWidth(4)

	b.Entab()
	assert.Equal(t, "\t\tindented", b.Line(0).String())

	b.Detab()
	assert.Equal(t, "        indented", b.Line(0).String())
}

func TestStatsCountsWordsLinesChars(t *testing.T) {
	b := New()
	typeString(b, "two words\nand one more line")

	lines, chars, words := b.Stats()

	assert.Equal(t, 2, lines)
	assert.Equal(t, len("two words")+len("and one more line"), chars)
	assert.Equal(t, 6, words)
}

func TestCursorMotionClipsAtBounds(t *testing.T) {
	b := New()
	typeString(b, "ab\ncd")
	b.GotoPosition(Position{Row: 0, Col: 0})

	b.MoveLeft() // already at origin: no-op
	assert.Equal(t, Position{Row: 0, Col: 0}, b.Cursor())

	b.MoveUp() // already at top row: no-op
	assert.Equal(t, Position{Row: 0, Col: 0}, b.Cursor())

	b.GotoPosition(Position{Row: 1, Col: 2})
	b.MoveRight() // end of buffer: no-op
	assert.Equal(t, Position{Row: 1, Col: 2}, b.Cursor())

	b.MoveDown() // last row already: no-op
	assert.Equal(t, Position{Row: 1, Col: 2}, b.Cursor())
}

func TestMoveRightAtEndOfLineAdvancesRow(t *testing.T) {
	b := New()
	typeString(b, "ab\ncd")
	b.GotoPosition(Position{Row: 0, Col: 2})

	b.MoveRight()

	assert.Equal(t, Position{Row: 1, Col: 0}, b.Cursor())
}

func TestMoveLeftAtColumnZeroRetreatsToPreviousLine(t *testing.T) {
	b := New()
	typeString(b, "ab\ncd")
	b.GotoPosition(Position{Row: 1, Col: 0})

	b.MoveLeft()

	assert.Equal(t, Position{Row: 0, Col: 2}, b.Cursor())
}
