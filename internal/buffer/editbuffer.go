package buffer

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"github.com/google/uuid"
)

// mmapThreshold is the file size above which LoadText memory-maps the
// source instead of scanning it line by line (spec.md §1: ordinary source
// files up to a few hundred thousand lines).
const mmapThreshold = 64 * 1024

// findState holds the last search pattern and the position of the most
// recent match (spec.md §3).
type findState struct {
	pattern   string
	lastMatch Position
	found     bool
}

// Buffer is an ordered sequence of TextLine with a cursor, optional mark,
// and file association (spec.md §3's EditBuffer). It always contains at
// least one line.
type Buffer struct {
	lines []TextLine
	cursor Position
	mark   *Position

	filePath string
	bufferID string

	loaded  bool
	touched bool

	persistedViewTop  int
	persistedViewLeft int

	find findState

	tabWidth int
}

// New creates an empty buffer: one empty line, tab width 4, cursor at
// origin, and a freshly generated buffer ID (used by the bridge to name
// buffers that have no backing file yet).
func New() *Buffer {
	return &Buffer{
		lines:    []TextLine{{}},
		tabWidth: 4,
		bufferID: uuid.NewString(),
	}
}

// BufferID returns the buffer's stable identifier, used by the agent
// bridge when FilePath is empty.
func (b *Buffer) BufferID() string { return b.bufferID }

// FilePath returns the buffer's backing file path, or "" if unnamed.
func (b *Buffer) FilePath() string { return b.filePath }

// Touched reports whether the buffer has unsaved changes.
func (b *Buffer) Touched() bool { return b.touched }

// Loaded reports whether file content has been read into memory.
func (b *Buffer) Loaded() bool { return b.loaded }

// Cursor returns the current cursor position.
func (b *Buffer) Cursor() Position { return b.cursor }

// Mark returns the current mark, and whether one is set.
func (b *Buffer) Mark() (Position, bool) {
	if b.mark == nil {
		return Position{}, false
	}
	return *b.mark, true
}

// TabWidth returns the buffer's configured tab width.
func (b *Buffer) TabWidth() int { return b.tabWidth }

// SetTabWidth sets the tab width to one of {2,4,8}; any other value is
// ignored and the current width is kept.
func (b *Buffer) SetTabWidth(w int) {
	switch w {
	case 2, 4, 8:
		b.tabWidth = w
	}
}

// NumberOfLines returns the number of lines in the buffer.
func (b *Buffer) NumberOfLines() int { return len(b.lines) }

// Line returns the TextLine at row r. Out-of-range is a programmer error;
// callers must check NumberOfLines first.
func (b *Buffer) Line(r int) TextLine { return b.lines[r] }

// PersistedView returns the remembered first-visible row/column, restored
// by EditView.SetBuffer when this buffer becomes current again.
func (b *Buffer) PersistedView() (top, left int) {
	return b.persistedViewTop, b.persistedViewLeft
}

// SetPersistedView records the viewport top/left to restore next time this
// buffer becomes current.
func (b *Buffer) SetPersistedView(top, left int) {
	b.persistedViewTop, b.persistedViewLeft = top, left
}

func (b *Buffer) clipPosition(p Position) Position {
	if p.Row < 0 {
		p.Row = 0
	}
	if p.Row >= len(b.lines) {
		p.Row = len(b.lines) - 1
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if max := b.lines[p.Row].CharCount(); p.Col > max {
		p.Col = max
	}
	return p
}

// --- cursor motions: never mutate content, always clip to bounds ---

// MoveLeft moves the cursor one grapheme cluster to the left; at column 0
// it retreats to the end of the previous line.
func (b *Buffer) MoveLeft() {
	if b.cursor.Col > 0 {
		b.cursor.Col = prevGraphemeBoundary(b.lines[b.cursor.Row], b.cursor.Col)
		return
	}
	if b.cursor.Row > 0 {
		b.cursor.Row--
		b.cursor.Col = b.lines[b.cursor.Row].CharCount()
	}
}

// MoveRight moves the cursor one grapheme cluster to the right; at
// end-of-line it advances to (row+1, 0).
func (b *Buffer) MoveRight() {
	line := b.lines[b.cursor.Row]
	if b.cursor.Col < line.CharCount() {
		b.cursor.Col = nextGraphemeBoundary(line, b.cursor.Col)
		return
	}
	if b.cursor.Row < len(b.lines)-1 {
		b.cursor.Row++
		b.cursor.Col = 0
	}
}

// MoveUp moves the cursor up one row, clipping the column to the target
// line's length.
func (b *Buffer) MoveUp() {
	if b.cursor.Row == 0 {
		return
	}
	b.cursor.Row--
	if max := b.lines[b.cursor.Row].CharCount(); b.cursor.Col > max {
		b.cursor.Col = max
	}
}

// MoveDown moves the cursor down one row, clipping the column to the
// target line's length.
func (b *Buffer) MoveDown() {
	if b.cursor.Row >= len(b.lines)-1 {
		return
	}
	b.cursor.Row++
	if max := b.lines[b.cursor.Row].CharCount(); b.cursor.Col > max {
		b.cursor.Col = max
	}
}

// GotoLine moves the cursor to the start of row (0-based), clipped.
func (b *Buffer) GotoLine(row int) {
	b.cursor = b.clipPosition(Position{Row: row, Col: 0})
}

// GotoPosition moves the cursor to an arbitrary (row, col), clipped.
func (b *Buffer) GotoPosition(p Position) {
	b.cursor = b.clipPosition(p)
}

// --- mutation operations ---

// InsertChar inserts ch at the cursor and advances the cursor by one
// character.
func (b *Buffer) InsertChar(ch rune) Hint {
	startCol := b.cursor.Col
	b.cursor = b.spliceInsert(b.cursor, string(ch))
	b.touched = true
	return Hint{Scope: ScopeLinePastPoint, StartRow: b.cursor.Row, StartCol: startCol}
}

// InsertTab inserts a literal tab character (expansion is the view's job).
func (b *Buffer) InsertTab() Hint {
	return b.InsertChar('\t')
}

// InsertNewline splits the current line at the cursor.
func (b *Buffer) InsertNewline() Hint {
	originalRow := b.cursor.Row
	b.cursor = b.spliceInsert(b.cursor, "\n")
	b.touched = true
	return Hint{Scope: ScopeScreenPastPoint, StartRow: originalRow}
}

// Backspace deletes the character before the cursor, or joins with the
// previous line if at column 0. It is a no-op at (0,0).
func (b *Buffer) Backspace() Hint {
	if b.cursor.Col > 0 {
		prev := prevGraphemeBoundary(b.lines[b.cursor.Row], b.cursor.Col)
		b.spliceDelete(Position{Row: b.cursor.Row, Col: prev}, b.cursor)
		b.cursor.Col = prev
		b.touched = true
		return Hint{Scope: ScopeLine, StartRow: b.cursor.Row}
	}
	if b.cursor.Row > 0 {
		joinRow := b.cursor.Row - 1
		joinCol := b.lines[joinRow].CharCount()
		b.spliceDelete(Position{Row: joinRow, Col: joinCol}, b.cursor)
		b.cursor = Position{Row: joinRow, Col: joinCol}
		b.touched = true
		return Hint{Scope: ScopeScreenPastPoint, StartRow: joinRow}
	}
	return noHint
}

// SetMark records the current cursor position as the mark.
func (b *Buffer) SetMark() Hint {
	m := b.cursor
	b.mark = &m
	return Hint{Scope: ScopeNone}
}

// CutToMark removes the text between mark and cursor (order-normalized),
// clears the mark, and returns the removed text. A no-op if no mark is set.
func (b *Buffer) CutToMark() (string, Hint) {
	if b.mark == nil {
		return "", noHint
	}
	from, to := normalizeOrder(*b.mark, b.cursor)
	text := b.spliceDelete(from, to)
	b.mark = nil
	if text == "" {
		b.cursor = from
		return "", Hint{Scope: ScopeNone}
	}
	b.cursor = from
	b.touched = true
	return text, Hint{Scope: ScopeScreenPastPoint, StartRow: from.Row}
}

// CopyToMark returns the text between mark and cursor (order-normalized)
// without modifying the buffer or clearing the mark. Returns "" if no mark
// is set.
func (b *Buffer) CopyToMark() string {
	if b.mark == nil {
		return ""
	}
	from, to := normalizeOrder(*b.mark, b.cursor)
	fromOff := b.runeOffset(from)
	toOff := b.runeOffset(to)
	return string(b.fullRunes()[fromOff:toOff])
}

// CutToEndOfLine implements Emacs-style kill-line: removes from the cursor
// to end of line (no newline), or if already at end of line, removes the
// trailing newline by joining with the next line and returns "\n".
func (b *Buffer) CutToEndOfLine() (string, Hint) {
	line := b.lines[b.cursor.Row]
	if b.cursor.Col < line.CharCount() {
		end := Position{Row: b.cursor.Row, Col: line.CharCount()}
		text := b.spliceDelete(b.cursor, end)
		b.touched = true
		return text, Hint{Scope: ScopeLine, StartRow: b.cursor.Row}
	}
	if b.cursor.Row >= len(b.lines)-1 {
		return "", noHint
	}
	next := Position{Row: b.cursor.Row + 1, Col: 0}
	text := b.spliceDelete(b.cursor, next)
	b.touched = true
	return text, Hint{Scope: ScopeScreenPastPoint, StartRow: b.cursor.Row}
}

// Paste inserts text at the cursor, which may span multiple lines.
func (b *Buffer) Paste(text string) Hint {
	if text == "" {
		return noHint
	}
	originalRow := b.cursor.Row
	b.cursor = b.spliceInsert(b.cursor, text)
	b.touched = true
	return Hint{Scope: ScopeScreenPastPoint, StartRow: originalRow}
}

// --- find / replace ---

// FindString searches forward from the current cursor (inclusive) for a
// plain, case-sensitive substring. On match the cursor moves to the match
// start and find state updates.
func (b *Buffer) FindString(pattern string) bool {
	return b.findFrom(pattern, b.runeOffset(b.cursor))
}

// FindAgain searches forward starting one character past the cursor, to
// avoid re-matching in place.
func (b *Buffer) FindAgain(pattern string) bool {
	return b.findFrom(pattern, b.runeOffset(b.cursor)+1)
}

func (b *Buffer) findFrom(pattern string, from int) bool {
	if pattern == "" {
		return false
	}
	haystack := b.fullRunes()
	if from < 0 {
		from = 0
	}
	if from > len(haystack) {
		b.find.found = false
		return false
	}
	idx := indexRunes(haystack[from:], []rune(pattern))
	if idx < 0 {
		b.find.found = false
		return false
	}
	pos := b.posFromRuneOffset(from + idx)
	b.cursor = pos
	b.find = findState{pattern: pattern, lastMatch: pos, found: true}
	return true
}

// matchesAt reports whether the buffer text starting at p equals pattern
// exactly.
func (b *Buffer) matchesAt(p Position, pattern string) bool {
	if pattern == "" {
		return false
	}
	need := []rune(pattern)
	haystack := b.fullRunes()
	off := b.runeOffset(p)
	if off+len(need) > len(haystack) {
		return false
	}
	for i, r := range need {
		if haystack[off+i] != r {
			return false
		}
	}
	return true
}

// ReplaceString implements the two-step "step to match, then replace"
// contract (spec.md §4.1, §9 Open Question): if the text at the cursor is
// exactly find, it is replaced and the cursor lands just past the
// insertion, returning true. Otherwise the cursor advances to the next
// match (as FindAgain) without replacing, returning false.
func (b *Buffer) ReplaceString(find, replacement string) bool {
	if find == "" {
		return false
	}
	if b.matchesAt(b.cursor, find) {
		end := b.offsetAdvance(b.cursor, len([]rune(find)))
		b.spliceDelete(b.cursor, end)
		b.cursor = b.spliceInsert(b.cursor, replacement)
		b.touched = true
		return true
	}
	b.FindAgain(find)
	return false
}

// FindAllMatches returns the start position of every occurrence of pattern,
// without disturbing the cursor or find state. The agent bridge's
// find_in_buffer calls the FindAllMatchesOpt variant below.
func (b *Buffer) FindAllMatches(pattern string) []Position {
	if pattern == "" {
		return nil
	}
	haystack := b.fullRunes()
	need := []rune(pattern)
	var matches []Position
	for from := 0; from <= len(haystack)-len(need); {
		idx := indexRunes(haystack[from:], need)
		if idx < 0 {
			break
		}
		matches = append(matches, b.posFromRuneOffset(from+idx))
		from += idx + 1
	}
	return matches
}

// ReplaceAllFromStart replaces every occurrence of find with replacement,
// scanning from the beginning of the buffer regardless of cursor position,
// stopping after max replacements (0 means unlimited). The agent bridge's
// find_and_replace calls the ReplaceAllFromStartOpt variant below.
func (b *Buffer) ReplaceAllFromStart(find, replacement string, max int) int {
	if find == "" {
		return 0
	}
	count := 0
	from := 0
	needLen := len([]rune(find))
	for {
		if max > 0 && count >= max {
			break
		}
		haystack := b.fullRunes()
		if from > len(haystack)-needLen {
			break
		}
		idx := indexRunes(haystack[from:], []rune(find))
		if idx < 0 {
			break
		}
		start := b.posFromRuneOffset(from + idx)
		end := b.offsetAdvance(start, needLen)
		b.spliceDelete(start, end)
		inserted := b.spliceInsert(start, replacement)
		b.touched = true
		from = b.runeOffset(inserted)
		count++
	}
	if count > 0 {
		b.cursor = b.clipPosition(b.cursor)
	}
	return count
}

// matchSpan is a rune-offset [start, end) pair, comparable across both the
// plain and regex search paths below.
type matchSpan struct{ start, end int }

// findSpans locates every non-overlapping occurrence of pattern in haystack
// per the agent bridge's is_regex/case_insensitive options (spec.md §6.3's
// "simple-regex" substring search): isRegex compiles pattern with Go's RE2
// engine in multi-line mode, so ^ and $ anchor at line boundaries;
// caseInsensitive folds case in either mode.
func findSpans(haystack []rune, pattern string, caseInsensitive, isRegex bool) ([]matchSpan, error) {
	if pattern == "" {
		return nil, nil
	}
	if isRegex {
		expr := "(?m)" + pattern
		if caseInsensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		text := string(haystack)
		var spans []matchSpan
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, matchSpan{
				start: utf8.RuneCountInString(text[:loc[0]]),
				end:   utf8.RuneCountInString(text[:loc[1]]),
			})
		}
		return spans, nil
	}
	needle := []rune(pattern)
	var spans []matchSpan
	for from := 0; from+len(needle) <= len(haystack); {
		idx := indexRunesOpt(haystack[from:], needle, caseInsensitive)
		if idx < 0 {
			break
		}
		spans = append(spans, matchSpan{start: from + idx, end: from + idx + len(needle)})
		from += idx + len(needle)
	}
	return spans, nil
}

func indexRunesOpt(haystack, needle []rune, caseInsensitive bool) int {
	if !caseInsensitive {
		return indexRunes(haystack, needle)
	}
	if len(needle) == 0 || len(needle) > len(haystack) {
		if len(needle) == 0 {
			return 0
		}
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// FindAllMatchesOpt is FindAllMatches generalized over the agent bridge's
// is_regex/case_insensitive search options.
func (b *Buffer) FindAllMatchesOpt(pattern string, caseInsensitive, isRegex bool) ([]Position, error) {
	spans, err := findSpans(b.fullRunes(), pattern, caseInsensitive, isRegex)
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(spans))
	for _, s := range spans {
		out = append(out, b.posFromRuneOffset(s.start))
	}
	return out, nil
}

// ReplaceAllFromStartOpt is ReplaceAllFromStart generalized over the agent
// bridge's is_regex/case_insensitive search options. Replacements are
// applied back to front so earlier match offsets stay valid.
func (b *Buffer) ReplaceAllFromStartOpt(find, replacement string, caseInsensitive, isRegex bool, max int) (int, error) {
	spans, err := findSpans(b.fullRunes(), find, caseInsensitive, isRegex)
	if err != nil {
		return 0, err
	}
	if max > 0 && len(spans) > max {
		spans = spans[:max]
	}
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		start := b.posFromRuneOffset(s.start)
		end := b.posFromRuneOffset(s.end)
		b.spliceDelete(start, end)
		b.spliceInsert(start, replacement)
		b.touched = true
	}
	if len(spans) > 0 {
		b.cursor = b.clipPosition(b.cursor)
	}
	return len(spans), nil
}

// ReplaceAll repeatedly applies ReplaceString until no further match is
// found, returning the number of replacements made.
func (b *Buffer) ReplaceAll(find, replacement string) int {
	if find == "" {
		return 0
	}
	count := 0
	for {
		if b.ReplaceString(find, replacement) {
			count++
			continue
		}
		if b.matchesAt(b.cursor, find) {
			continue
		}
		break
	}
	return count
}

// --- file I/O ---

// LoadText associates the buffer with path. If preload is true the file is
// read now; otherwise it is deferred until EnsureLoaded is called. Clears
// Touched.
func (b *Buffer) LoadText(path string, preload bool) error {
	b.filePath = path
	b.loaded = false
	b.touched = false
	if !preload {
		return nil
	}
	return b.readFile(path)
}

// EnsureLoaded reads the backing file if it has not been loaded yet.
func (b *Buffer) EnsureLoaded() error {
	if b.loaded {
		return nil
	}
	return b.readFile(b.filePath)
}

func (b *Buffer) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var lines []TextLine
	if info.Size() > mmapThreshold {
		if data, merr := mmap.Map(f, mmap.RDONLY, 0); merr == nil {
			lines = splitLines(data)
			data.Unmap()
		}
	}
	if lines == nil {
		lines, err = scanLines(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	if len(lines) == 0 {
		lines = []TextLine{{}}
	}

	b.lines = lines
	b.cursor = Position{}
	b.mark = nil
	b.loaded = true
	b.touched = false
	b.filePath = path
	return nil
}

func scanLines(f *os.File) ([]TextLine, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var lines []TextLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, NewTextLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func splitLines(data []byte) []TextLine {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	lines := make([]TextLine, len(parts))
	for i, p := range parts {
		lines[i] = NewTextLine(strings.TrimSuffix(p, "\r"))
	}
	return lines
}

// SaveText writes the buffer's lines joined by newline to path, updates
// FilePath, and clears Touched.
func (b *Buffer) SaveText(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range b.lines {
		if _, err := w.WriteString(l.String()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	b.filePath = path
	b.touched = false
	return nil
}

// --- supplemental commands recovered from original_source/CommandTable.cpp ---

// Entab converts runs of TabWidth leading spaces into tabs, line by line.
func (b *Buffer) Entab() Hint {
	for i, l := range b.lines {
		b.lines[i] = NewTextLine(entabLine(l.String(), b.tabWidth))
	}
	b.touched = true
	return Hint{Scope: ScopeScreenPastPoint, StartRow: 0}
}

// Detab converts leading tabs into TabWidth spaces, line by line.
func (b *Buffer) Detab() Hint {
	for i, l := range b.lines {
		b.lines[i] = NewTextLine(detabLine(l.String(), b.tabWidth))
	}
	b.touched = true
	return Hint{Scope: ScopeScreenPastPoint, StartRow: 0}
}

func entabLine(s string, tabWidth int) string {
	i := 0
	spaces := 0
	for i < len(s) && s[i] == ' ' {
		spaces++
		i++
	}
	tabs := spaces / tabWidth
	rem := spaces % tabWidth
	return strings.Repeat("\t", tabs) + strings.Repeat(" ", rem) + s[i:]
}

func detabLine(s string, tabWidth int) string {
	i := 0
	var b strings.Builder
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		if s[i] == '\t' {
			b.WriteString(strings.Repeat(" ", tabWidth))
		} else {
			b.WriteByte(' ')
		}
		i++
	}
	b.WriteString(s[i:])
	return b.String()
}

// Stats returns line, character, and word counts for the "wc" command
// (original_source/CommandTable.cpp's CMD_Count).
func (b *Buffer) Stats() (lines, chars, words int) {
	lines = len(b.lines)
	inWord := false
	for _, l := range b.lines {
		chars += l.CharCount()
		for _, r := range l.runes {
			if unicode.IsSpace(r) {
				inWord = false
				continue
			}
			if !inWord {
				words++
				inWord = true
			}
		}
		inWord = false
	}
	return
}

// --- bridge-facing range operations (spec.md §6.3) ---
//
// These take 0-based, inclusive row ranges; the bridge package converts
// the wire protocol's 1-based line numbers before calling in.

// TextRange returns the lines [startRow, endRow] joined by "\n", clamped to
// the buffer's bounds.
func (b *Buffer) TextRange(startRow, endRow int) string {
	startRow = clampRowIndex(startRow, len(b.lines))
	endRow = clampRowIndex(endRow, len(b.lines))
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	var sb strings.Builder
	for r := startRow; r <= endRow; r++ {
		if r > startRow {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.lines[r].String())
	}
	return sb.String()
}

// FullText returns every line joined by "\n".
func (b *Buffer) FullText() string {
	return b.TextRange(0, len(b.lines)-1)
}

// ReplaceLineRange overwrites lines [startRow, endRow] with the lines of
// newText.
func (b *Buffer) ReplaceLineRange(startRow, endRow int, newText string) Hint {
	startRow = clampRowIndex(startRow, len(b.lines))
	endRow = clampRowIndex(endRow, len(b.lines))
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	replacement := splitIntoTextLines(newText)
	rest := append([]TextLine{}, b.lines[endRow+1:]...)
	b.lines = append(append(b.lines[:startRow:startRow], replacement...), rest...)
	if len(b.lines) == 0 {
		b.lines = []TextLine{{}}
	}
	b.touched = true
	b.cursor = b.clipPosition(Position{Row: startRow, Col: 0})
	return Hint{Scope: ScopeScreenPastPoint, StartRow: startRow}
}

// InsertLinesBefore splices the lines of text in before beforeRow.
func (b *Buffer) InsertLinesBefore(beforeRow int, text string) Hint {
	beforeRow = clampRowIndex(beforeRow, len(b.lines))
	inserted := splitIntoTextLines(text)
	rest := append([]TextLine{}, b.lines[beforeRow:]...)
	b.lines = append(append(b.lines[:beforeRow:beforeRow], inserted...), rest...)
	b.touched = true
	b.cursor = b.clipPosition(Position{Row: beforeRow, Col: 0})
	return Hint{Scope: ScopeScreenPastPoint, StartRow: beforeRow}
}

// DeleteLineRange removes lines [startRow, endRow] inclusive.
func (b *Buffer) DeleteLineRange(startRow, endRow int) Hint {
	startRow = clampRowIndex(startRow, len(b.lines))
	endRow = clampRowIndex(endRow, len(b.lines))
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	rest := append([]TextLine{}, b.lines[endRow+1:]...)
	b.lines = append(b.lines[:startRow:startRow], rest...)
	if len(b.lines) == 0 {
		b.lines = []TextLine{{}}
	}
	b.touched = true
	b.cursor = b.clipPosition(Position{Row: startRow, Col: 0})
	return Hint{Scope: ScopeScreenPastPoint, StartRow: startRow}
}

func clampRowIndex(row, lineCount int) int {
	if row < 0 {
		return 0
	}
	if row >= lineCount {
		return lineCount - 1
	}
	return row
}

func splitIntoTextLines(text string) []TextLine {
	parts := strings.Split(text, "\n")
	lines := make([]TextLine, len(parts))
	for i, p := range parts {
		lines[i] = NewTextLine(p)
	}
	return lines
}

// --- line-splicing primitives shared by every mutation above ---

func (b *Buffer) spliceDelete(from, to Position) string {
	from, to = normalizeOrder(from, to)
	if from == to {
		return ""
	}
	if from.Row == to.Row {
		line := b.lines[from.Row]
		removed := string(line.sliceByChar(from.Col, to.Col))
		newRunes := make([]rune, 0, len(line.runes)-(to.Col-from.Col))
		newRunes = append(newRunes, line.runes[:from.Col]...)
		newRunes = append(newRunes, line.runes[to.Col:]...)
		b.lines[from.Row] = TextLine{runes: newRunes}
		return removed
	}

	var sb strings.Builder
	firstLine := b.lines[from.Row]
	sb.WriteString(string(firstLine.runes[from.Col:]))
	for r := from.Row + 1; r < to.Row; r++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[r].String())
	}
	sb.WriteByte('\n')
	lastLine := b.lines[to.Row]
	sb.WriteString(string(lastLine.runes[:to.Col]))

	merged := make([]rune, 0, from.Col+(lastLine.CharCount()-to.Col))
	merged = append(merged, firstLine.runes[:from.Col]...)
	merged = append(merged, lastLine.runes[to.Col:]...)

	newLines := make([]TextLine, 0, len(b.lines)-(to.Row-from.Row))
	newLines = append(newLines, b.lines[:from.Row]...)
	newLines = append(newLines, TextLine{runes: merged})
	newLines = append(newLines, b.lines[to.Row+1:]...)
	b.lines = newLines
	return sb.String()
}

func (b *Buffer) spliceInsert(pos Position, text string) Position {
	if text == "" {
		return pos
	}
	parts := strings.Split(text, "\n")
	line := b.lines[pos.Row]
	tail := append([]rune{}, line.runes[pos.Col:]...)

	if len(parts) == 1 {
		piece := []rune(parts[0])
		newRunes := make([]rune, 0, len(line.runes)+len(piece))
		newRunes = append(newRunes, line.runes[:pos.Col]...)
		newRunes = append(newRunes, piece...)
		newRunes = append(newRunes, tail...)
		b.lines[pos.Row] = TextLine{runes: newRunes}
		return Position{Row: pos.Row, Col: pos.Col + len(piece)}
	}

	firstNew := make([]rune, 0, pos.Col+len(parts[0]))
	firstNew = append(firstNew, line.runes[:pos.Col]...)
	firstNew = append(firstNew, []rune(parts[0])...)
	b.lines[pos.Row] = TextLine{runes: firstNew}

	middle := make([]TextLine, 0, len(parts)-2)
	for i := 1; i < len(parts)-1; i++ {
		middle = append(middle, NewTextLine(parts[i]))
	}
	lastPart := []rune(parts[len(parts)-1])
	lastNew := make([]rune, 0, len(lastPart)+len(tail))
	lastNew = append(lastNew, lastPart...)
	lastNew = append(lastNew, tail...)
	inserted := append(middle, TextLine{runes: lastNew})

	rest := append([]TextLine{}, b.lines[pos.Row+1:]...)
	b.lines = append(b.lines[:pos.Row+1], append(inserted, rest...)...)

	return Position{Row: pos.Row + len(parts) - 1, Col: len(lastPart)}
}

// --- flattened rune-offset helpers for find/replace ---

func (b *Buffer) runeOffset(p Position) int {
	off := 0
	for i := 0; i < p.Row; i++ {
		off += b.lines[i].CharCount() + 1
	}
	return off + p.Col
}

func (b *Buffer) posFromRuneOffset(off int) Position {
	row := 0
	for row < len(b.lines)-1 {
		lineLen := b.lines[row].CharCount() + 1
		if off < lineLen {
			break
		}
		off -= lineLen
		row++
	}
	return Position{Row: row, Col: off}
}

func (b *Buffer) offsetAdvance(p Position, n int) Position {
	return b.posFromRuneOffset(b.runeOffset(p) + n)
}

func (b *Buffer) fullRunes() []rune {
	total := 0
	for _, l := range b.lines {
		total += l.CharCount() + 1
	}
	all := make([]rune, 0, total)
	for i, l := range b.lines {
		if i > 0 {
			all = append(all, '\n')
		}
		all = append(all, l.runes...)
	}
	return all
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		if len(needle) == 0 {
			return 0
		}
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
