package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classAt expands spans back into a flat per-rune class slice and returns
// the class assigned to the first occurrence of substr, failing the test
// unless every rune of substr shares that same class.
func classAt(t *testing.T, spans []Span, substr string) ColorClass {
	t.Helper()
	var full []rune
	var classes []ColorClass
	for _, s := range spans {
		for _, r := range s.Text {
			full = append(full, r)
			classes = append(classes, s.Class)
		}
	}
	text := string(full)
	idx := indexRunes(full, []rune(substr))
	require.GreaterOrEqual(t, idx, 0, "substring %q not found in %q", substr, text)
	cls := classes[idx]
	for k := idx; k < idx+len([]rune(substr)); k++ {
		require.Equal(t, cls, classes[k], "substring %q spans mixed classes", substr)
	}
	return cls
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
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

// S5: printf("error %d\n", 42); in C mode colors the string literal and the
// numeric literal, and leaves the call and punctuation uncolored.
func TestColorizeCPrintfStatement(t *testing.T) {
	e := NewEngine()
	line := `printf("error %d\n", 42);`
	spans := e.Colorize(LangC, line, line)

	assert.Equal(t, ClassString, classAt(t, spans, `"error %d\n"`))
	assert.Equal(t, ClassNumber, classAt(t, spans, "42"))
	assert.Equal(t, ClassDefault, classAt(t, spans, "printf"))
}

func TestColorizeKeywordInsideStringIsNotColorized(t *testing.T) {
	e := NewEngine()
	line := `x := "return nil"`
	spans := e.Colorize(LangGo, line, line)

	assert.Equal(t, ClassString, classAt(t, spans, `"return nil"`))
	for _, s := range spans {
		if s.Class == ClassKeyword {
			require.Fail(t, "keyword class leaked into string literal", "%#v", spans)
		}
	}
}

func TestColorizeWholeLineCommentUsesFullLineForDetection(t *testing.T) {
	e := NewEngine()
	full := "    // this is a trailing comment tail"
	visible := "comment tail" // scrolled window, doesn't itself start with //
	spans := e.Colorize(LangGo, full, visible)

	require.Len(t, spans, 1)
	assert.Equal(t, ClassComment, spans[0].Class)
	assert.Equal(t, visible, spans[0].Text)
}

func TestColorizeGoKeywordsAndTypes(t *testing.T) {
	e := NewEngine()
	line := `func main() int { var x int }`
	spans := e.Colorize(LangGo, line, line)

	assert.Equal(t, ClassKeyword, classAt(t, spans, "func"))
	assert.Equal(t, ClassKeyword, classAt(t, spans, "var"))
	assert.Equal(t, ClassType, classAt(t, spans, "int"))
}

func TestColorizeCPPMethodDefinition(t *testing.T) {
	e := NewEngine()
	line := `void EditBuffer::insertChar(char c) {`
	spans := e.Colorize(LangCPP, line, line)

	assert.Equal(t, ClassMethodDefinition, classAt(t, spans, "EditBuffer::insertChar"))
}

func TestColorizePreprocessorIncludeWholeLine(t *testing.T) {
	e := NewEngine()
	line := `#include <stdio.h>`
	spans := e.Colorize(LangC, line, line)

	require.Len(t, spans, 1)
	assert.Equal(t, ClassInclude, spans[0].Class)
}

// Exclusion-region safety: an unterminated string literal still produces a
// region that runs to end of line rather than panicking or corrupting
// later passes.
func TestColorizeUnterminatedStringIsSafe(t *testing.T) {
	e := NewEngine()
	line := `s := "never closed`
	assert.NotPanics(t, func() {
		spans := e.Colorize(LangGo, line, line)
		assert.Equal(t, ClassString, classAt(t, spans, `"never closed`))
	})
}

func TestColorizeRespectsExclusionRegionCap(t *testing.T) {
	e := NewEngine()
	line := ""
	for i := 0; i < 50; i++ {
		line += `"a" `
	}
	assert.NotPanics(t, func() {
		e.Colorize(LangGo, line, line)
	})
}

func TestColorizeMarkdownHeader(t *testing.T) {
	e := NewEngine()
	line := "## Section Title"
	spans := e.Colorize(LangMarkdown, line, line)

	require.Len(t, spans, 1)
	assert.Equal(t, ClassConstant, spans[0].Class)
}

func TestColorizeMakefileAutomaticVariable(t *testing.T) {
	e := NewEngine()
	line := "	$(CC) -o $@ $<"
	spans := e.Colorize(LangMakefile, line, line)

	assert.Equal(t, ClassConstant, classAt(t, spans, "$(CC)"))
}

func TestColorizeUnknownLanguageReturnsDefaultSpan(t *testing.T) {
	e := NewEngine()
	spans := e.Colorize(LangNone, "plain text", "plain text")
	require.Len(t, spans, 1)
	assert.Equal(t, ClassDefault, spans[0].Class)
}

func TestColorizeEmptyVisibleReturnsNil(t *testing.T) {
	e := NewEngine()
	assert.Nil(t, e.Colorize(LangGo, "full line", ""))
}
