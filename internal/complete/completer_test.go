package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable([]Entry{
		{Name: "buffer-list"},
		{Name: "buffer-next"},
		{Name: "goto-line"},
		{Name: "find"},
		{Name: "save"},
	})
}

func TestFindMatchesLiteralPrefix(t *testing.T) {
	tbl := sampleTable()
	matches := tbl.FindMatches("sav")
	require.Len(t, matches, 1)
	assert.Equal(t, "save", matches[0].Name)
}

// "bl" matches "buffer-list" via its acronym; the dehyphenated name
// "bufferlist" does not start with "bl".
func TestFindMatchesAcronymOfBufferList(t *testing.T) {
	tbl := sampleTable()
	matches := tbl.FindMatches("bl")
	require.Len(t, matches, 1)
	assert.Equal(t, "buffer-list", matches[0].Name)
}

// "gl" matches "goto-line" via its acronym.
func TestFindMatchesAcronym(t *testing.T) {
	tbl := sampleTable()
	matches := tbl.FindMatches("gl")
	require.Len(t, matches, 1)
	assert.Equal(t, "goto-line", matches[0].Name)
}

func TestCompletePrefixSingleMatchReturnsFullName(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, "find", tbl.CompletePrefix("fi"))
}

func TestCompletePrefixMultipleMatchesReturnsLongestCommonPrefix(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, "buffer-", tbl.CompletePrefix("buff"))
}

func TestCompletePrefixNoMatchReturnsInputUnchanged(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, "zzz", tbl.CompletePrefix("zzz"))
}

func TestChildCompleterRegistrationAndLookup(t *testing.T) {
	parent := sampleTable()
	child := NewTable([]Entry{{Name: "box-double"}, {Name: "box-single"}})
	parent.AddChild("utf-symbol", child)

	got, ok := parent.Child("utf-symbol")
	require.True(t, ok)
	assert.Same(t, child, got)

	matches := got.FindMatches("box-d")
	require.Len(t, matches, 1)
	assert.Equal(t, "box-double", matches[0].Name)
}

func TestLookupStripsTrailingColon(t *testing.T) {
	tbl := sampleTable()
	e, ok := tbl.Lookup("save:")
	require.True(t, ok)
	assert.Equal(t, "save", e.Name)
}

func TestLookupUnknownNameFails(t *testing.T) {
	tbl := sampleTable()
	_, ok := tbl.Lookup("nonexistent")
	assert.False(t, ok)
}
