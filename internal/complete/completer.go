// Package complete implements command-line completion over a static
// CommandEntry table: literal, dehyphenated, and acronym prefix matching,
// longest-common-prefix completion, and child completers for
// symbol-argument commands (spec.md §4.4).
package complete

import "strings"

// Handler executes a command given its argument remainder.
type Handler func(arg string) error

// Entry describes one completable command.
type Entry struct {
	Name            string
	ArgHint         string
	Description     string
	SymbolArg       bool
	ChildCompleter  string // tag naming a second table, set when SymbolArg
	Handler         Handler
}

// Table is an ordered, named set of entries plus any child tables it owns.
type Table struct {
	entries  []Entry
	children map[string]*Table
}

// NewTable builds a completer table from entries.
func NewTable(entries []Entry) *Table {
	return &Table{entries: entries, children: make(map[string]*Table)}
}

// AddChild registers a child table under tag, looked up when a SymbolArg
// command is chosen.
func (t *Table) AddChild(tag string, child *Table) {
	t.children[tag] = child
}

// Child returns the child table registered under tag, if any.
func (t *Table) Child(tag string) (*Table, bool) {
	c, ok := t.children[tag]
	return c, ok
}

func dehyphen(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

func acronym(name string) string {
	var b strings.Builder
	for _, seg := range strings.Split(name, "-") {
		if seg != "" {
			b.WriteByte(seg[0])
		}
	}
	return b.String()
}

// matches reports whether prefix p selects name under any of the three
// rules: literal prefix, dehyphenated prefix, or acronym prefix.
func matches(p, name string) bool {
	if p == "" {
		return true
	}
	if strings.HasPrefix(name, p) {
		return true
	}
	if strings.HasPrefix(dehyphen(name), dehyphen(p)) {
		return true
	}
	if strings.HasPrefix(acronym(name), p) {
		return true
	}
	return false
}

// FindMatches returns every entry whose name satisfies any matching rule
// against p.
func (t *Table) FindMatches(p string) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if matches(p, e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// CompletePrefix returns the longest common prefix (taken over the raw
// entry names) of every entry matching p. If exactly one entry matches, it
// returns that entry's full name. Matching itself still tolerates
// dehyphenated/acronym prefixes, but the returned prefix preserves any
// hyphen the matches agree on, so completing "buff" against "buffer-list"/
// "buffer-next"/"buffer-prev"/"buffer-new" yields "buffer-", not "buffer".
func (t *Table) CompletePrefix(p string) string {
	found := t.FindMatches(p)
	if len(found) == 0 {
		return p
	}
	if len(found) == 1 {
		return found[0].Name
	}
	lcp := found[0].Name
	for _, e := range found[1:] {
		lcp = commonPrefix(lcp, e.Name)
		if lcp == "" {
			break
		}
	}
	return lcp
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// Lookup returns the single entry exactly matching name (after stripping a
// trailing ':'), if any — used once the command line is committed.
func (t *Table) Lookup(name string) (Entry, bool) {
	name = strings.TrimSuffix(name, ":")
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
