package markup

import (
	"strings"
	"unicode"
)

// ColorClass names a highlighting color bucket. The view package maps each
// class to a concrete tcell.Style via the active config's per-language
// color set; markup itself never touches the terminal.
type ColorClass int

const (
	ClassDefault ColorClass = iota
	ClassComment
	ClassInclude
	ClassKeyword
	ClassType
	ClassConstant
	ClassString
	ClassNumber
	ClassMethodDefinition
)

// Span is a maximal run of a visible line sharing one ColorClass.
type Span struct {
	Text  string
	Class ColorClass
}

type regionKind int

const (
	regionString regionKind = iota
	regionChar
	regionComment
)

type region struct {
	start, end int // rune offsets into the visible slice, end exclusive
	kind       regionKind
}

const maxExclusionRegions = 32

// Engine holds no per-buffer state; a Language is threaded through every
// call so one Engine serves every open buffer.
type Engine struct{}

// NewEngine returns a colorizer engine.
func NewEngine() *Engine { return &Engine{} }

// Colorize returns the color spans for the visible slice of a line. fullLine
// is the complete (unscrolled) line text: a `//` comment that starts before
// the horizontally-scrolled window still colors the visible tail, so the
// whole-line classification looks at fullLine while every other pass works
// on the visible slice (spec.md §4.3).
func (e *Engine) Colorize(lang Language, fullLine, visible string) []Span {
	s, ok := lang.syntax()
	if !ok || visible == "" {
		if visible == "" {
			return nil
		}
		return []Span{{Text: visible, Class: ClassDefault}}
	}

	if cls, whole := wholeLineClass(s, fullLine); whole {
		return []Span{{Text: visible, Class: cls}}
	}

	runes := []rune(visible)
	classes := make([]ColorClass, len(runes))

	regions := findExclusionRegions(s, runes)

	colorizeNumbers(runes, classes, regions)
	colorizeWords(s, runes, classes, regions)
	if s.name == "cpp" || s.name == "c" {
		colorizeMethodDefinitions(runes, classes, regions)
	}
	applyRegions(runes, classes, regions)
	applyLanguageExtras(s, runes, classes)

	return mergeSpans(runes, classes)
}

// wholeLineClass reports whether the first non-blank token of the full line
// marks the entire line as a comment or a preprocessor include/directive.
func wholeLineClass(s syntax, fullLine string) (ColorClass, bool) {
	trimmed := strings.TrimLeft(fullLine, " \t")
	switch {
	case s.lineComment != "" && strings.HasPrefix(trimmed, s.lineComment):
		return ClassComment, true
	case s.preprocessorHash && strings.HasPrefix(trimmed, "#"):
		return ClassInclude, true
	default:
		return ClassDefault, false
	}
}

// findExclusionRegions locates string literals, char literals, and trailing
// line comments within the visible slice, capped at maxExclusionRegions.
func findExclusionRegions(s syntax, runes []rune) []region {
	var regions []region
	i := 0
	for i < len(runes) && len(regions) < maxExclusionRegions {
		switch {
		case s.lineComment != "" && hasPrefixAt(runes, i, s.lineComment):
			regions = append(regions, region{start: i, end: len(runes), kind: regionComment})
			i = len(runes)
		case runes[i] == '"':
			end := closingQuote(runes, i, '"')
			regions = append(regions, region{start: i, end: end, kind: regionString})
			i = end
		case runes[i] == '\'' && (s.name == "c" || s.name == "cpp" || s.name == "go" || s.name == "rust" || s.name == "java" || s.name == "javascript"):
			end := closingQuote(runes, i, '\'')
			regions = append(regions, region{start: i, end: end, kind: regionChar})
			i = end
		default:
			i++
		}
	}
	return regions
}

func hasPrefixAt(runes []rune, i int, prefix string) bool {
	p := []rune(prefix)
	if i+len(p) > len(runes) {
		return false
	}
	for k, pr := range p {
		if runes[i+k] != pr {
			return false
		}
	}
	return true
}

// closingQuote scans from an opening quote at i for its closing match,
// honoring backslash escapes. Returns len(runes) if unterminated.
func closingQuote(runes []rune, i int, quote rune) int {
	j := i + 1
	for j < len(runes) {
		if runes[j] == '\\' {
			j += 2
			continue
		}
		if runes[j] == quote {
			return j + 1
		}
		j++
	}
	return len(runes)
}

func inRegion(regions []region, i int) bool {
	for _, r := range regions {
		if i >= r.start && i < r.end {
			return true
		}
	}
	return false
}

// colorizeNumbers marks runs starting with a digit (continuing through
// digits, '.', 'x'/'X', hex letters a-f/A-F, and '_'; no sign is included)
// not already inside an exclusion region.
// Numbers are colored before keywords so a keyword pass never reclassifies
// a digit run.
func colorizeNumbers(runes []rune, classes []ColorClass, regions []region) {
	i := 0
	for i < len(runes) {
		if inRegion(regions, i) || !unicode.IsDigit(runes[i]) {
			i++
			continue
		}
		if i > 0 && (unicode.IsLetter(runes[i-1]) || unicode.IsDigit(runes[i-1]) || runes[i-1] == '_') {
			i++
			continue
		}
		j := i
		for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == 'x' || runes[j] == 'X' ||
			(runes[j] >= 'a' && runes[j] <= 'f') || (runes[j] >= 'A' && runes[j] <= 'F') || runes[j] == '_') {
			j++
		}
		for k := i; k < j; k++ {
			classes[k] = ClassNumber
		}
		i = j
	}
}

// colorizeWords matches whole-word keyword/type/constant identifiers,
// skipping exclusion regions and runs already classed as numbers.
func colorizeWords(s syntax, runes []rune, classes []ColorClass, regions []region) {
	kw := wordSet(s.keywords)
	ty := wordSet(s.types)
	ct := wordSet(s.constants)

	i := 0
	for i < len(runes) {
		if inRegion(regions, i) || !isIdentStart(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && isIdentPart(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		var cls ColorClass
		switch {
		case kw[word]:
			cls = ClassKeyword
		case ty[word]:
			cls = ClassType
		case ct[word]:
			cls = ClassConstant
		}
		if cls != ClassDefault {
			for k := i; k < j; k++ {
				if classes[k] == ClassDefault {
					classes[k] = cls
				}
			}
		}
		i = j
	}
}

// colorizeMethodDefinitions marks `Qualifier::Member` sequences (C++ scope
// resolution, e.g. `EditBuffer::insertChar`) as method definitions.
func colorizeMethodDefinitions(runes []rune, classes []ColorClass, regions []region) {
	i := 0
	for i < len(runes)-1 {
		if runes[i] == ':' && runes[i+1] == ':' && !inRegion(regions, i) {
			start := i
			for start > 0 && isIdentPart(runes[start-1]) {
				start--
			}
			end := i + 2
			for end < len(runes) && isIdentPart(runes[end]) {
				end++
			}
			if start < i && end > i+2 {
				for k := start; k < end; k++ {
					classes[k] = ClassMethodDefinition
				}
			}
			i = end
			continue
		}
		i++
	}
}

// applyRegions overlays exclusion regions with their string/char/comment
// class, overwriting whatever the earlier passes assigned (those passes
// already skip region interiors, so this only ever fills untouched runs).
func applyRegions(runes []rune, classes []ColorClass, regions []region) {
	for _, r := range regions {
		cls := ClassString
		if r.kind == regionComment {
			cls = ClassComment
		}
		for k := r.start; k < r.end && k < len(runes); k++ {
			classes[k] = cls
		}
	}
}

func applyLanguageExtras(s syntax, runes []rune, classes []ColorClass) {
	switch s.name {
	case "markdown":
		colorizeMarkdownLine(runes, classes)
	case "makefile":
		colorizeMakefileLine(runes, classes)
	case "python":
		colorizePythonDecorator(runes, classes)
	}
}

// colorizeMarkdownLine highlights ATX headers (# through ######) as
// constants and inline `code spans` as strings.
func colorizeMarkdownLine(runes []rune, classes []ColorClass) {
	i := 0
	for i < len(runes) && runes[i] == '#' {
		i++
	}
	if i > 0 && i <= 6 && (i == len(runes) || runes[i] == ' ') {
		for k := 0; k < len(runes); k++ {
			classes[k] = ClassConstant
		}
	}
	inCode := false
	start := 0
	for k, r := range runes {
		if r == '`' {
			if inCode {
				for m := start; m <= k; m++ {
					classes[m] = ClassString
				}
				inCode = false
			} else {
				start = k
				inCode = true
			}
		}
	}
}

// colorizeMakefileLine highlights `$(VAR)`, `${VAR}`, and the automatic
// variables $@ $< $^ as constants.
func colorizeMakefileLine(runes []rune, classes []ColorClass) {
	i := 0
	for i < len(runes) {
		if runes[i] != '$' || i+1 >= len(runes) {
			i++
			continue
		}
		switch runes[i+1] {
		case '(', '{':
			close := byte(')')
			if runes[i+1] == '{' {
				close = '}'
			}
			end := i + 2
			for end < len(runes) && byte(runes[end]) != close {
				end++
			}
			if end < len(runes) {
				end++
			}
			for k := i; k < end && k < len(runes); k++ {
				classes[k] = ClassConstant
			}
			i = end
		case '@', '<', '^', '*':
			classes[i] = ClassConstant
			classes[i+1] = ClassConstant
			i += 2
		default:
			i++
		}
	}
}

// colorizePythonDecorator marks a leading `@decorator` token as a constant.
func colorizePythonDecorator(runes []rune, classes []ColorClass) {
	i := 0
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
		i++
	}
	if i >= len(runes) || runes[i] != '@' {
		return
	}
	j := i + 1
	for j < len(runes) && isIdentPart(runes[j]) {
		j++
	}
	for k := i; k < j; k++ {
		classes[k] = ClassConstant
	}
}

func wordSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		if w != "" {
			m[w] = true
		}
	}
	return m
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func mergeSpans(runes []rune, classes []ColorClass) []Span {
	if len(runes) == 0 {
		return nil
	}
	var spans []Span
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || classes[i] != classes[start] {
			spans = append(spans, Span{Text: string(runes[start:i]), Class: classes[start]})
			start = i
		}
	}
	return spans
}
