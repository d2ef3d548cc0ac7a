// Package config implements ProgramDefaults: the .cmrc JSON configuration
// file, its color parsing, and the per-language syntax color sets used by
// internal/view and internal/markup (spec.md §6.2).
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/tvernon-cm/cm/internal/markup"
)

// Color is a parsed UI color, decoded from one of three wire forms:
// "ANSI:<name>", "XTERM256:<name>", "RGB:<r>,<g>,<b>".
type Color struct {
	raw   string
	style tcell.Color
}

// TCellColor returns the resolved tcell.Color, defaulting to
// tcell.ColorDefault for an unset Color.
func (c Color) TCellColor() tcell.Color {
	if c.raw == "" {
		return tcell.ColorDefault
	}
	return c.style
}

// MarshalJSON/UnmarshalJSON let Color round-trip through the config file
// as its wire string form.
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.raw)), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor decodes one of the three wire color forms.
func ParseColor(s string) (Color, error) {
	if s == "" {
		return Color{}, nil
	}
	switch {
	case strings.HasPrefix(s, "ANSI:"):
		name := strings.TrimPrefix(s, "ANSI:")
		return Color{raw: s, style: tcell.GetColor(strings.ToLower(name))}, nil
	case strings.HasPrefix(s, "XTERM256:"):
		name := strings.TrimPrefix(s, "XTERM256:")
		n, err := strconv.Atoi(name)
		if err != nil {
			// not numeric: treat as a named xterm color (tcell resolves both).
			return Color{raw: s, style: tcell.GetColor(strings.ToLower(name))}, nil
		}
		return Color{raw: s, style: tcell.PaletteColor(n)}, nil
	case strings.HasPrefix(s, "RGB:"):
		parts := strings.Split(strings.TrimPrefix(s, "RGB:"), ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid RGB color %q", s)
		}
		var rgb [3]int32
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return Color{}, fmt.Errorf("invalid RGB component in %q: %w", s, err)
			}
			rgb[i] = int32(n)
		}
		return Color{raw: s, style: tcell.NewRGBColor(rgb[0], rgb[1], rgb[2])}, nil
	default:
		return Color{}, fmt.Errorf("unrecognized color form %q", s)
	}
}

// UIColors holds the non-syntax color slots (spec.md §6.2).
type UIColors struct {
	StatusBarTextColor          Color `json:"statusBarTextColor"`
	StatusBarBackgroundColor    Color `json:"statusBarBackgroundColor"`
	LineNumberTextColor         Color `json:"lineNumberTextColor"`
	CommandLineMessageTextColor Color `json:"commandLineMessageTextColor"`
}

// SyntaxColorSet holds one language's eight color-class slots.
type SyntaxColorSet struct {
	CommentTextColor          Color `json:"commentTextColor"`
	IncludeTextColor          Color `json:"includeTextColor"`
	KeywordTextColor          Color `json:"keywordTextColor"`
	TypeTextColor             Color `json:"typeTextColor"`
	ConstantTextColor         Color `json:"constantTextColor"`
	StringTextColor           Color `json:"stringTextColor"`
	NumberTextColor           Color `json:"numberTextColor"`
	MethodDefinitionTextColor Color `json:"methodDefinitionTextColor"`
}

// ProgramDefaults is the immutable, process-wide configuration value
// constructed at startup and passed by reference to every component that
// needs a color lookup (spec.md §9's "Global defaults" design note).
type ProgramDefaults struct {
	Tabs                   int                       `json:"tabs"`
	JumpScroll             bool                       `json:"jumpscroll"`
	ShowLineNumbers        bool                       `json:"showLineNumbers"`
	ColorizeSyntax         bool                       `json:"colorizeSyntax"`
	LiveStatusLines        bool                       `json:"liveStatusLines"`
	AutoSaveOnBufferChange bool                       `json:"autoSaveOnBufferChange"`
	Colors                 UIColors                   `json:"colors"`
	SyntaxColors           map[string]SyntaxColorSet `json:"syntaxColors"`
}

// Bootstrap returns the defaults written to a fresh .cmrc on first run.
func Bootstrap() ProgramDefaults {
	return ProgramDefaults{
		Tabs:            4,
		JumpScroll:       false,
		ShowLineNumbers: true,
		ColorizeSyntax:  true,
		LiveStatusLines: true,
		Colors: UIColors{
			StatusBarTextColor:       mustColor("ANSI:white"),
			StatusBarBackgroundColor: mustColor("ANSI:blue"),
			LineNumberTextColor:      mustColor("ANSI:gray"),
			CommandLineMessageTextColor: mustColor("ANSI:yellow"),
		},
		SyntaxColors: map[string]SyntaxColorSet{
			"default": {
				CommentTextColor:          mustColor("ANSI:green"),
				IncludeTextColor:          mustColor("ANSI:magenta"),
				KeywordTextColor:          mustColor("ANSI:blue"),
				TypeTextColor:             mustColor("ANSI:cyan"),
				ConstantTextColor:         mustColor("ANSI:red"),
				StringTextColor:           mustColor("ANSI:yellow"),
				NumberTextColor:           mustColor("ANSI:red"),
				MethodDefinitionTextColor: mustColor("ANSI:cyan"),
			},
		},
	}
}

func mustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// colorSetFor returns the per-language color set, falling back to
// "default" for missing slots and unknown languages.
func (d ProgramDefaults) colorSetFor(lang markup.Language) SyntaxColorSet {
	def := d.SyntaxColors["default"]
	name := lang.Name()
	if name == "" {
		return def
	}
	set, ok := d.SyntaxColors[name]
	if !ok {
		return def
	}
	return mergeWithDefault(set, def)
}

// mergeWithDefault fills any zero-value Color slots in set from def
// ("Missing per-language entries inherit from default", spec.md §6.2).
func mergeWithDefault(set, def SyntaxColorSet) SyntaxColorSet {
	fill := func(c, d Color) Color {
		if c.raw == "" {
			return d
		}
		return c
	}
	return SyntaxColorSet{
		CommentTextColor:          fill(set.CommentTextColor, def.CommentTextColor),
		IncludeTextColor:          fill(set.IncludeTextColor, def.IncludeTextColor),
		KeywordTextColor:          fill(set.KeywordTextColor, def.KeywordTextColor),
		TypeTextColor:             fill(set.TypeTextColor, def.TypeTextColor),
		ConstantTextColor:         fill(set.ConstantTextColor, def.ConstantTextColor),
		StringTextColor:           fill(set.StringTextColor, def.StringTextColor),
		NumberTextColor:           fill(set.NumberTextColor, def.NumberTextColor),
		MethodDefinitionTextColor: fill(set.MethodDefinitionTextColor, def.MethodDefinitionTextColor),
	}
}
