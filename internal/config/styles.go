package config

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tvernon-cm/cm/internal/markup"
)

// Style resolves a markup color class to a concrete terminal style for the
// given language, satisfying view.StyleSource.
func (d ProgramDefaults) Style(lang markup.Language, class markup.ColorClass) tcell.Style {
	set := d.colorSetFor(lang)
	base := tcell.StyleDefault
	switch class {
	case markup.ClassComment:
		return base.Foreground(set.CommentTextColor.TCellColor())
	case markup.ClassInclude:
		return base.Foreground(set.IncludeTextColor.TCellColor())
	case markup.ClassKeyword:
		return base.Foreground(set.KeywordTextColor.TCellColor())
	case markup.ClassType:
		return base.Foreground(set.TypeTextColor.TCellColor())
	case markup.ClassConstant:
		return base.Foreground(set.ConstantTextColor.TCellColor())
	case markup.ClassString:
		return base.Foreground(set.StringTextColor.TCellColor())
	case markup.ClassNumber:
		return base.Foreground(set.NumberTextColor.TCellColor())
	case markup.ClassMethodDefinition:
		return base.Foreground(set.MethodDefinitionTextColor.TCellColor())
	default:
		return base
	}
}

// GutterStyle is the line-number column's style.
func (d ProgramDefaults) GutterStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(d.Colors.LineNumberTextColor.TCellColor())
}

// CurrentLineStyle highlights the row the cursor sits on.
func (d ProgramDefaults) CurrentLineStyle() tcell.Style {
	return tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
}

// StatusStyle is the status/command line's style.
func (d ProgramDefaults) StatusStyle() tcell.Style {
	return tcell.StyleDefault.
		Foreground(d.Colors.StatusBarTextColor.TCellColor()).
		Background(d.Colors.StatusBarBackgroundColor.TCellColor())
}

// DefaultStyle is plain, uncolored text.
func (d ProgramDefaults) DefaultStyle() tcell.Style {
	return tcell.StyleDefault
}
