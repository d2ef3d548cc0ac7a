package mode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/tvernon-cm/cm/internal/buffer"
	"github.com/tvernon-cm/cm/internal/complete"
)

// ErrorKind tags a CommandError with one of spec.md §7's taxonomy entries
// that are user-visible (input-range rejections are silent no-ops and
// never reach here).
type ErrorKind int

const (
	KindUserVisible ErrorKind = iota
	KindFileIO
	KindBridge
)

// CommandError is posted to the command-line message area; it never
// changes editor state itself.
type CommandError struct {
	Kind    ErrorKind
	Message string
}

func (e *CommandError) Error() string { return e.Message }

func userError(format string, args ...interface{}) error {
	return &CommandError{Kind: KindUserVisible, Message: fmt.Sprintf(format, args...)}
}

func fileError(format string, args ...interface{}) error {
	return &CommandError{Kind: KindFileIO, Message: fmt.Sprintf(format, args...)}
}

// buildCommandTable constructs the command-line surface named in spec.md
// §6.4, bound to this router's state.
func (r *Router) buildCommandTable() *complete.Table {
	return complete.NewTable([]complete.Entry{
		{Name: "find", ArgHint: "<pattern>", Handler: r.cmdFind},
		{Name: "replace", ArgHint: "<find> <replacement>", Handler: r.cmdReplace},
		{Name: "replace-all", ArgHint: "<find> <replacement>", Handler: r.cmdReplaceAll},
		{Name: "goto-line", ArgHint: "<n>", Handler: r.cmdGotoLine},
		{Name: "save", Handler: r.cmdSave},
		{Name: "save-as", ArgHint: "<path>", Handler: r.cmdSaveAs},
		{Name: "load", ArgHint: "<path>", Handler: r.cmdLoad},
		{Name: "buffer-next", Handler: r.cmdBufferNext},
		{Name: "buffer-prev", Handler: r.cmdBufferPrev},
		{Name: "buffer-new", Handler: r.cmdBufferNew},
		{Name: "buffer-list", Handler: r.cmdBufferList},
		{Name: "mark", Handler: r.cmdMark},
		{Name: "cut", Handler: r.cmdCut},
		{Name: "paste", Handler: r.cmdPaste},
		{Name: "quit", Handler: r.cmdQuit},
		{Name: "help", Handler: r.cmdHelp},
		{Name: "wc", Handler: r.cmdWordCount},
		{Name: "entab", Handler: r.cmdEntab},
		{Name: "detab", Handler: r.cmdDetab},
		{Name: "sys-copy", Handler: r.cmdSysCopy},
		{Name: "sys-paste", Handler: r.cmdSysPaste},
	})
}

func (r *Router) currentBuffer() (*buffer.Buffer, error) {
	b := r.list.Current()
	if b == nil {
		return nil, userError("no current buffer")
	}
	return b, nil
}

func (r *Router) cmdFind(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	if arg == "" {
		return userError("find: no pattern given")
	}
	if !b.FindString(arg) {
		return userError("find: %q not found", arg)
	}
	return nil
}

func splitTwoArgs(arg string) (string, string, bool) {
	parts := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *Router) cmdReplace(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	find, repl, ok := splitTwoArgs(arg)
	if !ok {
		return userError("replace: expected \"<find> <replacement>\"")
	}
	b.ReplaceString(find, repl)
	return nil
}

func (r *Router) cmdReplaceAll(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	find, repl, ok := splitTwoArgs(arg)
	if !ok {
		return userError("replace-all: expected \"<find> <replacement>\"")
	}
	b.ReplaceAll(find, repl)
	return nil
}

func (r *Router) cmdGotoLine(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(arg))
	if convErr != nil {
		return userError("goto-line: %q is not a number", arg)
	}
	b.GotoLine(n - 1)
	return nil
}

func (r *Router) cmdSave(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	if b.FilePath() == "" {
		return userError("save: no filename; use save-as")
	}
	if err := b.SaveText(b.FilePath()); err != nil {
		return fileError("save: %v", err)
	}
	return nil
}

func (r *Router) cmdSaveAs(arg string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	path := strings.TrimSpace(arg)
	if path == "" {
		return userError("save-as: no filename given")
	}
	if err := b.SaveText(path); err != nil {
		return fileError("save-as: %v", err)
	}
	return nil
}

func (r *Router) cmdLoad(arg string) error {
	path := strings.TrimSpace(arg)
	if path == "" {
		return userError("load: no filename given")
	}
	if existing := r.list.FindByPath(path); existing != nil {
		r.switchToBuffer(existing)
		return nil
	}
	b := buffer.New()
	if err := b.LoadText(path, true); err != nil {
		return fileError("load: %v", err)
	}
	r.list.Insert(b)
	r.switchToBuffer(b)
	return nil
}

func (r *Router) cmdBufferNext(string) error {
	r.list.Next()
	r.switchToBuffer(r.list.Current())
	return nil
}

func (r *Router) cmdBufferPrev(string) error {
	r.list.Previous()
	r.switchToBuffer(r.list.Current())
	return nil
}

func (r *Router) cmdBufferNew(string) error {
	b := buffer.New()
	r.list.Insert(b)
	r.switchToBuffer(b)
	return nil
}

func (r *Router) cmdBufferList(string) error {
	r.state = StateProjectView
	return nil
}

func (r *Router) cmdMark(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	b.SetMark()
	return nil
}

func (r *Router) cmdCut(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	text, _ := b.CutToMark()
	if text == "" {
		return userError("cut: no mark set")
	}
	r.killRing = text
	return nil
}

func (r *Router) cmdPaste(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	if r.killRing == "" {
		return userError("paste: nothing to paste")
	}
	b.Paste(r.killRing)
	return nil
}

func (r *Router) cmdQuit(string) error {
	r.quitRequested = true
	return nil
}

func (r *Router) cmdHelp(string) error {
	r.state = StateHelpView
	return nil
}

func (r *Router) cmdWordCount(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	lines, chars, words := b.Stats()
	return userError("%d lines, %d chars, %d words", lines, chars, words)
}

func (r *Router) cmdEntab(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	b.Entab()
	return nil
}

func (r *Router) cmdDetab(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	b.Detab()
	return nil
}

func (r *Router) cmdSysCopy(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	text := b.CopyToMark()
	if text == "" {
		return userError("sys-copy: no mark set")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fileError("sys-copy: %v", err)
	}
	return nil
}

func (r *Router) cmdSysPaste(string) error {
	b, err := r.currentBuffer()
	if err != nil {
		return err
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return fileError("sys-paste: %v", err)
	}
	b.Paste(text)
	return nil
}

// Execute runs a committed command-line input: the first whitespace
// delimited token (minus any trailing ':') selects the handler; the
// remainder of the line is its argument (spec.md §4.5).
func (r *Router) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.SplitN(line, " ", 2)
	name := strings.TrimSuffix(fields[0], ":")
	arg := ""
	if len(fields) == 2 {
		arg = fields[1]
	}
	entry, ok := r.completer.Lookup(name)
	if !ok {
		return userError("unknown command: %s", name)
	}
	return entry.Handler(arg)
}
