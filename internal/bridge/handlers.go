package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tvernon-cm/cm/internal/buffer"
)

// Dispatch resolves req.Cmd's target buffer, executes it against list, and
// returns the wire response. It never touches the terminal; the caller
// (the main loop) redraws afterward.
func Dispatch(list *buffer.List, req Request) Response {
	handler, ok := handlers[req.Cmd]
	if !ok {
		return errResponse(req.ID, fmt.Errorf("unknown command %q", req.Cmd))
	}
	data, err := handler(list, req.Args)
	if err != nil {
		return errResponse(req.ID, err)
	}
	return okResponse(req.ID, data)
}

type handlerFunc func(list *buffer.List, args json.RawMessage) (interface{}, error)

var handlers = map[string]handlerFunc{
	"list_buffers":     listBuffers,
	"get_buffer":       getBuffer,
	"get_buffer_range": getBufferRange,
	"replace_range":    replaceRange,
	"insert_lines":     insertLines,
	"delete_lines":     deleteLines,
	"find_in_buffer":   findInBuffer,
	"find_and_replace": findAndReplace,
	"open_file":        openFile,
	"save_buffer":      saveBuffer,
	"get_cursor":       getCursor,
	"goto_line":        gotoLine,
}

func resolve(list *buffer.List, bufferID string) (*buffer.Buffer, error) {
	b := list.Resolve(bufferID)
	if b == nil {
		return nil, fmt.Errorf("no buffer matches %q", bufferID)
	}
	return b, nil
}

func decode(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

func listBuffers(list *buffer.List, _ json.RawMessage) (interface{}, error) {
	out := make([]BufferSummary, 0, list.Len())
	for _, b := range list.All() {
		out = append(out, BufferSummary{BufferID: b.BufferID(), Path: b.FilePath(), Modified: b.Touched()})
	}
	return out, nil
}

func getBuffer(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID string `json:"buffer_id"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	return b.FullText(), nil
}

func getBufferRange(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID  string `json:"buffer_id"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	return b.TextRange(a.StartLine-1, a.EndLine-1), nil
}

func replaceRange(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID  string `json:"buffer_id"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
		NewText   string `json:"new_text"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	b.ReplaceLineRange(a.StartLine-1, a.EndLine-1, a.NewText)
	return nil, nil
}

func insertLines(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID   string `json:"buffer_id"`
		BeforeLine int    `json:"before_line"`
		Text       string `json:"text"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	b.InsertLinesBefore(a.BeforeLine-1, a.Text)
	n := strings.Count(a.Text, "\n") + 1
	return fmt.Sprintf("inserted %d lines before line %d", n, a.BeforeLine), nil
}

func deleteLines(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID string `json:"buffer_id"`
		Start    int    `json:"start"`
		End      int    `json:"end"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	b.DeleteLineRange(a.Start-1, a.End-1)
	return nil, nil
}

// findInBuffer implements find_in_buffer (spec.md §6.3): is_regex selects
// Go's RE2 engine over the pattern (the "simple-regex" option — no
// backreferences or lookaround, same ceiling RE2 itself imposes),
// case_insensitive folds case in either mode.
func findInBuffer(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID        string `json:"buffer_id"`
		Pattern         string `json:"pattern"`
		IsRegex         bool   `json:"is_regex"`
		CaseInsensitive bool   `json:"case_insensitive"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	matches, err := b.FindAllMatchesOpt(a.Pattern, a.CaseInsensitive, a.IsRegex)
	if err != nil {
		return nil, err
	}
	var out []FoundLine
	for _, pos := range matches {
		out = append(out, FoundLine{Line: pos.Row + 1, Text: b.Line(pos.Row).String()})
	}
	return out, nil
}

func findAndReplace(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID        string `json:"buffer_id"`
		Pattern         string `json:"pattern"`
		Replacement     string `json:"replacement"`
		IsRegex         bool   `json:"is_regex"`
		CaseInsensitive bool   `json:"case_insensitive"`
		MaxReplacements int    `json:"max_replacements"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	count, err := b.ReplaceAllFromStartOpt(a.Pattern, a.Replacement, a.CaseInsensitive, a.IsRegex, a.MaxReplacements)
	if err != nil {
		return nil, err
	}
	return map[string]int{"replacements": count}, nil
}

func openFile(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		Path string `json:"path"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if existing := list.FindByPath(a.Path); existing != nil {
		return BufferSummary{BufferID: existing.BufferID(), Path: existing.FilePath(), Modified: existing.Touched()}, nil
	}
	b := buffer.New()
	if err := b.LoadText(a.Path, true); err != nil {
		return nil, err
	}
	list.Insert(b)
	return BufferSummary{BufferID: b.BufferID(), Path: b.FilePath(), Modified: b.Touched()}, nil
}

func saveBuffer(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID string `json:"buffer_id"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	if err := b.SaveText(b.FilePath()); err != nil {
		return nil, err
	}
	return nil, nil
}

func getCursor(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID string `json:"buffer_id"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	cur := b.Cursor()
	return CursorInfo{BufferID: b.BufferID(), Line: cur.Row + 1, Col: cur.Col + 1}, nil
}

func gotoLine(list *buffer.List, args json.RawMessage) (interface{}, error) {
	var a struct {
		BufferID string `json:"buffer_id"`
		Line     int    `json:"line"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	b, err := resolve(list, a.BufferID)
	if err != nil {
		return nil, err
	}
	b.GotoLine(a.Line - 1)
	return nil, nil
}
