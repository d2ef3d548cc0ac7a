package bridge

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvernon-cm/cm/internal/buffer"
)

func newListWithBuffer(t *testing.T, text string) (*buffer.List, *buffer.Buffer) {
	t.Helper()
	list := buffer.NewList()
	b := buffer.New()
	for _, r := range text {
		if r == '\n' {
			b.InsertNewline()
			continue
		}
		b.InsertChar(r)
	}
	b.GotoLine(0)
	list.Insert(b)
	return list, b
}

func TestDispatchListBuffers(t *testing.T) {
	list, b := newListWithBuffer(t, "one\ntwo")
	resp := Dispatch(list, Request{ID: 1, Cmd: "list_buffers"})

	require.True(t, resp.OK)
	summaries := resp.Data.([]BufferSummary)
	require.Len(t, summaries, 1)
	assert.Equal(t, b.BufferID(), summaries[0].BufferID)
}

func TestDispatchGetBufferRange(t *testing.T) {
	list, b := newListWithBuffer(t, "one\ntwo\nthree")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "start_line": 2, "end_line": 3})
	resp := Dispatch(list, Request{ID: 2, Cmd: "get_buffer_range", Args: args})

	require.True(t, resp.OK)
	assert.Equal(t, "two\nthree", resp.Data)
}

func TestDispatchReplaceRange(t *testing.T) {
	list, b := newListWithBuffer(t, "one\ntwo\nthree")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "start_line": 2, "end_line": 2, "new_text": "TWO"})
	resp := Dispatch(list, Request{ID: 3, Cmd: "replace_range", Args: args})

	require.True(t, resp.OK)
	assert.Equal(t, "one\nTWO\nthree", b.FullText())
}

func TestDispatchFindInBuffer(t *testing.T) {
	list, b := newListWithBuffer(t, "foo\nbar foo\nbaz")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "pattern": "foo"})
	resp := Dispatch(list, Request{ID: 4, Cmd: "find_in_buffer", Args: args})

	require.True(t, resp.OK)
	found := resp.Data.([]FoundLine)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 2, found[1].Line)
}

func TestDispatchFindAndReplace(t *testing.T) {
	list, b := newListWithBuffer(t, "aa bb aa")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "pattern": "aa", "replacement": "X"})
	resp := Dispatch(list, Request{ID: 5, Cmd: "find_and_replace", Args: args})

	require.True(t, resp.OK)
	assert.Equal(t, "X bb X", b.FullText())
}

func TestDispatchFindInBufferCaseInsensitive(t *testing.T) {
	list, b := newListWithBuffer(t, "Foo\nbar FOO\nbaz")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "pattern": "foo", "case_insensitive": true})
	resp := Dispatch(list, Request{ID: 7, Cmd: "find_in_buffer", Args: args})

	require.True(t, resp.OK)
	found := resp.Data.([]FoundLine)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 2, found[1].Line)
}

func TestDispatchFindInBufferRegex(t *testing.T) {
	list, b := newListWithBuffer(t, "cat\nbat\ncar")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "pattern": "^[cb]at$", "is_regex": true})
	resp := Dispatch(list, Request{ID: 8, Cmd: "find_in_buffer", Args: args})

	require.True(t, resp.OK)
	found := resp.Data.([]FoundLine)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 2, found[1].Line)
}

func TestDispatchFindInBufferInvalidRegexFails(t *testing.T) {
	list, b := newListWithBuffer(t, "x")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "pattern": "(", "is_regex": true})
	resp := Dispatch(list, Request{ID: 9, Cmd: "find_in_buffer", Args: args})

	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestDispatchFindAndReplaceRegexWithMaxReplacements(t *testing.T) {
	list, b := newListWithBuffer(t, "a1 a2 a3")
	args, _ := json.Marshal(map[string]interface{}{
		"buffer_id": b.BufferID(), "pattern": "a[0-9]", "replacement": "X",
		"is_regex": true, "max_replacements": 2,
	})
	resp := Dispatch(list, Request{ID: 10, Cmd: "find_and_replace", Args: args})

	require.True(t, resp.OK)
	assert.Equal(t, "X X a3", b.FullText())
	assert.Equal(t, map[string]int{"replacements": 2}, resp.Data)
}

func TestDispatchInsertLinesReturnsDescriptiveData(t *testing.T) {
	list, b := newListWithBuffer(t, "one\ntwo")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "before_line": 2, "text": "alpha\nbeta"})
	resp := Dispatch(list, Request{ID: 11, Cmd: "insert_lines", Args: args})

	require.True(t, resp.OK)
	assert.Equal(t, "inserted 2 lines before line 2", resp.Data)
	assert.Equal(t, "one\nalpha\nbeta\ntwo", b.FullText())
}

func TestDispatchUnknownCommandFails(t *testing.T) {
	list, _ := newListWithBuffer(t, "x")
	resp := Dispatch(list, Request{ID: 6, Cmd: "does_not_exist"})
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestDispatchUnresolvedBufferFails(t *testing.T) {
	list, _ := newListWithBuffer(t, "x")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": "nope"})
	resp := Dispatch(list, Request{ID: 7, Cmd: "get_buffer", Args: args})
	assert.False(t, resp.OK)
}

func TestDispatchGotoLineAndGetCursor(t *testing.T) {
	list, b := newListWithBuffer(t, "one\ntwo\nthree")
	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID(), "line": 3})
	resp := Dispatch(list, Request{ID: 8, Cmd: "goto_line", Args: args})
	require.True(t, resp.OK)

	cursorArgs, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID()})
	resp = Dispatch(list, Request{ID: 9, Cmd: "get_cursor", Args: cursorArgs})
	require.True(t, resp.OK)
	cur := resp.Data.(CursorInfo)
	assert.Equal(t, 3, cur.Line)
}

// End-to-end: a TCP client sends a newline-delimited request, the main
// thread drains and dispatches it, and the client reads back the response.
func TestBridgeServeDrainRoundTrip(t *testing.T) {
	list, b := newListWithBuffer(t, "hello")

	br := New(0)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	br.listener = listener
	go br.acceptLoop(listener)
	defer br.Shutdown()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	args, _ := json.Marshal(map[string]interface{}{"buffer_id": b.BufferID()})
	req := Request{ID: 42, Cmd: "get_buffer", Args: args}
	reqBytes, _ := json.Marshal(req)
	_, err = conn.Write(append(reqBytes, '\n'))
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for !br.DrainOne(func(r Request) Response { return Dispatch(list, r) }) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for pending request")
		}
		time.Sleep(time.Millisecond)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "hello", resp.Data)
}
