package buffer

import "strings"

// List is a named set of Buffers with a "current" selector (spec.md §3).
// The current index is valid whenever the list is non-empty; it is -1
// exactly when empty.
type List struct {
	buffers []*Buffer
	current int
}

// NewList creates an empty buffer list.
func NewList() *List {
	return &List{current: -1}
}

// Len returns the number of buffers in the list.
func (l *List) Len() int { return len(l.buffers) }

// Current returns the current buffer, or nil if the list is empty.
func (l *List) Current() *Buffer {
	if l.current < 0 || l.current >= len(l.buffers) {
		return nil
	}
	return l.buffers[l.current]
}

// CurrentIndex returns the current selector, -1 if the list is empty.
func (l *List) CurrentIndex() int { return l.current }

// All returns every buffer in insertion order. Callers must not mutate the
// returned slice.
func (l *List) All() []*Buffer { return l.buffers }

// Insert appends buf and makes it current.
func (l *List) Insert(buf *Buffer) {
	l.buffers = append(l.buffers, buf)
	l.current = len(l.buffers) - 1
}

// Remove removes the buffer at index i. If it was current, the new current
// becomes the following buffer, or the previous one if i was last.
func (l *List) Remove(i int) {
	if i < 0 || i >= len(l.buffers) {
		return
	}
	l.buffers = append(l.buffers[:i], l.buffers[i+1:]...)
	switch {
	case len(l.buffers) == 0:
		l.current = -1
	case i < l.current:
		l.current--
	case l.current >= len(l.buffers):
		l.current = len(l.buffers) - 1
	}
}

// Next makes the following buffer (wrapping) current.
func (l *List) Next() {
	if len(l.buffers) == 0 {
		return
	}
	l.current = (l.current + 1) % len(l.buffers)
}

// Previous makes the preceding buffer (wrapping) current.
func (l *List) Previous() {
	if len(l.buffers) == 0 {
		return
	}
	l.current = (l.current - 1 + len(l.buffers)) % len(l.buffers)
}

// FindByPath returns the buffer with an exact FilePath match.
func (l *List) FindByPath(path string) *Buffer {
	for _, b := range l.buffers {
		if b.filePath == path {
			return b
		}
	}
	return nil
}

// FindBySuffix returns the buffer whose path's final "/"-separated
// component matches name, or whose FilePath equals name exactly (tried
// first). Used by the agent bridge's buffer-resolution rule (spec.md
// §6.3): exact path, then suffix match.
func (l *List) FindBySuffix(name string) *Buffer {
	if b := l.FindByPath(name); b != nil {
		return b
	}
	for _, b := range l.buffers {
		if baseName(b.filePath) == name {
			return b
		}
	}
	return nil
}

// FindByID returns the buffer with the given BufferID.
func (l *List) FindByID(id string) *Buffer {
	for _, b := range l.buffers {
		if b.bufferID == id {
			return b
		}
	}
	return nil
}

// Resolve looks a buffer up by bridge-style identifier: exact path, then
// suffix, then buffer ID (spec.md §6.3).
func (l *List) Resolve(id string) *Buffer {
	if b := l.FindBySuffix(id); b != nil {
		return b
	}
	return l.FindByID(id)
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
