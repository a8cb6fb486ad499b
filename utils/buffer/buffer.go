// Package buffer provides a simple in-memory buffer implementing both the
// [Writer] and [Reader] interfaces, along with helper functions to read and
// write base types and slices of base types on them.
//
// All encodings are little-endian.
package buffer

import (
	"fmt"
)

// Buffer is a simple []byte-based buffer that complies to the [Writer] and
// [Reader] interfaces. Writes append at the end of the internal slice and
// reads consume from the front.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer creates a new [Buffer] reading from and writing on the provided
// slice. The slice is not copied.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// NewBufferSize creates a new empty [Buffer] with the provided capacity.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// Bytes returns the unread portion of the internal slice.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Write appends p at the end of the internal slice.
// It implements the io.Writer interface.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Read consumes len(p) bytes from the front of the unread portion. If fewer
// remain, it copies them into p, returns an error and consumes nothing.
// It implements the io.Reader interface.
func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.buf[b.off:])
	if n < len(p) {
		return n, fmt.Errorf("buffer: not enough bytes: have %d, need %d", n, len(p))
	}
	b.off += n
	return
}

// Flush is a no-op on a [Buffer]. It implements the [Writer] interface.
func (b *Buffer) Flush() error {
	return nil
}

// Size returns the number of unread bytes.
func (b *Buffer) Size() int {
	return len(b.buf) - b.off
}
