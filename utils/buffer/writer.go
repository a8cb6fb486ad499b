package buffer

import (
	"encoding/binary"
	"io"
)

// Writer is an interface for buffered writers: an io.Writer with a Flush.
// Both [Buffer] and bufio.Writer comply to it.
type Writer interface {
	io.Writer
	Flush() error
}

// WriteUint8 writes a single byte on w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {
	nint, err := w.Write([]byte{c})
	return int64(nint), err
}

// WriteUint64 writes a little-endian uint64 on w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], c)
	nint, err := w.Write(b[:])
	return int64(nint), err
}

// WriteInt writes an int as a little-endian uint64 on w.
func WriteInt(w Writer, c int) (n int64, err error) {
	return WriteUint64(w, uint64(c))
}

// WriteUint64Slice writes a slice of little-endian uint64 on w, without
// length prefix.
func WriteUint64Slice(w Writer, s []uint64) (n int64, err error) {
	var b [8]byte
	var inc int
	for _, c := range s {
		binary.LittleEndian.PutUint64(b[:], c)
		if inc, err = w.Write(b[:]); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)
	}
	return
}

// WriteIntSlice writes a slice of int as little-endian uint64 on w, without
// length prefix.
func WriteIntSlice(w Writer, s []int) (n int64, err error) {
	var inc int64
	for _, c := range s {
		if inc, err = WriteUint64(w, uint64(c)); err != nil {
			return n + inc, err
		}
		n += inc
	}
	return
}
