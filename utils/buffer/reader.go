package buffer

import (
	"encoding/binary"
	"io"
)

// Reader is an interface for readers that can consume exact amounts of
// bytes. Both [Buffer] and bufio.Reader comply to it.
type Reader interface {
	io.Reader
}

// ReadUint8 reads a single byte from r.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {
	var b [1]byte
	nint, err := io.ReadFull(r, b[:])
	*c = b[0]
	return int64(nint), err
}

// ReadUint64 reads a little-endian uint64 from r.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {
	var b [8]byte
	nint, err := io.ReadFull(r, b[:])
	if err != nil {
		return int64(nint), err
	}
	*c = binary.LittleEndian.Uint64(b[:])
	return int64(nint), nil
}

// ReadInt reads a little-endian uint64 from r and stores it as an int.
func ReadInt(r Reader, c *int) (n int64, err error) {
	var u uint64
	if n, err = ReadUint64(r, &u); err != nil {
		return
	}
	*c = int(u)
	return
}

// ReadUint64Slice reads len(s) little-endian uint64 from r.
func ReadUint64Slice(r Reader, s []uint64) (n int64, err error) {
	var inc int64
	for i := range s {
		if inc, err = ReadUint64(r, &s[i]); err != nil {
			return n + inc, err
		}
		n += inc
	}
	return
}

// ReadIntSlice reads len(s) little-endian uint64 from r and stores them as
// int.
func ReadIntSlice(r Reader, s []int) (n int64, err error) {
	var inc int64
	var u uint64
	for i := range s {
		if inc, err = ReadUint64(r, &u); err != nil {
			return n + inc, err
		}
		s[i] = int(u)
		n += inc
	}
	return
}
