package steenrod

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sseq-go/adams/utils/buffer"
)

// Bytes returns the raw little-endian encoding of the element: the packed
// words of its monomials in block order, with no separators or length prefix.
// This is the persisted blob format; the length is implied by the blob size.
func (x Mod) Bytes() []byte {
	b := make([]byte, 8*len(x))
	for i, t := range x {
		binary.LittleEndian.PutUint64(b[8*i:], uint64(t))
	}
	return b
}

// ModFromBytes decodes a blob produced by [Mod.Bytes].
func ModFromBytes(b []byte) (Mod, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("steenrod: blob size %d is not a multiple of 8", len(b))
	}
	x := make(Mod, len(b)/8)
	for i := range x {
		x[i] = MMod(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return x, nil
}

// BinarySize returns the serialized size of the element in bytes.
func (x Mod) BinarySize() int {
	return 8 + 8*len(x)
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the [buffer.Writer] interface, it will be wrapped into
// a bufio.Writer. Since this requires allocations, it is preferable to pass
// a [buffer.Writer] directly.
func (x Mod) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteInt(w, len(x)); err != nil {
			return inc, fmt.Errorf("buffer.WriteInt: %w", err)
		}
		n += inc
		for _, t := range x {
			if inc, err = buffer.WriteUint64(w, uint64(t)); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
			}
			n += inc
		}
		return n, w.Flush()
	default:
		return x.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the [buffer.Reader] interface, it will be wrapped into
// a bufio.Reader. Since this requires allocations, it is preferable to pass
// a [buffer.Reader] directly.
func (x *Mod) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64
		var size int
		if inc, err = buffer.ReadInt(r, &size); err != nil {
			return inc, fmt.Errorf("buffer.ReadInt: %w", err)
		}
		n += inc
		if size < 0 {
			return n, fmt.Errorf("steenrod: invalid encoding: negative length")
		}
		if cap(*x) < size {
			*x = make(Mod, size)
		}
		*x = (*x)[:size]
		var u uint64
		for i := range *x {
			if inc, err = buffer.ReadUint64(r, &u); err != nil {
				return n + inc, fmt.Errorf("buffer.ReadUint64: %w", err)
			}
			(*x)[i] = MMod(u)
			n += inc
		}
		return n, nil
	default:
		return x.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated
// slice of bytes.
func (x Mod) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(x.BinarySize())
	_, err = x.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the object.
func (x *Mod) UnmarshalBinary(p []byte) (err error) {
	_, err = x.ReadFrom(buffer.NewBuffer(p))
	return
}
