package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferWriteRead(t *testing.T) {
	b := NewBufferSize(32)
	_, err := WriteUint8(b, 0xff)
	require.NoError(t, err)
	_, err = WriteUint64(b, 0x1122334455667788)
	require.NoError(t, err)
	_, err = WriteUint64Slice(b, []uint64{1, 2, 3})
	require.NoError(t, err)
	_, err = WriteIntSlice(b, []int{-1, 7})
	require.NoError(t, err)

	require.Equal(t, 1+8+3*8+2*8, b.Size())

	var c8 uint8
	_, err = ReadUint8(b, &c8)
	require.NoError(t, err)
	require.Equal(t, uint8(0xff), c8)

	var c64 uint64
	_, err = ReadUint64(b, &c64)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1122334455667788), c64)

	s := make([]uint64, 3)
	_, err = ReadUint64Slice(b, s)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, s)

	is := make([]int, 2)
	_, err = ReadIntSlice(b, is)
	require.NoError(t, err)
	require.Equal(t, []int{-1, 7}, is)

	require.Zero(t, b.Size())
	_, err = ReadUint64(b, &c64)
	require.Error(t, err)
}

func TestLittleEndian(t *testing.T) {
	b := NewBuffer(nil)
	_, err := WriteUint64(b, 0x01)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, b.Bytes())
}
