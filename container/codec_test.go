package container_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bodgit/cbm/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fileHeaderSize  = 36
	imageHeaderSize = 2084
)

func le32(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off:]))
}

func testFile(t *testing.T) *container.File {
	a := newImage(t, 6, 4, 0)
	a.SetOffset(3, 2)
	b := newImage(t, 9, 5, 1)
	require.NoError(t, b.Compress())
	c := newImage(t, 0, 0, 2)

	f := &container.File{
		ImageID: 42,
		GroupID: -7,
		Images:  []*container.Image{a, b, c},
	}
	f.SetCurrentIndex(1)

	return f
}

func TestRoundTrip(t *testing.T) {
	f := testFile(t)

	b := new(bytes.Buffer)
	require.NoError(t, f.Encode(b))

	got, err := container.Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, f, got)

	// And again, byte for byte
	again, err := got.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, b.Bytes(), again)
}

func TestEmptyRoundTrip(t *testing.T) {
	f := &container.File{ImageID: 1, GroupID: 2}

	b, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, b, fileHeaderSize)

	got := new(container.File)
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, f, got)
}

func TestLayout(t *testing.T) {
	m, err := container.NewImage(2, 1, []byte{
		0x10, 0x20, 0x30, 0xff,
		0x40, 0x50, 0x60, 0xff,
	})
	require.NoError(t, err)
	m.SetOffset(5, 6)

	f := &container.File{
		ImageID: 0x1234,
		GroupID: 0x5678,
		Images:  []*container.Image{m},
	}

	b, err := f.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, fileHeaderSize+imageHeaderSize+2)

	// Container header
	assert.Equal(t, int32(1), le32(b, 0))
	assert.Equal(t, int32(0), le32(b, 4))
	assert.Equal(t, []int32{5, 6, 7, 7}, []int32{le32(b, 8), le32(b, 12), le32(b, 16), le32(b, 20)})
	assert.Equal(t, int32(0x1234), le32(b, 24))
	assert.Equal(t, int32(0x5678), le32(b, 28))
	assert.Equal(t, int32(0), le32(b, 32))

	// Image header
	i := b[fileHeaderSize:]
	assert.Equal(t, int32(2), le32(i, 0))
	assert.Equal(t, int32(1), le32(i, 4))
	assert.Equal(t, int32(0), le32(i, 8))
	assert.Equal(t, int32(2), le32(i, 12))
	assert.Equal(t, []int32{5, 6, 7, 7}, []int32{le32(i, 16), le32(i, 20), le32(i, 24), le32(i, 28)})
	assert.Equal(t, int32(0), le32(i, 32))

	// 16-bit palette widened to 32 bits, then the 24-bit palette
	p16 := m.Palette16()
	assert.Equal(t, uint32(p16[0]), binary.LittleEndian.Uint32(i[36:]))
	assert.Equal(t, uint32(p16[1]), binary.LittleEndian.Uint32(i[40:]))
	assert.Equal(t, uint32(0x102030), binary.LittleEndian.Uint32(i[36+1024:]))
	assert.Equal(t, uint32(0x405060), binary.LittleEndian.Uint32(i[36+1024+4:]))

	assert.Equal(t, []byte{0, 1}, i[imageHeaderSize:])
}

func TestDecodeClampsCurrentIndex(t *testing.T) {
	b, err := testFile(t).MarshalBinary()
	require.NoError(t, err)

	for _, current := range []int32{3, -1, 1000} {
		binary.LittleEndian.PutUint32(b[4:], uint32(current))
		f, err := container.Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, 0, f.CurrentIndex())
	}
}

func TestDecodeIgnoresReserved(t *testing.T) {
	b, err := testFile(t).MarshalBinary()
	require.NoError(t, err)

	want, err := container.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	for off := 8; off < 24; off++ {
		b[off] = 0xaa
	}
	for off := 32; off < 36; off++ {
		b[off] = 0xaa
	}

	got, err := container.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeMalformed(t *testing.T) {
	b, err := testFile(t).MarshalBinary()
	require.NoError(t, err)

	for _, n := range []int{0, 1, fileHeaderSize - 1, fileHeaderSize, fileHeaderSize + 100, fileHeaderSize + imageHeaderSize, len(b) - 1} {
		_, err := container.Decode(bytes.NewReader(b[:n]))
		assert.ErrorIs(t, err, container.ErrMalformed, "truncated to %d bytes", n)
	}

	negative := append([]byte(nil), b...)
	binary.LittleEndian.PutUint32(negative, 0xffffffff)
	_, err = container.Decode(bytes.NewReader(negative))
	assert.ErrorIs(t, err, container.ErrMalformed)

	negative = append([]byte(nil), b...)
	binary.LittleEndian.PutUint32(negative[fileHeaderSize+12:], 0xffffffff)
	_, err = container.Decode(bytes.NewReader(negative))
	assert.ErrorIs(t, err, container.ErrMalformed)
}
