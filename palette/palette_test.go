package palette_test

import (
	"testing"

	"github.com/bodgit/cbm/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor16(t *testing.T) {
	tables := []struct {
		name  string
		color uint32
		want  uint16
	}{
		{"black", 0x000000, 0x0000},
		{"white", 0xffffff, 0xffff},
		{"blue", 0xff0000, 0xf800},
		{"green", 0x00ff00, 0x07e0},
		{"red", 0x0000ff, 0x001f},
		{"mid grey", 0x808080, 0x8410},
		{"top byte ignored", 0xff000000, 0x0000},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.want, palette.Color16(table.color))
		})
	}
}

func TestTo16(t *testing.T) {
	var p [palette.Size]uint32
	p[0] = 0xffffff
	p[255] = 0x0000ff

	got := palette.To16(p)
	assert.Equal(t, uint16(0xffff), got[0])
	assert.Equal(t, uint16(0x001f), got[255])
	assert.Equal(t, uint16(0), got[1])
}

func TestFromSlice(t *testing.T) {
	_, err := palette.FromSlice(make([]uint32, 255))
	assert.ErrorIs(t, err, palette.ErrInvalidArgument)

	in := make([]uint32, palette.Size)
	in[3] = 0xff123456
	p, err := palette.FromSlice(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123456), p[3])
}

func TestNormalize(t *testing.T) {
	pix := []byte{
		1, 2, 3, 0x80,
		4, 5, 6, 0x7f,
		7, 8, 9, 0xff,
	}
	palette.Normalize(pix)
	assert.Equal(t, []byte{
		1, 2, 3, 0xff,
		0, 0, 0, 0,
		7, 8, 9, 0xff,
	}, pix)
}

func TestQuantizeExact(t *testing.T) {
	pix := []byte{
		0x10, 0x20, 0x30, 0xff,
		0x40, 0x50, 0x60, 0xff,
		0x10, 0x20, 0x30, 0xc0,
		0x99, 0x99, 0x99, 0x10,
		0x00, 0x00, 0x00, 0xff,
	}
	orig := append([]byte(nil), pix...)

	p, indices, err := palette.Quantize(pix, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, orig, pix, "input must not be modified")

	assert.Equal(t, []byte{0, 1, 0, 2, 2}, indices)
	assert.Equal(t, uint32(0x102030), p[0])
	assert.Equal(t, uint32(0x405060), p[1])
	assert.Equal(t, uint32(0x000000), p[2])
	for _, c := range p[3:] {
		assert.Zero(t, c)
	}
}

func TestQuantizeMedianCut(t *testing.T) {
	const width, height = 32, 32

	pix := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		pix[i*4+0] = byte(i)
		pix[i*4+1] = byte(i >> 2)
		pix[i*4+2] = byte(i * 7)
		pix[i*4+3] = 0xff
	}

	p, indices, err := palette.Quantize(pix, width, height)
	require.NoError(t, err)
	assert.Len(t, p, palette.Size)
	assert.Len(t, indices, width*height)

	for _, c := range p {
		assert.Zero(t, c&0xff000000)
	}
}

func TestQuantizeInvalid(t *testing.T) {
	_, _, err := palette.Quantize(make([]byte, 7), 1, 2)
	assert.ErrorIs(t, err, palette.ErrInvalidArgument)

	_, _, err = palette.Quantize(nil, -1, 0)
	assert.ErrorIs(t, err, palette.ErrInvalidArgument)
}

func TestQuantizeEmpty(t *testing.T) {
	p, indices, err := palette.Quantize(nil, 0, 3)
	require.NoError(t, err)
	assert.Empty(t, indices)
	assert.Equal(t, [palette.Size]uint32{}, p)
}
