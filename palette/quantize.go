package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

const alphaThreshold = 0x80

// Normalize forces every pixel in pix to be either fully opaque or fully
// transparent black.
func Normalize(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] >= alphaThreshold {
			pix[i+3] = 0xff
		} else {
			pix[i+0] = 0
			pix[i+1] = 0
			pix[i+2] = 0
			pix[i+3] = 0
		}
	}
}

// Quantize normalizes a copy of pix and returns a 24-bit palette with one
// index per pixel. If there are no more than 256 distinct colors, ignoring
// alpha, the palette holds them exactly in order of first appearance with the
// remaining entries zero. Otherwise the colors are reduced with a median cut
// quantizer.
func Quantize(pix []byte, width, height int) ([Size]uint32, []byte, error) {
	var p [Size]uint32

	if width < 0 || height < 0 {
		return p, nil, fmt.Errorf("%w: negative dimensions", ErrInvalidArgument)
	}
	if len(pix) != width*height*4 {
		return p, nil, fmt.Errorf("%w: expected %d bytes of pixel data, got %d", ErrInvalidArgument, width*height*4, len(pix))
	}

	buf := make([]byte, len(pix))
	copy(buf, pix)
	Normalize(buf)

	indices := make([]byte, width*height)
	seen := make(map[uint32]byte, Size)
	for i := range indices {
		c := pack(buf[i*4+0], buf[i*4+1], buf[i*4+2])
		index, ok := seen[c]
		if !ok {
			if len(seen) == Size {
				return medianCut(buf, width, height)
			}
			index = byte(len(seen))
			seen[c] = index
			p[index] = c
		}
		indices[i] = index
	}

	return p, indices, nil
}

func medianCut(pix []byte, width, height int) ([Size]uint32, []byte, error) {
	var p [Size]uint32

	// Alpha plays no part in the palette, transparent pixels are already black
	b := image.Rect(0, 0, width, height)
	m := image.NewNRGBA(b)
	for i := 0; i < width*height; i++ {
		m.Pix[i*4+0] = pix[i*4+2]
		m.Pix[i*4+1] = pix[i*4+1]
		m.Pix[i*4+2] = pix[i*4+0]
		m.Pix[i*4+3] = 0xff
	}

	q := quantize.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, Size), m)

	pm := image.NewPaletted(b, cp)
	draw.Draw(pm, b, m, b.Min, draw.Src)

	for i, c := range cp {
		r, g, bl, _ := c.RGBA()
		p[i] = pack(byte(bl>>8), byte(g>>8), byte(r>>8))
	}

	return p, pm.Pix, nil
}
