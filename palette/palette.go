/*
Package palette derives the two 256 entry palettes stored with each CBM image
from an interleaved blue, green, red, alpha pixel buffer.

The 24-bit palette packs each color as 0x00BBGGRR. The 16-bit palette is
derived from it and packs each color as BBBBBGGGGGGRRRRR.
*/
package palette

import (
	"errors"
	"fmt"
)

// Size is the number of entries in either palette
const Size = 256

// ErrInvalidArgument is returned for a palette of the wrong length or a pixel
// buffer that doesn't match its dimensions.
var ErrInvalidArgument = errors.New("palette: invalid argument")

func pack(b, g, r byte) uint32 {
	return uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// Rounding scale down of an 8-bit channel to 0..n
func scale(c, n uint32) uint32 {
	return (c*n*2 + 0xff) / (0xff * 2)
}

// Color16 converts a single 24-bit color to its 16-bit equivalent.
func Color16(c uint32) uint16 {
	b := scale(c>>16&0xff, 0x1f)
	g := scale(c>>8&0xff, 0x3f)
	r := scale(c&0xff, 0x1f)
	return uint16(b<<11 | g<<5 | r)
}

// To16 converts every entry of a 24-bit palette.
func To16(p [Size]uint32) [Size]uint16 {
	var out [Size]uint16
	for i, c := range p {
		out[i] = Color16(c)
	}
	return out
}

// FromSlice copies p into a fixed size palette, clearing the unused top byte
// of each entry.
func FromSlice(p []uint32) ([Size]uint32, error) {
	var out [Size]uint32
	if len(p) != Size {
		return out, fmt.Errorf("%w: palette has %d entries", ErrInvalidArgument, len(p))
	}
	for i, c := range p {
		out[i] = c & 0xffffff
	}
	return out, nil
}
