package container

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/cbm/palette"
	"github.com/bodgit/cbm/raster"
	"github.com/bodgit/cbm/rle"
)

// Image is a single palette indexed image within a container. The zero value
// is an empty image with no palette or pixel data.
type Image struct {
	width, height int
	compressed    bool
	area          image.Rectangle

	palette16 *[palette.Size]uint16
	palette24 *[palette.Size]uint32

	// Either one index per pixel or the scanline compressed stream
	raw []byte
}

// NewImage creates an image from a width by height buffer of interleaved
// blue, green, red and alpha bytes.
func NewImage(width, height int, pix []byte) (*Image, error) {
	m := new(Image)
	if err := m.ReplaceWithPixels(width, height, pix); err != nil {
		return nil, err
	}
	return m, nil
}

// ImageFromFile creates an image from a BMP, PNG, JPEG or GIF file.
func ImageFromFile(file string) (*Image, error) {
	m := new(Image)
	if err := m.ReplaceWithFile(file); err != nil {
		return nil, err
	}
	return m, nil
}

// Width returns the width of the image in pixels
func (m *Image) Width() int { return m.width }

// Height returns the height of the image in pixels
func (m *Image) Height() int { return m.height }

// IsCompressed reports whether the pixel data is scanline compressed
func (m *Image) IsCompressed() bool { return m.compressed }

// Area returns the placement of the image on the shared canvas.
func (m *Image) Area() image.Rectangle { return m.area }

// SetOffset moves the image so its top-left corner is at (x, y).
func (m *Image) SetOffset(x, y int) {
	m.area.Min = image.Pt(x, y)
	m.area.Max = image.Pt(x+m.width, y+m.height)
}

// HasPalette reports whether the image has a palette.
func (m *Image) HasPalette() bool { return m.palette24 != nil }

// Palette24 returns a copy of the 24-bit palette, all zeroes if absent.
func (m *Image) Palette24() (p [palette.Size]uint32) {
	if m.palette24 != nil {
		p = *m.palette24
	}
	return
}

// Palette16 returns a copy of the 16-bit palette, all zeroes if absent.
func (m *Image) Palette16() (p [palette.Size]uint16) {
	if m.palette16 != nil {
		p = *m.palette16
	}
	return
}

// RawData returns a copy of the stored pixel data; either one palette index
// per pixel or the compressed stream. It is nil if there is no data.
func (m *Image) RawData() []byte {
	if m.raw == nil {
		return nil
	}
	b := make([]byte, len(m.raw))
	copy(b, m.raw)
	return b
}

// Length returns the number of bytes of stored pixel data.
func (m *Image) Length() int { return len(m.raw) }

// SetPalette replaces the 24-bit palette, which must have exactly 256
// entries, and recomputes the 16-bit palette from it.
func (m *Image) SetPalette(p []uint32) error {
	p24, err := palette.FromSlice(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	m.setPalette(p24)
	return nil
}

func (m *Image) setPalette(p [palette.Size]uint32) {
	p16 := palette.To16(p)
	m.palette24, m.palette16 = &p, &p16
}

// SetRawData replaces the pixel data with one palette index per pixel. The
// image becomes uncompressed and its area is reset to start at the origin.
func (m *Image) SetRawData(width, height int, indices []byte) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidArgument)
	}
	if indices == nil || len(indices) != width*height {
		return fmt.Errorf("%w: expected %d bytes of index data, got %d", ErrInvalidArgument, width*height, len(indices))
	}

	m.width, m.height = width, height
	m.compressed = false
	m.raw = make([]byte, len(indices))
	copy(m.raw, indices)
	m.area = image.Rect(0, 0, width, height)

	return nil
}

// ReplaceWithPixels quantizes a buffer of interleaved blue, green, red and
// alpha bytes and replaces both palettes and the pixel data with the result.
func (m *Image) ReplaceWithPixels(width, height int, pix []byte) error {
	p, indices, err := palette.Quantize(pix, width, height)
	if err != nil {
		if errors.Is(err, palette.ErrInvalidArgument) {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return err
	}

	m.setPalette(p)
	m.width, m.height = width, height
	m.compressed = false
	m.raw = indices
	m.area = image.Rect(0, 0, width, height)

	return nil
}

// ReplaceWithFile loads a BMP, PNG, JPEG or GIF file and replaces the image
// with it.
func (m *Image) ReplaceWithFile(file string) error {
	w, h, pix, err := raster.Load(file)
	if err != nil {
		return err
	}
	return m.ReplaceWithPixels(w, h, pix)
}

// ImageData returns the image as a buffer of interleaved blue, green, red and
// alpha bytes, decompressing if necessary. It returns nil if the image has no
// palette or pixel data.
func (m *Image) ImageData() ([]byte, error) {
	if m.raw == nil || m.palette24 == nil {
		return nil, nil
	}

	if m.compressed {
		pix, err := rle.Decompress(m.raw, m.width, m.height, m.palette24)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return pix, nil
	}

	length := m.width * m.height
	if len(m.raw) < length {
		return nil, fmt.Errorf("%w: expected %d bytes of index data, got %d", ErrMalformed, length, len(m.raw))
	}

	pix := make([]byte, length*4)
	for i, index := range m.raw[:length] {
		c := m.palette24[index]
		pix[i*4+0] = byte(c >> 16)
		pix[i*4+1] = byte(c >> 8)
		pix[i*4+2] = byte(c)
		pix[i*4+3] = 0xff
	}

	return pix, nil
}

// Save writes the image to a BMP or PNG file. Nothing is written if the image
// has no palette or pixel data.
func (m *Image) Save(file string) error {
	pix, err := m.ImageData()
	if err != nil || pix == nil {
		return err
	}
	return raster.Save(file, m.width, m.height, pix)
}

// Compress replaces the pixel data with its scanline compressed form. It does
// nothing if the image is already compressed or has no palette or pixel data.
func (m *Image) Compress() error {
	if m.compressed || m.raw == nil || m.palette24 == nil {
		return nil
	}

	if len(m.raw) != m.width*m.height {
		return fmt.Errorf("%w: expected %d bytes of index data, got %d", ErrMalformed, m.width*m.height, len(m.raw))
	}

	data, err := rle.Compress(m.raw, m.width, m.height)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m.raw, m.compressed = data, true

	return nil
}

// Decompress restores one palette index per pixel. If the compressed stream
// contains transparent runs the decoded pixels are quantized again so the
// palette may change.
func (m *Image) Decompress() error {
	if !m.compressed || m.raw == nil || m.palette24 == nil {
		return nil
	}

	indices, transparent, err := rle.Expand(m.raw, m.width, m.height)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if !transparent {
		m.raw, m.compressed = indices, false
		return nil
	}

	pix, err := m.ImageData()
	if err != nil {
		return err
	}

	return m.requantize(pix)
}

// requantize is ReplaceWithPixels keeping the current area
func (m *Image) requantize(pix []byte) error {
	area := m.area
	if err := m.ReplaceWithPixels(m.width, m.height, pix); err != nil {
		return err
	}
	m.area = area
	return nil
}

func rgb(pix []byte) (r, g, b uint8) {
	return pix[2], pix[1], pix[0]
}

func (m *Image) makeTransparent(match func(r, g, b uint8) bool) error {
	pix, err := m.ImageData()
	if err != nil || pix == nil {
		return err
	}

	for i := 0; i < len(pix); i += 4 {
		if match(rgb(pix[i:])) {
			pix[i+3] = 0
		}
	}

	return m.requantize(pix)
}

// MakeColorTransparent makes every pixel matching the red, green and blue
// components of c transparent. The image is quantized again and left
// uncompressed.
func (m *Image) MakeColorTransparent(c color.RGBA) error {
	return m.makeTransparent(func(r, g, b uint8) bool {
		return r == c.R && g == c.G && b == c.B
	})
}

// MakeRangeTransparent makes every pixel whose red, green and blue components
// each fall between lo and hi inclusive transparent. The image is quantized
// again and left uncompressed.
func (m *Image) MakeRangeTransparent(lo, hi color.RGBA) error {
	return m.makeTransparent(func(r, g, b uint8) bool {
		return r >= lo.R && r <= hi.R &&
			g >= lo.G && g <= hi.G &&
			b >= lo.B && b <= hi.B
	})
}
