/*
Package raster moves images between standard raster files and the
interleaved blue, green, red, alpha pixel buffers used by the CBM codec.

Buffers are row-major with four bytes per pixel and no padding between rows.
BMP, PNG, JPEG and GIF files can be loaded; only BMP and PNG can be saved.
*/
package raster

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned when the file extension doesn't select a
// supported format.
var ErrUnsupportedFormat = errors.New("raster: unsupported format")

var (
	readFormats = map[string]imaging.Format{
		".bmp":  imaging.BMP,
		".png":  imaging.PNG,
		".jpg":  imaging.JPEG,
		".jpeg": imaging.JPEG,
		".gif":  imaging.GIF,
	}
	writeFormats = map[string]imaging.Format{
		".bmp": imaging.BMP,
		".png": imaging.PNG,
	}
)

func formatOf(file string, formats map[string]imaging.Format) (imaging.Format, error) {
	ext := strings.ToLower(filepath.Ext(file))
	if f, ok := formats[ext]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Supported reports whether file can be loaded based on its extension.
func Supported(file string) bool {
	_, err := formatOf(file, readFormats)
	return err == nil
}

// FromImage converts m to a pixel buffer, returning its width and height.
func FromImage(m image.Image) (int, int, []byte) {
	n := imaging.Clone(m)
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()

	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := n.Pix[y*n.Stride : y*n.Stride+w*4]
		dst := pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			dst[x*4+0] = src[x*4+2]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+0]
			dst[x*4+3] = src[x*4+3]
		}
	}

	return w, h, pix
}

// ToImage wraps a copy of a pixel buffer as an image.
func ToImage(width, height int, pix []byte) (*image.NRGBA, error) {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return nil, errors.New("raster: pixel data doesn't match dimensions")
	}

	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		m.Pix[i*4+0] = pix[i*4+2]
		m.Pix[i*4+1] = pix[i*4+1]
		m.Pix[i*4+2] = pix[i*4+0]
		m.Pix[i*4+3] = pix[i*4+3]
	}

	return m, nil
}

// Load reads the image in file and returns it as a pixel buffer.
func Load(file string) (int, int, []byte, error) {
	if _, err := formatOf(file, readFormats); err != nil {
		return 0, 0, nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	m, err := imaging.Decode(f)
	if err != nil {
		return 0, 0, nil, err
	}

	w, h, pix := FromImage(m)

	return w, h, pix, nil
}

// Save writes a pixel buffer to file in the format chosen by its extension.
func Save(file string, width, height int, pix []byte) (err error) {
	format, err := formatOf(file, writeFormats)
	if err != nil {
		return err
	}

	m, err := ToImage(width, height, pix)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return imaging.Encode(f, m, format)
}
