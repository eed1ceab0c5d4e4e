package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/bodgit/cbm/palette"
)

type fileHeader struct {
	Count   int32
	Current int32
	Area    [4]int32 // Ignored when reading
	ImageID int32
	GroupID int32
	_       [4]byte
}

type imageHeader struct {
	Width      int32
	Height     int32
	Compressed int32
	Length     int32
	Area       [4]int32
	_          [4]byte
	Palette16  [palette.Size]uint32
	Palette24  [palette.Size]uint32
}

func rect(a [4]int32) image.Rectangle {
	// Not image.Rect, which would swap inverted edges
	return image.Rectangle{
		Min: image.Pt(int(a[0]), int(a[1])),
		Max: image.Pt(int(a[2]), int(a[3])),
	}
}

func read(r io.Reader, v interface{}) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: %v", ErrMalformed, io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

type decoder struct {
	r    io.Reader
	file *File
}

func (d *decoder) readImage() (*Image, error) {
	var h imageHeader
	if err := read(d.r, &h); err != nil {
		return nil, err
	}

	if h.Width < 0 || h.Height < 0 || h.Length < 0 {
		return nil, fmt.Errorf("%w: invalid image header", ErrMalformed)
	}

	m := &Image{
		width:      int(h.Width),
		height:     int(h.Height),
		compressed: h.Compressed != 0,
		area:       rect(h.Area),
		palette16:  new([palette.Size]uint16),
		palette24:  new([palette.Size]uint32),
	}

	// Only the low 16 bits of each slot are meaningful
	for i, c := range h.Palette16 {
		m.palette16[i] = uint16(c)
	}
	*m.palette24 = h.Palette24

	var b bytes.Buffer
	if _, err := io.CopyN(&b, d.r, int64(h.Length)); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	m.raw = b.Bytes()
	if m.raw == nil {
		m.raw = []byte{}
	}

	return m, nil
}

func (d *decoder) decode(r io.Reader) error {
	d.r = r

	var h fileHeader
	if err := read(d.r, &h); err != nil {
		return err
	}

	if h.Count < 0 {
		return fmt.Errorf("%w: negative image count", ErrMalformed)
	}

	d.file = &File{
		ImageID: int(h.ImageID),
		GroupID: int(h.GroupID),
	}

	for i := 0; i < int(h.Count); i++ {
		m, err := d.readImage()
		if err != nil {
			return err
		}
		d.file.Images = append(d.file.Images, m)
	}

	d.file.SetCurrentIndex(int(h.Current))

	return nil
}

// Decode reads a CBM container from r.
func Decode(r io.Reader) (*File, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return nil, err
	}
	return d.file, nil
}

// UnmarshalBinary decodes the container from binary form, replacing its
// contents.
func (f *File) UnmarshalBinary(b []byte) error {
	nf, err := Decode(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*f = *nf
	return nil
}
