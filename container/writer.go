package container

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"image"
	"io"
)

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) write(v interface{}) error {
	return binary.Write(e.w, binary.LittleEndian, v)
}

func edges(r image.Rectangle) [4]int32 {
	return [4]int32{int32(r.Min.X), int32(r.Min.Y), int32(r.Max.X), int32(r.Max.Y)}
}

func (e *encoder) writeImage(m *Image) error {
	h := imageHeader{
		Width:  int32(m.width),
		Height: int32(m.height),
		Length: int32(len(m.raw)),
		Area:   edges(m.area),
	}
	if m.compressed {
		h.Compressed = 1
	}
	if m.palette16 != nil {
		for i, c := range m.palette16 {
			h.Palette16[i] = uint32(c)
		}
	}
	if m.palette24 != nil {
		h.Palette24 = *m.palette24
	}

	if err := e.write(&h); err != nil {
		return err
	}

	_, err := e.w.Write(m.raw)
	return err
}

func (e *encoder) encode(f *File) error {
	h := fileHeader{
		Count:   int32(len(f.Images)),
		Current: int32(f.CurrentIndex()),
		Area:    edges(f.Area()),
		ImageID: int32(f.ImageID),
		GroupID: int32(f.GroupID),
	}

	if err := e.write(&h); err != nil {
		return err
	}

	for _, m := range f.Images {
		if err := e.writeImage(m); err != nil {
			return err
		}
	}

	return e.w.Flush()
}

// Encode writes the container to w.
func (f *File) Encode(w io.Writer) error {
	e := encoder{w: bufio.NewWriter(w)}
	return e.encode(f)
}

// MarshalBinary encodes the container into binary form and returns the
// result.
func (f *File) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	if err := f.Encode(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
