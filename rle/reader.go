package rle

import (
	"encoding/binary"
	"math"
)

// A sink receives the runs decoded from a stream. Literal runs arrive one
// index at a time.
type sink interface {
	index(i byte, n int) error
	skip(n int) error
}

// scanline consumes opcodes from data starting at p until the terminator,
// returning the position just past it. data is already cut at the scanline's
// declared end.
func scanline(data []byte, p int, s sink) (int, error) {
	for p < len(data) {
		op := data[p]
		p++

		switch {
		case op == opTerminator:
			return p, nil
		case op&opLiteral != 0:
			n := int(op & maxLiteral)
			if len(data)-p < n {
				return p, ErrMalformed
			}
			for _, b := range data[p : p+n] {
				if err := s.index(b, 1); err != nil {
					return p, err
				}
			}
			p += n
		case op&opSkip != 0:
			if err := s.skip(int(op & maxSkip)); err != nil {
				return p, err
			}
		default:
			if p >= len(data) {
				return p, ErrMalformed
			}
			if err := s.index(data[p], int(op)); err != nil {
				return p, err
			}
			p++
		}
	}

	// Ran out of bytes before the terminator
	return p, ErrMalformed
}

func walk(data []byte, height int, s sink) error {
	var err error
	p := 0
	for y := 0; y < height; y++ {
		if len(data)-p < lengthSize {
			return ErrMalformed
		}
		l := int64(int32(binary.LittleEndian.Uint32(data[p:])))
		p += lengthSize
		if l < 0 {
			return ErrMalformed
		}

		end := len(data)
		if int64(p)+l < int64(end) {
			end = p + int(l)
		}

		// The next scanline starts straight after the terminator
		if p, err = scanline(data[:end], p, s); err != nil {
			return err
		}
	}

	return nil
}

const (
	// A scanline is at least its length and a terminator
	minScanline = lengthSize + 1

	// No opcode byte yields more pixels than this
	maxPixelsPerByte = maxRepeat
)

// checkSize rejects dimensions that data couldn't possibly describe, before
// anything is allocated for them.
func checkSize(data []byte, width, height int) error {
	if height > len(data)/minScanline {
		return ErrMalformed
	}
	if width > 0 && height > math.MaxInt/4/width {
		return ErrMalformed
	}
	if width*height/maxPixelsPerByte > len(data) {
		return ErrMalformed
	}
	return nil
}

type pixelSink struct {
	pix     []byte
	off     int
	palette *[256]uint32
}

func (s *pixelSink) index(i byte, n int) error {
	if len(s.pix)-s.off < n*4 {
		return ErrMalformed
	}
	c := s.palette[i]
	for ; n > 0; n-- {
		s.pix[s.off+0] = byte(c >> 16)
		s.pix[s.off+1] = byte(c >> 8)
		s.pix[s.off+2] = byte(c)
		s.pix[s.off+3] = 0xff
		s.off += 4
	}
	return nil
}

func (s *pixelSink) skip(n int) error {
	if len(s.pix)-s.off < n*4 {
		return ErrMalformed
	}
	// Already zeroed
	s.off += n * 4
	return nil
}

// Decompress decodes height scanlines into an interleaved blue, green, red,
// alpha buffer of width by height pixels, looking colors up in palette.
// Transparent runs produce pixels with all four channels zero.
func Decompress(data []byte, width, height int, palette *[256]uint32) ([]byte, error) {
	if width < 0 || height < 0 || palette == nil {
		return nil, ErrInvalidArgument
	}
	if err := checkSize(data, width, height); err != nil {
		return nil, err
	}

	s := pixelSink{
		pix:     make([]byte, width*height*4),
		palette: palette,
	}
	if err := walk(data, height, &s); err != nil {
		return nil, err
	}

	return s.pix, nil
}

type indexSink struct {
	indices     []byte
	off         int
	transparent bool
}

func (s *indexSink) index(i byte, n int) error {
	if len(s.indices)-s.off < n {
		return ErrMalformed
	}
	for ; n > 0; n-- {
		s.indices[s.off] = i
		s.off++
	}
	return nil
}

func (s *indexSink) skip(n int) error {
	if len(s.indices)-s.off < n {
		return ErrMalformed
	}
	if n > 0 {
		s.transparent = true
	}
	s.off += n
	return nil
}

// Expand decodes height scanlines back into a width by height plane of
// palette indices. Transparent runs have no index so they are left as zero
// and reported by the returned boolean.
func Expand(data []byte, width, height int) ([]byte, bool, error) {
	if width < 0 || height < 0 {
		return nil, false, ErrInvalidArgument
	}
	if err := checkSize(data, width, height); err != nil {
		return nil, false, err
	}

	s := indexSink{
		indices: make([]byte, width*height),
	}
	if err := walk(data, height, &s); err != nil {
		return nil, false, err
	}

	return s.indices, s.transparent, nil
}
