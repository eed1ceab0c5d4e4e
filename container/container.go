/*
Package container implements a decoder and encoder for CBM containers; an
ordered sequence of palette indexed images as used by X-Wing Alliance.

A container starts with a 36 byte header holding the image count, the current
image index, the bounding rectangle of all images and two identifiers. Each
image follows as a 2084 byte header holding its dimensions, a compression
flag, the length of its pixel data, its bounding rectangle, a 16-bit palette
stored in 32-bit slots and a 24-bit palette, and then the pixel data itself.
All values are little-endian.
*/
package container

import (
	"errors"
	"image"
)

var (
	// ErrMalformed is returned when a container or compressed image is
	// truncated or structurally invalid.
	ErrMalformed = errors.New("container: malformed data")

	// ErrInvalidArgument is returned when an image is given a palette,
	// pixel data or dimensions that are not valid.
	ErrInvalidArgument = errors.New("container: invalid argument")
)

// File is a CBM container.
type File struct {
	// ImageID and GroupID are opaque identifiers carried through unchanged
	ImageID int
	GroupID int

	// Images in the order they are stored
	Images []*Image

	current int
}

// CurrentIndex returns the index of the current image.
func (f *File) CurrentIndex() int {
	if f.current < 0 || f.current >= len(f.Images) {
		return 0
	}
	return f.current
}

// SetCurrentIndex sets the index of the current image. Out of range values
// select the first image.
func (f *File) SetCurrentIndex(i int) {
	if i < 0 || i >= len(f.Images) {
		i = 0
	}
	f.current = i
}

// CurrentImage returns the current image, or nil if there are no images.
func (f *File) CurrentImage() *Image {
	if len(f.Images) == 0 {
		return nil
	}
	return f.Images[f.CurrentIndex()]
}

// MoveFirst selects the first image.
func (f *File) MoveFirst() {
	f.current = 0
}

// MovePrevious selects the previous image, wrapping around to the last.
func (f *File) MovePrevious() {
	if len(f.Images) == 0 {
		f.current = 0
		return
	}
	f.current = f.CurrentIndex() - 1
	if f.current < 0 {
		f.current = len(f.Images) - 1
	}
}

// MoveNext selects the next image, wrapping around to the first.
func (f *File) MoveNext() {
	if len(f.Images) == 0 {
		f.current = 0
		return
	}
	f.current = f.CurrentIndex() + 1
	if f.current >= len(f.Images) {
		f.current = 0
	}
}

// MoveLast selects the last image.
func (f *File) MoveLast() {
	if len(f.Images) == 0 {
		f.current = 0
		return
	}
	f.current = len(f.Images) - 1
}

// Area returns the bounding rectangle of every image in the container. It is
// the zero rectangle when there are no images.
func (f *File) Area() image.Rectangle {
	var r image.Rectangle
	for i, m := range f.Images {
		a := m.Area()
		if i == 0 {
			r = a
			continue
		}
		if a.Min.X < r.Min.X {
			r.Min.X = a.Min.X
		}
		if a.Min.Y < r.Min.Y {
			r.Min.Y = a.Min.Y
		}
		if a.Max.X > r.Max.X {
			r.Max.X = a.Max.X
		}
		if a.Max.Y > r.Max.Y {
			r.Max.Y = a.Max.Y
		}
	}
	return r
}

// Width returns the width of the bounding rectangle
func (f *File) Width() int { return f.Area().Dx() }

// Height returns the height of the bounding rectangle
func (f *File) Height() int { return f.Area().Dy() }

// IsCompressed reports whether any image is compressed.
func (f *File) IsCompressed() bool {
	for _, m := range f.Images {
		if m.IsCompressed() {
			return true
		}
	}
	return false
}
