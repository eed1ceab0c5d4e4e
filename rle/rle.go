/*
Package rle implements the scanline run-length scheme used to compress the
palette index plane of a CBM image.

Each scanline is written as a 32-bit little-endian length followed by that
many bytes of opcodes. An opcode with the top bit set and a non-zero count is
a literal run of up to 127 index bytes. An opcode with bit 6 set is a run of up
to 63 transparent pixels with no data. Any other opcode is a run of up to 63
copies of the single index byte that follows it. The scanline ends with 0x80.
*/
package rle

import "errors"

const (
	opTerminator = 0x80
	opLiteral    = 0x80
	opSkip       = 0x40

	maxLiteral = 0x7f
	maxSkip    = 0x3f
	maxRepeat  = 0x3f

	lengthSize = 4
)

var (
	// ErrMalformed is returned when a compressed stream is truncated or a
	// scanline overruns its declared length or the image.
	ErrMalformed = errors.New("rle: malformed scanline data")

	// ErrInvalidArgument is returned for negative dimensions or an index
	// plane that doesn't match them.
	ErrInvalidArgument = errors.New("rle: invalid argument")
)
