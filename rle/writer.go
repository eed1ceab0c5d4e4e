package rle

import "encoding/binary"

type runKind int

const (
	runLiteral runKind = iota
	runSkip
	runRepeat
)

type run struct {
	kind   runKind
	offset int
	length int
}

type encoder struct {
	row  []byte
	mask []byte // optional, one byte per pixel; zero means transparent
	runs []run
}

func (e *encoder) transparent(i int) bool {
	return e.mask != nil && e.mask[i] == 0
}

// Split n bytes starting at offset into runs no longer than limit
func (e *encoder) add(kind runKind, offset, n, limit int) {
	for n > 0 {
		l := n
		if l > limit {
			l = limit
		}
		e.runs = append(e.runs, run{kind, offset, l})
		offset += l
		n -= l
	}
}

// parse classifies a single scanline greedily from left to right. A literal
// run stops at the first byte equal to its predecessor and gives that
// predecessor back so it can start the following repeat run.
func (e *encoder) parse() {
	e.runs = e.runs[:0]

	for i := 0; i < len(e.row); {
		start, n := i, 0
		var v byte
		for ; i < len(e.row); i++ {
			if (n > 0 && e.row[i] == v) || e.transparent(i) {
				break
			}
			v = e.row[i]
			n++
		}
		if n > 0 && i < len(e.row) && e.row[i] == v {
			i--
			n--
		}
		e.add(runLiteral, start, n, maxLiteral)

		if e.mask != nil {
			start, n = i, 0
			for ; i < len(e.row) && e.transparent(i); i++ {
				n++
			}
			e.add(runSkip, start, n, maxSkip)
		}

		if i >= len(e.row) {
			break
		}

		start, n, v = i, 0, e.row[i]
		for ; i < len(e.row); i++ {
			if e.row[i] != v || e.transparent(i) {
				break
			}
			n++
		}
		e.add(runRepeat, start, n, maxRepeat)
	}
}

func (e *encoder) appendRow(dst []byte) []byte {
	// Reserve space for the length prefix
	base := len(dst)
	dst = append(dst, 0, 0, 0, 0)

	for _, r := range e.runs {
		switch r.kind {
		case runLiteral:
			dst = append(dst, opLiteral|byte(r.length))
			dst = append(dst, e.row[r.offset:r.offset+r.length]...)
		case runSkip:
			dst = append(dst, opSkip|byte(r.length))
		case runRepeat:
			dst = append(dst, byte(r.length), e.row[r.offset])
		}
	}
	dst = append(dst, opTerminator)

	binary.LittleEndian.PutUint32(dst[base:], uint32(len(dst)-base-lengthSize))

	return dst
}

func compress(indices, mask []byte, width, height int) ([]byte, error) {
	if width < 0 || height < 0 || len(indices) != width*height {
		return nil, ErrInvalidArgument
	}
	if mask != nil && len(mask) != len(indices) {
		return nil, ErrInvalidArgument
	}

	var e encoder
	out := make([]byte, 0, len(indices)+height*(lengthSize+2))
	for y := 0; y < height; y++ {
		e.row = indices[y*width : (y+1)*width]
		if mask != nil {
			e.mask = mask[y*width : (y+1)*width]
		}
		e.parse()
		out = e.appendRow(out)
	}

	return out, nil
}

// Compress encodes a width by height plane of palette indices, one scanline
// at a time.
func Compress(indices []byte, width, height int) ([]byte, error) {
	return compress(indices, nil, width, height)
}
