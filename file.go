package cbm

import (
	"bufio"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/cbm/container"
	"github.com/klauspost/compress/zstd"
)

const (
	// Extension is the usual extension of a container
	Extension = ".cbm"

	// ZstdExtension is appended to containers wrapped in zstd
	ZstdExtension = ".zst"
)

func isZstd(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ZstdExtension)
}

// IsContainer reports whether file is named like a container, plain or zstd
// wrapped.
func IsContainer(file string) bool {
	if isZstd(file) {
		file = strings.TrimSuffix(file, filepath.Ext(file))
	}
	return strings.EqualFold(filepath.Ext(file), Extension)
}

func open(file string, h hash.Hash) (*container.File, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if h != nil {
		src = io.TeeReader(f, h)
	}
	br := bufio.NewReader(src)

	var r io.Reader = br

	if isZstd(file) {
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	cf, err := container.Decode(r)
	if err != nil {
		return nil, err
	}

	if h != nil {
		// Hash whatever the decoder didn't need
		if _, err := io.Copy(io.Discard, br); err != nil {
			return nil, err
		}
	}

	return cf, nil
}

// Open reads the container in file. Files ending in .zst are decompressed
// first.
func Open(file string) (*container.File, error) {
	return open(file, nil)
}

// openSum is Open returning the SHA-1 of the file as stored on disk
func openSum(file string) (*container.File, string, error) {
	h := sha1.New()
	cf, err := open(file, h)
	if err != nil {
		return nil, "", err
	}
	return cf, fmt.Sprintf("%X", h.Sum(nil)), nil
}

// Save writes cf to file. Files ending in .zst are compressed with zstd.
func Save(cf *container.File, file string) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !isZstd(file) {
		return cf.Encode(f)
	}

	zw, err := zstd.NewWriter(f,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return err
	}

	if err := cf.Encode(zw); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
