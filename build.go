package cbm

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bodgit/cbm/container"
	"github.com/bodgit/cbm/raster"
)

// BuildOptions control how Build assembles a container.
type BuildOptions struct {
	ImageID  int
	GroupID  int
	Compress bool
}

// Build creates a container with one image per raster file, in the order
// given. The files are loaded and quantized concurrently.
func Build(files []string, opts BuildOptions) (*container.File, error) {
	images := make([]*container.Image, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	wg.Add(len(files))
	for i, file := range files {
		go func(i int, file string) {
			defer wg.Done()
			m, err := container.ImageFromFile(file)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", file, err)
				return
			}
			images[i] = m
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	f := &container.File{
		ImageID: opts.ImageID,
		GroupID: opts.GroupID,
		Images:  images,
	}

	if opts.Compress {
		if err := f.Compress(); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Extract writes every image in f to dir as a file named after its index,
// using ext to select the format. Empty images and images without any data
// are skipped.
func Extract(f *container.File, dir, ext string) ([]string, error) {
	var files []string
	for i, m := range f.Images {
		file := filepath.Join(dir, fmt.Sprintf("%d%s", i, ext))
		pix, err := m.ImageData()
		if err != nil {
			return files, fmt.Errorf("image %d: %w", i, err)
		}
		if len(pix) == 0 {
			continue
		}
		if err := raster.Save(file, m.Width(), m.Height(), pix); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}
