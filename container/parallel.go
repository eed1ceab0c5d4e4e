package container

import "sync"

// Run fn against every image concurrently and return the first error once
// they have all finished
func (f *File) forEach(fn func(*Image) error) error {
	var wg sync.WaitGroup
	errc := make(chan error, len(f.Images))
	wg.Add(len(f.Images))
	for _, m := range f.Images {
		go func(m *Image) {
			defer wg.Done()
			errc <- fn(m)
		}(m)
	}
	wg.Wait()
	close(errc)

	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

// Compress compresses every image in the container.
func (f *File) Compress() error {
	return f.forEach((*Image).Compress)
}

// Decompress decompresses every image in the container.
func (f *File) Decompress() error {
	return f.forEach((*Image).Decompress)
}
