/*
Package cbm is a library for managing collections of CBM image containers as
used by X-Wing Alliance.

It reads and writes containers on disk, optionally wrapped in zstd, builds
them from ordinary raster images and keeps a catalog of the containers found
under a directory tree.
*/
package cbm

import "log"

// CBM ties a catalog to a logger for the operations that need both.
type CBM struct {
	db     *Catalog
	logger *log.Logger
}

// New opens or creates the catalog in file.
func New(file string, logger *log.Logger) (*CBM, error) {
	db, err := NewCatalog(file)
	if err != nil {
		return nil, err
	}
	return &CBM{
		db:     db,
		logger: logger,
	}, nil
}

// Catalog returns the underlying catalog
func (c *CBM) Catalog() *Catalog {
	return c.db
}

// Close closes the catalog
func (c *CBM) Close() error {
	return c.db.Close()
}
