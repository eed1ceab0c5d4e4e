package cbm

import (
	"database/sql"
	"fmt"
	"image"

	"github.com/bodgit/cbm/container"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is an sqlite database recording containers and their images.
type Catalog struct {
	db *sql.DB
}

// Entry describes a container in the catalog.
type Entry struct {
	Path    string
	SHA1    string
	ImageID int
	GroupID int
	Images  []ImageEntry
	Area    image.Rectangle
}

// ImageEntry describes a single image of a container in the catalog.
type ImageEntry struct {
	Width      int
	Height     int
	Compressed bool
	Length     int
	Area       image.Rectangle
}

// NewCatalog opens the catalog in file, creating it if necessary.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Scan workers write concurrently and sqlite only has one writer
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS container (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, image_id INTEGER NOT NULL, group_id INTEGER NOT NULL, area_left INTEGER NOT NULL, area_top INTEGER NOT NULL, area_right INTEGER NOT NULL, area_bottom INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (container_id INTEGER NOT NULL, idx INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, compressed INTEGER NOT NULL, length INTEGER NOT NULL, area_left INTEGER NOT NULL, area_top INTEGER NOT NULL, area_right INTEGER NOT NULL, area_bottom INTEGER NOT NULL, PRIMARY KEY(container_id, idx), FOREIGN KEY(container_id) REFERENCES container(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS container_group ON container (group_id)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the catalog
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add records the container found at path, replacing any previous record
// for the same path.
func (c *Catalog) Add(path, sha string, f *container.File) (err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM container WHERE path = ?", path); err != nil {
		return err
	}

	a := f.Area()
	result, err := tx.Exec("INSERT INTO container (path, sha1, image_id, group_id, area_left, area_top, area_right, area_bottom) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", path, sha, f.ImageID, f.GroupID, a.Min.X, a.Min.Y, a.Max.X, a.Max.Y)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, m := range f.Images {
		a := m.Area()
		if _, err = tx.Exec("INSERT INTO image (container_id, idx, width, height, compressed, length, area_left, area_top, area_right, area_bottom) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", id, i, m.Width(), m.Height(), m.IsCompressed(), m.Length(), a.Min.X, a.Min.Y, a.Max.X, a.Max.Y); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (c *Catalog) images(id int64) ([]ImageEntry, error) {
	rows, err := c.db.Query("SELECT width, height, compressed, length, area_left, area_top, area_right, area_bottom FROM image WHERE container_id = ? ORDER BY idx", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ImageEntry
	for rows.Next() {
		var m ImageEntry
		if err := rows.Scan(&m.Width, &m.Height, &m.Compressed, &m.Length, &m.Area.Min.X, &m.Area.Min.Y, &m.Area.Max.X, &m.Area.Max.Y); err != nil {
			return nil, err
		}
		images = append(images, m)
	}

	return images, rows.Err()
}

func (c *Catalog) entries(query string, args ...interface{}) ([]Entry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	var ids []int64
	var entries []Entry
	for rows.Next() {
		var id int64
		var e Entry
		if err := rows.Scan(&id, &e.Path, &e.SHA1, &e.ImageID, &e.GroupID, &e.Area.Min.X, &e.Area.Min.Y, &e.Area.Max.X, &e.Area.Max.Y); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Only one connection, so the first result set must be closed first
	for i, id := range ids {
		if entries[i].Images, err = c.images(id); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

const selectEntry = "SELECT id, path, sha1, image_id, group_id, area_left, area_top, area_right, area_bottom FROM container"

// FindByPath returns the entry for the container at path, or nil if there
// isn't one.
func (c *Catalog) FindByPath(path string) (*Entry, error) {
	entries, err := c.entries(selectEntry+" WHERE path = ?", path)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// FindByGroup returns every container with the given group identifier,
// ordered by image identifier and then path.
func (c *Catalog) FindByGroup(group int) ([]Entry, error) {
	return c.entries(selectEntry+" WHERE group_id = ? ORDER BY image_id, path", group)
}
