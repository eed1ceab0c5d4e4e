package cbm_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/cbm"
	"github.com/bodgit/cbm/container"
	"github.com/bodgit/cbm/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixels(w, h int, shade byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4+0] = shade
		pix[i*4+1] = byte(i % w * 16)
		pix[i*4+2] = byte(i / w * 16)
		pix[i*4+3] = 0xff
	}
	return pix
}

func testFile(t *testing.T, group int) *container.File {
	a, err := container.NewImage(5, 3, pixels(5, 3, 0x10))
	require.NoError(t, err)
	b, err := container.NewImage(4, 4, pixels(4, 4, 0x20))
	require.NoError(t, err)
	b.SetOffset(2, 1)
	require.NoError(t, b.Compress())

	return &container.File{
		ImageID: 100 + group,
		GroupID: group,
		Images:  []*container.Image{a, b},
	}
}

func TestIsContainer(t *testing.T) {
	tables := map[string]bool{
		"a.cbm":     true,
		"a.CBM":     true,
		"a.cbm.zst": true,
		"a.cbm.ZST": true,
		"a.zst":     false,
		"a.png":     false,
		"cbm":       false,
	}
	for file, want := range tables {
		assert.Equal(t, want, cbm.IsContainer(file), file)
	}
}

func TestOpenSave(t *testing.T) {
	f := testFile(t, 1)
	dir := t.TempDir()

	for _, name := range []string{"plain.cbm", "packed.cbm.zst"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(dir, name)
			require.NoError(t, cbm.Save(f, file))

			got, err := cbm.Open(file)
			require.NoError(t, err)
			assert.Equal(t, f, got)
		})
	}

	plain, err := os.ReadFile(filepath.Join(dir, "plain.cbm"))
	require.NoError(t, err)
	want, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, want, plain)

	packed, err := os.ReadFile(filepath.Join(dir, "packed.cbm.zst"))
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain))

	_, err = cbm.Open(filepath.Join(dir, "missing.cbm"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.cbm")
	require.NoError(t, os.WriteFile(file, []byte{1, 0, 0, 0}, 0644))

	_, err := cbm.Open(file)
	assert.ErrorIs(t, err, container.ErrMalformed)
}

func TestBuildExtract(t *testing.T) {
	dir := t.TempDir()

	var files []string
	var want [][]byte
	for i, name := range []string{"a.png", "b.bmp"} {
		file := filepath.Join(dir, name)
		pix := pixels(6+i, 4, byte(i*0x40))
		require.NoError(t, raster.Save(file, 6+i, 4, pix))
		files = append(files, file)
		want = append(want, pix)
	}

	f, err := cbm.Build(files, cbm.BuildOptions{ImageID: 7, GroupID: 8, Compress: true})
	require.NoError(t, err)
	assert.Equal(t, 7, f.ImageID)
	assert.Equal(t, 8, f.GroupID)
	require.Len(t, f.Images, 2)
	assert.True(t, f.IsCompressed())
	assert.Equal(t, 7, f.Images[1].Width())

	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	extracted, err := cbm.Extract(f, out, ".bmp")
	require.NoError(t, err)
	require.Len(t, extracted, 2)

	for i, file := range extracted {
		_, _, pix, err := raster.Load(file)
		require.NoError(t, err)
		assert.Equal(t, want[i], pix)
	}

	_, err = cbm.Extract(f, out, ".jpg")
	assert.ErrorIs(t, err, raster.ErrUnsupportedFormat)

	_, err = cbm.Build([]string{files[0], filepath.Join(dir, "c.tga")}, cbm.BuildOptions{})
	assert.ErrorIs(t, err, raster.ErrUnsupportedFormat)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0755))

	require.NoError(t, cbm.Save(testFile(t, 1), filepath.Join(dir, "one.cbm")))
	require.NoError(t, cbm.Save(testFile(t, 1), filepath.Join(dir, "sub", "two.cbm.zst")))
	require.NoError(t, cbm.Save(testFile(t, 2), filepath.Join(dir, "sub", "three.cbm")))
	require.NoError(t, cbm.Save(testFile(t, 1), filepath.Join(dir, ".hidden", "four.cbm")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.cbm"), []byte("garbage"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	var logs bytes.Buffer
	m, err := cbm.New(filepath.Join(t.TempDir(), "test.db"), log.New(&logs, "", 0))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Scan(dir))
	assert.Contains(t, logs.String(), "broken.cbm")

	entries, err := m.Catalog().FindByGroup(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(dir, "one.cbm"), entries[0].Path)
	assert.Equal(t, filepath.Join(dir, "sub", "two.cbm.zst"), entries[1].Path)

	entries, err = m.Catalog().FindByGroup(2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 102, entries[0].ImageID)

	// Scanning again replaces rather than duplicates
	require.NoError(t, m.Scan(dir))
	entries, err = m.Catalog().FindByGroup(1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
