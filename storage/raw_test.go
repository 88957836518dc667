package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "books", "NBK1116"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books", "NBK1116", "NBK1116.html"), []byte("<html/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books", "NBK1440.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "titles.txt"), []byte("a\tb\tc\td\n"), 0o644))

	ctx := context.Background()
	s := NewFSStore(dir)

	names, err := s.Glob(ctx, "books/**/*.html")
	require.NoError(t, err)
	assert.Equal(t, []string{"books/NBK1116/NBK1116.html", "books/NBK1440.html"}, names)

	data, err := ReadAll(ctx, s, "titles.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\tb\tc\td\n", string(data))

	info, err := s.Stat(ctx, "books/NBK1440.html")
	require.NoError(t, err)
	assert.Equal(t, int64(13), info.Size)

	_, err = s.Open(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Stat(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(map[string][]byte{
		"books/NBK1116.html": []byte("x"),
		"books/a/NBK2.html":  []byte("y"),
		"idmap.txt":          []byte("z"),
	})
	s.Put("books/NBK3.htm", []byte("w"))

	names, err := s.Glob(ctx, "books/**/*.html")
	require.NoError(t, err)
	assert.Equal(t, []string{"books/NBK1116.html", "books/a/NBK2.html"}, names)

	data, err := ReadAll(ctx, s, "idmap.txt")
	require.NoError(t, err)
	assert.Equal(t, "z", string(data))

	_, err = s.Open(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Glob(ctx, "books/[")
	assert.Error(t, err)
}
