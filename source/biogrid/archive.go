package biogrid

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/c360studio/semxref/source/rows"
	"github.com/c360studio/semxref/storage"
)

// ErrEmptyArchive is returned when a zip archive has no entries.
var ErrEmptyArchive = errors.New("empty archive")

// openArchive returns a row reader over the first entry of a zipped raw
// file, and the entry name.
func openArchive(ctx context.Context, store storage.Store, name string) (*rows.Reader, io.Closer, string, error) {
	data, err := storage.ReadAll(ctx, store, name)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", name, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, "", fmt.Errorf("unzip %s: %w", name, err)
	}
	if len(zr.File) == 0 {
		return nil, nil, "", fmt.Errorf("%s: %w", name, ErrEmptyArchive)
	}
	entry := zr.File[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s in %s: %w", entry.Name, name, err)
	}
	return rows.NewReader(entry.Name, rc), rc, entry.Name, nil
}
