package genereviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/semxref/classify"
	"github.com/c360studio/semxref/source/rows"
	"github.com/c360studio/semxref/storage"
)

// Raw file names, relative to the source's store.
const (
	FileTitles    = "GRtitle_shortname_NBKid.txt"
	FileIDMap     = "NBKid_shortname_OMIM.txt"
	FileMimTitles = "mimTitles.txt"
	BooksPattern  = "books/**/*.html"
)

// maxOMIMLength is the width of a well-formed OMIM number.
const maxOMIMLength = 6

// Title is one row of the titles file.
type Title struct {
	Line      int
	ShortName string
	Title     string
	NBK       string
	PMID      string
}

// Mapping is one row of the id map: a book and one candidate OMIM number.
type Mapping struct {
	Line      int
	NBK       string
	ShortName string
	OMIM      string
}

// inputs holds the parsed raw files of one run.
type inputs struct {
	titles   []Title
	mappings []Mapping
	snapshot *classify.Snapshot
}

func openRows(ctx context.Context, store storage.Store, name string) (*rows.Reader, io.Closer, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rows.NewReader(name, rc), rc, nil
}

// readTitles parses the titles file. The header and every data row must have
// exactly four columns.
func readTitles(ctx context.Context, store storage.Store) ([]Title, error) {
	r, c, err := openRows(ctx, store, FileTitles)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	header, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, rows.Structural(FileTitles, 1, nil, rows.ErrMissingHeader)
	}
	if err != nil {
		return nil, err
	}
	if err := r.Expect(header, 4); err != nil {
		return nil, err
	}

	var out []Title
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if err := r.Expect(row, 4); err != nil {
			return nil, err
		}
		f := row.Fields
		out = append(out, Title{
			Line:      row.Line,
			ShortName: strings.TrimSpace(f[0]),
			Title:     strings.TrimSpace(f[1]),
			NBK:       strings.TrimSpace(f[2]),
			PMID:      strings.TrimSpace(f[3]),
		})
	}
}

// readIDMap parses the book to OMIM map, skipping the header line.
func readIDMap(ctx context.Context, store storage.Store) ([]Mapping, error) {
	r, c, err := openRows(ctx, store, FileIDMap)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []Mapping
	first := true
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		if err := r.Expect(row, 3); err != nil {
			return nil, err
		}
		f := row.Fields
		out = append(out, Mapping{
			Line:      row.Line,
			NBK:       strings.TrimSpace(f[0]),
			ShortName: strings.TrimSpace(f[1]),
			OMIM:      strings.TrimSpace(f[2]),
		})
	}
}
