// Package rows reads tab-delimited raw files and reports malformed rows as
// structural errors.
package rows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel causes carried by StructuralError.
var (
	ErrColumnCount         = errors.New("unexpected column count")
	ErrMissingDiscriminant = errors.New("missing record discriminant")
	ErrMissingHeader       = errors.New("missing header")
)

// StructuralError reports a row whose shape makes the rest of the stream
// untrustworthy. Parsing stops at the first one.
type StructuralError struct {
	File string
	Line int
	Row  []string
	Err  error
}

func (e *StructuralError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d: %v: %q", file, e.Line, e.Err, strings.Join(e.Row, "\t"))
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Structural builds a StructuralError for row at line.
func Structural(file string, line int, row []string, err error) *StructuralError {
	return &StructuralError{File: file, Line: line, Row: append([]string(nil), row...), Err: err}
}

// Row is one tokenized line with its 1-based line number.
type Row struct {
	Line   int
	Fields []string
}

// Reader yields tab-separated rows. Field counts are not enforced here;
// callers validate the shape they expect.
type Reader struct {
	name string
	csv  *csv.Reader
}

// NewReader wraps r. name is used in error messages.
func NewReader(name string, r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return &Reader{name: name, csv: cr}
}

// Name returns the file name given at construction.
func (r *Reader) Name() string { return r.name }

// Next returns the next row or io.EOF.
func (r *Reader) Next() (Row, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		return Row{}, fmt.Errorf("read %s: %w", r.name, err)
	}
	line, _ := r.csv.FieldPos(0)
	return Row{Line: line, Fields: fields}, nil
}

// Expect returns a StructuralError when row does not have exactly n fields.
func (r *Reader) Expect(row Row, n int) error {
	if len(row.Fields) != n {
		return Structural(r.name, row.Line, row.Fields, fmt.Errorf("%w: want %d, got %d", ErrColumnCount, n, len(row.Fields)))
	}
	return nil
}
