package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/semxref/curie"
	"github.com/c360studio/semxref/graph"
)

// ErrWriterClosed is returned by Reset after Close.
var ErrWriterClosed = errors.New("writer closed")

var (
	turtlePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	turtleLocal  = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)
)

// Writer is a graph.Sink that streams triples to an RDF file. Terms whose
// prefix is not registered are skipped and counted.
type Writer struct {
	out      *bufio.Writer
	closer   io.Closer
	format   Format
	registry *curie.Registry
	logger   *slog.Logger

	headerDone bool
	written    int
	skipped    int
}

var _ graph.Sink = (*Writer)(nil)

// NewWriter writes to w. The caller owns w.
func NewWriter(w io.Writer, format Format, registry *curie.Registry, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		out:      bufio.NewWriter(w),
		format:   format,
		registry: registry,
		logger:   logger,
	}
}

// FileWriter is a Writer over a file it owns. Reset truncates the file so
// each ingest run replaces the previous output.
type FileWriter struct {
	*Writer
	file *os.File
}

// Create opens path for writing, creating parent directories.
func Create(path string, format Format, registry *curie.Registry, logger *slog.Logger) (*FileWriter, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := NewWriter(f, format, registry, logger)
	w.closer = f
	return &FileWriter{Writer: w, file: f}, nil
}

// Reset discards buffered output and truncates the file.
func (f *FileWriter) Reset(context.Context) error {
	if f.closer == nil {
		return ErrWriterClosed
	}
	f.out.Reset(f.file)
	if err := f.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate %s: %w", f.file.Name(), err)
	}
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", f.file.Name(), err)
	}
	f.headerDone = false
	f.written = 0
	f.skipped = 0
	return nil
}

// Written returns the number of triples written.
func (w *Writer) Written() int { return w.written }

// Skipped returns the number of triples dropped for unresolvable terms.
func (w *Writer) Skipped() int { return w.skipped }

func (w *Writer) Write(_ context.Context, triples ...graph.Triple) error {
	if !w.headerDone {
		w.headerDone = true
		if w.format == FormatTurtle {
			if err := w.writePrefixes(); err != nil {
				return err
			}
		}
	}
	for _, t := range triples {
		line, ok := w.statement(t)
		if !ok {
			w.skipped++
			continue
		}
		if _, err := w.out.WriteString(line); err != nil {
			return fmt.Errorf("write triple: %w", err)
		}
		w.written++
	}
	return nil
}

// Flush writes buffered statements to the underlying writer.
func (w *Writer) Flush(context.Context) error {
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes output and closes the file opened by Create.
func (w *Writer) Close(context.Context) error {
	err := w.out.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	if w.skipped > 0 {
		w.logger.Warn("Skipped triples with unresolvable terms", "count", w.skipped)
	}
	return err
}

// writePrefixes writes sorted prefix declarations.
func (w *Writer) writePrefixes() error {
	prefixes := w.registry.Prefixes()
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		if turtlePrefix.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		if _, err := fmt.Fprintf(w.out, "@prefix %s: <%s> .\n", prefix, prefixes[prefix]); err != nil {
			return fmt.Errorf("write prefixes: %w", err)
		}
	}
	_, err := w.out.WriteString("\n")
	return err
}

func (w *Writer) statement(t graph.Triple) (string, bool) {
	s, ok := w.term(t.Subject)
	if !ok {
		return "", false
	}
	p, ok := w.term(t.Predicate)
	if !ok {
		return "", false
	}
	var o string
	if t.Literal {
		o = `"` + escapeString(t.Object) + `"`
	} else if o, ok = w.term(t.Object); !ok {
		return "", false
	}
	return s + " " + p + " " + o + " .\n", true
}

// term renders a CURIE or blank node. Turtle keeps CURIEs whose parts are
// valid prefixed names; everything else is written as a full IRI.
func (w *Writer) term(id string) (string, bool) {
	if strings.HasPrefix(id, "_:") {
		return id, true
	}
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return "<" + id + ">", true
	}
	iri, err := w.registry.ToURI(id)
	if err != nil || iri == "" {
		return "", false
	}
	if w.format == FormatTurtle {
		prefix, local, _ := strings.Cut(id, ":")
		if turtlePrefix.MatchString(prefix) && turtleLocal.MatchString(local) {
			return id, true
		}
	}
	return "<" + iri + ">", true
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
