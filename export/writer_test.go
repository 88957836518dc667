package export_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semxref/curie"
	"github.com/c360studio/semxref/export"
	"github.com/c360studio/semxref/graph"
)

func registry(t *testing.T) *curie.Registry {
	t.Helper()
	reg, err := curie.New(curie.DefaultPrefixes, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("curie.New: %v", err)
	}
	return reg
}

var sample = []graph.Triple{
	{Subject: "OMIM:136132", Predicate: "rdfs:subClassOf", Object: "GeneReviews:NBK1103"},
	{Subject: "GeneReviews:NBK1103", Predicate: "rdfs:label", Object: "Trimethylaminuria \"TMAU\"\n", Literal: true},
	{Subject: "_:a1b2", Predicate: "OBAN:association_has_subject", Object: "NCBIGene:6416"},
	{Subject: "NOPE:1", Predicate: "rdf:type", Object: "owl:Class"},
}

func TestWriter_Turtle(t *testing.T) {
	var sb strings.Builder
	w := export.NewWriter(&sb, export.FormatTurtle, registry(t), slog.New(slog.DiscardHandler))

	if err := w.Write(context.Background(), sample...); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	output := sb.String()

	if !strings.HasPrefix(output, "@prefix BIOGRID: <") {
		t.Errorf("expected sorted prefix declarations first, got:\n%s", output)
	}
	if !strings.Contains(output, "@prefix OMIM: <http://omim.org/entry/> .\n") {
		t.Error("Turtle output should declare the OMIM prefix")
	}
	if !strings.Contains(output, "OMIM:136132 rdfs:subClassOf GeneReviews:NBK1103 .\n") {
		t.Error("Turtle output should keep CURIEs as prefixed names")
	}
	if !strings.Contains(output, `GeneReviews:NBK1103 rdfs:label "Trimethylaminuria \"TMAU\"\n" .`) {
		t.Error("Turtle output should escape literals")
	}
	if !strings.Contains(output, "_:a1b2 OBAN:association_has_subject NCBIGene:6416 .\n") {
		t.Error("Turtle output should keep blank nodes")
	}
	if strings.Contains(output, "NOPE") {
		t.Error("triples with unknown prefixes should be skipped")
	}
	if w.Written() != 3 || w.Skipped() != 1 {
		t.Errorf("written=%d skipped=%d, want 3 and 1", w.Written(), w.Skipped())
	}
}

func TestWriter_NTriples(t *testing.T) {
	var sb strings.Builder
	w := export.NewWriter(&sb, export.FormatNTriples, registry(t), nil)

	if err := w.Write(context.Background(), sample[0]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := "<http://omim.org/entry/136132> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://www.ncbi.nlm.nih.gov/books/NBK1103> .\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriter_TurtleFallsBackToIRI(t *testing.T) {
	var sb strings.Builder
	w := export.NewWriter(&sb, export.FormatTurtle, registry(t), nil)

	triple := graph.Triple{Subject: "ENSEMBL:ENSG0000.", Predicate: "rdf:type", Object: "owl:Class"}
	if err := w.Write(context.Background(), triple); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = w.Close(context.Background())

	if !strings.Contains(sb.String(), "<http://identifiers.org/ensembl/ENSG0000.> rdf:type owl:Class .") {
		t.Errorf("expected full IRI for an invalid local name, got:\n%s", sb.String())
	}
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "genereviews.nt")
	w, err := export.Create(path, export.FormatNTriples, registry(t), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Write(context.Background(), sample[0]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasSuffix(string(data), " .\n") {
		t.Errorf("unexpected file content: %q", data)
	}

	if _, err := export.Create(path, export.Format("jsonld"), registry(t), nil); err == nil {
		t.Error("Create should reject unsupported formats")
	}
}

func TestFileWriter_FlushAndReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kg.nt")
	w, err := export.Create(path, export.FormatNTriples, registry(t), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer w.Close(ctx)

	read := func() string {
		t.Helper()
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		return string(data)
	}

	if err := w.Write(ctx, sample[0]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	first := read()
	if strings.Count(first, "<http://omim.org/entry/136132>") != 1 {
		t.Fatalf("flushed statement not visible: %q", first)
	}

	if err := w.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := read(); got != "" {
		t.Errorf("Reset should truncate, got %q", got)
	}
	if w.Written() != 0 {
		t.Errorf("Written after Reset = %d, want 0", w.Written())
	}

	if err := w.Write(ctx, sample[0]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := read(); got != first {
		t.Errorf("rewritten output = %q, want %q", got, first)
	}

	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Reset(ctx); !errors.Is(err, export.ErrWriterClosed) {
		t.Errorf("Reset after Close = %v, want ErrWriterClosed", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"turtle", "ntriples"} {
		f, err := export.ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
		if export.FormatRegistry[f].Extension == "" {
			t.Errorf("format %s has no extension", f)
		}
	}
	if _, err := export.ParseFormat("rdfxml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
