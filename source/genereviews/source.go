// Package genereviews ingests GeneReviews book metadata: book classes with
// titles and synonyms, book to OMIM cross-references filtered through the
// OMIM classification, and clinical summaries from locally acquired book
// pages.
package genereviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semxref/assoc"
	"github.com/c360studio/semxref/classify"
	"github.com/c360studio/semxref/graph"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/storage"
	"github.com/c360studio/semxref/terms"
)

// Name identifies the source in configuration, metrics and run history.
const Name = "genereviews"

// maxListedBooks bounds the missing-book list in the run log.
const maxListedBooks = 100

// Options controls a run.
type Options struct {
	TestMode bool
	// TestIDs are the disease identifiers kept in test mode.
	TestIDs []string
	// Limit caps processed rows outside test mode; 0 means no limit.
	Limit int
}

// Report summarizes a run.
type Report struct {
	Titles       int
	Mappings     int
	Malformed    int
	Books        int
	MissingBooks []string
	// Genes and Phenotypes count OMIM ids by classification.
	Genes        int
	Phenotypes   int
	Associations assoc.Report
}

// Source ingests GeneReviews from a raw store.
type Source struct {
	store      storage.Store
	terms      *terms.Dictionary
	classifier *classify.Classifier
	builder    *assoc.Builder
	opts       Options
	logger     *slog.Logger
	recorder   *metrics.Recorder

	last Report
}

// New creates a source reading from store.
func New(store storage.Store, dict *terms.Dictionary, opts Options, logger *slog.Logger, recorder *metrics.Recorder) *Source {
	if dict == nil {
		dict = terms.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("source", Name)
	return &Source{
		store:      store,
		terms:      dict,
		classifier: classify.New(logger, recorder),
		builder:    assoc.New(dict, logger, recorder),
		opts:       opts,
		logger:     logger,
		recorder:   recorder,
	}
}

// Name returns the source name.
func (s *Source) Name() string { return Name }

// Files returns the raw file patterns the source reads.
func (s *Source) Files() []string {
	return []string{FileTitles, FileIDMap, FileMimTitles, BooksPattern}
}

// Report returns the summary of the last run.
func (s *Source) Report() Report { return s.last }

// Run reads the raw files and writes the GeneReviews graph through model.
func (s *Source) Run(ctx context.Context, model *graph.Model) error {
	in, err := s.load(ctx)
	if err != nil {
		return err
	}
	report := Report{
		Genes:      in.snapshot.Count(classify.Gene),
		Phenotypes: in.snapshot.Count(classify.Phenotype),
	}

	bookIDs, err := s.writeTitles(ctx, model, in.titles, &report)
	if err != nil {
		return err
	}
	groups, err := s.writeMappings(ctx, model, in.mappings, &report)
	if err != nil {
		return err
	}

	books := make(map[string]classify.IDSet, len(bookIDs))
	for nbk := range bookIDs {
		if ids, ok := groups[nbk]; ok {
			books[nbk] = ids
		} else {
			books[nbk] = classify.NewIDSet()
		}
	}
	associations, built := s.builder.Build(books, in.snapshot, assoc.Options{
		TestMode:  s.opts.TestMode,
		Allowlist: s.opts.TestIDs,
	})
	report.Associations = built
	subjectPrefix := assoc.DefaultSubjectPrefix + ":"
	for _, a := range associations {
		if a.Kind == assoc.Subclass && strings.HasPrefix(a.Subject, subjectPrefix) {
			if err := model.AddClass(ctx, a.Subject, ""); err != nil {
				return err
			}
		}
		if err := model.AddAssociation(ctx, a); err != nil {
			return err
		}
	}

	if err := s.writeBooks(ctx, model, bookIDs.Sorted(), &report); err != nil {
		return err
	}

	s.last = report
	s.logger.Info("GeneReviews ingest complete",
		"titles", report.Titles,
		"mappings", report.Mappings,
		"malformed", report.Malformed,
		"books", report.Books,
		"missing_books", len(report.MissingBooks),
		"genes", report.Genes,
		"phenotypes", report.Phenotypes,
		"associations", built.Emitted)
	return nil
}

func (s *Source) load(ctx context.Context) (*inputs, error) {
	in := &inputs{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		titles, err := readTitles(gctx, s.store)
		in.titles = titles
		return err
	})
	g.Go(func() error {
		mappings, err := readIDMap(gctx, s.store)
		in.mappings = mappings
		return err
	})
	g.Go(func() error {
		r, c, err := openRows(gctx, s.store, FileMimTitles)
		if err != nil {
			return err
		}
		defer c.Close()
		snap, err := s.classifier.ClassifyRows(r)
		in.snapshot = snap
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s: %w", Name, err)
	}
	return in, nil
}

// writeTitles declares a class per book and returns every book id, including
// those past the limit.
func (s *Source) writeTitles(ctx context.Context, model *graph.Model, titles []Title, report *Report) (classify.IDSet, error) {
	bookIDs := classify.NewIDSet()
	for _, t := range titles {
		s.recorder.Row(Name, FileTitles)
		report.Titles++
		bookIDs.Add(t.NBK)
		if s.opts.Limit > 0 && t.Line >= s.opts.Limit {
			continue
		}
		id := BookID(t.NBK)
		if err := model.AddClass(ctx, id, t.Title); err != nil {
			return nil, err
		}
		if err := model.AddSynonym(ctx, id, t.ShortName); err != nil {
			return nil, err
		}
	}
	return bookIDs, nil
}

// writeMappings declares the book classes named in the id map and groups the
// candidate OMIM numbers by book.
func (s *Source) writeMappings(ctx context.Context, model *graph.Model, mappings []Mapping, report *Report) (map[string]classify.IDSet, error) {
	groups := make(map[string]classify.IDSet)
	for _, m := range mappings {
		s.recorder.Row(Name, FileIDMap)
		if m.OMIM == "" || len(m.OMIM) > maxOMIMLength {
			s.logger.Warn("OMIM number incorrectly formatted; skipping",
				"file", FileIDMap, "line", m.Line, "nbk", m.NBK, "omim", m.OMIM)
			report.Malformed++
			continue
		}
		report.Mappings++
		if groups[m.NBK] == nil {
			groups[m.NBK] = classify.NewIDSet()
		}
		groups[m.NBK].Add(m.OMIM)

		id := BookID(m.NBK)
		if err := model.AddClass(ctx, id, ""); err != nil {
			return nil, err
		}
		if err := model.AddSynonym(ctx, id, m.ShortName); err != nil {
			return nil, err
		}
		if !s.opts.TestMode && s.opts.Limit > 0 && m.Line > s.opts.Limit {
			break
		}
	}
	return groups, nil
}

// writeBooks adds definitions and citations from the book pages present in
// the store.
func (s *Source) writeBooks(ctx context.Context, model *graph.Model, nbks []string, report *Report) error {
	names, err := s.store.Glob(ctx, BooksPattern)
	if err != nil {
		return fmt.Errorf("discover books: %w", err)
	}
	index := bookIndex(names)

	for i, nbk := range nbks {
		if s.opts.Limit > 0 && i >= s.opts.Limit {
			break
		}
		name, ok := index[nbk]
		if !ok {
			report.MissingBooks = append(report.MissingBooks, nbk)
			continue
		}
		book, err := s.readBook(ctx, nbk, name)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				report.MissingBooks = append(report.MissingBooks, nbk)
				continue
			}
			return err
		}
		report.Books++
		s.logger.Debug("Processing book", "nbk", nbk, "citations", len(book.PMIDs))

		id := BookID(nbk)
		if def := book.Definition(id); def != "" {
			if err := model.AddDefinition(ctx, id, def); err != nil {
				return err
			}
		}
		for _, num := range book.PMIDs {
			pmid := "PMID:" + num
			if err := model.AddTriple(ctx, pmid, s.terms.ID(terms.IsAbout), id, false); err != nil {
				return err
			}
			if err := model.AddType(ctx, pmid, s.terms.ID(terms.JournalArticle)); err != nil {
				return err
			}
		}
	}

	if n := len(report.MissingBooks); n > 0 {
		attrs := []any{"count", n}
		if n <= maxListedBooks {
			attrs = append(attrs, "nbks", report.MissingBooks)
		}
		s.logger.Info("Books not found locally", attrs...)
	}
	return nil
}

func (s *Source) readBook(ctx context.Context, nbk, name string) (Book, error) {
	rc, err := s.store.Open(ctx, name)
	if err != nil {
		return Book{}, err
	}
	defer rc.Close()
	return ParseBook(nbk, rc)
}

// BookID returns the CURIE of a GeneReviews book.
func BookID(nbk string) string {
	return assoc.Curie(assoc.DefaultGroupPrefix, nbk)
}
