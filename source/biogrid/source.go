// Package biogrid ingests BioGRID gene interactions and identifier
// cross-references.
package biogrid

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/c360studio/semxref/graph"
	"github.com/c360studio/semxref/mapping"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/storage"
	"github.com/c360studio/semxref/terms"
)

// Name identifies the source in configuration, metrics and run history.
const Name = "biogrid"

// Raw file names, relative to the source's store.
const (
	FileInteractions = "interactions.mitab.zip"
	FileIdentifiers  = "identifiers.tab.zip"
)

var versionPattern = regexp.MustCompile(`BIOGRID-ALL-(\d+\.\d+\.\d+)\.mitab\.txt`)

// Options controls a run.
type Options struct {
	TestMode bool
	// TestGeneIDs are the NCBI gene ids kept in test mode, with or without
	// the NCBIGene prefix.
	TestGeneIDs []string
	// TestBioGRIDIDs are the BioGRID ids kept from the identifier file in
	// test mode.
	TestBioGRIDIDs []string

	TaxIDs       []int
	Species      []string
	GenePrefixes []string
	// Limit caps processed rows outside test mode; 0 means no limit.
	Limit int
}

// defaultTestBioGRIDIDs is the identifier subset used in test mode.
var defaultTestBioGRIDIDs = []string{
	"106638", "107308", "107506", "107674", "107675", "108277", "108506", "108767",
	"108814", "108899", "110308", "110364", "110678", "111642", "112300", "112365",
	"112771", "112898", "199832", "203220", "247276", "120150", "120160", "124085",
}

// DefaultOptions returns the human and mouse filters.
func DefaultOptions() Options {
	return Options{
		TestBioGRIDIDs: append([]string(nil), defaultTestBioGRIDIDs...),
		TaxIDs:         []int{9606, 10090},
		Species:        []string{"Homo sapiens", "Mus musculus"},
		GenePrefixes:   []string{"NCBIGene", "MGI", "ENSEMBL", "ZFIN", "HGNC"},
	}
}

// Report summarizes a run.
type Report struct {
	Version      string
	Interactions int
	Filtered     int
	Unparsable   int
	Equivalences int
	Labels       int
}

// Source ingests BioGRID from a raw store.
type Source struct {
	store    storage.Store
	terms    *terms.Dictionary
	mapper   *mapping.Mapper
	opts     Options
	logger   *slog.Logger
	recorder *metrics.Recorder

	last Report
}

// New creates a source reading from store. Empty filter options take the
// values from DefaultOptions.
func New(store storage.Store, dict *terms.Dictionary, opts Options, logger *slog.Logger, recorder *metrics.Recorder) *Source {
	if dict == nil {
		dict = terms.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("source", Name)

	def := DefaultOptions()
	if len(opts.TaxIDs) == 0 {
		opts.TaxIDs = def.TaxIDs
	}
	if len(opts.Species) == 0 {
		opts.Species = def.Species
	}
	if len(opts.GenePrefixes) == 0 {
		opts.GenePrefixes = def.GenePrefixes
	}
	if len(opts.TestBioGRIDIDs) == 0 {
		opts.TestBioGRIDIDs = def.TestBioGRIDIDs
	}
	if opts.TestMode && len(opts.TestGeneIDs) == 0 {
		logger.Warn("Not configured with gene test ids")
	}

	return &Source{
		store:    store,
		terms:    dict,
		mapper:   mapping.New(dict, logger, recorder),
		opts:     opts,
		logger:   logger,
		recorder: recorder,
	}
}

// Name returns the source name.
func (s *Source) Name() string { return Name }

// Files returns the raw file patterns the source reads.
func (s *Source) Files() []string {
	return []string{FileInteractions, FileIdentifiers}
}

// Report returns the summary of the last run.
func (s *Source) Report() Report { return s.last }

// Run reads both archives and writes interactions and identifier
// equivalences through model.
func (s *Source) Run(ctx context.Context, model *graph.Model) error {
	report := Report{}
	if err := s.interactions(ctx, model, &report); err != nil {
		return err
	}
	if err := s.identifiers(ctx, model, &report); err != nil {
		return err
	}
	s.last = report
	s.logger.Info("BioGRID ingest complete",
		"version", report.Version,
		"interactions", report.Interactions,
		"filtered", report.Filtered,
		"unparsable", report.Unparsable,
		"equivalences", report.Equivalences,
		"labels", report.Labels)
	return nil
}
