package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semxref/config"
	"github.com/c360studio/semxref/curie"
	"github.com/c360studio/semxref/export"
	"github.com/c360studio/semxref/graph"
	"github.com/c360studio/semxref/ingest"
	"github.com/c360studio/semxref/mapping"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/source/biogrid"
	"github.com/c360studio/semxref/source/genereviews"
	"github.com/c360studio/semxref/storage"
	"github.com/c360studio/semxref/terms"
)

// App wires configuration to the ingest components.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	curies   *curie.Registry
	terms    *terms.Dictionary
	mapper   *mapping.Mapper
	recorder *metrics.Recorder
	sources  *ingest.Registry

	// set by openSink / openRuns
	sink    graph.Sink
	runs    storage.RunStore
	clients []*natsclient.Client
}

// NewApp builds the identifier components and registers the sources.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	prefixes := curie.DefaultPrefixes
	if len(cfg.Curies) > 0 {
		prefixes = cfg.Curies
	}
	registry, err := curie.New(prefixes, logger)
	if err != nil {
		return nil, fmt.Errorf("build prefix registry: %w", err)
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		curies:   registry,
		terms:    terms.New(cfg.Terms),
		recorder: metrics.NewRecorder(),
		sources:  ingest.NewRegistry(),
	}
	app.mapper = mapping.New(app.terms, logger, app.recorder)

	if err := app.registerSources(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) registerSources(ctx context.Context) error {
	grStore, err := a.openStore(ctx, genereviews.Name)
	if err != nil {
		return err
	}
	a.sources.Register(genereviews.New(grStore, a.terms, genereviews.Options{
		TestMode: a.cfg.TestMode,
		TestIDs:  a.cfg.TestIDs.Disease,
		Limit:    a.cfg.Limit,
	}, a.logger, a.recorder))

	bgStore, err := a.openStore(ctx, biogrid.Name)
	if err != nil {
		return err
	}
	opts := biogrid.DefaultOptions()
	opts.TestMode = a.cfg.TestMode
	opts.TestGeneIDs = a.cfg.TestIDs.Gene
	if len(a.cfg.TestIDs.BioGRID) > 0 {
		opts.TestBioGRIDIDs = a.cfg.TestIDs.BioGRID
	}
	if len(a.cfg.BioGRID.TaxIDs) > 0 {
		opts.TaxIDs = a.cfg.BioGRID.TaxIDs
	}
	if len(a.cfg.BioGRID.Species) > 0 {
		opts.Species = a.cfg.BioGRID.Species
	}
	if len(a.cfg.BioGRID.GenePrefixes) > 0 {
		opts.GenePrefixes = a.cfg.BioGRID.GenePrefixes
	}
	opts.Limit = a.cfg.Limit
	a.sources.Register(biogrid.New(bgStore, a.terms, opts, a.logger, a.recorder))
	return nil
}

// openStore returns the raw file store of one source, rooted at
// <raw dir>/<source> or <bucket>/<prefix>/<source>.
func (a *App) openStore(ctx context.Context, name string) (storage.Store, error) {
	raw := a.cfg.Raw
	switch raw.Driver {
	case config.RawDriverS3:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    raw.Bucket,
			Prefix:    path.Join(raw.Prefix, name),
			Region:    raw.Region,
			Endpoint:  raw.Endpoint,
			PathStyle: raw.PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 store for %s: %w", name, err)
		}
		return store, nil
	default:
		return storage.NewFSStore(filepath.Join(raw.Dir, name)), nil
	}
}

// openSink connects the configured triple sink.
func (a *App) openSink(ctx context.Context) (graph.Sink, error) {
	if a.sink != nil {
		return a.sink, nil
	}
	sc := a.cfg.Sink

	var (
		sink graph.Sink
		err  error
	)
	switch sc.Driver {
	case config.SinkTurtle, config.SinkNTriples:
		format := export.FormatTurtle
		if sc.Driver == config.SinkNTriples {
			format = export.FormatNTriples
		}
		sink, err = export.Create(sc.Path, format, a.curies, a.logger)
	case config.SinkNATS:
		var client *natsclient.Client
		client, err = a.dialNATS(ctx, sc.URL)
		if err != nil {
			return nil, err
		}
		if err = graph.EnsureStream(ctx, client); err != nil {
			return nil, err
		}
		sink = graph.NewNATSSink(client, a.curies, graph.NATSOptions{
			Source:    "semxref",
			BatchSize: sc.BatchSize,
			Logger:    a.logger,
		})
	case config.SinkNeo4j:
		sink, err = graph.DialNeo4j(ctx, sc.URL, sc.User, sc.Password, graph.DefaultNeo4jOptions(a.terms))
	case config.SinkSQLite, config.SinkPostgres:
		sink, err = graph.OpenSQL(ctx, sc.Driver, sc.DSN, sc.BatchSize, a.logger)
	default:
		return nil, fmt.Errorf("unknown sink driver %q", sc.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s sink: %w", sc.Driver, err)
	}
	a.sink = sink
	return sink, nil
}

// openRuns returns the run history store.
func (a *App) openRuns(ctx context.Context) (storage.RunStore, error) {
	if a.runs != nil {
		return a.runs, nil
	}
	if a.cfg.Runs.Driver != config.RunsNATS {
		a.runs = storage.NewMemoryRunStore()
		return a.runs, nil
	}

	client, err := a.dialNATS(ctx, a.cfg.Runs.URL)
	if err != nil {
		return nil, err
	}
	js, err := client.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get JetStream context: %w", err)
	}
	runs, err := storage.NewKVRunStore(ctx, js)
	if err != nil {
		return nil, err
	}
	a.runs = runs
	return runs, nil
}

func (a *App) dialNATS(ctx context.Context, url string) (*natsclient.Client, error) {
	client, err := graph.DialNATS(ctx, url, a.logger)
	if err != nil {
		return nil, err
	}
	a.clients = append(a.clients, client)
	return client, nil
}

// Runner builds an ingest runner over the configured sink and run store.
func (a *App) Runner(ctx context.Context) (*ingest.Runner, error) {
	sink, err := a.openSink(ctx)
	if err != nil {
		return nil, err
	}
	runs, err := a.openRuns(ctx)
	if err != nil {
		return nil, err
	}
	return ingest.NewRunner(ingest.RunnerConfig{
		Registry: a.sources,
		Sink:     sink,
		SinkName: a.cfg.Sink.Driver,
		Terms:    a.terms,
		Runs:     runs,
		Recorder: a.recorder,
		Logger:   a.logger,
	})
}

// Close closes the sink and any NATS connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.sink != nil {
		if err := a.sink.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
		a.sink = nil
	}
	for _, c := range a.clients {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close NATS: %w", err))
		}
	}
	a.clients = nil
	return errors.Join(errs...)
}
