package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/semxref/graph"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/storage"
	"github.com/c360studio/semxref/terms"
)

// flusher is implemented by sinks that buffer writes.
type flusher interface {
	Flush(ctx context.Context) error
}

// resetter is implemented by sinks that hold the output of a single Run,
// such as export files. They are cleared at the start of every Run.
type resetter interface {
	Reset(ctx context.Context) error
}

// RunnerConfig holds the collaborators of a Runner.
type RunnerConfig struct {
	Registry *Registry
	Sink     graph.Sink
	// SinkName labels the triple counter, e.g. "turtle" or "neo4j".
	SinkName string
	Terms    *terms.Dictionary
	// Runs stores run history; optional.
	Runs     storage.RunStore
	Recorder *metrics.Recorder
	Logger   *slog.Logger
}

// Runner runs registered sources one after another against a single sink.
type Runner struct {
	registry *Registry
	sink     graph.Sink
	sinkName string
	terms    *terms.Dictionary
	runs     storage.RunStore
	recorder *metrics.Recorder
	logger   *slog.Logger

	// mu serializes runs; sinks are not shared between concurrent runs.
	mu sync.Mutex
	// last holds the source names of the previous Run.
	last []string
	now  func() time.Time
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("sink required")
	}
	if cfg.Terms == nil {
		cfg.Terms = terms.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SinkName == "" {
		cfg.SinkName = "default"
	}
	return &Runner{
		registry: cfg.Registry,
		sink:     cfg.Sink,
		sinkName: cfg.SinkName,
		terms:    cfg.Terms,
		runs:     cfg.Runs,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		now:      time.Now,
	}, nil
}

// Run runs the named sources in order, or every registered source when no
// names are given. The first failing source stops the run; its error is
// returned unchanged apart from wrapping, so structural errors can be
// matched with errors.As. A resettable sink is reset before any source runs.
func (r *Runner) Run(ctx context.Context, names ...string) ([]*storage.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(names) == 0 {
		names = r.registry.Names()
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := r.registry.Get(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if rs, ok := r.sink.(resetter); ok {
		if err := rs.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset sink: %w", err)
		}
	}
	r.last = append(r.last[:0], names...)

	start := r.snapshot()
	var records []*storage.RunRecord
	for _, src := range sources {
		rec, err := r.runOne(ctx, src)
		records = append(records, rec)
		if err != nil {
			return records, fmt.Errorf("%s: %w", src.Name(), err)
		}
	}
	r.logSummary(start)
	return records, nil
}

// Rerun runs the sources affected by a change. A resettable sink only holds
// the latest Run, so the sources of the previous Run are run again together
// with the changed ones.
func (r *Runner) Rerun(ctx context.Context, changed []string) ([]*storage.RunRecord, error) {
	if _, ok := r.sink.(resetter); !ok {
		return r.Run(ctx, changed...)
	}

	r.mu.Lock()
	names := append([]string(nil), r.last...)
	r.mu.Unlock()
	for _, name := range changed {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return r.Run(ctx, names...)
}

func (r *Runner) runOne(ctx context.Context, src Source) (*storage.RunRecord, error) {
	rec := &storage.RunRecord{
		ID:        storage.NewRunID(),
		Source:    src.Name(),
		StartedAt: r.now().UTC(),
	}
	r.logger.Info("Starting source", "source", src.Name(), "run_id", rec.ID)

	before := r.snapshot()
	model := graph.NewModel(r.sink, r.terms)
	err := src.Run(ctx, model)
	if err == nil {
		if f, ok := r.sink.(flusher); ok {
			err = f.Flush(ctx)
		}
	}

	rec.FinishedAt = r.now().UTC()
	rec.Triples = model.Count()
	rec.Status = storage.RunStatusOK
	if err != nil {
		rec.Status = storage.RunStatusFailed
		rec.Error = err.Error()
	}
	r.recorder.Triples(r.sinkName, rec.Triples)
	r.recorder.Run(src.Name(), err)
	if after, serr := r.recorder.Summary(); serr == nil {
		if delta := after.Since(before); len(delta) > 0 {
			rec.Counters = delta
		}
	}

	if r.runs != nil {
		if serr := r.runs.SaveRun(ctx, rec); serr != nil {
			r.logger.Warn("Failed to save run record", "source", src.Name(), "run_id", rec.ID, "error", serr)
		}
	}

	if err != nil {
		r.logger.Error("Source failed", "source", src.Name(), "run_id", rec.ID, "error", err)
		return rec, err
	}
	r.logger.Info("Source complete",
		"source", src.Name(),
		"run_id", rec.ID,
		"triples", rec.Triples,
		"duration", rec.FinishedAt.Sub(rec.StartedAt))
	return rec, nil
}

// snapshot returns the current counter values, or an empty summary when
// they cannot be gathered.
func (r *Runner) snapshot() metrics.Summary {
	s, err := r.recorder.Summary()
	if err != nil {
		r.logger.Warn("Failed to gather metrics", "error", err)
		return metrics.Summary{}
	}
	return s
}

// logSummary reports unmapped codes, rewritten identifiers and emitted
// associations counted since start.
func (r *Runner) logSummary(start metrics.Summary) {
	summary, err := r.recorder.Summary()
	if err != nil {
		r.logger.Warn("Failed to gather run summary", "error", err)
		return
	}
	summary = summary.Since(start)
	attrs := []any{
		"unmapped_codes", summary.Total("unmapped_codes"),
		"associations", summary.Total("associations"),
		"triples", summary.Total("triples"),
	}
	for _, key := range summary.Keys() {
		if strings.HasPrefix(key, "identifiers{") {
			outcome := strings.TrimSuffix(strings.TrimPrefix(key, "identifiers{"), "}")
			attrs = append(attrs, outcome, summary[key])
		}
	}
	r.logger.Info("Run summary", attrs...)
}
