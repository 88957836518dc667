// Package metrics records ingest run counters in a Prometheus registry.
//
// Every Recorder method is safe on a nil receiver so components can be built
// without metrics in tests.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "semxref"

// Identifier outcomes.
const (
	OutcomeReplaced     = "replaced"
	OutcomeRemoved      = "removed"
	OutcomeExcluded     = "excluded"
	OutcomeUnclassified = "unclassified"
	OutcomeMalformed    = "malformed"
)

// Vocabulary tables reported by UnmappedCode.
const (
	TableRelation = "relation"
	TableEvidence = "evidence"
	TablePrefix   = "prefix"
)

// Recorder owns the run counters.
type Recorder struct {
	registry *prometheus.Registry

	unmapped     *prometheus.CounterVec
	identifiers  *prometheus.CounterVec
	associations *prometheus.CounterVec
	rows         *prometheus.CounterVec
	triples      *prometheus.CounterVec
	runs         *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, including Go runtime
// and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		unmapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_codes_total",
			Help:      "Vocabulary codes that fell back to a default mapping.",
		}, []string{"table"}),
		identifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_total",
			Help:      "Identifiers filtered or rewritten during resolution, by outcome.",
		}, []string{"outcome"}),
		associations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "associations_total",
			Help:      "Associations emitted, by kind.",
		}, []string{"kind"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Input rows read, by source and file.",
		}, []string{"source", "file"}),
		triples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_total",
			Help:      "Triples written to the graph sink.",
		}, []string{"sink"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Source runs, by source and status.",
		}, []string{"source", "status"}),
	}

	r.registry.MustRegister(
		r.unmapped,
		r.identifiers,
		r.associations,
		r.rows,
		r.triples,
		r.runs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// UnmappedCode counts a code that fell back to a default in the given table.
func (r *Recorder) UnmappedCode(table string) {
	if r == nil {
		return
	}
	r.unmapped.WithLabelValues(table).Inc()
}

// Identifiers adds n identifiers with the given outcome.
func (r *Recorder) Identifiers(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.identifiers.WithLabelValues(outcome).Add(float64(n))
}

// Association counts one emitted association.
func (r *Recorder) Association(kind string) {
	if r == nil {
		return
	}
	r.associations.WithLabelValues(kind).Inc()
}

// Row counts one input row.
func (r *Recorder) Row(source, file string) {
	if r == nil {
		return
	}
	r.rows.WithLabelValues(source, file).Inc()
}

// Triples adds n written triples for a sink.
func (r *Recorder) Triples(sink string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.triples.WithLabelValues(sink).Add(float64(n))
}

// Run counts a finished source run.
func (r *Recorder) Run(source string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(source, status).Inc()
}

// Summary is a flat view of the semxref counters, keyed by
// "<metric>{<label values>}".
type Summary map[string]float64

// Summary gathers the current semxref counter values.
func (r *Recorder) Summary() (Summary, error) {
	if r == nil {
		return Summary{}, nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	out := Summary{}
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, namespace+"_") {
			continue
		}
		name = strings.TrimSuffix(strings.TrimPrefix(name, namespace+"_"), "_total")
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetValue())
			}
			key := name
			if len(labels) > 0 {
				key = name + "{" + strings.Join(labels, ",") + "}"
			}
			out[key] += m.GetCounter().GetValue()
		}
	}
	return out, nil
}

// Since returns the counts accumulated after before was taken. Entries
// that did not grow are omitted.
func (s Summary) Since(before Summary) Summary {
	out := Summary{}
	for k, v := range s {
		if d := v - before[k]; d > 0 {
			out[k] = d
		}
	}
	return out
}

// Keys returns the summary keys, sorted.
func (s Summary) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total sums every entry whose key starts with the metric name.
func (s Summary) Total(metric string) float64 {
	var total float64
	for k, v := range s {
		if k == metric || strings.HasPrefix(k, metric+"{") {
			total += v
		}
	}
	return total
}
