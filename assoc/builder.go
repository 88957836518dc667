// Package assoc decides which cross-reference edges between grouping records
// and their resolved identifiers are emitted.
package assoc

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/c360studio/semxref/classify"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/resolve"
	"github.com/c360studio/semxref/terms"
)

// Kind is the relation an Association asserts.
type Kind int

// Association kinds.
const (
	Subclass Kind = iota
	Equivalence
	Synonym
)

func (k Kind) String() string {
	switch k {
	case Subclass:
		return "subclass"
	case Equivalence:
		return "equivalence"
	case Synonym:
		return "synonym"
	default:
		return "unknown"
	}
}

// Association is one emitted edge. Subject and Object are CURIEs.
type Association struct {
	Subject string
	Object  string
	Kind    Kind
}

// Default CURIE prefixes for Build.
const (
	DefaultSubjectPrefix = "OMIM"
	DefaultGroupPrefix   = "GeneReviews"
)

// Options controls a Build call.
type Options struct {
	// TestMode enables allowlist filtering.
	TestMode bool
	// Allowlist restricts emitted subjects in test mode. Entries may be raw
	// identifiers or CURIEs with SubjectPrefix. Empty means no filtering.
	Allowlist []string

	SubjectPrefix string
	GroupPrefix   string
}

// Report summarizes a Build call.
type Report struct {
	Groups   int
	Replaced int
	Removed  int
	Excluded int
	Emitted  int
}

// Builder turns grouping records into associations.
type Builder struct {
	terms    *terms.Dictionary
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// New creates a builder. A nil dictionary means terms.Default(); a nil logger
// means slog.Default(); recorder may be nil.
func New(dict *terms.Dictionary, logger *slog.Logger, recorder *metrics.Recorder) *Builder {
	if dict == nil {
		dict = terms.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{terms: dict, logger: logger, recorder: recorder}
}

// Build resolves each group's candidates against snap and returns the
// associations to emit, ordered by group then subject. Every group is
// anchored under the generic disease root, even when nothing resolves.
func (b *Builder) Build(groups map[string]classify.IDSet, snap *classify.Snapshot, opts Options) ([]Association, Report) {
	subjectPrefix := opts.SubjectPrefix
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	groupPrefix := opts.GroupPrefix
	if groupPrefix == "" {
		groupPrefix = DefaultGroupPrefix
	}
	root := b.terms.ID(terms.GenericDiseaseRoot)

	var allow classify.IDSet
	if opts.TestMode && len(opts.Allowlist) > 0 {
		allow = classify.IDSet{}
		for _, id := range opts.Allowlist {
			allow.Add(strings.TrimPrefix(strings.TrimSpace(id), subjectPrefix+":"))
		}
	}

	groupIDs := make([]string, 0, len(groups))
	for g := range groups {
		groupIDs = append(groupIDs, g)
	}
	sort.Strings(groupIDs)

	var (
		out      []Association
		report   = Report{Groups: len(groupIDs)}
		replaced = classify.IDSet{}
		removed  = classify.IDSet{}
		seen     = make(map[[2]string]struct{})
	)
	emit := func(a Association) {
		key := [2]string{a.Subject, a.Object}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, a)
		b.recorder.Association(a.Kind.String())
	}

	for _, g := range groupIDs {
		groupCURIE := Curie(groupPrefix, g)
		res := resolve.Snapshot(groups[g], snap)
		replaced.Union(res.Replaced)
		removed.Union(res.Removed)

		for _, id := range res.Resolved.Sorted() {
			if allow != nil && !allow.Has(id) {
				report.Excluded++
				continue
			}
			emit(Association{Subject: Curie(subjectPrefix, id), Object: groupCURIE, Kind: Subclass})
		}
		emit(Association{Subject: groupCURIE, Object: root, Kind: Subclass})
	}

	report.Replaced = len(replaced)
	report.Removed = len(removed)
	report.Emitted = len(out)

	if len(replaced) > 0 {
		b.logger.Warn("Identifiers are past their pull date", "ids", replaced.Sorted())
	}
	if len(removed) > 0 {
		b.logger.Warn("Identifiers are gone", "ids", removed.Sorted())
	}
	b.recorder.Identifiers(metrics.OutcomeReplaced, report.Replaced)
	b.recorder.Identifiers(metrics.OutcomeRemoved, report.Removed)
	b.recorder.Identifiers(metrics.OutcomeExcluded, report.Excluded)

	b.logger.Info("Built associations",
		"groups", report.Groups,
		"emitted", report.Emitted,
		"replaced", report.Replaced,
		"removed", report.Removed,
		"excluded", report.Excluded)
	return out, report
}

// Curie joins prefix and id unless id already carries a prefix or prefix is empty.
func Curie(prefix, id string) string {
	if prefix == "" || strings.Contains(id, ":") {
		return id
	}
	return prefix + ":" + id
}
