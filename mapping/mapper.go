// Package mapping translates source controlled-vocabulary codes into
// canonical relation, evidence and prefix terms.
//
// All three tables are static. Unmapped codes never fail: relations fall back
// to interacts_with silently, evidence falls back to experimental evidence
// with a warning, and unseen identifier types pass through with a warning.
package mapping

import (
	"log/slog"

	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/terms"
)

// Mapper resolves vocabulary codes. It is immutable and safe for concurrent use.
type Mapper struct {
	terms    *terms.Dictionary
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// New creates a mapper. A nil dictionary means terms.Default(); a nil logger
// means slog.Default(); recorder may be nil.
func New(dict *terms.Dictionary, logger *slog.Logger, recorder *metrics.Recorder) *Mapper {
	if dict == nil {
		dict = terms.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{terms: dict, logger: logger, recorder: recorder}
}

// MapRelation returns the relation CURIE for a PSI-MI interaction type code.
func (m *Mapper) MapRelation(code string) string {
	name, ok := relationTable[code]
	if !ok {
		m.recorder.UnmappedCode(metrics.TableRelation)
		name = terms.InteractsWith
	}
	return m.terms.ID(name)
}

// MapEvidence returns the ECO evidence CURIE for a PSI-MI detection method code.
func (m *Mapper) MapEvidence(code string) string {
	if eco, ok := evidenceTable[code]; ok {
		return eco
	}
	m.logger.Warn("Unmapped evidence code, defaulting to experimental evidence",
		"code", code,
		"default", m.terms.ID(terms.ExperimentalEvidence))
	m.recorder.UnmappedCode(metrics.TableEvidence)
	return m.terms.ID(terms.ExperimentalEvidence)
}

// MapPrefix returns the CURIE prefix for a source identifier type.
//
// ok is false only for types known to have no referenceable namespace; callers
// skip those silently. Types absent from the table are returned unchanged with
// ok true and a warning.
func (m *Mapper) MapPrefix(idType string) (prefix string, ok bool) {
	p, known := prefixTable[idType]
	if !known {
		m.logger.Warn("Unmapped identifier type", "type", idType)
		m.recorder.UnmappedCode(metrics.TablePrefix)
		return idType, true
	}
	if p == "" {
		return "", false
	}
	return p, true
}
