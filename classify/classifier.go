// Package classify partitions OMIM-style identifiers into semantic categories
// and records which obsolete identifiers were moved or split, and to what.
package classify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/source/rows"
	"github.com/c360studio/semxref/terms"
)

// Classification is the category assigned to a classified identifier.
type Classification int

// Classifications. The zero value is never stored; an identifier without a
// record is absent from the snapshot.
const (
	Gene Classification = iota + 1
	Phenotype
	HeritablePhenotypicMarker
	DualGeneAndPhenotype
	SuspectedPhenotype
	Obsolete
)

func (c Classification) String() string {
	switch c {
	case Gene:
		return "Gene"
	case Phenotype:
		return "Phenotype"
	case HeritablePhenotypicMarker:
		return "HeritablePhenotypicMarker"
	case DualGeneAndPhenotype:
		return "DualGeneAndPhenotype"
	case SuspectedPhenotype:
		return "SuspectedPhenotype"
	case Obsolete:
		return "Obsolete"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// TermName returns the term dictionary name for c.
func (c Classification) TermName() string {
	switch c {
	case Gene:
		return terms.Gene
	case Phenotype:
		return terms.Phenotype
	case HeritablePhenotypicMarker:
		return terms.HeritablePhenotypicMarker
	case DualGeneAndPhenotype:
		return terms.HasAffectedFeature
	case SuspectedPhenotype:
		return terms.Suspected
	case Obsolete:
		return terms.Obsolete
	default:
		return ""
	}
}

// PhenotypeAdmissible reports whether identifiers of this class may be
// associated with disease groupings.
func (c Classification) PhenotypeAdmissible() bool {
	return c == Phenotype || c == HeritablePhenotypicMarker || c == DualGeneAndPhenotype
}

var kindClass = map[Kind]Classification{
	KindAsterisk:   Gene,
	KindNumberSign: Phenotype,
	KindPercent:    HeritablePhenotypicMarker,
	KindPlus:       DualGeneAndPhenotype,
	KindNull:       SuspectedPhenotype,
	KindCaret:      Obsolete,
}

// Snapshot is the result of one classification pass. It is not modified after
// Classify returns and may be shared between readers.
type Snapshot struct {
	Classes map[string]Classification
	// Chain maps moved or split identifiers to their replacements. Removed
	// identifiers are Obsolete with no entry here.
	Chain map[string]IDSet

	Unrecognized int
	Malformed    int
}

// Class returns the classification of id.
func (s *Snapshot) Class(id string) (Classification, bool) {
	c, ok := s.Classes[id]
	return c, ok
}

// Removed reports whether id is obsolete without a known replacement.
func (s *Snapshot) Removed(id string) bool {
	if s.Classes[id] != Obsolete {
		return false
	}
	_, moved := s.Chain[id]
	return !moved
}

// Count returns how many identifiers carry classification c.
func (s *Snapshot) Count(c Classification) int {
	n := 0
	for _, v := range s.Classes {
		if v == c {
			n++
		}
	}
	return n
}

const movedMarker = "MOVED TO "

var replacementPattern = regexp.MustCompile(`^[0-9]{6}$`)

// Classifier builds Snapshots from classification records.
type Classifier struct {
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// New creates a classifier. A nil logger means slog.Default(); recorder may be nil.
func New(logger *slog.Logger, recorder *metrics.Recorder) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger, recorder: recorder}
}

// Classify makes one pass over records. A later record for an identifier
// replaces an earlier one.
func (c *Classifier) Classify(records []Record) *Snapshot {
	snap := &Snapshot{
		Classes: make(map[string]Classification),
		Chain:   make(map[string]IDSet),
	}
	for _, rec := range records {
		c.apply(snap, rec)
	}
	c.recorder.Identifiers(metrics.OutcomeUnclassified, snap.Unrecognized)
	c.recorder.Identifiers(metrics.OutcomeMalformed, snap.Malformed)
	return snap
}

// ClassifyRows parses and classifies every row from r. The first structural
// error stops the pass.
func (c *Classifier) ClassifyRows(r *rows.Reader) (*Snapshot, error) {
	var records []Record
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := ParseRecord(row.Fields, row.Line)
		if err != nil {
			var se *rows.StructuralError
			if errors.As(err, &se) {
				se.File = r.Name()
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return c.Classify(records), nil
}

func (c *Classifier) apply(snap *Snapshot, rec Record) {
	switch rec.Kind {
	case KindComment:
		return
	case KindUnrecognized:
		snap.Unrecognized++
		c.logger.Warn("Unrecognized classification record",
			"line", rec.Line,
			"discriminant", rec.Token,
			"id", rec.ID)
		return
	}

	class := kindClass[rec.Kind]
	snap.Classes[rec.ID] = class
	delete(snap.Chain, rec.ID)
	if class != Obsolete {
		return
	}

	replacements := c.replacements(snap, rec)
	if len(replacements) == 0 {
		return
	}
	if replacements.Has(rec.ID) {
		c.logger.Warn("Identifier replaced by itself",
			"line", rec.Line,
			"id", rec.ID)
	}
	snap.Chain[rec.ID] = replacements
}

// replacements parses "MOVED TO <id>[ AND|, <id>]". Anything else, including
// "REMOVED FROM DATABASE", yields nothing.
func (c *Classifier) replacements(snap *Snapshot, rec Record) IDSet {
	dest, ok := strings.CutPrefix(rec.Destination(), movedMarker)
	if !ok {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Fields(dest) {
		if tok == "AND" || tok == "," {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == 2 {
			break
		}
	}

	out := IDSet{}
	for _, tok := range tokens {
		id, ok := repairReplacement(tok)
		if !ok {
			snap.Malformed++
			c.logger.Warn("Malformed replacement identifier",
				"line", rec.Line,
				"id", rec.ID,
				"replacement", tok)
			continue
		}
		out.Add(id)
	}
	return out
}

func repairReplacement(tok string) (string, bool) {
	if replacementPattern.MatchString(tok) {
		return tok, true
	}
	tok = strings.TrimPrefix(tok, "{")
	tok = strings.TrimSuffix(tok, ",")
	tok = strings.TrimSuffix(tok, "}")
	return tok, replacementPattern.MatchString(tok)
}
