package biogrid

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/semxref/graph"
)

const mitabColumns = 15

// MITAB column positions.
const (
	colInteractorA     = 0
	colInteractorB     = 1
	colDetectionMethod = 6
	colPublication     = 8
	colTaxonA          = 9
	colTaxonB          = 10
	colInteractionType = 11
	colInteractionID   = 13
)

var (
	locusPattern = regexp.MustCompile(`locuslink:(\d+)\|`)
	miPattern    = regexp.MustCompile(`MI:\d+`)
)

// AssociationID returns the blank node naming an interaction. The same
// interaction id always yields the same node.
func AssociationID(interactionID string) string {
	return "_:" + uuid.NewMD5(uuid.Nil, []byte(interactionID)).String()
}

func (s *Source) interactions(ctx context.Context, model *graph.Model, report *Report) error {
	r, c, entry, err := openArchive(ctx, s.store, FileInteractions)
	if err != nil {
		return err
	}
	defer c.Close()

	if m := versionPattern.FindStringSubmatch(entry); m != nil {
		report.Version = m[1]
	}
	s.logger.Info("Reading interactions", "entry", entry, "version", report.Version)

	testGenes := idSet(s.opts.TestGeneIDs, "NCBIGene:")
	taxa := make(map[int]struct{}, len(s.opts.TaxIDs))
	for _, id := range s.opts.TaxIDs {
		taxa[id] = struct{}{}
	}

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.HasPrefix(row.Fields[0], "#") {
			continue
		}
		s.recorder.Row(Name, FileInteractions)
		processed++
		if err := r.Expect(row, mitabColumns); err != nil {
			return err
		}
		f := row.Fields

		geneA, okA := locusID(f[colInteractorA])
		geneB, okB := locusID(f[colInteractorB])
		if !okA || !okB {
			s.logger.Warn("Interactor without a gene id; skipping", "line", row.Line,
				"interactor_a", f[colInteractorA], "interactor_b", f[colInteractorB])
			report.Unparsable++
			continue
		}

		if s.opts.TestMode {
			if !testGenes.has(geneA) || !testGenes.has(geneB) {
				report.Filtered++
				continue
			}
		} else if !hasTaxon(taxa, f[colTaxonA]) || !hasTaxon(taxa, f[colTaxonB]) {
			report.Filtered++
			continue
		}

		in := graph.Interaction{
			ID:       AssociationID(f[colInteractionID]),
			Subject:  "NCBIGene:" + geneA,
			Relation: s.mapper.MapRelation(miPattern.FindString(f[colInteractionType])),
			Object:   "NCBIGene:" + geneB,
			Evidence: s.mapper.MapEvidence(miPattern.FindString(f[colDetectionMethod])),
			Source:   publication(f[colPublication]),
		}
		if err := model.AddInteraction(ctx, in); err != nil {
			return err
		}
		report.Interactions++

		if !s.opts.TestMode && s.opts.Limit > 0 && processed > s.opts.Limit {
			return nil
		}
	}
}

func locusID(interactor string) (string, bool) {
	m := locusPattern.FindStringSubmatch(interactor)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func hasTaxon(taxa map[int]struct{}, field string) bool {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(field), "taxid:"))
	if err != nil {
		return false
	}
	_, ok := taxa[id]
	return ok
}

// publication rewrites a MITAB publication reference such as "pubmed:1234"
// to a PMID CURIE.
func publication(field string) string {
	return strings.TrimSpace(strings.ReplaceAll(field, "pubmed", "PMID"))
}

// stringSet is a set of identifiers with an optional prefix stripped.
type stringSet map[string]struct{}

func idSet(ids []string, prefix string) stringSet {
	set := make(stringSet, len(ids))
	for _, id := range ids {
		set[strings.TrimPrefix(strings.TrimSpace(id), prefix)] = struct{}{}
	}
	return set
}

func (s stringSet) has(id string) bool {
	_, ok := s[id]
	return ok
}
