package biogrid

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/c360studio/semxref/assoc"
	"github.com/c360studio/semxref/graph"
)

const (
	identifierColumns = 4
	identifierHeader  = "BIOGRID_ID"
	officialSymbol    = "OFFICIAL_SYMBOL"
)

func (s *Source) identifiers(ctx context.Context, model *graph.Model, report *Report) error {
	r, c, entry, err := openArchive(ctx, s.store, FileIdentifiers)
	if err != nil {
		return err
	}
	defer c.Close()
	s.logger.Info("Reading identifier mapping", "entry", entry)

	testIDs := idSet(s.opts.TestBioGRIDIDs, "BIOGRID:")
	species := idSet(s.opts.Species, "")
	genePrefixes := idSet(s.opts.GenePrefixes, "")

	foundHeader := false
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
		if !foundHeader {
			foundHeader = strings.HasPrefix(row.Fields[0], identifierHeader)
			continue
		}
		s.recorder.Row(Name, FileIdentifiers)
		if err := r.Expect(row, identifierColumns); err != nil {
			return err
		}
		biogridNum := strings.TrimSpace(row.Fields[0])
		value := strings.TrimSpace(row.Fields[1])
		idType := strings.TrimSpace(row.Fields[2])
		organism := strings.TrimSpace(row.Fields[3])

		if s.opts.TestMode && !testIDs.has(biogridNum) {
			continue
		}
		if !species.has(organism) {
			continue
		}
		processed++

		biogridID := "BIOGRID:" + biogridNum
		prefix, ok := s.mapper.MapPrefix(idType)
		switch {
		case ok && genePrefixes.has(prefix):
			// Some types (MGI) already carry their prefix in the value.
			local := strings.TrimPrefix(value, prefix+":")
			a := assoc.Association{Subject: biogridID, Object: prefix + ":" + local, Kind: assoc.Equivalence}
			if err := model.AddAssociation(ctx, a); err != nil {
				return err
			}
			s.recorder.Association(a.Kind.String())
			report.Equivalences++
		case idType == officialSymbol:
			if err := model.AddClass(ctx, biogridID, value); err != nil {
				return err
			}
			report.Labels++
		}

		if !s.opts.TestMode && s.opts.Limit > 0 && processed > s.opts.Limit {
			return nil
		}
	}
}
