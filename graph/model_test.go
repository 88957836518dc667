package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semxref/assoc"
	"github.com/c360studio/semxref/terms"
)

func TestModel_Classes(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	m := NewModel(sink, nil)

	require.NoError(t, m.AddClass(ctx, "GeneReviews:NBK1103", "Trimethylaminuria"))
	require.NoError(t, m.AddClass(ctx, "OMIM:136132", ""))
	require.NoError(t, m.AddSynonym(ctx, "GeneReviews:NBK1103", "trimethylaminuria"))
	require.NoError(t, m.AddSynonym(ctx, "GeneReviews:NBK1103", "  "))
	require.NoError(t, m.AddDefinition(ctx, "GeneReviews:NBK1103", "A disorder."))

	assert.Equal(t, []Triple{
		{Subject: "GeneReviews:NBK1103", Predicate: "rdf:type", Object: "owl:Class"},
		{Subject: "GeneReviews:NBK1103", Predicate: "rdfs:label", Object: "Trimethylaminuria", Literal: true},
		{Subject: "OMIM:136132", Predicate: "rdf:type", Object: "owl:Class"},
		{Subject: "GeneReviews:NBK1103", Predicate: "oboInOwl:hasExactSynonym", Object: "trimethylaminuria", Literal: true},
		{Subject: "GeneReviews:NBK1103", Predicate: "IAO:0000115", Object: "A disorder.", Literal: true},
	}, sink.Triples())
	assert.Equal(t, 5, m.Count())
}

func TestModel_AddAssociation(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	m := NewModel(sink, terms.Default())

	require.NoError(t, m.AddAssociation(ctx, assoc.Association{Subject: "OMIM:136132", Object: "GeneReviews:NBK1103", Kind: assoc.Subclass}))
	require.NoError(t, m.AddAssociation(ctx, assoc.Association{Subject: "BIOGRID:1", Object: "NCBIGene:2", Kind: assoc.Equivalence}))
	require.NoError(t, m.AddAssociation(ctx, assoc.Association{Subject: "BIOGRID:1", Object: "ABC1", Kind: assoc.Synonym}))
	assert.Error(t, m.AddAssociation(ctx, assoc.Association{Kind: assoc.Kind(42)}))

	assert.True(t, sink.Has(Triple{Subject: "OMIM:136132", Predicate: "rdfs:subClassOf", Object: "GeneReviews:NBK1103"}))
	assert.True(t, sink.Has(Triple{Subject: "BIOGRID:1", Predicate: "owl:equivalentClass", Object: "NCBIGene:2"}))
	assert.True(t, sink.Has(Triple{Subject: "BIOGRID:1", Predicate: "oboInOwl:hasExactSynonym", Object: "ABC1", Literal: true}))
}

func TestModel_AddInteraction(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	m := NewModel(sink, nil)

	require.NoError(t, m.AddInteraction(ctx, Interaction{
		ID:       "_:abc",
		Subject:  "NCBIGene:6416",
		Relation: "RO:0002434",
		Object:   "NCBIGene:2318",
		Evidence: "ECO:0000068",
		Source:   "PMID:9006895",
	}))

	got := sink.Triples()
	require.Len(t, got, 7)
	assert.Equal(t, Triple{Subject: "NCBIGene:6416", Predicate: "RO:0002434", Object: "NCBIGene:2318"}, got[0])
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "rdf:type", Object: "OBAN:association"}))
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "OBAN:association_has_subject", Object: "NCBIGene:6416"}))
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "OBAN:association_has_predicate", Object: "RO:0002434"}))
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "OBAN:association_has_object", Object: "NCBIGene:2318"}))
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "RO:0002558", Object: "ECO:0000068"}))
	assert.True(t, sink.Has(Triple{Subject: "_:abc", Predicate: "dc:source", Object: "PMID:9006895"}))
}

func TestModel_WriteErrorWrapped(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	require.NoError(t, sink.Close(ctx))

	err := NewModel(sink, nil).AddSubClass(ctx, "a:1", "b:2")
	assert.True(t, errors.Is(err, ErrSinkClosed))
	assert.True(t, sink.Closed())
}

func TestBatcher(t *testing.T) {
	ctx := context.Background()
	var batches [][]Triple
	b := NewBatcher(2, func(_ context.Context, batch []Triple) error {
		batches = append(batches, batch)
		return nil
	})

	require.NoError(t, b.Add(ctx, Triple{Subject: "1"}, Triple{Subject: "2"}, Triple{Subject: "3"}))
	require.Len(t, batches, 1)
	require.NoError(t, b.Flush(ctx))
	require.Len(t, batches, 2)
	assert.Equal(t, "3", batches[1][0].Subject)

	require.NoError(t, b.Flush(ctx))
	assert.Len(t, batches, 2)
}
