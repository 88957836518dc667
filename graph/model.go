package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/semxref/assoc"
	"github.com/c360studio/semxref/terms"
)

// Model writes class declarations and associations to a sink using the
// predicates from a term dictionary.
type Model struct {
	sink  Sink
	terms *terms.Dictionary
	count int
}

// NewModel creates a Model. A nil dictionary means terms.Default().
func NewModel(sink Sink, dict *terms.Dictionary) *Model {
	if dict == nil {
		dict = terms.Default()
	}
	return &Model{sink: sink, terms: dict}
}

// Count returns the number of triples written.
func (m *Model) Count() int { return m.count }

// Terms returns the dictionary the model resolves predicates with.
func (m *Model) Terms() *terms.Dictionary { return m.terms }

func (m *Model) write(ctx context.Context, triples ...Triple) error {
	if err := m.sink.Write(ctx, triples...); err != nil {
		return fmt.Errorf("write triples: %w", err)
	}
	m.count += len(triples)
	return nil
}

// AddTriple writes one statement.
func (m *Model) AddTriple(ctx context.Context, subject, predicate, object string, literal bool) error {
	return m.write(ctx, Triple{Subject: subject, Predicate: predicate, Object: object, Literal: literal})
}

// AddClass declares id an owl:Class, with an optional label.
func (m *Model) AddClass(ctx context.Context, id, label string) error {
	triples := []Triple{{Subject: id, Predicate: m.terms.ID(terms.Type), Object: m.terms.ID(terms.Class)}}
	if label = strings.TrimSpace(label); label != "" {
		triples = append(triples, Triple{Subject: id, Predicate: m.terms.ID(terms.Label), Object: label, Literal: true})
	}
	return m.write(ctx, triples...)
}

// AddType declares id an instance of typ.
func (m *Model) AddType(ctx context.Context, id, typ string) error {
	return m.AddTriple(ctx, id, m.terms.ID(terms.Type), typ, false)
}

// AddLabel sets the label of id.
func (m *Model) AddLabel(ctx context.Context, id, label string) error {
	return m.AddTriple(ctx, id, m.terms.ID(terms.Label), label, true)
}

// AddSubClass declares child a subclass of parent.
func (m *Model) AddSubClass(ctx context.Context, child, parent string) error {
	return m.AddTriple(ctx, child, m.terms.ID(terms.SubClassOf), parent, false)
}

// AddEquivalentClass declares a and b equivalent.
func (m *Model) AddEquivalentClass(ctx context.Context, a, b string) error {
	return m.AddTriple(ctx, a, m.terms.ID(terms.EquivalentClass), b, false)
}

// AddSynonym adds an exact synonym. Blank synonyms are ignored.
func (m *Model) AddSynonym(ctx context.Context, id, synonym string) error {
	if strings.TrimSpace(synonym) == "" {
		return nil
	}
	return m.AddTriple(ctx, id, m.terms.ID(terms.HasExactSynonym), synonym, true)
}

// AddDefinition adds a textual definition.
func (m *Model) AddDefinition(ctx context.Context, id, definition string) error {
	return m.AddTriple(ctx, id, m.terms.ID(terms.Definition), definition, true)
}

// AddAssociation writes a cross-reference edge.
func (m *Model) AddAssociation(ctx context.Context, a assoc.Association) error {
	switch a.Kind {
	case assoc.Subclass:
		return m.AddSubClass(ctx, a.Subject, a.Object)
	case assoc.Equivalence:
		return m.AddEquivalentClass(ctx, a.Subject, a.Object)
	case assoc.Synonym:
		return m.AddSynonym(ctx, a.Subject, a.Object)
	default:
		return fmt.Errorf("unknown association kind %d", a.Kind)
	}
}

// Interaction is a reified gene-gene association with evidence and provenance.
type Interaction struct {
	// ID is the association node, usually a blank node.
	ID       string
	Subject  string
	Relation string
	Object   string
	Evidence string
	// Source is the publication CURIE; optional.
	Source string
}

// AddInteraction writes the direct edge plus the reified association node.
func (m *Model) AddInteraction(ctx context.Context, in Interaction) error {
	triples := []Triple{
		{Subject: in.Subject, Predicate: in.Relation, Object: in.Object},
		{Subject: in.ID, Predicate: m.terms.ID(terms.Type), Object: m.terms.ID(terms.Association)},
		{Subject: in.ID, Predicate: m.terms.ID(terms.AssociationSubject), Object: in.Subject},
		{Subject: in.ID, Predicate: m.terms.ID(terms.AssociationPredicate), Object: in.Relation},
		{Subject: in.ID, Predicate: m.terms.ID(terms.AssociationObject), Object: in.Object},
	}
	if in.Evidence != "" {
		triples = append(triples, Triple{Subject: in.ID, Predicate: m.terms.ID(terms.HasEvidence), Object: in.Evidence})
	}
	if in.Source != "" {
		triples = append(triples, Triple{Subject: in.ID, Predicate: m.terms.ID(terms.Source), Object: in.Source})
	}
	return m.write(ctx, triples...)
}
