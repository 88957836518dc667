package xref

import (
	"strings"
	"sync"

	"github.com/c360studio/semstreams/vocabulary"
)

// Class predicates.
const (
	// ClassType declares an entity's rdf:type.
	ClassType = "xref.class.type"

	// ClassSubClassOf links a class to its superclass.
	ClassSubClassOf = "xref.class.subclass_of"

	// ClassEquivalent links two identifiers for the same class.
	ClassEquivalent = "xref.class.equivalent_class"

	// ClassLabel is the preferred label.
	ClassLabel = "xref.class.label"

	// ClassSynonym is an exact synonym.
	ClassSynonym = "xref.class.exact_synonym"

	// ClassDefinition is a textual definition.
	ClassDefinition = "xref.class.definition"
)

// Publication predicates.
const (
	PublicationIsAbout = "xref.publication.is_about"
)

// Association predicates, following the OBAN reification pattern.
const (
	AssociationSubject   = "xref.association.has_subject"
	AssociationPredicate = "xref.association.has_predicate"
	AssociationObject    = "xref.association.has_object"
	AssociationEvidence  = "xref.association.has_evidence"
	AssociationSource    = "xref.association.source"
)

// Relation predicates between genes.
const (
	RelationInteractsWith            = "xref.relation.interacts_with"
	RelationColocalizesWith          = "xref.relation.colocalizes_with"
	RelationGeneticallyInteractsWith = "xref.relation.genetically_interacts_with"
)

// byCURIE maps the default term CURIEs to dotted predicates.
var byCURIE = map[string]string{
	"rdf:type":                       ClassType,
	"rdfs:subClassOf":                ClassSubClassOf,
	"owl:equivalentClass":            ClassEquivalent,
	"rdfs:label":                     ClassLabel,
	"oboInOwl:hasExactSynonym":       ClassSynonym,
	"IAO:0000115":                    ClassDefinition,
	"IAO:0000136":                    PublicationIsAbout,
	"OBAN:association_has_subject":   AssociationSubject,
	"OBAN:association_has_predicate": AssociationPredicate,
	"OBAN:association_has_object":    AssociationObject,
	"RO:0002558":                     AssociationEvidence,
	"dc:source":                      AssociationSource,
	"RO:0002434":                     RelationInteractsWith,
	"RO:0002325":                     RelationColocalizesWith,
	"RO:0002435":                     RelationGeneticallyInteractsWith,
}

var derived sync.Map

// Predicate returns the dotted predicate for a CURIE predicate. Unknown CURIEs
// map to xref.<prefix>.<local>, registered with the IRI when one is given.
func Predicate(curie, iri string) string {
	if p, ok := byCURIE[curie]; ok {
		return p
	}
	if p, ok := derived.Load(curie); ok {
		return p.(string)
	}

	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		prefix, local = "term", curie
	}
	name := "xref." + sanitize(prefix) + "." + sanitize(local)

	opts := []vocabulary.Option{
		vocabulary.WithDescription("Derived from " + curie),
		vocabulary.WithDataType("entity_id"),
	}
	if iri != "" {
		opts = append(opts, vocabulary.WithIRI(iri))
	}
	vocabulary.Register(name, opts...)

	actual, _ := derived.LoadOrStore(curie, name)
	return actual.(string)
}

// sanitize lowercases s and replaces characters that would break dotted
// notation or NATS subjects.
func sanitize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

func init() {
	vocabulary.Register(ClassType,
		vocabulary.WithDescription("Declared type of the entity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RdfType))

	vocabulary.Register(ClassSubClassOf,
		vocabulary.WithDescription("Superclass of the class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RdfsSubClassOf))

	vocabulary.Register(ClassEquivalent,
		vocabulary.WithDescription("Identifier of an equivalent class in another namespace"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.OwlEquivalentClass),
		vocabulary.WithAlias(vocabulary.AliasTypeExternal, 1))

	vocabulary.Register(ClassLabel,
		vocabulary.WithDescription("Preferred label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.RdfsLabel),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 0))

	vocabulary.Register(ClassSynonym,
		vocabulary.WithDescription("Exact synonym, such as a short name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(OboHasExactSynonym),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 1))

	vocabulary.Register(ClassDefinition,
		vocabulary.WithDescription("Textual definition with citations"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(OboDefinition))

	vocabulary.Register(PublicationIsAbout,
		vocabulary.WithDescription("Subject matter of a publication"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OboIsAbout))

	vocabulary.Register(AssociationSubject,
		vocabulary.WithDescription("Subject of a reified association"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(ObanHasSubject))

	vocabulary.Register(AssociationPredicate,
		vocabulary.WithDescription("Relation of a reified association"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(ObanHasPredicate))

	vocabulary.Register(AssociationObject,
		vocabulary.WithDescription("Object of a reified association"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(ObanHasObject))

	vocabulary.Register(AssociationEvidence,
		vocabulary.WithDescription("Evidence code supporting the association"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OboHasEvidence))

	vocabulary.Register(AssociationSource,
		vocabulary.WithDescription("Publication the association was asserted in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.DcSource))

	vocabulary.Register(RelationInteractsWith,
		vocabulary.WithDescription("Gene products interact"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OboInteractsWith))

	vocabulary.Register(RelationColocalizesWith,
		vocabulary.WithDescription("Gene products colocalize"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OboColocalizesWith))

	vocabulary.Register(RelationGeneticallyInteractsWith,
		vocabulary.WithDescription("Genes interact genetically"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OboGeneticInteraction))
}
