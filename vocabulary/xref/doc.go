// Package xref provides the graph predicates used when cross-reference
// triples leave the process as semstreams entity messages.
//
// Triples are built with CURIE predicates such as rdfs:subClassOf. Stream
// consumers expect three-level dotted predicates, so each CURIE used by the
// ingest is registered here under a dotted name with its standard IRI:
//
//	rdfs:subClassOf          -> xref.class.subclass_of
//	owl:equivalentClass      -> xref.class.equivalent_class
//	oboInOwl:hasExactSynonym -> xref.class.exact_synonym
//	OBAN:association_has_subject -> xref.association.has_subject
//
// Predicates outside the registered set are derived from the CURIE
// (xref.<prefix>.<local>) and registered on first use.
package xref
