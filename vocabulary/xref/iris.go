package xref

// Standard IRIs not provided by semstreams vocabulary.
const (
	RdfType               = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RdfsSubClassOf        = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	OboHasExactSynonym    = "http://www.geneontology.org/formats/oboInOwl#hasExactSynonym"
	OboDefinition         = "http://purl.obolibrary.org/obo/IAO_0000115"
	OboIsAbout            = "http://purl.obolibrary.org/obo/IAO_0000136"
	OboInteractsWith      = "http://purl.obolibrary.org/obo/RO_0002434"
	OboColocalizesWith    = "http://purl.obolibrary.org/obo/RO_0002325"
	OboGeneticInteraction = "http://purl.obolibrary.org/obo/RO_0002435"
	OboHasEvidence        = "http://purl.obolibrary.org/obo/RO_0002558"
	ObanHasSubject        = "http://purl.org/oban/association_has_subject"
	ObanHasPredicate      = "http://purl.org/oban/association_has_predicate"
	ObanHasObject         = "http://purl.org/oban/association_has_object"
)
