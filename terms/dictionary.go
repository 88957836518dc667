// Package terms holds the canonical term dictionary: a read-only mapping from
// term names used throughout semxref to the ontology CURIEs they stand for.
package terms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Canonical term names. Components look terms up by these names so the
// ontology identifiers can be overridden from configuration.
const (
	Gene                      = "gene"
	Phenotype                 = "Phenotype"
	HeritablePhenotypicMarker = "heritable_phenotypic_marker"
	HasAffectedFeature        = "has_affected_feature"
	Suspected                 = "Suspected"
	Obsolete                  = "obsolete"
	GenericDiseaseRoot        = "generic disease root"

	SubClassOf      = "subclass_of"
	EquivalentClass = "equivalent_class"
	HasExactSynonym = "has_exact_synonym"
	Definition      = "definition"
	Label           = "label"
	Type            = "type"
	Class           = "class"
	IsAbout         = "is_about"
	JournalArticle  = "journal article"

	InteractsWith            = "interacts_with"
	ColocalizesWith          = "colocalizes_with"
	GeneticallyInteractsWith = "genetically_interacts_with"
	ExperimentalEvidence     = "experimental evidence"

	Association          = "association"
	AssociationSubject   = "association has subject"
	AssociationPredicate = "association has predicate"
	AssociationObject    = "association has object"
	HasEvidence          = "has_evidence"
	Source               = "source"
)

// ErrMissingTerm is returned by Require when a term name has no identifier.
var ErrMissingTerm = errors.New("missing term")

// defaults mirrors the identifiers used by the upstream ingest pipelines.
var defaults = map[string]string{
	Gene:                      "SO:0000704",
	Phenotype:                 "UPHENO:0001001",
	HeritablePhenotypicMarker: "SO:0001500",
	HasAffectedFeature:        "GENO:0000418",
	Suspected:                 "NCIT:C71458",
	Obsolete:                  "HP:0031859",
	GenericDiseaseRoot:        "DOID:4",

	SubClassOf:      "rdfs:subClassOf",
	EquivalentClass: "owl:equivalentClass",
	HasExactSynonym: "oboInOwl:hasExactSynonym",
	Definition:      "IAO:0000115",
	Label:           "rdfs:label",
	Type:            "rdf:type",
	Class:           "owl:Class",
	IsAbout:         "IAO:0000136",
	JournalArticle:  "IAO:0000013",

	InteractsWith:            "RO:0002434",
	ColocalizesWith:          "RO:0002325",
	GeneticallyInteractsWith: "RO:0002435",
	ExperimentalEvidence:     "ECO:0000006",

	Association:          "OBAN:association",
	AssociationSubject:   "OBAN:association_has_subject",
	AssociationPredicate: "OBAN:association_has_predicate",
	AssociationObject:    "OBAN:association_has_object",
	HasEvidence:          "RO:0002558",
	Source:               "dc:source",
}

// Dictionary is an immutable term name -> CURIE lookup.
type Dictionary struct {
	terms map[string]string
}

// Default returns the built-in dictionary.
func Default() *Dictionary {
	return New(nil)
}

// New returns the built-in dictionary with overrides applied on top.
// Empty override values are ignored.
func New(overrides map[string]string) *Dictionary {
	d := &Dictionary{terms: make(map[string]string, len(defaults)+len(overrides))}
	for k, v := range defaults {
		d.terms[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) == "" {
			continue
		}
		d.terms[k] = v
	}
	return d
}

// Lookup returns the identifier for a term name.
func (d *Dictionary) Lookup(name string) (string, bool) {
	id, ok := d.terms[name]
	return id, ok
}

// ID returns the identifier for a term name, or "" when unknown.
func (d *Dictionary) ID(name string) string {
	return d.terms[name]
}

// Require checks that every named term is present.
func (d *Dictionary) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if d.terms[n] == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingTerm, strings.Join(missing, ", "))
	}
	return nil
}

// Names returns all term names, sorted.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.terms))
	for k := range d.terms {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
