package curie

// DefaultPrefixes is the prefix map used when configuration supplies none.
// It covers every prefix the bundled sources and term dictionary emit.
var DefaultPrefixes = map[string]string{
	"rdf":         "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":        "http://www.w3.org/2000/01/rdf-schema#",
	"owl":         "http://www.w3.org/2002/07/owl#",
	"xsd":         "http://www.w3.org/2001/XMLSchema#",
	"dc":          "http://purl.org/dc/elements/1.1/",
	"oboInOwl":    "http://www.geneontology.org/formats/oboInOwl#",
	"OBAN":        "http://purl.org/oban/",
	"IAO":         "http://purl.obolibrary.org/obo/IAO_",
	"RO":          "http://purl.obolibrary.org/obo/RO_",
	"ECO":         "http://purl.obolibrary.org/obo/ECO_",
	"SO":          "http://purl.obolibrary.org/obo/SO_",
	"GENO":        "http://purl.obolibrary.org/obo/GENO_",
	"DOID":        "http://purl.obolibrary.org/obo/DOID_",
	"UPHENO":      "http://purl.obolibrary.org/obo/UPHENO_",
	"HP":          "http://purl.obolibrary.org/obo/HP_",
	"NCIT":        "http://purl.obolibrary.org/obo/NCIT_",
	"OMIM":        "http://omim.org/entry/",
	"GeneReviews": "http://www.ncbi.nlm.nih.gov/books/",
	"PMID":        "http://www.ncbi.nlm.nih.gov/pubmed/",
	"NCBIGene":    "http://www.ncbi.nlm.nih.gov/gene/",
	"BIOGRID":     "http://thebiogrid.org/",
	"MGI":         "http://www.informatics.jax.org/accession/MGI:",
	"ENSEMBL":     "http://identifiers.org/ensembl/",
	"ZFIN":        "http://zfin.org/",
	"HGNC":        "http://identifiers.org/hgnc/HGNC:",
	"FlyBase":     "http://flybase.org/reports/",
	"WormBase":    "https://www.wormbase.org/get?name=",
	"RGD":         "http://rgd.mcw.edu/rgdweb/report/gene/main.html?id=",
	"SGD":         "https://www.yeastgenome.org/locus/",
}
