package mapping

import "github.com/c360studio/semxref/terms"

// relationTable maps PSI-MI interaction types to relation term names.
var relationTable = map[string]string{
	"MI:0403": terms.ColocalizesWith,          // colocalization
	"MI:0407": terms.InteractsWith,            // direct interaction
	"MI:0794": terms.GeneticallyInteractsWith, // synthetic genetic interaction defined by inequality
	"MI:0796": terms.GeneticallyInteractsWith, // suppressive genetic interaction defined by inequality
	"MI:0799": terms.GeneticallyInteractsWith, // additive genetic interaction defined by inequality
	"MI:0914": terms.InteractsWith,            // association
	"MI:0915": terms.InteractsWith,            // physical association
}

// evidenceTable maps PSI-MI detection methods to ECO evidence codes.
// Several entries are the closest available ECO term, not an exact match.
var evidenceTable = map[string]string{
	"MI:0018": "ECO:0000068", // yeast two-hybrid
	"MI:0004": "ECO:0000079", // affinity chromatography
	"MI:0047": "ECO:0000076", // far western blotting
	"MI:0055": "ECO:0000021", // FRET, approximated as physical interaction
	"MI:0090": "ECO:0000012", // protein complementation, approximated as functional complementation
	"MI:0096": "ECO:0000085", // pull down, approximated as immunoprecipitation
	"MI:0114": "ECO:0000324", // x-ray crystallography, approximated as imaging assay
	"MI:0254": "ECO:0000011", // genetic interference, approximated as genetic interaction evidence
	"MI:0401": "ECO:0000172", // biochemical, approximated as biochemical trait evidence
	"MI:0415": "ECO:0000005", // enzymatic study, approximated as enzyme assay evidence
	"MI:0428": "ECO:0000324", // imaging
	"MI:0686": "ECO:0000006", // unspecified
	"MI:1313": "ECO:0000006",
}

// prefixTable maps BioGRID identifier types to CURIE prefixes. An empty value
// marks a type with no referenceable namespace.
var prefixTable = map[string]string{
	"XENBASE":                       "XenBase",
	"TREMBL":                        "TrEMBL",
	"MGI":                           "MGI",
	"REFSEQ_DNA_ACCESSION":          "RefSeqNA",
	"MAIZEGDB":                      "MaizeGDB",
	"BEEBASE":                       "BeeBase",
	"ENSEMBL":                       "ENSEMBL",
	"TAIR":                          "TAIR",
	"GENBANK_DNA_GI":                "NCBIgi",
	"CGNC":                          "CGNC",
	"RGD":                           "RGD",
	"GENBANK_GENOMIC_DNA_GI":        "NCBIgi",
	"SWISSPROT":                     "Swiss-Prot",
	"MIM":                           "OMIM",
	"FLYBASE":                       "FlyBase",
	"VEGA":                          "VEGA",
	"ANIMALQTLDB":                   "AQTLDB",
	"ENTREZ_GENE_ETG":               "ETG",
	"HPRD":                          "HPRD",
	"APHIDBASE":                     "APHIDBASE",
	"GENBANK_PROTEIN_ACCESSION":     "NCBIProtein",
	"ENTREZ_GENE":                   "NCBIGene",
	"SGD":                           "SGD",
	"GENBANK_GENOMIC_DNA_ACCESSION": "NCBIGenome",
	"BGD":                           "BGD",
	"WORMBASE":                      "WormBase",
	"ZFIN":                          "ZFIN",
	"DICTYBASE":                     "dictyBase",
	"ECOGENE":                       "ECOGENE",
	"BIOGRID":                       "BIOGRID",
	"GENBANK_DNA_ACCESSION":         "NCBILocus",
	"VECTORBASE":                    "VectorBase",
	"MIRBASE":                       "miRBase",
	"IMGT/GENE-DB":                  "IGMT",
	"HGNC":                          "HGNC",
	"SYSTEMATIC_NAME":               "",
	"OFFICIAL_SYMBOL":               "",
	"REFSEQ_GENOMIC_DNA_ACCESSION":  "NCBILocus",
	"GENBANK_PROTEIN_GI":            "NCBIgi",
	"REFSEQ_PROTEIN_ACCESSION":      "RefSeqProt",
	"SYNONYM":                       "",
	"GRID_LEGACY":                   "",
}
