// Package resolve rewrites candidate identifier sets through the obsolescence
// chain and keeps only phenotype-admissible identifiers.
package resolve

import "github.com/c360studio/semxref/classify"

// Result is the outcome of one Resolve call. Replaced and Removed are
// diagnostics only.
type Result struct {
	Resolved classify.IDSet
	// Replaced holds candidates substituted by their chain entry.
	Replaced classify.IDSet
	// Removed holds obsolete identifiers with no replacement that were dropped.
	Removed classify.IDSet
}

// Resolve substitutes each candidate that has a chain entry with its
// replacements, once, then drops removed identifiers and anything not
// classified Phenotype, HeritablePhenotypicMarker or DualGeneAndPhenotype.
// Replacements are not themselves resolved again.
func Resolve(candidates classify.IDSet, classes map[string]classify.Classification, chain map[string]classify.IDSet) Result {
	res := Result{
		Resolved: classify.IDSet{},
		Replaced: classify.IDSet{},
		Removed:  classify.IDSet{},
	}

	working := classify.IDSet{}
	for id := range candidates {
		if reps, ok := chain[id]; ok {
			res.Replaced.Add(id)
			working.Union(reps)
			continue
		}
		working.Add(id)
	}

	for id := range working {
		class, ok := classes[id]
		if !ok {
			continue
		}
		if class == classify.Obsolete {
			if _, moved := chain[id]; !moved {
				res.Removed.Add(id)
			}
			continue
		}
		if class.PhenotypeAdmissible() {
			res.Resolved.Add(id)
		}
	}
	return res
}

// Snapshot resolves candidates against a classification snapshot.
func Snapshot(candidates classify.IDSet, snap *classify.Snapshot) Result {
	return Resolve(candidates, snap.Classes, snap.Chain)
}
