package xref

import "strings"

// EntityID converts a CURIE or blank node into a six-part semstreams entity
// key: semxref.local.kg.<prefix>.<kind>.<local>.
func EntityID(curie string) string {
	if id, ok := strings.CutPrefix(curie, "_:"); ok {
		return "semxref.local.kg.bnode.association." + sanitize(id)
	}
	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		return "semxref.local.kg.term.entity." + sanitize(curie)
	}
	return "semxref.local.kg." + sanitize(prefix) + ".entity." + sanitize(local)
}
