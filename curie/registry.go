// Package curie converts between namespace URIs and compact prefix:suffix identifiers.
package curie

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Lookup errors returned by ToURI.
var (
	// ErrMalformedCURIE is returned when a non-empty identifier has no colon.
	ErrMalformedCURIE = errors.New("malformed curie")

	// ErrUnknownPrefix is returned when the prefix is not registered.
	ErrUnknownPrefix = errors.New("unknown curie prefix")
)

// Construction errors returned by New.
var (
	// ErrEmptyEntry is returned for an empty prefix or namespace.
	ErrEmptyEntry = errors.New("empty prefix or namespace")

	// ErrDuplicateNamespace is returned when two prefixes share one namespace.
	ErrDuplicateNamespace = errors.New("namespace registered under more than one prefix")
)

// Registry maps CURIE prefixes to namespace URIs and back.
// It is immutable after New returns and safe for concurrent use.
type Registry struct {
	prefixes map[string]string // prefix -> namespace
	// namespaces sorted longest first so the first match is the most specific.
	namespaces []entry
	logger     *slog.Logger
}

type entry struct {
	prefix    string
	namespace string
}

// New builds a registry from a prefix -> namespace map.
//
// Namespaces that are string prefixes of one another are accepted, with a
// warning per overlapping pair; ToCURIE resolves them by longest match.
func New(prefixes map[string]string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		prefixes:   make(map[string]string, len(prefixes)),
		namespaces: make([]entry, 0, len(prefixes)),
		logger:     logger,
	}

	byNamespace := make(map[string]string, len(prefixes))
	for prefix, ns := range prefixes {
		if prefix == "" || ns == "" {
			return nil, fmt.Errorf("%w: %q -> %q", ErrEmptyEntry, prefix, ns)
		}
		if other, ok := byNamespace[ns]; ok {
			a, b := other, prefix
			if b < a {
				a, b = b, a
			}
			return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateNamespace, ns, a, b)
		}
		byNamespace[ns] = prefix
		r.prefixes[prefix] = ns
		r.namespaces = append(r.namespaces, entry{prefix: prefix, namespace: ns})
	}

	sort.Slice(r.namespaces, func(i, j int) bool {
		a, b := r.namespaces[i], r.namespaces[j]
		if len(a.namespace) != len(b.namespace) {
			return len(a.namespace) > len(b.namespace)
		}
		return a.prefix < b.prefix
	})

	for i, long := range r.namespaces {
		for _, short := range r.namespaces[i+1:] {
			if strings.HasPrefix(long.namespace, short.namespace) {
				logger.Warn("Overlapping curie namespaces, longest match wins",
					"prefix", long.prefix,
					"namespace", long.namespace,
					"shadowed_prefix", short.prefix,
					"shadowed_namespace", short.namespace)
			}
		}
	}

	return r, nil
}

// ToCURIE converts a URI into prefix:suffix form using the longest registered
// namespace that the URI starts with.
func (r *Registry) ToCURIE(uri string) (string, bool) {
	for _, e := range r.namespaces {
		if strings.HasPrefix(uri, e.namespace) {
			return e.prefix + ":" + uri[len(e.namespace):], true
		}
	}
	return "", false
}

// ToURI expands a CURIE into a full URI. The identifier is split on its first
// colon, so suffixes may themselves contain colons.
//
// An empty identifier yields an empty URI and no error.
func (r *Registry) ToURI(id string) (string, error) {
	if id == "" {
		return "", nil
	}

	prefix, suffix, ok := strings.Cut(id, ":")
	if !ok {
		r.logger.Warn("Not a properly formed curie", "curie", id)
		return "", fmt.Errorf("%w: %q", ErrMalformedCURIE, id)
	}

	ns, ok := r.Namespace(prefix)
	if !ok {
		r.logger.Warn("Curie prefix not defined", "curie", id, "prefix", prefix)
		return "", fmt.Errorf("%w: %s", ErrUnknownPrefix, prefix)
	}

	return ns + suffix, nil
}

// Namespace returns the namespace registered for prefix.
func (r *Registry) Namespace(prefix string) (string, bool) {
	ns, ok := r.prefixes[prefix]
	return ns, ok
}

// Prefixes returns a copy of the prefix -> namespace map.
func (r *Registry) Prefixes() map[string]string {
	out := make(map[string]string, len(r.prefixes))
	for k, v := range r.prefixes {
		out[k] = v
	}
	return out
}

// Len returns the number of registered prefixes.
func (r *Registry) Len() int {
	return len(r.prefixes)
}
