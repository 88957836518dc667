// Package ingest runs data sources against a graph sink, keeps run history
// and re-runs sources when their raw files change.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semxref/graph"
)

// ErrUnknownSource is returned when a run names a source that is not registered.
var ErrUnknownSource = errors.New("unknown source")

// Source is one ingestable dataset.
type Source interface {
	// Name returns the source name used in configuration and metrics.
	Name() string

	// Files returns the raw file patterns the source reads, relative to its
	// raw directory, in doublestar syntax.
	Files() []string

	// Run writes the source's graph through model.
	Run(ctx context.Context, model *graph.Model) error
}

// Registry manages the available sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates a registry holding sources.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source, replacing any source with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get returns the named source.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return s, nil
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Affected returns the sorted names of sources reading the given raw file.
// relPath is slash-separated and relative to the raw directory; a source's
// patterns are matched with and without a leading "<name>/" directory.
func (r *Registry) Affected(relPath string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, s := range r.sources {
		for _, pattern := range s.Files() {
			if match(pattern, relPath) || match(name+"/"+pattern, relPath) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
