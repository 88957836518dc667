// Package storage provides access to raw source files on the local
// filesystem, in memory or in S3, plus a NATS KV history of ingest runs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Info describes a stored object.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store reads raw source files by slash-separated name.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (Info, error)
	// Glob returns the names matching a doublestar pattern, sorted.
	Glob(ctx context.Context, pattern string) ([]string, error)
}

// ReadAll reads a whole object.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	rc, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// FSStore reads files under a root directory.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir}
}

// Root returns the root directory.
func (s *FSStore) Root() string { return s.root }

// Path returns the local path of name.
func (s *FSStore) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func (s *FSStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *FSStore) Stat(_ context.Context, name string) (Info, error) {
	fi, err := os.Stat(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return Info{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return Info{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (s *FSStore) Glob(_ context.Context, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// MemoryStore keeps files in memory. Intended for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	now   time.Time
}

// NewMemoryStore creates a store holding files.
func NewMemoryStore(files map[string][]byte) *MemoryStore {
	m := &MemoryStore{files: make(map[string][]byte), now: time.Now()}
	for name, data := range files {
		m.files[path.Clean(name)] = data
	}
	return m
}

// Put stores data under name.
func (m *MemoryStore) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(name)] = data
}

func (m *MemoryStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) Stat(_ context.Context, name string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path.Clean(name)]
	if !ok {
		return Info{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return Info{Name: name, Size: int64(len(data)), ModTime: m.now}, nil
}

func (m *MemoryStore) Glob(_ context.Context, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob %s: %w", pattern, doublestar.ErrBadPattern)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name := range m.files {
		if ok, _ := doublestar.Match(pattern, name); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
