// Package graph turns class declarations and associations into triples and
// hands them to a Sink.
package graph

import (
	"context"
	"errors"
	"sync"
)

// ErrSinkClosed is returned by writes after Close.
var ErrSinkClosed = errors.New("sink closed")

// Triple is one statement. Subject and Predicate are CURIEs or blank nodes
// ("_:" prefix). Object is a CURIE unless Literal is set.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Literal   bool
}

// Sink accepts triples. Implementations own their batching and ordering.
type Sink interface {
	Write(ctx context.Context, triples ...Triple) error
	Close(ctx context.Context) error
}

// MemorySink keeps every triple in memory.
type MemorySink struct {
	mu      sync.Mutex
	triples []Triple
	closed  bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Write(_ context.Context, triples ...Triple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSinkClosed
	}
	m.triples = append(m.triples, triples...)
	return nil
}

func (m *MemorySink) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Triples returns a copy of everything written.
func (m *MemorySink) Triples() []Triple {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Triple(nil), m.triples...)
}

// Has reports whether the exact triple was written.
func (m *MemorySink) Has(t Triple) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.triples {
		if x == t {
			return true
		}
	}
	return false
}

// Closed reports whether Close was called.
func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Batcher buffers triples and flushes them in fixed-size batches.
type Batcher struct {
	size  int
	buf   []Triple
	flush func(ctx context.Context, batch []Triple) error
}

// NewBatcher creates a Batcher. size <= 0 means 500.
func NewBatcher(size int, flush func(ctx context.Context, batch []Triple) error) *Batcher {
	if size <= 0 {
		size = 500
	}
	return &Batcher{size: size, flush: flush}
}

// Add buffers triples and flushes every full batch.
func (b *Batcher) Add(ctx context.Context, triples ...Triple) error {
	for _, t := range triples {
		b.buf = append(b.buf, t)
		if len(b.buf) >= b.size {
			if err := b.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush writes any buffered triples.
func (b *Batcher) Flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}
	batch := b.buf
	b.buf = nil
	return b.flush(ctx, batch)
}
