// Package testutil provides test helpers shared across semxref packages.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogRecorder is a thread-safe slog.Handler that keeps every record it sees.
//
// Usage:
//
//	rec := testutil.NewLogRecorder()
//	m := mapping.New(terms.Default(), rec.Logger(), nil)
//	m.MapEvidence("MI:9999")
//	assert.Equal(t, 1, rec.Count(slog.LevelWarn))
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder creates an empty recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// Logger returns a logger that writes into the recorder.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled accepts every level.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle stores the record.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

// WithAttrs returns the recorder itself; attributes are not tracked.
func (r *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

// WithGroup returns the recorder itself; groups are not tracked.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Count returns the number of records logged at exactly the given level.
func (r *LogRecorder) Count(level slog.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Level == level {
			n++
		}
	}
	return n
}

// Messages returns the messages logged at the given level, in order.
func (r *LogRecorder) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level == level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// Contains reports whether any record at the given level has an attribute
// whose value contains substr.
func (r *LogRecorder) Contains(level slog.Level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Level != level {
			continue
		}
		found := false
		rec.Attrs(func(a slog.Attr) bool {
			if strings.Contains(a.Value.String(), substr) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// Values returns the value of attribute key on every record at the given
// level with message msg, in order.
func (r *LogRecorder) Values(level slog.Level, msg, key string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, rec := range r.records {
		if rec.Level != level || rec.Message != msg {
			continue
		}
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				out = append(out, a.Value.Any())
				return false
			}
			return true
		})
	}
	return out
}
