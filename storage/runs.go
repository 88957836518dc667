package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketRuns is the KV bucket holding ingest run history.
const BucketRuns = "SEMXREF_RUNS"

// RunStatus is the outcome of an ingest run.
type RunStatus string

const (
	RunStatusOK     RunStatus = "ok"
	RunStatusFailed RunStatus = "failed"
)

// RunRecord is the persisted summary of one source run.
type RunRecord struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Status     RunStatus          `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Triples    int                `json:"triples"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// RunStore persists run records.
type RunStore interface {
	SaveRun(ctx context.Context, r *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context) ([]*RunRecord, error)
}

// KVRunStore stores run records in a NATS KV bucket.
type KVRunStore struct {
	kv jetstream.KeyValue
}

// NewKVRunStore opens or creates the runs bucket.
func NewKVRunStore(ctx context.Context, js jetstream.JetStream) (*KVRunStore, error) {
	kv, err := js.KeyValue(ctx, BucketRuns)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketRuns,
			Description: "semxref ingest run history",
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create runs bucket: %w", err)
		}
	}
	return &KVRunStore{kv: kv}, nil
}

func (s *KVRunStore) SaveRun(ctx context.Context, r *RunRecord) error {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if _, err := s.kv.Put(ctx, r.ID, data); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

func (s *KVRunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	entry, err := s.kv.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	var r RunRecord
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &r, nil
}

func (s *KVRunStore) ListRuns(ctx context.Context) ([]*RunRecord, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]*RunRecord, 0, len(keys))
	for _, key := range keys {
		r, err := s.GetRun(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		runs = append(runs, r)
	}
	sortRuns(runs)
	return runs, nil
}

// MemoryRunStore keeps run records in memory.
type MemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]RunRecord
}

// NewMemoryRunStore creates an empty store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]RunRecord)}
}

func (m *MemoryRunStore) SaveRun(_ context.Context, r *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = NewRunID()
	}
	m.runs[r.ID] = *r
	return nil
}

func (m *MemoryRunStore) GetRun(_ context.Context, id string) (*RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRunStore) ListRuns(context.Context) ([]*RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]*RunRecord, 0, len(m.runs))
	for _, r := range m.runs {
		r := r
		runs = append(runs, &r)
	}
	sortRuns(runs)
	return runs, nil
}

// sortRuns orders runs oldest first.
func sortRuns(runs []*RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
}
