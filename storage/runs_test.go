package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRunStore()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	second := &RunRecord{Source: "biogrid", Status: RunStatusOK, StartedAt: t0.Add(time.Minute)}
	first := &RunRecord{Source: "genereviews", Status: RunStatusFailed, StartedAt: t0, Error: "boom"}
	require.NoError(t, s.SaveRun(ctx, second))
	require.NoError(t, s.SaveRun(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Error)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "genereviews", runs[0].Source)
	assert.Equal(t, "biogrid", runs[1].Source)

	_, err = s.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRunStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRunStore()
	r := &RunRecord{ID: "fixed", Source: "biogrid", Status: RunStatusFailed}
	require.NoError(t, s.SaveRun(ctx, r))
	r.Status = RunStatusOK
	require.NoError(t, s.SaveRun(ctx, r))

	got, err := s.GetRun(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, RunStatusOK, got.Status)
}
