package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.UnmappedCode(TableEvidence)
	r.UnmappedCode(TableEvidence)
	r.UnmappedCode(TablePrefix)
	r.Identifiers(OutcomeRemoved, 3)
	r.Identifiers(OutcomeReplaced, 0)
	r.Association("subclass")
	r.Row("genereviews", "idmap")
	r.Triples("memory", 5)
	r.Run("genereviews", nil)
	r.Run("biogrid", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.unmapped.WithLabelValues(TableEvidence)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.identifiers.WithLabelValues(OutcomeRemoved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("biogrid", "error")))

	s, err := r.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2.0, s["unmapped_codes{evidence}"])
	assert.Equal(t, 3.0, s.Total("unmapped_codes"))
	assert.Equal(t, 3.0, s["identifiers{removed}"])
	_, ok := s["identifiers{replaced}"]
	assert.False(t, ok, "zero adds create no series")
	assert.Equal(t, 5.0, s["triples{memory}"])
	assert.Equal(t, 1.0, s["runs{genereviews,ok}"])
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.UnmappedCode(TableRelation)
		r.Identifiers(OutcomeExcluded, 2)
		r.Association("subclass")
		r.Row("x", "y")
		r.Triples("x", 1)
		r.Run("x", nil)
	})
	assert.Nil(t, r.Registry())

	s, err := r.Summary()
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestSummary_Keys(t *testing.T) {
	s := Summary{"b": 1, "a": 2, "c{x}": 3}
	assert.Equal(t, []string{"a", "b", "c{x}"}, s.Keys())
}

func TestSummary_Since(t *testing.T) {
	before := Summary{"runs{a,ok}": 1, "triples{memory}": 4}
	after := Summary{"runs{a,ok}": 2, "triples{memory}": 4, "associations{subclass}": 3}

	assert.Equal(t, Summary{"runs{a,ok}": 1, "associations{subclass}": 3}, after.Since(before))
	assert.Empty(t, after.Since(after))
}
