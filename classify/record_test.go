package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semxref/source/rows"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		token string
		want  Kind
	}{
		{"Asterisk", KindAsterisk},
		{"Number Sign", KindNumberSign},
		{"NumberSign", KindNumberSign},
		{"Percent", KindPercent},
		{"Plus", KindPlus},
		{"NULL", KindNull},
		{"Caret", KindCaret},
		{"# Copyright", KindComment},
		{"#", KindComment},
		{"null", KindUnrecognized},
		{"Tilde", KindUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.token))
		})
	}
}

func TestParseRecord(t *testing.T) {
	t.Run("recognized", func(t *testing.T) {
		rec, err := ParseRecord([]string{"Caret", "100050", "MOVED TO 100060", "", ""}, 4)
		require.NoError(t, err)
		assert.Equal(t, KindCaret, rec.Kind)
		assert.Equal(t, "100050", rec.ID)
		assert.Equal(t, "MOVED TO 100060", rec.Destination())
		assert.Equal(t, 4, rec.Line)
	})

	t.Run("comment of any width", func(t *testing.T) {
		rec, err := ParseRecord([]string{"# Prefix", "MIM Number"}, 1)
		require.NoError(t, err)
		assert.Equal(t, KindComment, rec.Kind)
	})

	t.Run("unrecognized keeps id", func(t *testing.T) {
		rec, err := ParseRecord([]string{"Tilde", "123456"}, 9)
		require.NoError(t, err)
		assert.Equal(t, KindUnrecognized, rec.Kind)
		assert.Equal(t, "123456", rec.ID)
		assert.Equal(t, "Tilde", rec.Token)
	})

	t.Run("destination only for caret", func(t *testing.T) {
		rec, err := ParseRecord([]string{"Asterisk", "100640", "ALDH1A1", "", ""}, 2)
		require.NoError(t, err)
		assert.Empty(t, rec.Destination())
	})

	t.Run("empty discriminant", func(t *testing.T) {
		_, err := ParseRecord([]string{"", "100050", "x", "", ""}, 12)
		require.Error(t, err)
		assert.ErrorIs(t, err, rows.ErrMissingDiscriminant)

		var se *rows.StructuralError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 12, se.Line)
	})

	t.Run("empty row", func(t *testing.T) {
		_, err := ParseRecord(nil, 3)
		assert.ErrorIs(t, err, rows.ErrMissingDiscriminant)
	})

	t.Run("wrong width", func(t *testing.T) {
		_, err := ParseRecord([]string{"Number Sign", "136132", "TMAU"}, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, rows.ErrColumnCount)
		assert.Contains(t, err.Error(), "NumberSign record wants 5, got 3")
	})
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a")
	s.Add("c", "a")
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("z"))

	c := s.Clone()
	c.Add("z")
	assert.False(t, s.Has("z"))

	s.Union(NewIDSet("y"))
	assert.Len(t, s, 4)
}
