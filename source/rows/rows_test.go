package rows

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Next(t *testing.T) {
	input := "a\tb\tc\n\nd\tsome \"quoted\" text\te\n"
	r := NewReader("sample.txt", strings.NewReader(input))

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, row.Line)
	assert.Equal(t, []string{"a", "b", "c"}, row.Fields)

	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, row.Line)
	assert.Equal(t, []string{"d", "some \"quoted\" text", "e"}, row.Fields)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Expect(t *testing.T) {
	r := NewReader("titles.txt", strings.NewReader(""))

	assert.NoError(t, r.Expect(Row{Line: 2, Fields: []string{"a", "b"}}, 2))

	err := r.Expect(Row{Line: 7, Fields: []string{"a", "b", "c"}}, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrColumnCount)

	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "titles.txt", se.File)
	assert.Equal(t, 7, se.Line)
	assert.Equal(t, []string{"a", "b", "c"}, se.Row)
	assert.Contains(t, se.Error(), "titles.txt:7")
	assert.Contains(t, se.Error(), "a\\tb\\tc")
}

func TestStructural_CopiesRow(t *testing.T) {
	row := []string{"x", "y"}
	se := Structural("", 1, row, ErrMissingDiscriminant)
	row[0] = "changed"
	assert.Equal(t, "x", se.Row[0])
	assert.Contains(t, se.Error(), "<input>:1")
}
