package classify

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/source/rows"
	"github.com/c360studio/semxref/terms"
	"github.com/c360studio/semxref/testutil"
)

func records(t *testing.T, rs ...[]string) []Record {
	t.Helper()
	out := make([]Record, 0, len(rs))
	for i, r := range rs {
		rec, err := ParseRecord(r, i+1)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestClassify_Exhaustive(t *testing.T) {
	logs := testutil.NewLogRecorder()
	c := New(logs.Logger(), nil)

	snap := c.Classify(records(t,
		[]string{"# Copyright OMIM", "", "", "", ""},
		[]string{"Asterisk", "100640", "ALDH1A1", "", ""},
		[]string{"Number Sign", "136132", "TRIMETHYLAMINURIA", "", ""},
		[]string{"NumberSign", "136133", "x", "", ""},
		[]string{"Percent", "100070", "AAA1", "", ""},
		[]string{"Plus", "100300", "ADAMS-OLIVER", "", ""},
		[]string{"NULL", "100050", "AARSKOG", "", ""},
		[]string{"Caret", "100200", "REMOVED FROM DATABASE", "", ""},
		[]string{"Tilde", "999999"},
	))

	want := map[string]Classification{
		"100640": Gene,
		"136132": Phenotype,
		"136133": Phenotype,
		"100070": HeritablePhenotypicMarker,
		"100300": DualGeneAndPhenotype,
		"100050": SuspectedPhenotype,
		"100200": Obsolete,
	}
	assert.Equal(t, want, snap.Classes)
	assert.Empty(t, snap.Chain)
	assert.True(t, snap.Removed("100200"))
	assert.False(t, snap.Removed("136132"))

	_, ok := snap.Class("999999")
	assert.False(t, ok)
	assert.Equal(t, 1, snap.Unrecognized)
	assert.Equal(t, 1, logs.Count(slog.LevelWarn))
	assert.Equal(t, 2, snap.Count(Phenotype))
}

func TestClassify_LaterRecordReplaces(t *testing.T) {
	c := New(slog.New(slog.DiscardHandler), nil)

	snap := c.Classify(records(t,
		[]string{"Caret", "100050", "MOVED TO 100060", "", ""},
		[]string{"Asterisk", "100050", "x", "", ""},
	))

	class, ok := snap.Class("100050")
	require.True(t, ok)
	assert.Equal(t, Gene, class)
	assert.NotContains(t, snap.Chain, "100050")
}

func TestClassify_MovedID(t *testing.T) {
	c := New(slog.New(slog.DiscardHandler), nil)

	snap := c.Classify(records(t,
		[]string{"Caret", "100050", "MOVED TO 100060", "", ""},
		[]string{"Number Sign", "100060", "x", "", ""},
	))

	assert.Equal(t, Obsolete, snap.Classes["100050"])
	assert.Equal(t, map[string]IDSet{"100050": NewIDSet("100060")}, snap.Chain)
}

func TestClassify_Destinations(t *testing.T) {
	tests := []struct {
		name      string
		dest      string
		want      []string
		malformed int
	}{
		{"moved", "MOVED TO 100060", []string{"100060"}, 0},
		{"split with AND", "MOVED TO 609300 AND 609301", []string{"609300", "609301"}, 0},
		{"split with comma", "MOVED TO 125853, 125854", []string{"125853", "125854"}, 0},
		{"split with bare comma", "MOVED TO 125853 , 125854", []string{"125853", "125854"}, 0},
		{"leading brace", "MOVED TO {601234}", []string{"601234"}, 0},
		{"brace and comma", "MOVED TO {601234}, 601235", []string{"601234", "601235"}, 0},
		{"unrepairable primary", "MOVED TO 60123", nil, 1},
		{"one bad split", "MOVED TO 601234 AND ABC", []string{"601234"}, 1},
		{"removed", "REMOVED FROM DATABASE", nil, 0},
		{"marker only", "MOVED TO ", nil, 0},
		{"lowercase marker", "moved to 100060", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := testutil.NewLogRecorder()
			c := New(logs.Logger(), nil)

			snap := c.Classify(records(t, []string{"Caret", "100050", tt.dest, "", ""}))

			assert.Equal(t, Obsolete, snap.Classes["100050"])
			if tt.want == nil {
				assert.NotContains(t, snap.Chain, "100050")
			} else {
				require.Contains(t, snap.Chain, "100050")
				assert.Equal(t, tt.want, snap.Chain["100050"].Sorted())
			}
			assert.Equal(t, tt.malformed, snap.Malformed)
			assert.Equal(t, tt.malformed, logs.Count(slog.LevelWarn))
		})
	}
}

func TestClassify_SelfReferenceLogged(t *testing.T) {
	logs := testutil.NewLogRecorder()
	c := New(logs.Logger(), nil)

	snap := c.Classify(records(t, []string{"Caret", "100050", "MOVED TO 100050", "", ""}))

	assert.Equal(t, []string{"100050"}, snap.Chain["100050"].Sorted())
	assert.True(t, logs.Contains(slog.LevelWarn, "100050"))
	assert.Equal(t, []string{"Identifier replaced by itself"}, logs.Messages(slog.LevelWarn))
}

func TestClassify_Metrics(t *testing.T) {
	rec := metrics.NewRecorder()
	c := New(slog.New(slog.DiscardHandler), rec)

	c.Classify(records(t,
		[]string{"Tilde", "1"},
		[]string{"Caret", "100050", "MOVED TO 1000", "", ""},
	))

	s, err := rec.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1.0, s["identifiers{unclassified}"])
	assert.Equal(t, 1.0, s["identifiers{malformed}"])
}

func TestClassifyRows(t *testing.T) {
	c := New(slog.New(slog.DiscardHandler), nil)

	t.Run("ok", func(t *testing.T) {
		input := "# Prefix\tMIM Number\tTitle\tAlt\tIncl\n" +
			"Number Sign\t136132\tTRIMETHYLAMINURIA\t\t\n" +
			"Caret\t100050\tMOVED TO 100060\t\t\n"
		snap, err := c.ClassifyRows(rows.NewReader("mimTitles.txt", strings.NewReader(input)))
		require.NoError(t, err)
		assert.Equal(t, Phenotype, snap.Classes["136132"])
		assert.True(t, snap.Chain["100050"].Has("100060"))
	})

	t.Run("structural error names file", func(t *testing.T) {
		input := "Asterisk\t100640\tALDH1A1\t\t\nPercent\t100070\n"
		_, err := c.ClassifyRows(rows.NewReader("mimTitles.txt", strings.NewReader(input)))
		require.Error(t, err)

		var se *rows.StructuralError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "mimTitles.txt", se.File)
		assert.Equal(t, 2, se.Line)
		assert.Equal(t, []string{"Percent", "100070"}, se.Row)
	})
}

func TestClassification_TermName(t *testing.T) {
	dict := terms.Default()
	assert.Equal(t, "SO:0000704", dict.ID(Gene.TermName()))
	assert.Equal(t, "UPHENO:0001001", dict.ID(Phenotype.TermName()))
	assert.Equal(t, "SO:0001500", dict.ID(HeritablePhenotypicMarker.TermName()))
	assert.Equal(t, "GENO:0000418", dict.ID(DualGeneAndPhenotype.TermName()))
	assert.Equal(t, "NCIT:C71458", dict.ID(SuspectedPhenotype.TermName()))
	assert.Equal(t, "HP:0031859", dict.ID(Obsolete.TermName()))

	assert.True(t, DualGeneAndPhenotype.PhenotypeAdmissible())
	assert.False(t, SuspectedPhenotype.PhenotypeAdmissible())
	assert.False(t, Gene.PhenotypeAdmissible())
}
