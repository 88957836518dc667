package assoc

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semxref/classify"
	"github.com/c360studio/semxref/metrics"
	"github.com/c360studio/semxref/terms"
	"github.com/c360studio/semxref/testutil"
)

func quiet() *slog.Logger { return slog.New(slog.DiscardHandler) }

func phenotypes(ids ...string) *classify.Snapshot {
	snap := &classify.Snapshot{
		Classes: map[string]classify.Classification{},
		Chain:   map[string]classify.IDSet{},
	}
	for _, id := range ids {
		snap.Classes[id] = classify.Phenotype
	}
	return snap
}

func TestBuild_EndToEnd(t *testing.T) {
	c := classify.New(quiet(), nil)
	rec, err := classify.ParseRecord([]string{"NumberSign", "136132", "title", "alt", "inc"}, 1)
	require.NoError(t, err)
	snap := c.Classify([]classify.Record{rec})

	groups := map[string]classify.IDSet{"NBK1103": classify.NewIDSet("136132")}
	got, report := New(nil, quiet(), nil).Build(groups, snap, Options{})

	assert.Equal(t, []Association{
		{Subject: "OMIM:136132", Object: "GeneReviews:NBK1103", Kind: Subclass},
		{Subject: "GeneReviews:NBK1103", Object: "DOID:4", Kind: Subclass},
	}, got)
	assert.Equal(t, Report{Groups: 1, Emitted: 2}, report)
}

func TestBuild_AllowlistNarrowing(t *testing.T) {
	snap := phenotypes("100001", "100002")
	groups := map[string]classify.IDSet{"G": classify.NewIDSet("100001", "100002")}

	tests := []struct {
		name      string
		allowlist []string
	}{
		{"raw ids", []string{"100001"}},
		{"curies", []string{"OMIM:100001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report := New(nil, quiet(), nil).Build(groups, snap, Options{TestMode: true, Allowlist: tt.allowlist})

			assert.Equal(t, []Association{
				{Subject: "OMIM:100001", Object: "GeneReviews:G", Kind: Subclass},
				{Subject: "GeneReviews:G", Object: "DOID:4", Kind: Subclass},
			}, got)
			assert.Equal(t, 1, report.Excluded)
		})
	}
}

func TestBuild_EmptyAllowlistDoesNotFilter(t *testing.T) {
	snap := phenotypes("100001", "100002")
	groups := map[string]classify.IDSet{"G": classify.NewIDSet("100001", "100002")}

	got, report := New(nil, quiet(), nil).Build(groups, snap, Options{TestMode: true})
	assert.Len(t, got, 3)
	assert.Zero(t, report.Excluded)
}

func TestBuild_AllowlistIgnoredOutsideTestMode(t *testing.T) {
	snap := phenotypes("100001", "100002")
	groups := map[string]classify.IDSet{"G": classify.NewIDSet("100001", "100002")}

	got, _ := New(nil, quiet(), nil).Build(groups, snap, Options{Allowlist: []string{"100001"}})
	assert.Len(t, got, 3)
}

func TestBuild_GroupAnchoredWhenNothingResolves(t *testing.T) {
	snap := phenotypes()
	groups := map[string]classify.IDSet{
		"NBK2": classify.NewIDSet("999999"),
		"NBK1": {},
	}

	got, _ := New(nil, quiet(), nil).Build(groups, snap, Options{})

	assert.Equal(t, []Association{
		{Subject: "GeneReviews:NBK1", Object: "DOID:4", Kind: Subclass},
		{Subject: "GeneReviews:NBK2", Object: "DOID:4", Kind: Subclass},
	}, got)
}

func TestBuild_SortedAndDeduplicated(t *testing.T) {
	snap := phenotypes("300000", "100000", "200000")
	snap.Classes["400000"] = classify.Obsolete
	snap.Chain["400000"] = classify.NewIDSet("100000")
	groups := map[string]classify.IDSet{
		"B": classify.NewIDSet("300000"),
		"A": classify.NewIDSet("200000", "100000", "400000"),
	}

	got, report := New(nil, quiet(), nil).Build(groups, snap, Options{})

	assert.Equal(t, []Association{
		{Subject: "OMIM:100000", Object: "GeneReviews:A", Kind: Subclass},
		{Subject: "OMIM:200000", Object: "GeneReviews:A", Kind: Subclass},
		{Subject: "GeneReviews:A", Object: "DOID:4", Kind: Subclass},
		{Subject: "OMIM:300000", Object: "GeneReviews:B", Kind: Subclass},
		{Subject: "GeneReviews:B", Object: "DOID:4", Kind: Subclass},
	}, got)
	assert.Equal(t, 1, report.Replaced)
}

func TestBuild_RootFromDictionary(t *testing.T) {
	dict := terms.New(map[string]string{terms.GenericDiseaseRoot: "MONDO:0000001"})
	got, _ := New(dict, quiet(), nil).Build(
		map[string]classify.IDSet{"NBK1": {}}, phenotypes(),
		Options{GroupPrefix: "NBK", SubjectPrefix: "MIM"})

	require.Len(t, got, 1)
	assert.Equal(t, Association{Subject: "NBK:NBK1", Object: "MONDO:0000001", Kind: Subclass}, got[0])
}

func TestBuild_DiagnosticsLoggedAndCounted(t *testing.T) {
	logs := testutil.NewLogRecorder()
	rec := metrics.NewRecorder()

	snap := phenotypes("100060")
	snap.Classes["100050"] = classify.Obsolete
	snap.Classes["100200"] = classify.Obsolete
	snap.Chain["100050"] = classify.NewIDSet("100060")
	groups := map[string]classify.IDSet{"G": classify.NewIDSet("100050", "100200")}

	got, report := New(nil, logs.Logger(), rec).Build(groups, snap, Options{})

	assert.Len(t, got, 2)
	assert.Equal(t, 1, report.Replaced)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, []string{"Identifiers are past their pull date", "Identifiers are gone"}, logs.Messages(slog.LevelWarn))

	s, err := rec.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1.0, s["identifiers{replaced}"])
	assert.Equal(t, 1.0, s["identifiers{removed}"])
	assert.Equal(t, 2.0, s["associations{subclass}"])
}

func TestCurie(t *testing.T) {
	assert.Equal(t, "OMIM:1", Curie("OMIM", "1"))
	assert.Equal(t, "HP:1", Curie("OMIM", "HP:1"))
	assert.Equal(t, "1", Curie("", "1"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "subclass", Subclass.String())
	assert.Equal(t, "equivalence", Equivalence.String())
	assert.Equal(t, "synonym", Synonym.String())
}
