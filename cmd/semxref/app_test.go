package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semxref/config"
	"github.com/c360studio/semxref/source/biogrid"
	"github.com/c360studio/semxref/source/genereviews"
	"github.com/c360studio/semxref/source/rows"
	"github.com/c360studio/semxref/storage"
)

func testApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Raw.Dir = filepath.Join(dir, "raw")
	cfg.Sink.Driver = config.SinkNTriples
	cfg.Sink.Path = filepath.Join(dir, "out", "kg.nt")
	require.NoError(t, cfg.Validate())

	app, err := NewApp(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestNewApp_RegistersSources(t *testing.T) {
	app := testApp(t)
	assert.Equal(t, []string{biogrid.Name, genereviews.Name}, app.sources.Names())
}

func TestNewApp_ConfiguredCuries(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Curies = map[string]string{"X": "http://x.org/"}

	app, err := NewApp(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, 1, app.curies.Len())
}

func TestApp_Lookup(t *testing.T) {
	app := testApp(t)

	tests := []struct {
		table, code, want string
		wantErr           bool
	}{
		{"relation", "MI:0407", "RO:0002434", false},
		{"evidence", "MI:9999", "ECO:0000006", false},
		{"prefix", "ENTREZ_GENE", "NCBIGene", false},
		{"colour", "red", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.table+"/"+tt.code, func(t *testing.T) {
			got, err := app.lookup(tt.table, tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApp_IngestMissingFilesRecordsFailedRun(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	runner, err := app.Runner(ctx)
	require.NoError(t, err)

	_, err = runner.Run(ctx, genereviews.Name)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	runs, err := app.runs.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, genereviews.Name, runs[0].Source)
	assert.Equal(t, storage.RunStatusFailed, runs[0].Status)
}

func TestApp_Ingest(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	raw := filepath.Join(app.cfg.Raw.Dir, genereviews.Name)
	require.NoError(t, os.MkdirAll(raw, 0o755))
	files := map[string]string{
		genereviews.FileTitles:    "GR_shortname\tGR_Title\tNBK_id\tPMID\nnf1\tNeurofibromatosis 1\tNBK1109\t20301288\n",
		genereviews.FileIDMap:     "NBK_id\tGR_shortname\tOMIM\nNBK1109\tnf1\t162200\n",
		genereviews.FileMimTitles: "Number Sign\t162200\tNEUROFIBROMATOSIS, TYPE I\t\t\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(content), 0o644))
	}

	runner, err := app.Runner(ctx)
	require.NoError(t, err)
	records, err := runner.Run(ctx, genereviews.Name)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.RunStatusOK, records[0].Status)
	assert.Positive(t, records[0].Triples)

	require.NoError(t, app.Close(ctx))
	out, err := os.ReadFile(app.cfg.Sink.Path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<http://omim.org/entry/162200>")
	assert.Contains(t, string(out), "<http://www.ncbi.nlm.nih.gov/books/NBK1109>")
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := testApp(t)
	_, err := app.openRuns(context.Background())
	require.NoError(t, err)
	require.NoError(t, app.runs.SaveRun(context.Background(), &storage.RunRecord{
		ID: "run-1", Source: genereviews.Name, Status: storage.RunStatusOK,
	}))
	router := app.router()

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"curie", "/v1/curie?uri=http://omim.org/entry/136132", http.StatusOK, `"curie":"OMIM:136132"`},
		{"curie unknown namespace", "/v1/curie?uri=http://example.org/x", http.StatusNotFound, "no prefix"},
		{"curie missing param", "/v1/curie", http.StatusBadRequest, "uri is required"},
		{"uri", "/v1/uri?curie=OMIM:136132", http.StatusOK, `"uri":"http://omim.org/entry/136132"`},
		{"uri unknown prefix", "/v1/uri?curie=NOPE:1", http.StatusNotFound, "unknown curie prefix"},
		{"uri malformed", "/v1/uri?curie=nocolon", http.StatusBadRequest, "malformed"},
		{"map relation", "/v1/map/relation/MI:0407", http.StatusOK, `"term":"RO:0002434"`},
		{"map unknown table", "/v1/map/colour/red", http.StatusNotFound, "unknown table"},
		{"runs", "/v1/runs", http.StatusOK, `"run-1"`},
		{"run", "/v1/runs/run-1", http.StatusOK, `"status":"ok"`},
		{"run missing", "/v1/runs/run-2", http.StatusNotFound, "run not found"},
		{"health", "/health", http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := testApp(t)
	app.mapper.MapEvidence("MI:9999")

	w := httptest.NewRecorder()
	app.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "semxref_")
}

func TestRouter_MapResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := testApp(t)

	w := httptest.NewRecorder()
	app.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/map/prefix/ENTREZ_GENE", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"table": "prefix", "code": "ENTREZ_GENE", "term": "NCBIGene"}, body)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	se := rows.Structural("titles.txt", 3, []string{"a", "b"}, rows.ErrColumnCount)
	reportError(&buf, fmt.Errorf("genereviews: %w", se))

	assert.Contains(t, buf.String(), "Error: genereviews: titles.txt:3")
	assert.Contains(t, buf.String(), "Row 3: a\tb\n")

	buf.Reset()
	reportError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, fmt.Sprintf("semxref version %s (build: %s)\n", Version, BuildTime), out.String())
}
