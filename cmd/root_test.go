package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-dashboard/internal/config"
	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/source"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "stats", "export", "analyze", "import"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "lead-dashboard", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		assert.Contains(t, rootCmd.Long, c.Name(), "long help should describe %q", c.Name())
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestStatsCommand_Flags(t *testing.T) {
	flag := statsCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"format", "selected", "out"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s flag", name)
	}
	assert.Equal(t, "csv", exportCmd.Flags().Lookup("format").DefValue)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	for _, name := range []string{"id", "bulk", "ids"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), "analyze should have --%s flag", name)
	}
}

func TestImportCommand_RequiredFlags(t *testing.T) {
	flag := importCmd.Flags().Lookup("from")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}

func sampleReport() statsReport {
	return statsReport{
		Stats: model.LeadStats{TotalLeads: 3, TotalSpend: 4500, TotalReach: 12000, HighPriority: 2},
		States: []model.StateStats{
			{Name: "NSW", Count: 2, Percentage: 66.7},
			{Name: "VIC", Count: 1, Percentage: 33.3},
		},
	}
}

func TestWriteStats_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, "table", sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Total leads")
	assert.Contains(t, out, "$4500")
	assert.Contains(t, out, "NSW")
	assert.Contains(t, out, "66.7%")
}

func TestWriteStats_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, "JSON", sampleReport()))

	var got statsReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleReport(), got)
}

func TestWriteStats_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, "yaml", sampleReport()))
	assert.Contains(t, buf.String(), "totalLeads: 3")

	var got statsReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleReport(), got)
}

func TestWriteStats_UnknownFormat(t *testing.T) {
	err := writeStats(&bytes.Buffer{}, "xml", sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWriteExport(t *testing.T) {
	leads := []model.Lead{{ID: 1, PageName: `Joe "The" Plumber`, State: "NSW"}}

	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, "csv", leads))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"Joe ""The"" Plumber"`)

	buf.Reset()
	require.NoError(t, writeExport(&buf, "xlsx", leads))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	assert.Error(t, writeExport(&buf, "pdf", leads))
}

func TestWriteExportFile(t *testing.T) {
	leads := []model.Lead{{ID: 1, PageName: "Acme", State: "NSW"}}
	path := filepath.Join(t.TempDir(), "leads.csv")

	require.NoError(t, writeExportFile(path, "csv", leads))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Acme"`)

	err = writeExportFile(filepath.Join(t.TempDir(), "missing", "leads.csv"), "csv", leads)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")

	err = writeExportFile(filepath.Join(t.TempDir(), "leads.pdf"), "pdf", leads)
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	src, err := fileSource("leads.JSON")
	require.NoError(t, err)
	assert.IsType(t, &source.JSONFile{}, src)

	src, err = fileSource("/tmp/leads.csv")
	require.NoError(t, err)
	assert.IsType(t, &source.CSVFile{}, src)

	_, err = fileSource("leads.txt")
	assert.Error(t, err)
}

func TestLoadSnapshot_Embedded(t *testing.T) {
	snap, err := loadSnapshot(context.Background(), config.DataConfig{Driver: "embedded"})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Len())
}

func TestLoadSnapshot_UnknownDriver(t *testing.T) {
	_, err := loadSnapshot(context.Background(), config.DataConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	c := &config.Config{}
	c.Scoring.Provider = config.ProviderNone
	assert.Nil(t, newProvider(c))

	c.Scoring.Provider = "Anthropic"
	c.Anthropic.Key = "sk-test"
	p := newProvider(c)
	require.NotNil(t, p)
	assert.Equal(t, "anthropic", p.Name())

	c.Scoring.Provider = config.ProviderOpenAI
	c.OpenAI.Key = "sk-test"
	c.OpenAI.BaseURL = "http://localhost:1"
	p = newProvider(c)
	require.NotNil(t, p)
	assert.Equal(t, "openai", p.Name())
}

func TestNewProvider_OpenAIUsesConfiguredModel(t *testing.T) {
	var gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel, _ = body["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"{\"score\":70}"},"finish_reason":"stop"}]}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c := &config.Config{}
	c.Scoring.Provider = config.ProviderOpenAI
	c.OpenAI.Key = "sk-test"
	c.OpenAI.Model = "gpt-4o-mini"
	c.OpenAI.BaseURL = ts.URL + "/v1"

	p := newProvider(c)
	require.NotNil(t, p)
	reply, err := p.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"score":70}`, reply)
	assert.Equal(t, "gpt-4o-mini", gotModel)
}

func TestBuildAnalyzer_NoProvider(t *testing.T) {
	c := &config.Config{}
	c.Scoring.Provider = config.ProviderNone
	c.Scoring.Concurrency = 2

	a, cache := buildAnalyzer(context.Background(), c)
	require.NotNil(t, a)
	assert.Nil(t, cache)

	got := a.AnalyzeLead(context.Background(), model.Lead{ID: 1, LeadScore: 80})
	assert.Equal(t, model.SourceFallback, got.Source)
}

func TestBuildAnalyzer_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c := &config.Config{}
	c.Scoring.Provider = config.ProviderAnthropic
	c.Scoring.Concurrency = 2
	c.Scoring.TimeoutSecs = 1
	c.Anthropic.Key = "sk-test"
	c.Cache.RedisAddr = mr.Addr()
	c.Cache.TTLHours = 1

	a, cache := buildAnalyzer(context.Background(), c)
	require.NotNil(t, a)
	require.NotNil(t, cache)
	assert.NoError(t, cache.Close())
}

func TestBuildAnalyzer_CacheUnreachable(t *testing.T) {
	c := &config.Config{}
	c.Scoring.Provider = config.ProviderAnthropic
	c.Scoring.Concurrency = 2
	c.Anthropic.Key = "sk-test"
	c.Cache.RedisAddr = "127.0.0.1:1"

	a, cache := buildAnalyzer(context.Background(), c)
	require.NotNil(t, a)
	assert.Nil(t, cache)
}

func TestImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "leads.json")
	require.NoError(t, os.WriteFile(from, []byte(`[
		{"page_name": "Acme Plumbing", "state": "NSW", "total_reach": 1200, "lead_score": 72},
		{"page_name": "Best Electrical", "state": "VIC", "total_reach": 300, "lead_score": 41}
	]`), 0o644))
	dbPath := filepath.Join(dir, "leads.db")

	prevCfg, prevFrom := cfg, importFrom
	t.Cleanup(func() { cfg, importFrom = prevCfg, prevFrom })

	cfg = &config.Config{}
	cfg.Data.Driver = source.DriverSQLite
	cfg.Data.Path = dbPath
	importFrom = from

	importCmd.SetContext(context.Background())
	require.NoError(t, importCmd.RunE(importCmd, nil))

	snap, err := loadSnapshot(context.Background(), cfg.Data)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	first, ok := snap.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Acme Plumbing", first.PageName)
	assert.Equal(t, int64(1200), first.TotalReach)
}

func TestImportCommand_RejectsEmbeddedDriver(t *testing.T) {
	prevCfg, prevFrom := cfg, importFrom
	t.Cleanup(func() { cfg, importFrom = prevCfg, prevFrom })

	cfg = &config.Config{}
	cfg.Data.Driver = source.DriverEmbedded
	importFrom = "leads.json"

	importCmd.SetContext(context.Background())
	assert.Error(t, importCmd.RunE(importCmd, nil))
}
