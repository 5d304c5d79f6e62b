package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-dashboard/internal/leads"
	"github.com/sells-group/lead-dashboard/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEmbedded(t *testing.T) {
	src := Embedded()
	defer src.Close() //nolint:errcheck

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Pianote", records[0]["page_name"])
	assert.Equal(t, json.Number("475658"), records[0]["total_reach"])

	all := leads.Normalize(records)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, int64(475658), all[0].TotalReach)
	assert.Nil(t, all[0].StopDate)
}

func TestJSONFile_Array(t *testing.T) {
	path := writeFile(t, "leads.json", `[{"page_name":"A","total_reach":10},{"pageName":"B"}]`)

	records, err := NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	all := leads.Normalize(records)
	assert.Equal(t, "A", all[0].PageName)
	assert.Equal(t, int64(10), all[0].TotalReach)
	assert.Equal(t, "B", all[1].PageName)
}

func TestJSONFile_Wrapped(t *testing.T) {
	path := writeFile(t, "leads.json", ` {"leads":[{"page_name":"A"}, null]}`)

	records, err := NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, records[1])
}

func TestJSONFile_Errors(t *testing.T) {
	_, err := NewJSONFile(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: read")

	_, err = NewJSONFile(writeFile(t, "bad.json", `[{"page_name":`)).Load(context.Background())
	require.Error(t, err)
}

func TestCSVFile(t *testing.T) {
	path := writeFile(t, "leads.csv",
		"page_name,state,total_reach,lead_score,stop_date,extra\n"+
			"\"Smith, Jones & Co\",NSW,28475,92,N/A,x\n"+
			"Solo,,,,2025-03-01,\n")

	records, err := NewCSVFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	all := leads.Normalize(records)
	assert.Equal(t, "Smith, Jones & Co", all[0].PageName)
	assert.Equal(t, int64(28475), all[0].TotalReach)
	assert.InDelta(t, 92, all[0].LeadScore, 0.0001)
	assert.Nil(t, all[0].StopDate)

	assert.Equal(t, model.UnknownState, all[1].State)
	assert.Zero(t, all[1].TotalReach)
	require.NotNil(t, all[1].StopDate)
	assert.Equal(t, "2025-03-01", *all[1].StopDate)
}

func TestCSVFile_Missing(t *testing.T) {
	_, err := NewCSVFile(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	src, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &memory{}, src)

	src, err = Open(ctx, Config{Driver: "JSON", Path: "x.json"})
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, src)

	src, err = Open(ctx, Config{Driver: "csv", Path: "x.csv"})
	require.NoError(t, err)
	assert.IsType(t, &CSVFile{}, src)

	src, err = Open(ctx, Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "l.db")})
	require.NoError(t, err)
	assert.IsType(t, &retrying{}, src)
	require.NoError(t, src.Close())

	for _, cfg := range []Config{
		{Driver: "json"},
		{Driver: "csv"},
		{Driver: "sqlite"},
		{Driver: "postgres"},
		{Driver: "mongo"},
	} {
		_, err := Open(ctx, cfg)
		assert.Error(t, err, "driver %q", cfg.Driver)
	}
}
