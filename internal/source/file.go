package source

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

//go:embed seed.json
var seed []byte

// memory serves records decoded from an in-memory JSON document.
type memory struct {
	data []byte
}

// Embedded returns the seed dataset compiled into the binary.
func Embedded() Source {
	return &memory{data: seed}
}

func (m *memory) Load(context.Context) ([]map[string]any, error) {
	return decodeJSON(m.data)
}

func (m *memory) Close() error { return nil }

// JSONFile reads a JSON array of records, or an object with a "leads" array.
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSONFile source.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads and decodes the file.
func (f *JSONFile) Load(context.Context) ([]map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", f.path)
	}
	records, err := decodeJSON(data)
	if err != nil {
		return nil, eris.Wrapf(err, "source: %s", f.path)
	}
	return records, nil
}

// Close implements Source.
func (f *JSONFile) Close() error { return nil }

// decodeJSON keeps numbers as json.Number so large reach counts survive.
func decodeJSON(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Leads []map[string]any `json:"leads"`
		}
		if err := newDecoder(data).Decode(&wrapped); err != nil {
			return nil, eris.Wrap(err, "decode json object")
		}
		return nonNilRecords(wrapped.Leads), nil
	}
	var records []map[string]any
	if err := newDecoder(data).Decode(&records); err != nil {
		return nil, eris.Wrap(err, "decode json array")
	}
	return nonNilRecords(records), nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func nonNilRecords(in []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, r := range in {
		if r == nil {
			r = map[string]any{}
		}
		out = append(out, r)
	}
	return out
}

// csvRow is one CSV line. Numeric columns stay strings so blanks and
// placeholders reach the normalizer untouched.
type csvRow struct {
	SearchTerm        string `csv:"search_term"`
	State             string `csv:"state"`
	PageName          string `csv:"page_name"`
	PageID            string `csv:"page_id"`
	AdType            string `csv:"ad_type"`
	SpendRange        string `csv:"spend_range"`
	Impressions       string `csv:"impressions"`
	TotalReach        string `csv:"total_reach"`
	Platforms         string `csv:"platforms"`
	StartDate         string `csv:"start_date"`
	StopDate          string `csv:"stop_date"`
	DurationDays      string `csv:"duration_days"`
	FBLink            string `csv:"fb_link"`
	AdLink            string `csv:"ad_link"`
	Address           string `csv:"address"`
	Website           string `csv:"website"`
	NormalizedWebsite string `csv:"normalized_website"`
	Phone             string `csv:"phone"`
	LeadScore         string `csv:"lead_score"`
	LeadPriority      string `csv:"lead_priority"`
}

func (r csvRow) values() []any {
	return []any{
		r.SearchTerm, r.State, r.PageName, r.PageID, r.AdType, r.SpendRange,
		r.Impressions, r.TotalReach, r.Platforms, r.StartDate, r.StopDate,
		r.DurationDays, r.FBLink, r.AdLink, r.Address, r.Website,
		r.NormalizedWebsite, r.Phone, r.LeadScore, r.LeadPriority,
	}
}

// CSVFile reads records from a CSV file with snake_case headers. Unknown
// columns are ignored and missing ones read as empty.
type CSVFile struct {
	path string
}

// NewCSVFile creates a CSVFile source.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Load reads and decodes the file.
func (f *CSVFile) Load(context.Context) ([]map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", f.path)
	}
	var rows []csvRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "source: decode csv %s", f.path)
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec, err := record(row.values())
		if err != nil {
			return nil, eris.Wrapf(err, "source: csv row %d", len(out)+1)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close implements Source.
func (f *CSVFile) Close() error { return nil }
