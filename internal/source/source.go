// Package source reads raw lead records from the configured backend.
package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/resilience"
)

// Source yields raw lead records in a stable order.
type Source interface {
	Load(ctx context.Context) ([]map[string]any, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverEmbedded = "embedded"
	DriverJSON     = "json"
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates a source.
type Config struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// Columns is the stored column order shared by every tabular backend.
var Columns = []string{
	"search_term", "state", "page_name", "page_id", "ad_type", "spend_range",
	"impressions", "total_reach", "platforms", "start_date", "stop_date",
	"duration_days", "fb_link", "ad_link", "address", "website",
	"normalized_website", "phone", "lead_score", "lead_priority",
}

// Open returns the source named by cfg.Driver. Database sources retry
// transient load failures.
func Open(ctx context.Context, cfg Config) (Source, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverEmbedded:
		return Embedded(), nil
	case DriverJSON:
		if cfg.Path == "" {
			return nil, eris.New("source: json driver requires data.path")
		}
		return NewJSONFile(cfg.Path), nil
	case DriverCSV:
		if cfg.Path == "" {
			return nil, eris.New("source: csv driver requires data.path")
		}
		return NewCSVFile(cfg.Path), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, eris.New("source: sqlite driver requires data.path")
		}
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return withRetry(s, driver), nil
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, eris.New("source: postgres driver requires data.database_url")
		}
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return withRetry(s, driver), nil
	default:
		return nil, eris.Errorf("source: unknown driver %q", cfg.Driver)
	}
}

// retrying retries Load with exponential backoff.
type retrying struct {
	Source
	name    string
	backoff resilience.Backoff
}

func withRetry(s Source, name string) Source {
	return &retrying{Source: s, name: name, backoff: resilience.DefaultBackoff()}
}

func (r *retrying) Load(ctx context.Context) ([]map[string]any, error) {
	records, err := resilience.Retry(ctx, "source: load "+r.name, r.backoff, r.Source.Load)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("source loaded", zap.String("driver", r.name), zap.Int("records", len(records)))
	return records, nil
}

// leadRow flattens a lead into Columns order for storage.
func leadRow(l model.Lead) []any {
	return []any{
		l.SearchTerm, l.State, l.PageName, l.PageID, l.AdType, l.SpendRange,
		l.Impressions, l.TotalReach, l.Platforms, l.StartDate, nullable(l.StopDate),
		nullable(l.DurationDays), l.FBLink, l.AdLink, l.Address, l.Website,
		l.NormalizedWebsite, l.Phone, l.LeadScore, l.LeadPriority,
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// record pairs Columns with scanned values, dropping NULLs.
func record(values []any) (map[string]any, error) {
	if len(values) != len(Columns) {
		return nil, eris.Errorf("got %d values, want %d", len(values), len(Columns))
	}
	rec := make(map[string]any, len(Columns))
	for i, v := range values {
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec[Columns[i]] = v
	}
	return rec, nil
}
