package source

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// SQLite reads leads from a modernc.org/sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	search_term        TEXT,
	state              TEXT,
	page_name          TEXT,
	page_id            TEXT,
	ad_type            TEXT,
	spend_range        TEXT,
	impressions        TEXT,
	total_reach        INTEGER NOT NULL DEFAULT 0,
	platforms          TEXT,
	start_date         TEXT,
	stop_date          TEXT,
	duration_days      TEXT,
	fb_link            TEXT,
	ad_link            TEXT,
	address            TEXT,
	website            TEXT,
	normalized_website TEXT,
	phone              TEXT,
	lead_score         REAL NOT NULL DEFAULT 0,
	lead_priority      TEXT,
	imported_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_state ON leads(state);
`

// Migrate creates the leads table.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Insert appends leads in one transaction and returns the count written.
// Lead ids are not stored; they are reassigned from row order on load.
func (s *SQLite) Insert(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (`+strings.Join(Columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, l := range leads {
		if _, err := stmt.ExecContext(ctx, leadRow(l)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %d", i+1)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return len(leads), nil
}

// Load returns every stored lead in insertion order.
func (s *SQLite) Load(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(Columns, ", ")+` FROM leads ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query leads")
	}
	defer rows.Close() //nolint:errcheck

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(Columns))
		dest := make([]any, len(Columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		rec, err := record(values)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
