package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/resilience"
)

// Pool is the subset of pgxpool.Pool used here. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Close()
}

// Postgres reads leads from a PostgreSQL table.
type Postgres struct {
	pool Pool
}

// NewPostgres creates a Postgres source with a small connection pool.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                 BIGSERIAL PRIMARY KEY,
	search_term        TEXT,
	state              TEXT,
	page_name          TEXT,
	page_id            TEXT,
	ad_type            TEXT,
	spend_range        TEXT,
	impressions        TEXT,
	total_reach        BIGINT NOT NULL DEFAULT 0,
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
	lead_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	lead_priority      TEXT,
	imported_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate creates the leads table.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Insert bulk-loads leads with the COPY protocol.
func (p *Postgres) Insert(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(leads))
	for i, l := range leads {
		rows[i] = leadRow(l)
	}
	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{"leads"}, Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy leads")
	}
	return int(n), nil
}

// Load returns every stored lead ordered by id.
func (p *Postgres) Load(ctx context.Context) ([]map[string]any, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+strings.Join(Columns, ", ")+` FROM leads ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(transient(err), "postgres: query leads")
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		rec, err := record(values)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// transient marks server conditions that clear without intervention:
// connection exceptions, too_many_connections, admin_shutdown and
// cannot_connect_now.
func transient(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "53300", pgErr.Code == "57P01", pgErr.Code == "57P03":
		return resilience.Transient(err)
	}
	return err
}
