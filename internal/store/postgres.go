package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/db"
	"github.com/etomlinson-dev/KYI/internal/overlap"
	"github.com/etomlinson-dev/KYI/internal/recommend"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS access_nodes (
	company_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	key        TEXT NOT NULL,
	type       TEXT NOT NULL,
	label      TEXT NOT NULL DEFAULT '',
	ring       INTEGER NOT NULL,
	count      INTEGER NOT NULL DEFAULT 0,
	meta       JSONB,
	PRIMARY KEY (company_id, key)
);

CREATE TABLE IF NOT EXISTS access_edges (
	company_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	from_key   TEXT NOT NULL,
	to_key     TEXT NOT NULL,
	type       TEXT NOT NULL,
	weight     DOUBLE PRECISION NOT NULL CHECK (weight >= 1)
);

CREATE TABLE IF NOT EXISTS suggestion_snapshots (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id  TEXT NOT NULL,
	stats       JSONB NOT NULL,
	suggestions JSONB NOT NULL,
	excluded    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS overlap_snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id TEXT NOT NULL,
	metrics    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_access_edges_company ON access_edges(company_id, position);
CREATE INDEX IF NOT EXISTS idx_suggestion_snapshots_company ON suggestion_snapshots(company_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_overlap_snapshots_company ON overlap_snapshots(company_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// ReplaceAccessMap swaps the company's stored graph for g in one
// transaction, bulk-loading rows with COPY.
func (s *PostgresStore) ReplaceAccessMap(ctx context.Context, g *accessmap.Graph) error {
	nodes, err := nodeRows(g)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := db.ReplaceScoped(ctx, tx, db.ReplaceConfig{Table: "access_edges", ScopeCol: "company_id", Columns: edgeColumns}, g.CompanyID, edgeRows(g)); err != nil {
		return eris.Wrapf(err, "postgres: replace edges for %s", g.CompanyID)
	}
	if _, err := db.ReplaceScoped(ctx, tx, db.ReplaceConfig{Table: "access_nodes", ScopeCol: "company_id", Columns: nodeColumns}, g.CompanyID, nodes); err != nil {
		return eris.Wrapf(err, "postgres: replace nodes for %s", g.CompanyID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit access map")
}

// LoadAccessMap returns the stored graph, or nil when the company has none.
func (s *PostgresStore) LoadAccessMap(ctx context.Context, companyID string) (*accessmap.Graph, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, type, label, ring, count, meta FROM access_nodes WHERE company_id = $1 ORDER BY position`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load nodes for %s", companyID)
	}
	var nodes []accessmap.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		nodes = append(nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: load nodes iterate")
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	rows, err = s.pool.Query(ctx,
		`SELECT from_key, to_key, type, weight FROM access_edges WHERE company_id = $1 ORDER BY position`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load edges for %s", companyID)
	}
	defer rows.Close()

	var edges []accessmap.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: load edges iterate")
	}

	g, err := accessmap.FromParts(companyID, nodes, edges)
	return g, eris.Wrapf(err, "postgres: load access map %s", companyID)
}

func (s *PostgresStore) SaveSuggestions(ctx context.Context, res *recommend.Result) (string, error) {
	stats, suggestions, excluded, err := marshalResult(res)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO suggestion_snapshots (id, company_id, stats, suggestions, excluded, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, res.CompanyID, stats, suggestions, excluded, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert suggestions for %s", res.CompanyID)
	}
	return id, nil
}

func (s *PostgresStore) SaveOverlap(ctx context.Context, companyID string, m overlap.Metrics) (string, error) {
	metrics, err := json.Marshal(m)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal overlap metrics")
	}

	id := uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO overlap_snapshots (id, company_id, metrics, created_at) VALUES ($1, $2, $3, $4)`,
		id, companyID, metrics, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert overlap for %s", companyID)
	}
	return id, nil
}
