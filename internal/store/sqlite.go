package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/overlap"
	"github.com/etomlinson-dev/KYI/internal/recommend"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS access_nodes (
	company_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	key        TEXT NOT NULL,
	type       TEXT NOT NULL,
	label      TEXT NOT NULL DEFAULT '',
	ring       INTEGER NOT NULL,
	count      INTEGER NOT NULL DEFAULT 0,
	meta       TEXT,
	PRIMARY KEY (company_id, key)
);

CREATE TABLE IF NOT EXISTS access_edges (
	company_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	from_key   TEXT NOT NULL,
	to_key     TEXT NOT NULL,
	type       TEXT NOT NULL,
	weight     REAL NOT NULL CHECK (weight >= 1)
);

CREATE TABLE IF NOT EXISTS suggestion_snapshots (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL,
	stats       TEXT NOT NULL,
	suggestions TEXT NOT NULL,
	excluded    TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS overlap_snapshots (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	metrics    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_access_edges_company ON access_edges(company_id, position);
CREATE INDEX IF NOT EXISTS idx_suggestion_snapshots_company ON suggestion_snapshots(company_id, created_at);
CREATE INDEX IF NOT EXISTS idx_overlap_snapshots_company ON overlap_snapshots(company_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceAccessMap swaps the company's stored graph for g in one
// transaction.
func (s *SQLiteStore) ReplaceAccessMap(ctx context.Context, g *accessmap.Graph) error {
	nodes, err := nodeRows(g)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"access_edges", "access_nodes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE company_id = ?`, g.CompanyID); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s for %s", table, g.CompanyID)
		}
	}
	if err := insertRows(ctx, tx, "access_nodes", nodeColumns, nodes); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "access_edges", edgeColumns, edgeRows(g)); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit access map")
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(columns, ", "), placeholders))
	if err != nil {
		return eris.Wrapf(err, "sqlite: prepare insert %s", table)
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s", table)
		}
	}
	return nil
}

// LoadAccessMap returns the stored graph, or nil when the company has none.
func (s *SQLiteStore) LoadAccessMap(ctx context.Context, companyID string) (*accessmap.Graph, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, type, label, ring, count, meta FROM access_nodes WHERE company_id = ? ORDER BY position`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load nodes for %s", companyID)
	}
	var nodes []accessmap.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close() //nolint:errcheck
			return nil, err
		}
		nodes = append(nodes, n)
	}
	rows.Close() //nolint:errcheck
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load nodes iterate")
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT from_key, to_key, type, weight FROM access_edges WHERE company_id = ? ORDER BY position`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load edges for %s", companyID)
	}
	defer rows.Close() //nolint:errcheck

	var edges []accessmap.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load edges iterate")
	}

	g, err := accessmap.FromParts(companyID, nodes, edges)
	return g, eris.Wrapf(err, "sqlite: load access map %s", companyID)
}

func (s *SQLiteStore) SaveSuggestions(ctx context.Context, res *recommend.Result) (string, error) {
	stats, suggestions, excluded, err := marshalResult(res)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO suggestion_snapshots (id, company_id, stats, suggestions, excluded, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, res.CompanyID, string(stats), string(suggestions), string(excluded), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert suggestions for %s", res.CompanyID)
	}
	return id, nil
}

func (s *SQLiteStore) SaveOverlap(ctx context.Context, companyID string, m overlap.Metrics) (string, error) {
	metrics, err := json.Marshal(m)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal overlap metrics")
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO overlap_snapshots (id, company_id, metrics, created_at) VALUES (?, ?, ?, ?)`,
		id, companyID, string(metrics), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert overlap for %s", companyID)
	}
	return id, nil
}
