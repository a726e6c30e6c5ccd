package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReplaceConfig names the slice of a table owned by one scope value, such
// as every row of one company.
type ReplaceConfig struct {
	Table    string   // target table, optionally schema-qualified
	ScopeCol string   // column holding the scope value
	Columns  []string // columns being inserted
}

// ReplaceScoped deletes the rows where ScopeCol = scope and copies rows in
// their place. It runs inside tx and leaves commit to the caller.
func ReplaceScoped(ctx context.Context, tx pgx.Tx, cfg ReplaceConfig, scope any, rows [][]any) (int64, error) {
	if cfg.ScopeCol == "" {
		return 0, eris.New("db: replace: no scope column specified")
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		identifier(cfg.Table).Sanitize(),
		pgx.Identifier{cfg.ScopeCol}.Sanitize(),
	)
	if _, err := tx.Exec(ctx, deleteSQL, scope); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
	}

	n, err := CopyFrom(ctx, tx, cfg.Table, cfg.Columns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "db: replace: %s", cfg.Table)
	}
	return n, nil
}

// identifier handles schema-qualified table names like "kyi.access_nodes".
func identifier(table string) pgx.Identifier {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}
	}
	return pgx.Identifier{table}
}
