// Package store persists access maps and run snapshots.
package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/overlap"
	"github.com/etomlinson-dev/KYI/internal/recommend"
	"github.com/etomlinson-dev/KYI/internal/scorer"
)

// DefaultSQLitePath is used when the sqlite driver has no database_url.
const DefaultSQLitePath = "kyi.db"

// Store defines the persistence interface for the recommendation core.
type Store interface {
	// Access maps
	ReplaceAccessMap(ctx context.Context, g *accessmap.Graph) error
	LoadAccessMap(ctx context.Context, companyID string) (*accessmap.Graph, error)

	// Snapshots (write-only history)
	SaveSuggestions(ctx context.Context, res *recommend.Result) (string, error)
	SaveOverlap(ctx context.Context, companyID string, m overlap.Metrics) (string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Store           = (*SQLiteStore)(nil)
	_ Store           = (*PostgresStore)(nil)
	_ accessmap.Store = Store(nil)
)

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLite(path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

var (
	nodeColumns = []string{"company_id", "position", "key", "type", "label", "ring", "count", "meta"}
	edgeColumns = []string{"company_id", "position", "from_key", "to_key", "type", "weight"}
)

// nodeRows flattens g's nodes in insertion order.
func nodeRows(g *accessmap.Graph) ([][]any, error) {
	rows := make([][]any, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		var meta any
		if len(n.Meta) > 0 {
			b, err := json.Marshal(n.Meta)
			if err != nil {
				return nil, eris.Wrapf(err, "store: marshal meta for %s", n.Key)
			}
			meta = string(b)
		}
		rows = append(rows, []any{g.CompanyID, i, n.Key, string(n.Type), n.Label, n.Ring, n.Count, meta})
	}
	return rows, nil
}

func edgeRows(g *accessmap.Graph) [][]any {
	rows := make([][]any, 0, len(g.Edges))
	for i, e := range g.Edges {
		rows = append(rows, []any{g.CompanyID, i, e.From, e.To, string(e.Type), e.Weight})
	}
	return rows
}

func decodeMeta(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal node meta")
	}
	return meta, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNode(row scannable) (accessmap.Node, error) {
	var (
		n    accessmap.Node
		typ  string
		meta []byte
	)
	if err := row.Scan(&n.Key, &typ, &n.Label, &n.Ring, &n.Count, &meta); err != nil {
		return n, eris.Wrap(err, "store: scan node")
	}
	n.Type = accessmap.NodeType(typ)
	m, err := decodeMeta(meta)
	if err != nil {
		return n, err
	}
	n.Meta = m
	return n, nil
}

func scanEdge(row scannable) (accessmap.Edge, error) {
	var (
		e   accessmap.Edge
		typ string
	)
	if err := row.Scan(&e.From, &e.To, &typ, &e.Weight); err != nil {
		return e, eris.Wrap(err, "store: scan edge")
	}
	e.Type = accessmap.EdgeType(typ)
	return e, nil
}

// marshalResult encodes the parts of a recommendation run kept in a
// snapshot.
func marshalResult(res *recommend.Result) (stats, suggestions, excluded []byte, err error) {
	if res == nil {
		return nil, nil, nil, eris.New("store: nil result")
	}
	if stats, err = json.Marshal(res.Stats); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal stats")
	}
	sugg := res.Suggestions
	if sugg == nil {
		sugg = []scorer.CandidateScore{}
	}
	if suggestions, err = json.Marshal(sugg); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal suggestions")
	}
	excl := res.Excluded
	if excl == nil {
		excl = []recommend.Excluded{}
	}
	if excluded, err = json.Marshal(excl); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal excluded")
	}
	return stats, suggestions, excluded, nil
}
