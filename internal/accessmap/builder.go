package accessmap

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// Store persists access maps. Implementations replace the company's
// previous map atomically.
type Store interface {
	ReplaceAccessMap(ctx context.Context, g *Graph) error
}

// BuildOptions controls a single Build call.
type BuildOptions struct {
	Persist bool
}

// Builder builds access graphs and optionally persists them.
type Builder struct {
	cfg   config.AccessMapConfig
	store Store
	locks *keyedMutex
}

// NewBuilder validates cfg and creates a Builder. store may be nil.
func NewBuilder(cfg config.AccessMapConfig, store Store) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "accessmap: invalid config")
	}
	return &Builder{cfg: cfg, store: store, locks: newKeyedMutex()}, nil
}

// Build constructs the access graph for companyID. With opts.Persist and a
// store, building and storing run under a per-company lock so concurrent
// rebuilds of the same company never interleave.
func (b *Builder) Build(ctx context.Context, companyID string, networks []model.InvestorNetwork, opts BuildOptions) (*Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "accessmap: build")
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, eris.New("accessmap: company id is required")
	}

	if !opts.Persist || b.store == nil {
		return b.build(companyID, networks), nil
	}

	unlock := b.locks.Lock(companyID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "accessmap: build")
	}
	g := b.build(companyID, networks)
	if err := b.store.ReplaceAccessMap(ctx, g); err != nil {
		return nil, eris.Wrapf(err, "accessmap: persist company %s", companyID)
	}
	return g, nil
}

// Weight applies the boost formula for an entity seen occ times.
func (b *Builder) Weight(occ int) float64 {
	if occ < 1 {
		occ = 1
	}
	w := 1 + float64(occ-1)*b.cfg.BoostPerShare
	if b.cfg.MaxEdgeWeight > 0 && w > b.cfg.MaxEdgeWeight {
		w = b.cfg.MaxEdgeWeight
	}
	if w < 1 {
		w = 1
	}
	return w
}

type pair struct{ from, to string }

func (b *Builder) build(companyID string, networks []model.InvestorNetwork) *Graph {
	log := zap.L().With(zap.String("company_id", companyID))

	clean, report := model.Sanitize(networks)
	if report.SkippedRecords > 0 {
		log.Warn("accessmap: dropped malformed records",
			zap.Int("skipped_records", report.SkippedRecords),
			zap.Int("dropped_networks", report.DroppedNetworks),
		)
	}

	g := NewGraph(companyID)
	g.Report = report
	g.addNode(Node{Key: CompanyKey(companyID), Type: NodeCompany, Label: companyID, Ring: RingCompany})

	for _, n := range clean {
		inv := n.Investor
		meta := map[string]string{}
		if inv.Title != "" {
			meta["title"] = inv.Title
		}
		if inv.Company != "" {
			meta["firm"] = inv.Company
		}
		if len(meta) == 0 {
			meta = nil
		}
		g.addNode(Node{Key: InvestorKey(inv.ID), Type: NodeInvestor, Label: inv.Name, Ring: RingInvestors, Meta: meta})
	}

	// First pass: identities and occurrence counts.
	var knows, worksAt []pair
	seenPair := make(map[pair]bool)
	personInvestors := make(map[string]map[string]struct{})
	orgPeople := make(map[string]map[string]struct{})
	var people, orgs []Node

	for _, n := range clean {
		invKey := InvestorKey(n.Investor.ID)
		for _, c := range n.Connections {
			pk := normalize.Name(c.Name)
			if pk == "" {
				continue
			}
			person := PersonKey(pk)
			if _, ok := personInvestors[person]; !ok {
				personInvestors[person] = make(map[string]struct{})
				people = append(people, Node{Key: person, Type: NodePerson, Label: strings.TrimSpace(c.Name), Ring: RingNetwork})
			}
			personInvestors[person][n.Investor.ID] = struct{}{}
			if p := (pair{invKey, person}); !seenPair[p] {
				seenPair[p] = true
				knows = append(knows, p)
			}

			orgID := normalize.Org(c.Company)
			if orgID == "" {
				continue
			}
			org := OrgKey(orgID)
			if _, seen := orgPeople[org]; !seen {
				orgPeople[org] = make(map[string]struct{})
				orgs = append(orgs, Node{Key: org, Type: NodeOrg, Label: strings.TrimSpace(c.Company), Ring: RingNetwork})
			}
			orgPeople[org][person] = struct{}{}
			if p := (pair{person, org}); !seenPair[p] {
				seenPair[p] = true
				worksAt = append(worksAt, p)
			}
		}
	}

	// Second pass: nodes, then weighted edges.
	for _, p := range people {
		p.Count = len(personInvestors[p.Key])
		g.addNode(p)
	}
	for _, o := range orgs {
		o.Count = len(orgPeople[o.Key])
		g.addNode(o)
	}
	for _, p := range knows {
		g.Edges = append(g.Edges, Edge{From: p.from, To: p.to, Type: EdgeKnows, Weight: b.Weight(len(personInvestors[p.to]))})
	}
	for _, p := range worksAt {
		g.Edges = append(g.Edges, Edge{From: p.from, To: p.to, Type: EdgeWorksAt, Weight: b.Weight(len(orgPeople[p.to]))})
	}

	m := g.Metrics()
	log.Info("accessmap: graph built",
		zap.Int("nodes", m.Nodes),
		zap.Int("edges", m.Edges),
		zap.Int("investors", m.Investors),
		zap.Int("people", m.People),
		zap.Int("orgs", m.Orgs),
	)
	return g
}
