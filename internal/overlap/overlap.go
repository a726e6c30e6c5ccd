// Package overlap measures how much a company's investor networks overlap.
package overlap

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// DefaultTopN is the number of top overlapping people and orgs reported.
const DefaultTopN = 20

// Entity is a person or organization seen across investor networks.
type Entity struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"` // distinct investors
}

// Metrics summarizes network overlap for one company. Percentages are in
// [0,100]; CollapseRate is a fraction in [0,1].
type Metrics struct {
	Investors        int      `json:"investors"`
	TotalNodes       int      `json:"total_nodes"`
	TotalEdges       int      `json:"total_edges"`
	UniquePeople     int      `json:"unique_people"`
	UniqueOrgs       int      `json:"unique_orgs"`
	OverlapPeople    int      `json:"overlap_people"`
	OverlapOrgs      int      `json:"overlap_orgs"`
	PeopleOverlapPct float64  `json:"people_overlap_pct"`
	OrgOverlapPct    float64  `json:"org_overlap_pct"`
	OverlapPct       float64  `json:"overlap_pct"`
	CollapseCount    int      `json:"collapse_count"`
	CollapseRate     float64  `json:"collapse_rate"`
	TopPeople        []Entity `json:"top_people"`
	TopOrgs          []Entity `json:"top_orgs"`

	// Report records the malformed input dropped before counting.
	Report model.IngestReport `json:"report"`
}

// Analyzer computes overlap metrics.
type Analyzer struct {
	cfg config.OverlapConfig
}

// New validates cfg and creates an Analyzer.
func New(cfg config.OverlapConfig) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "overlap: invalid config")
	}
	if cfg.TopN == 0 {
		cfg.TopN = DefaultTopN
	}
	return &Analyzer{cfg: cfg}, nil
}

// tally maps entity keys to the investors that reach them.
type tally struct {
	labels    map[string]string
	investors map[string]map[string]struct{}
}

func newTally() *tally {
	return &tally{
		labels:    make(map[string]string),
		investors: make(map[string]map[string]struct{}),
	}
}

func (t *tally) add(key, label, investorID string) {
	if key == "" {
		return
	}
	if _, ok := t.labels[key]; !ok {
		t.labels[key] = strings.TrimSpace(label)
		t.investors[key] = make(map[string]struct{})
	}
	t.investors[key][investorID] = struct{}{}
}

// overlapping returns entities reached by at least threshold investors,
// ranked by count descending then key.
func (t *tally) overlapping(threshold int) []Entity {
	var out []Entity
	for k, invs := range t.investors {
		if len(invs) >= threshold {
			out = append(out, Entity{Key: k, Label: t.labels[k], Count: len(invs)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Compute derives overlap metrics. Malformed records are dropped first.
func (a *Analyzer) Compute(networks []model.InvestorNetwork) Metrics {
	clean, report := model.Sanitize(networks)

	people, orgs := newTally(), newTally()
	m := Metrics{Report: report}
	m.Investors = len(clean)

	for _, n := range clean {
		for _, c := range n.Connections {
			m.TotalEdges++
			people.add(normalize.Name(c.Name), c.Name, n.Investor.ID)
			orgs.add(normalize.Org(c.Company), c.Company, n.Investor.ID)
		}
	}

	overlapPeople := people.overlapping(a.cfg.Threshold)
	overlapOrgs := orgs.overlapping(a.cfg.Threshold)

	m.UniquePeople = len(people.labels)
	m.UniqueOrgs = len(orgs.labels)
	m.OverlapPeople = len(overlapPeople)
	m.OverlapOrgs = len(overlapOrgs)
	m.TotalNodes = m.Investors + m.UniquePeople + m.UniqueOrgs

	m.PeopleOverlapPct = pct(m.OverlapPeople, m.UniquePeople)
	m.OrgOverlapPct = pct(m.OverlapOrgs, m.UniqueOrgs)
	m.OverlapPct = pct(m.OverlapPeople+m.OverlapOrgs, m.UniquePeople+m.UniqueOrgs)

	m.CollapseCount = m.OverlapPeople
	m.CollapseRate = m.PeopleOverlapPct / 100

	m.TopPeople = top(overlapPeople, a.cfg.TopN)
	m.TopOrgs = top(overlapOrgs, a.cfg.TopN)

	zap.L().Debug("overlap: metrics computed",
		zap.Int("investors", m.Investors),
		zap.Int("unique_people", m.UniquePeople),
		zap.Int("overlap_people", m.OverlapPeople),
	)
	return m
}

// pct returns part/whole*100 clamped to [0,100], or 0 when whole is 0.
func pct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func top(entities []Entity, n int) []Entity {
	if len(entities) > n {
		entities = entities[:n]
	}
	if entities == nil {
		return []Entity{}
	}
	return entities
}
