package resolve

import (
	"github.com/etomlinson-dev/KYI/internal/model"
)

// Exclusion records why a candidate was removed.
type Exclusion struct {
	Matcher    string `json:"matcher" yaml:"matcher"`
	InvestorID string `json:"investor_id" yaml:"investor_id"`
}

// Deduplicator runs the matcher cascade against a company's investors.
// Scoped matchers only see the investors in the candidate's
// (company, title) bucket.
type Deduplicator struct {
	matchers  []Matcher
	investors []model.Investor
	all       []int
	byContext map[contextKey][]int
}

// NewDeduplicator indexes investors for the given matcher cascade.
// A nil or empty cascade never excludes anything.
func NewDeduplicator(investors []model.Investor, matchers []Matcher) *Deduplicator {
	d := &Deduplicator{
		matchers:  matchers,
		investors: investors,
		all:       make([]int, len(investors)),
		byContext: make(map[contextKey][]int),
	}
	for i, inv := range investors {
		d.all[i] = i
		if k, ok := contextOf(inv.Company, inv.Title); ok {
			d.byContext[k] = append(d.byContext[k], i)
		}
	}
	return d
}

// Check returns the first matcher (in cascade order) that ties c to an
// investor, and that investor.
func (d *Deduplicator) Check(c model.Connection) (Exclusion, bool) {
	for _, m := range d.matchers {
		for _, idx := range d.scope(m, c) {
			inv := d.investors[idx]
			if m.Match(c, inv) {
				return Exclusion{Matcher: m.Name(), InvestorID: inv.ID}, true
			}
		}
	}
	return Exclusion{}, false
}

func (d *Deduplicator) scope(m Matcher, c model.Connection) []int {
	if _, ok := m.(Scoped); ok {
		k, ok := contextOf(c.Company, c.Title)
		if !ok {
			return nil
		}
		return d.byContext[k]
	}
	return d.all
}
