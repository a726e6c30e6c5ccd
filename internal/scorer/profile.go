// Package scorer scores candidate connections against a company's investor
// profile, gates them on distinct evidence and computes explainable fit
// scores.
package scorer

import (
	"sort"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// Profile summarizes a company's investors. Build it once per company.
type Profile struct {
	IndustryTokens []string
	LocationTokens []string
	Firms          []string

	locations    map[string]struct{}
	metros       map[string]struct{}
	regions      map[string]struct{}
	orgInvestors map[string]map[string]struct{}
}

// BuildProfile derives the company profile from its investor networks.
func BuildProfile(networks []model.InvestorNetwork, cfg config.RecommendConfig) *Profile {
	industry := make(map[string]struct{})
	firms := make(map[string]struct{})
	p := &Profile{
		locations:    make(map[string]struct{}),
		metros:       make(map[string]struct{}),
		regions:      make(map[string]struct{}),
		orgInvestors: make(map[string]map[string]struct{}),
	}

	for _, n := range networks {
		inv := n.Investor

		for _, t := range normalize.IndustryTokens(inv.Industry) {
			industry[t] = struct{}{}
		}
		for _, t := range normalize.ExtractTokens(inv.Industry, cfg.IndustryKeywords) {
			industry[t] = struct{}{}
		}
		// A blank industry field still leaves the firm and title to go on.
		for _, t := range normalize.ExtractTokens(inv.Title+" "+inv.Company, cfg.IndustryKeywords) {
			industry[t] = struct{}{}
		}

		loc := normalize.ParseLocation(inv.Location)
		for _, t := range loc.Tokens() {
			p.locations[t] = struct{}{}
		}
		if loc.Full != "" {
			p.metros[loc.Full] = struct{}{}
		}
		if loc.Metro != "" {
			p.metros[loc.Metro] = struct{}{}
		}
		for _, r := range loc.Regions {
			p.regions[r] = struct{}{}
		}

		if firm := normalize.Org(inv.Company); firm != "" {
			firms[firm] = struct{}{}
		}

		for _, c := range n.Connections {
			org := normalize.Org(c.Company)
			if org == "" {
				continue
			}
			if p.orgInvestors[org] == nil {
				p.orgInvestors[org] = make(map[string]struct{})
			}
			p.orgInvestors[org][inv.ID] = struct{}{}
		}
	}

	p.IndustryTokens = keys(industry)
	p.LocationTokens = keys(p.locations)
	p.Firms = keys(firms)
	return p
}

// OrgInvestorCount returns how many distinct investors have a connection at
// the given company.
func (p *Profile) OrgInvestorCount(company string) int {
	return len(p.orgInvestors[normalize.Org(company)])
}

// locationMatch classifies a candidate location against the profile: a
// metro match compares the full string or the first part, a region match
// is any token overlapping an investor region.
func (p *Profile) locationMatch(raw string) (metro, region string) {
	loc := normalize.ParseLocation(raw)
	if loc.Full == "" {
		return "", ""
	}
	if _, ok := p.metros[loc.Full]; ok {
		return loc.Full, ""
	}
	if _, ok := p.metros[loc.Metro]; ok {
		return loc.Metro, ""
	}
	for _, t := range loc.Tokens() {
		if _, ok := p.regions[t]; ok {
			return "", t
		}
	}
	return "", ""
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
