package scorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
	"github.com/etomlinson-dev/KYI/internal/resolve"
)

// Category is a signal category.
type Category string

// Signal categories.
const (
	CategoryIndustry         Category = "industry"
	CategoryLocation         Category = "location"
	CategoryFirmType         Category = "firm_type"
	CategoryTitlePattern     Category = "title_pattern"
	CategoryCompanyInNetwork Category = "company_in_network"
)

// Categories lists every signal category in reporting order.
var Categories = []Category{
	CategoryIndustry,
	CategoryLocation,
	CategoryFirmType,
	CategoryTitlePattern,
	CategoryCompanyInNetwork,
}

// SignalResult is the outcome of one signal category for a candidate.
type SignalResult struct {
	Category Category `json:"category"`
	Fired    bool     `json:"fired"`
	Weight   float64  `json:"weight"`
	Reasons  []string `json:"reasons,omitempty"`

	// Matches holds the vocabulary or profile tokens that matched.
	Matches []string `json:"matches,omitempty"`
	// SimilarFirms holds investor firms whose names are close to the
	// candidate's company (firm_type only).
	SimilarFirms []string `json:"similar_firms,omitempty"`
	// Count is the distinct investor count for the candidate's company
	// (company_in_network only). Recorded even when the signal did not fire.
	Count int `json:"count,omitempty"`

	// Per-evidence firm_type weights, kept so merged records can re-add them.
	keywordWeight float64
	similarWeight float64
}

// Scorer evaluates the five signals for connections of one company.
type Scorer struct {
	cfg     config.RecommendConfig
	profile *Profile
}

// NewScorer creates a Scorer over a built profile.
func NewScorer(profile *Profile, cfg config.RecommendConfig) *Scorer {
	return &Scorer{cfg: cfg, profile: profile}
}

// Score evaluates every signal for a single connection. The result is
// indexed like Categories.
func (s *Scorer) Score(c model.Connection) []SignalResult {
	return []SignalResult{
		s.industry(c),
		s.location(c),
		s.firmType(c),
		s.titlePattern(c),
		s.companyInNetwork(c),
	}
}

// ScoreAll scores connections on a bounded worker pool. Result i belongs to
// conns[i] regardless of scheduling.
func (s *Scorer) ScoreAll(ctx context.Context, conns []model.Connection) ([][]SignalResult, error) {
	results := make([][]SignalResult, len(conns))

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range conns {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = s.Score(c)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scorer: score connections")
	}
	return results, nil
}

func (s *Scorer) industry(c model.Connection) SignalResult {
	r := SignalResult{Category: CategoryIndustry}
	text := strings.ToLower(" " + c.Title + " " + c.Company + " ")
	for _, tok := range s.profile.IndustryTokens {
		if strings.Contains(text, tok) {
			r.Matches = append(r.Matches, tok)
			r.Reasons = append(r.Reasons, "Industry: "+tok)
		}
	}
	if len(r.Matches) > 0 {
		r.Fired = true
		r.Weight = s.cfg.Weights.Industry
	}
	return r
}

func (s *Scorer) location(c model.Connection) SignalResult {
	r := SignalResult{Category: CategoryLocation}
	for _, tok := range normalize.LocationTokens(c.Location) {
		if _, ok := s.profile.locations[tok]; ok {
			r.Matches = append(r.Matches, tok)
		}
	}
	if len(r.Matches) > 0 {
		r.Fired = true
		r.Weight = s.cfg.Weights.Location
		r.Reasons = []string{"Location: " + r.Matches[0]}
	}
	return r
}

func (s *Scorer) firmType(c model.Connection) SignalResult {
	r := SignalResult{Category: CategoryFirmType}
	org := normalize.Org(c.Company)
	if org == "" {
		return r
	}

	r.Matches = normalize.ExtractTokens(org, s.cfg.FirmTypeKeywords)
	if len(r.Matches) > 0 {
		r.Fired = true
		r.keywordWeight = s.cfg.Weights.FirmType
		r.Reasons = append(r.Reasons, "Firm type: "+r.Matches[0])
	}

	for _, firm := range s.profile.Firms {
		if resolve.Ratio(org, firm) >= s.cfg.FirmNameSimilarityThreshold {
			r.SimilarFirms = append(r.SimilarFirms, firm)
		}
	}
	if len(r.SimilarFirms) > 0 {
		r.Fired = true
		r.similarWeight = s.cfg.Weights.SimilarFirm
		r.Reasons = append(r.Reasons, "Similar to firm: "+r.SimilarFirms[0])
	}
	r.Weight = r.keywordWeight + r.similarWeight
	return r
}

func (s *Scorer) titlePattern(c model.Connection) SignalResult {
	r := SignalResult{Category: CategoryTitlePattern}
	r.Matches = normalize.ExtractTokens(c.Title, s.cfg.TitlePatterns)
	if len(r.Matches) > 0 {
		r.Fired = true
		r.Weight = s.cfg.Weights.TitlePattern
		r.Reasons = []string{"Title: " + r.Matches[0]}
	}
	return r
}

func (s *Scorer) companyInNetwork(c model.Connection) SignalResult {
	r := SignalResult{Category: CategoryCompanyInNetwork}
	if normalize.Org(c.Company) == "" {
		return r
	}
	r.Count = s.profile.OrgInvestorCount(c.Company)
	if r.Count >= s.cfg.CompanyNetworkMinInvestors {
		r.Fired = true
		r.Weight = s.cfg.Weights.CompanyInNetwork
		r.Reasons = []string{fmt.Sprintf("Company in network (%d investors)", r.Count)}
	}
	return r
}
