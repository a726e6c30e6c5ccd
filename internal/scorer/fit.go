package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/etomlinson-dev/KYI/internal/config"
)

// Fit dimension caps.
const (
	MaxSimilarityPts = 30.0
	MaxNetworkPts    = 35.0
	MaxLocationPts   = 20.0
	MaxRecencyPts    = 15.0

	// Neutral recency until interaction timestamps exist.
	RecencyPts = MaxRecencyPts * 0.5
)

// Fit dimensions, in tie-break order.
const (
	DimensionSimilarity = "similarity"
	DimensionNetwork    = "network"
	DimensionLocation   = "location"
	DimensionRecency    = "recency"
)

// FitFactor is one scored dimension of the fit score.
type FitFactor struct {
	Dimension string   `json:"dimension"`
	Points    float64  `json:"points"`
	Max       float64  `json:"max"`
	Reasons   []string `json:"reasons,omitempty"`
}

// FitScore is the 0-100 fit score with its breakdown.
type FitScore struct {
	Similarity float64     `json:"similarity"`
	Network    float64     `json:"network"`
	Location   float64     `json:"location"`
	Recency    float64     `json:"recency"`
	Total      float64     `json:"total"`
	Factors    []FitFactor `json:"factors"`
	Reasons    []string    `json:"reasons,omitempty"`
}

// FitCalculator computes fit scores against a company profile.
type FitCalculator struct {
	cfg     config.RecommendConfig
	profile *Profile
}

// NewFitCalculator creates a FitCalculator.
func NewFitCalculator(profile *Profile, cfg config.RecommendConfig) *FitCalculator {
	return &FitCalculator{cfg: cfg, profile: profile}
}

// Compute scores a merged candidate. Every sub-score is clamped to its cap
// and the total to [0,100].
func (f *FitCalculator) Compute(cs CandidateScore) FitScore {
	factors := []FitFactor{
		f.similarity(cs),
		f.network(cs),
		f.location(cs),
		{Dimension: DimensionRecency, Points: RecencyPts, Max: MaxRecencyPts},
	}

	fs := FitScore{}
	for i := range factors {
		factors[i].Points = clamp(factors[i].Points, 0, factors[i].Max)
		fs.Total += factors[i].Points
	}
	fs.Similarity = factors[0].Points
	fs.Network = factors[1].Points
	fs.Location = factors[2].Points
	fs.Recency = factors[3].Points
	fs.Total = clamp(fs.Total, 0, 100)

	// Stable sort keeps dimension order on ties.
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Points > factors[j].Points
	})
	fs.Factors = factors

	for _, fac := range factors {
		fs.Reasons = append(fs.Reasons, fac.Reasons...)
	}
	if limit := f.cfg.Fit.MaxReasons; limit > 0 && len(fs.Reasons) > limit {
		fs.Reasons = fs.Reasons[:limit]
	}
	return fs
}

func (f *FitCalculator) similarity(cs CandidateScore) FitFactor {
	fac := FitFactor{Dimension: DimensionSimilarity, Max: MaxSimilarityPts}

	if ind := cs.Signal(CategoryIndustry); len(ind.Matches) > 0 {
		fac.Points += math.Min(10, 3+2*float64(len(ind.Matches)))
		fac.Reasons = append(fac.Reasons, "Industry overlap: "+strings.Join(ind.Matches, ", "))
	}
	if cs.Signal(CategoryTitlePattern).Fired {
		fac.Points += 10
		fac.Reasons = append(fac.Reasons, "Investor-like title")
	}
	firm := cs.Signal(CategoryFirmType)
	if len(firm.Matches) > 0 {
		fac.Points += 5
		fac.Reasons = append(fac.Reasons, "Investor firm type")
	}
	if len(firm.SimilarFirms) > 0 {
		fac.Points += 5
		fac.Reasons = append(fac.Reasons, "Similar to your investors' firms")
	}
	return fac
}

func (f *FitCalculator) network(cs CandidateScore) FitFactor {
	fac := FitFactor{Dimension: DimensionNetwork, Max: MaxNetworkPts}

	switch n := len(cs.SharedInvestors); {
	case n >= 3:
		fac.Points += 20
		fac.Reasons = append(fac.Reasons, fmt.Sprintf("Seen in %d investor networks", n))
	case n == 2:
		fac.Points += 12
		fac.Reasons = append(fac.Reasons, "Seen in 2 investor networks")
	case n == 1:
		fac.Points += 5
		fac.Reasons = append(fac.Reasons, "In 1 investor's network")
	}

	minInvestors := f.cfg.CompanyNetworkMinInvestors
	switch n := cs.Signal(CategoryCompanyInNetwork).Count; {
	case n >= 3 && n >= minInvestors:
		fac.Points += 15
		fac.Reasons = append(fac.Reasons, fmt.Sprintf("Company appears across network (%d investors)", n))
	case n >= minInvestors && n > 0:
		fac.Points += 7
		fac.Reasons = append(fac.Reasons, fmt.Sprintf("Company in network (%d investors)", n))
	}
	return fac
}

// location takes the best match over every record merged into the candidate.
func (f *FitCalculator) location(cs CandidateScore) FitFactor {
	fac := FitFactor{Dimension: DimensionLocation, Max: MaxLocationPts}

	variants := cs.Variants
	if len(variants) == 0 {
		variants = append(variants, cs.Connection)
	}

	var region string
	for _, v := range variants {
		metro, r := f.profile.locationMatch(v.Location)
		if metro != "" {
			fac.Points = MaxLocationPts
			fac.Reasons = []string{"Metro match: " + metro}
			return fac
		}
		if region == "" {
			region = r
		}
	}
	if region != "" {
		fac.Points = MaxLocationPts * f.cfg.Fit.LocationRegionFraction
		fac.Reasons = []string{"Region match: " + region}
	}
	return fac
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
