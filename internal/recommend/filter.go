package recommend

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/etomlinson-dev/KYI/internal/scorer"
)

// Filter narrows suggestions by case-insensitive substring. Empty fields
// are ignored.
type Filter struct {
	Industry     string `json:"industry,omitempty"`      // title or company
	Location     string `json:"location,omitempty"`      // location
	FirmType     string `json:"firm_type,omitempty"`     // company
	TitlePattern string `json:"title_pattern,omitempty"` // title
}

// Apply returns the candidates that satisfy every non-empty field, in
// input order.
func (f Filter) Apply(cands []scorer.CandidateScore) []scorer.CandidateScore {
	industry := strings.ToLower(strings.TrimSpace(f.Industry))
	location := strings.ToLower(strings.TrimSpace(f.Location))
	firmType := strings.ToLower(strings.TrimSpace(f.FirmType))
	title := strings.ToLower(strings.TrimSpace(f.TitlePattern))

	out := make([]scorer.CandidateScore, 0, len(cands))
	for _, cs := range cands {
		c := cs.Connection
		cTitle := strings.ToLower(c.Title)
		cCompany := strings.ToLower(c.Company)

		if industry != "" && !strings.Contains(cTitle, industry) && !strings.Contains(cCompany, industry) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(c.Location), location) {
			continue
		}
		if firmType != "" && !strings.Contains(cCompany, firmType) {
			continue
		}
		if title != "" && !strings.Contains(cTitle, title) {
			continue
		}
		out = append(out, cs)
	}
	return out
}

// SortBy names a suggestion ordering.
type SortBy string

// Orderings. Every ordering ends with the lowercased name.
const (
	SortRelevance SortBy = "relevance" // score, fit
	SortFitScore  SortBy = "fit_score" // fit, score
	SortOverlap   SortBy = "overlap"   // shared investors, fit
	SortLocation  SortBy = "location"  // location ascending, fit
)

// ParseSort maps a user-supplied sort name to a SortBy. Empty means
// relevance.
func ParseSort(s string) (SortBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance", "relevance_score":
		return SortRelevance, nil
	case "fit_score", "fit":
		return SortFitScore, nil
	case "overlap":
		return SortOverlap, nil
	case "location":
		return SortLocation, nil
	default:
		return "", eris.Errorf("recommend: unknown sort %q", s)
	}
}

// Sort orders cands in place.
func Sort(cands []scorer.CandidateScore, by SortBy) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		switch by {
		case SortFitScore:
			if a.Fit.Total != b.Fit.Total {
				return a.Fit.Total > b.Fit.Total
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		case SortOverlap:
			if len(a.SharedInvestors) != len(b.SharedInvestors) {
				return len(a.SharedInvestors) > len(b.SharedInvestors)
			}
			if a.Fit.Total != b.Fit.Total {
				return a.Fit.Total > b.Fit.Total
			}
		case SortLocation:
			la, lb := strings.ToLower(a.Connection.Location), strings.ToLower(b.Connection.Location)
			if la != lb {
				return la < lb
			}
			if a.Fit.Total != b.Fit.Total {
				return a.Fit.Total > b.Fit.Total
			}
		default:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Fit.Total != b.Fit.Total {
				return a.Fit.Total > b.Fit.Total
			}
		}
		na, nb := strings.ToLower(a.Connection.Name), strings.ToLower(b.Connection.Name)
		if na != nb {
			return na < nb
		}
		return a.Key < b.Key
	})
}
