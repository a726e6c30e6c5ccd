package scorer

import (
	"math"

	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// Candidate is one person seen across investor networks, keyed by
// normalized name.
type Candidate struct {
	Key string `json:"key"`
	// Connection is the first record seen for this person.
	Connection model.Connection `json:"connection"`
	// Variants holds every record merged into this candidate, in input order.
	Variants []model.Connection `json:"-"`
	// SharedInvestors holds the distinct source investor IDs, sorted.
	SharedInvestors []string `json:"shared_investors"`
}

// CandidateScore is a scored, merged candidate.
type CandidateScore struct {
	Candidate
	Signals    []SignalResult `json:"signals"`
	Score      float64        `json:"score"`
	Categories int            `json:"categories"`
	Passed     bool           `json:"passed"`
	Fit        FitScore       `json:"fit"`
}

// Signal returns the result for a category.
func (cs CandidateScore) Signal(cat Category) SignalResult {
	for _, s := range cs.Signals {
		if s.Category == cat {
			return s
		}
	}
	return SignalResult{Category: cat}
}

// FiredCategories returns the fired categories in reporting order.
func (cs CandidateScore) FiredCategories() []Category {
	var out []Category
	for _, s := range cs.Signals {
		if s.Fired {
			out = append(out, s.Category)
		}
	}
	return out
}

// Reasons returns every signal reason in category order.
func (cs CandidateScore) Reasons() []string {
	var out []string
	for _, s := range cs.Signals {
		out = append(out, s.Reasons...)
	}
	return out
}

// Merge folds per-connection signal results into one CandidateScore per
// normalized name. Signals are unioned with the maximum weight per
// category, except firm_type, whose keyword and similar-firm parts are
// taken separately and summed. Connections whose name normalizes to nothing are skipped.
// Output follows first appearance in conns.
func Merge(conns []model.Connection, results [][]SignalResult) []CandidateScore {
	index := make(map[string]int)
	investors := make([]map[string]struct{}, 0)
	var out []CandidateScore

	for i, c := range conns {
		key := normalize.Name(c.Name)
		if key == "" || i >= len(results) {
			continue
		}

		idx, ok := index[key]
		if !ok {
			idx = len(out)
			index[key] = idx
			out = append(out, CandidateScore{
				Candidate: Candidate{Key: key, Connection: c},
				Signals:   cloneSignals(results[i]),
			})
			investors = append(investors, make(map[string]struct{}))
		} else {
			out[idx].Signals = mergeSignals(out[idx].Signals, results[i])
		}

		out[idx].Variants = append(out[idx].Variants, c)
		if c.InvestorID != "" {
			investors[idx][c.InvestorID] = struct{}{}
		}
	}

	for i := range out {
		out[i].SharedInvestors = keys(investors[i])
		out[i].Score, out[i].Categories = tally(out[i].Signals)
	}
	return out
}

// tally returns the raw score (sum of fired weights) and the distinct fired
// category count.
func tally(signals []SignalResult) (float64, int) {
	var score float64
	var n int
	for _, s := range signals {
		if !s.Fired {
			continue
		}
		score += s.Weight
		n++
	}
	return score, n
}

func cloneSignals(in []SignalResult) []SignalResult {
	out := make([]SignalResult, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Reasons = append([]string(nil), s.Reasons...)
		out[i].Matches = append([]string(nil), s.Matches...)
		out[i].SimilarFirms = append([]string(nil), s.SimilarFirms...)
	}
	return out
}

func mergeSignals(dst, src []SignalResult) []SignalResult {
	for i := range dst {
		if i >= len(src) {
			break
		}
		s := src[i]
		d := &dst[i]
		d.Fired = d.Fired || s.Fired
		d.keywordWeight = math.Max(d.keywordWeight, s.keywordWeight)
		d.similarWeight = math.Max(d.similarWeight, s.similarWeight)
		d.Weight = math.Max(math.Max(d.Weight, s.Weight), d.keywordWeight+d.similarWeight)
		if s.Count > d.Count {
			d.Count = s.Count
		}
		d.Reasons = appendUnique(d.Reasons, s.Reasons...)
		d.Matches = unionSorted(d.Matches, s.Matches)
		d.SimilarFirms = unionSorted(d.SimilarFirms, s.SimilarFirms)
	}
	return dst
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, d := range dst {
			if d == it {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, it)
		}
	}
	return dst
}

func unionSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	return keys(set)
}
