package scorer

// Gate keeps candidates backed by enough independent evidence.
type Gate struct {
	MinCategories int
}

// Pass reports whether the candidate has at least MinCategories distinct
// fired categories.
func (g Gate) Pass(cs CandidateScore) bool {
	return cs.Categories >= g.MinCategories
}

// Apply marks each candidate's gate outcome and returns the passing ones
// in input order.
func (g Gate) Apply(cands []CandidateScore) []CandidateScore {
	var out []CandidateScore
	for i := range cands {
		cands[i].Passed = g.Pass(cands[i])
		if cands[i].Passed {
			out = append(out, cands[i])
		}
	}
	return out
}
