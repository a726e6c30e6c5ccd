// Package recommend runs the suggestion pipeline for one company:
// sanitize, profile, score, merge, gate, dedup, fit, then rank.
package recommend

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/resolve"
	"github.com/etomlinson-dev/KYI/internal/scorer"
)

// Options controls ranking of a single run.
type Options struct {
	TopN   int    // clamped to [1,200]; 0 uses the configured default
	Sort   string // see SortBy
	Filter Filter
}

// Excluded is a gated candidate removed because it is already an investor.
type Excluded struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	resolve.Exclusion
}

// Stats counts candidates at each stage.
type Stats struct {
	Candidates int `json:"candidates"`
	Gated      int `json:"gated"`
	Excluded   int `json:"excluded"`
	Filtered   int `json:"filtered"`
	Returned   int `json:"returned"`
}

// Result is the output of Run.
type Result struct {
	CompanyID   string                  `json:"company_id"`
	Suggestions []scorer.CandidateScore `json:"suggestions"`
	Excluded    []Excluded              `json:"excluded,omitempty"`
	Report      model.IngestReport      `json:"report"`
	Stats       Stats                   `json:"stats"`
}

// Recommender produces suggested investors.
type Recommender struct {
	cfg      config.RecommendConfig
	matchers []resolve.Matcher
}

// New validates cfg and creates a Recommender with the default matcher
// cascade.
func New(cfg config.RecommendConfig) (*Recommender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "recommend: invalid config")
	}
	return &Recommender{
		cfg:      cfg,
		matchers: resolve.DefaultMatchers(cfg.FuzzyNameThreshold),
	}, nil
}

// WithMatchers replaces the dedup cascade.
func (r *Recommender) WithMatchers(matchers ...resolve.Matcher) *Recommender {
	r.matchers = matchers
	return r
}

// Run computes suggestions for one company. It is a pure function of its
// inputs and the Recommender's configuration.
func (r *Recommender) Run(ctx context.Context, companyID string, networks []model.InvestorNetwork, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("company_id", companyID))

	clean, report := model.Sanitize(networks)
	if report.SkippedRecords > 0 || report.DroppedNetworks > 0 {
		log.Warn("recommend: dropped malformed records",
			zap.Int("skipped_records", report.SkippedRecords),
			zap.Int("dropped_networks", report.DroppedNetworks),
		)
	}

	sortBy, err := ParseSort(opts.Sort)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: parse sort")
	}

	profile := scorer.BuildProfile(clean, r.cfg)

	var conns []model.Connection
	investors := make([]model.Investor, 0, len(clean))
	for _, n := range clean {
		investors = append(investors, n.Investor)
		conns = append(conns, n.Connections...)
	}

	results, err := scorer.NewScorer(profile, r.cfg).ScoreAll(ctx, conns)
	if err != nil {
		return nil, eris.Wrapf(err, "recommend: score company %s", companyID)
	}

	merged := scorer.Merge(conns, results)
	gated := scorer.Gate{MinCategories: r.cfg.MinSignalCategories}.Apply(merged)

	dedup := resolve.NewDeduplicator(investors, r.matchers)
	fit := scorer.NewFitCalculator(profile, r.cfg)

	res := &Result{CompanyID: companyID, Report: report}
	kept := make([]scorer.CandidateScore, 0, len(gated))
	for _, cs := range gated {
		if ex, ok := checkVariants(dedup, cs); ok {
			res.Excluded = append(res.Excluded, Excluded{Key: cs.Key, Name: cs.Connection.Name, Exclusion: ex})
			continue
		}
		cs.Fit = fit.Compute(cs)
		kept = append(kept, cs)
	}

	filtered := opts.Filter.Apply(kept)
	filteredOut := len(kept) - len(filtered)
	Sort(filtered, sortBy)

	topN := config.ClampTopN(opts.TopN, r.cfg.DefaultTopN)
	if len(filtered) > topN {
		filtered = filtered[:topN]
	}
	res.Suggestions = filtered

	res.Stats = Stats{
		Candidates: len(merged),
		Gated:      len(gated),
		Excluded:   len(res.Excluded),
		Filtered:   filteredOut,
		Returned:   len(res.Suggestions),
	}

	log.Info("recommend: suggestions computed",
		zap.Int("investors", report.Investors),
		zap.Int("connections", report.Connections),
		zap.Int("candidates", res.Stats.Candidates),
		zap.Int("gated", res.Stats.Gated),
		zap.Int("excluded", res.Stats.Excluded),
		zap.Int("returned", res.Stats.Returned),
	)

	return res, nil
}

// checkVariants excludes a merged candidate when any of its records
// matches an investor.
func checkVariants(d *resolve.Deduplicator, cs scorer.CandidateScore) (resolve.Exclusion, bool) {
	variants := cs.Variants
	if len(variants) == 0 {
		variants = []model.Connection{cs.Connection}
	}
	for _, v := range variants {
		if ex, ok := d.Check(v); ok {
			return ex, true
		}
	}
	return resolve.Exclusion{}, false
}
