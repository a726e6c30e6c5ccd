// Package config loads and validates configuration for the recommendation core.
package config

// Top-N bounds for suggestion lists.
const (
	MinTopN = 1
	MaxTopN = 200
)

// Default returns a Config populated with the production defaults.
func Default() Config {
	return Config{
		Recommend: DefaultRecommend(),
		Overlap: OverlapConfig{
			Threshold: 2,
			TopN:      20,
		},
		AccessMap: AccessMapConfig{
			BoostPerShare: 1.0,
			MaxEdgeWeight: 0, // uncapped
		},
		Store: StoreConfig{
			Driver:   "sqlite",
			MaxConns: 10,
			MinConns: 2,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// DefaultRecommend returns the default recommendation settings.
func DefaultRecommend() RecommendConfig {
	return RecommendConfig{
		MinSignalCategories:         2,
		FuzzyNameThreshold:          0.88,
		FirmNameSimilarityThreshold: 0.80,
		CompanyNetworkMinInvestors:  2,
		DefaultTopN:                 25,
		Workers:                     4,
		Weights: SignalWeights{
			Industry:         4,
			Location:         3,
			FirmType:         3,
			SimilarFirm:      2,
			TitlePattern:     3,
			CompanyInNetwork: 5,
		},
		Fit: FitConfig{
			LocationRegionFraction: 0.5,
			MaxReasons:             6,
		},
		IndustryKeywords: []string{
			"saas", "software", "fintech", "healthcare", "health", "biotech",
			"medtech", "real estate", "private equity", "venture", "consumer",
			"retail", "energy", "climate", "cleantech", "logistics", "ai",
			"data", "security", "media", "edtech", "insurance", "industrial",
		},
		FirmTypeKeywords: []string{
			"capital", "partners", "ventures", "venture", "equity", "fund",
			"group", "holdings", "investments", "private equity", "vc",
			"venture capital", "growth", "advisors", "advisory",
		},
		TitlePatterns: []string{
			"partner", "principal", "vp", "vice president", "md",
			"managing director", "director", "investor", "associate",
			"analyst", "head of", "managing partner",
		},
	}
}

// ClampTopN bounds n to [MinTopN, MaxTopN]. Non-positive values fall back
// to def.
func ClampTopN(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n < MinTopN {
		return MinTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}
