package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the sections required by the given CLI mode.
// Valid modes: "suggest", "overlap", "accessmap".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "suggest":
		errs = append(errs, c.Recommend.problems()...)
	case "overlap":
		errs = append(errs, c.Overlap.problems()...)
	case "accessmap":
		errs = append(errs, c.AccessMap.problems()...)
		errs = append(errs, c.Store.problems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s validation failed: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// Validate rejects out-of-range recommendation settings.
func (r RecommendConfig) Validate() error {
	if errs := r.problems(); len(errs) > 0 {
		return eris.Errorf("config: recommend validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (r RecommendConfig) problems() []string {
	var errs []string
	if r.MinSignalCategories < 1 || r.MinSignalCategories > 5 {
		errs = append(errs, "recommend.min_signal_categories must be between 1 and 5")
	}
	if r.FuzzyNameThreshold < 0 || r.FuzzyNameThreshold > 1 {
		errs = append(errs, "recommend.fuzzy_name_threshold must be between 0 and 1")
	}
	if r.FirmNameSimilarityThreshold < 0 || r.FirmNameSimilarityThreshold > 1 {
		errs = append(errs, "recommend.firm_name_similarity_threshold must be between 0 and 1")
	}
	if r.CompanyNetworkMinInvestors < 1 {
		errs = append(errs, "recommend.company_network_min_investors must be >= 1")
	}
	if r.Workers < 1 {
		errs = append(errs, "recommend.workers must be >= 1")
	}
	w := r.Weights
	for name, v := range map[string]float64{
		"industry":           w.Industry,
		"location":           w.Location,
		"firm_type":          w.FirmType,
		"similar_firm":       w.SimilarFirm,
		"title_pattern":      w.TitlePattern,
		"company_in_network": w.CompanyInNetwork,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("recommend.weights.%s must be >= 0", name))
		}
	}
	if r.Fit.LocationRegionFraction < 0 || r.Fit.LocationRegionFraction > 1 {
		errs = append(errs, "recommend.fit.location_region_fraction must be between 0 and 1")
	}
	if r.Fit.MaxReasons < 0 {
		errs = append(errs, "recommend.fit.max_reasons must be >= 0")
	}
	// Map iteration order is random; keep messages stable.
	sort.Strings(errs)
	return errs
}

// Validate rejects an overlap threshold below 2.
func (o OverlapConfig) Validate() error {
	if errs := o.problems(); len(errs) > 0 {
		return eris.Errorf("config: overlap validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (o OverlapConfig) problems() []string {
	var errs []string
	if o.Threshold < 2 {
		errs = append(errs, "overlap.threshold must be >= 2")
	}
	if o.TopN < 0 {
		errs = append(errs, "overlap.top_n must be >= 0")
	}
	return errs
}

// Validate rejects a negative boost or a cap between 0 and 1.
func (a AccessMapConfig) Validate() error {
	if errs := a.problems(); len(errs) > 0 {
		return eris.Errorf("config: access_map validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (a AccessMapConfig) problems() []string {
	var errs []string
	if a.BoostPerShare < 0 {
		errs = append(errs, "access_map.boost_per_share must be >= 0")
	}
	if a.MaxEdgeWeight < 0 || (a.MaxEdgeWeight > 0 && a.MaxEdgeWeight < 1) {
		errs = append(errs, "access_map.max_edge_weight must be 0 (uncapped) or >= 1")
	}
	return errs
}

func (s StoreConfig) problems() []string {
	var errs []string
	switch s.Driver {
	case "", "sqlite":
	case "postgres":
		if s.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", s.Driver))
	}
	if s.MinConns < 0 || s.MaxConns < 0 {
		errs = append(errs, "store pool sizes must be >= 0")
	} else if s.MaxConns > 0 && s.MinConns > s.MaxConns {
		errs = append(errs, "store.min_conns must be <= store.max_conns")
	}
	return errs
}
