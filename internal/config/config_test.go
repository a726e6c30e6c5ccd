package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Recommend.MinSignalCategories)
	assert.InDelta(t, 0.88, cfg.Recommend.FuzzyNameThreshold, 0.001)
	assert.InDelta(t, 0.80, cfg.Recommend.FirmNameSimilarityThreshold, 0.001)
	assert.Equal(t, 2, cfg.Recommend.CompanyNetworkMinInvestors)
	assert.Equal(t, 25, cfg.Recommend.DefaultTopN)
	assert.Equal(t, 4, cfg.Recommend.Workers)
	assert.InDelta(t, 4.0, cfg.Recommend.Weights.Industry, 0.001)
	assert.InDelta(t, 3.0, cfg.Recommend.Weights.Location, 0.001)
	assert.InDelta(t, 3.0, cfg.Recommend.Weights.FirmType, 0.001)
	assert.InDelta(t, 2.0, cfg.Recommend.Weights.SimilarFirm, 0.001)
	assert.InDelta(t, 3.0, cfg.Recommend.Weights.TitlePattern, 0.001)
	assert.InDelta(t, 5.0, cfg.Recommend.Weights.CompanyInNetwork, 0.001)
	assert.InDelta(t, 0.5, cfg.Recommend.Fit.LocationRegionFraction, 0.001)
	assert.Equal(t, 6, cfg.Recommend.Fit.MaxReasons)
	assert.Contains(t, cfg.Recommend.FirmTypeKeywords, "ventures")
	assert.Contains(t, cfg.Recommend.TitlePatterns, "managing director")
	assert.Contains(t, cfg.Recommend.IndustryKeywords, "saas")
	assert.Equal(t, 2, cfg.Overlap.Threshold)
	assert.Equal(t, 20, cfg.Overlap.TopN)
	assert.InDelta(t, 1.0, cfg.AccessMap.BoostPerShare, 0.001)
	assert.InDelta(t, 0.0, cfg.AccessMap.MaxEdgeWeight, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/kyi
log:
  level: debug
  format: console
recommend:
  min_signal_categories: 3
  weights:
    industry: 6
overlap:
  threshold: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/kyi", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Recommend.MinSignalCategories)
	assert.InDelta(t, 6.0, cfg.Recommend.Weights.Industry, 0.001)
	assert.Equal(t, 3, cfg.Overlap.Threshold)
	// Defaults still apply for unset values
	assert.InDelta(t, 5.0, cfg.Recommend.Weights.CompanyInNetwork, 0.001)
	assert.Equal(t, 4, cfg.Recommend.Workers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("KYI_STORE_DRIVER", "sqlite")
	t.Setenv("KYI_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("KYI_RECOMMEND_WORKERS", "8")
	t.Setenv("KYI_OVERLAP_THRESHOLD", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Recommend.Workers)
	assert.Equal(t, 4, cfg.Overlap.Threshold)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("recommend: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Recommend.Validate())
	assert.NoError(t, cfg.Overlap.Validate())
	assert.NoError(t, cfg.AccessMap.Validate())
	assert.NoError(t, cfg.Validate("suggest"))
	assert.NoError(t, cfg.Validate("overlap"))
	assert.NoError(t, cfg.Validate("accessmap"))
}

func TestRecommendValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecommendConfig)
		want   string
	}{
		{"min categories zero", func(r *RecommendConfig) { r.MinSignalCategories = 0 }, "min_signal_categories must be between 1 and 5"},
		{"min categories six", func(r *RecommendConfig) { r.MinSignalCategories = 6 }, "min_signal_categories must be between 1 and 5"},
		{"fuzzy above one", func(r *RecommendConfig) { r.FuzzyNameThreshold = 1.1 }, "fuzzy_name_threshold"},
		{"firm similarity negative", func(r *RecommendConfig) { r.FirmNameSimilarityThreshold = -0.1 }, "firm_name_similarity_threshold"},
		{"negative weight", func(r *RecommendConfig) { r.Weights.Location = -1 }, "recommend.weights.location must be >= 0"},
		{"no workers", func(r *RecommendConfig) { r.Workers = 0 }, "workers must be >= 1"},
		{"region fraction", func(r *RecommendConfig) { r.Fit.LocationRegionFraction = 2 }, "location_region_fraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRecommend()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "config: recommend validation failed")
		})
	}
}

func TestRecommendValidate_Boundaries(t *testing.T) {
	r := DefaultRecommend()
	r.MinSignalCategories = 1
	r.FuzzyNameThreshold = 1
	r.FirmNameSimilarityThreshold = 0
	assert.NoError(t, r.Validate())

	r.MinSignalCategories = 5
	assert.NoError(t, r.Validate())
}

func TestRecommendValidate_CollectsAll(t *testing.T) {
	r := DefaultRecommend()
	r.MinSignalCategories = 0
	r.Weights.Industry = -1
	r.Weights.TitlePattern = -1

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_signal_categories")
	assert.Contains(t, err.Error(), "weights.industry")
	assert.Contains(t, err.Error(), "weights.title_pattern")
}

func TestOverlapValidate(t *testing.T) {
	assert.NoError(t, OverlapConfig{Threshold: 2}.Validate())
	assert.NoError(t, OverlapConfig{Threshold: 5, TopN: 10}.Validate())

	err := OverlapConfig{Threshold: 1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap.threshold must be >= 2")
}

func TestAccessMapValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AccessMapConfig
		wantErr bool
	}{
		{"defaults", AccessMapConfig{BoostPerShare: 1}, false},
		{"zero boost", AccessMapConfig{BoostPerShare: 0}, false},
		{"cap of one", AccessMapConfig{BoostPerShare: 1, MaxEdgeWeight: 1}, false},
		{"negative boost", AccessMapConfig{BoostPerShare: -0.5}, true},
		{"cap below one", AccessMapConfig{BoostPerShare: 1, MaxEdgeWeight: 0.5}, true},
		{"negative cap", AccessMapConfig{BoostPerShare: 1, MaxEdgeWeight: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAccessMap_Store(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("accessmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required for postgres")

	cfg.Store.DatabaseURL = "postgres://localhost/kyi"
	assert.NoError(t, cfg.Validate("accessmap"))

	cfg.Store.Driver = "mysql"
	err = cfg.Validate("accessmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql" is not supported`)
}

func TestValidateAccessMap_StorePool(t *testing.T) {
	cfg := Default()
	cfg.Store.MinConns = 20

	err := cfg.Validate("accessmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.min_conns must be <= store.max_conns")

	cfg.Store.MinConns = -1
	err = cfg.Validate("accessmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store pool sizes must be >= 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := Default()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestClampTopN(t *testing.T) {
	tests := []struct {
		n, def, want int
	}{
		{0, 25, 25},
		{-3, 25, 25},
		{10, 25, 10},
		{1, 25, 1},
		{200, 25, 200},
		{500, 25, 200},
		{0, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampTopN(tt.n, tt.def), "n=%d def=%d", tt.n, tt.def)
	}
}
