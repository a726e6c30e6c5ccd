package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Recommend RecommendConfig `yaml:"recommend" mapstructure:"recommend"`
	Overlap   OverlapConfig   `yaml:"overlap" mapstructure:"overlap"`
	AccessMap AccessMapConfig `yaml:"access_map" mapstructure:"access_map"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RecommendConfig configures signal scoring, gating, dedup and fit scoring.
type RecommendConfig struct {
	MinSignalCategories         int           `yaml:"min_signal_categories" mapstructure:"min_signal_categories"`
	FuzzyNameThreshold          float64       `yaml:"fuzzy_name_threshold" mapstructure:"fuzzy_name_threshold"`
	FirmNameSimilarityThreshold float64       `yaml:"firm_name_similarity_threshold" mapstructure:"firm_name_similarity_threshold"`
	CompanyNetworkMinInvestors  int           `yaml:"company_network_min_investors" mapstructure:"company_network_min_investors"`
	DefaultTopN                 int           `yaml:"default_top_n" mapstructure:"default_top_n"`
	Workers                     int           `yaml:"workers" mapstructure:"workers"`
	Weights                     SignalWeights `yaml:"weights" mapstructure:"weights"`
	Fit                         FitConfig     `yaml:"fit" mapstructure:"fit"`

	// Keyword vocabularies.
	IndustryKeywords []string `yaml:"industry_keywords" mapstructure:"industry_keywords"`
	FirmTypeKeywords []string `yaml:"firm_type_keywords" mapstructure:"firm_type_keywords"`
	TitlePatterns    []string `yaml:"title_patterns" mapstructure:"title_patterns"`
}

// SignalWeights holds the score contributed by each fired signal category.
type SignalWeights struct {
	Industry         float64 `yaml:"industry" mapstructure:"industry"`
	Location         float64 `yaml:"location" mapstructure:"location"`
	FirmType         float64 `yaml:"firm_type" mapstructure:"firm_type"`
	SimilarFirm      float64 `yaml:"similar_firm" mapstructure:"similar_firm"`
	TitlePattern     float64 `yaml:"title_pattern" mapstructure:"title_pattern"`
	CompanyInNetwork float64 `yaml:"company_in_network" mapstructure:"company_in_network"`
}

// FitConfig tunes the fit score dimensions.
type FitConfig struct {
	LocationRegionFraction float64 `yaml:"location_region_fraction" mapstructure:"location_region_fraction"`
	MaxReasons             int     `yaml:"max_reasons" mapstructure:"max_reasons"`
}

// OverlapConfig configures overlap intelligence.
type OverlapConfig struct {
	Threshold int `yaml:"threshold" mapstructure:"threshold"`
	TopN      int `yaml:"top_n" mapstructure:"top_n"`
}

// AccessMapConfig configures access map edge weighting.
type AccessMapConfig struct {
	BoostPerShare float64 `yaml:"boost_per_share" mapstructure:"boost_per_share"`
	MaxEdgeWeight float64 `yaml:"max_edge_weight" mapstructure:"max_edge_weight"`
}

// StoreConfig configures the optional persistence backend. For sqlite,
// DatabaseURL is a file path and defaults to kyi.db.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KYI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.max_conns", d.Store.MaxConns)
	v.SetDefault("store.min_conns", d.Store.MinConns)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("recommend.min_signal_categories", d.Recommend.MinSignalCategories)
	v.SetDefault("recommend.fuzzy_name_threshold", d.Recommend.FuzzyNameThreshold)
	v.SetDefault("recommend.firm_name_similarity_threshold", d.Recommend.FirmNameSimilarityThreshold)
	v.SetDefault("recommend.company_network_min_investors", d.Recommend.CompanyNetworkMinInvestors)
	v.SetDefault("recommend.default_top_n", d.Recommend.DefaultTopN)
	v.SetDefault("recommend.workers", d.Recommend.Workers)
	v.SetDefault("recommend.weights.industry", d.Recommend.Weights.Industry)
	v.SetDefault("recommend.weights.location", d.Recommend.Weights.Location)
	v.SetDefault("recommend.weights.firm_type", d.Recommend.Weights.FirmType)
	v.SetDefault("recommend.weights.similar_firm", d.Recommend.Weights.SimilarFirm)
	v.SetDefault("recommend.weights.title_pattern", d.Recommend.Weights.TitlePattern)
	v.SetDefault("recommend.weights.company_in_network", d.Recommend.Weights.CompanyInNetwork)
	v.SetDefault("recommend.fit.location_region_fraction", d.Recommend.Fit.LocationRegionFraction)
	v.SetDefault("recommend.fit.max_reasons", d.Recommend.Fit.MaxReasons)
	v.SetDefault("recommend.industry_keywords", d.Recommend.IndustryKeywords)
	v.SetDefault("recommend.firm_type_keywords", d.Recommend.FirmTypeKeywords)
	v.SetDefault("recommend.title_patterns", d.Recommend.TitlePatterns)

	v.SetDefault("overlap.threshold", d.Overlap.Threshold)
	v.SetDefault("overlap.top_n", d.Overlap.TopN)

	v.SetDefault("access_map.boost_per_share", d.AccessMap.BoostPerShare)
	v.SetDefault("access_map.max_edge_weight", d.AccessMap.MaxEdgeWeight)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
