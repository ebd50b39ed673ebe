package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Markets    MarketsConfig    `yaml:"markets" mapstructure:"markets"`
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Run        RunConfig        `yaml:"run" mapstructure:"run"`
	Provenance ProvenanceConfig `yaml:"provenance" mapstructure:"provenance"`
	SPAN       SPANConfig       `yaml:"span" mapstructure:"span"`
	Decision   DecisionConfig   `yaml:"decision" mapstructure:"decision"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MarketsConfig locates the static per-market configuration file.
type MarketsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DataConfig locates the data-access fixture and the precomputed insight pack.
type DataConfig struct {
	FixturePath  string `yaml:"fixture_path" mapstructure:"fixture_path"`
	InsightsPath string `yaml:"insights_path" mapstructure:"insights_path"`
}

// RunConfig configures run defaults.
type RunConfig struct {
	LookbackQuarters int `yaml:"lookback_quarters" mapstructure:"lookback_quarters"`
}

// ProvenanceConfig configures ledger enrichment.
type ProvenanceConfig struct {
	// MediumSourceThreshold is the number of unique external sources a run
	// must find before unsourced values are upgraded to medium confidence.
	MediumSourceThreshold int `yaml:"medium_source_threshold" mapstructure:"medium_source_threshold"`
}

// SPANConfig holds the SPAN matrix weights and quadrant threshold.
type SPANConfig struct {
	SizeWeight      float64 `yaml:"size_weight" mapstructure:"size_weight"`
	GrowthWeight    float64 `yaml:"growth_weight" mapstructure:"growth_weight"`
	ProfitWeight    float64 `yaml:"profit_weight" mapstructure:"profit_weight"`
	StrategicWeight float64 `yaml:"strategic_weight" mapstructure:"strategic_weight"`

	ShareWeight float64 `yaml:"share_weight" mapstructure:"share_weight"`
	FitWeight   float64 `yaml:"fit_weight" mapstructure:"fit_weight"`
	BrandWeight float64 `yaml:"brand_weight" mapstructure:"brand_weight"`
	TechWeight  float64 `yaml:"tech_weight" mapstructure:"tech_weight"`

	Threshold               float64 `yaml:"threshold" mapstructure:"threshold"`
	MaxCompetitorWeaknesses int     `yaml:"max_competitor_weaknesses" mapstructure:"max_competitor_weaknesses"`
}

// DecisionConfig configures the decision engine.
type DecisionConfig struct {
	MaxTasks       int     `yaml:"max_tasks" mapstructure:"max_tasks"`
	EBITDAFloorPct float64 `yaml:"ebitda_floor_pct" mapstructure:"ebitda_floor_pct"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STRATEGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "strategy.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("markets.path", "markets.yaml")
	v.SetDefault("data.fixture_path", "data.json")
	v.SetDefault("data.insights_path", "insights.json")
	v.SetDefault("run.lookback_quarters", 8)
	v.SetDefault("provenance.medium_source_threshold", 3)
	v.SetDefault("span.size_weight", 0.30)
	v.SetDefault("span.growth_weight", 0.25)
	v.SetDefault("span.profit_weight", 0.25)
	v.SetDefault("span.strategic_weight", 0.20)
	v.SetDefault("span.share_weight", 0.25)
	v.SetDefault("span.fit_weight", 0.25)
	v.SetDefault("span.brand_weight", 0.25)
	v.SetDefault("span.tech_weight", 0.25)
	v.SetDefault("span.threshold", 5.0)
	v.SetDefault("span.max_competitor_weaknesses", 2)
	v.SetDefault("decision.max_tasks", 8)
	v.SetDefault("decision.ebitda_floor_pct", 30.0)

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

// Validate checks the fields a command needs. mode is one of "assess",
// "store", "serve" or "export".
func (c *Config) Validate(mode string) error {
	var errs []string

	requireStore := func() {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres (got %q)", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	switch mode {
	case "assess":
		if c.Markets.Path == "" {
			errs = append(errs, "markets.path is required")
		}
		if c.Data.FixturePath == "" {
			errs = append(errs, "data.fixture_path is required")
		}
		if c.Data.InsightsPath == "" {
			errs = append(errs, "data.insights_path is required")
		}
		if c.Run.LookbackQuarters < 1 || c.Run.LookbackQuarters > 40 {
			errs = append(errs, "run.lookback_quarters must be between 1 and 40")
		}
		if c.Provenance.MediumSourceThreshold < 1 {
			errs = append(errs, "provenance.medium_source_threshold must be >= 1")
		}
		if c.Decision.MaxTasks < 1 || c.Decision.MaxTasks > 8 {
			errs = append(errs, "decision.max_tasks must be between 1 and 8")
		}
	case "store", "export":
		requireStore()
	case "serve":
		requireStore()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			errs = append(errs, "server.rate_limit must be > 0")
		}
		if c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
