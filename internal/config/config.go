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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Portal    PortalConfig    `yaml:"portal" mapstructure:"portal"`
	News      NewsConfig      `yaml:"news" mapstructure:"news"`
	Collector CollectorConfig `yaml:"collector" mapstructure:"collector"`
	Detail    DetailConfig    `yaml:"detail" mapstructure:"detail"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the canonical record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// HTTPConfig configures the shared HTTP fetcher.
type HTTPConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PortalConfig configures the DSIP topics portal endpoints.
type PortalConfig struct {
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	WarmupDelayMS     int    `yaml:"warmup_delay_ms" mapstructure:"warmup_delay_ms"`
	PostWarmupDelayMS int    `yaml:"post_warmup_delay_ms" mapstructure:"post_warmup_delay_ms"`
	SearchTimeoutSecs int    `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	DetailTimeoutSecs int    `yaml:"detail_timeout_secs" mapstructure:"detail_timeout_secs"`
}

// NewsConfig configures the defense.gov contract announcements source.
type NewsConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	ListingPath  string `yaml:"listing_path" mapstructure:"listing_path"`
	ArticleLimit int    `yaml:"article_limit" mapstructure:"article_limit"`
	DelayMS      int    `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// CollectorConfig holds default pagination stop-policy thresholds.
// Per-portal overrides may be layered on top via PolicyFile.
type CollectorConfig struct {
	PageSize                 int    `yaml:"page_size" mapstructure:"page_size"`
	MaxPages                 int    `yaml:"max_pages" mapstructure:"max_pages"`
	MaxConsecutiveEmptyPages int    `yaml:"max_consecutive_empty_pages" mapstructure:"max_consecutive_empty_pages"`
	QuickEmptyPageThreshold  int    `yaml:"quick_empty_page_threshold" mapstructure:"quick_empty_page_threshold"`
	PageDelayMS              int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	PolicyFile               string `yaml:"policy_file" mapstructure:"policy_file"`
}

// DetailConfig configures the detail-fetch stage.
type DetailConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	DelayMS     int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// ScheduleConfig holds cron specs for scheduled scraper runs.
type ScheduleConfig struct {
	TopicsSpec string `yaml:"topics_spec" mapstructure:"topics_spec"`
	NewsSpec   string `yaml:"news_spec" mapstructure:"news_spec"`
}

// ServerConfig configures the operator trigger API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("OPPINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "oppintel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("portal.base_url", "https://www.dodsbirsttr.mil")
	v.SetDefault("portal.warmup_delay_ms", 1000)
	v.SetDefault("portal.post_warmup_delay_ms", 3000)
	v.SetDefault("portal.search_timeout_secs", 120)
	v.SetDefault("portal.detail_timeout_secs", 20)
	v.SetDefault("news.base_url", "https://www.defense.gov")
	v.SetDefault("news.listing_path", "/News/Contracts/")
	v.SetDefault("news.article_limit", 10)
	v.SetDefault("news.delay_ms", 2000)
	v.SetDefault("collector.page_size", 100)
	v.SetDefault("collector.max_pages", 500)
	v.SetDefault("collector.max_consecutive_empty_pages", 10)
	v.SetDefault("collector.quick_empty_page_threshold", 50)
	v.SetDefault("collector.page_delay_ms", 200)
	v.SetDefault("detail.concurrency", 1)
	v.SetDefault("detail.delay_ms", 200)
	v.SetDefault("schedule.topics_spec", "0 6 * * *")
	v.SetDefault("schedule.news_spec", "30 6 * * *")

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
