// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/server/ratelimit"
)

// DefaultConfigName is the file (without extension) searched in the working directory.
const DefaultConfigName = "outreach"

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full runtime configuration.
type Config struct {
	Scan      ScanConfig        `yaml:"scan" mapstructure:"scan"`
	Directory DirectoryConfig   `yaml:"directory" mapstructure:"directory"`
	Fetch     FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Gemini    GeminiConfig      `yaml:"gemini" mapstructure:"gemini"`
	Search    SearchConfig      `yaml:"search" mapstructure:"search"`
	Store     StoreConfig       `yaml:"store" mapstructure:"store"`
	Redis     RedisConfig       `yaml:"redis" mapstructure:"redis"`
	SMTP      mailer.SMTPConfig `yaml:"smtp" mapstructure:"smtp"`
	Sender    SenderConfig      `yaml:"sender" mapstructure:"sender"`
	Server    ServerConfig      `yaml:"server" mapstructure:"server"`
	Log       LogConfig         `yaml:"log" mapstructure:"log"`
}

// ScanConfig configures a scan run.
type ScanConfig struct {
	Limit         int      `yaml:"limit" mapstructure:"limit"`
	PaceSecs      int      `yaml:"pace_secs" mapstructure:"pace_secs"`
	Seed          int64    `yaml:"seed" mapstructure:"seed"`
	FreshnessDays int      `yaml:"freshness_days" mapstructure:"freshness_days"`
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`
}

// Pace returns the pause between persisted companies.
func (s ScanConfig) Pace() time.Duration {
	return time.Duration(s.PaceSecs) * time.Second
}

// FreshnessWindow returns how long a scanned record stays fresh.
func (s ScanConfig) FreshnessWindow() time.Duration {
	return time.Duration(s.FreshnessDays) * 24 * time.Hour
}

// DirectoryConfig configures the startup directory source.
type DirectoryConfig struct {
	Origin         string   `yaml:"origin" mapstructure:"origin"`
	CategorySample int      `yaml:"category_sample" mapstructure:"category_sample"`
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
	BlockedHosts   []string `yaml:"blocked_hosts" mapstructure:"blocked_hosts"`
}

// FetchConfig configures HTTP fetching.
type FetchConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	UseBrowser        bool    `yaml:"use_browser" mapstructure:"use_browser"`
}

// GeminiConfig configures the generative capability.
type GeminiConfig struct {
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	LiteModel     string  `yaml:"lite_model" mapstructure:"lite_model"`
	StandardModel string  `yaml:"standard_model" mapstructure:"standard_model"`
	AdvancedModel string  `yaml:"advanced_model" mapstructure:"advanced_model"`
	Temperature   float32 `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig configures the Custom Search fallback for founder names.
type SearchConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	CX     string `yaml:"cx" mapstructure:"cx"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// RedisConfig configures the optional cross-run domain claim.
type RedisConfig struct {
	URL          string `yaml:"url" mapstructure:"url"`
	ClaimTTLSecs int    `yaml:"claim_ttl_secs" mapstructure:"claim_ttl_secs"`
}

// SenderConfig is the signature block of outreach drafts.
type SenderConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Title       string `yaml:"title" mapstructure:"title"`
	CalendarURL string `yaml:"calendar_url" mapstructure:"calendar_url"`
	GitHub      string `yaml:"github" mapstructure:"github"`
	LinkedIn    string `yaml:"linkedin" mapstructure:"linkedin"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int                `yaml:"port" mapstructure:"port"`
	RateLimit ratelimit.Settings `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases binds the unprefixed variable names used by existing deployments.
var envAliases = map[string][]string{
	"gemini.api_key":     {"OUTREACH_GEMINI_API_KEY", "GEMINI_API_KEY"},
	"search.api_key":     {"OUTREACH_SEARCH_API_KEY", "GOOGLE_SEARCH_API_KEY"},
	"search.cx":          {"OUTREACH_SEARCH_CX", "GOOGLE_SEARCH_CX"},
	"store.database_url": {"OUTREACH_STORE_DATABASE_URL", "DATABASE_URL"},
	"redis.url":          {"OUTREACH_REDIS_URL", "REDIS_URL"},
	"smtp.host":          {"OUTREACH_SMTP_HOST", "SMTP_HOST"},
	"smtp.port":          {"OUTREACH_SMTP_PORT", "SMTP_PORT"},
	"smtp.user":          {"OUTREACH_SMTP_USER", "SMTP_USER"},
	"smtp.pass":          {"OUTREACH_SMTP_PASS", "SMTP_PASS"},
	"smtp.from":          {"OUTREACH_SMTP_FROM", "SMTP_FROM"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.limit", 5)
	v.SetDefault("scan.pace_secs", 5)
	v.SetDefault("scan.seed", 0)
	v.SetDefault("scan.freshness_days", 30)
	v.SetDefault("scan.keywords", []string{
		"product engineer", "frontend", "design engineer", "software engineer",
		"developer", "full stack", "web", "react", "typescript",
	})
	v.SetDefault("directory.origin", "https://startups.gallery")
	v.SetDefault("directory.category_sample", 3)
	v.SetDefault("directory.concurrency", 4)
	v.SetDefault("directory.blocked_hosts", []string{"twitter", "linkedin", "facebook"})
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.use_browser", false)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.lite_model", "gemini-2.0-flash-lite")
	v.SetDefault("gemini.standard_model", "gemini-2.0-flash")
	v.SetDefault("gemini.advanced_model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.cx", "")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "outreach.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.claim_ttl_secs", 600)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("sender.name", "Meshach")
	v.SetDefault("sender.title", "Product Engineer and designer")
	v.SetDefault("sender.calendar_url", "https://cal.com/meshach-nsude")
	v.SetDefault("sender.github", "github.com/Nsude")
	v.SetDefault("sender.linkedin", "linkedin.com/in/nsude-meshach")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.limit", ratelimit.DefaultLimit)
	v.SetDefault("server.rate_limit.window_secs", int(ratelimit.DefaultWindow.Seconds()))
	v.SetDefault("server.rate_limit.scan_per_hour", ratelimit.DefaultScanLimit)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from defaults, an optional config file and the
// environment. path selects an explicit file; when empty, outreach.yaml in the
// working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Scan.Limit < 1 {
		return fmt.Errorf("config error: 'scan.limit' must be at least 1")
	}
	if c.Scan.PaceSecs < 0 {
		return fmt.Errorf("config error: 'scan.pace_secs' must be non-negative")
	}
	if c.Scan.FreshnessDays < 1 {
		return fmt.Errorf("config error: 'scan.freshness_days' must be at least 1")
	}
	if c.Directory.CategorySample < 0 {
		return fmt.Errorf("config error: 'directory.category_sample' must be non-negative")
	}
	if c.Directory.Concurrency < 1 {
		return fmt.Errorf("config error: 'directory.concurrency' must be at least 1")
	}
	if u, err := url.Parse(c.Directory.Origin); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config error: 'directory.origin' must be an absolute http(s) URL")
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("config error: 'fetch.requests_per_second' must be positive")
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("config error: 'gemini.temperature' must be between 0 and 2")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config error: 'store.sqlite_path' is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' (or DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.Store.Driver)
	}

	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("config error: 'smtp.port' out of range")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range")
	}
	if c.Server.RateLimit.Limit < 0 || c.Server.RateLimit.ScanPerHour < 0 {
		return fmt.Errorf("config error: 'server.rate_limit' limits must not be negative")
	}
	return nil
}

// Capabilities records which optional collaborators are configured.
type Capabilities struct {
	Gemini bool
	Search bool
	Redis  bool
	SMTP   bool
}

// Capabilities reports which optional collaborators have credentials.
func (c *Config) Capabilities() Capabilities {
	return Capabilities{
		Gemini: c.Gemini.APIKey != "",
		Search: c.Search.APIKey != "" && c.Search.CX != "",
		Redis:  c.Redis.URL != "",
		SMTP:   c.SMTP.Configured(),
	}
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
