package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/finboard/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	News      NewsConfig      `mapstructure:"news"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	MaxSessions  int           `mapstructure:"max_sessions"`
}

// BackendConfig points at the financial-data REST API.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DashboardConfig holds the page defaults.
type DashboardConfig struct {
	DefaultSymbol     string         `mapstructure:"default_symbol"`
	DefaultReportType string         `mapstructure:"default_report_type"`
	DefaultPeriod     string         `mapstructure:"default_period"`
	ChartYear         int            `mapstructure:"chart_year"`
	ChartQuarter      string         `mapstructure:"chart_quarter"`
	Metrics           []MetricConfig `mapstructure:"metrics"`
	Capital           CapitalConfig  `mapstructure:"capital"`
}

// MetricConfig is one pie chart metric button.
type MetricConfig struct {
	Label      string `mapstructure:"label"`
	LineItemID int64  `mapstructure:"line_item_id"`
}

// CapitalConfig pre-fills the capital total form.
type CapitalConfig struct {
	Year       string `mapstructure:"year"`
	Quarter    string `mapstructure:"quarter"`
	LineItemID string `mapstructure:"line_item_id"`
}

// NewsConfig selects the news source. An RSS URL replaces the backend news endpoints.
type NewsConfig struct {
	RSSURL   string        `mapstructure:"rss_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig selects where exported snapshots are written.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// DefaultMetrics are the pie chart metrics shown on the price board.
func DefaultMetrics() []MetricConfig {
	return []MetricConfig{
		{Label: "Tổng tài sản", LineItemID: 2},
		{Label: "Lãi thuần HĐ DV", LineItemID: 33},
		{Label: "Tổng thu nhập", LineItemID: 41},
		{Label: "Huy động", LineItemID: 13},
		{Label: "Tín dụng", LineItemID: 8},
		{Label: "LN Sau Thuế", LineItemID: 49},
		{Label: "Vốn chủ sở hữu", LineItemID: 21},
	}
}

// Load reads configuration from file on top of the defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if len(cfg.Dashboard.Metrics) == 0 {
		cfg.Dashboard.Metrics = DefaultMetrics()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.max_sessions", d.Server.MaxSessions)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("dashboard.default_symbol", d.Dashboard.DefaultSymbol)
	v.SetDefault("dashboard.default_report_type", d.Dashboard.DefaultReportType)
	v.SetDefault("dashboard.default_period", d.Dashboard.DefaultPeriod)
	v.SetDefault("dashboard.chart_year", d.Dashboard.ChartYear)
	v.SetDefault("dashboard.chart_quarter", d.Dashboard.ChartQuarter)
	v.SetDefault("dashboard.capital.year", d.Dashboard.Capital.Year)
	v.SetDefault("dashboard.capital.quarter", d.Dashboard.Capital.Quarter)
	v.SetDefault("dashboard.capital.line_item_id", d.Dashboard.Capital.LineItemID)
	v.SetDefault("news.cache_ttl", d.News.CacheTTL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			SessionTTL:  30 * time.Minute,
			MaxSessions: 1000,
		},
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 15 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultSymbol:     "VCB",
			DefaultReportType: "1",
			DefaultPeriod:     string(core.PeriodYearly),
			ChartYear:         core.LastYear,
			ChartQuarter:      "Q4",
			Metrics:           DefaultMetrics(),
			Capital: CapitalConfig{
				Year:       "2024",
				Quarter:    "Q4",
				LineItemID: "88",
			},
		},
		News: NewsConfig{
			CacheTTL: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "./data/archive",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.SessionTTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session_ttl cannot be negative, got %s", c.Server.SessionTTL))
	}

	// Backend validation
	if c.Backend.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("backend base_url required"))
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backend base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}

	// Dashboard validation
	if p := core.Period(c.Dashboard.DefaultPeriod); p != "" && !p.Valid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default_period must be yearly or quarterly, got %q", c.Dashboard.DefaultPeriod))
	}
	for _, m := range c.Dashboard.Metrics {
		if m.Label == "" || m.LineItemID <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("metric needs a label and a positive line_item_id, got %+v", m))
		}
	}

	// Archive validation - if s3, check bucket exists
	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}

	return nil
}
