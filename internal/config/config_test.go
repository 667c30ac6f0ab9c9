package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/finboard/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
  session_ttl: 10m

backend:
  base_url: "http://api.internal:8000"

dashboard:
  default_symbol: "BID"
  metrics:
    - label: "Tổng tài sản"
      line_item_id: 2

archive:
  type: localfs
  path: "/tmp/finboard/archive"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.SessionTTL != 10*time.Minute {
		t.Errorf("expected session ttl 10m, got %s", cfg.Server.SessionTTL)
	}
	if cfg.Backend.BaseURL != "http://api.internal:8000" {
		t.Errorf("unexpected base url %s", cfg.Backend.BaseURL)
	}
	if cfg.Dashboard.DefaultSymbol != "BID" {
		t.Errorf("expected BID, got %s", cfg.Dashboard.DefaultSymbol)
	}
	if len(cfg.Dashboard.Metrics) != 1 {
		t.Errorf("expected 1 metric, got %d", len(cfg.Dashboard.Metrics))
	}
	if cfg.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Archive.Type)
	}
}

func TestLoad_FillsDefaults(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  port: 8081
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Dashboard.DefaultReportType != "1" {
		t.Errorf("expected default report type 1, got %q", cfg.Dashboard.DefaultReportType)
	}
	if cfg.Dashboard.Capital.LineItemID != "88" {
		t.Errorf("expected capital line item 88, got %q", cfg.Dashboard.Capital.LineItemID)
	}
	if len(cfg.Dashboard.Metrics) != 7 {
		t.Errorf("expected 7 default metrics, got %d", len(cfg.Dashboard.Metrics))
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", cfg.Backend.Timeout)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("FINBOARD_TEST_BUCKET", "snapshots")
	cfgPath := writeConfig(t, `
archive:
  type: s3
  s3:
    bucket: "${FINBOARD_TEST_BUCKET}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Archive.S3.Bucket != "snapshots" {
		t.Errorf("expected expanded bucket, got %q", cfg.Archive.S3.Bucket)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Dashboard.DefaultSymbol != "VCB" {
		t.Errorf("expected default symbol VCB, got %s", cfg.Dashboard.DefaultSymbol)
	}
	if cfg.Dashboard.ChartYear != 2024 || cfg.Dashboard.ChartQuarter != "Q4" {
		t.Errorf("expected chart period 2024/Q4, got %d/%s", cfg.Dashboard.ChartYear, cfg.Dashboard.ChartQuarter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config { return *Defaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "/api" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "bad period",
			mutate:  func(c *Config) { c.Dashboard.DefaultPeriod = "monthly" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "metric without id",
			mutate:  func(c *Config) { c.Dashboard.Metrics = []MetricConfig{{Label: "x"}} },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Archive.Type = "s3" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown archive type",
			mutate:  func(c *Config) { c.Archive.Type = "ftp" },
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
