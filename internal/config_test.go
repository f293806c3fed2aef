package internal

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/starford/newsdesk/internal/sources/feed"
	pkgconfig "github.com/starford/newsdesk/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestExampleConfig_Loads(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load("../config/config.yaml", cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Sources.HTTPTimeout != 30*time.Second {
		t.Errorf("http timeout = %v", cfg.Sources.HTTPTimeout)
	}
	if cfg.Sources.GitHub.Token != "gh-token" {
		t.Errorf("github token = %q", cfg.Sources.GitHub.Token)
	}
	if len(cfg.Sources.Videos.Channels) != 3 || cfg.Sources.Videos.Channels[2].Name != "Dan Vega" {
		t.Errorf("channels = %+v", cfg.Sources.Videos.Channels)
	}
	if len(cfg.UpcomingDefaults) != 9 {
		t.Errorf("upcoming defaults = %v", cfg.UpcomingDefaults)
	}
}

func TestApplicationConfig_Schedule(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Schedule = "0 7 * * 1-5"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
	cfg.App.Schedule = "every morning"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "cron") {
		t.Fatalf("err = %v, want cron error", err)
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default: %v", err)
	}
	if cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("format = %q, want %q", cfg.App.LogFormat, LogFormatJSON)
	}
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("xml format should fail")
	}
}

func TestSourcesConfig_Invalid(t *testing.T) {
	cases := map[string]func(*Config){
		"news url":       func(c *Config) { c.Sources.News.URL = "not a url" },
		"news limit":     func(c *Config) { c.Sources.News.Limit = 0 },
		"calendar days":  func(c *Config) { c.Sources.Calendar.UpcomingDays = 0 },
		"github org":     func(c *Config) { c.Sources.GitHub.Org = "" },
		"channel id":     func(c *Config) { c.Sources.Videos.Channels = []feed.Channel{{Name: "x"}} },
		"short timeout":  func(c *Config) { c.Sources.HTTPTimeout = time.Millisecond },
		"document file":  func(c *Config) { c.Document.File = "" },
		"ledger path":    func(c *Config) { c.Ledger.Path = "" },
		"http port zero": func(c *Config) { c.App.HTTP.Port = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_Settings(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sources.News.Limit = 3
	cfg.Sources.GitHub.Org = "acme"
	s := cfg.Settings()
	if s.NewsLimit != 3 || s.GitHubOrg != "acme" || len(s.Channels) != 3 {
		t.Errorf("settings = %+v", s)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
