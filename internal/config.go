package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gorhill/cronexpr"

	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/newsletter"
	"github.com/starford/newsdesk/internal/sources/calendar"
	"github.com/starford/newsdesk/internal/sources/feed"
	"github.com/starford/newsdesk/internal/sources/github"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App              ApplicationConfig `yaml:"app"`
	Document         DocumentConfig    `yaml:"document"`
	Sources          SourcesConfig     `yaml:"sources"`
	UpcomingDefaults []string          `yaml:"upcoming_defaults"`
	Ledger           LedgerConfig      `yaml:"ledger"`
	Auth             AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Document.Validate(); err != nil {
		return err
	}
	if err := c.Sources.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
	// Schedule is a cron expression for refreshing every section while
	// serving. Empty disables the scheduler.
	Schedule string `yaml:"schedule"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
		validation.Field(&c.Schedule, validation.By(cronRule)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

func cronRule(value any) error {
	expr, _ := value.(string)
	if expr == "" {
		return nil
	}
	if _, err := cronexpr.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocumentConfig locates the newsletter document. File is relative to Dir.
type DocumentConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// Validate validates the document configuration.
func (c *DocumentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.File, validation.Required),
	)
}

// SourcesConfig holds the record source settings.
type SourcesConfig struct {
	HTTPTimeout time.Duration  `yaml:"http_timeout"`
	News        NewsConfig     `yaml:"news"`
	Calendar    CalendarConfig `yaml:"calendar"`
	GitHub      GitHubConfig   `yaml:"github"`
	Videos      VideosConfig   `yaml:"videos"`
}

// Validate validates the source configuration.
func (c *SourcesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.News),
		validation.Field(&c.Calendar),
		validation.Field(&c.GitHub),
		validation.Field(&c.Videos),
	)
}

// NewsConfig configures the blog feed.
type NewsConfig struct {
	URL          string `yaml:"url"`
	Limit        int    `yaml:"limit"`
	PreviewLimit int    `yaml:"preview_limit"`
}

// Validate validates the news configuration.
func (c NewsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Limit, validation.Required, validation.Min(1)),
		validation.Field(&c.PreviewLimit, validation.Required, validation.Min(1)),
	)
}

// CalendarConfig configures the release calendar.
type CalendarConfig struct {
	URL          string `yaml:"url"`
	UpcomingDays int    `yaml:"upcoming_days"`
	RecentDays   int    `yaml:"recent_days"`
}

// Validate validates the calendar configuration.
func (c CalendarConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.UpcomingDays, validation.Required, validation.Min(1)),
		validation.Field(&c.RecentDays, validation.Required, validation.Min(1)),
	)
}

// GitHubConfig configures the demo repository lister.
type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
	Org    string `yaml:"org"`
	Suffix string `yaml:"suffix"`
	Token  string `yaml:"token"`
}

// Validate validates the GitHub configuration.
func (c GitHubConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.Org, validation.Required),
		validation.Field(&c.Suffix, validation.Required),
	)
}

// VideosConfig configures the video channel feeds.
type VideosConfig struct {
	FeedBase string         `yaml:"feed_base"`
	Limit    int            `yaml:"limit"`
	Channels []feed.Channel `yaml:"channels"`
}

// Validate validates the video configuration.
func (c VideosConfig) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.FeedBase, validation.Required, is.URL),
		validation.Field(&c.Limit, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	for i, ch := range c.Channels {
		if ch.Name == "" || ch.ID == "" {
			return fmt.Errorf("videos: channel %d: name and id are required", i)
		}
	}
	return nil
}

// LedgerConfig holds the patch ledger database configuration.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds HTTP authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// Settings converts the source configuration into service settings.
func (c *Config) Settings() newsletter.Settings {
	return newsletter.Settings{
		NewsURL:      c.Sources.News.URL,
		NewsLimit:    c.Sources.News.Limit,
		PreviewLimit: c.Sources.News.PreviewLimit,
		CalendarURL:  c.Sources.Calendar.URL,
		UpcomingDays: c.Sources.Calendar.UpcomingDays,
		RecentDays:   c.Sources.Calendar.RecentDays,
		GitHubOrg:    c.Sources.GitHub.Org,
		Channels:     c.Sources.Videos.Channels,
		VideoLimit:   c.Sources.Videos.Limit,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	defaults := newsletter.DefaultSettings()
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Document: DocumentConfig{
			Dir:  ".",
			File: "spring-update.md",
		},
		Sources: SourcesConfig{
			HTTPTimeout: 30 * time.Second,
			News: NewsConfig{
				URL:          defaults.NewsURL,
				Limit:        defaults.NewsLimit,
				PreviewLimit: defaults.PreviewLimit,
			},
			Calendar: CalendarConfig{
				URL:          calendar.DefaultURL,
				UpcomingDays: defaults.UpcomingDays,
				RecentDays:   defaults.RecentDays,
			},
			GitHub: GitHubConfig{
				APIURL: github.DefaultBaseURL,
				Org:    github.DefaultOrg,
				Suffix: github.DefaultSuffix,
			},
			Videos: VideosConfig{
				FeedBase: feed.DefaultVideoFeedBase,
				Limit:    defaults.VideoLimit,
				Channels: defaults.Channels,
			},
		},
		UpcomingDefaults: append([]string(nil), document.DefaultUpcomingProjects...),
		Ledger: LedgerConfig{
			Path: "./newsdesk.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
