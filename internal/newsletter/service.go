// Package newsletter coordinates the record sources, the document engine and
// the patch ledger. Every surface (CLI, HTTP, MCP, scheduler) goes through
// Service.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/newsdesk/internal/apperr"
	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/ledger"
	"github.com/starford/newsdesk/internal/models"
	"github.com/starford/newsdesk/internal/sources/feed"
	"github.com/starford/newsdesk/internal/storage"
)

// NewsSource fetches blog entries.
type NewsSource interface {
	News(ctx context.Context, url string, limit int) ([]models.NewsItem, error)
}

// VideoSource fetches channel videos.
type VideoSource interface {
	Videos(ctx context.Context, channels []feed.Channel, limit int) ([]models.VideoItem, error)
}

// ReleaseCalendar fetches dated releases.
type ReleaseCalendar interface {
	Upcoming(ctx context.Context, url string, daysAhead int) ([]models.ReleaseEvent, error)
	Recent(ctx context.Context, url string, daysPast int) ([]models.ReleaseEvent, error)
}

// DemoLister lists demo repositories.
type DemoLister interface {
	Demos(ctx context.Context, org string) ([]models.DemoRepository, error)
}

// Settings are the source parameters.
type Settings struct {
	NewsURL      string
	NewsLimit    int
	PreviewLimit int
	CalendarURL  string
	UpcomingDays int
	RecentDays   int
	GitHubOrg    string
	Channels     []feed.Channel
	VideoLimit   int
}

// Update is published after a patch or bootstrap touched a document.
type Update struct {
	Path     string `json:"path"`
	Section  string `json:"section,omitempty"`
	Checksum string `json:"checksum"`
	Origin   string `json:"origin"`
}

// Service is the entry point to the document engine for every surface.
type Service struct {
	store    storage.Provider
	patcher  *document.Patcher
	ledger   ledger.Ledger
	news     NewsSource
	videos   VideoSource
	calendar ReleaseCalendar
	demos    DemoLister
	settings Settings
	notify   func(Update)
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLedger records every patch in l.
func WithLedger(l ledger.Ledger) Option { return func(s *Service) { s.ledger = l } }

// WithNewsSource sets the blog feed client.
func WithNewsSource(n NewsSource) Option { return func(s *Service) { s.news = n } }

// WithVideoSource sets the video feed client.
func WithVideoSource(v VideoSource) Option { return func(s *Service) { s.videos = v } }

// WithCalendar sets the release calendar client.
func WithCalendar(c ReleaseCalendar) Option { return func(s *Service) { s.calendar = c } }

// WithDemoLister sets the repository lister.
func WithDemoLister(d DemoLister) Option { return func(s *Service) { s.demos = d } }

// WithSettings sets the source parameters.
func WithSettings(st Settings) Option { return func(s *Service) { s.settings = st } }

// WithNotifier registers fn to be called after every document change.
func WithNotifier(fn func(Update)) Option { return func(s *Service) { s.notify = fn } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock sets the clock used for manual release dates.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a service over store and patcher.
func NewService(store storage.Provider, patcher *document.Patcher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		patcher:  patcher,
		settings: DefaultSettings(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSettings returns the stock source parameters.
func DefaultSettings() Settings {
	return Settings{
		NewsURL:      "https://spring.io/blog/category/releases.atom",
		NewsLimit:    10,
		PreviewLimit: 5,
		CalendarURL:  "https://calendar.spring.io/ical",
		UpcomingDays: 30,
		RecentDays:   7,
		GitHubOrg:    "dashaun-tanzu",
		Channels: []feed.Channel{
			{Name: "Coffee + Software", ID: "UCjcceQmjS4DKBW_J_1UANow"},
			{Name: "SpringSourceDev", ID: "UC7yfnfvEUlXUIfm8rGLwZdA"},
			{Name: "Dan Vega", ID: "UCc98QQw1D-y38wg6mO3w4MQ"},
		},
		VideoLimit: 5,
	}
}

// Registry exposes the engine's section registry.
func (s *Service) Registry() *document.Registry {
	return s.patcher.Registry()
}

// Create writes a fresh template to file, replacing any existing content.
func (s *Service) Create(ctx context.Context, file string) error {
	if err := s.patcher.Bootstrap(ctx, file); err != nil {
		return err
	}
	text, err := s.store.Read(file)
	if err != nil {
		return &document.IOError{Op: "read", Path: file, Err: err}
	}
	sum := document.Checksum(string(text))
	if s.ledger != nil {
		if _, err := s.ledger.Record(ledger.Entry{
			Path:         file,
			Origin:       OriginFrom(ctx),
			Bootstrapped: true,
			Changed:      true,
			Checksum:     sum,
			PatchedAt:    s.now(),
		}); err != nil {
			s.logger.Warn("ledger: record failed",
				slog.String("path", file),
				slog.String("error", err.Error()))
		}
	}
	s.publish(ctx, Update{Path: file, Checksum: sum})
	return nil
}

// Show returns the raw document.
func (s *Service) Show(_ context.Context, file string) (string, error) {
	data, err := s.store.Read(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", &document.IOError{Op: "read", Path: file, Err: err}
	}
	return string(data), nil
}

// Sections returns the outline of the document.
func (s *Service) Sections(ctx context.Context, file string) (*document.Outline, error) {
	text, err := s.Show(ctx, file)
	if err != nil {
		return nil, err
	}
	return s.patcher.Registry().Parse(text)
}

// History returns the most recent patches recorded for file.
func (s *Service) History(_ context.Context, file string, limit int) ([]ledger.Entry, error) {
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.Recent(file, limit)
}

// Refresh fetches the records for the named section and patches them in.
func (s *Service) Refresh(ctx context.Context, file, section string) (*document.Result, error) {
	sec, err := s.patcher.Registry().Lookup(section)
	if err != nil {
		return nil, fmt.Errorf("newsletter: %w: %q", err, section)
	}
	switch sec.Kind {
	case models.KindNews:
		return s.UpdateNews(ctx, file)
	case models.KindReleases:
		return s.UpdateReleases(ctx, file)
	case models.KindUpcoming:
		return s.UpdateUpcoming(ctx, file)
	case models.KindVideos:
		return s.UpdateVideos(ctx, file)
	case models.KindDemos:
		return s.UpdateDemos(ctx, file)
	}
	return nil, fmt.Errorf("newsletter: %w: %q", apperr.ErrUnknownSection, section)
}

// Outcome is the result of one section in UpdateAll.
type Outcome struct {
	Section string           `json:"section"`
	Result  *document.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// UpdateAll refreshes every registered section, one after another, in
// registry order. A section that fails is logged and the rest still run;
// the returned error joins every failure.
func (s *Service) UpdateAll(ctx context.Context, file string) ([]Outcome, error) {
	var (
		outcomes []Outcome
		errs     []error
	)
	for _, sec := range s.patcher.Registry().Sections() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.Refresh(ctx, file, sec.Name)
		out := Outcome{Section: sec.Name, Result: res}
		if err != nil {
			out.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", sec.Name, err))
			s.logger.Warn("update-all: section failed",
				slog.String("section", sec.Name),
				slog.String("error", err.Error()))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, errors.Join(errs...)
}

func (s *Service) patch(ctx context.Context, file, section string, recs models.Records) (*document.Result, error) {
	return s.apply(ctx, document.Request{Filename: file, Section: section, Records: recs})
}

func (s *Service) apply(ctx context.Context, req document.Request) (*document.Result, error) {
	res, err := s.patcher.Patch(ctx, req)
	if err != nil {
		return nil, err
	}
	origin := OriginFrom(ctx)
	if s.ledger != nil {
		_, lerr := s.ledger.Record(ledger.Entry{
			Path:         res.Path,
			Section:      res.Section,
			Policy:       string(res.Policy),
			Origin:       origin,
			Bootstrapped: res.Bootstrapped,
			Created:      res.Created,
			Changed:      res.Changed,
			Rendered:     res.Rendered,
			Skipped:      res.Skipped,
			Checksum:     res.Checksum,
			PatchedAt:    s.now(),
		})
		if lerr != nil {
			s.logger.Warn("ledger: record failed",
				slog.String("path", res.Path),
				slog.String("error", lerr.Error()))
		}
	}
	if res.Changed {
		s.publish(ctx, Update{Path: res.Path, Section: res.Section, Checksum: res.Checksum})
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, u Update) {
	if s.notify == nil {
		return
	}
	if u.Origin == "" {
		u.Origin = OriginFrom(ctx)
	}
	s.notify(u)
}
