package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/models"
)

// ErrSourceUnavailable is returned when a section's source is not configured.
var ErrSourceUnavailable = errors.New("newsletter: source not configured")

// ErrInvalidRelease is returned for a manual release with a bad date or an
// empty summary.
var ErrInvalidRelease = errors.New("newsletter: invalid release")

// UpdateNews replaces the News section with the latest feed entries.
func (s *Service) UpdateNews(ctx context.Context, file string) (*document.Result, error) {
	items, err := s.fetchNews(ctx, s.settings.NewsLimit)
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, file, document.SectionNews, models.NewsRecords(items))
}

// PreviewNews renders the latest feed entries without touching any file.
// A non-positive limit uses the configured preview limit.
func (s *Service) PreviewNews(ctx context.Context, limit int) (string, error) {
	if limit <= 0 {
		limit = s.settings.PreviewLimit
	}
	items, err := s.fetchNews(ctx, limit)
	if err != nil {
		return "", err
	}
	return s.patcher.Renderer().Render(models.NewsRecords(items)).Body, nil
}

func (s *Service) fetchNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if s.news == nil {
		return nil, fmt.Errorf("%w: news", ErrSourceUnavailable)
	}
	items, err := s.news.News(ctx, s.settings.NewsURL, limit)
	if err != nil {
		return nil, fmt.Errorf("newsletter: news: %w", err)
	}
	return items, nil
}

// UpdateReleases prepends the recent enterprise releases to the Releases
// section.
func (s *Service) UpdateReleases(ctx context.Context, file string) (*document.Result, error) {
	if s.calendar == nil {
		return nil, fmt.Errorf("%w: calendar", ErrSourceUnavailable)
	}
	events, err := s.calendar.Recent(ctx, s.settings.CalendarURL, s.settings.RecentDays)
	if err != nil {
		return nil, fmt.Errorf("newsletter: recent releases: %w", err)
	}
	return s.patch(ctx, file, document.SectionReleases, models.ReleaseRecords(events))
}

// UpdateUpcoming replaces the Upcoming Releases section.
func (s *Service) UpdateUpcoming(ctx context.Context, file string) (*document.Result, error) {
	if s.calendar == nil {
		return nil, fmt.Errorf("%w: calendar", ErrSourceUnavailable)
	}
	events, err := s.calendar.Upcoming(ctx, s.settings.CalendarURL, s.settings.UpcomingDays)
	if err != nil {
		return nil, fmt.Errorf("newsletter: upcoming releases: %w", err)
	}
	return s.patch(ctx, file, document.SectionUpcoming, models.UpcomingRecords(events))
}

// UpdateVideos replaces the Videos section.
func (s *Service) UpdateVideos(ctx context.Context, file string) (*document.Result, error) {
	if s.videos == nil {
		return nil, fmt.Errorf("%w: videos", ErrSourceUnavailable)
	}
	videos, err := s.videos.Videos(ctx, s.settings.Channels, s.settings.VideoLimit)
	if err != nil {
		return nil, fmt.Errorf("newsletter: videos: %w", err)
	}
	return s.patch(ctx, file, document.SectionVideos, models.VideoRecords(videos))
}

// UpdateDemos replaces the Demos section.
func (s *Service) UpdateDemos(ctx context.Context, file string) (*document.Result, error) {
	if s.demos == nil {
		return nil, fmt.Errorf("%w: demos", ErrSourceUnavailable)
	}
	repos, err := s.demos.Demos(ctx, s.settings.GitHubOrg)
	if err != nil {
		return nil, fmt.Errorf("newsletter: demos: %w", err)
	}
	return s.patch(ctx, file, document.SectionDemos, models.DemoRecords(repos))
}

// AddRelease prepends a single hand-entered release to the Releases section.
func (s *Service) AddRelease(ctx context.Context, file, date, summary string) (*document.Result, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrInvalidRelease)
	}
	day, err := ParseDate(date, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, document.Request{
		Filename: file,
		Section:  document.SectionReleases,
		Records:  models.ReleaseRecords([]models.ReleaseEvent{{Date: day, Summary: summary}}),
		Policy:   document.PolicyPrepend,
	})
}

// ParseDate accepts the document's own labels ("July 25", "Jul 25"), which
// take the year from now, and anything dateparse understands
// ("2025-07-25", "07/25/2025").
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidRelease)
	}
	for _, layout := range []string{document.LongDateLayout, document.ShortDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidRelease, s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
