// Package calendar reads the project release calendar (iCalendar) and turns
// its events into release records.
//
// Events whose summary carries the "(Enterprise)" marker are treated as
// releases that already shipped; every other release-like event is upcoming.
package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/starford/newsdesk/internal/models"
)

// DefaultURL is the public release calendar.
const DefaultURL = "https://calendar.spring.io/ical"

const enterpriseMarker = "(Enterprise)"

var (
	versionRe = regexp.MustCompile(`(?i)(\d+\.\d+(?:\.\d+)?(?:-[A-Z0-9]+)?)`)

	projectRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([A-Za-z\s]+?)\s+(\d+\.\d+(?:\.\d+)?(?:-[A-Z0-9]+)?)(?:\s+release)?`),
		regexp.MustCompile(`(?i)([A-Za-z\s]+?)\s+v?(\d+\.\d+(?:\.\d+)?(?:-[A-Z0-9]+)?)`),
	}

	projectPrefixRe = regexp.MustCompile(`(?i)^(release|spring)\s+`)
	projectSuffixRe = regexp.MustCompile(`(?i)\s+(release|rc|ga|final)$`)
)

// Client downloads and classifies calendar events.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the clock that anchors the date windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a calendar client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upcoming returns the non-enterprise releases dated from today through
// today+daysAhead, oldest first.
func (c *Client) Upcoming(ctx context.Context, url string, daysAhead int) ([]models.ReleaseEvent, error) {
	cal, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	today := dateOf(c.now())
	return Releases(cal, Window{From: today, To: today.AddDate(0, 0, daysAhead)}, false), nil
}

// Recent returns the enterprise releases dated from today-daysPast through
// today, oldest first.
func (c *Client) Recent(ctx context.Context, url string, daysPast int) ([]models.ReleaseEvent, error) {
	cal, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	today := dateOf(c.now())
	return Releases(cal, Window{From: today.AddDate(0, 0, -daysPast), To: today}, true), nil
}

func (c *Client) fetch(ctx context.Context, url string) (*ics.Calendar, error) {
	if url == "" {
		url = DefaultURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("calendar: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("calendar: fetch %s: %s", url, resp.Status)
	}
	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse: %w", err)
	}
	c.logger.Debug("calendar: fetched",
		slog.String("url", url),
		slog.Int("events", len(cal.Events())))
	return cal, nil
}

// Window is an inclusive range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) contains(day time.Time) bool {
	return !day.Before(w.From) && !day.After(w.To)
}

// Releases picks the release events of cal that fall inside w. With
// enterprise set only "(Enterprise)" events are considered, otherwise only
// the others. The result is sorted by date, oldest first.
func Releases(cal *ics.Calendar, w Window, enterprise bool) []models.ReleaseEvent {
	var out []models.ReleaseEvent
	for _, ev := range cal.Events() {
		prop := ev.GetProperty(ics.ComponentPropertySummary)
		if prop == nil {
			continue
		}
		summary := prop.Value
		if IsEnterprise(summary) != enterprise {
			continue
		}
		start, ok := eventDay(ev)
		if !ok || !w.contains(start) {
			continue
		}
		rel, ok := ParseRelease(summary, start)
		if !ok {
			continue
		}
		out = append(out, rel)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ParseRelease turns an event summary into a release record. It reports false
// when the summary does not look like a release or names no project version.
func ParseRelease(summary string, day time.Time) (models.ReleaseEvent, bool) {
	if !IsRelease(summary) {
		return models.ReleaseEvent{}, false
	}
	project, version, ok := ExtractProject(summary)
	if !ok {
		return models.ReleaseEvent{}, false
	}
	return models.ReleaseEvent{
		Project: project,
		Version: version,
		Date:    day,
		Summary: summary,
	}, true
}

// IsEnterprise reports whether summary carries the enterprise marker.
func IsEnterprise(summary string) bool {
	return strings.Contains(summary, enterpriseMarker)
}

// IsRelease reports whether summary looks like a release rather than a
// meeting or planning entry.
func IsRelease(summary string) bool {
	lower := strings.ToLower(summary)
	if strings.Contains(lower, "meeting") || strings.Contains(lower, "planning") {
		return false
	}
	return strings.Contains(lower, "release") ||
		strings.Contains(lower, "spring") ||
		versionRe.MatchString(summary)
}

// ExtractProject pulls the project name and version out of a summary such
// as "Spring Data 2025.0.1".
func ExtractProject(summary string) (project, version string, ok bool) {
	for _, re := range projectRes {
		m := re.FindStringSubmatch(summary)
		if m == nil {
			continue
		}
		project = cleanProject(m[1])
		version = strings.TrimSpace(m[2])
		if project != "" && version != "" {
			return project, version, true
		}
	}
	return "", "", false
}

func cleanProject(name string) string {
	name = strings.TrimSpace(name)
	name = projectPrefixRe.ReplaceAllString(name, "")
	name = projectSuffixRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

func eventDay(ev *ics.VEvent) (time.Time, bool) {
	start, err := ev.GetStartAt()
	if err != nil {
		if start, err = ev.GetAllDayStartAt(); err != nil {
			return time.Time{}, false
		}
	}
	return dateOf(start), true
}

// dateOf drops the clock part, keeping the calendar day as seen in t's zone.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
