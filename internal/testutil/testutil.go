// Package testutil provides shared test helpers: a temporary document store,
// a temporary ledger and canned record sources.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/newsdesk/internal/ledger"
	"github.com/starford/newsdesk/internal/models"
	"github.com/starford/newsdesk/internal/sources/feed"
	"github.com/starford/newsdesk/internal/storage"
)

// TestLedger creates a temporary SQLite ledger that is closed on cleanup.
func TestLedger(t *testing.T) *ledger.DB {
	t.Helper()
	db, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary document directory with a storage provider.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Day returns midnight UTC of the given day in 2025.
func Day(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

// Sources is an in-memory implementation of every record source. Fail maps
// a source name (news, videos, upcoming, recent, demos) to the error it
// returns.
type Sources struct {
	NewsItems      []models.NewsItem
	VideoItems     []models.VideoItem
	UpcomingEvents []models.ReleaseEvent
	RecentEvents   []models.ReleaseEvent
	DemoRepos      []models.DemoRepository
	Fail           map[string]error

	mu    sync.Mutex
	calls []string
}

// SampleSources returns Sources filled with a small, fixed data set.
func SampleSources() *Sources {
	return &Sources{
		NewsItems: []models.NewsItem{
			{Title: "Spring Boot 3.5.1 available now", Link: "https://spring.io/blog/boot-3-5-1", Published: Day(time.June, 19)},
			{Title: "Spring Data 2025.0.1 released", Link: "https://spring.io/blog/data-2025-0-1", Published: Day(time.June, 18)},
		},
		VideoItems: []models.VideoItem{
			{Title: "Spring Tips: Virtual Threads", Link: "https://youtu.be/vt", Channel: "SpringSourceDev", Published: Day(time.June, 17)},
		},
		UpcomingEvents: []models.ReleaseEvent{
			{Project: "Reactor", Version: "2025.0.1", Date: Day(time.July, 8), Summary: "Reactor 2025.0.1"},
		},
		RecentEvents: []models.ReleaseEvent{
			{Project: "Boot", Version: "3.4.7", Date: Day(time.June, 17), Summary: "Spring Boot 3.4.7 (Enterprise)"},
		},
		DemoRepos: []models.DemoRepository{
			{Name: "native-demo", Description: "GraalVM native image", URL: "https://github.com/acme/native-demo"},
		},
	}
}

// Calls returns the sources invoked so far, in order.
func (s *Sources) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Sources) call(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	if err := s.Fail[name]; err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// News implements the news source.
func (s *Sources) News(_ context.Context, _ string, limit int) ([]models.NewsItem, error) {
	if err := s.call("news"); err != nil {
		return nil, err
	}
	return s.NewsItems[:min(limit, len(s.NewsItems))], nil
}

// Videos implements the video source.
func (s *Sources) Videos(_ context.Context, _ []feed.Channel, limit int) ([]models.VideoItem, error) {
	if err := s.call("videos"); err != nil {
		return nil, err
	}
	return s.VideoItems[:min(limit, len(s.VideoItems))], nil
}

// Upcoming implements the release calendar.
func (s *Sources) Upcoming(context.Context, string, int) ([]models.ReleaseEvent, error) {
	if err := s.call("upcoming"); err != nil {
		return nil, err
	}
	return s.UpcomingEvents, nil
}

// Recent implements the release calendar.
func (s *Sources) Recent(context.Context, string, int) ([]models.ReleaseEvent, error) {
	if err := s.call("recent"); err != nil {
		return nil, err
	}
	return s.RecentEvents, nil
}

// Demos implements the repository lister.
func (s *Sources) Demos(context.Context, string) ([]models.DemoRepository, error) {
	if err := s.call("demos"); err != nil {
		return nil, err
	}
	return s.DemoRepos, nil
}
