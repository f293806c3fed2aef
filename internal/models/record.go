// Package models defines the record types handed to the document engine.
//
// Records are produced by the source clients (feeds, calendar, repository
// lister) and are read-only as far as the engine is concerned.
package models

import (
	"fmt"
	"time"
)

// Kind identifies which record shape a section holds.
type Kind string

// Record kinds.
const (
	KindNews     Kind = "news"
	KindReleases Kind = "releases"
	KindUpcoming Kind = "upcoming"
	KindVideos   Kind = "videos"
	KindDemos    Kind = "demos"
)

// NewsItem is a single blog/feed entry.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published,omitempty"`
}

// String renders the item as a markdown bullet.
func (n NewsItem) String() string {
	return fmt.Sprintf("- [%s](%s)", n.Title, n.Link)
}

// ReleaseEvent is a dated release taken from the release calendar or entered
// by hand. Summary is the free-text event title as published.
type ReleaseEvent struct {
	Project string    `json:"project,omitempty"`
	Version string    `json:"version,omitempty"`
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
}

// String returns a compact "2006-01-02 - Project Version" label.
func (r ReleaseEvent) String() string {
	return fmt.Sprintf("%s - %s %s", r.Date.Format(time.DateOnly), r.Project, r.Version)
}

// DemoRepository is a public demo repository.
type DemoRepository struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// VideoItem is a video entry from a channel feed.
type VideoItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Channel   string    `json:"channel"`
	Published time.Time `json:"published,omitempty"`
}

// Records is an ordered list of records of a single kind. Exactly one of the
// slices is expected to be set; Kind tells the renderer which one.
type Records struct {
	Kind     Kind
	News     []NewsItem
	Releases []ReleaseEvent
	Demos    []DemoRepository
	Videos   []VideoItem
}

// Len returns the number of records held for r.Kind.
func (r Records) Len() int {
	switch r.Kind {
	case KindNews:
		return len(r.News)
	case KindReleases, KindUpcoming:
		return len(r.Releases)
	case KindDemos:
		return len(r.Demos)
	case KindVideos:
		return len(r.Videos)
	}
	return 0
}

// NewsRecords wraps news items.
func NewsRecords(items []NewsItem) Records { return Records{Kind: KindNews, News: items} }

// ReleaseRecords wraps release history events.
func ReleaseRecords(events []ReleaseEvent) Records {
	return Records{Kind: KindReleases, Releases: events}
}

// UpcomingRecords wraps upcoming release events.
func UpcomingRecords(events []ReleaseEvent) Records {
	return Records{Kind: KindUpcoming, Releases: events}
}

// DemoRecords wraps demo repositories.
func DemoRecords(repos []DemoRepository) Records { return Records{Kind: KindDemos, Demos: repos} }

// VideoRecords wraps videos.
func VideoRecords(videos []VideoItem) Records { return Records{Kind: KindVideos, Videos: videos} }
