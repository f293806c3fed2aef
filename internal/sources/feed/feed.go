// Package feed reads blog and video channel feeds (RSS, Atom, JSON Feed)
// and turns their entries into news and video records.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/starford/newsdesk/internal/models"
)

// DefaultVideoFeedBase is the YouTube channel feed endpoint; the channel ID is
// appended to it.
const DefaultVideoFeedBase = "https://www.youtube.com/feeds/videos.xml?channel_id="

// Channel is a video channel identified by its feed ID.
type Channel struct {
	Name string `yaml:"name" json:"name"`
	ID   string `yaml:"id" json:"id"`
}

// Client fetches and parses feeds.
type Client struct {
	http      *http.Client
	videoBase string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every fetch.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithVideoFeedBase overrides DefaultVideoFeedBase.
func WithVideoFeedBase(base string) Option {
	return func(c *Client) { c.videoBase = base }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		videoBase: DefaultVideoFeedBase,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// gofeed parsers keep per-parse state, so every fetch gets its own.
func (c *Client) parse(ctx context.Context, url string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.Client = c.http
	return fp.ParseURLWithContext(url, ctx)
}

// News returns at most limit entries of the feed at url, in feed order.
func (c *Client) News(ctx context.Context, url string, limit int) ([]models.NewsItem, error) {
	f, err := c.parse(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", url, err)
	}
	items := make([]models.NewsItem, 0, min(limit, len(f.Items)))
	for _, it := range f.Items {
		if len(items) >= limit {
			break
		}
		items = append(items, models.NewsItem{
			Title:     it.Title,
			Link:      it.Link,
			Published: published(it),
		})
	}
	c.logger.Debug("feed: news fetched",
		slog.String("url", url),
		slog.Int("entries", len(f.Items)),
		slog.Int("kept", len(items)))
	return items, nil
}

// Videos fetches every channel concurrently and returns the newest limit
// videos across all of them. A channel that fails is logged and skipped.
func (c *Client) Videos(ctx context.Context, channels []Channel, limit int) ([]models.VideoItem, error) {
	perChannel := make([][]models.VideoItem, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		g.Go(func() error {
			videos, err := c.channelVideos(gctx, ch, limit)
			if err != nil {
				c.logger.Warn("feed: channel skipped",
					slog.String("channel", ch.Name),
					slog.String("error", err.Error()))
				return nil
			}
			perChannel[i] = videos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("feed: videos: %w", err)
	}

	var all []models.VideoItem
	for _, videos := range perChannel {
		all = append(all, videos...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (c *Client) channelVideos(ctx context.Context, ch Channel, limit int) ([]models.VideoItem, error) {
	url := c.videoBase + ch.ID
	f, err := c.parse(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", url, err)
	}
	var videos []models.VideoItem
	for _, it := range f.Items {
		if len(videos) >= limit {
			break
		}
		videos = append(videos, models.VideoItem{
			Title:     it.Title,
			Link:      it.Link,
			Channel:   ch.Name,
			Published: published(it),
		})
	}
	return videos, nil
}

func published(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return *it.PublishedParsed
	case it.UpdatedParsed != nil:
		return *it.UpdatedParsed
	}
	return time.Time{}
}
