// Package github lists an organization's public demo repositories through
// the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/starford/newsdesk/internal/models"
)

// Defaults.
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultOrg     = "dashaun-tanzu"
	DefaultSuffix  = "-demo"
)

const defaultDescription = "Demo repository"

type repository struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Archived    bool      `json:"archived"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Client talks to the GitHub API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	suffix  string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken authenticates requests with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithSuffix sets the repository name suffix that marks a demo.
func WithSuffix(s string) Option {
	return func(c *Client) { c.suffix = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a GitHub client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		suffix:  DefaultSuffix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Demos returns the organization's non-archived repositories whose name ends
// with the demo suffix, most recently updated first.
func (c *Client) Demos(ctx context.Context, org string) ([]models.DemoRepository, error) {
	if org == "" {
		org = DefaultOrg
	}
	endpoint := fmt.Sprintf("%s/orgs/%s/repos?type=public&per_page=100", c.baseURL, url.PathEscape(org))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: list repos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("github: list repos for %s: %s", org, resp.Status)
	}

	var repos []repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decode response: %w", err)
	}

	var demos []models.DemoRepository
	for _, r := range repos {
		if r.Archived || !strings.HasSuffix(r.Name, c.suffix) {
			continue
		}
		desc := defaultDescription
		if r.Description != nil && strings.TrimSpace(*r.Description) != "" {
			desc = *r.Description
		}
		demos = append(demos, models.DemoRepository{
			Name:        r.Name,
			Description: desc,
			URL:         r.HTMLURL,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	sort.SliceStable(demos, func(i, j int) bool {
		return demos[i].UpdatedAt.After(demos[j].UpdatedAt)
	})

	c.logger.Debug("github: repos listed",
		slog.String("org", org),
		slog.Int("repos", len(repos)),
		slog.Int("demos", len(demos)))
	return demos, nil
}
