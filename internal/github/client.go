// Package github fetches daily contribution counts for a GitHub user.
//
// With a personal access token the client queries the GraphQL API; without
// one it scrapes the public contributions fragment. Both paths return the
// same normalized domain.ContributionData.
package github

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"time"

	"github.com/contribgraph/contribgraph-server/internal/domain"
	"github.com/contribgraph/contribgraph-server/internal/ratelimit"
)

const (
	DefaultAPIURL = "https://api.github.com/graphql"
	DefaultWebURL = "https://github.com"

	// Outbound pacing shared by every lookup.
	defaultRPS   = 2.0
	defaultBurst = 5

	defaultTimeout = 15 * time.Second

	// limiterKey is the single outbound bucket; all calls hit the same host.
	limiterKey = "github"

	userAgent = "contribgraph/1.0"

	// maxBody caps how much of a response is read.
	maxBody = 8 << 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// Config holds client settings. Zero values select the defaults.
type Config struct {
	Token   string
	APIURL  string
	WebURL  string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Client is a rate-limited GitHub contributions client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	token   string
	apiURL  string
	webURL  string
	now     func() time.Time
}

// New creates a client.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cmp.Or(cfg.Timeout, defaultTimeout)
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		limiter: ratelimit.New(cmp.Or(cfg.RPS, defaultRPS), cmp.Or(cfg.Burst, defaultBurst)),
		logger:  logger,
		token:   cfg.Token,
		apiURL:  cmp.Or(cfg.APIURL, DefaultAPIURL),
		webURL:  cmp.Or(cfg.WebURL, DefaultWebURL),
		now:     time.Now,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// UsesAPI reports whether lookups go through the authenticated GraphQL API.
func (c *Client) UsesAPI() bool {
	return c.token != ""
}

// ValidUsername reports whether s is a syntactically valid GitHub login.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// FetchContributions returns the contribution days for username. A nil year
// selects the trailing year ending today; otherwise the calendar year.
// Days are deduplicated by date (last wins) and sorted chronologically.
func (c *Client) FetchContributions(ctx context.Context, username string, year *int) (domain.ContributionData, error) {
	op := "scrape"
	if c.UsesAPI() {
		op = "graphql"
	}
	if !ValidUsername(username) {
		return domain.ContributionData{}, wrapError(op, username, ErrInvalidUsername)
	}

	from, to := c.dateRange(year)

	var (
		data domain.ContributionData
		err  error
	)
	if c.UsesAPI() {
		data, err = c.fetchGraphQL(ctx, username, from, to)
	} else {
		data, err = c.fetchScrape(ctx, username, from, to, year != nil)
	}
	if err != nil {
		return domain.ContributionData{}, wrapError(op, username, err)
	}

	data.Days = dedupe(data.Days)
	c.logger.Debug("github contributions fetched",
		"username", username,
		"source", op,
		"days", len(data.Days),
		"total", data.Total,
	)
	return data, nil
}

func (c *Client) dateRange(year *int) (from, to time.Time) {
	if year != nil {
		from = time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(*year, time.December, 31, 23, 59, 59, 0, time.UTC)
		return from, to
	}
	to = c.now().UTC()
	return to.AddDate(-1, 0, 0), to
}

// do executes req with rate limiting and maps HTTP failures to sentinels.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("github request",
		"method", req.Method,
		"url", req.URL.String(),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func dedupe(days []domain.ActivityRecord) []domain.ActivityRecord {
	byDate := make(map[string]domain.ActivityRecord, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	out := make([]domain.ActivityRecord, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b domain.ActivityRecord) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}
