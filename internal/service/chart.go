// Package service orchestrates contribution lookups and chart renders.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
	"github.com/contribgraph/contribgraph-server/internal/github"
	"github.com/contribgraph/contribgraph-server/internal/observability"
	"github.com/contribgraph/contribgraph-server/internal/render"
	"github.com/contribgraph/contribgraph-server/internal/validation"
)

// ContributionSource fetches contribution history for one user.
type ContributionSource interface {
	FetchContributions(ctx context.Context, username string, year *int) (domain.ContributionData, error)
}

// ContributionCache stores fetched histories. A miss is reported through
// ok, never as an error.
type ContributionCache interface {
	Get(ctx context.Context, username string, year *int) (domain.ContributionData, bool, error)
	Set(ctx context.Context, username string, year *int, data domain.ContributionData) error
}

// ChartRequest is one chart render as requested by a client.
type ChartRequest struct {
	Username string `json:"username" validate:"required,ghuser"`
	Year     *int   `json:"year" validate:"omitempty,gte=2008,lte=2100"`
	Theme    string `json:"theme" validate:"omitempty,theme"`
	Mode     string `json:"mode" validate:"omitempty,oneof=light dark"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	Format   string `json:"format" validate:"omitempty,oneof=svg png"`
	// Preset names a bundle of visual options. Unknown names are ignored.
	Preset    string           `json:"preset"`
	Overrides render.Overrides `json:"-" validate:"-"`
}

// ChartResult is a rendered chart plus what it was rendered from.
type ChartResult struct {
	*render.Result
	Username string
	// Cached is true when the contributions came from the cache.
	Cached bool
}

// Option configures a ChartService.
type Option func(*ChartService)

// WithClock sets the clock used to pick the chart's reference date.
func WithClock(now func() time.Time) Option {
	return func(s *ChartService) { s.now = now }
}

// ChartService renders contribution charts.
type ChartService struct {
	source    ContributionSource
	cache     ContributionCache
	renderer  *render.Renderer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewChartService creates a chart service. cache may be nil.
func NewChartService(source ContributionSource, cache ContributionCache, renderer *render.Renderer, logger *slog.Logger, opts ...Option) *ChartService {
	s := &ChartService{
		source:    source,
		cache:     cache,
		renderer:  renderer,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chart validates req, loads the user's contributions and renders them.
func (s *ChartService) Chart(ctx context.Context, req ChartRequest) (*ChartResult, error) {
	cfg, format, err := s.resolve(req)
	if err != nil {
		observability.RecordRenderError(string(domainerrors.CodeOf(err)))
		return nil, err
	}

	data, cached, err := s.contributions(ctx, req.Username, req.Year)
	if err != nil {
		observability.RecordRenderError(string(domainerrors.CodeOf(err)))
		return nil, err
	}

	start := time.Now()
	res, err := s.renderer.Render(data.Days, s.reference(req.Year), cfg, format)
	if err != nil {
		observability.RecordRenderError(string(domainerrors.CodeOf(err)))
		if errors.Is(err, render.ErrEncoding) {
			s.logger.Error("chart encoding failed",
				"username", req.Username,
				"format", format,
				"error", err,
			)
		}
		return nil, err
	}
	took := time.Since(start)
	observability.ObserveRender(string(res.Format), took)

	s.logger.Debug("chart rendered",
		"username", req.Username,
		"format", res.Format,
		"weeks", res.Weeks,
		"cached", cached,
		"took", took,
	)

	return &ChartResult{Result: res, Username: req.Username, Cached: cached}, nil
}

// Data returns the raw contribution history for username.
func (s *ChartService) Data(ctx context.Context, username string, year *int) (domain.ContributionData, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.ContributionData{}, domainerrors.Validation("username is required")
	}
	if !github.ValidUsername(username) {
		return domain.ContributionData{}, domainerrors.Validationf("username %q is not a valid GitHub username", username)
	}

	data, _, err := s.contributions(ctx, username, year)
	return data, err
}

// resolve turns a request into a clamped render config: defaults, then the
// preset, then explicit overrides.
func (s *ChartService) resolve(req ChartRequest) (render.Config, render.Format, error) {
	if err := s.validator.Validate(req); err != nil {
		return render.Config{}, "", err
	}

	mode, err := color.ParseMode(req.Mode)
	if err != nil {
		return render.Config{}, "", err
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		return render.Config{}, "", domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid format")
	}

	base := render.DefaultConfig()
	base.Username = req.Username
	base.Theme = cmp.Or(req.Theme, color.DefaultTheme)
	base.Mode = mode
	base.Color = req.Color

	return render.Resolve(base, req.Preset, req.Overrides), format, nil
}

// contributions reads through the cache to the source.
func (s *ChartService) contributions(ctx context.Context, username string, year *int) (domain.ContributionData, bool, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, username, year)
		switch {
		case err != nil:
			s.logger.Warn("cache read failed", "username", username, "error", err)
		case ok:
			observability.RecordCacheLookup(true)
			return data, true, nil
		default:
			observability.RecordCacheLookup(false)
		}
	}

	data, err := s.source.FetchContributions(ctx, username, year)
	observability.RecordUpstream(sourceLabel(s.source), outcome(err))
	if err != nil {
		return domain.ContributionData{}, false, classify(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, username, year, data); err != nil {
			s.logger.Warn("cache write failed", "username", username, "error", err)
		}
	}
	return data, false, nil
}

// reference picks the last day the chart shows: today, or the last day of
// a past year.
func (s *ChartService) reference(year *int) time.Time {
	now := s.now().UTC()
	if year == nil || *year >= now.Year() {
		return now
	}
	return time.Date(*year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// classify maps source failures onto domain error codes.
func classify(err error) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, github.ErrUserNotFound), errors.Is(err, github.ErrNoData):
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, "user not found")
	case errors.Is(err, github.ErrInvalidUsername):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid username")
	case errors.Is(err, github.ErrRateLimited):
		return domainerrors.Wrap(err, domainerrors.CodeRateLimited, "upstream rate limit reached")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, "upstream request aborted")
	default:
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, fmt.Sprintf("fetch contributions: %s", upstreamReason(err)))
	}
}

func upstreamReason(err error) string {
	switch {
	case errors.Is(err, github.ErrUnauthorized):
		return "token rejected"
	case errors.Is(err, github.ErrServer):
		return "server error"
	default:
		return "request failed"
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domainerrors.CodeOf(classify(err)))
}

type apiAware interface {
	UsesAPI() bool
}

func sourceLabel(src ContributionSource) string {
	if a, ok := src.(apiAware); ok && a.UsesAPI() {
		return "graphql"
	}
	return "scrape"
}
