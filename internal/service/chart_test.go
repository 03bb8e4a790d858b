package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribgraph/contribgraph-server/internal/domain"
	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
	"github.com/contribgraph/contribgraph-server/internal/github"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/render"
	"github.com/contribgraph/contribgraph-server/internal/store"
)

var fixedNow = time.Date(2024, 12, 31, 15, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	data  domain.ContributionData
	err   error
	calls int
}

func (f *fakeSource) FetchContributions(_ context.Context, _ string, _ *int) (domain.ContributionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data, f.err
}

type fakeCache struct {
	entries map[string]domain.ContributionData
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.ContributionData)}
}

func (c *fakeCache) Get(_ context.Context, username string, year *int) (domain.ContributionData, bool, error) {
	if c.getErr != nil {
		return domain.ContributionData{}, false, c.getErr
	}
	d, ok := c.entries[store.Key(username, year)]
	return d, ok, nil
}

func (c *fakeCache) Set(_ context.Context, username string, year *int, data domain.ContributionData) error {
	c.entries[store.Key(username, year)] = data
	return nil
}

func sampleData() domain.ContributionData {
	return domain.ContributionData{
		Total: 30,
		Days: []domain.ActivityRecord{
			{Date: "2024-06-03", Count: 5, Level: 2},
			{Date: "2024-06-04", Count: 25, Level: 4},
		},
	}
}

func newTestService(t *testing.T, src ContributionSource, cache ContributionCache) *ChartService {
	t.Helper()
	raster, err := render.NewRasterizer(1)
	require.NoError(t, err)
	return NewChartService(src, cache, render.NewRenderer(raster), logger.Discard(), WithClock(func() time.Time { return fixedNow }))
}

func intPtr(v int) *int { return &v }
func boolPtr(v bool) *bool { return &v }

func TestChart_SVG(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(t, src, nil)

	res, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat"})
	require.NoError(t, err)

	assert.Equal(t, "image/svg+xml", res.ContentType)
	assert.Equal(t, render.FormatSVG, res.Format)
	assert.Equal(t, "octocat", res.Username)
	assert.False(t, res.Cached)
	assert.Equal(t, 30, res.Total)
	assert.True(t, strings.HasPrefix(string(res.Body), "<svg"))
	assert.Contains(t, string(res.Body), "#216e39")
	assert.Contains(t, string(res.Body), ">octocat</text>")
	assert.Equal(t, 1, src.calls)
}

func TestChart_PNG(t *testing.T) {
	svc := newTestService(t, &fakeSource{data: sampleData()}, nil)

	res, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat", Format: "png"})
	require.NoError(t, err)

	assert.Equal(t, "image/png", res.ContentType)
	img, err := png.Decode(bytes.NewReader(res.Body))
	require.NoError(t, err)
	assert.Equal(t, res.Width, img.Bounds().Dx())
	assert.Equal(t, res.Height, img.Bounds().Dy())
}

func TestChart_PresetAndOverrides(t *testing.T) {
	svc := newTestService(t, &fakeSource{data: sampleData()}, nil)

	minimal, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat", Preset: "minimal"})
	require.NoError(t, err)
	assert.NotContains(t, string(minimal.Body), "<text")

	withMonths, err := svc.Chart(context.Background(), ChartRequest{
		Username:  "octocat",
		Preset:    "minimal",
		Overrides: render.Overrides{GridOnly: boolPtr(false), ShowMonths: boolPtr(true), Radius: intPtr(50)},
	})
	require.NoError(t, err)
	assert.Contains(t, string(withMonths.Body), ">Jan</text>")
	assert.Contains(t, string(withMonths.Body), `rx="10"`, "radius is clamped")

	unknown, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat", Preset: "nonexistent"})
	require.NoError(t, err)
	assert.Contains(t, string(unknown.Body), "<text", "unknown preset falls back to defaults")
}

func TestChart_CacheReadThrough(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	cache := newFakeCache()
	svc := newTestService(t, src, cache)

	first, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Chart(context.Background(), ChartRequest{Username: "OctoCat", Theme: "ocean"})
	require.NoError(t, err)
	assert.True(t, second.Cached)

	assert.Equal(t, 1, src.calls)
}

func TestChart_CacheErrorFallsBackToSource(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	cache := newFakeCache()
	cache.getErr = errors.New("disk gone")
	svc := newTestService(t, src, cache)

	_, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestChart_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      ChartRequest
		srcErr   error
		wantCode domainerrors.Code
	}{
		{name: "invalid username", req: ChartRequest{Username: "bad_name"}, wantCode: domainerrors.CodeValidation},
		{name: "unknown theme", req: ChartRequest{Username: "octocat", Theme: "neon"}, wantCode: domainerrors.CodeValidation},
		{name: "bad color", req: ChartRequest{Username: "octocat", Color: "zzz"}, wantCode: domainerrors.CodeValidation},
		{name: "bad format", req: ChartRequest{Username: "octocat", Format: "gif"}, wantCode: domainerrors.CodeValidation},
		{name: "bad mode", req: ChartRequest{Username: "octocat", Mode: "dim"}, wantCode: domainerrors.CodeValidation},
		{name: "bad year", req: ChartRequest{Username: "octocat", Year: intPtr(1990)}, wantCode: domainerrors.CodeValidation},
		{name: "user not found", req: ChartRequest{Username: "ghost"}, srcErr: github.ErrUserNotFound, wantCode: domainerrors.CodeNotFound},
		{name: "no data", req: ChartRequest{Username: "ghost"}, srcErr: github.ErrNoData, wantCode: domainerrors.CodeNotFound},
		{name: "rate limited", req: ChartRequest{Username: "octocat"}, srcErr: github.ErrRateLimited, wantCode: domainerrors.CodeRateLimited},
		{name: "server error", req: ChartRequest{Username: "octocat"}, srcErr: github.ErrServer, wantCode: domainerrors.CodeUpstream},
		{name: "canceled", req: ChartRequest{Username: "octocat"}, srcErr: context.Canceled, wantCode: domainerrors.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{data: sampleData(), err: tt.srcErr}
			svc := newTestService(t, src, nil)

			_, err := svc.Chart(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domainerrors.CodeOf(err))
			if tt.srcErr != nil {
				assert.ErrorIs(t, err, tt.srcErr)
			}
		})
	}
}

func TestChart_ValidationSkipsSource(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(t, src, nil)

	_, err := svc.Chart(context.Background(), ChartRequest{Username: "octocat", Color: "nothex"})
	require.Error(t, err)
	assert.Zero(t, src.calls)
}

func TestReference(t *testing.T) {
	svc := newTestService(t, &fakeSource{}, nil)

	assert.Equal(t, fixedNow, svc.reference(nil))
	assert.Equal(t, fixedNow, svc.reference(intPtr(2024)))
	assert.Equal(t, time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), svc.reference(intPtr(2022)))
}

func TestData(t *testing.T) {
	src := &fakeSource{data: sampleData()}
	svc := newTestService(t, src, nil)

	data, err := svc.Data(context.Background(), " octocat ", nil)
	require.NoError(t, err)
	assert.Equal(t, 30, data.Total)
	assert.Len(t, data.Days, 2)

	_, err = svc.Data(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = svc.Data(context.Background(), "no spaces allowed", nil)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}
