package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
)

func zeroYear(end time.Time) []domain.ActivityRecord {
	records := make([]domain.ActivityRecord, 0, 365)
	for i := 364; i >= 0; i-- {
		records = append(records, domain.NewActivityRecord(end.AddDate(0, 0, -i), 0))
	}
	return records
}

func TestRender_ZeroYearDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Username = "octocat"

	res, err := Render(zeroYear(refDate), refDate, cfg, FormatSVG)
	require.NoError(t, err)

	// 2023-12-31 (Sunday) through 2025-01-04 (Saturday).
	const weeks = 53
	assert.Equal(t, weeks, res.Weeks)
	assert.Equal(t, weeks*(10+2)+2*20, res.Width)
	assert.Equal(t, 7*10+6*2+2*20+20+20, res.Height)
	assert.Equal(t, "image/svg+xml", res.ContentType)
	assert.Zero(t, res.Total)

	svg := string(res.Body)
	// Every cell plus the first legend swatch.
	assert.Equal(t, weeks*7+1, strings.Count(svg, `fill="#ebedf0"`))
}

func TestRender_SingleBusyDay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowLegend = false
	records := []domain.ActivityRecord{domain.NewActivityRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 25)}

	res, err := Render(records, refDate, cfg, FormatSVG)
	require.NoError(t, err)

	svg := string(res.Body)
	// 2024-01-01 is the Monday of the first week.
	assert.Contains(t, svg, `<rect x="20" y="32" width="10" height="10" rx="2" ry="2" fill="#216e39"/>`)
	assert.Equal(t, 1, strings.Count(svg, `fill="#216e39"`))
	assert.Equal(t, 53*7-1, strings.Count(svg, `fill="#ebedf0"`))
	assert.Equal(t, 25, res.Total)
}

func TestRender_CustomBlack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Color = "000000"
	cfg.Mode = color.ModeDark
	records := []domain.ActivityRecord{{Date: "2024-05-05", Count: 40, Level: 4}}

	res, err := Render(records, refDate, cfg, FormatSVG)
	require.NoError(t, err)

	svg := string(res.Body)
	// The busy cell and the top legend swatch.
	assert.Equal(t, 2, strings.Count(svg, `fill="#000000"`))
	assert.Contains(t, svg, `fill="`+color.EmptyColor+`"`)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr error
	}{
		{name: "invalid color", mod: func(c *Config) { c.Color = "nothex" }, wantErr: color.ErrInvalidColor},
		{name: "unknown theme", mod: func(c *Config) { c.Theme = "neon" }, wantErr: color.ErrInvalidTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)

			_, err := Render(nil, refDate, cfg, FormatSVG)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
		})
	}
}

func TestRender_DoesNotMutateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 99
	before := cfg

	_, err := Render(nil, refDate, cfg, FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, before, cfg)
}

func TestRender_PNG(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Username = "octocat"
	cfg.ShowMonths = true

	res, err := Render(nil, refDate, cfg, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, FormatPNG, res.Format)

	img, err := png.Decode(bytes.NewReader(res.Body))
	require.NoError(t, err)
	assert.Equal(t, res.Width, img.Bounds().Dx())
	assert.Equal(t, res.Height, img.Bounds().Dy())
}

func TestRender_PNGScaled(t *testing.T) {
	raster, err := NewRasterizer(2)
	require.NoError(t, err)

	res, err := NewRenderer(raster).Render(nil, refDate, DefaultConfig(), FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(res.Body))
	require.NoError(t, err)
	assert.Equal(t, 2*(53*12+40), img.Bounds().Dx())
	assert.Equal(t, res.Width, img.Bounds().Dx())
	assert.Equal(t, res.Height, img.Bounds().Dy())
}
