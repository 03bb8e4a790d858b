package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribgraph/contribgraph-server/internal/calendar"
	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	"github.com/contribgraph/contribgraph-server/internal/layout"
)

var refDate = time.Date(2024, time.December, 31, 15, 0, 0, 0, time.UTC)

func compose(t *testing.T, records []domain.ActivityRecord, cfg Config) string {
	t.Helper()
	cfg = cfg.Clamped()
	scale, err := color.Resolve(cfg.Theme, cfg.Mode, cfg.Color)
	require.NoError(t, err)

	cal := calendar.Normalize(records, refDate)
	geo := layout.Compute(cal.WeekCount(), cfg.LayoutOptions())
	return Compose(cal, scale, geo, cfg)
}

func allFlags() Config {
	cfg := DefaultConfig()
	cfg.Username = "octocat"
	cfg.ShowMonths = true
	cfg.ShowDays = true
	cfg.ShowLegend = true
	cfg.ShowUsername = true
	return cfg
}

func TestCompose_GridOnlyHasNoDecorations(t *testing.T) {
	cfg := allFlags()
	cfg.GridOnly = true

	svg := compose(t, nil, cfg)

	assert.NotContains(t, svg, "<text")
	assert.NotContains(t, svg, legendLow)
	assert.NotContains(t, svg, "octocat")
	assert.Equal(t, 53*7+1, strings.Count(svg, "<rect"))
}

func TestCompose_Deterministic(t *testing.T) {
	records := []domain.ActivityRecord{
		{Date: "2024-03-04", Count: 3, Level: 1},
		{Date: "2024-07-19", Count: 12, Level: 3},
	}
	cfg := allFlags()

	first := compose(t, records, cfg)
	second := compose(t, records, cfg)

	assert.Equal(t, first, second)
}

func TestCompose_RootMatchesGeometry(t *testing.T) {
	cfg := allFlags()
	svg := compose(t, nil, cfg)

	geo := layout.Compute(53, cfg.LayoutOptions())
	assert.True(t, strings.HasPrefix(svg,
		`<svg xmlns="http://www.w3.org/2000/svg" width="706" height="182" viewBox="0 0 706 182">`))
	assert.Equal(t, 706, geo.Width)
	assert.Equal(t, 182, geo.Height)
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestCompose_MonthLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowMonths = true
	cfg.ShowLegend = false

	svg := compose(t, nil, cfg)

	// Window 2023-12-31..2025-01-04: Dec 2023, Jan-Dec 2024.
	assert.Equal(t, 2, strings.Count(svg, ">Dec</text>"))
	assert.Equal(t, 1, strings.Count(svg, ">Jan</text>"))
	assert.Equal(t, 13, strings.Count(svg, "<text"))
	assert.Contains(t, svg, `<text x="20" y="35" font-family="Figtree, system-ui, sans-serif" font-size="10" font-weight="400" fill="#24292e" opacity="0.8">Dec</text>`)
}

func TestCompose_DayLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowDays = true
	cfg.ShowLegend = false

	svg := compose(t, nil, cfg)

	for _, d := range []string{"Mon", "Wed", "Fri"} {
		assert.Contains(t, svg, ">"+d+"</text>")
	}
	for _, d := range []string{"Sun", "Tue", "Thu", "Sat"} {
		assert.NotContains(t, svg, ">"+d+"</text>")
	}
	assert.Contains(t, svg, `<text x="45" y="40"`)
	assert.Contains(t, svg, `text-anchor="end">Mon</text>`)
}

func TestCompose_LegendAndCaption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Username = "octocat"

	svg := compose(t, nil, cfg)

	assert.Contains(t, svg, ">Less</text>")
	assert.Contains(t, svg, ">More</text>")
	assert.Contains(t, svg, `font-weight="500" fill="#24292e" opacity="0.8">octocat</text>`)

	for _, c := range []string{"#9be9a8", "#40c463", "#30a14e", "#216e39"} {
		assert.Equal(t, 1, strings.Count(svg, `fill="`+c+`"`), c)
	}
}

func TestCompose_EscapesUsername(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Username = `<script>alert("x")</script>&`

	svg := compose(t, nil, cfg)

	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "&lt;script&gt;")
	assert.Contains(t, svg, "&amp;</text>")
}

func TestCompose_Background(t *testing.T) {
	tests := []struct {
		name     string
		mode     color.Mode
		bg       bool
		wantFill string
	}{
		{name: "light", mode: color.ModeLight, bg: true, wantFill: `<rect width="676" height="162" fill="#ffffff"/>`},
		{name: "dark", mode: color.ModeDark, bg: true, wantFill: `<rect width="676" height="162" fill="#0d1117"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Username = "octocat"
			cfg.Mode = tt.mode
			cfg.Background = tt.bg

			svg := compose(t, nil, cfg)
			assert.Contains(t, svg, tt.wantFill)
			assert.NotContains(t, svg, "fill-opacity")
		})
	}
}

func TestCompose_NoBackgroundFadesEmptyCells(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = false
	records := []domain.ActivityRecord{{Date: "2024-06-03", Count: 7, Level: 2}}

	svg := compose(t, records, cfg)

	assert.NotContains(t, svg, `fill="#ffffff"`)
	// Every empty cell plus the level-0 legend swatch.
	assert.Equal(t, 53*7-1+1, strings.Count(svg, `fill-opacity="0.5"`))
	assert.NotContains(t, svg, `fill="#40c463" fill-opacity`)
}

func TestCompose_DarkModeText(t *testing.T) {
	cfg := allFlags()
	cfg.Mode = color.ModeDark

	svg := compose(t, nil, cfg)

	assert.NotContains(t, svg, lightText)
	assert.Contains(t, svg, `fill="#c9d1d9"`)
	assert.Contains(t, svg, `fill="#161b22"`)
}
