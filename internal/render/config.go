// Package render composes contribution charts as SVG and, on request, PNG.
//
// A render is a single pure pass: normalize the records into a dense
// calendar, resolve the palette, lay out the grid, compose the SVG and
// optionally rasterize it. Nothing is shared between calls.
package render

import (
	"fmt"
	"strings"

	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/layout"
)

// Format is the requested output kind.
type Format string

// Output formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ParseFormat validates a format string. The empty string means SVG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Clamp ranges for the numeric options.
const (
	MinRadius, MaxRadius = 0, 10
	MinGap, MaxGap       = 0, 5
	MinSize, MaxSize     = 1, 20
	MinMargin, MaxMargin = 0, 100
)

// Config is the flat, already-resolved set of visual options for one render.
// It is passed by value and never modified by the pipeline.
type Config struct {
	Username string

	Theme string
	Mode  color.Mode
	// Color is an optional custom base color; empty means use Theme.
	Color string

	Background bool
	Radius     int
	Gap        int
	Size       int
	Margin     int
	GridOnly   bool

	ShowMonths   bool
	ShowDays     bool
	ShowLegend   bool
	ShowUsername bool
}

// DefaultConfig returns the baseline chart look.
func DefaultConfig() Config {
	return Config{
		Theme:        color.DefaultTheme,
		Mode:         color.ModeLight,
		Background:   true,
		Radius:       2,
		Gap:          2,
		Size:         10,
		Margin:       20,
		ShowLegend:   true,
		ShowUsername: true,
	}
}

// Clamped returns a copy with every numeric field forced into its range
// and an empty theme or mode replaced by the default.
func (c Config) Clamped() Config {
	c.Radius = clamp(c.Radius, MinRadius, MaxRadius)
	c.Gap = clamp(c.Gap, MinGap, MaxGap)
	c.Size = clamp(c.Size, MinSize, MaxSize)
	c.Margin = clamp(c.Margin, MinMargin, MaxMargin)
	if c.Theme == "" {
		c.Theme = color.DefaultTheme
	}
	if c.Mode == "" {
		c.Mode = color.ModeLight
	}
	return c
}

// LayoutOptions projects the config onto the layout engine's inputs.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		CellSize:     c.Size,
		Gap:          c.Gap,
		Margin:       c.Margin,
		ShowMonths:   c.ShowMonths,
		ShowDays:     c.ShowDays,
		ShowLegend:   c.ShowLegend,
		ShowUsername: c.ShowUsername,
		GridOnly:     c.GridOnly,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
