package render

import (
	"slices"
	"strings"
)

// Preset is a named bundle of visual options. Presets never carry a theme,
// mode or color.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Background   bool `json:"bg"`
	Radius       int  `json:"radius"`
	Gap          int  `json:"gap"`
	Size         int  `json:"size"`
	Margin       int  `json:"margin"`
	GridOnly     bool `json:"grid"`
	ShowMonths   bool `json:"months"`
	ShowDays     bool `json:"days"`
	ShowLegend   bool `json:"scale"`
	ShowUsername bool `json:"username"`
}

var presets = map[string]Preset{
	"minimal": {
		Name: "minimal", Description: "Bare grid on a transparent canvas",
		Background: false, Radius: 2, Gap: 1, Size: 10, Margin: 5, GridOnly: true,
	},
	"compact": {
		Name: "compact", Description: "Tight grid with a background",
		Background: true, Radius: 1, Gap: 1, Size: 10, Margin: 10, GridOnly: true,
	},
	"classic": {
		Name: "classic", Description: "Month labels with legend and caption",
		Background: true, Radius: 2, Gap: 2, Size: 10, Margin: 20,
		ShowMonths: true, ShowLegend: true, ShowUsername: true,
	},
	"modern": {
		Name: "modern", Description: "Rounder cells with weekday labels",
		Background: true, Radius: 3, Gap: 2, Size: 10, Margin: 20,
		ShowDays: true, ShowLegend: true, ShowUsername: true,
	},
	"full": {
		Name: "full", Description: "Every label, legend and caption",
		Background: true, Radius: 2, Gap: 2, Size: 10, Margin: 25,
		ShowMonths: true, ShowDays: true, ShowLegend: true, ShowUsername: true,
	},
	"dark": {
		Name: "dark", Description: "Classic layout intended for dark mode",
		Background: true, Radius: 2, Gap: 2, Size: 10, Margin: 20,
		ShowMonths: true, ShowLegend: true, ShowUsername: true,
	},
	"coder": {
		Name: "coder", Description: "Classic layout for profile READMEs",
		Background: true, Radius: 2, Gap: 2, Size: 10, Margin: 20,
		ShowMonths: true, ShowLegend: true, ShowUsername: true,
	},
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Presets returns every preset ordered by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Preset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Apply copies the preset's visual fields onto c.
func (p Preset) Apply(c Config) Config {
	c.Background = p.Background
	c.Radius = p.Radius
	c.Gap = p.Gap
	c.Size = p.Size
	c.Margin = p.Margin
	c.GridOnly = p.GridOnly
	c.ShowMonths = p.ShowMonths
	c.ShowDays = p.ShowDays
	c.ShowLegend = p.ShowLegend
	c.ShowUsername = p.ShowUsername
	return c
}

// Overrides are explicitly requested visual options. A nil field leaves the
// underlying value (default or preset) untouched.
type Overrides struct {
	Background   *bool
	Radius       *int
	Gap          *int
	Size         *int
	Margin       *int
	GridOnly     *bool
	ShowMonths   *bool
	ShowDays     *bool
	ShowLegend   *bool
	ShowUsername *bool
}

// Apply sets every non-nil override on c.
func (o Overrides) Apply(c Config) Config {
	setBool(&c.Background, o.Background)
	setInt(&c.Radius, o.Radius)
	setInt(&c.Gap, o.Gap)
	setInt(&c.Size, o.Size)
	setInt(&c.Margin, o.Margin)
	setBool(&c.GridOnly, o.GridOnly)
	setBool(&c.ShowMonths, o.ShowMonths)
	setBool(&c.ShowDays, o.ShowDays)
	setBool(&c.ShowLegend, o.ShowLegend)
	setBool(&c.ShowUsername, o.ShowUsername)
	return c
}

// Resolve builds a clamped config from defaults, an optional preset and
// explicit overrides, in that order of increasing precedence. Unknown
// preset names are ignored.
func Resolve(base Config, preset string, o Overrides) Config {
	if p, ok := LookupPreset(preset); ok {
		base = p.Apply(base)
	}
	return o.Apply(base).Clamped()
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
