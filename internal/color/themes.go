// Package color resolves the five-color scale used to paint a contribution chart.
package color

import "slices"

// Levels is the number of colors in every scale.
const Levels = 5

// Scale is an ordered five-color ramp. Index 0 is "no activity", index 4 the
// most active level. Values are lowercase "#rrggbb" strings.
type Scale [Levels]string

// DefaultTheme is the baseline theme used when the caller does not pick one.
const DefaultTheme = "github"

// EmptyColor is the neutral no-activity color used by custom-color scales.
const EmptyColor = "#ebedf0"

// themes holds the light-mode canonical scales. Built once, never written.
var themes = map[string]Scale{
	"github":        {"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"},
	"classic":       {"#eeeeee", "#c6e48b", "#7bc96f", "#239a3b", "#196127"},
	"modern":        {"#f0f0f0", "#b4daff", "#69b4ff", "#007bff", "#0056b3"},
	"nord":          {"#eceff4", "#a3be8c", "#8fbcbb", "#81a1c1", "#5e81ac"},
	"solarized":     {"#eee8d5", "#93a1a1", "#859900", "#b58900", "#cb4b16"},
	"sunset":        {"#fee2e2", "#fecaca", "#f87171", "#dc2626", "#991b1b"},
	"ocean":         {"#e0f2fe", "#7dd3fc", "#0ea5e9", "#0284c7", "#075985"},
	"dracula":       {"#282a36", "#50fa7b", "#6272a4", "#bd93f9", "#ff79c6"},
	"monokai":       {"#272822", "#a6e22e", "#f92672", "#ae81ff", "#fd971f"},
	"one-dark":      {"#282c34", "#98c379", "#e06c75", "#c678dd", "#61afef"},
	"material-dark": {"#263238", "#c3e88d", "#ff5370", "#c792ea", "#82aaff"},
	"tokyo-night":   {"#1a1b26", "#9ece6a", "#f7768e", "#bb9af7", "#7dcfff"},
	"gruvbox":       {"#fbf1c7", "#98971a", "#cc241d", "#b16286", "#458588"},
	"catppuccin":    {"#eff1f5", "#40a02b", "#d20f39", "#8839ef", "#1e66f5"},
}

// darkMappings pins the canonical GitHub greens to GitHub's own dark palette.
var darkMappings = map[string]string{
	"#ebedf0": "#161b22",
	"#9be9a8": "#0e4429",
	"#40c463": "#006d32",
	"#30a14e": "#26a641",
	"#216e39": "#39d353",
}

// darkenFactors scale each channel of unmapped colors in dark mode, per level.
var darkenFactors = [Levels]float64{0.1, 0.2, 0.3, 0.4, 0.5}

// Themes returns the known theme names in sorted order.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the light-mode scale for a theme.
func Lookup(name string) (Scale, bool) {
	s, ok := themes[name]
	return s, ok
}

// IsTheme reports whether name is a known theme.
func IsTheme(name string) bool {
	_, ok := themes[name]
	return ok
}
