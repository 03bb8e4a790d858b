package color

import (
	"errors"
	"regexp"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
)

// Mode selects the light or dark variant of a theme.
type Mode string

// Supported modes.
const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Sentinel causes, always returned wrapped in a VALIDATION domain error.
var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidMode  = errors.New("invalid mode")
)

// White-mix factors for levels 1-3 of a custom scale. Level 4 is the base color.
var tintFactors = [3]float64{0.85, 0.7, 0.4}

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

var white = colorful.Color{R: 1, G: 1, B: 1}

// ParseMode validates a mode string. The empty string means light.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	default:
		return "", domainerrors.Wrapf(ErrInvalidMode, domainerrors.CodeValidation, "mode %q must be light or dark", s)
	}
}

// Resolve returns the color scale for a render.
//
// A non-empty custom color wins over theme and mode: it is expanded with
// Shades and is not passed through the dark transform. Otherwise the theme's
// light scale is looked up and, for ModeDark, converted with Dark. Unknown
// themes are rejected with ErrInvalidTheme rather than silently replaced.
func Resolve(theme string, mode Mode, custom string) (Scale, error) {
	if custom != "" {
		return Shades(custom)
	}

	base, ok := Lookup(theme)
	if !ok {
		return Scale{}, domainerrors.Wrapf(ErrInvalidTheme, domainerrors.CodeValidation, "unknown theme %q", theme)
	}

	if mode == ModeDark {
		return Dark(base), nil
	}
	return base, nil
}

// ParseHex parses a six-digit RGB hex string with or without a leading '#'.
func ParseHex(s string) (colorful.Color, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !hexPattern.MatchString(digits) {
		return colorful.Color{}, domainerrors.Wrapf(ErrInvalidColor, domainerrors.CodeValidation, "color %q is not a 6-digit hex value", s)
	}

	c, err := colorful.Hex("#" + strings.ToLower(digits))
	if err != nil {
		return colorful.Color{}, domainerrors.Wrapf(ErrInvalidColor, domainerrors.CodeValidation, "color %q is not a 6-digit hex value", s)
	}
	return c, nil
}

// Shades expands a base color into a five-level scale: the neutral
// EmptyColor, three tints mixed toward white by decreasing amounts, and the
// base color itself.
func Shades(base string) (Scale, error) {
	c, err := ParseHex(base)
	if err != nil {
		return Scale{}, err
	}

	var s Scale
	s[0] = EmptyColor
	for i, f := range tintFactors {
		s[i+1] = c.BlendRgb(white, f).Hex()
	}
	s[Levels-1] = c.Hex()
	return s, nil
}

// Dark converts a light scale to its dark-mode counterpart. Colors with a
// canonical dark equivalent are mapped directly; the rest have every channel
// scaled by a per-level factor so higher levels stay brighter. Input that is
// not valid hex maps to black.
func Dark(light Scale) Scale {
	var out Scale
	for i, hex := range light {
		out[i] = darkColor(hex, i)
	}
	return out
}

func darkColor(hex string, level int) string {
	key := strings.ToLower(hex)
	if mapped, ok := darkMappings[key]; ok {
		return mapped
	}

	c, err := ParseHex(key)
	if err != nil {
		return "#000000"
	}

	f := darkenFactors[level]
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}.Hex()
}
