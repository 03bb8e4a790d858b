package color

import (
	"regexp"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
)

var validHex = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func assertValidScale(t *testing.T, s Scale) {
	t.Helper()
	for i, c := range s {
		assert.Regexp(t, validHex, c, "index %d", i)
	}
}

func TestResolve_EveryThemeBothModes(t *testing.T) {
	for _, name := range Themes() {
		t.Run(name, func(t *testing.T) {
			light, err := Resolve(name, ModeLight, "")
			require.NoError(t, err)
			assertValidScale(t, light)

			base, _ := Lookup(name)
			assert.Equal(t, base, light)

			dark, err := Resolve(name, ModeDark, "")
			require.NoError(t, err)
			assertValidScale(t, dark)

			again, err := Resolve(name, ModeDark, "")
			require.NoError(t, err)
			assert.Equal(t, dark, again)
		})
	}
}

func TestResolve_DarkDoesNotMutateTable(t *testing.T) {
	before, _ := Lookup("nord")

	_, err := Resolve("nord", ModeDark, "")
	require.NoError(t, err)

	after, _ := Lookup("nord")
	assert.Equal(t, before, after)
}

func TestResolve_GithubDarkUsesCanonicalPalette(t *testing.T) {
	got, err := Resolve("github", ModeDark, "")
	require.NoError(t, err)

	assert.Equal(t, Scale{"#161b22", "#0e4429", "#006d32", "#26a641", "#39d353"}, got)
}

func TestDark_UnmappedColorsScaleByLevel(t *testing.T) {
	got := Dark(Scale{"#282a36", "#ffffff", "#ffffff", "#ffffff", "#ffffff"})

	assert.Equal(t, "#040405", got[0])
	assert.Equal(t, "#333333", got[1])
	assert.Equal(t, "#808080", got[4])
	assert.Equal(t, "#000000", Dark(Scale{"nonsense"})[0])
}

func TestResolve_UnknownTheme(t *testing.T) {
	_, err := Resolve("neon", ModeLight, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestResolve_CustomColorIgnoresThemeAndMode(t *testing.T) {
	want, err := Shades("ff6b6b")
	require.NoError(t, err)

	for _, theme := range []string{"github", "dracula", "not-a-theme"} {
		for _, mode := range []Mode{ModeLight, ModeDark} {
			plain, err := Resolve(theme, mode, "ff6b6b")
			require.NoError(t, err)
			hashed, err := Resolve(theme, mode, "#ff6b6b")
			require.NoError(t, err)

			assert.Equal(t, want, plain)
			assert.Equal(t, plain, hashed)
		}
	}
}

func TestShades(t *testing.T) {
	s, err := Shades("#FF6B6B")
	require.NoError(t, err)

	assertValidScale(t, s)
	assert.Equal(t, EmptyColor, s[0])
	assert.Equal(t, "#ff6b6b", s[4])

	// Lightness falls monotonically from level 1 to level 4.
	prev := 101.0
	for i := 1; i < Levels; i++ {
		c, err := colorful.Hex(s[i])
		require.NoError(t, err)
		l, _, _ := c.Lab()
		assert.Less(t, l*100, prev, "level %d", i)
		prev = l * 100
	}
}

func TestShades_BlackKeepsNeutralEmpty(t *testing.T) {
	s, err := Shades("000000")
	require.NoError(t, err)

	assert.Equal(t, "#000000", s[4])
	assert.Equal(t, EmptyColor, s[0])
	assert.NotEqual(t, s[3], s[4])
}

func TestShades_InvalidColor(t *testing.T) {
	for _, in := range []string{"", "#fff", "12345g", "ff6b6b00", "#ff 6b6", "red"} {
		t.Run(in, func(t *testing.T) {
			_, err := Shades(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidColor)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeLight},
		{in: "light", want: ModeLight},
		{in: "DARK", want: ModeDark},
		{in: "dim", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidMode)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestThemes(t *testing.T) {
	names := Themes()

	assert.Len(t, names, 14)
	assert.IsIncreasing(t, names)
	assert.True(t, IsTheme(DefaultTheme))
	assert.False(t, IsTheme("github-dark"))
}
