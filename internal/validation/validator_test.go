package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
	"github.com/contribgraph/contribgraph-server/internal/validation"
)

type chartRequest struct {
	Username string `json:"username" validate:"required,ghuser"`
	Theme    string `json:"theme" validate:"omitempty,theme"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	Preset   string `json:"preset" validate:"omitempty,preset"`
	Format   string `json:"format" validate:"omitempty,oneof=svg png"`
	Year     int    `json:"year" validate:"omitempty,gte=2008,lte=2100"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := chartRequest{
		Username: "octo-cat",
		Theme:    "ocean",
		Color:    "#FF5733",
		Preset:   "classic",
		Format:   "png",
		Year:     2024,
	}

	assert.NoError(t, v.Validate(req))
	assert.NoError(t, v.Validate(chartRequest{Username: "octocat"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       chartRequest
		wantField string
	}{
		{name: "missing username", req: chartRequest{}, wantField: "username"},
		{name: "username with underscore", req: chartRequest{Username: "octo_cat"}, wantField: "username"},
		{name: "username leading hyphen", req: chartRequest{Username: "-octocat"}, wantField: "username"},
		{name: "unknown theme", req: chartRequest{Username: "octocat", Theme: "neon"}, wantField: "theme"},
		{name: "short color", req: chartRequest{Username: "octocat", Color: "fff"}, wantField: "color"},
		{name: "unknown preset", req: chartRequest{Username: "octocat", Preset: "fancy"}, wantField: "preset"},
		{name: "unknown format", req: chartRequest{Username: "octocat", Format: "gif"}, wantField: "format"},
		{name: "year too early", req: chartRequest{Username: "octocat", Year: 1999}, wantField: "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Message, tt.wantField)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_MessageIsStable(t *testing.T) {
	v := validation.New()

	err := v.Validate(chartRequest{Username: "octocat", Format: "gif", Color: "#12"})
	require.Error(t, err)

	assert.Equal(t,
		"invalid parameters: color must be a six-digit hex color; format must be one of: svg png",
		err.Error())
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(chartRequest{Username: "octocat", Color: "nothex"})
	require.Error(t, err)

	// Should use JSON tag name "color", not struct field name "Color"
	assert.Contains(t, err.Error(), "color")
	assert.NotContains(t, err.Error(), "Color")
}
