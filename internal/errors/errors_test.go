package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUpstream, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).HTTPStatus())
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeForStatus(http.StatusBadRequest))
	assert.Equal(t, CodeValidation, CodeForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, CodeNotFound, CodeForStatus(http.StatusNotFound))
	assert.Equal(t, CodeRateLimited, CodeForStatus(http.StatusTooManyRequests))
	assert.Equal(t, CodeUpstream, CodeForStatus(http.StatusBadGateway))
	assert.Equal(t, CodeInternal, CodeForStatus(http.StatusTeapot))
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validationf("bad value %d", 3)

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))
	assert.Equal(t, "bad value 3", err.Error())
}

func TestWrap_PreservesCause(t *testing.T) {
	sentinel := stderrors.New("invalid color")
	err := Wrapf(sentinel, CodeValidation, "color %q rejected", "zz")

	assert.True(t, Is(err, sentinel))
	assert.True(t, Is(err, ErrValidation))
	assert.Equal(t, `color "zz" rejected: invalid color`, err.Error())

	outer := fmt.Errorf("render: %w", err)
	assert.True(t, Is(outer, sentinel))
	assert.Equal(t, CodeValidation, CodeOf(outer))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("boom")))
}

func TestWithDetails(t *testing.T) {
	base := ValidationWithDetails("validation failed", map[string]string{"theme": "is invalid"})
	withCause := base.WithCause(stderrors.New("cause"))
	withDetails := withCause.WithDetails("other")

	assert.Equal(t, map[string]string{"theme": "is invalid"}, base.Details)
	assert.Equal(t, "other", withDetails.Details)
	assert.Equal(t, "validation failed: cause", withDetails.Error())
}
