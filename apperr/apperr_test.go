package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFindsWrappedError(t *testing.T) {
	base := NotFound("Target user not found")
	wrapped := fmt.Errorf("record like: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeNotFound, got.Code())
	assert.True(t, Is(wrapped, CodeNotFound))
}

func TestUnclassifiedErrorsAreStoreErrors(t *testing.T) {
	err := errors.New("socket closed")

	assert.Nil(t, As(err))
	assert.Equal(t, CodeStore, CodeOf(err))
	assert.False(t, Is(nil, CodeStore))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	storeErr := Store(errors.New("connection refused"), "insert message")
	assert.Equal(t, "Something went wrong, please try again", storeErr.PublicMessage())
	assert.Contains(t, storeErr.Error(), "connection refused")
	assert.ErrorIs(t, storeErr, storeErr.Unwrap())

	v := Validation("age is required")
	assert.Equal(t, "age is required", v.PublicMessage())

	auth := InvalidCredentials()
	assert.Equal(t, "Invalid credentials", auth.PublicMessage())
}

func TestMetadataStatuses(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeAuth:          http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeUnavailable:   http.StatusServiceUnavailable,
		CodeStore:         http.StatusInternalServerError,
		Code("SOMETHING"): http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, MetadataFor(code).HTTPStatus, code)
	}
}
