package psa_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/psa/pkg/psa"
)

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"code": "InvalidObject",
		"message": "company was invalid",
		"errors": [
			{"message": "name is required"},
			{"message": "site is required"}
		]
	}`)

	err := psa.ParseAPIError(http.StatusBadRequest, body)

	var apiErr *psa.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "InvalidObject", apiErr.Code)
	assert.Equal(t, "company was invalid", apiErr.Message)
	assert.Equal(t, []string{"name is required", "site is required"}, apiErr.FieldErrors)
}

func TestParseAPIErrorMalformedBody(t *testing.T) {
	t.Parallel()

	err := psa.ParseAPIError(http.StatusBadGateway, []byte("upstream exploded"))

	var apiErr *psa.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Raw)
	assert.Contains(t, apiErr.Error(), "502")
}

func TestAPIErrorUnauthorizedMessage(t *testing.T) {
	t.Parallel()

	err := psa.ParseAPIError(http.StatusUnauthorized, []byte(`{"code": "Unauthorized", "message": "nope"}`))
	assert.Contains(t, err.Error(), "reconnect")
	assert.True(t, psa.IsUnauthorized(err))
}

func TestIsNotConnected(t *testing.T) {
	t.Parallel()

	assert.True(t, psa.IsNotConnected(psa.ErrNotConnected))
	assert.True(t, psa.IsNotConnected(psa.ErrSessionExpired))
	assert.True(t, psa.IsNotConnected(fmt.Errorf("wrapped: %w", psa.ErrNotConnected)))
	assert.False(t, psa.IsNotConnected(errors.New("other")))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	notFound := psa.ParseAPIError(http.StatusNotFound, []byte(`{"code": "NotFound", "message": "gone"}`))
	assert.True(t, psa.IsNotFound(notFound))

	badRequest := psa.ParseAPIError(http.StatusBadRequest, []byte(`{}`))
	assert.False(t, psa.IsNotFound(badRequest))
}

func TestAuthErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := &psa.AuthError{Mode: "cookie", Err: psa.ErrNoSessionCookie}
	require.ErrorIs(t, err, psa.ErrNoSessionCookie)
	assert.Contains(t, err.Error(), "cookie")
}

func TestMaxRetriesExceededError(t *testing.T) {
	t.Parallel()

	err := &psa.MaxRetriesExceededError{StatusCode: http.StatusServiceUnavailable, Attempts: 4}
	assert.Contains(t, err.Error(), "4 attempts")
	assert.Contains(t, err.Error(), "503")

	transport := &psa.MaxRetriesExceededError{Attempts: 3, Err: errors.New("connection refused")}
	assert.Contains(t, transport.Error(), "connection refused")
}

func TestPaginationUnsupportedError(t *testing.T) {
	t.Parallel()

	err := &psa.PaginationUnsupportedError{Path: "/service/tickets"}
	assert.Contains(t, err.Error(), "/service/tickets")
	assert.Contains(t, err.Error(), "Link")
}
