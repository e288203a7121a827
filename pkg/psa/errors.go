package psa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError represents a decoded application error from the PSA API.
type APIError struct {
	StatusCode  int      `json:"status_code" yaml:"status_code"`
	Code        string   `json:"code"        yaml:"code"`
	Message     string   `json:"message"     yaml:"message"`
	FieldErrors []string `json:"errors"      yaml:"errors"`
	// Raw holds the response body verbatim when it could not be parsed
	// as the JSON error envelope.
	Raw string `json:"-" yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Code == CodeUnauthorized:
		return fmt.Sprintf("%s: %s (status %d) - session rejected, reconnect with fresh credentials", e.Code, e.Message, e.StatusCode)
	case e.Code != "" || e.Message != "":
		msg := fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
		if len(e.FieldErrors) > 0 {
			msg += "; " + strings.Join(e.FieldErrors, "; ")
		}

		return msg
	case e.Raw != "":
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Raw)
	default:
		return fmt.Sprintf("api error (status %d)", e.StatusCode)
	}
}

// CodeUnauthorized is the application error code the API returns when the
// session headers are rejected. It indicates stale credentials, never a
// transient condition, so it is excluded from retry.
const CodeUnauthorized = "Unauthorized"

// errorEnvelope is the wire shape of a non-2xx JSON body.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ParseAPIError decodes a non-2xx response body into an APIError. A body
// that is not the JSON envelope is kept verbatim in Raw.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil || (envelope.Code == "" && envelope.Message == "") {
		apiErr.Raw = strings.TrimSpace(string(body))

		return apiErr
	}

	apiErr.Code = envelope.Code
	apiErr.Message = envelope.Message

	for _, fieldErr := range envelope.Errors {
		apiErr.FieldErrors = append(apiErr.FieldErrors, fieldErr.Message)
	}

	return apiErr
}

// AuthError indicates a failed authentication attempt. The session is never
// populated when an AuthError is returned.
type AuthError struct {
	// Mode names the credential mode that failed ("api key", "integrator",
	// "cookie").
	Mode string
	Err  error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.Mode, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// PaginationUnsupportedError indicates an endpoint was asked for forward-only
// pagination but its first response carried no Link header at all.
type PaginationUnsupportedError struct {
	Path string
}

// Error implements the error interface.
func (e *PaginationUnsupportedError) Error() string {
	return fmt.Sprintf("endpoint %s does not support forward-only pagination: no Link header in response", e.Path)
}

// MaxRetriesExceededError indicates the transport exhausted its retry budget
// on transient server errors.
type MaxRetriesExceededError struct {
	// StatusCode is the last HTTP status seen before giving up.
	StatusCode int
	// Attempts is the total number of requests issued, including the first.
	Attempts int
	// Err is the last transport error, if the failure was not an HTTP status.
	Err error
}

// Error implements the error interface.
func (e *MaxRetriesExceededError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
	}

	return fmt.Sprintf("giving up after %d attempts: last status %d", e.Attempts, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *MaxRetriesExceededError) Unwrap() error {
	return e.Err
}

// Static errors.
var (
	// ErrNotConnected is returned by the transport when no session exists.
	ErrNotConnected = errors.New("not connected: call Connect before issuing requests")

	// ErrSessionExpired is returned when the stored session's expiration
	// has passed. The session is never silently reused.
	ErrSessionExpired = errors.New("session expired: reconnect to obtain fresh credentials")

	// ErrNoCredentials indicates no credential mode was fully supplied.
	ErrNoCredentials = errors.New("no credential mode supplied: provide an API key pair, integrator account, or username/password")

	// ErrAmbiguousCredentials indicates more than one credential mode was
	// fully supplied.
	ErrAmbiguousCredentials = errors.New("ambiguous credentials: supply exactly one credential mode")

	// ErrInvalidOrderDirection rejects orderBy directions other than
	// "asc" or "desc" before any request is sent.
	ErrInvalidOrderDirection = errors.New(`orderBy direction must be "asc" or "desc"`)

	// ErrNoSessionCookie indicates a cookie-mode login response carried no
	// session cookie.
	ErrNoSessionCookie = errors.New("login response carried no session cookie")

	// ErrEmptyTokenResponse indicates the member token endpoint returned
	// no body during impersonation.
	ErrEmptyTokenResponse = errors.New("token endpoint returned an empty response")

	// ErrProbeFailed indicates the post-connect system info probe returned
	// an empty body.
	ErrProbeFailed = errors.New("system info probe returned no data")

	// ErrSessionNotCleared is a defensive check: Disconnect failed to
	// actually remove the session state.
	ErrSessionNotCleared = errors.New("session state survived disconnect")

	// ErrConfigRequired is returned by constructors given a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrHostRequired is returned by constructors given no server host.
	ErrHostRequired = errors.New("server host is required")

	// ErrCompanyRequired is returned by constructors given no company
	// identifier.
	ErrCompanyRequired = errors.New("company identifier is required")
)

// IsNotConnected reports whether err means no usable session exists.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrSessionExpired)
}

// IsUnauthorized reports whether err is an application Unauthorized error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeUnauthorized
	}

	return false
}

// IsNotFound reports whether err is an HTTP 404 application error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}

// IsUsage reports whether err is a caller usage error rather than a
// transport or API failure.
func IsUsage(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrAmbiguousCredentials) ||
		errors.Is(err, ErrInvalidOrderDirection)
}
