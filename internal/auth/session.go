// Package auth holds the session state and credential handling for the PSA
// API: Basic header construction for API key and integrator credentials,
// cookie sessions, and the session lifecycle.
package auth

import (
	"encoding/base64"
	"fmt"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/psa/pkg/psa"
)

// Header names used by the API.
const (
	// HeaderAuthorization carries the Basic credential.
	HeaderAuthorization = "Authorization"

	// HeaderAccept pins the versioned vendor media type.
	HeaderAccept = "Accept"

	// HeaderUserType marks integrator-account and impersonated-member
	// sessions.
	HeaderUserType = "x-psa-usertype"
)

// User type header values.
const (
	UserTypeIntegrator = "integrator"
	UserTypeMember     = "member"
)

// Session is the authenticated state consulted by every transport call.
// Created by Connect, mutated only by reconnect or Disconnect.
type Session struct {
	// Host is the normalized server host, without scheme or path.
	Host string
	// Company is the tenant identifier.
	Company string
	// Headers are merged into every outgoing request.
	Headers map[string]string
	// Cookies carry the login session in cookie mode; nil otherwise.
	Cookies []*nethttp.Cookie
	// ExpiresAt is when the session's credentials lapse; zero means no
	// known expiry.
	ExpiresAt time.Time
	// APIVersion is the negotiated API version.
	APIVersion string
}

// Expired reports whether a known expiry has passed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Clone returns a deep copy, so callers can't mutate stored state.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Headers = make(map[string]string, len(s.Headers))

	for key, value := range s.Headers {
		clone.Headers[key] = value
	}

	clone.Cookies = append([]*nethttp.Cookie(nil), s.Cookies...)

	return &clone
}

// Manager owns one client instance's session. It performs no locking around
// mutation: callers must not Connect concurrently with in-flight requests.
type Manager struct {
	session *Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{}
}

// Active returns the current session, or a classification of why there is
// none: psa.ErrNotConnected when never connected, psa.ErrSessionExpired
// when the stored expiry has passed. An expired session is never reused.
func (m *Manager) Active() (*Session, error) {
	if m.session == nil {
		return nil, psa.ErrNotConnected
	}

	if m.session.Expired() {
		return nil, psa.ErrSessionExpired
	}

	return m.session, nil
}

// Connected reports whether a non-expired session exists.
func (m *Manager) Connected() bool {
	_, err := m.Active()

	return err == nil
}

// Set installs a new session.
func (m *Manager) Set(session *Session) {
	m.session = session
}

// Clear removes the session. Idempotent; the error is a defensive check
// that the state was actually removed.
func (m *Manager) Clear() error {
	m.session = nil

	if m.session != nil {
		return psa.ErrSessionNotCleared
	}

	return nil
}

// Mode identifies which credential variant a Config supplies.
type Mode string

// Credential modes.
const (
	ModeAPIKey     Mode = "api key"
	ModeIntegrator Mode = "integrator"
	ModeCookie     Mode = "cookie"
)

// DetectMode finds the one fully-supplied credential mode in config.
// Zero or more than one is a caller usage error.
func DetectMode(config *psa.Config) (Mode, error) {
	var modes []Mode

	if config.PublicKey != "" && config.PrivateKey != "" {
		modes = append(modes, ModeAPIKey)
	}

	if config.IntegratorUsername != "" && config.IntegratorPassword != "" {
		modes = append(modes, ModeIntegrator)
	}

	if config.Username != "" && config.Password != "" {
		modes = append(modes, ModeCookie)
	}

	switch len(modes) {
	case 0:
		return "", psa.ErrNoCredentials
	case 1:
		return modes[0], nil
	default:
		return "", fmt.Errorf("%w: got %d modes", psa.ErrAmbiguousCredentials, len(modes))
	}
}

// NormalizeHost strips a scheme and any path from a free-form host value.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)

	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}

	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}

	return strings.TrimSuffix(host, "/")
}

// BasicCredential renders the API's Basic scheme:
// base64(company+"+"+user:pass).
func BasicCredential(company, user, pass string) string {
	raw := company + "+" + user + ":" + pass

	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// AcceptHeader renders the versioned vendor media type.
func AcceptHeader(mediaType, version string) string {
	return mediaType + "; version=" + version
}

// APIKeyHeaders builds the headers for API key mode.
func APIKeyHeaders(company, publicKey, privateKey string) map[string]string {
	return map[string]string{
		HeaderAuthorization: BasicCredential(company, publicKey, privateKey),
	}
}

// IntegratorHeaders builds the headers for integrator mode, including the
// marker identifying the caller as an integrator account.
func IntegratorHeaders(company, username, password string) map[string]string {
	return map[string]string{
		HeaderAuthorization: BasicCredential(company, username, password),
		HeaderUserType:      UserTypeIntegrator,
	}
}

// MemberTokenHeaders builds the headers for an impersonated member session
// from the key pair issued by the token endpoint.
func MemberTokenHeaders(company, publicKey, privateKey string) map[string]string {
	return map[string]string{
		HeaderAuthorization: BasicCredential(company, publicKey, privateKey),
		HeaderUserType:      UserTypeMember,
	}
}

// TokenCredentials is the key pair issued by the member token endpoint.
type TokenCredentials struct {
	PublicKey  string    `json:"publicKey"`
	PrivateKey string    `json:"privateKey"`
	Expiration time.Time `json:"expiration"`
}
