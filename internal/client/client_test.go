package client

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/psa/internal/auth"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const systemInfoBody = `{"version": "v2026.1", "isCloud": true, "serverTimeZone": "UTC"}`

func apiKeyConfig() *psa.Config {
	return &psa.Config{PublicKey: "pub", PrivateKey: "priv"}
}

func TestConnectAPIKey(t *testing.T) {
	t.Parallel()

	var probes atomic.Int32

	apiClient := newTestClient(t, apiKeyConfig(), nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		require.Equal(t, "/system/info", r.URL.Path)
		probes.Add(1)

		assert.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get(auth.HeaderUserType))

		_, _ = w.Write([]byte(systemInfoBody))
	}))

	require.NoError(t, apiClient.Connect(context.Background()))
	assert.True(t, apiClient.Connected())
	assert.Equal(t, int32(1), probes.Load(), "connect probes once")

	// A second Connect with a live session stays off the network.
	require.NoError(t, apiClient.Connect(context.Background()))
	assert.Equal(t, int32(1), probes.Load())

	// Reconnect forces a fresh probe.
	require.NoError(t, apiClient.Reconnect(context.Background()))
	assert.Equal(t, int32(2), probes.Load())
}

func TestConnectRejectedCredentials(t *testing.T) {
	t.Parallel()

	apiClient := newTestClient(t, apiKeyConfig(), nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": "Unauthorized", "message": "invalid key"}`))
	}))

	err := apiClient.Connect(context.Background())
	require.Error(t, err)

	var authErr *psa.AuthError

	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "api key", authErr.Mode)
	assert.False(t, apiClient.Connected(), "failed probe leaves no session behind")
}

func TestConnectValidatesCredentialModes(t *testing.T) {
	t.Parallel()

	apiClient := newTestClient(t, &psa.Config{}, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		t.Error("usage errors must not reach the server")
	}))

	err := apiClient.Connect(context.Background())
	require.ErrorIs(t, err, psa.ErrNoCredentials)

	ambiguous := newTestClient(t, &psa.Config{
		PublicKey: "pub", PrivateKey: "priv",
		Username: "user", Password: "secret",
	}, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		t.Error("usage errors must not reach the server")
	}))

	err = ambiguous.Connect(context.Background())
	require.ErrorIs(t, err, psa.ErrAmbiguousCredentials)
}

func TestConnectIntegratorWarnsDeprecated(t *testing.T) {
	t.Parallel()

	logger := &captureLogger{}
	config := &psa.Config{
		IntegratorUsername: "intg",
		IntegratorPassword: "secret",
		Logger:             logger,
	}

	apiClient := newTestClient(t, config, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, auth.UserTypeIntegrator, r.Header.Get(auth.HeaderUserType))
		_, _ = w.Write([]byte(systemInfoBody))
	}))

	require.NoError(t, apiClient.Connect(context.Background()))
	require.NotEmpty(t, logger.warnings)
	assert.Contains(t, logger.warnings[0], "deprecated")
}

func TestConnectIntegratorImpersonatesMember(t *testing.T) {
	t.Parallel()

	config := &psa.Config{
		IntegratorUsername: "intg",
		IntegratorPassword: "secret",
		MemberID:           "jdoe",
	}

	apiClient := newTestClient(t, config, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/system/members/jdoe/tokens":
			require.Equal(t, nethttp.MethodPost, r.Method)
			assert.Equal(t, auth.UserTypeIntegrator, r.Header.Get(auth.HeaderUserType))

			_ = json.NewEncoder(w).Encode(auth.TokenCredentials{
				PublicKey:  "member-pub",
				PrivateKey: "member-priv",
				Expiration: time.Now().Add(time.Hour),
			})
		case "/system/info":
			assert.Equal(t, auth.UserTypeMember, r.Header.Get(auth.HeaderUserType))
			_, _ = w.Write([]byte(systemInfoBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	require.NoError(t, apiClient.Connect(context.Background()))
	assert.True(t, apiClient.Connected())
}

func TestConnectIntegratorEmptyTokenResponse(t *testing.T) {
	t.Parallel()

	config := &psa.Config{
		IntegratorUsername: "intg",
		IntegratorPassword: "secret",
		MemberID:           "jdoe",
	}

	apiClient := newTestClient(t, config, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	err := apiClient.Connect(context.Background())
	require.ErrorIs(t, err, psa.ErrEmptyTokenResponse)
	assert.False(t, apiClient.Connected())
}

func TestConnectCookieMode(t *testing.T) {
	t.Parallel()

	config := &psa.Config{Username: "user", Password: "secret"}

	apiClient := newTestClient(t, config, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/login":
			var body map[string]string

			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user", body["username"])
			assert.Equal(t, "testco", body["companyId"])

			nethttp.SetCookie(w, &nethttp.Cookie{Name: "psa-session", Value: "s3cr3t"})
			w.WriteHeader(nethttp.StatusOK)
		case "/system/info":
			cookie, err := r.Cookie("psa-session")
			require.NoError(t, err)
			assert.Equal(t, "s3cr3t", cookie.Value)
			assert.Empty(t, r.Header.Get("Authorization"), "cookie mode sends no Authorization header")

			_, _ = w.Write([]byte(systemInfoBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	require.NoError(t, apiClient.Connect(context.Background()))
	assert.True(t, apiClient.Connected())
}

func TestConnectCookieModeRequiresCookie(t *testing.T) {
	t.Parallel()

	config := &psa.Config{Username: "user", Password: "secret"}

	apiClient := newTestClient(t, config, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))

	err := apiClient.Connect(context.Background())
	require.ErrorIs(t, err, psa.ErrNoSessionCookie)
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	apiClient := newTestClient(t, apiKeyConfig(), nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(systemInfoBody))
	}))

	require.NoError(t, apiClient.Connect(context.Background()))
	require.NoError(t, apiClient.Disconnect())
	assert.False(t, apiClient.Connected())

	// Disconnect is idempotent.
	require.NoError(t, apiClient.Disconnect())

	_, err := apiClient.SystemInfo(context.Background())
	require.ErrorIs(t, err, psa.ErrNotConnected)
}

func TestSystemInfoRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	apiClient := newTestClient(t, apiKeyConfig(), nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	err := apiClient.Connect(context.Background())
	require.ErrorIs(t, err, psa.ErrProbeFailed)
}
