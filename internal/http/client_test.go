package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/psa/internal/auth"
	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

func newTestClient(t *testing.T, handler nethttp.Handler, opts ...internalhttp.Option) (*internalhttp.Client, *auth.Manager) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := auth.NewManager()
	sessions.Set(&auth.Session{
		Host:       server.URL,
		Company:    "testco",
		Headers:    auth.APIKeyHeaders("testco", "pub", "priv"),
		APIVersion: "3.0.0",
	})

	return internalhttp.NewClient(server.URL, sessions, opts...), sessions
}

func fastRetries(maxRetries int) internalhttp.Option {
	return internalhttp.WithRetryConfig(internalhttp.RetryConfig{
		MaxRetries: maxRetries,
		WaitMin:    2 * time.Millisecond,
		WaitMax:    100 * time.Millisecond,
	})
}

func TestClientGet(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/test/resource", r.URL.Path)
		assert.Equal(t, "application/vnd.psa+json; version=3.0.0", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))

	resp, err := client.Get(context.Background(), "/test/resource", nil)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id": 1}`, string(resp.Body))
}

func TestClientRequiresSession(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests.Add(1)
	}))
	t.Cleanup(server.Close)

	client := internalhttp.NewClient(server.URL, auth.NewManager())

	_, err := client.Get(context.Background(), "/test", nil)
	require.ErrorIs(t, err, psa.ErrNotConnected)
	assert.Equal(t, int32(0), requests.Load(), "no request should reach the server without a session")
}

func TestClientRejectsExpiredSession(t *testing.T) {
	t.Parallel()

	client, sessions := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		t.Error("expired session must not reach the server")
	}))

	sessions.Set(&auth.Session{
		Headers:   map[string]string{"Authorization": "Basic stale"},
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	_, err := client.Get(context.Background(), "/test", nil)
	require.ErrorIs(t, err, psa.ErrSessionExpired)
}

func TestClientCallerHeadersWin(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "Basic override", r.Header.Get("Authorization"))

		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := client.Do(context.Background(), &internalhttp.Request{
		Method:  nethttp.MethodGet,
		Path:    "/test",
		Headers: map[string]string{"Authorization": "Basic override"},
	})
	require.NoError(t, err)
}

func TestClientRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if requests.Add(1) <= 4 {
			w.WriteHeader(nethttp.StatusInternalServerError)

			return
		}

		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}), fastRetries(5))

	resp, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(5), requests.Load(), "four failures then one success")
}

func TestClientRetryExhaustion(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests.Add(1)
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	}), fastRetries(3))

	start := time.Now()

	_, err := client.Get(context.Background(), "/test", nil)
	require.Error(t, err)

	var exhausted *psa.MaxRetriesExceededError

	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, nethttp.StatusServiceUnavailable, exhausted.StatusCode)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, int32(4), requests.Load(), "initial request plus three retries")

	// Exponential backoff: waits of 2, 4, and 8 milliseconds.
	assert.GreaterOrEqual(t, time.Since(start), 14*time.Millisecond)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests.Add(1)
		w.WriteHeader(nethttp.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "NotFound", "message": "no such record"}`))
	}), fastRetries(5))

	_, err := client.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load(), "4xx responses fail immediately")

	var apiErr *psa.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, nethttp.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.Code)
	assert.Equal(t, "no such record", apiErr.Message)
}

func TestClientDecodesUnauthorized(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": "Unauthorized", "message": "bad key"}`))
	}))

	_, err := client.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.True(t, psa.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "reconnect")
}

func TestClientPostBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "acme", body["name"])

		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7, "name": "acme"}`))
	}))

	resp, err := client.Post(context.Background(), "/test", map[string]string{"name": "acme"})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)
}

func TestGetAllPagesFollowsCursor(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	var serverURL string

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		count := requests.Add(1)

		assert.Equal(t, "forward-only", r.Header.Get("pagination-type"))

		switch count {
		case 1:
			assert.Equal(t, "999", r.URL.Query().Get("pageSize"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p2>; rel="next"`, serverURL))
			_, _ = w.Write([]byte(`[{"id": 1}]`))
		case 2:
			assert.Equal(t, "p2", r.URL.Query().Get("cursor"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p3>; rel="next"`, serverURL))
			_, _ = w.Write([]byte(`[{"id": 2}]`))
		default:
			_, _ = w.Write([]byte(`[{"id": 3}]`))
		}
	}))
	t.Cleanup(server.Close)

	serverURL = server.URL

	sessions := auth.NewManager()
	sessions.Set(&auth.Session{Headers: auth.APIKeyHeaders("testco", "pub", "priv")})

	client := internalhttp.NewClient(server.URL, sessions)

	pages, err := client.GetAllPages(context.Background(), "/items", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, int32(3), requests.Load(), "one request per page")
	assert.JSONEq(t, `[{"id": 1}]`, string(pages[0]))
	assert.JSONEq(t, `[{"id": 3}]`, string(pages[2]))
}

func TestGetAllPagesRequiresLinkHeader(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`[{"id": 1}]`))
	}))

	_, err := client.GetAllPages(context.Background(), "/items", nil)
	require.Error(t, err)

	var unsupported *psa.PaginationUnsupportedError

	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "/items", unsupported.Path)
	assert.Equal(t, int32(1), requests.Load(), "no speculative second request")
}

func TestGetAllPagesAbortsOnPageFailure(t *testing.T) {
	t.Parallel()

	var serverURL string

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("cursor") == "p2" {
			w.WriteHeader(nethttp.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": "BadRequest", "message": "cursor expired"}`))

			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p2>; rel="next"`, serverURL))
		_, _ = w.Write([]byte(`[{"id": 1}]`))
	}))
	t.Cleanup(server.Close)

	serverURL = server.URL

	sessions := auth.NewManager()
	sessions.Set(&auth.Session{Headers: auth.APIKeyHeaders("testco", "pub", "priv")})

	client := internalhttp.NewClient(server.URL, sessions)

	pages, err := client.GetAllPages(context.Background(), "/items", nil)
	require.Error(t, err)
	assert.Nil(t, pages, "no partial result on failure")

	var apiErr *psa.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, nethttp.StatusBadRequest, apiErr.StatusCode)
}

func TestClientCachesGetResponses(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	manager := psa.NewCacheManager(psa.NewMemoryCache(100), nil)

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"id": 1}`))
	}), internalhttp.WithCache(manager))

	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id": 1}`, string(resp.Body))
	}

	assert.Equal(t, int32(1), requests.Load(), "repeat reads served from cache")
	assert.Equal(t, int64(2), manager.GetStats().Hits)
}

func TestCacheDoesNotServeDisconnectedClient(t *testing.T) {
	t.Parallel()

	manager := psa.NewCacheManager(psa.NewMemoryCache(100), nil)

	client, sessions := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"id": 1}`))
	}), internalhttp.WithCache(manager))

	_, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)

	require.NoError(t, sessions.Clear())

	_, err = client.Get(context.Background(), "/test", nil)
	require.ErrorIs(t, err, psa.ErrNotConnected, "a cached response must not mask the missing session")
}

func TestGetAllPagesBypassesCache(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	var serverURL string

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("cursor") == "" {
			requests.Add(1)
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p2>; rel="next"`, serverURL))
			_, _ = w.Write([]byte(`[{"id": 1}]`))

			return
		}

		requests.Add(1)
		_, _ = w.Write([]byte(`[{"id": 2}]`))
	}))
	t.Cleanup(server.Close)

	serverURL = server.URL

	sessions := auth.NewManager()
	sessions.Set(&auth.Session{Headers: auth.APIKeyHeaders("testco", "pub", "priv")})

	manager := psa.NewCacheManager(psa.NewMemoryCache(100), nil)
	client := internalhttp.NewClient(server.URL, sessions, internalhttp.WithCache(manager))

	// A cached first page would lose the Link header and make the second
	// run look like the endpoint has no cursor support.
	for i := 0; i < 2; i++ {
		pages, err := client.GetAllPages(context.Background(), "/items", nil)
		require.NoError(t, err)
		assert.Len(t, pages, 2)
	}

	assert.Equal(t, int32(4), requests.Load(), "pagination pages are never cached")
}

func TestGetAllPagesRunsInterceptorsPerPage(t *testing.T) {
	t.Parallel()

	var serverURL string

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "batch-sync", r.Header.Get("X-Request-Source"))

		switch r.URL.Query().Get("cursor") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p2>; rel="next"`, serverURL))
		case "p2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?cursor=p3>; rel="next"`, serverURL))
		}

		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	serverURL = server.URL

	sessions := auth.NewManager()
	sessions.Set(&auth.Session{Headers: auth.APIKeyHeaders("testco", "pub", "priv")})

	var intercepted atomic.Int32

	chain := psa.NewInterceptorChain()
	chain.AddRequestInterceptor(func(ctx context.Context, req *psa.Request) error {
		intercepted.Add(1)

		return nil
	})
	chain.AddRequestInterceptor(psa.HeaderInterceptor(map[string]string{"X-Request-Source": "batch-sync"}))

	client := internalhttp.NewClient(server.URL, sessions, internalhttp.WithInterceptors(chain))

	pages, err := client.GetAllPages(context.Background(), "/items", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, int32(3), intercepted.Load(), "every cursor page passes the interceptor chain")
}
