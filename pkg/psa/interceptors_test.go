package psa_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/psa/pkg/psa"
)

func TestInterceptorChainOrder(t *testing.T) {
	t.Parallel()

	chain := psa.NewInterceptorChain()

	var order []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *psa.Request) error {
		order = append(order, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *psa.Request) error {
		order = append(order, "second")

		return nil
	})

	req := &psa.Request{Method: http.MethodGet, Path: "/test", Headers: http.Header{}}
	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInterceptorChainStopsOnError(t *testing.T) {
	t.Parallel()

	chain := psa.NewInterceptorChain()
	boom := errors.New("boom")

	chain.AddRequestInterceptor(func(ctx context.Context, req *psa.Request) error {
		return boom
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *psa.Request) error {
		t.Error("interceptor after a failure must not run")

		return nil
	})

	req := &psa.Request{Method: http.MethodGet, Path: "/test", Headers: http.Header{}}
	err := chain.ExecuteRequestInterceptors(context.Background(), req)
	require.ErrorIs(t, err, boom)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := psa.HeaderInterceptor(map[string]string{"X-Request-Source": "batch-sync"})

	req := &psa.Request{Method: http.MethodGet, Path: "/test", Headers: http.Header{}}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "batch-sync", req.Headers.Get("X-Request-Source"))
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	interceptor, stop := psa.RateLimitInterceptor(2)
	defer stop()

	req := &psa.Request{Method: http.MethodGet, Path: "/test", Headers: http.Header{}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, interceptor(ctx, req))
	require.NoError(t, interceptor(ctx, req))

	// The bucket is spent; the third call waits until the context dies.
	err := interceptor(ctx, req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitInterceptorStopEndsRefill(t *testing.T) {
	t.Parallel()

	// Refill interval is 50ms at this rate.
	interceptor, stop := psa.RateLimitInterceptor(20)
	req := &psa.Request{Method: http.MethodGet, Path: "/test", Headers: http.Header{}}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()

	for i := 0; i < 20; i++ {
		require.NoError(t, interceptor(drainCtx, req))
	}

	stop()
	stop() // idempotent

	// A tick already in flight when stop lands may deliver one final
	// token. Once the refill goroutine is gone the bucket stays empty, so
	// a wait spanning several refill intervals times out.
	deadline := time.Now().Add(time.Second)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		err := interceptor(ctx, req)

		cancel()

		if err != nil {
			require.ErrorIs(t, err, context.DeadlineExceeded)

			return
		}

		require.True(t, time.Now().Before(deadline), "tokens kept refilling after stop")
	}
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}

	req := &psa.Request{Method: http.MethodGet, Path: "/companies", Headers: http.Header{}}
	require.NoError(t, psa.LoggingInterceptor(logger)(context.Background(), req))

	resp := &psa.Response{StatusCode: http.StatusOK, Headers: http.Header{}}
	require.NoError(t, psa.LoggingResponseInterceptor(logger)(context.Background(), req, resp))

	assert.NotEmpty(t, logger.debugs)
}

type recordingLogger struct {
	debugs []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.debugs = append(l.debugs, msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}
