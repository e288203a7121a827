package client

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/psa/internal/auth"
	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

// newTestServer starts an httptest server and returns a transport rooted at
// it with an API key session already installed.
func newTestServer(t *testing.T, handler nethttp.Handler) *internalhttp.Client {
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

	return internalhttp.NewClient(server.URL, sessions)
}

// newTestClient assembles a full client against an httptest server, without
// a session. Tests drive Connect themselves.
func newTestClient(t *testing.T, config *psa.Config, handler nethttp.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := auth.NewManager()
	transport := internalhttp.NewClient(server.URL, sessions)

	if config.Host == "" {
		config.Host = server.URL
	}

	if config.Company == "" {
		config.Company = "testco"
	}

	return New(config, sessions, transport)
}

// captureLogger records log lines for assertions.
type captureLogger struct {
	warnings []string
	infos    []string
}

func (l *captureLogger) Debug(msg string, fields map[string]interface{}) {}

func (l *captureLogger) Info(msg string, fields map[string]interface{}) {
	l.infos = append(l.infos, msg)
}

func (l *captureLogger) Warn(msg string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}

func (l *captureLogger) Error(msg string, fields map[string]interface{}) {}
