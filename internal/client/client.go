package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/psa/internal/auth"
	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const (
	systemInfoPath  = "/system/info"
	loginPath       = "/login"
	memberTokenPath = "/system/members/%s/tokens"
)

// Client implements psa.Client: session lifecycle plus the resource
// clients, all sharing one transport.
type Client struct {
	config    *psa.Config
	sessions  *auth.Manager
	transport *internalhttp.Client
	logger    psa.Logger
}

// New creates a client over an existing session manager and transport.
// Call Connect before issuing resource operations.
func New(config *psa.Config, sessions *auth.Manager, transport *internalhttp.Client) *Client {
	logger := config.Logger
	if logger == nil {
		logger = psa.NewNoOpLogger()
	}

	return &Client{
		config:    config,
		sessions:  sessions,
		transport: transport,
		logger:    logger,
	}
}

// Connect establishes a session if none exists. With a live, non-expired
// session it returns immediately without touching the network; use
// Reconnect to force fresh credentials.
func (c *Client) Connect(ctx context.Context) error {
	if c.sessions.Connected() {
		return nil
	}

	return c.authenticate(ctx)
}

// Reconnect discards any existing session and authenticates again.
func (c *Client) Reconnect(ctx context.Context) error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}

	return c.authenticate(ctx)
}

// authenticate runs credential detection, builds the session, installs it,
// then validates it with the system info probe. The session is rolled back
// if the probe fails.
func (c *Client) authenticate(ctx context.Context) error {
	mode, err := auth.DetectMode(c.config)
	if err != nil {
		return err
	}

	var session *auth.Session

	switch mode {
	case auth.ModeAPIKey:
		session, err = c.apiKeySession()
	case auth.ModeIntegrator:
		session, err = c.integratorSession(ctx)
	case auth.ModeCookie:
		session, err = c.cookieSession(ctx)
	}

	if err != nil {
		return &psa.AuthError{Mode: string(mode), Err: err}
	}

	c.sessions.Set(session)

	info, err := c.SystemInfo(ctx)
	if err != nil {
		_ = c.sessions.Clear()

		return &psa.AuthError{Mode: string(mode), Err: err}
	}

	c.logger.Info("connected", map[string]interface{}{
		"host":    session.Host,
		"company": session.Company,
		"mode":    string(mode),
		"version": info.Version,
	})

	return nil
}

func (c *Client) newSession(headers map[string]string) *auth.Session {
	version := c.config.APIVersion
	if version == "" {
		version = c.transport.APIVersion()
	}

	return &auth.Session{
		Host:       auth.NormalizeHost(c.config.Host),
		Company:    c.config.Company,
		Headers:    headers,
		APIVersion: version,
	}
}

func (c *Client) apiKeySession() (*auth.Session, error) {
	return c.newSession(auth.APIKeyHeaders(c.config.Company, c.config.PublicKey, c.config.PrivateKey)), nil
}

// integratorSession builds a session from the deprecated integrator
// credential, optionally exchanging it for a member-scoped key pair.
func (c *Client) integratorSession(ctx context.Context) (*auth.Session, error) {
	c.logger.Warn("integrator credentials are deprecated, prefer an API key pair", map[string]interface{}{
		"username": c.config.IntegratorUsername,
	})

	headers := auth.IntegratorHeaders(c.config.Company, c.config.IntegratorUsername, c.config.IntegratorPassword)

	if c.config.MemberID == "" {
		return c.newSession(headers), nil
	}

	resp, err := c.transport.Do(ctx, &internalhttp.Request{
		Method:    nethttp.MethodPost,
		Path:      fmt.Sprintf(memberTokenPath, c.config.MemberID),
		Headers:   headers,
		Anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting member token: %w", err)
	}

	var token auth.TokenCredentials

	err = json.Unmarshal(resp.Body, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding member token: %w", err)
	}

	if token.PublicKey == "" || token.PrivateKey == "" {
		return nil, psa.ErrEmptyTokenResponse
	}

	session := c.newSession(auth.MemberTokenHeaders(c.config.Company, token.PublicKey, token.PrivateKey))
	session.ExpiresAt = token.Expiration

	return session, nil
}

// cookieSession logs in with username/password and carries the returned
// cookies on every subsequent request.
func (c *Client) cookieSession(ctx context.Context) (*auth.Session, error) {
	resp, err := c.transport.Do(ctx, &internalhttp.Request{
		Method: nethttp.MethodPost,
		Path:   loginPath,
		Body: map[string]string{
			"companyId": c.config.Company,
			"username":  c.config.Username,
			"password":  c.config.Password,
		},
		Anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	cookies := (&nethttp.Response{Header: resp.Headers}).Cookies()
	if len(cookies) == 0 {
		return nil, psa.ErrNoSessionCookie
	}

	session := c.newSession(map[string]string{})
	session.Cookies = cookies

	return session, nil
}

// Connected reports whether a non-expired session exists.
func (c *Client) Connected() bool {
	return c.sessions.Connected()
}

// Disconnect clears the session. Safe to call repeatedly.
func (c *Client) Disconnect() error {
	return c.sessions.Clear()
}

// SystemInfo fetches the server's system information. Doubles as the
// post-connect validation probe.
func (c *Client) SystemInfo(ctx context.Context) (*psa.SystemInfo, error) {
	info, err := GetOne[psa.SystemInfo](ctx, c.transport, systemInfoPath)
	if err != nil {
		return nil, err
	}

	if info.Version == "" {
		return nil, psa.ErrProbeFailed
	}

	return info, nil
}

// Companies returns the companies client.
func (c *Client) Companies() psa.CompaniesClient {
	return &CompaniesClient{transport: c.transport}
}

// Tickets returns the tickets client.
func (c *Client) Tickets() psa.TicketsClient {
	return &TicketsClient{transport: c.transport}
}

// Agreements returns the agreements client.
func (c *Client) Agreements() psa.AgreementsClient {
	return &AgreementsClient{transport: c.transport}
}

// Configurations returns the configurations client.
func (c *Client) Configurations() psa.ConfigurationsClient {
	return &ConfigurationsClient{transport: c.transport}
}

// TimeEntries returns the time entries client.
func (c *Client) TimeEntries() psa.TimeEntriesClient {
	return &TimeEntriesClient{transport: c.transport}
}

// Members returns the members client.
func (c *Client) Members() psa.MembersClient {
	return &MembersClient{transport: c.transport}
}
