// Package psaclient is the high-level entry point: it validates the
// configuration, wires the session manager and transport together, and
// establishes the session.
package psaclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/psa/internal/auth"
	"github.com/fivetwenty-io/psa/internal/client"
	"github.com/fivetwenty-io/psa/internal/constants"
	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

// New builds a client from config and connects it: credentials are
// resolved, the session is established, and the server is probed for its
// system information. The returned client is ready for resource
// operations.
func New(ctx context.Context, config *psa.Config) (psa.Client, error) {
	apiClient, err := newDisconnected(config)
	if err != nil {
		return nil, err
	}

	err = apiClient.Connect(ctx)
	if err != nil {
		return nil, err
	}

	return apiClient, nil
}

// newDisconnected validates config and assembles the client without
// touching the network.
func newDisconnected(config *psa.Config) (*client.Client, error) {
	if config == nil {
		return nil, psa.ErrConfigRequired
	}

	if config.Host == "" {
		return nil, psa.ErrHostRequired
	}

	if config.Company == "" {
		return nil, psa.ErrCompanyRequired
	}

	host := auth.NormalizeHost(config.Host)
	baseURL := "https://" + host + constants.APIBasePath
	sessions := auth.NewManager()

	opts := []internalhttp.Option{
		internalhttp.WithDebug(config.Debug),
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.APIVersion != "" {
		opts = append(opts, internalhttp.WithAPIVersion(config.APIVersion))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		opts = append(opts, internalhttp.WithRetryConfig(internalhttp.RetryConfig{
			MaxRetries: config.RetryMax,
			WaitMin:    config.RetryWaitMin,
			WaitMax:    config.RetryWaitMax,
		}))
	}

	if config.Interceptors != nil {
		opts = append(opts, internalhttp.WithInterceptors(config.Interceptors))
	}

	if config.Cache != nil {
		cache, err := psa.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}

		opts = append(opts, internalhttp.WithCache(psa.NewCacheManager(cache, nil)))
	}

	transport := internalhttp.NewClient(baseURL, sessions, opts...)

	return client.New(config, sessions, transport), nil
}

// NewWithAPIKey is a convenience constructor for API key mode.
func NewWithAPIKey(ctx context.Context, host, company, publicKey, privateKey string) (psa.Client, error) {
	return New(ctx, &psa.Config{
		Host:       host,
		Company:    company,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	})
}

// NewWithIntegrator is a convenience constructor for the deprecated
// integrator mode. memberID may be empty.
func NewWithIntegrator(ctx context.Context, host, company, username, password, memberID string) (psa.Client, error) {
	return New(ctx, &psa.Config{
		Host:               host,
		Company:            company,
		IntegratorUsername: username,
		IntegratorPassword: password,
		MemberID:           memberID,
	})
}

// NewWithCredentials is a convenience constructor for cookie mode.
func NewWithCredentials(ctx context.Context, host, company, username, password string) (psa.Client, error) {
	return New(ctx, &psa.Config{
		Host:     host,
		Company:  company,
		Username: username,
		Password: password,
	})
}
