// Package http implements the HTTP transport shared by every API
// operation: session header injection, bounded retry with exponential
// backoff, error envelope decoding, and the two pagination engines.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/psa/internal/auth"
	"github.com/fivetwenty-io/psa/internal/constants"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

// Pagination header exchanged with the server for cursor iteration.
const (
	// HeaderPaginationType requests a pagination strategy.
	HeaderPaginationType = "pagination-type"

	// PaginationForwardOnly asks for forward-only cursor pagination.
	PaginationForwardOnly = "forward-only"

	// HeaderLink carries the next-page cursor in forward-only responses.
	HeaderLink = "Link"
)

// Retryable server statuses. Anything else fails immediately.
var retryStatuses = map[int]bool{
	nethttp.StatusInternalServerError: true,
	nethttp.StatusBadGateway:          true,
	nethttp.StatusServiceUnavailable:  true,
	nethttp.StatusGatewayTimeout:      true,
}

// Request describes an API call for the transport.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}

	// Anonymous requests bypass the session requirement; used while a
	// session is being established.
	Anonymous bool
}

// Response is the decoded transport result.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client is the shared transport. Safe for concurrent use once a session
// is established.
type Client struct {
	baseURL      string
	sessions     *auth.Manager
	httpClient   *retryablehttp.Client
	logger       psa.Logger
	debug        bool
	userAgent    string
	apiVersion   string
	cache        *psa.CacheManager
	interceptors *psa.InterceptorChain
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger psa.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithAPIVersion sets the version pinned in the Accept header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// RetryConfig bounds the retry loop.
type RetryConfig struct {
	MaxRetries   int
	WaitMin      time.Duration
	WaitMax      time.Duration
	Timeout      time.Duration
	PolicyFunc   retryablehttp.CheckRetry
	BackoffFunc  retryablehttp.Backoff
	ErrorHandler retryablehttp.ErrorHandler
}

// WithRetryConfig overrides the default retry behavior.
func WithRetryConfig(config RetryConfig) Option {
	return func(c *Client) {
		applyRetryConfig(c.httpClient, config)
	}
}

// WithCache attaches a response cache consulted on GET requests.
func WithCache(manager *psa.CacheManager) Option {
	return func(c *Client) {
		c.cache = manager
	}
}

// WithInterceptors attaches a request/response interceptor chain.
func WithInterceptors(chain *psa.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport rooted at baseURL, authenticating through
// the given session manager.
func NewClient(baseURL string, sessions *auth.Manager, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		sessions:   sessions,
		httpClient: newRetryableClient(),
		logger:     psa.NewNoOpLogger(),
		apiVersion: constants.DefaultAPIVersion,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func newRetryableClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil

	applyRetryConfig(client, RetryConfig{
		MaxRetries: constants.DefaultRetryMax,
		WaitMin:    constants.DefaultRetryWaitMin,
		WaitMax:    constants.DefaultRetryWaitMax,
		Timeout:    constants.DefaultHTTPTimeout,
	})

	return client
}

func applyRetryConfig(client *retryablehttp.Client, config RetryConfig) {
	// MaxRetries counts retries after the first attempt, so a budget of N
	// allows N+1 requests in total.
	if config.MaxRetries > 0 {
		client.RetryMax = config.MaxRetries
	}

	if config.WaitMin > 0 {
		client.RetryWaitMin = config.WaitMin
	}

	if config.WaitMax > 0 {
		client.RetryWaitMax = config.WaitMax
	}

	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	client.CheckRetry = config.PolicyFunc
	if client.CheckRetry == nil {
		client.CheckRetry = checkRetry
	}

	client.Backoff = config.BackoffFunc
	if client.Backoff == nil {
		client.Backoff = retryablehttp.DefaultBackoff
	}

	client.ErrorHandler = config.ErrorHandler
	if client.ErrorHandler == nil {
		client.ErrorHandler = retriesExhausted
	}
}

// checkRetry retries only the transient server statuses and transport
// errors; everything else surfaces immediately.
func checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	return retryStatuses[resp.StatusCode], nil
}

// retriesExhausted converts a spent retry budget into
// MaxRetriesExceededError carrying the last observed status.
func retriesExhausted(resp *nethttp.Response, err error, numTries int) (*nethttp.Response, error) {
	exhausted := &psa.MaxRetriesExceededError{Attempts: numTries, Err: err}

	if resp != nil {
		exhausted.StatusCode = resp.StatusCode

		_ = resp.Body.Close()
	}

	return nil, exhausted
}

// APIVersion returns the version pinned in the Accept header for requests
// made outside of a session.
func (c *Client) APIVersion() string {
	return c.apiVersion
}

// Do executes one API request: session check, interceptor chain, cache
// consultation, retry loop, and error envelope decoding.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.dispatch(ctx, req, c.requestURL(req))
}

// dispatch is the shared request path for bounded requests and cursor
// pages alike, so interceptors and debug hooks observe every exchange.
func (c *Client) dispatch(ctx context.Context, req *Request, rawURL string) (*Response, error) {
	// The session check runs before the cache so a disconnected or
	// expired client cannot serve cached responses.
	if !req.Anonymous {
		if _, err := c.sessions.Active(); err != nil {
			return nil, err
		}
	}

	psaReq := &psa.Request{Method: req.Method, Path: req.Path, Headers: nethttp.Header{}}

	for key, value := range req.Headers {
		psaReq.Headers.Set(key, value)
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, psaReq); err != nil {
			return nil, fmt.Errorf("request interceptor: %w", err)
		}

		merged := make(map[string]string, len(psaReq.Headers))
		for key := range psaReq.Headers {
			merged[key] = psaReq.Headers.Get(key)
		}

		req.Headers = merged
	}

	if c.cacheable(req) && c.cache.Policy().ShouldCache(req.Method, req.Path, 0) {
		if data, err := c.cache.Get(ctx, c.cacheKey(req)); err == nil {
			return &Response{StatusCode: nethttp.StatusOK, Body: data}, nil
		}
	}

	resp, err := c.send(ctx, req, rawURL)
	if err != nil {
		return nil, err
	}

	if c.cacheable(req) && c.cache.Policy().ShouldCache(req.Method, req.Path, resp.StatusCode) {
		if err := c.cache.Set(ctx, c.cacheKey(req), resp.Body, 0); err != nil {
			c.logger.Warn("caching response failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.interceptors != nil {
		psaResp := &psa.Response{StatusCode: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}
		if err := c.interceptors.ExecuteResponseInterceptors(ctx, psaReq, psaResp); err != nil {
			return nil, fmt.Errorf("response interceptor: %w", err)
		}
	}

	return resp, nil
}

// cacheable excludes non-GET requests and forward-only pagination pages,
// whose Link cursor lives in headers the cache does not retain.
func (c *Client) cacheable(req *Request) bool {
	if c.cache == nil || req.Method != nethttp.MethodGet {
		return false
	}

	for key := range req.Headers {
		if strings.EqualFold(key, HeaderPaginationType) {
			return false
		}
	}

	return true
}

func (c *Client) cacheKey(req *Request) string {
	params := make(map[string]string, len(req.Query))
	for key := range req.Query {
		params[key] = req.Query.Get(key)
	}

	return c.cache.GetCacheKey(req.Method, req.Path, params)
}

func (c *Client) requestURL(req *Request) string {
	rawURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		rawURL += "?" + req.Query.Encode()
	}

	return psa.NormalizeQuerySeparators(rawURL)
}

// send performs one HTTP exchange against an already-resolved URL.
func (c *Client) send(ctx context.Context, req *Request, rawURL string) (*Response, error) {
	var session *auth.Session

	if !req.Anonymous {
		var err error

		session, err = c.sessions.Active()
		if err != nil {
			return nil, err
		}
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(httpReq, req, session)

	if c.debug {
		c.logger.Debug("api request", map[string]interface{}{
			"method": req.Method,
			"url":    rawURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var exhausted *psa.MaxRetriesExceededError
		if errors.As(err, &exhausted) {
			return nil, exhausted
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("api response", map[string]interface{}{
			"method": req.Method,
			"url":    rawURL,
			"status": httpResp.StatusCode,
		})
	}

	if httpResp.StatusCode >= nethttp.StatusBadRequest {
		return nil, psa.ParseAPIError(httpResp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) setHeaders(httpReq *retryablehttp.Request, req *Request, session *auth.Session) {
	version := c.apiVersion
	if session != nil && session.APIVersion != "" {
		version = session.APIVersion
	}

	httpReq.Header.Set(auth.HeaderAccept, auth.AcceptHeader(constants.AcceptMediaType, version))
	httpReq.Header.Set("Content-Type", "application/json")

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if session != nil {
		for key, value := range session.Headers {
			httpReq.Header.Set(key, value)
		}

		for _, cookie := range session.Cookies {
			httpReq.AddCookie(cookie)
		}
	}

	// Caller headers win over session headers.
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
}

// Get performs a bounded GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}

// GetAllPages exhausts a collection with forward-only cursor pagination.
// The server is asked for the maximum page size and each next page is
// fetched from the cursor in the Link header. If the first response
// carries no Link header the endpoint does not support cursors and no
// further requests are made. Any page failure aborts the whole fetch.
func (c *Client) GetAllPages(ctx context.Context, path string, query url.Values) ([][]byte, error) {
	if query == nil {
		query = url.Values{}
	} else {
		copied := url.Values{}
		for key, values := range query {
			copied[key] = append([]string(nil), values...)
		}
		query = copied
	}

	query.Set("pageSize", strconv.Itoa(constants.MaxPageSize))
	query.Del("page")

	headers := map[string]string{HeaderPaginationType: PaginationForwardOnly}

	resp, err := c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query, Headers: headers})
	if err != nil {
		return nil, err
	}

	if resp.Headers.Get(HeaderLink) == "" {
		return nil, &psa.PaginationUnsupportedError{Path: path}
	}

	pages := [][]byte{resp.Body}

	next := nextPageURL(resp.Headers)
	for next != "" {
		resp, err = c.sendCursor(ctx, path, next, headers)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Body)
		next = nextPageURL(resp.Headers)
	}

	return pages, nil
}

// sendCursor fetches an absolute next-page URL issued by the server. It
// goes through the same dispatch path as the first page.
func (c *Client) sendCursor(ctx context.Context, path, rawURL string, headers map[string]string) (*Response, error) {
	req := &Request{Method: nethttp.MethodGet, Path: path, Headers: headers}

	return c.dispatch(ctx, req, psa.NormalizeQuerySeparators(rawURL))
}

// nextPageURL extracts the rel="next" target from a Link header, or ""
// when iteration is complete.
func nextPageURL(headers nethttp.Header) string {
	for _, link := range headers.Values(HeaderLink) {
		for _, part := range strings.Split(link, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}

			target := strings.Trim(strings.TrimSpace(segments[0]), "<>")

			for _, param := range segments[1:] {
				param = strings.TrimSpace(param)
				if param == `rel="next"` || param == "rel=next" {
					return target
				}
			}
		}
	}

	return ""
}
