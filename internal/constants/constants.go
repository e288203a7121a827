package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as the
	// post-connect system info probe.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits and backoff.
const (
	// DefaultRetryMax is the default maximum number of retries for
	// transient 5xx responses.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the base backoff unit. Doubling it per
	// attempt yields waits of 2^1, 2^2, ... milliseconds.
	DefaultRetryWaitMin = 2 * time.Millisecond

	// DefaultRetryWaitMax caps the backoff between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Pagination limits.
const (
	// DefaultPageSize is the server default when no pageSize is sent.
	DefaultPageSize = 25

	// MaxPageSize is the API maximum; forward-only pagination always
	// requests pages of this size.
	MaxPageSize = 999
)

// API versioning and paths.
const (
	// DefaultAPIVersion is the API version pinned in the Accept header
	// when Config.APIVersion is empty.
	DefaultAPIVersion = "3.0.0"

	// APIBasePath is the versioned REST path prefix.
	APIBasePath = "/apis/3.0"

	// AcceptMediaType is the vendor media type; the negotiated version
	// is appended as a parameter.
	AcceptMediaType = "application/vnd.psa+json"
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long a cached GET response stays fresh.
	DefaultCacheTTL = 5 * time.Minute
)
