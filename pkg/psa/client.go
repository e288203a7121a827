package psa

import (
	"context"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoOpLogger discards all log output. It is the default when no Logger is
// configured.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug implements Logger.
func (l *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

// Info implements Logger.
func (l *NoOpLogger) Info(msg string, fields map[string]interface{}) {}

// Warn implements Logger.
func (l *NoOpLogger) Warn(msg string, fields map[string]interface{}) {}

// Error implements Logger.
func (l *NoOpLogger) Error(msg string, fields map[string]interface{}) {}

// Config represents client configuration for building a psa.Client.
//
// # Credential modes
//
// Exactly one mode must be fully supplied; anything else is a usage error
// and leaves the session untouched:
//  1. PublicKey/PrivateKey: API key pair. Headers are built locally; the
//     key pair is validated by the mandatory system info probe.
//  2. IntegratorUsername/IntegratorPassword: legacy integrator account
//     (deprecated; a warning is logged). With MemberID set, the client
//     exchanges the integrator credential for a member-scoped key pair via
//     the token endpoint and records its expiration.
//  3. Username/Password: cookie session. The login endpoint's cookies ride
//     on every subsequent request; no Authorization header is sent.
//
// # Session lifetime
//
// The session lives on the client instance, not in a process global.
// Authentication and Disconnect are the only mutators; every other call is
// read-only against it. The client does not serialize re-authentication
// against in-flight requests - do not call Connect concurrently with other
// operations.
type Config struct {
	// Host is the server host. Free-form: a scheme or path is stripped
	// during normalization.
	Host string
	// Company is the tenant identifier included in Basic credentials and
	// the cookie login.
	Company string

	// PublicKey and PrivateKey form the API key credential.
	PublicKey  string
	PrivateKey string

	// IntegratorUsername and IntegratorPassword form the integrator
	// credential. Deprecated by the vendor; prefer an API key pair.
	IntegratorUsername string
	IntegratorPassword string
	// MemberID optionally targets a member to impersonate in integrator
	// mode.
	MemberID string

	// Username and Password form the cookie credential.
	Username string
	Password string

	// APIVersion pins the versioned media type in the Accept header.
	// Empty selects the default.
	APIVersion string

	// RetryMax bounds retries of transient 5xx responses. If 0, the
	// default of 5 is used.
	RetryMax int
	// RetryWaitMin is the base backoff unit between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax caps the backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache optionally configures response caching for GET requests.
	Cache *CacheConfig

	// Interceptors optionally hook into every request and response.
	Interceptors *InterceptorChain
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Companies() CompaniesClient
	Tickets() TicketsClient
	Agreements() AgreementsClient
	Configurations() ConfigurationsClient
	TimeEntries() TimeEntriesClient
	Members() MembersClient
}

// SessionClient exposes the connection lifecycle.
type SessionClient interface {
	// Connect establishes a session if none exists. With a live session it
	// returns immediately without touching the network.
	Connect(ctx context.Context) error
	// Reconnect discards any existing session and authenticates again.
	Reconnect(ctx context.Context) error
	// Connected reports whether a non-expired session exists.
	Connected() bool
	// Disconnect clears the session. Idempotent.
	Disconnect() error
	// SystemInfo fetches the server's system information. Also used as
	// the post-connect validation probe.
	SystemInfo(ctx context.Context) (*SystemInfo, error)
}

// Client is the full client surface.
type Client interface {
	ResourceClients
	SessionClient
}

// CompaniesClient operates on company records.
type CompaniesClient interface {
	Get(ctx context.Context, id int) (*Company, error)
	List(ctx context.Context, params *QueryParams) ([]Company, error)
	Search(ctx context.Context, params *QueryParams) ([]Company, error)
	Create(ctx context.Context, company *Company) (*Company, error)
	Update(ctx context.Context, id int, op PatchOp) (*Company, error)
	Delete(ctx context.Context, id int) error
}

// TicketsClient operates on service tickets and their notes.
type TicketsClient interface {
	Get(ctx context.Context, id int) (*Ticket, error)
	List(ctx context.Context, params *QueryParams) ([]Ticket, error)
	Search(ctx context.Context, params *QueryParams) ([]Ticket, error)
	Create(ctx context.Context, ticket *Ticket) (*Ticket, error)
	Update(ctx context.Context, id int, op PatchOp) (*Ticket, error)
	Delete(ctx context.Context, id int) error

	ListNotes(ctx context.Context, ticketID int, params *QueryParams) ([]TicketNote, error)
	CreateNote(ctx context.Context, note *TicketNote) (*TicketNote, error)
}

// AgreementsClient operates on agreements.
type AgreementsClient interface {
	Get(ctx context.Context, id int) (*Agreement, error)
	List(ctx context.Context, params *QueryParams) ([]Agreement, error)
	Update(ctx context.Context, id int, op PatchOp) (*Agreement, error)
}

// ConfigurationsClient operates on configuration items.
type ConfigurationsClient interface {
	Get(ctx context.Context, id int) (*Configuration, error)
	List(ctx context.Context, params *QueryParams) ([]Configuration, error)
	Create(ctx context.Context, configuration *Configuration) (*Configuration, error)
	Delete(ctx context.Context, id int) error
}

// TimeEntriesClient operates on time entries.
type TimeEntriesClient interface {
	Get(ctx context.Context, id int) (*TimeEntry, error)
	List(ctx context.Context, params *QueryParams) ([]TimeEntry, error)
	Create(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
}

// MembersClient operates on member accounts.
type MembersClient interface {
	Get(ctx context.Context, id int) (*Member, error)
	GetByIdentifier(ctx context.Context, identifier string) (*Member, error)
	List(ctx context.Context, params *QueryParams) ([]Member, error)
}
