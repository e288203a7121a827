// Package psa provides types, interfaces, and helpers for working with a
// professional-services-automation (PSA) platform's versioned REST API.
//
// # Overview
//
// The psa package defines the configuration, thin domain records (Company,
// Ticket, Agreement, Configuration, TimeEntry, Member), the query-condition
// encoder, the error taxonomy, and the interfaces for resource-oriented
// clients. A concrete implementation is provided by the psaclient package,
// which wires credentials, session state, transport, and pagination. Most
// consumers should import psaclient to construct a client and then interact
// with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/psa/pkg/psa"
//	  "github.com/fivetwenty-io/psa/pkg/psaclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := psaclient.New(ctx, &psa.Config{
//	    Host:       "api.example.net",
//	    Company:    "mycompany",
//	    PublicKey:  "pub",
//	    PrivateKey: "priv",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  tickets, err := cli.Tickets().List(ctx, psa.NewQueryParams().
//	    WithConditions(`board/name="Help Desk"`).
//	    WithOrderBy("id", psa.OrderDesc).
//	    WithPageSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = tickets
//	}
//
// # Conditions and pagination
//
// Use QueryParams to express the vendor's condition language plus ordering
// and paging. Bounded paging sends page/pageSize on a single request;
// WithAll switches to forward-only pagination, following the server's Link
// headers until every page has been collected. Endpoints without Link
// header support reject forward-only mode with PaginationUnsupportedError.
//
// # Errors
//
// Failures are split so callers can branch on them: ErrNotConnected and
// ErrSessionExpired (session lifecycle), AuthError (credential rejected),
// usage sentinels such as ErrInvalidOrderDirection, APIError (decoded
// application error), MaxRetriesExceededError (retry budget exhausted), and
// PaginationUnsupportedError. Helpers IsNotConnected, IsUnauthorized,
// IsNotFound, and IsUsage cover the common branches.
//
// # Interceptors and caching
//
// The package includes request/response interceptors (logging, headers,
// client-side rate limiting) and a pluggable Cache abstraction with memory
// and NATS key-value backends. The psaclient package composes these for a
// sensible default client; applications with advanced needs can use the
// primitives directly.
package psa
