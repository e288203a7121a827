package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const timeEntriesPath = "/time/entries"

// TimeEntriesClient implements psa.TimeEntriesClient.
type TimeEntriesClient struct {
	transport *internalhttp.Client
}

// Get retrieves a time entry by ID.
func (c *TimeEntriesClient) Get(ctx context.Context, id int) (*psa.TimeEntry, error) {
	return GetOne[psa.TimeEntry](ctx, c.transport, fmt.Sprintf("%s/%d", timeEntriesPath, id))
}

// List retrieves time entries matching the query parameters.
func (c *TimeEntriesClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.TimeEntry, error) {
	return GetList[psa.TimeEntry](ctx, c.transport, timeEntriesPath, params)
}

// Create records a new time entry.
func (c *TimeEntriesClient) Create(ctx context.Context, entry *psa.TimeEntry) (*psa.TimeEntry, error) {
	return Create[psa.TimeEntry](ctx, c.transport, timeEntriesPath, entry)
}
