package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const configurationsPath = "/company/configurations"

// ConfigurationsClient implements psa.ConfigurationsClient.
type ConfigurationsClient struct {
	transport *internalhttp.Client
}

// Get retrieves a configuration item by ID.
func (c *ConfigurationsClient) Get(ctx context.Context, id int) (*psa.Configuration, error) {
	return GetOne[psa.Configuration](ctx, c.transport, fmt.Sprintf("%s/%d", configurationsPath, id))
}

// List retrieves configuration items matching the query parameters.
func (c *ConfigurationsClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.Configuration, error) {
	return GetList[psa.Configuration](ctx, c.transport, configurationsPath, params)
}

// Create adds a new configuration item.
func (c *ConfigurationsClient) Create(ctx context.Context, configuration *psa.Configuration) (*psa.Configuration, error) {
	return Create[psa.Configuration](ctx, c.transport, configurationsPath, configuration)
}

// Delete removes a configuration item.
func (c *ConfigurationsClient) Delete(ctx context.Context, id int) error {
	return Delete(ctx, c.transport, fmt.Sprintf("%s/%d", configurationsPath, id))
}
