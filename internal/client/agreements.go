package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const agreementsPath = "/finance/agreements"

// AgreementsClient implements psa.AgreementsClient.
type AgreementsClient struct {
	transport *internalhttp.Client
}

// Get retrieves an agreement by ID.
func (c *AgreementsClient) Get(ctx context.Context, id int) (*psa.Agreement, error) {
	return GetOne[psa.Agreement](ctx, c.transport, fmt.Sprintf("%s/%d", agreementsPath, id))
}

// List retrieves agreements matching the query parameters.
func (c *AgreementsClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.Agreement, error) {
	return GetList[psa.Agreement](ctx, c.transport, agreementsPath, params)
}

// Update applies a single patch operation to an agreement.
func (c *AgreementsClient) Update(ctx context.Context, id int, op psa.PatchOp) (*psa.Agreement, error) {
	return Update[psa.Agreement](ctx, c.transport, fmt.Sprintf("%s/%d", agreementsPath, id), op)
}
