package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const companiesPath = "/company/companies"

// CompaniesClient implements psa.CompaniesClient.
type CompaniesClient struct {
	transport *internalhttp.Client
}

// Get retrieves a company by ID.
func (c *CompaniesClient) Get(ctx context.Context, id int) (*psa.Company, error) {
	return GetOne[psa.Company](ctx, c.transport, fmt.Sprintf("%s/%d", companiesPath, id))
}

// List retrieves companies matching the query parameters.
func (c *CompaniesClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.Company, error) {
	return GetList[psa.Company](ctx, c.transport, companiesPath, params)
}

// Search retrieves companies via POST-based search.
func (c *CompaniesClient) Search(ctx context.Context, params *psa.QueryParams) ([]psa.Company, error) {
	return Search[psa.Company](ctx, c.transport, companiesPath, params)
}

// Create adds a new company.
func (c *CompaniesClient) Create(ctx context.Context, company *psa.Company) (*psa.Company, error) {
	return Create[psa.Company](ctx, c.transport, companiesPath, company)
}

// Update applies a single patch operation to a company.
func (c *CompaniesClient) Update(ctx context.Context, id int, op psa.PatchOp) (*psa.Company, error) {
	return Update[psa.Company](ctx, c.transport, fmt.Sprintf("%s/%d", companiesPath, id), op)
}

// Delete removes a company.
func (c *CompaniesClient) Delete(ctx context.Context, id int) error {
	return Delete(ctx, c.transport, fmt.Sprintf("%s/%d", companiesPath, id))
}
