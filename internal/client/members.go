package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const membersPath = "/system/members"

// MembersClient implements psa.MembersClient.
type MembersClient struct {
	transport *internalhttp.Client
}

// Get retrieves a member by ID.
func (c *MembersClient) Get(ctx context.Context, id int) (*psa.Member, error) {
	return GetOne[psa.Member](ctx, c.transport, fmt.Sprintf("%s/%d", membersPath, id))
}

// GetByIdentifier retrieves a member by login identifier.
func (c *MembersClient) GetByIdentifier(ctx context.Context, identifier string) (*psa.Member, error) {
	params := psa.NewQueryParams().WithConditions(fmt.Sprintf("identifier=%q", identifier))

	members, err := GetList[psa.Member](ctx, c.transport, membersPath, params)
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, &psa.APIError{StatusCode: 404, Message: fmt.Sprintf("member %q not found", identifier)}
	}

	return &members[0], nil
}

// List retrieves members matching the query parameters.
func (c *MembersClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.Member, error) {
	return GetList[psa.Member](ctx, c.transport, membersPath, params)
}
