// Package client implements the API resource clients on top of the shared
// transport: generic verb dispatchers plus one thin client per resource
// family.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

// GetList fetches a collection. With params.All set it exhausts the
// collection through forward-only cursor pagination; otherwise it issues a
// single bounded request honoring page/pageSize.
func GetList[T any](ctx context.Context, transport *internalhttp.Client, path string, params *psa.QueryParams) ([]T, error) {
	if params == nil {
		params = psa.NewQueryParams()
	}

	query, err := params.Values()
	if err != nil {
		return nil, err
	}

	if params.All {
		return getAll[T](ctx, transport, path, query)
	}

	resp, err := transport.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return decodeItems[T](resp.Body), nil
}

// decodeItems parses a collection body. An empty or non-JSON body is a
// no-result, not an error.
func decodeItems[T any](body []byte) []T {
	var items []T

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, &items); err != nil {
		return nil
	}

	return items
}

// getAll concatenates every forward-only page into one slice. A failure on
// any page aborts the whole fetch with no partial result.
func getAll[T any](ctx context.Context, transport *internalhttp.Client, path string, query url.Values) ([]T, error) {
	pages, err := transport.GetAllPages(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var results []T

	for _, page := range pages {
		results = append(results, decodeItems[T](page)...)
	}

	return results, nil
}

// GetOne fetches a single record by path.
func GetOne[T any](ctx context.Context, transport *internalhttp.Client, path string) (*T, error) {
	resp, err := transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	return decodeRecord[T](resp.Body)
}

// Search issues a POST-based search: filter conditions travel in the JSON
// body while paging stays on the URL.
func Search[T any](ctx context.Context, transport *internalhttp.Client, path string, params *psa.QueryParams) ([]T, error) {
	if params == nil {
		params = psa.NewQueryParams()
	}

	body, err := params.SearchBody()
	if err != nil {
		return nil, err
	}

	resp, err := transport.Post(ctx, psa.JoinURL(path+"/search", params.PagingQuery()), body)
	if err != nil {
		return nil, err
	}

	return decodeItems[T](resp.Body), nil
}

// Create POSTs a new record. Fields named in skip are dropped from the
// request body; they identify the parent resource and are already encoded
// in the path.
func Create[T any](ctx context.Context, transport *internalhttp.Client, path string, record interface{}, skip ...string) (*T, error) {
	body, err := stripFields(record, skip)
	if err != nil {
		return nil, err
	}

	resp, err := transport.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return decodeRecord[T](resp.Body)
}

// Update applies a single patch operation. The server expects a JSON array
// even for one operation.
func Update[T any](ctx context.Context, transport *internalhttp.Client, path string, op psa.PatchOp) (*T, error) {
	resp, err := transport.Patch(ctx, path, []psa.PatchOp{op})
	if err != nil {
		return nil, err
	}

	return decodeRecord[T](resp.Body)
}

// Delete removes a record by path.
func Delete(ctx context.Context, transport *internalhttp.Client, path string) error {
	_, err := transport.Delete(ctx, path)

	return err
}

func decodeRecord[T any](body []byte) (*T, error) {
	var record T

	err := json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	return &record, nil
}

// stripFields round-trips a record through JSON and removes the named
// top-level keys.
func stripFields(record interface{}, skip []string) (interface{}, error) {
	if len(skip) == 0 {
		return record, nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	var body map[string]interface{}

	err = json.Unmarshal(data, &body)
	if err != nil {
		return nil, fmt.Errorf("decoding record fields: %w", err)
	}

	for _, field := range skip {
		delete(body, field)
	}

	return body, nil
}
