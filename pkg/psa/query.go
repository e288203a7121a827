package psa

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// OrderDirection constrains the orderBy direction.
type OrderDirection string

const (
	// OrderAsc sorts ascending.
	OrderAsc OrderDirection = "asc"

	// OrderDesc sorts descending.
	OrderDesc OrderDirection = "desc"
)

// QueryParams carries the filter, ordering, and paging parameters of a list
// or search call. Condition strings use the vendor's query language and are
// percent-encoded before they reach the wire.
type QueryParams struct {
	// Conditions filters the primary resource.
	Conditions string
	// ChildConditions filters child collections of the resource.
	ChildConditions string
	// CustomFieldConditions filters on user-defined fields.
	CustomFieldConditions string
	// OrderBy is the field to sort on.
	OrderBy string
	// OrderDirection must be OrderAsc or OrderDesc when OrderBy is set.
	OrderDirection OrderDirection
	// Page selects a page in bounded mode (1-based).
	Page int
	// PageSize bounds the page size; the API maximum is 999.
	PageSize int
	// All switches the call to forward-only pagination, collecting every
	// page into one result. The endpoint must support Link headers.
	All bool
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithConditions sets the primary condition string.
func (q *QueryParams) WithConditions(conditions string) *QueryParams {
	q.Conditions = conditions

	return q
}

// WithChildConditions sets the child-collection condition string.
func (q *QueryParams) WithChildConditions(conditions string) *QueryParams {
	q.ChildConditions = conditions

	return q
}

// WithCustomFieldConditions sets the custom-field condition string.
func (q *QueryParams) WithCustomFieldConditions(conditions string) *QueryParams {
	q.CustomFieldConditions = conditions

	return q
}

// WithOrderBy sets the sort field and direction.
func (q *QueryParams) WithOrderBy(field string, direction OrderDirection) *QueryParams {
	q.OrderBy = field
	q.OrderDirection = direction

	return q
}

// WithPage sets the page number for bounded pagination.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets the page size for bounded pagination.
func (q *QueryParams) WithPageSize(pageSize int) *QueryParams {
	q.PageSize = pageSize

	return q
}

// WithAll enables forward-only fetch-all pagination.
func (q *QueryParams) WithAll() *QueryParams {
	q.All = true

	return q
}

// Validate rejects caller usage errors before any request is sent.
func (q *QueryParams) Validate() error {
	if q.OrderBy != "" && q.OrderDirection != OrderAsc && q.OrderDirection != OrderDesc {
		return fmt.Errorf("%w: got %q", ErrInvalidOrderDirection, q.OrderDirection)
	}

	return nil
}

// orderByValue renders "field direction" for the orderBy parameter.
func (q *QueryParams) orderByValue() string {
	if q.OrderBy == "" {
		return ""
	}

	return q.OrderBy + " " + string(q.OrderDirection)
}

// Encode renders the GET-style query string without a leading "?". Condition
// values are percent-encoded so reserved characters ("&", ",", "/") never
// collide with parameter delimiters.
func (q *QueryParams) Encode() (string, error) {
	err := q.Validate()
	if err != nil {
		return "", err
	}

	var parts []string

	appendParam := func(key, value string) {
		parts = append(parts, key+"="+url.QueryEscape(value))
	}

	if q.Conditions != "" {
		appendParam("conditions", q.Conditions)
	}

	if q.ChildConditions != "" {
		appendParam("childconditions", q.ChildConditions)
	}

	if q.CustomFieldConditions != "" {
		appendParam("customfieldconditions", q.CustomFieldConditions)
	}

	if orderBy := q.orderByValue(); orderBy != "" {
		appendParam("orderBy", orderBy)
	}

	if q.Page > 0 {
		parts = append(parts, "page="+strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		parts = append(parts, "pageSize="+strconv.Itoa(q.PageSize))
	}

	return strings.Join(parts, "&"), nil
}

// Values renders the parameters as url.Values for transports that encode
// the query string themselves.
func (q *QueryParams) Values() (url.Values, error) {
	err := q.Validate()
	if err != nil {
		return nil, err
	}

	values := url.Values{}

	if q.Conditions != "" {
		values.Set("conditions", q.Conditions)
	}

	if q.ChildConditions != "" {
		values.Set("childconditions", q.ChildConditions)
	}

	if q.CustomFieldConditions != "" {
		values.Set("customfieldconditions", q.CustomFieldConditions)
	}

	if orderBy := q.orderByValue(); orderBy != "" {
		values.Set("orderBy", orderBy)
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	return values, nil
}

// PagingQuery renders only the page/pageSize parameters. POST-style search
// keeps filters in the body but paging stays on the URL.
func (q *QueryParams) PagingQuery() string {
	var parts []string

	if q.Page > 0 {
		parts = append(parts, "page="+strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		parts = append(parts, "pageSize="+strconv.Itoa(q.PageSize))
	}

	return strings.Join(parts, "&")
}

// SearchBody builds the JSON body for POST-based search endpoints. Only keys
// actually supplied are included.
func (q *QueryParams) SearchBody() (map[string]string, error) {
	err := q.Validate()
	if err != nil {
		return nil, err
	}

	body := make(map[string]string)

	if q.Conditions != "" {
		body["conditions"] = q.Conditions
	}

	if orderBy := q.orderByValue(); orderBy != "" {
		body["orderBy"] = orderBy
	}

	if q.ChildConditions != "" {
		body["childconditions"] = q.ChildConditions
	}

	if q.CustomFieldConditions != "" {
		body["customfieldconditions"] = q.CustomFieldConditions
	}

	return body, nil
}

// JoinURL appends an encoded query string to a path using "?" for the first
// parameter and "&" thereafter.
func JoinURL(path, query string) string {
	if query == "" {
		return path
	}

	if strings.Contains(path, "?") {
		return path + "&" + query
	}

	return path + "?" + query
}

// NormalizeQuerySeparators repairs a URL where a "&" was appended before any
// "?" by converting the first "&" to "?". Well-formed URLs pass through
// unchanged. Kept as a public helper for compatibility with callers that
// splice query strings by hand.
func NormalizeQuerySeparators(rawURL string) string {
	ampIndex := strings.Index(rawURL, "&")
	if ampIndex == -1 {
		return rawURL
	}

	questionIndex := strings.Index(rawURL, "?")
	if questionIndex != -1 && questionIndex < ampIndex {
		return rawURL
	}

	return rawURL[:ampIndex] + "?" + rawURL[ampIndex+1:]
}
