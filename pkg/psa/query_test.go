package psa_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/psa/pkg/psa"
)

func TestQueryParamsEncode(t *testing.T) {
	t.Parallel()

	params := psa.NewQueryParams().
		WithConditions(`name like "A%"`).
		WithChildConditions("types/id = 1").
		WithCustomFieldConditions("caption = 'prio'").
		WithOrderBy("id", psa.OrderAsc).
		WithPage(2).
		WithPageSize(50)

	encoded, err := params.Encode()
	require.NoError(t, err)

	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, `name like "A%"`, values.Get("conditions"))
	assert.Equal(t, "types/id = 1", values.Get("childconditions"))
	assert.Equal(t, "caption = 'prio'", values.Get("customfieldconditions"))
	assert.Equal(t, "id asc", values.Get("orderBy"))
	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "50", values.Get("pageSize"))
}

func TestQueryParamsEncodeEscapesReservedCharacters(t *testing.T) {
	t.Parallel()

	// Values containing parameter delimiters must survive a round trip.
	const condition = `name = "a&b,c/d"`

	encoded, err := psa.NewQueryParams().WithConditions(condition).Encode()
	require.NoError(t, err)
	assert.NotContains(t, encoded, `"a&`)

	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, condition, values.Get("conditions"))
}

func TestQueryParamsEncodeEmpty(t *testing.T) {
	t.Parallel()

	encoded, err := psa.NewQueryParams().Encode()
	require.NoError(t, err)
	assert.Empty(t, encoded)
}

func TestQueryParamsOmitsUnsetParameters(t *testing.T) {
	t.Parallel()

	encoded, err := psa.NewQueryParams().WithPage(3).Encode()
	require.NoError(t, err)
	assert.Equal(t, "page=3", encoded)
}

func TestQueryParamsRejectsInvalidDirection(t *testing.T) {
	t.Parallel()

	params := psa.NewQueryParams().WithOrderBy("id", psa.OrderDirection("upward"))

	_, err := params.Encode()
	require.ErrorIs(t, err, psa.ErrInvalidOrderDirection)

	_, err = params.Values()
	require.ErrorIs(t, err, psa.ErrInvalidOrderDirection)

	_, err = params.SearchBody()
	require.ErrorIs(t, err, psa.ErrInvalidOrderDirection)
}

func TestQueryParamsSearchBody(t *testing.T) {
	t.Parallel()

	params := psa.NewQueryParams().
		WithConditions("id > 100").
		WithOrderBy("id", psa.OrderDesc).
		WithPage(4).
		WithPageSize(10)

	body, err := params.SearchBody()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"conditions": "id > 100",
		"orderBy":    "id desc",
	}, body, "paging never leaks into the search body")

	assert.Equal(t, "page=4&pageSize=10", params.PagingQuery())
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/tickets", psa.JoinURL("/tickets", ""))
	assert.Equal(t, "/tickets?page=1", psa.JoinURL("/tickets", "page=1"))
	assert.Equal(t, "/tickets?a=1&page=2", psa.JoinURL("/tickets?a=1", "page=2"))
}

func TestNormalizeQuerySeparators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "well-formed URL unchanged",
			input: "https://host/path?a=1&b=2",
			want:  "https://host/path?a=1&b=2",
		},
		{
			name:  "leading ampersand repaired",
			input: "https://host/path&a=1&b=2",
			want:  "https://host/path?a=1&b=2",
		},
		{
			name:  "no query unchanged",
			input: "https://host/path",
			want:  "https://host/path",
		},
		{
			name:  "only first ampersand converted",
			input: "/path&a=1",
			want:  "/path?a=1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, psa.NormalizeQuerySeparators(tt.input))
		})
	}
}
