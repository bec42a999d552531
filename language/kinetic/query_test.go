package kinetic

import (
	"errors"
	"testing"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	body := `{
		"name": {"value": ["Apple", "ipod"], "matcher": "like", "requireAll": true},
		"features": {"value": "mp3", "isPhrase": true},
		"cat": {"value": "elec", "matcher": "startsWith", "isPhrase": null}
	}`

	query, err := New().ParseQuery(body)
	require.NoError(t, err)
	require.Len(t, query.Fields, 3)

	assert.Equal(t, FieldMatchSpec{
		Field:      "name",
		Matcher:    MatcherLike,
		RequireAll: true,
		Value:      List("Apple", "ipod"),
	}, query.Fields[0])
	assert.Equal(t, FieldMatchSpec{
		Field:    "features",
		IsPhrase: true,
		Value:    Scalar("mp3"),
	}, query.Fields[1])
	assert.Equal(t, "cat", query.Fields[2].Field)
	assert.Equal(t, MatcherStartsWith, query.Fields[2].Matcher)
	assert.False(t, query.Fields[2].IsPhrase)
	assert.Equal(t, body, query.Body)
}

func TestParseQueryPreservesFieldOrder(t *testing.T) {
	query, err := New().ParseQuery(`{"z": {"value": "1"}, "a": {"value": "2"}, "m": {"value": "3"}}`)
	require.NoError(t, err)

	var names []string
	for _, f := range query.Fields {
		names = append(names, f.Field)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestParseWhitelisted(t *testing.T) {
	body := `{"secret": 5, "name": {"value": "ipod"}, "note": {"matcher": "like"}, "cat": {"value": "x"}}`

	query, err := New().ParseWhitelisted(body, []string{"name", "cat"})
	require.NoError(t, err)
	require.Len(t, query.Fields, 2)
	assert.Equal(t, "name", query.Fields[0].Field)
	assert.Equal(t, "cat", query.Fields[1].Field)
	assert.Equal(t, []string{"name", "cat"}, query.Whitelist)

	closed, err := New().ParseWhitelisted(body, []string{})
	require.NoError(t, err)
	assert.Empty(t, closed.Fields)

	_, err = New().ParseWhitelisted(body, nil)
	var target *bridgeerr.StructuredBodyParseError
	assert.True(t, errors.As(err, &target), "an open whitelist validates every entry, got %v", err)

	_, err = New().ParseWhitelisted(`{"name": {"value": "ipod"}, "secret": 5`, []string{"name"})
	assert.True(t, errors.As(err, &target), "the body must still be valid JSON, got %v", err)
}

func TestParseQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, err error)
	}{
		{
			name: "blank body",
			body: "   ",
			check: func(t *testing.T, err error) {
				var target *bridgeerr.EmptyQueryBodyError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "invalid json",
			body: `{"name": {"value": "x"`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.StructuredBodyParseError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "not an object",
			body: `["name"]`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.StructuredBodyParseError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "entry is not an object",
			body: `{"name": "ipod"}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.StructuredBodyParseError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "trailing data",
			body: `{"name": {"value": "x"}} {}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.StructuredBodyParseError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "missing value",
			body: `{"name": {"matcher": "like"}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.MissingFieldValueError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, "name", target.Field)
			},
		},
		{
			name: "null value",
			body: `{"name": {"value": null}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.MissingFieldValueError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "numeric value",
			body: `{"price": {"value": 5}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.MissingFieldValueError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, "price", target.Field)
			},
		},
		{
			name: "object value",
			body: `{"price": {"value": {"gt": 5}}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.MissingFieldValueError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "list with non string element",
			body: `{"price": {"value": ["a", 5]}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.MissingFieldValueError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name: "mistyped flag",
			body: `{"name": {"value": "x", "isPhrase": "yes"}}`,
			check: func(t *testing.T, err error) {
				var target *bridgeerr.StructuredBodyParseError
				assert.True(t, errors.As(err, &target))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New().ParseQuery(test.body)
			require.Error(t, err)
			test.check(t, err)
		})
	}
}

func TestParseMatcher(t *testing.T) {
	tests := map[string]Matcher{
		"like":       MatcherLike,
		"startsWith": MatcherStartsWith,
		"ENDSWITH":   MatcherEndsWith,
		"exact":      MatcherExact,
		"":           MatcherExact,
		"fuzzy":      MatcherExact,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, ParseMatcher(name), name)
	}

	assert.True(t, MatcherLike.LeadingWildcard())
	assert.True(t, MatcherLike.TrailingWildcard())
	assert.True(t, MatcherEndsWith.LeadingWildcard())
	assert.False(t, MatcherEndsWith.TrailingWildcard())
	assert.Equal(t, "startsWith", MatcherStartsWith.String())
}

func TestQueryAllowed(t *testing.T) {
	open := &Query{}
	assert.True(t, open.Allowed("anything"))

	restricted := &Query{Whitelist: []string{"name"}}
	assert.True(t, restricted.Allowed("name"))
	assert.False(t, restricted.Allowed("price"))

	closed := &Query{Whitelist: []string{}}
	assert.False(t, closed.Allowed("name"))
}
