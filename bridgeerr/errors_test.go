package bridgeerr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "missing parameter",
			err:      &bridgeerr.MissingParameterError{Name: "product name"},
			contains: "the 'product name' parameter was referenced but not provided",
		},
		{
			name:     "missing parameter map",
			err:      &bridgeerr.MissingParameterError{Name: "q", NoParameters: true},
			contains: "no parameters were provided",
		},
		{
			name:     "unsupported type",
			err:      &bridgeerr.UnsupportedQueryTypeError{Type: "SQL", Valid: []string{"Kinetic DSL", "Solr DSL"}},
			contains: `"SQL" is not valid, valid options are: Kinetic DSL, Solr DSL`,
		},
		{
			name:     "missing field value",
			err:      &bridgeerr.MissingFieldValueError{Field: "name", Body: "{}"},
			contains: "the name field is missing a value key",
		},
		{
			name:     "empty body",
			err:      &bridgeerr.EmptyQueryBodyError{},
			contains: "the 'query' key is required",
		},
		{
			name:     "empty generated query",
			err:      &bridgeerr.EmptyGeneratedQueryError{Body: "{}"},
			contains: "unable to produce a lucene query",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Contains(t, test.err.Error(), test.contains)
		})
	}
}

func TestErrorsUnwrapCause(t *testing.T) {
	var syntaxErr *json.SyntaxError
	cause := json.Unmarshal([]byte("{"), &struct{}{})
	require.Error(t, cause)

	wrapped := fmt.Errorf("count: %w", &bridgeerr.MetadataParseError{Query: "{", Err: cause})

	var metaErr *bridgeerr.MetadataParseError
	require.True(t, errors.As(wrapped, &metaErr))
	assert.Equal(t, "{", metaErr.Query)
	assert.True(t, errors.As(wrapped, &syntaxErr))

	body := &bridgeerr.StructuredBodyParseError{Body: "[", Err: cause}
	assert.ErrorIs(t, body, cause)
}
