// Package bridgeerr defines the error kinds returned while translating a bridge qualification.
//
// Every error is fatal to the translation that produced it. The work is pure and
// deterministic, so none of them are worth retrying without changing the input.
package bridgeerr

import (
	"fmt"
	"strings"
)

// MetadataParseError is returned when a qualification looks like a JSON descriptor
// (it starts and ends with curly braces) but does not decode as one.
type MetadataParseError struct {
	Query string
	Err   error
}

func (e *MetadataParseError) Error() string {
	msg := fmt.Sprintf("the bridge query (%s) appears to be a JSON object instead of a lucene query because it starts and ends with curly braces, but it failed to parse as JSON", e.Query)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

// UnsupportedQueryTypeError is returned when a descriptor names a DSL that is not registered.
type UnsupportedQueryTypeError struct {
	Type  string
	Valid []string
}

func (e *UnsupportedQueryTypeError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("the specified query type %q is not valid", e.Type)
	}
	return fmt.Sprintf("the specified query type %q is not valid, valid options are: %s", e.Type, strings.Join(e.Valid, ", "))
}

// MissingParameterError is returned when a placeholder references a parameter that was
// not supplied. NoParameters is set when the parameter map itself was absent.
type MissingParameterError struct {
	Name         string
	NoParameters bool
}

func (e *MissingParameterError) Error() string {
	if e.NoParameters {
		return fmt.Sprintf("unable to parse qualification, the '%s' parameter was referenced but no parameters were provided", e.Name)
	}
	return fmt.Sprintf("unable to parse qualification, the '%s' parameter was referenced but not provided", e.Name)
}

// MissingFieldValueError is returned when a structured field entry has no usable value.
type MissingFieldValueError struct {
	Field string
	Body  string
}

func (e *MissingFieldValueError) Error() string {
	return fmt.Sprintf("the %s field is missing a value key in the Kinetic DSL JSON: %s", e.Field, e.Body)
}

// StructuredBodyParseError is returned when the Kinetic DSL query body is not valid JSON
// of the expected shape.
type StructuredBodyParseError struct {
	Body string
	Err  error
}

func (e *StructuredBodyParseError) Error() string {
	msg := fmt.Sprintf("the Kinetic DSL 'query' key string value (%s) did not parse successfully as JSON", e.Body)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuredBodyParseError) Unwrap() error { return e.Err }

// EmptyQueryBodyError is returned when a Kinetic DSL descriptor has a blank query body.
type EmptyQueryBodyError struct{}

func (e *EmptyQueryBodyError) Error() string {
	return "the Kinetic DSL query parameter value was not specified or was blank, the 'query' key is required"
}

// EmptyGeneratedQueryError is returned when compilation produced no query at all.
type EmptyGeneratedQueryError struct {
	Body string
}

func (e *EmptyGeneratedQueryError) Error() string {
	return fmt.Sprintf("unable to produce a lucene query from the following Kinetic DSL structure: %s", e.Body)
}
