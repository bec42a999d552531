// Package kinetic decodes the Kinetic DSL: a JSON object mapping field names to matchers.
package kinetic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/language"
)

// Matcher classifies how a field value is compared.
type Matcher int

const (
	// MatcherExact matches the value as is (default)
	MatcherExact Matcher = iota
	// MatcherLike matches the value anywhere in the field
	MatcherLike
	// MatcherStartsWith matches fields beginning with the value
	MatcherStartsWith
	// MatcherEndsWith matches fields ending with the value
	MatcherEndsWith
)

// ParseMatcher maps a matcher name to a Matcher. Unknown names fall back to MatcherExact.
func ParseMatcher(name string) Matcher {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "like":
		return MatcherLike
	case "startswith":
		return MatcherStartsWith
	case "endswith":
		return MatcherEndsWith
	default:
		return MatcherExact
	}
}

func (m Matcher) String() string {
	switch m {
	case MatcherLike:
		return "like"
	case MatcherStartsWith:
		return "startsWith"
	case MatcherEndsWith:
		return "endsWith"
	default:
		return "exact"
	}
}

// LeadingWildcard reports whether values are matched at the end of the field.
func (m Matcher) LeadingWildcard() bool {
	return m == MatcherEndsWith || m == MatcherLike
}

// TrailingWildcard reports whether values are matched at the start of the field.
func (m Matcher) TrailingWildcard() bool {
	return m == MatcherStartsWith || m == MatcherLike
}

// Value is either a single string or an ordered list of strings.
type Value struct {
	list   bool
	values []string
}

// Scalar creates a single-string Value.
func Scalar(s string) Value {
	return Value{values: []string{s}}
}

// List creates a list Value.
func List(values ...string) Value {
	return Value{list: true, values: values}
}

// IsList reports whether the value is a list.
func (v Value) IsList() bool {
	return v.list
}

// Scalar returns the single string of a scalar value.
func (v Value) Scalar() string {
	if v.list || len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// Strings returns the list elements, or the scalar as a one element slice.
func (v Value) Strings() []string {
	return v.values
}

// FieldMatchSpec is one field entry of a Kinetic DSL query.
type FieldMatchSpec struct {
	Field      string
	Matcher    Matcher
	IsPhrase   bool
	RequireAll bool
	Value      Value
}

// Query is a Kinetic DSL query ready to be formatted.
type Query struct {
	// Fields in the order they appear in the body.
	Fields []FieldMatchSpec
	// Prefix is the substituted query prefix, empty when none was given.
	Prefix string
	// PrefixSource is the prefix exactly as written in the descriptor.
	PrefixSource string
	// ConcatOperator joins field clauses.
	ConcatOperator string
	// Whitelist restricts the fields used; nil allows every field.
	Whitelist []string
	// Body is the substituted query body, kept for error reporting.
	Body string
}

// Allowed reports whether field passes the whitelist.
func (q *Query) Allowed(field string) bool {
	if q.Whitelist == nil {
		return true
	}
	for _, allowed := range q.Whitelist {
		if allowed == field {
			return true
		}
	}
	return false
}

// Parser decodes Kinetic DSL bodies.
type Parser struct{}

// New creates a new Kinetic DSL parser instance.
func New() *Parser {
	return &Parser{}
}

// Parse decodes body into a *Query with its Fields populated.
func (p *Parser) Parse(body string) (language.AST, error) {
	return p.ParseQuery(body)
}

// ParseQuery decodes body into a *Query with its Fields populated.
func (p *Parser) ParseQuery(body string) (*Query, error) {
	return p.ParseWhitelisted(body, nil)
}

// ParseWhitelisted decodes body keeping only the fields whitelist allows; a nil whitelist
// allows every field. Entries outside the whitelist are dropped without being validated.
func (p *Parser) ParseWhitelisted(body string, whitelist []string) (*Query, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &bridgeerr.EmptyQueryBodyError{}
	}
	query := &Query{Whitelist: whitelist, Body: body}
	fields, err := decodeFields(body, query.Allowed)
	if err != nil {
		return nil, err
	}
	query.Fields = fields
	return query, nil
}

// rawSpec mirrors the JSON shape of a field entry before its value is classified.
type rawSpec struct {
	Value      json.RawMessage `json:"value"`
	Matcher    *string         `json:"matcher"`
	IsPhrase   *bool           `json:"isPhrase"`
	RequireAll *bool           `json:"requireAll"`
}

// decodeFields walks the top-level object token by token so field order is preserved.
func decodeFields(body string, allowed func(field string) bool) ([]FieldMatchSpec, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	bodyErr := func(err error) error {
		return &bridgeerr.StructuredBodyParseError{Body: body, Err: err}
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, bodyErr(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, bodyErr(fmt.Errorf("expected a JSON object, got %v", tok))
	}

	var fields []FieldMatchSpec
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, bodyErr(err)
		}
		field, ok := keyTok.(string)
		if !ok {
			return nil, bodyErr(fmt.Errorf("expected a field name, got %v", keyTok))
		}

		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, bodyErr(err)
		}
		if !allowed(field) {
			continue
		}
		spec, err := decodeSpec(field, entry, body)
		if err != nil {
			return nil, err
		}
		fields = append(fields, spec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, bodyErr(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, bodyErr(errors.New("unexpected data after the query object"))
	}
	return fields, nil
}

func decodeSpec(field string, entry json.RawMessage, body string) (FieldMatchSpec, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FieldMatchSpec{}, &bridgeerr.StructuredBodyParseError{
			Body: body,
			Err:  fmt.Errorf("the %s field must be a JSON object", field),
		}
	}

	var raw rawSpec
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return FieldMatchSpec{}, &bridgeerr.StructuredBodyParseError{Body: body, Err: fmt.Errorf("field %s: %w", field, err)}
	}

	value, ok := decodeValue(raw.Value)
	if !ok {
		return FieldMatchSpec{}, &bridgeerr.MissingFieldValueError{Field: field, Body: body}
	}

	spec := FieldMatchSpec{Field: field, Value: value}
	if raw.Matcher != nil {
		spec.Matcher = ParseMatcher(*raw.Matcher)
	}
	if raw.IsPhrase != nil {
		spec.IsPhrase = *raw.IsPhrase
	}
	if raw.RequireAll != nil {
		spec.RequireAll = *raw.RequireAll
	}
	return spec, nil
}

// decodeValue classifies a raw value as a string or a list of strings. Anything else,
// including an absent or null value, is rejected.
func decodeValue(raw json.RawMessage) (Value, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}, false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Value{}, false
		}
		return Scalar(s), true
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Value{}, false
		}
		return List(list...), true
	default:
		return Value{}, false
	}
}
