// Package bson renders a Kinetic DSL query as a MongoDB filter.
package bson

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/formatter"
	"github.com/kyle-williams-1/solrbridge/language/kinetic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Formatter represents a BSON formatter for Kinetic DSL queries.
type Formatter struct{}

// New creates a new BSON formatter instance.
func New() *Formatter {
	return &Formatter{}
}

// Ensure Formatter implements the generic interface
var _ formatter.Formatter[bson.M] = (*Formatter)(nil)

// Format converts a Kinetic DSL query into a BSON filter.
// A query prefix is raw Lucene and has no BSON equivalent, so it is rejected.
func (f *Formatter) Format(query *kinetic.Query) (bson.M, error) {
	if prefix := prefixOf(query); prefix != "" {
		return bson.M{}, fmt.Errorf("query prefix %q cannot be rendered as a BSON filter", prefix)
	}

	combinator, err := f.combinator(query.ConcatOperator)
	if err != nil {
		return bson.M{}, err
	}

	var conditions []bson.M
	for _, spec := range query.Fields {
		if !query.Allowed(spec.Field) {
			continue
		}
		conditions = append(conditions, f.fieldToBSON(spec))
	}

	switch {
	case len(conditions) == 0:
		return bson.M{}, &bridgeerr.EmptyGeneratedQueryError{Body: query.Body}
	case len(conditions) == 1:
		return conditions[0], nil
	case combinator == "$or":
		return bson.M{"$or": conditions}, nil
	default:
		return f.buildAndResult(conditions), nil
	}
}

// prefixOf returns the query prefix as written, falling back to the substituted one
func prefixOf(query *kinetic.Query) string {
	if prefix := strings.TrimSpace(query.PrefixSource); prefix != "" {
		return prefix
	}
	return strings.TrimSpace(query.Prefix)
}

// combinator maps a clause operator onto a BSON logical operator
func (f *Formatter) combinator(op string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(op)) {
	case "", "&&", "AND":
		return "$and", nil
	case "||", "OR":
		return "$or", nil
	default:
		return "", fmt.Errorf("operator %q has no BSON equivalent", op)
	}
}

// fieldToBSON converts one field entry into a BSON condition
func (f *Formatter) fieldToBSON(spec kinetic.FieldMatchSpec) bson.M {
	if !spec.Value.IsList() {
		value := spec.Value.Scalar()
		if spec.Matcher == kinetic.MatcherExact {
			return bson.M{spec.Field: value}
		}
		return bson.M{spec.Field: bson.M{"$regex": f.pattern(spec.Matcher, value)}}
	}

	values := make([]interface{}, 0, len(spec.Value.Strings()))
	for _, value := range spec.Value.Strings() {
		if spec.Matcher == kinetic.MatcherExact {
			values = append(values, value)
			continue
		}
		values = append(values, primitive.Regex{Pattern: f.pattern(spec.Matcher, value)})
	}

	operator := "$in"
	if spec.RequireAll {
		operator = "$all"
	}
	return bson.M{spec.Field: bson.M{operator: values}}
}

// pattern builds an anchored regular expression for a wildcard matcher
func (f *Formatter) pattern(matcher kinetic.Matcher, value string) string {
	pattern := regexp.QuoteMeta(value)
	if !matcher.LeadingWildcard() {
		// J* - starts with pattern
		pattern = "^" + pattern
	}
	if !matcher.TrailingWildcard() {
		// *J - ends with pattern
		pattern = pattern + "$"
	}
	return pattern
}

// buildAndResult merges conditions on distinct fields into one document and falls back
// to $and when two conditions share a field
func (f *Formatter) buildAndResult(conditions []bson.M) bson.M {
	directFields := bson.M{}
	for _, condition := range conditions {
		for k := range condition {
			if _, exists := directFields[k]; exists {
				return bson.M{"$and": conditions}
			}
		}
		for k, v := range condition {
			directFields[k] = v
		}
	}
	return directFields
}
