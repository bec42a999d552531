// Package lucene renders a Kinetic DSL query as a Lucene query string.
package lucene

import (
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/formatter"
	"github.com/kyle-williams-1/solrbridge/language/kinetic"
	lucenesyntax "github.com/kyle-williams-1/solrbridge/language/lucene"
)

// Formatter represents a Lucene formatter for Kinetic DSL queries.
type Formatter struct {
	escape func(string) string
}

// New creates a new Lucene formatter instance.
func New() *Formatter {
	return &Formatter{escape: lucenesyntax.Escape}
}

// Ensure Formatter implements the generic interface
var _ formatter.Formatter[string] = (*Formatter)(nil)

// Format renders query. Fields outside the whitelist are skipped; the remaining clauses
// are joined with the query's operator and, when a prefix was written, grouped as
// "PREFIX && ( clauses PREFIX )".
func (f *Formatter) Format(query *kinetic.Query) (string, error) {
	var sb strings.Builder

	// The group is decided on the prefix as written, even when it substitutes to nothing.
	grouped := strings.TrimSpace(query.PrefixSource) != ""
	if grouped {
		sb.WriteString(query.Prefix)
		sb.WriteString(" && ( ")
	}

	op := strings.TrimSpace(query.ConcatOperator)
	if op == "" {
		op = config.DefaultConcatOperator
	}

	clauses := make([]string, 0, len(query.Fields))
	for _, spec := range query.Fields {
		if !query.Allowed(spec.Field) {
			continue
		}
		clauses = append(clauses, f.clause(spec))
	}
	sb.WriteString(strings.Join(clauses, " "+op+" "))

	// The prefix is repeated before the closing parenthesis as written in the descriptor.
	if grouped {
		sb.WriteString(" ")
		sb.WriteString(query.PrefixSource)
		sb.WriteString(" )")
	}

	if sb.Len() == 0 {
		return "", &bridgeerr.EmptyGeneratedQueryError{Body: query.Body}
	}
	return sb.String(), nil
}

// clause renders one field, e.g. name:*ipod* or name:(+"a" +"b")
func (f *Formatter) clause(spec kinetic.FieldMatchSpec) string {
	if !spec.Value.IsList() {
		return spec.Field + ":" + f.term(spec, spec.Value.Scalar())
	}

	terms := make([]string, 0, len(spec.Value.Strings()))
	for _, value := range spec.Value.Strings() {
		term := f.term(spec, value)
		if spec.RequireAll {
			term = "+" + term
		}
		terms = append(terms, term)
	}
	return spec.Field + ":(" + strings.Join(terms, " ") + ")"
}

// term renders a single value with its phrase quotes and wildcards
func (f *Formatter) term(spec kinetic.FieldMatchSpec, value string) string {
	var sb strings.Builder
	if spec.IsPhrase {
		sb.WriteByte('"')
	}
	if spec.Matcher.LeadingWildcard() {
		sb.WriteByte('*')
	}
	sb.WriteString(f.escape(value))
	if spec.Matcher.TrailingWildcard() {
		sb.WriteByte('*')
	}
	if spec.IsPhrase {
		sb.WriteByte('"')
	}
	return sb.String()
}
