// Package jsonpath resolves the JSONPath expressions that locate records and fields in a
// backend response. Definite paths yield one value; paths with wildcards, recursive
// descent, unions, slices or filters yield the list of every match.
package jsonpath

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
)

// ErrNotFound is returned when a definite path does not resolve against a document.
var ErrNotFound = errors.New("jsonpath: no value at path")

// quotedKey matches a single-quoted bracket member such as ['cat.name'].
var quotedKey = regexp.MustCompile(`\[\s*'((?:[^'\\]|\\.)*)'\s*\]`)

// Path is a compiled JSONPath expression.
type Path struct {
	expr string
	eval gval.Evaluable
}

// Compile parses expr into a Path. Expressions without a leading "$" or "@" are read
// relative to the root, so "response.docs" means "$.response.docs".
func Compile(expr string) (*Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("jsonpath: empty expression")
	}
	if !strings.HasPrefix(expr, "$") && !strings.HasPrefix(expr, "@") {
		expr = "$." + expr
	}
	eval, err := jsonpath.New(doubleQuoteKeys(expr))
	if err != nil {
		return nil, fmt.Errorf("jsonpath: invalid expression %q: %w", expr, err)
	}
	return &Path{expr: expr, eval: eval}, nil
}

// Get resolves expr against doc, a value decoded by encoding/json.
func Get(doc any, expr string) (any, error) {
	path, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return path.Resolve(doc)
}

// Resolve evaluates the path against doc.
func (p *Path) Resolve(doc any) (any, error) {
	value, err := p.eval(context.Background(), doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, p.expr, err)
	}
	return value, nil
}

// String returns the expression as compiled.
func (p *Path) String() string {
	return p.expr
}

// doubleQuoteKeys rewrites ['key'] members as ["key"]; the evaluator only reads
// double-quoted strings.
func doubleQuoteKeys(expr string) string {
	return quotedKey.ReplaceAllStringFunc(expr, func(m string) string {
		key := quotedKey.FindStringSubmatch(m)[1]
		key = strings.ReplaceAll(key, `\'`, `'`)
		return "[" + strconv.Quote(key) + "]"
	})
}
