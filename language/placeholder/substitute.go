package placeholder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
)

// Parameters maps parameter names to values. A nil map means no parameters were supplied.
type Parameters map[string]string

// Encoder escapes a parameter value for the context its placeholder sits in.
type Encoder func(value string) string

// Canonical renders the canonical placeholder for name.
func Canonical(name string) string {
	return "<%= parameter['" + name + "'] %>"
}

// Normalize rewrites every placeholder to the canonical <%= parameter['name'] %> form.
// Double-quoted placeholders would otherwise break a JSON descriptor they are embedded in.
func Normalize(input string) (string, error) {
	spans, err := Find(input)
	if err != nil {
		return "", fmt.Errorf("failed to scan placeholders: %w", err)
	}
	if len(spans) == 0 {
		return input, nil
	}
	return rewrite(input, spans, func(s Span) (string, error) {
		return Canonical(s.Name), nil
	})
}

// Single reports whether the trimmed input is exactly one placeholder and nothing else.
func Single(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	spans, err := Find(trimmed)
	if err != nil || len(spans) != 1 {
		return "", false
	}
	if spans[0].Start != 0 || spans[0].End != len(trimmed) {
		return "", false
	}
	return spans[0].Name, true
}

// Substitute replaces every placeholder of input with its encoded parameter value.
//
// When the trimmed input is a single placeholder the raw value replaces the whole string
// unencoded, so a complete query fragment can be passed as one parameter.
func Substitute(input string, params Parameters, encode Encoder) (string, error) {
	if name, ok := Single(input); ok {
		return lookup(params, name)
	}

	spans, err := Find(input)
	if err != nil {
		return "", fmt.Errorf("failed to scan placeholders: %w", err)
	}
	if len(spans) == 0 {
		return input, nil
	}
	return rewrite(input, spans, func(s Span) (string, error) {
		value, err := lookup(params, s.Name)
		if err != nil {
			return "", err
		}
		return encode(value), nil
	})
}

// JSONString escapes value for embedding inside a JSON string literal.
func JSONString(value string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return value
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return string(out[1 : len(out)-1])
}

func lookup(params Parameters, name string) (string, error) {
	if params == nil {
		return "", &bridgeerr.MissingParameterError{Name: name, NoParameters: true}
	}
	value, ok := params[name]
	if !ok {
		return "", &bridgeerr.MissingParameterError{Name: name}
	}
	return value, nil
}

func rewrite(input string, spans []Span, replace func(Span) (string, error)) (string, error) {
	var sb strings.Builder
	last := 0
	for _, span := range spans {
		replacement, err := replace(span)
		if err != nil {
			return "", err
		}
		sb.WriteString(input[last:span.Start])
		sb.WriteString(replacement)
		last = span.End
	}
	sb.WriteString(input[last:])
	return sb.String(), nil
}
