// Package qualification detects whether a bridge qualification is a raw query or a JSON
// query descriptor, and parses the descriptor once per qualification.
package qualification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
)

// Kind classifies a qualification.
type Kind int

const (
	// KindNone is a qualification that is a raw query rather than a JSON descriptor
	KindNone Kind = iota
	// KindStructuredKinetic is a descriptor of type "Kinetic DSL"
	KindStructuredKinetic
	// KindRawSolr is a descriptor of type "Solr DSL"
	KindRawSolr
	// KindUnrecognized is a descriptor whose type names no known DSL
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStructuredKinetic:
		return "kinetic"
	case KindRawSolr:
		return "solr"
	default:
		return "unrecognized"
	}
}

// Qualification is a caller supplied qualification string. Its pointer identity keys the
// descriptor cache.
type Qualification struct {
	raw string
}

// New wraps a raw qualification string.
func New(raw string) *Qualification {
	return &Qualification{raw: raw}
}

// Raw returns the qualification as supplied.
func (q *Qualification) Raw() string {
	return q.raw
}

// Descriptor is the parsed form of a qualification.
type Descriptor struct {
	Kind Kind
	// Type is the descriptor "type" value as written; empty for KindNone.
	Type string
	// Query is the descriptor body, or the normalized qualification for KindNone.
	Query string
	// RootPath is the descriptor "jsonRootPath", empty when absent.
	RootPath string
	// Prefix is the descriptor "queryPrefix", empty when absent.
	Prefix string
	// ConcatOperator is the descriptor "concatenatingOperator", empty when absent.
	ConcatOperator string
	// Whitelist is the descriptor "whitelistedFields"; nil when absent.
	Whitelist []string
}

// DSL returns the DSL type the descriptor is compiled with.
func (d *Descriptor) DSL() config.DSLType {
	if d.Kind == KindNone {
		return config.DSLRaw
	}
	return config.DSLType(d.Type)
}

// ResultRootPath returns the descriptor's non-blank root path.
func (d *Descriptor) ResultRootPath() (string, bool) {
	if strings.TrimSpace(d.RootPath) == "" {
		return "", false
	}
	return d.RootPath, true
}

// metadata holds the descriptor keys. Keys are matched exactly, so "Type" or "QUERY"
// are ignored like any other unknown key.
type metadata struct {
	Type                  *string
	Query                 *string
	JSONRootPath          *string
	QueryPrefix           *string
	ConcatenatingOperator *string
	ConcateOperator       *string
	WhitelistedFields     *[]string
	WhitelistFields       *[]string
}

// decode reads the known keys of members into m.
func (m *metadata) decode(members map[string]json.RawMessage) error {
	targets := map[string]any{
		"type":                  &m.Type,
		"query":                 &m.Query,
		"jsonRootPath":          &m.JSONRootPath,
		"queryPrefix":           &m.QueryPrefix,
		"concatenatingOperator": &m.ConcatenatingOperator,
		"concateOperator":       &m.ConcateOperator,
		"whitelistedFields":     &m.WhitelistedFields,
		"whitelistFields":       &m.WhitelistFields,
	}
	for key, target := range targets {
		raw, ok := members[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("descriptor key %q: %w", key, err)
		}
	}
	return nil
}

// Detector classifies and parses qualifications. It counts the descriptor parses it
// performs so memoization can be observed.
type Detector struct {
	parses atomic.Int64
}

// NewDetector creates a new detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Parses returns how many JSON descriptors the detector has decoded.
func (d *Detector) Parses() int64 {
	return d.parses.Load()
}

// LooksLikeJSON reports whether s, once trimmed, is shaped like a JSON object.
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}'
}

// Detect normalizes placeholders in raw and parses it as a descriptor when it is shaped
// like a JSON object.
func (d *Detector) Detect(raw string) (*Descriptor, error) {
	normalized, err := placeholder.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if !LooksLikeJSON(normalized) {
		return &Descriptor{Kind: KindNone, Query: normalized}, nil
	}

	d.parses.Add(1)
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(normalized))))
	var members map[string]json.RawMessage
	if err := dec.Decode(&members); err != nil {
		return nil, &bridgeerr.MetadataParseError{Query: normalized, Err: err}
	}
	if dec.More() {
		return nil, &bridgeerr.MetadataParseError{Query: normalized, Err: fmt.Errorf("unexpected data after the descriptor object")}
	}
	var meta metadata
	if err := meta.decode(members); err != nil {
		return nil, &bridgeerr.MetadataParseError{Query: normalized, Err: err}
	}
	return meta.descriptor(), nil
}

func (m *metadata) descriptor() *Descriptor {
	desc := &Descriptor{
		Type:           deref(m.Type),
		Query:          deref(m.Query),
		RootPath:       deref(m.JSONRootPath),
		Prefix:         deref(m.QueryPrefix),
		ConcatOperator: deref(m.ConcatenatingOperator),
	}
	if m.ConcatenatingOperator == nil {
		desc.ConcatOperator = deref(m.ConcateOperator)
	}
	switch {
	case m.WhitelistedFields != nil:
		desc.Whitelist = *m.WhitelistedFields
	case m.WhitelistFields != nil:
		desc.Whitelist = *m.WhitelistFields
	}

	switch {
	case strings.EqualFold(desc.Type, string(config.DSLKinetic)):
		desc.Kind = KindStructuredKinetic
	case strings.EqualFold(desc.Type, string(config.DSLSolr)):
		desc.Kind = KindRawSolr
	default:
		desc.Kind = KindUnrecognized
	}
	return desc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
