// Package compiler turns a detected qualification descriptor into a backend query.
package compiler

import (
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/formatter"
	"github.com/kyle-williams-1/solrbridge/language/kinetic"
	"github.com/kyle-williams-1/solrbridge/language/lucene"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
	"github.com/kyle-williams-1/solrbridge/qualification"
)

// Compiler compiles a descriptor and its parameters into a query string.
type Compiler interface {
	Compile(desc *qualification.Descriptor, params placeholder.Parameters) (string, error)
}

// Kinetic compiles structured Kinetic DSL descriptors.
type Kinetic struct {
	Config    *config.Config
	parser    *kinetic.Parser
	formatter formatter.Formatter[string]
}

// NewKinetic creates a Kinetic DSL compiler rendering through f.
func NewKinetic(cfg *config.Config, f formatter.Formatter[string]) *Kinetic {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Kinetic{Config: cfg, parser: kinetic.New(), formatter: f}
}

// Compile renders the descriptor through the compiler's formatter.
func (k *Kinetic) Compile(desc *qualification.Descriptor, params placeholder.Parameters) (string, error) {
	query, err := k.Prepare(desc, params)
	if err != nil {
		return "", err
	}
	return k.formatter.Format(query)
}

// Prepare resolves the descriptor into a *kinetic.Query: the prefix is substituted with
// Lucene escaping, the body with JSON escaping before it is decoded.
func (k *Kinetic) Prepare(desc *qualification.Descriptor, params placeholder.Parameters) (*kinetic.Query, error) {
	var prefix string
	if strings.TrimSpace(desc.Prefix) != "" {
		var err error
		prefix, err = placeholder.Substitute(desc.Prefix, params, lucene.Escape)
		if err != nil {
			return nil, err
		}
	}

	op := desc.ConcatOperator
	if strings.TrimSpace(op) == "" {
		op = k.Config.ConcatOperator
	}

	if strings.TrimSpace(desc.Query) == "" {
		return nil, &bridgeerr.EmptyQueryBodyError{}
	}
	body, err := placeholder.Normalize(desc.Query)
	if err != nil {
		return nil, err
	}
	body, err = placeholder.Substitute(body, params, placeholder.JSONString)
	if err != nil {
		return nil, err
	}

	query, err := k.parser.ParseWhitelisted(body, desc.Whitelist)
	if err != nil {
		return nil, err
	}
	query.Prefix = prefix
	query.PrefixSource = desc.Prefix
	query.ConcatOperator = op
	return query, nil
}

// Passthrough substitutes parameters into a literal query without compiling it. Raw
// qualifications and Solr DSL descriptors both use it.
type Passthrough struct{}

// NewPassthrough creates a passthrough compiler.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Compile substitutes params into the descriptor query. JSON shaped fragments get JSON
// string escaping, everything else Lucene escaping.
func (p *Passthrough) Compile(desc *qualification.Descriptor, params placeholder.Parameters) (string, error) {
	encode := lucene.Escape
	if qualification.LooksLikeJSON(desc.Query) {
		encode = placeholder.JSONString
	}
	return placeholder.Substitute(desc.Query, params, encode)
}
