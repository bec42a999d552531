// Package solrbridge translates bridge qualifications into Solr queries.
//
// A qualification is either a raw Lucene query or a JSON descriptor selecting a query
// DSL. Either form may reference caller parameters through <%= parameter['name'] %>
// placeholders, which are substituted with escaping that fits where they appear.
package solrbridge

import (
	"strings"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/compiler"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/factory"
	"github.com/kyle-williams-1/solrbridge/formatter"
	"github.com/kyle-williams-1/solrbridge/internal/loggingutil"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
	"github.com/kyle-williams-1/solrbridge/qualification"
	"github.com/kyle-williams-1/solrbridge/registry"
	"go.mongodb.org/mongo-driver/bson"
	"pkt.systems/pslog"
)

// Parameters maps placeholder names to the values substituted for them.
type Parameters = placeholder.Parameters

// Translator compiles qualifications. It memoizes descriptor parsing per qualification,
// so one Translator is meant to serve one request and be dropped with it.
type Translator struct {
	Config *config.Config

	cache    *qualification.Cache
	registry *registry.Registry
	filter   formatter.Formatter[bson.M]
	logger   pslog.Logger
}

// New creates a new translator with the default configuration.
func New() *Translator {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a new translator with the given configuration.
func NewWithConfig(cfg *config.Config) *Translator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Translator{
		Config:   cfg,
		cache:    qualification.NewCache(qualification.NewDetector(), cfg.RootPath),
		registry: registry.DefaultRegistry,
		filter:   factory.CreateBSONFormatter(),
		logger:   loggingutil.EnsureLogger(nil),
	}
}

// WithLogger sets the logger and returns the translator.
func (t *Translator) WithLogger(logger pslog.Logger) *Translator {
	t.logger = loggingutil.EnsureLogger(logger)
	return t
}

// WithRegistry sets the compiler registry and returns the translator.
func (t *Translator) WithRegistry(r *registry.Registry) *Translator {
	if r != nil {
		t.registry = r
	}
	return t
}

// Descriptor returns the parsed descriptor of q. Repeated calls with the same
// qualification reuse the first result.
func (t *Translator) Descriptor(q *qualification.Qualification) (*qualification.Descriptor, error) {
	return t.cache.Descriptor(q)
}

// Translate compiles q with params into a Solr query string.
func (t *Translator) Translate(q *qualification.Qualification, params Parameters) (string, error) {
	desc, err := t.cache.Descriptor(q)
	if err != nil {
		return "", err
	}
	if desc.Kind == qualification.KindUnrecognized {
		return "", &bridgeerr.UnsupportedQueryTypeError{Type: desc.Type, Valid: t.registry.DescriptorTypes()}
	}

	c, err := t.registry.GetCompiler(desc.DSL(), t.Config)
	if err != nil {
		return "", err
	}
	out, err := c.Compile(desc, params)
	if err != nil {
		return "", err
	}

	t.logger.Trace("qualification compiled", "dsl", string(desc.DSL()), "query", out)
	return out, nil
}

// TranslateFilter compiles a Kinetic DSL qualification into a MongoDB filter. Other
// qualification kinds are written in Lucene syntax and have no filter form.
func (t *Translator) TranslateFilter(q *qualification.Qualification, params Parameters) (bson.M, error) {
	desc, err := t.cache.Descriptor(q)
	if err != nil {
		return nil, err
	}
	if desc.Kind != qualification.KindStructuredKinetic {
		name := desc.Type
		if desc.Kind == qualification.KindNone {
			name = string(config.DSLRaw)
		}
		return nil, &bridgeerr.UnsupportedQueryTypeError{Type: name, Valid: []string{string(config.DSLKinetic)}}
	}

	query, err := compiler.NewKinetic(t.Config, nil).Prepare(desc, params)
	if err != nil {
		return nil, err
	}
	filter, err := t.filter.Format(query)
	if err != nil {
		return nil, err
	}

	t.logger.Trace("qualification compiled to filter", "fields", len(query.Fields))
	return filter, nil
}

// ResultRootPath returns the JSONPath locating result records for q.
func (t *Translator) ResultRootPath(q *qualification.Qualification) (string, error) {
	return t.cache.ResultRootPath(q)
}

// EmptyQuery returns query, or the configured match-all query when query is blank.
func (t *Translator) EmptyQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return t.Config.EmptyQuery
	}
	return query
}

// Parses returns how many JSON descriptors the translator has decoded.
func (t *Translator) Parses() int64 {
	return t.cache.Detector().Parses()
}

// Translate compiles a raw qualification string with params into a Solr query string.
func Translate(raw string, params Parameters) (string, error) {
	return New().Translate(qualification.New(raw), params)
}
