// Package config provides configuration for qualification translation.
package config

// DSLType names a query style that a JSON descriptor can select through its "type" key.
type DSLType string

const (
	// DSLKinetic represents the structured field/matcher query style
	DSLKinetic DSLType = "Kinetic DSL"
	// DSLSolr represents a literal Solr query embedded in a descriptor
	DSLSolr DSLType = "Solr DSL"
	// DSLRaw represents a qualification that is not a JSON descriptor at all
	DSLRaw DSLType = "raw"
)

const (
	// DefaultRootPath is where Solr's select handler puts matching documents.
	DefaultRootPath = "$.response.docs"
	// DefaultConcatOperator joins Kinetic DSL field clauses.
	DefaultConcatOperator = "&&"
	// DefaultEmptyQuery is sent to Solr when a qualification compiles to a blank query.
	DefaultEmptyQuery = "*:*"
)

// Config represents the configuration for a translator.
type Config struct {
	RootPath       string
	ConcatOperator string
	EmptyQuery     string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RootPath:       DefaultRootPath,
		ConcatOperator: DefaultConcatOperator,
		EmptyQuery:     DefaultEmptyQuery,
	}
}

// WithRootPath sets the result root path used when a descriptor supplies none and returns the config.
func (c *Config) WithRootPath(path string) *Config {
	c.RootPath = path
	return c
}

// WithConcatOperator sets the default clause operator and returns the config.
func (c *Config) WithConcatOperator(op string) *Config {
	c.ConcatOperator = op
	return c
}

// WithEmptyQuery sets the query sent when compilation yields a blank string and returns the config.
func (c *Config) WithEmptyQuery(query string) *Config {
	c.EmptyQuery = query
	return c
}
