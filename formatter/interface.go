// Package formatter provides interfaces for rendering a Kinetic DSL query into a backend query.
package formatter

import (
	"github.com/kyle-williams-1/solrbridge/language/kinetic"
	"go.mongodb.org/mongo-driver/bson"
)

// Formatter renders a compiled Kinetic DSL query into a specific output type.
type Formatter[T any] interface {
	Format(query *kinetic.Query) (T, error)
}

// Type aliases for formatter types
type LuceneFormatter = Formatter[string]
type BSONFormatter = Formatter[bson.M]
