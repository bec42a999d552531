// Package factory provides factory functions for creating compilers and formatters.
package factory

import (
	"fmt"
	"strings"

	"github.com/kyle-williams-1/solrbridge/compiler"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/formatter"
	bsonformatter "github.com/kyle-williams-1/solrbridge/formatter/bson"
	luceneformatter "github.com/kyle-williams-1/solrbridge/formatter/lucene"
	"github.com/kyle-williams-1/solrbridge/language"
	"github.com/kyle-williams-1/solrbridge/language/kinetic"
	"github.com/kyle-williams-1/solrbridge/language/placeholder"
	"go.mongodb.org/mongo-driver/bson"
)

// CreateCompiler creates a compiler based on the DSL type.
func CreateCompiler(dsl config.DSLType, cfg *config.Config) (compiler.Compiler, error) {
	switch {
	case strings.EqualFold(string(dsl), string(config.DSLKinetic)):
		return compiler.NewKinetic(cfg, CreateLuceneFormatter()), nil
	case strings.EqualFold(string(dsl), string(config.DSLSolr)), strings.EqualFold(string(dsl), string(config.DSLRaw)):
		return compiler.NewPassthrough(), nil
	default:
		return nil, fmt.Errorf("unsupported DSL type: %s", dsl)
	}
}

// CreateParser creates the parser for a DSL body. Only the Kinetic DSL has a structured
// body; other bodies are scanned for placeholders.
func CreateParser(dsl config.DSLType) (language.Parser, error) {
	switch {
	case strings.EqualFold(string(dsl), string(config.DSLKinetic)):
		return kinetic.New(), nil
	case strings.EqualFold(string(dsl), string(config.DSLSolr)), strings.EqualFold(string(dsl), string(config.DSLRaw)):
		return placeholder.New(), nil
	default:
		return nil, fmt.Errorf("unsupported DSL type: %s", dsl)
	}
}

// CreateLuceneFormatter creates a Lucene formatter with proper typing.
func CreateLuceneFormatter() formatter.Formatter[string] {
	return luceneformatter.New()
}

// CreateBSONFormatter creates a BSON formatter with proper typing.
func CreateBSONFormatter() formatter.Formatter[bson.M] {
	return bsonformatter.New()
}
