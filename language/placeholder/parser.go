// Package placeholder parses and substitutes <%= parameter['name'] %> placeholders.
package placeholder

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/kyle-williams-1/solrbridge/language"
)

// Participle grammar structures for a qualification template

// Template is the root of the Participle AST: the input as a sequence of text and placeholders
type Template struct {
	Segments []*Segment `@@*`
}

// Segment is either a placeholder or a run of literal text
type Segment struct {
	Pos lexer.Position

	Placeholder *string `  @Placeholder`
	Quoted      *string `| @QuotedPlaceholder`
	Text        *string `| @( Text | Angle )`
}

// Lexer definition for qualification templates
var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Canonical single-quoted placeholder
	{Name: "Placeholder", Pattern: `<%=\s*parameter\[\s*'.*?'\s*\]\s*%>`},
	// Double-quoted placeholder, rewritten to the canonical form by Normalize
	{Name: "QuotedPlaceholder", Pattern: `<%=\s*parameter\[\s*".*?"\s*\]\s*%>`},
	// Anything that cannot start a placeholder
	{Name: "Text", Pattern: `[^<]+`},
	// A '<' that does not start a placeholder
	{Name: "Angle", Pattern: `<`},
})

// Parser instance using Participle
var participleParser = participle.MustBuild[Template](
	participle.Lexer(templateLexer),
)

// Span locates one placeholder in the parsed input by byte offsets.
type Span struct {
	Start int
	End   int
	Name  string
	// Quoted is set for the double-quoted placeholder form.
	Quoted bool
}

// Parser parses qualification templates.
type Parser struct{}

// New creates a new placeholder parser instance.
func New() *Parser {
	return &Parser{}
}

// Parse parses input into a *Template.
func (p *Parser) Parse(input string) (language.AST, error) {
	return parse(input)
}

func parse(input string) (*Template, error) {
	if input == "" {
		return &Template{}, nil
	}
	return participleParser.ParseString("", input)
}

// Spans returns the placeholders of the template in input order.
func (t *Template) Spans() []Span {
	var spans []Span
	for _, seg := range t.Segments {
		var token string
		quoted := false
		switch {
		case seg.Placeholder != nil:
			token = *seg.Placeholder
		case seg.Quoted != nil:
			token = *seg.Quoted
			quoted = true
		default:
			continue
		}
		spans = append(spans, Span{
			Start:  seg.Pos.Offset,
			End:    seg.Pos.Offset + len(token),
			Name:   nameOf(token),
			Quoted: quoted,
		})
	}
	return spans
}

// Find returns the placeholder spans of input.
func Find(input string) ([]Span, error) {
	tmpl, err := parse(input)
	if err != nil {
		return nil, err
	}
	return tmpl.Spans(), nil
}

// nameOf extracts the parameter name from a lexed placeholder token.
func nameOf(token string) string {
	open := strings.IndexByte(token, '[')
	closing := strings.LastIndexByte(token, ']')
	if open < 0 || closing <= open {
		return ""
	}
	quoted := strings.TrimSpace(token[open+1 : closing])
	if len(quoted) < 2 {
		return ""
	}
	return quoted[1 : len(quoted)-1]
}
