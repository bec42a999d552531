// Package lucene provides escaping of Lucene query syntax for untrusted parameter values.
package lucene

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer definition splitting a value into the units escaping rules operate on.
// Rule order matters: operator pairs must win over the single "Other" rune.
var escapeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Pair", Pattern: `\|\||&&`},
	{Name: "Word", Pattern: `[\p{L}\p{N}_]+`},
	{Name: "Reserved", Pattern: `[+\-=~><"?^${}():!/\[\]\\]`},
	{Name: "Space", Pattern: `[\s\v]`},
	{Name: "Other", Pattern: `(?s:.)`},
})

var (
	pairToken     = escapeLexer.Symbols()["Pair"]
	wordToken     = escapeLexer.Symbols()["Word"]
	reservedToken = escapeLexer.Symbols()["Reserved"]
	spaceToken    = escapeLexer.Symbols()["Space"]
)

// Token is one lexical unit of a value being escaped.
type Token struct {
	Type    lexer.TokenType
	Value   string
	Escaped bool
}

// Rule marks the tokens it applies to as escaped. Rules never see a token twice once it
// has been escaped, so a backslash introduced by an earlier rule cannot be escaped again.
type Rule struct {
	Name    string
	Matches func(tok Token) bool
}

// Rules is the escaping pipeline, applied in order.
var Rules = []Rule{
	{
		Name: "reserved-characters",
		Matches: func(tok Token) bool {
			return tok.Type == reservedToken || tok.Type == spaceToken
		},
	},
	{
		Name: "operator-pairs",
		Matches: func(tok Token) bool {
			return tok.Type == pairToken
		},
	},
	{
		Name: "boolean-keywords",
		Matches: func(tok Token) bool {
			if tok.Type != wordToken {
				return false
			}
			switch tok.Value {
			case "AND", "OR", "NOT":
				return true
			}
			return false
		},
	},
}

// Tokenize splits value into escaping tokens.
func Tokenize(value string) ([]Token, error) {
	lex, err := escapeLexer.LexString("", value)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		tokens = append(tokens, Token{Type: tok.Type, Value: tok.Value})
	}
	return tokens, nil
}

// Apply runs each rule over tokens in order.
func Apply(tokens []Token, rules []Rule) []Token {
	for _, rule := range rules {
		for i := range tokens {
			if tokens[i].Escaped {
				continue
			}
			if rule.Matches(tokens[i]) {
				tokens[i].Escaped = true
			}
		}
	}
	return tokens
}

// Render joins tokens back into a string, prefixing escaped tokens with a backslash.
func Render(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.Escaped {
			sb.WriteByte('\\')
		}
		sb.WriteString(tok.Value)
	}
	return sb.String()
}

// Escape makes value safe to embed in a Lucene query: reserved characters and whitespace,
// the "||" and "&&" operators, and the keywords AND, OR and NOT are backslash escaped.
func Escape(value string) string {
	if value == "" {
		return value
	}
	tokens, err := Tokenize(value)
	if err != nil {
		// Every rune matches the Other rule, so lexing cannot fail; escape per rune
		// rather than let an unescaped value through.
		return escapeRunes(value)
	}
	return Render(Apply(tokens, Rules))
}

func escapeRunes(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if strings.ContainsRune(`+-=~><"?^${}():!/[]\`, r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
