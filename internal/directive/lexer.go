package directive

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Identifiers may contain hyphens so that directive keywords such as
// loop-extract and clause names such as new-order lex as one token.
var directiveLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
		{Name: "Integer", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `[()=:,/+*-]`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	},
})
