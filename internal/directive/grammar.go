package directive

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// The raw grammar captures clause arguments into one of four shapes; which
// shapes are legal for a given clause is checked after parsing, against the
// clause table of the directive kind.

type directiveAST struct {
	Pos     lexer.Position
	End     string       `parser:"[ @\"end\" ]"`
	Keyword string       `parser:"@Ident"`
	Clauses []*clauseAST `parser:"{ @@ }"`
}

type clauseAST struct {
	Pos  lexer.Position
	Name string   `parser:"@Ident"`
	Args *argsAST `parser:"[ \"(\" @@ \")\" ]"`
}

type argsAST struct {
	Range   *rangeAST   `parser:"  @@"`
	Mapping *mappingAST `parser:"| @@"`
	Words   []string    `parser:"| @(Ident | Integer) @(Ident | Integer) { @(Ident | Integer) }"`
	List    []string    `parser:"| @(Ident | Integer) { \",\" @(Ident | Integer) }"`
}

type rangeAST struct {
	Induction string   `parser:"@Ident \"=\""`
	Lower     *exprAST `parser:"@@ \":\""`
	Upper     *exprAST `parser:"@@"`
	Step      *exprAST `parser:"[ \":\" @@ ]"`
}

type mappingAST struct {
	Mapped  []*mapVarAST `parser:"@@ { \",\" @@ } \":\""`
	Mapping []*mapVarAST `parser:"@@ { \",\" @@ }"`
}

type mapVarAST struct {
	Arg string `parser:"@Ident"`
	Fct string `parser:"[ \"/\" @Ident ]"`
}

type exprAST struct {
	Head string        `parser:"@(Ident | Integer)"`
	Tail []*exprOpAST  `parser:"{ @@ }"`
}

type exprOpAST struct {
	Op      string `parser:"@(\"+\" | \"-\" | \"*\" | \"/\")"`
	Operand string `parser:"@(Ident | Integer)"`
}

// Text renders the expression back to its textual form, without whitespace.
// Iteration range comparisons are textual over this form.
func (e *exprAST) Text() string {
	var b strings.Builder
	b.WriteString(e.Head)
	for _, op := range e.Tail {
		b.WriteString(op.Op)
		b.WriteString(op.Operand)
	}
	return b.String()
}
