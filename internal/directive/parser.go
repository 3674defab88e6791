package directive

import (
	"strings"

	"github.com/alecthomas/participle/v2"

	"claw/internal/errors"
)

var parser = participle.MustBuild[directiveAST](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(99),
)

// argShape is the clause argument form a directive kind accepts.
type argShape int

const (
	shapeFlag argShape = iota
	shapeName
	shapeList
	shapeWords
	shapeRange
	shapeMapping
)

// clauseTable lists the clauses each directive kind accepts. A clause missing
// from a kind's row is unknown for that kind.
var clauseTable = map[Kind]map[string]argShape{
	KindLoopFusion: {
		"group": shapeName,
	},
	KindLoopExtract: {
		"range":    shapeRange,
		"map":      shapeMapping,
		"fusion":   shapeFlag,
		"group":    shapeName,
		"parallel": shapeFlag,
		"acc":      shapeWords,
	},
	KindLoopInterchange: {
		"new-order": shapeList,
	},
	KindRemove: {},
	KindParallelize: {
		"acc": shapeWords,
	},
	KindArrayTransform: {
		"induction": shapeList,
	},
	KindKcache: {
		"data": shapeList,
	},
}

var mandatoryClauses = map[Kind][]string{
	KindLoopExtract: {"range"},
}

// repeatableClauses may occur more than once on a directive.
var repeatableClauses = map[string]bool{
	"map": true,
}

// Parse interprets the text of one pragma, prefix already stripped. The
// returned error, when non-nil, is a *errors.TranslationError of kind Parse.
func Parse(text string, line int) (*Directive, error) {
	ast, err := parser.ParseString("", text)
	if err != nil {
		message := err.Error()
		if perr, ok := err.(participle.Error); ok {
			message = perr.Message()
		}
		return nil, errors.NewParsef(errors.CodeSyntax, line,
			"malformed directive %q: %s", text, message)
	}

	kind, ok := keywordKinds[ast.Keyword]
	if !ok {
		return nil, errors.NewParsef(errors.CodeUnknownDirective, line,
			"unknown directive %q", ast.Keyword)
	}

	d := &Directive{Kind: kind, Line: line}
	if ast.End != "" {
		if !kind.IsBlock() {
			return nil, errors.NewParsef(errors.CodeUnknownDirective, line,
				"directive %q has no end marker", ast.Keyword)
		}
		if len(ast.Clauses) > 0 {
			return nil, errors.NewParsef(errors.CodeMalformedClause, line,
				"end %s takes no clauses", ast.Keyword)
		}
		d.End = true
		return d, nil
	}

	allowed := clauseTable[kind]
	seen := make(map[string]bool)
	for _, clause := range ast.Clauses {
		shape, ok := allowed[clause.Name]
		if !ok {
			return nil, errors.NewParsef(errors.CodeUnknownClause, line,
				"unknown clause %q for directive %q", clause.Name, ast.Keyword)
		}
		if seen[clause.Name] && !repeatableClauses[clause.Name] {
			return nil, errors.NewParsef(errors.CodeDuplicateClause, line,
				"clause %q appears more than once", clause.Name)
		}
		seen[clause.Name] = true
		if err := applyClause(d, clause, shape); err != nil {
			return nil, err
		}
	}

	for _, name := range mandatoryClauses[kind] {
		if !seen[name] {
			return nil, errors.NewParsef(errors.CodeMissingClause, line,
				"directive %q requires a %q clause", ast.Keyword, name)
		}
	}

	if err := checkMappings(d); err != nil {
		return nil, err
	}
	return d, nil
}

func applyClause(d *Directive, clause *clauseAST, shape argShape) error {
	malformed := func(want string) error {
		return errors.NewParsef(errors.CodeMalformedClause, d.Line,
			"clause %q expects %s", clause.Name, want)
	}

	switch shape {
	case shapeFlag:
		if clause.Args != nil {
			return malformed("no arguments")
		}
	case shapeName:
		name, ok := singleName(clause.Args)
		if !ok {
			return malformed("a single name")
		}
		d.GroupLabel = name
	case shapeList:
		items, ok := nameList(clause.Args)
		if !ok {
			return malformed("a name list")
		}
		switch clause.Name {
		case "new-order":
			d.NewOrder = items
		case "data":
			d.Data = items
		case "induction":
			d.Induction = items
		}
	case shapeWords:
		words, ok := wordList(clause.Args)
		if !ok {
			return malformed("accelerator options")
		}
		d.AccOption = strings.Join(words, " ")
	case shapeRange:
		if clause.Args == nil || clause.Args.Range == nil {
			return malformed("an iteration range")
		}
		r := clause.Args.Range
		rng := &Range{
			Induction: r.Induction,
			Lower:     r.Lower.Text(),
			Upper:     r.Upper.Text(),
			Step:      "1",
		}
		if r.Step != nil {
			rng.Step = r.Step.Text()
		}
		d.Range = rng
	case shapeMapping:
		if clause.Args == nil || clause.Args.Mapping == nil {
			return malformed("a variable mapping")
		}
		d.Mappings = append(d.Mappings, newMapping(clause.Args.Mapping))
	}

	switch clause.Name {
	case "fusion":
		d.HasFusion = true
	case "parallel":
		d.HasParallel = true
	}
	return nil
}

func newMapping(ast *mappingAST) Mapping {
	m := Mapping{}
	for _, v := range ast.Mapped {
		m.Mapped = append(m.Mapped, newMappingVar(v))
	}
	for _, v := range ast.Mapping {
		m.Mapping = append(m.Mapping, newMappingVar(v))
	}
	return m
}

func newMappingVar(ast *mapVarAST) MappingVar {
	v := MappingVar{Arg: ast.Arg, Fct: ast.Fct}
	if v.Fct == "" {
		v.Fct = v.Arg
	}
	return v
}

// checkMappings rejects a mapped variable that appears more than once across
// the directive's mapping clauses, on either its argument or its function
// half.
func checkMappings(d *Directive) error {
	argSeen := make(map[string]bool)
	fctSeen := make(map[string]bool)
	for _, m := range d.Mappings {
		for _, v := range m.Mapped {
			if argSeen[v.Arg] || fctSeen[v.Fct] {
				return errors.NewParsef(errors.CodeDuplicateMapping, d.Line,
					"%s appears more than once in the mapping", v)
			}
			argSeen[v.Arg] = true
			fctSeen[v.Fct] = true
		}
	}
	return nil
}

func singleName(args *argsAST) (string, bool) {
	items, ok := nameList(args)
	if !ok || len(items) != 1 {
		return "", false
	}
	return items[0], true
}

func nameList(args *argsAST) ([]string, bool) {
	if args == nil || args.Range != nil || args.Mapping != nil || len(args.Words) > 0 {
		return nil, false
	}
	return args.List, len(args.List) > 0
}

func wordList(args *argsAST) ([]string, bool) {
	if args == nil || args.Range != nil || args.Mapping != nil {
		return nil, false
	}
	if len(args.Words) > 0 {
		return args.Words, true
	}
	return args.List, len(args.List) > 0
}
