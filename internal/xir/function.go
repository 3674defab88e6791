package xir

import (
	"claw/internal/errors"
)

// FunctionDefinition is a typed view over an FfunctionDefinition node. The
// symbol, declaration and parameter tables are optional in the document; the
// accessors return nil wrappers when a table is absent.
type FunctionDefinition struct {
	node *Node
}

// FunctionDefinitionOf wraps a node as a function definition.
func FunctionDefinitionOf(n *Node) (*FunctionDefinition, error) {
	if !n.Is(KindFunctionDefinition) {
		return nil, errors.NewInternalf("%s is not a function definition", n.Kind())
	}
	if n.Child(KindName) == nil || n.Child(KindBody) == nil {
		return nil, errors.NewInternal("function definition has no name or body")
	}
	return &FunctionDefinition{node: n}, nil
}

// Node returns the underlying function definition node.
func (f *FunctionDefinition) Node() *Node { return f.node }

// Name returns the function's name node.
func (f *FunctionDefinition) Name() *Node { return f.node.Child(KindName) }

// Body returns the function's body node.
func (f *FunctionDefinition) Body() *Node { return f.node.Child(KindBody) }

// Params returns the function's parameter list node, or nil.
func (f *FunctionDefinition) Params() *Node { return f.node.Child(KindParams) }

// SymbolTable returns the function-local symbol table, or nil when absent.
// The wrapper is rebuilt on every call; callers must not hold it across
// mutations made through other wrappers.
func (f *FunctionDefinition) SymbolTable() *SymbolTable {
	container := f.node.Child(KindSymbols)
	if container == nil {
		return nil
	}
	return NewSymbolTable(container)
}

// DeclTable returns the function-local declaration table, or nil when absent.
func (f *FunctionDefinition) DeclTable() *DeclTable {
	container := f.node.Child(KindDeclarations)
	if container == nil {
		return nil
	}
	return NewDeclTable(container)
}

// LocateDoStatement finds a do-statement inside the function whose iteration
// range equals the wanted range. The first do-statement is tried first; when
// it does not match, following siblings are scanned.
func (f *FunctionDefinition) LocateDoStatement(want IterationRange) (*Node, error) {
	found := Find(f.Body(), KindDoStatement)
	if found == nil {
		return nil, errors.NewAnalyze(errors.CodeNoMatchingLoop,
			"no loop found in function "+f.Name().Value(), f.node.LineNo())
	}
	for found != nil {
		r, err := IterationRangeOf(found)
		if err != nil {
			return nil, err
		}
		if want.Equal(r) {
			return found, nil
		}
		found = FindNext(found, KindDoStatement)
	}
	return nil, errors.NewAnalyze(errors.CodeNoMatchingLoop,
		"iteration range is different than the loop to be extracted",
		f.node.LineNo())
}
