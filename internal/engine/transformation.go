// Package engine drives the transformation pipeline: it scans a program for
// directives, instantiates the configured transformation classes, analyzes
// them, pairs dependent instances and applies them in configured group order.
package engine

import (
	"fmt"

	"claw/internal/directive"
	"claw/internal/xir"
)

// State tracks a transformation through its lifecycle.
type State int

const (
	StatePending State = iota
	StateAnalyzed
	StateTransformed
	StateDiscarded
)

// Transformation is one queued IR transformation. Instances are created
// during the scan phase, applied at most once and then discarded; after
// Transform completes they may hold dangling node references and must not be
// reused.
type Transformation interface {
	// Pragma returns the triggering pragma node, or nil for synthetic and
	// translation-unit-triggered instances.
	Pragma() *xir.Node
	// Directive returns the parsed directive, or nil.
	Directive() *directive.Directive
	// StartLine orders instances within a group.
	StartLine() int

	State() State
	SetState(State)

	// Analyze checks the transformation's prerequisites. Returning false
	// discards the instance; diagnostics are recorded against the program.
	Analyze(prog *xir.Program, tr *Transformer) bool
	// CanBeTransformedWith reports whether a dependent instance pairs with
	// another instance of the same class. Independent classes return false.
	CanBeTransformedWith(prog *xir.Program, other Transformation) bool
	// Transform mutates the IR. For dependent classes, other is the paired
	// instance; otherwise nil. Any returned error aborts the pipeline.
	Transform(prog *xir.Program, tr *Transformer, other Transformation) error
}

// Base carries the state common to all transformations and is meant to be
// embedded.
type Base struct {
	pragma *xir.Node
	dir    *directive.Directive
	state  State
	line   int
}

// NewBase builds the embedded base from the triggering pragma and its parsed
// directive; both may be nil.
func NewBase(pragma *xir.Node, dir *directive.Directive) Base {
	line := 0
	if pragma != nil {
		line = pragma.LineNo()
	}
	if line == 0 && dir != nil {
		line = dir.Line
	}
	return Base{pragma: pragma, dir: dir, line: line}
}

// NewSyntheticBase builds the base of an instance created by another
// transformation rather than by a pragma.
func NewSyntheticBase(line int) Base {
	return Base{line: line}
}

func (b *Base) Pragma() *xir.Node                { return b.pragma }
func (b *Base) Directive() *directive.Directive  { return b.dir }
func (b *Base) StartLine() int                   { return b.line }
func (b *Base) State() State                     { return b.state }
func (b *Base) SetState(s State)                 { b.state = s }

// CanBeTransformedWith is the independent default: never paired.
func (b *Base) CanBeTransformedWith(*xir.Program, Transformation) bool {
	return false
}

// BlockBase extends Base for transformations delimited by a start pragma and
// a matching end pragma.
type BlockBase struct {
	Base
	end *xir.Node
}

// NewBlockBase builds the embedded base of a block transformation.
func NewBlockBase(pragma *xir.Node, dir *directive.Directive) BlockBase {
	return BlockBase{Base: NewBase(pragma, dir)}
}

// EndPragma returns the matching end delimiter located by AnalyzeBlock.
func (b *BlockBase) EndPragma() *xir.Node { return b.end }

// AnalyzeBlock locates the end delimiter matching the start pragma among its
// following siblings, honoring nesting of same-kind blocks. Unbalanced
// delimiters fail with a diagnostic.
func (b *BlockBase) AnalyzeBlock(prog *xir.Program, kind directive.Kind) bool {
	depth := 0
	for sibling := b.pragma.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		if !sibling.Is(xir.KindPragma) {
			continue
		}
		text, ok := directive.StripPrefix(sibling.Value())
		if !ok {
			continue
		}
		siblingKind, end, ok := directive.KindOfText(text)
		if !ok || siblingKind != kind {
			continue
		}
		if !end {
			depth++
			continue
		}
		if depth == 0 {
			b.end = sibling
			return true
		}
		depth--
	}
	prog.AddError(fmt.Sprintf("no matching end %s directive found", kind),
		b.StartLine())
	return false
}
