package transform

import (
	"claw/internal/directive"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/xir"
)

// Parallelize is a block transformation wrapping the delimited region in
// accelerator start/end pragmas. An acc clause on the start directive is
// emitted right after the start marker.
type Parallelize struct {
	engine.BlockBase
	accOption string
}

// NewParallelize constructs a parallelize transformation from its start
// pragma.
func NewParallelize(pragma *xir.Node, dir *directive.Directive) (engine.Transformation, error) {
	p := &Parallelize{BlockBase: engine.NewBlockBase(pragma, dir)}
	if dir != nil {
		p.accOption = dir.AccOption
	}
	return p, nil
}

// Analyze verifies the delimiter pair is balanced.
func (p *Parallelize) Analyze(prog *xir.Program, _ *engine.Transformer) bool {
	return p.AnalyzeBlock(prog, directive.KindParallelize)
}

// Transform replaces the delimiters with accelerator pragmas around the
// region.
func (p *Parallelize) Transform(_ *xir.Program, _ *engine.Transformer, _ engine.Transformation) error {
	if _, ok := xir.SiblingsBetween(p.Pragma(), p.EndPragma()); !ok {
		return errors.NewInternal("parallelize block delimiters are not siblings")
	}

	start := newPragma("acc parallel", p.StartLine())
	if err := xir.InsertAfter(p.Pragma(), start); err != nil {
		return err
	}
	if p.accOption != "" {
		if err := xir.InsertAfter(start, newPragma("acc "+p.accOption, p.StartLine())); err != nil {
			return err
		}
	}
	end := newPragma("acc end parallel", p.EndPragma().LineNo())
	if err := xir.InsertBefore(p.EndPragma(), end); err != nil {
		return err
	}
	xir.Delete(p.Pragma())
	xir.Delete(p.EndPragma())
	return nil
}
