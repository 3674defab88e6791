package transform

import (
	"claw/internal/directive"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/xir"
)

// UtilityRemove is a block transformation deleting every statement between
// its start and end delimiters, along with the delimiters.
type UtilityRemove struct {
	engine.BlockBase
}

// NewUtilityRemove constructs a remove transformation from its start pragma.
func NewUtilityRemove(pragma *xir.Node, dir *directive.Directive) (engine.Transformation, error) {
	return &UtilityRemove{BlockBase: engine.NewBlockBase(pragma, dir)}, nil
}

// Analyze verifies the delimiter pair is balanced.
func (r *UtilityRemove) Analyze(prog *xir.Program, _ *engine.Transformer) bool {
	return r.AnalyzeBlock(prog, directive.KindRemove)
}

// Transform deletes the delimited region.
func (r *UtilityRemove) Transform(_ *xir.Program, _ *engine.Transformer, _ engine.Transformation) error {
	between, ok := xir.SiblingsBetween(r.Pragma(), r.EndPragma())
	if !ok {
		return errors.NewInternal("remove block delimiters are not siblings")
	}
	for _, node := range between {
		xir.Delete(node)
	}
	xir.Delete(r.Pragma())
	xir.Delete(r.EndPragma())
	return nil
}
