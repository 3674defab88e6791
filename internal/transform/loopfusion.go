package transform

import (
	"fmt"

	"claw/internal/directive"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/xir"
)

// LoopFusion joins two do-statements into one when their iteration ranges
// are equal and they share the same group label. It is a dependent
// transformation: instances pair up before application, and a chain of
// matching loops collapses into the first one.
type LoopFusion struct {
	engine.Base
	label         string
	loop          *xir.Node
	pragmaDeleted bool
}

// NewLoopFusion constructs a fusion transformation from its pragma.
func NewLoopFusion(pragma *xir.Node, dir *directive.Directive) (engine.Transformation, error) {
	f := &LoopFusion{Base: engine.NewBase(pragma, dir)}
	if dir != nil {
		f.label = dir.GroupLabel
	}
	return f, nil
}

// NewSyntheticLoopFusion constructs a fusion transformation on an already
// located loop. Loop extraction enqueues these when its directive carries a
// fusion clause.
func NewSyntheticLoopFusion(loop *xir.Node, label string, line int) *LoopFusion {
	return &LoopFusion{
		Base:  engine.NewSyntheticBase(line),
		label: label,
		loop:  loop,
	}
}

// Analyze succeeds when the pragma is immediately followed by a
// do-statement in the same body.
func (f *LoopFusion) Analyze(prog *xir.Program, _ *engine.Transformer) bool {
	if f.loop != nil {
		return true
	}
	f.loop = xir.DirectNext(f.Pragma(), xir.KindDoStatement)
	if f.loop == nil {
		prog.AddError("loop-fusion pragma is not followed by a do statement",
			f.StartLine())
		return false
	}
	return true
}

// CanBeTransformedWith pairs two fusion instances when their group labels
// match, their iteration ranges compare equal, and no statement between the
// loops writes a variable the second loop's body reads.
func (f *LoopFusion) CanBeTransformedWith(prog *xir.Program, other engine.Transformation) bool {
	o, ok := other.(*LoopFusion)
	if !ok || f.label != o.label {
		return false
	}
	myRange, err := xir.IterationRangeOf(f.loop)
	if err != nil {
		return false
	}
	otherRange, err := xir.IterationRangeOf(o.loop)
	if err != nil {
		return false
	}
	if !myRange.Equal(otherRange) {
		return false
	}
	between, ok := xir.SiblingsBetween(f.loop, o.loop)
	if !ok {
		return false
	}
	return f.safeToFuseOver(prog, o, between)
}

// safeToFuseOver is the conservative side-effect check: a write between the
// loops to any variable read by the second loop aborts the pairing. Kept in
// one predicate so the policy is a single point of change.
func (f *LoopFusion) safeToFuseOver(prog *xir.Program, o *LoopFusion, between []*xir.Node) bool {
	if len(between) == 0 {
		return true
	}
	written := writtenVars(between)
	if len(written) == 0 {
		return true
	}
	for name := range readVars(o.loop.Child(xir.KindBody)) {
		if written[name] {
			prog.AddWarning(fmt.Sprintf(
				"cannot fuse loops: %s is written between them", name),
				f.StartLine(), o.StartLine())
			return false
		}
	}
	return true
}

// Transform moves the other loop's body children, in order, to the end of
// this loop's body, then deletes the other loop and both pragmas.
func (f *LoopFusion) Transform(prog *xir.Program, _ *engine.Transformer, other engine.Transformation) error {
	o, ok := other.(*LoopFusion)
	if !ok {
		return errors.NewInternal("loop fusion paired with a foreign transformation")
	}
	body := f.loop.Child(xir.KindBody)
	otherBody := o.loop.Child(xir.KindBody)
	if body == nil || otherBody == nil {
		return errors.NewInternal("do statement has no body")
	}
	if err := xir.AppendBody(body, otherBody); err != nil {
		return err
	}
	xir.Delete(o.loop)
	if o.Pragma() != nil {
		xir.Delete(o.Pragma())
	}
	if !f.pragmaDeleted && f.Pragma() != nil {
		xir.Delete(f.Pragma())
		f.pragmaDeleted = true
	}
	return nil
}
