package transform

import (
	"fmt"

	"claw/internal/directive"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/xir"
)

// LoopInterchange reorders the headers of a perfect loop nest following the
// pragma. Without a new-order clause the two outermost loops are swapped;
// with one, the nest is rearranged to the given induction variable order.
type LoopInterchange struct {
	engine.Base
	newOrder []string
	loops    []*xir.Node
}

// NewLoopInterchange constructs an interchange transformation from its
// pragma.
func NewLoopInterchange(pragma *xir.Node, dir *directive.Directive) (engine.Transformation, error) {
	i := &LoopInterchange{Base: engine.NewBase(pragma, dir)}
	if dir != nil {
		i.newOrder = dir.NewOrder
	}
	return i, nil
}

// Analyze collects the loop nest following the pragma and checks it against
// the requested order.
func (i *LoopInterchange) Analyze(prog *xir.Program, _ *engine.Transformer) bool {
	depth := 2
	if len(i.newOrder) > 0 {
		depth = len(i.newOrder)
	}
	if depth < 2 || depth > 3 {
		prog.AddError("new-order clause must name two or three induction variables",
			i.StartLine())
		return false
	}

	loop := xir.DirectNext(i.Pragma(), xir.KindDoStatement)
	for d := 0; d < depth; d++ {
		if loop == nil {
			prog.AddError(fmt.Sprintf(
				"loop-interchange expects a loop nest of depth %d", depth),
				i.StartLine())
			return false
		}
		i.loops = append(i.loops, loop)
		loop = directChildLoop(loop)
	}

	if len(i.newOrder) > 0 && !i.checkOrder(prog) {
		return false
	}
	return true
}

// checkOrder verifies that the new-order clause names exactly the induction
// variables of the nest.
func (i *LoopInterchange) checkOrder(prog *xir.Program) bool {
	inductions := make(map[string]bool)
	for _, loop := range i.loops {
		r, err := xir.IterationRangeOf(loop)
		if err != nil {
			prog.AddError(err.Error(), i.StartLine())
			return false
		}
		inductions[r.InductionVar] = true
	}
	for _, name := range i.newOrder {
		if !inductions[name] {
			prog.AddError(fmt.Sprintf(
				"new-order variable %s is not an induction variable of the nest", name),
				i.StartLine())
			return false
		}
		delete(inductions, name)
	}
	if len(inductions) > 0 {
		prog.AddError("new-order clause must name every induction variable of the nest",
			i.StartLine())
		return false
	}
	return true
}

// Transform reassigns the loop headers. The loop bodies stay in place; only
// induction variables and index ranges move.
func (i *LoopInterchange) Transform(_ *xir.Program, _ *engine.Transformer, _ engine.Transformation) error {
	headers := make([]*loopHeader, len(i.loops))
	byInduction := make(map[string]*loopHeader)
	for idx, loop := range i.loops {
		h, err := detachHeader(loop)
		if err != nil {
			return err
		}
		headers[idx] = h
		byInduction[h.induction] = h
	}

	order := i.newOrder
	if len(order) == 0 {
		headers[0], headers[1] = headers[1], headers[0]
	} else {
		for idx, name := range order {
			headers[idx] = byInduction[name]
		}
	}

	for idx, loop := range i.loops {
		if err := attachHeader(loop, headers[idx]); err != nil {
			return err
		}
	}
	if i.Pragma() != nil {
		xir.Delete(i.Pragma())
	}
	return nil
}

type loopHeader struct {
	induction  string
	inductionV *xir.Node
	indexRange *xir.Node
}

func detachHeader(do *xir.Node) (*loopHeader, error) {
	v := do.Child(xir.KindVar)
	r := do.Child(xir.KindIndexRange)
	if v == nil || r == nil {
		return nil, errors.NewInternal("do statement has no induction variable or index range")
	}
	return &loopHeader{
		induction:  v.Value(),
		inductionV: xir.Detach(v),
		indexRange: xir.Detach(r),
	}, nil
}

func attachHeader(do *xir.Node, h *loopHeader) error {
	body := do.Child(xir.KindBody)
	if body == nil {
		return errors.NewInternal("do statement has no body")
	}
	if err := xir.InsertBefore(body, h.inductionV); err != nil {
		return err
	}
	return xir.InsertBefore(body, h.indexRange)
}

// directChildLoop returns the loop directly nested in the body, ignoring
// leading pragmas.
func directChildLoop(do *xir.Node) *xir.Node {
	body := do.Child(xir.KindBody)
	if body == nil {
		return nil
	}
	for _, child := range body.Children() {
		switch child.Kind() {
		case xir.KindDoStatement:
			return child
		case xir.KindPragma:
			continue
		default:
			return nil
		}
	}
	return nil
}
