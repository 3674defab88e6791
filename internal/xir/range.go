package xir

import (
	"fmt"

	"claw/internal/errors"
)

// IterationRange describes a loop's iteration space. Bounds and step are kept
// as expression text; comparisons are textual.
type IterationRange struct {
	InductionVar string
	Lower        string
	Upper        string
	Step         string
}

// IterationRangeOf reads the iteration range of a do-statement. A missing or
// empty step defaults to "1".
func IterationRangeOf(do *Node) (IterationRange, error) {
	if !do.Is(KindDoStatement) {
		return IterationRange{}, errors.NewInternalf(
			"iteration range requested on %s", do.Kind())
	}
	induction := do.Child(KindVar)
	indexRange := do.Child(KindIndexRange)
	if induction == nil || indexRange == nil {
		return IterationRange{}, errors.NewInternal(
			"do statement has no induction variable or index range")
	}
	lower := indexRange.Child(KindLowerBound)
	upper := indexRange.Child(KindUpperBound)
	if lower == nil || upper == nil {
		return IterationRange{}, errors.NewInternal(
			"index range has no lower or upper bound")
	}
	r := IterationRange{
		InductionVar: induction.Value(),
		Lower:        lower.Text(),
		Upper:        upper.Text(),
		Step:         "1",
	}
	if step := indexRange.Child(KindStep); step != nil && step.Text() != "" {
		r.Step = step.Text()
	}
	return r, nil
}

// Equal is structural equality over induction variable value and the textual
// form of the bound and step expressions.
func (r IterationRange) Equal(other IterationRange) bool {
	return r.InductionVar == other.InductionVar &&
		r.Lower == other.Lower &&
		r.Upper == other.Upper &&
		r.Step == other.Step
}

func (r IterationRange) String() string {
	return fmt.Sprintf("%s=%s:%s:%s", r.InductionVar, r.Lower, r.Upper, r.Step)
}

// NewDoStatement builds a detached do-statement with the given iteration
// range and an empty body. Bound and step expressions are emitted as Var
// nodes for identifiers and as plain text for literals.
func NewDoStatement(r IterationRange) *Node {
	do := NewNode(KindDoStatement)

	induction := NewNode(KindVar)
	induction.SetValue(r.InductionVar)
	induction.SetAttr(AttrScope, ScopeLocal)
	do.el.AddChild(induction.el)

	indexRange := NewNode(KindIndexRange)
	indexRange.el.AddChild(newBound(KindLowerBound, r.Lower).el)
	indexRange.el.AddChild(newBound(KindUpperBound, r.Upper).el)
	indexRange.el.AddChild(newBound(KindStep, r.Step).el)
	do.el.AddChild(indexRange.el)

	do.el.AddChild(NewNode(KindBody).el)
	return do
}

func newBound(kind, expr string) *Node {
	bound := NewNode(kind)
	if IsIdentifier(expr) {
		v := NewNode(KindVar)
		v.SetAttr(AttrScope, ScopeLocal)
		v.SetValue(expr)
		bound.el.AddChild(v.el)
	} else {
		bound.SetValue(expr)
	}
	return bound
}

// IsIdentifier reports whether an expression text is a plain identifier, as
// opposed to a literal or a compound expression.
func IsIdentifier(expr string) bool {
	if expr == "" {
		return false
	}
	for i, r := range expr {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
