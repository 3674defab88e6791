package transform

import (
	"claw/internal/xir"
)

// writtenVars collects the names written by assignment statements within the
// given nodes, including assignments nested in inner statements.
func writtenVars(nodes []*xir.Node) map[string]bool {
	written := make(map[string]bool)
	for _, node := range nodes {
		var assigns []*xir.Node
		if node.Is(xir.KindAssignStatement) {
			assigns = append(assigns, node)
		}
		assigns = append(assigns, xir.FindAll(node, xir.KindAssignStatement)...)
		for _, assign := range assigns {
			if target := assignmentTarget(assign); target != "" {
				written[target] = true
			}
		}
	}
	return written
}

// assignmentTarget names the variable an assignment writes: the base
// variable for an array reference target.
func assignmentTarget(assign *xir.Node) string {
	lhs := assign.FirstChild()
	if lhs == nil {
		return ""
	}
	switch lhs.Kind() {
	case xir.KindVar:
		return lhs.Value()
	case xir.KindArrayRef:
		if varRef := lhs.Child(xir.KindVarRef); varRef != nil {
			if base := varRef.Child(xir.KindVar); base != nil {
				return base.Value()
			}
		}
	}
	return ""
}

// readVars conservatively collects every variable name occurring under the
// node.
func readVars(node *xir.Node) map[string]bool {
	read := make(map[string]bool)
	for _, v := range xir.FindAll(node, xir.KindVar) {
		read[v.Value()] = true
	}
	return read
}

// newPragma builds a detached pragma statement carrying the given text.
func newPragma(text string, line int) *xir.Node {
	pragma := xir.NewNode(xir.KindPragma)
	pragma.SetValue(text)
	if line > 0 {
		pragma.SetLineNo(line)
	}
	return pragma
}
