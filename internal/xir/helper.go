package xir

import (
	"claw/internal/errors"
)

// Find returns the first descendant of the given kind in document order, or
// nil when none exists. The start node itself is not considered.
func Find(from *Node, kind string) *Node {
	if from == nil {
		return nil
	}
	for _, child := range from.Children() {
		if child.Is(kind) {
			return child
		}
		if found := Find(child, kind); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of the given kind in document order.
func FindAll(from *Node, kind string) []*Node {
	var found []*Node
	if from == nil {
		return found
	}
	for _, child := range from.Children() {
		if child.Is(kind) {
			found = append(found, child)
		}
		found = append(found, FindAll(child, kind)...)
	}
	return found
}

// FindNext returns the first following sibling of the given kind, or nil.
func FindNext(from *Node, kind string) *Node {
	for sibling := from.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		if sibling.Is(kind) {
			return sibling
		}
	}
	return nil
}

// DirectNext returns the immediately following sibling when it has the given
// kind, or nil.
func DirectNext(from *Node, kind string) *Node {
	sibling := from.NextSibling()
	if sibling != nil && sibling.Is(kind) {
		return sibling
	}
	return nil
}

// FindParent returns the nearest enclosing ancestor of the given kind, or nil.
func FindParent(from *Node, kind string) *Node {
	for parent := from.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Is(kind) {
			return parent
		}
	}
	return nil
}

// Clone returns a detached deep copy of the node with distinct identity.
func Clone(n *Node) *Node {
	return Wrap(n.el.Copy())
}

// InsertBefore inserts a detached node as the sibling just before anchor.
// Inserting an attached node is an invariant violation.
func InsertBefore(anchor, n *Node) error {
	if err := checkInsertable(anchor, n); err != nil {
		return err
	}
	anchor.el.Parent().InsertChildAt(anchor.el.Index(), n.el)
	return nil
}

// InsertAfter inserts a detached node as the sibling just after anchor.
func InsertAfter(anchor, n *Node) error {
	if err := checkInsertable(anchor, n); err != nil {
		return err
	}
	anchor.el.Parent().InsertChildAt(anchor.el.Index()+1, n.el)
	return nil
}

// Append adds a detached node as the last child of parent.
func Append(parent, n *Node) error {
	if !n.IsDetached() {
		return errors.NewInternalf("node %s is already attached", n.Kind())
	}
	parent.el.AddChild(n.el)
	return nil
}

// Delete removes the node from its parent. Deleting a detached node is a
// no-op.
func Delete(n *Node) {
	if parent := n.el.Parent(); parent != nil {
		parent.RemoveChild(n.el)
	}
}

// Detach removes the node from its parent and returns it.
func Detach(n *Node) *Node {
	Delete(n)
	return n
}

// Replace substitutes old with a detached replacement node.
func Replace(old, replacement *Node) error {
	if err := InsertBefore(old, replacement); err != nil {
		return err
	}
	Delete(old)
	return nil
}

// Move detaches n and inserts it just after anchor.
func Move(anchor, n *Node) error {
	return InsertAfter(anchor, Detach(n))
}

// ExtractBody splices the body children of a do-statement into the
// do-statement's parent, in order, just after the do-statement itself.
func ExtractBody(do *Node) error {
	if !do.Is(KindDoStatement) {
		return errors.NewInternalf("cannot extract body of %s", do.Kind())
	}
	body := do.Child(KindBody)
	if body == nil {
		return errors.NewInternal("do statement has no body")
	}
	anchor := do
	for _, child := range body.Children() {
		if err := InsertAfter(anchor, Detach(child)); err != nil {
			return err
		}
		anchor = child
	}
	return nil
}

// AppendBody moves every child of the source body to the end of the target
// body, preserving order.
func AppendBody(target, source *Node) error {
	for _, child := range source.Children() {
		if err := Append(target, Detach(child)); err != nil {
			return err
		}
	}
	return nil
}

// SiblingsBetween returns the sibling nodes strictly between first and last.
// The second result is false when the nodes do not share a parent or last
// does not follow first.
func SiblingsBetween(first, last *Node) ([]*Node, bool) {
	if first.Parent() == nil || last.Parent() == nil ||
		!first.Parent().Same(last.Parent()) {
		return nil, false
	}
	var between []*Node
	for sibling := first.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		if sibling.Same(last) {
			return between, true
		}
		between = append(between, sibling)
	}
	return nil, false
}

func checkInsertable(anchor, n *Node) error {
	if anchor.el.Parent() == nil {
		return errors.NewInternalf("anchor %s has no parent", anchor.Kind())
	}
	if !n.IsDetached() {
		return errors.NewInternalf("node %s is already attached", n.Kind())
	}
	return nil
}
