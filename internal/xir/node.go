// Package xir wraps the tree-shaped intermediate representation exchanged
// with the front- and back-ends. Nodes are thin views over the underlying
// document elements; cross references (types, symbols) are resolved by key
// through the owning tables, never by pointer.
package xir

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Element names of the interchange document.
const (
	KindProgram            = "XcodeProgram"
	KindFunctionDefinition = "FfunctionDefinition"
	KindBody               = "body"
	KindPragma             = "FpragmaStatement"
	KindDoStatement        = "FdoStatement"
	KindExprStatement      = "exprStatement"
	KindAssignStatement    = "FassignStatement"
	KindFunctionCall       = "functionCall"
	KindVarRef             = "varRef"
	KindArrayRef           = "FarrayRef"
	KindArrayIndex         = "arrayIndex"
	KindVar                = "Var"
	KindName               = "name"
	KindVarDecl            = "varDecl"
	KindArguments          = "arguments"
	KindParams             = "params"
	KindSymbols            = "symbols"
	KindDeclarations       = "declarations"
	KindTypeTable          = "typeTable"
	KindGlobalSymbols      = "globalSymbols"
	KindGlobalDeclarations = "globalDeclarations"
	KindBasicType          = "FbasicType"
	KindFunctionType       = "FfunctionType"
	KindId                 = "id"
	KindIndexRange         = "indexRange"
	KindLowerBound         = "lowerBound"
	KindUpperBound         = "upperBound"
	KindStep               = "step"
)

// Attribute names of interest.
const (
	AttrType       = "type"
	AttrScope      = "scope"
	AttrLineNo     = "lineno"
	AttrFile       = "file"
	AttrRef        = "ref"
	AttrDimensions = "dimensions"
	AttrSclass     = "sclass"
)

// Scope attribute values.
const (
	ScopeLocal  = "local"
	ScopeGlobal = "global"
	ScopeParam  = "param"
)

// Node is a polymorphic tree node: a kind tag, ordered children, a string
// attribute map and optional text content. Identity is the identity of the
// underlying element.
type Node struct {
	el *etree.Element
}

// Wrap returns a node view over an element, or nil for a nil element.
func Wrap(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

// NewNode creates a detached node of the given kind.
func NewNode(kind string) *Node {
	return &Node{el: etree.NewElement(kind)}
}

// Element exposes the underlying document element.
func (n *Node) Element() *etree.Element { return n.el }

// Kind returns the node's kind tag.
func (n *Node) Kind() string { return n.el.Tag }

// Is reports whether the node has the given kind.
func (n *Node) Is(kind string) bool { return n != nil && n.el.Tag == kind }

// Same reports identity, not structural equality.
func (n *Node) Same(other *Node) bool {
	return n != nil && other != nil && n.el == other.el
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.el.SelectAttrValue(name, "")
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	return n.el.SelectAttr(name) != nil
}

// SetAttr sets the named attribute, replacing any previous value.
func (n *Node) SetAttr(name, value string) {
	n.el.CreateAttr(name, value)
}

// Type returns the node's type attribute.
func (n *Node) Type() string { return n.Attr(AttrType) }

// SetType sets the node's type attribute.
func (n *Node) SetType(hash string) { n.SetAttr(AttrType, hash) }

// Value returns the node's direct text content, trimmed. Used for value
// carrying nodes such as Var, name and id names.
func (n *Node) Value() string {
	return strings.TrimSpace(n.el.Text())
}

// SetValue replaces the node's direct text content.
func (n *Node) SetValue(value string) {
	n.el.SetText(value)
}

// Text returns the concatenated text content of the node and all its
// descendants, with all whitespace removed. Expression comparisons are textual
// over this form.
func (n *Node) Text() string {
	var b strings.Builder
	collectText(n.el, &b)
	return strings.Join(strings.Fields(b.String()), "")
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			collectText(t, b)
		}
	}
}

// LineNo returns the node's source line, or zero when unknown.
func (n *Node) LineNo() int {
	line, err := strconv.Atoi(n.Attr(AttrLineNo))
	if err != nil {
		return 0
	}
	return line
}

// SetLineNo sets the node's source line attribute.
func (n *Node) SetLineNo(line int) {
	n.SetAttr(AttrLineNo, strconv.Itoa(line))
}

// Parent returns the enclosing node, or nil for a detached node or the root.
func (n *Node) Parent() *Node {
	return Wrap(n.el.Parent())
}

// Children returns the node's child nodes in document order.
func (n *Node) Children() []*Node {
	elements := n.el.ChildElements()
	children := make([]*Node, len(elements))
	for i, el := range elements {
		children[i] = Wrap(el)
	}
	return children
}

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node {
	elements := n.el.ChildElements()
	if len(elements) == 0 {
		return nil
	}
	return Wrap(elements[0])
}

// Child returns the first direct child of the given kind, or nil.
func (n *Node) Child(kind string) *Node {
	return Wrap(n.el.SelectElement(kind))
}

// ChildrenOf returns all direct children of the given kind.
func (n *Node) ChildrenOf(kind string) []*Node {
	elements := n.el.SelectElements(kind)
	children := make([]*Node, len(elements))
	for i, el := range elements {
		children[i] = Wrap(el)
	}
	return children
}

// NextSibling returns the next sibling node, or nil.
func (n *Node) NextSibling() *Node {
	parent := n.el.Parent()
	if parent == nil {
		return nil
	}
	seen := false
	for _, el := range parent.ChildElements() {
		if seen {
			return Wrap(el)
		}
		if el == n.el {
			seen = true
		}
	}
	return nil
}

// IsDetached reports whether the node has no parent.
func (n *Node) IsDetached() bool {
	return n.el.Parent() == nil
}
