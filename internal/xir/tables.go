package xir

import (
	"fmt"

	"claw/internal/errors"
)

// table is an ordered mapping from string key to entry node with O(1) lookup.
// The index is derived from the container's children at wrap time and kept in
// sync by the mutating methods; entries must not be rekeyed behind the
// table's back.
type table struct {
	container *Node
	keyOf     func(entry *Node) string
	index     map[string]*Node
}

func newTable(container *Node, keyOf func(*Node) string) *table {
	t := &table{container: container, keyOf: keyOf}
	t.reindex()
	return t
}

func (t *table) reindex() {
	t.index = make(map[string]*Node)
	for _, entry := range t.container.Children() {
		if key := t.keyOf(entry); key != "" {
			t.index[key] = entry
		}
	}
}

func (t *table) lookup(key string) (*Node, bool) {
	entry, ok := t.index[key]
	return entry, ok
}

func (t *table) add(entry *Node) error {
	key := t.keyOf(entry)
	if key == "" {
		return errors.NewInternalf("table entry %s has no key", entry.Kind())
	}
	if _, exists := t.index[key]; exists {
		return errors.NewInternalf("duplicate table entry %q", key)
	}
	if err := Append(t.container, entry); err != nil {
		return err
	}
	t.index[key] = entry
	return nil
}

// replace substitutes the entry sharing the new entry's key, or appends when
// no such entry exists.
func (t *table) replace(entry *Node) error {
	key := t.keyOf(entry)
	if key == "" {
		return errors.NewInternalf("table entry %s has no key", entry.Kind())
	}
	if existing, ok := t.index[key]; ok {
		if err := Replace(existing, entry); err != nil {
			return err
		}
		t.index[key] = entry
		return nil
	}
	return t.add(entry)
}

// TypeTable indexes type entries by their generated hash.
type TypeTable struct {
	*table
	hashCounter int
}

// NewTypeTable wraps a typeTable container node.
func NewTypeTable(container *Node) *TypeTable {
	return &TypeTable{table: newTable(container, func(entry *Node) string {
		return entry.Type()
	})}
}

// Node returns the container node.
func (t *TypeTable) Node() *Node { return t.container }

// Lookup resolves a type hash to its entry.
func (t *TypeTable) Lookup(hash string) (*Node, bool) { return t.lookup(hash) }

// Add inserts a new type entry. Adding a key that already exists is a
// duplicate-type error.
func (t *TypeTable) Add(entry *Node) error {
	if _, exists := t.index[entry.Type()]; exists {
		return errors.NewInternalf("duplicate type %q in type table", entry.Type())
	}
	return t.add(entry)
}

// GenerateFunctionTypeHash returns a fresh hash unique within the table. The
// hash must be generated before the entry carrying it is inserted, so that
// later transformations observe a consistent table.
func (t *TypeTable) GenerateFunctionTypeHash() string {
	for {
		t.hashCounter++
		hash := fmt.Sprintf("F%013x", t.hashCounter)
		if _, exists := t.index[hash]; !exists {
			return hash
		}
	}
}

// Dimensions reads the dimensions count of a basic-type entry.
func Dimensions(typeEntry *Node) int {
	var dims int
	fmt.Sscanf(typeEntry.Attr(AttrDimensions), "%d", &dims)
	return dims
}

// SymbolTable indexes id entries by their name.
type SymbolTable struct {
	*table
}

// NewSymbolTable wraps a symbols or globalSymbols container node.
func NewSymbolTable(container *Node) *SymbolTable {
	return &SymbolTable{table: newTable(container, func(entry *Node) string {
		if name := entry.Child(KindName); name != nil {
			return name.Value()
		}
		return ""
	})}
}

// Node returns the container node.
func (s *SymbolTable) Node() *Node { return s.container }

// Lookup resolves a symbol name to its id entry.
func (s *SymbolTable) Lookup(name string) (*Node, bool) { return s.lookup(name) }

// Add inserts a new id entry.
func (s *SymbolTable) Add(entry *Node) error { return s.add(entry) }

// DeclTable indexes varDecl entries by their declared name.
type DeclTable struct {
	*table
}

// NewDeclTable wraps a declarations or globalDeclarations container node.
func NewDeclTable(container *Node) *DeclTable {
	return &DeclTable{table: newTable(container, func(entry *Node) string {
		if name := entry.Child(KindName); name != nil {
			return name.Value()
		}
		return ""
	})}
}

// Node returns the container node.
func (d *DeclTable) Node() *Node { return d.container }

// Lookup resolves a declared name to its varDecl entry.
func (d *DeclTable) Lookup(name string) (*Node, bool) { return d.lookup(name) }

// Add inserts a new varDecl entry.
func (d *DeclTable) Add(entry *Node) error { return d.add(entry) }

// Replace substitutes the declaration sharing the entry's name.
func (d *DeclTable) Replace(entry *Node) error { return d.replace(entry) }
