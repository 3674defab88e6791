package xir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeEntry(hash, ref string, dims int) *Node {
	entry := NewNode(KindBasicType)
	entry.SetType(hash)
	entry.SetAttr(AttrRef, ref)
	if dims > 0 {
		entry.SetAttr(AttrDimensions, "1")
	}
	return entry
}

func TestTypeTableAddAndLookup(t *testing.T) {
	table := NewTypeTable(NewNode(KindTypeTable))

	require.NoError(t, table.Add(typeEntry("A1", "Freal", 1)))
	entry, ok := table.Lookup("A1")
	require.True(t, ok)
	assert.Equal(t, "Freal", entry.Attr(AttrRef))

	_, ok = table.Lookup("A2")
	assert.False(t, ok)
}

func TestTypeTableRejectsDuplicates(t *testing.T) {
	table := NewTypeTable(NewNode(KindTypeTable))
	require.NoError(t, table.Add(typeEntry("A1", "Freal", 1)))

	err := table.Add(typeEntry("A1", "Fint", 0))
	require.Error(t, err)
}

func TestGenerateFunctionTypeHashUnique(t *testing.T) {
	table := NewTypeTable(NewNode(KindTypeTable))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		hash := table.GenerateFunctionTypeHash()
		assert.False(t, seen[hash])
		seen[hash] = true

		entry := NewNode(KindFunctionType)
		entry.SetType(hash)
		require.NoError(t, table.Add(entry))
	}
}

func TestGenerateFunctionTypeHashSkipsExisting(t *testing.T) {
	table := NewTypeTable(NewNode(KindTypeTable))
	occupied := NewNode(KindFunctionType)
	occupied.SetType("F0000000000001")
	require.NoError(t, table.Add(occupied))

	hash := table.GenerateFunctionTypeHash()
	assert.NotEqual(t, "F0000000000001", hash)
}

func symbolEntry(name, hash string) *Node {
	id := NewNode(KindId)
	id.SetType(hash)
	n := NewNode(KindName)
	n.SetValue(name)
	id.el.AddChild(n.el)
	return id
}

func TestSymbolTable(t *testing.T) {
	table := NewSymbolTable(NewNode(KindGlobalSymbols))
	require.NoError(t, table.Add(symbolEntry("f", "F1")))

	id, ok := table.Lookup("f")
	require.True(t, ok)
	assert.Equal(t, "F1", id.Type())

	err := table.Add(symbolEntry("f", "F2"))
	assert.Error(t, err)
}

func declEntry(name, hash string) *Node {
	decl := NewNode(KindVarDecl)
	n := NewNode(KindName)
	n.SetValue(name)
	n.SetType(hash)
	decl.el.AddChild(n.el)
	return decl
}

func TestDeclTableReplace(t *testing.T) {
	table := NewDeclTable(NewNode(KindDeclarations))
	require.NoError(t, table.Add(declEntry("a", "A1")))

	require.NoError(t, table.Replace(declEntry("a", "Freal")))
	decl, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "Freal", decl.Child(KindName).Type())

	// One entry per key, in the container too.
	assert.Len(t, table.Node().Children(), 1)
}
