package xir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doStatement(t *testing.T, induction, lower, upper, step string) *Node {
	t.Helper()
	r := IterationRange{InductionVar: induction, Lower: lower, Upper: upper, Step: step}
	return NewDoStatement(r)
}

func TestIterationRangeOf(t *testing.T) {
	do := doStatement(t, "i", "1", "n", "2")
	r, err := IterationRangeOf(do)
	require.NoError(t, err)
	assert.Equal(t, IterationRange{InductionVar: "i", Lower: "1", Upper: "n", Step: "2"}, r)
}

func TestIterationRangeDefaultStep(t *testing.T) {
	do := doStatement(t, "i", "1", "10", "1")
	Delete(do.Child(KindIndexRange).Child(KindStep))

	r, err := IterationRangeOf(do)
	require.NoError(t, err)
	assert.Equal(t, "1", r.Step)
}

func TestIterationRangeOfNonLoop(t *testing.T) {
	_, err := IterationRangeOf(NewNode(KindBody))
	assert.Error(t, err)
}

// Range equality must be an equivalence relation.
func TestIterationRangeEquivalence(t *testing.T) {
	a := IterationRange{InductionVar: "i", Lower: "1", Upper: "n", Step: "1"}
	b := IterationRange{InductionVar: "i", Lower: "1", Upper: "n", Step: "1"}
	c := IterationRange{InductionVar: "i", Lower: "1", Upper: "n", Step: "1"}
	other := IterationRange{InductionVar: "j", Lower: "1", Upper: "n", Step: "1"}

	assert.True(t, a.Equal(a), "reflexive")
	assert.True(t, a.Equal(b) == b.Equal(a), "symmetric")
	assert.True(t, a.Equal(b) && b.Equal(c) && a.Equal(c), "transitive")
	assert.False(t, a.Equal(other))
}

func TestIterationRangeComponentMismatch(t *testing.T) {
	base := IterationRange{InductionVar: "i", Lower: "1", Upper: "n", Step: "1"}
	tests := []IterationRange{
		{InductionVar: "j", Lower: "1", Upper: "n", Step: "1"},
		{InductionVar: "i", Lower: "2", Upper: "n", Step: "1"},
		{InductionVar: "i", Lower: "1", Upper: "m", Step: "1"},
		{InductionVar: "i", Lower: "1", Upper: "n", Step: "2"},
	}
	for _, other := range tests {
		assert.False(t, base.Equal(other))
	}
}

func TestNewDoStatementShape(t *testing.T) {
	do := doStatement(t, "j", "1", "n", "1")

	assert.Equal(t, "j", do.Child(KindVar).Value())
	indexRange := do.Child(KindIndexRange)
	require.NotNil(t, indexRange)
	// Variable bounds become Var nodes, literals stay text.
	assert.NotNil(t, indexRange.Child(KindUpperBound).Child(KindVar))
	assert.Nil(t, indexRange.Child(KindLowerBound).Child(KindVar))
	assert.NotNil(t, do.Child(KindBody))

	r, err := IterationRangeOf(do)
	require.NoError(t, err)
	assert.Equal(t, "n", r.Upper)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("n"))
	assert.True(t, IsIdentifier("iend_2"))
	assert.False(t, IsIdentifier("1"))
	assert.False(t, IsIdentifier("n+1"))
	assert.False(t, IsIdentifier(""))
}
