package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claw/internal/errors"
)

func TestParseLoopFusion(t *testing.T) {
	d, err := Parse("loop-fusion", 10)
	require.NoError(t, err)
	assert.Equal(t, KindLoopFusion, d.Kind)
	assert.False(t, d.End)
	assert.Equal(t, "", d.GroupLabel)
	assert.Equal(t, 10, d.Line)
}

func TestParseLoopFusionWithGroup(t *testing.T) {
	d, err := Parse("loop-fusion group(g1)", 3)
	require.NoError(t, err)
	assert.Equal(t, KindLoopFusion, d.Kind)
	assert.Equal(t, "g1", d.GroupLabel)
}

func TestParseLoopExtractRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Range
	}{
		{
			name: "default step",
			text: "loop-extract range(j=1:n)",
			want: Range{Induction: "j", Lower: "1", Upper: "n", Step: "1"},
		},
		{
			name: "explicit step",
			text: "loop-extract range(i=istart:iend:2)",
			want: Range{Induction: "i", Lower: "istart", Upper: "iend", Step: "2"},
		},
		{
			name: "compound bound",
			text: "loop-extract range(i=1:n+1)",
			want: Range{Induction: "i", Lower: "1", Upper: "n+1", Step: "1"},
		},
		{
			name: "whitespace insignificant",
			text: "loop-extract range( j = 1 : n )",
			want: Range{Induction: "j", Lower: "1", Upper: "n", Step: "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.text, 1)
			require.NoError(t, err)
			require.NotNil(t, d.Range)
			assert.Equal(t, tt.want, *d.Range)
		})
	}
}

func TestParseLoopExtractMapping(t *testing.T) {
	d, err := Parse("loop-extract range(j=1:n) map(a,b/c:j,k)", 1)
	require.NoError(t, err)
	require.Len(t, d.Mappings, 1)

	m := d.Mappings[0]
	assert.Equal(t, []MappingVar{{Arg: "a", Fct: "a"}, {Arg: "b", Fct: "c"}}, m.Mapped)
	assert.Equal(t, []MappingVar{{Arg: "j", Fct: "j"}, {Arg: "k", Fct: "k"}}, m.Mapping)
	assert.Equal(t, 2, m.MappedDimensions())
}

func TestParseLoopExtractRepeatedMapClauses(t *testing.T) {
	d, err := Parse("loop-extract range(j=1:n) map(a:j) map(b:j)", 1)
	require.NoError(t, err)
	assert.Len(t, d.Mappings, 2)
}

func TestParseLoopExtractOptions(t *testing.T) {
	d, err := Parse("loop-extract range(j=1:n) map(a:j) fusion group(g2) parallel acc(loop gang vector)", 7)
	require.NoError(t, err)
	assert.True(t, d.HasFusion)
	assert.True(t, d.HasParallel)
	assert.Equal(t, "g2", d.GroupLabel)
	assert.Equal(t, "loop gang vector", d.AccOption)
}

func TestParseClauseOrderIrrelevant(t *testing.T) {
	a, err := Parse("loop-extract range(j=1:n) parallel map(a:j)", 1)
	require.NoError(t, err)
	b, err := Parse("loop-extract parallel map(a:j) range(j=1:n)", 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseDuplicateMapping(t *testing.T) {
	_, err := Parse("loop-extract range(j=1:n) map(a:j) map(a:k)", 4)
	require.Error(t, err)
	terr := err.(*errors.TranslationError)
	assert.Equal(t, errors.Parse, terr.Kind)
	assert.Equal(t, errors.CodeDuplicateMapping, terr.Code)
	assert.Equal(t, 4, terr.Line)
}

func TestParseDuplicateMappingWithinClause(t *testing.T) {
	_, err := Parse("loop-extract range(j=1:n) map(a,a:j)", 1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateMapping, err.(*errors.TranslationError).Code)
}

func TestParseUnknownClause(t *testing.T) {
	_, err := Parse("loop-fusion range(i=1:n)", 2)
	require.Error(t, err)
	terr := err.(*errors.TranslationError)
	assert.Equal(t, errors.CodeUnknownClause, terr.Code)
}

func TestParseMissingClause(t *testing.T) {
	_, err := Parse("loop-extract map(a:j)", 2)
	require.Error(t, err)
	terr := err.(*errors.TranslationError)
	assert.Equal(t, errors.CodeMissingClause, terr.Code)
}

func TestParseDuplicateClause(t *testing.T) {
	_, err := Parse("loop-extract range(i=1:n) range(j=1:n)", 2)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateClause, err.(*errors.TranslationError).Code)
}

func TestParseUnknownDirective(t *testing.T) {
	_, err := Parse("loop-explode", 9)
	require.Error(t, err)
	terr := err.(*errors.TranslationError)
	assert.Equal(t, errors.CodeUnknownDirective, terr.Code)
	assert.Equal(t, 9, terr.Line)
}

func TestParseEndDirectives(t *testing.T) {
	d, err := Parse("end remove", 5)
	require.NoError(t, err)
	assert.Equal(t, KindRemove, d.Kind)
	assert.True(t, d.End)

	d, err = Parse("end parallelize", 6)
	require.NoError(t, err)
	assert.Equal(t, KindParallelize, d.Kind)
	assert.True(t, d.End)
}

func TestParseEndOnNonBlockDirective(t *testing.T) {
	_, err := Parse("end loop-fusion", 1)
	require.Error(t, err)
}

func TestParseLoopInterchange(t *testing.T) {
	d, err := Parse("loop-interchange new-order(k,i,j)", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "i", "j"}, d.NewOrder)
}

func TestParseKcacheData(t *testing.T) {
	d, err := Parse("kcache data(a,b)", 1)
	require.NoError(t, err)
	assert.Equal(t, KindKcache, d.Kind)
	assert.Equal(t, []string{"a", "b"}, d.Data)
}

func TestParseParallelizeAcc(t *testing.T) {
	d, err := Parse("parallelize acc(seq)", 1)
	require.NoError(t, err)
	assert.Equal(t, "seq", d.AccOption)
}

func TestStripPrefix(t *testing.T) {
	text, ok := StripPrefix("claw loop-fusion group(g)")
	require.True(t, ok)
	assert.Equal(t, "loop-fusion group(g)", text)

	_, ok = StripPrefix("acc parallel")
	assert.False(t, ok)

	_, ok = StripPrefix("omp parallel do")
	assert.False(t, ok)
}

func TestKindOfText(t *testing.T) {
	kind, end, ok := KindOfText("remove")
	require.True(t, ok)
	assert.Equal(t, KindRemove, kind)
	assert.False(t, end)

	kind, end, ok = KindOfText("end remove")
	require.True(t, ok)
	assert.Equal(t, KindRemove, kind)
	assert.True(t, end)

	_, _, ok = KindOfText("whatever")
	assert.False(t, ok)
}
