package xir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const programDoc = `
<XcodeProgram file="prog.f90">
  <typeTable>
    <FfunctionType type="F1" return_type="Fvoid"/>
  </typeTable>
  <globalSymbols>
    <id type="F1" sclass="ffunc"><name>main</name></id>
  </globalSymbols>
  <globalDeclarations/>
  <FfunctionDefinition lineno="1">
    <name type="F1">main</name>
    <body>
      <FpragmaStatement lineno="2">claw remove</FpragmaStatement>
      <FpragmaStatement lineno="4">claw end remove</FpragmaStatement>
    </body>
  </FfunctionDefinition>
</XcodeProgram>`

func TestProgramWrapping(t *testing.T) {
	prog, err := Parse([]byte(programDoc))
	require.NoError(t, err)

	assert.Equal(t, "prog.f90", prog.File())
	_, ok := prog.TypeTable().Lookup("F1")
	assert.True(t, ok)
	_, ok = prog.GlobalSymbols().Lookup("main")
	assert.True(t, ok)

	def := prog.FunctionDefinition("main")
	require.NotNil(t, def)
	assert.Equal(t, "main", def.Name().Value())
	assert.Nil(t, prog.FunctionDefinition("missing"))

	assert.Len(t, prog.Pragmas(), 2)
}

func TestProgramRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte(`<XcodeProgram><typeTable/></XcodeProgram>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<notaprogram/>`))
	assert.Error(t, err)
}

func TestDiagnosticFilter(t *testing.T) {
	prog, err := Parse([]byte(programDoc))
	require.NoError(t, err)

	prog.AddError("real problem", 3)
	prog.AddError("", 3)
	prog.AddError("no line data")
	prog.AddError("zero line", 0)
	prog.AddWarning("real warning", 4, 0, 7)
	prog.AddWarning("", 1)

	require.Len(t, prog.Errors(), 1)
	assert.Equal(t, Message{Text: "real problem", Lines: []int{3}}, prog.Errors()[0])

	require.Len(t, prog.Warnings(), 1)
	assert.Equal(t, []int{4, 7}, prog.Warnings()[0].Lines)
}

func TestProgramRoundTrip(t *testing.T) {
	prog, err := Parse([]byte(programDoc))
	require.NoError(t, err)

	data, err := prog.Bytes()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, again.Pragmas(), 2)
	assert.Equal(t, "claw remove", again.Pragmas()[0].Value())
}
