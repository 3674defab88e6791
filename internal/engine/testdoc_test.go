package engine_test

import "fmt"

// calleeDefinition is the function f(a, n) iterating j=1:n over the 1-D
// array a, shared by the extraction scenarios.
func calleeDefinition() string {
	return `<FfunctionDefinition lineno="10">
    <name type="F2">f</name>
    <symbols>
      <id type="A1" sclass="param"><name>a</name></id>
      <id type="Fint" sclass="param"><name>n</name></id>
      <id type="Fint" sclass="flocal"><name>j</name></id>
    </symbols>
    <declarations>
      <varDecl><name type="A1">a</name></varDecl>
      <varDecl><name type="Fint">n</name></varDecl>
      <varDecl><name type="Fint">j</name></varDecl>
    </declarations>
    <params>
      <name type="A1">a</name>
      <name type="Fint">n</name>
    </params>
    <body>
      <FdoStatement lineno="12">
        <Var type="Fint" scope="local">j</Var>
        <indexRange>
          <lowerBound>1</lowerBound>
          <upperBound><Var type="Fint" scope="local">n</Var></upperBound>
          <step>1</step>
        </indexRange>
        <body>
          <FassignStatement lineno="13">
            <FarrayRef type="Freal">
              <varRef type="A1"><Var type="A1" scope="local">a</Var></varRef>
              <arrayIndex><Var type="Fint" scope="local">j</Var></arrayIndex>
            </FarrayRef>
            <Var type="Fint" scope="local">j</Var>
          </FassignStatement>
        </body>
      </FdoStatement>
    </body>
  </FfunctionDefinition>`
}

// extractionProgram is the canonical extraction scenario document.
func extractionProgram(directiveText string) string {
	return fmt.Sprintf(`<XcodeProgram file="extract.f90">
  <typeTable>
    <FbasicType type="Fint" ref="Fint"/>
    <FbasicType type="A1" ref="Freal" dimensions="1"/>
    <FfunctionType type="F1" return_type="Fvoid"/>
    <FfunctionType type="F2" return_type="Fvoid"/>
  </typeTable>
  <globalSymbols>
    <id type="F1" sclass="ffunc"><name>main</name></id>
    <id type="F2" sclass="ffunc"><name>f</name></id>
  </globalSymbols>
  <globalDeclarations/>
  <FfunctionDefinition lineno="1">
    <name type="F1">main</name>
    <symbols>
      <id type="A1" sclass="flocal"><name>a</name></id>
      <id type="Fint" sclass="flocal"><name>n</name></id>
    </symbols>
    <declarations>
      <varDecl><name type="A1">a</name></varDecl>
      <varDecl><name type="Fint">n</name></varDecl>
    </declarations>
    <body>
      <FpragmaStatement lineno="4">%s</FpragmaStatement>
      <exprStatement lineno="5">
        <functionCall type="Fvoid">
          <name type="F2">f</name>
          <arguments>
            <Var type="A1" scope="local">a</Var>
            <Var type="Fint" scope="local">n</Var>
          </arguments>
        </functionCall>
      </exprStatement>
    </body>
  </FfunctionDefinition>
  %s
</XcodeProgram>`, directiveText, calleeDefinition())
}
