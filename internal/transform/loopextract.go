package transform

import (
	"fmt"

	"github.com/tliron/commonlog"

	"claw/internal/directive"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/xir"
)

// ExtractionSuffix is appended, with the transformation counter, to the name
// of a cloned function.
const ExtractionSuffix = "_extracted_"

// LoopExtraction locates a loop inside a called function, extracts it, wraps
// it around the function call and demotes the mapped arguments accordingly.
// It is an independent transformation.
type LoopExtraction struct {
	engine.Base
	rng      xir.IterationRange
	mappings []directive.Mapping
	argMap   map[string]directive.Mapping
	fctMap   map[string]directive.Mapping

	exprStmt  *xir.Node
	call      *xir.Node
	callerDef *xir.FunctionDefinition
	calleeDef *xir.FunctionDefinition
	extracted *xir.Node

	log commonlog.Logger
}

// NewLoopExtraction constructs an extraction transformation from its pragma.
// The directive carries a mandatory range clause and optional mapping,
// fusion and accelerator clauses.
func NewLoopExtraction(pragma *xir.Node, dir *directive.Directive) (engine.Transformation, error) {
	if dir == nil || dir.Range == nil {
		return nil, errors.NewInternal("loop-extract instantiated without a range")
	}
	e := &LoopExtraction{
		Base: engine.NewBase(pragma, dir),
		rng: xir.IterationRange{
			InductionVar: dir.Range.Induction,
			Lower:        dir.Range.Lower,
			Upper:        dir.Range.Upper,
			Step:         dir.Range.Step,
		},
		mappings: dir.Mappings,
		argMap:   make(map[string]directive.Mapping),
		fctMap:   make(map[string]directive.Mapping),
		log:      commonlog.GetLogger("claw.transform"),
	}
	for _, m := range dir.Mappings {
		for _, v := range m.Mapped {
			e.argMap[v.Arg] = m
			e.fctMap[v.Fct] = m
		}
	}
	return e, nil
}

// Analyze locates the function call following the pragma, resolves the
// called function's definition and finds the loop matching the directive's
// range.
func (e *LoopExtraction) Analyze(prog *xir.Program, _ *engine.Transformer) bool {
	line := e.StartLine()

	e.exprStmt = xir.FindNext(e.Pragma(), xir.KindExprStatement)
	if e.exprStmt == nil {
		prog.AddError("no function call detected after loop-extract", line)
		return false
	}
	e.call = xir.Find(e.exprStmt, xir.KindFunctionCall)
	if e.call == nil {
		prog.AddError("no function call detected after loop-extract", line)
		return false
	}

	callerNode := xir.FindParent(e.call, xir.KindFunctionDefinition)
	if callerNode == nil {
		prog.AddError("no function definition around the function call", line)
		return false
	}
	var err error
	if e.callerDef, err = xir.FunctionDefinitionOf(callerNode); err != nil {
		prog.AddError(err.Error(), line)
		return false
	}

	calleeName := e.callName()
	e.calleeDef = prog.FunctionDefinition(calleeName)
	if e.calleeDef == nil {
		prog.AddError("could not locate the function definition for: "+calleeName, line)
		return false
	}

	if e.extracted, err = e.calleeDef.LocateDoStatement(e.rng); err != nil {
		if terr, ok := err.(*errors.TranslationError); ok {
			prog.AddError(terr.Message, line)
		} else {
			prog.AddError(err.Error(), line)
		}
		return false
	}

	return e.checkMappings(prog)
}

// checkMappings verifies that every mapped variable names an argument of the
// located function call.
func (e *LoopExtraction) checkMappings(prog *xir.Program) bool {
	args := e.call.Child(xir.KindArguments)
	for name := range e.argMap {
		if args == nil || findArgument(args, name) == nil {
			prog.AddError(fmt.Sprintf(
				"mapped variable %s not found in function call arguments", name),
				e.StartLine())
			return false
		}
	}
	return true
}

// Transform applies the extraction:
//  1. clone the called function with a fresh function type hash
//  2. extract the matching loop's body in the clone and delete the loop
//  3. wrap the call with a loop over the extracted iteration range
//  4. retarget the call and demote mapped references
//  5. optionally wrap with accelerator directives and chain a fusion
func (e *LoopExtraction) Transform(prog *xir.Program, tr *engine.Transformer, _ engine.Transformation) error {
	line := e.StartLine()

	// Clone the function definition. The fresh hash is generated before the
	// clone is inserted so later transformations observe a consistent type
	// table.
	cloneNode := xir.Clone(e.calleeDef.Node())
	cloneDef, err := xir.FunctionDefinitionOf(cloneNode)
	if err != nil {
		return err
	}
	hash := prog.TypeTable().GenerateFunctionTypeHash()
	oldName := e.calleeDef.Name().Value()
	newName := fmt.Sprintf("%s%s%d", oldName, ExtractionSuffix,
		tr.NextTransformationCounter())

	cloneDef.Name().SetValue(newName)
	cloneDef.Name().SetType(hash)
	if symbols := cloneDef.SymbolTable(); symbols != nil {
		if id, ok := symbols.Lookup(oldName); ok {
			if idName := id.Child(xir.KindName); idName != nil {
				idName.SetValue(newName)
			}
			id.SetType(hash)
		}
	}

	fctType, ok := prog.TypeTable().Lookup(e.calleeDef.Name().Type())
	if !ok {
		return errors.NewIllegalTransformation(errors.CodeUnresolvedType,
			fmt.Sprintf("function type %s cannot be resolved",
				e.calleeDef.Name().Type()), line)
	}
	newFctType := xir.Clone(fctType)
	newFctType.SetType(hash)
	if err := prog.TypeTable().Add(newFctType); err != nil {
		return err
	}

	if globalID, ok := prog.GlobalSymbols().Lookup(oldName); ok {
		newID := xir.Clone(globalID)
		if idName := newID.Child(xir.KindName); idName != nil {
			idName.SetValue(newName)
		}
		newID.SetType(hash)
		if err := prog.GlobalSymbols().Add(newID); err != nil {
			return err
		}
	}

	if err := xir.InsertAfter(e.calleeDef.Node(), cloneNode); err != nil {
		return err
	}

	loopInClone, err := cloneDef.LocateDoStatement(e.rng)
	if err != nil {
		return errors.NewIllegalTransformation(errors.CodeUnresolvedType,
			"extracted loop vanished from the cloned function", line)
	}

	e.log.Debugf("loop-extract: created %s from %s", newName, oldName)

	// Extract the loop body in the clone and delete the loop header.
	if err := xir.ExtractBody(loopInClone); err != nil {
		return err
	}
	xir.Delete(loopInClone)

	// Wrap the function call with a loop over the callee's iteration range.
	extractedRange, err := xir.IterationRangeOf(e.extracted)
	if err != nil {
		return err
	}
	wrapLoop, err := e.wrapCallWithLoop(extractedRange)
	if err != nil {
		return err
	}

	e.log.Debugf("loop-extract: call wrapped with loop: %s -> %s",
		oldName, newName)

	// Retarget the call to the clone.
	callName := e.call.Child(xir.KindName)
	callName.SetValue(newName)
	callName.SetType(hash)

	if err := e.applyMappings(prog, cloneDef); err != nil {
		return err
	}
	e.demoteArrayRefs(cloneDef)

	if err := e.wrapAccelerator(wrapLoop); err != nil {
		return err
	}

	if e.Directive().HasFusion {
		fusion := NewSyntheticLoopFusion(wrapLoop, e.Directive().GroupLabel, line)
		if err := tr.AddTransformation("loop-fusion", fusion); err != nil {
			prog.AddWarning("fusion clause ignored: loop-fusion group is not configured", line)
		} else {
			e.log.Debugf("loop-extract: fusion chained with group %q",
				e.Directive().GroupLabel)
		}
	}
	return nil
}

// wrapCallWithLoop builds a do-statement over the extracted range just after
// the pragma, moves the call statement into its body, and injects the
// declarations the range needs into the calling function.
func (e *LoopExtraction) wrapCallWithLoop(r xir.IterationRange) (*xir.Node, error) {
	wrapLoop := xir.NewDoStatement(r)
	wrapLoop.SetLineNo(e.StartLine())
	if err := xir.InsertAfter(e.Pragma(), wrapLoop); err != nil {
		return nil, err
	}
	if err := xir.Append(wrapLoop.Child(xir.KindBody), xir.Detach(e.exprStmt)); err != nil {
		return nil, err
	}

	e.insertDeclaration(r.InductionVar)
	for _, expr := range []string{r.Lower, r.Upper, r.Step} {
		if xir.IsIdentifier(expr) {
			e.insertDeclaration(expr)
		}
	}
	return wrapLoop, nil
}

// insertDeclaration copies a symbol and its declaration from the callee into
// the calling function when the caller does not already have them.
func (e *LoopExtraction) insertDeclaration(name string) {
	callerSymbols := e.callerDef.SymbolTable()
	calleeSymbols := e.calleeDef.SymbolTable()
	if callerSymbols != nil && calleeSymbols != nil {
		if _, ok := callerSymbols.Lookup(name); !ok {
			if id, ok := calleeSymbols.Lookup(name); ok {
				_ = callerSymbols.Add(xir.Clone(id))
			}
		}
	}
	callerDecls := e.callerDef.DeclTable()
	calleeDecls := e.calleeDef.DeclTable()
	if callerDecls != nil && calleeDecls != nil {
		if _, ok := callerDecls.Lookup(name); !ok {
			if decl, ok := calleeDecls.Lookup(name); ok {
				_ = callerDecls.Add(xir.Clone(decl))
			}
		}
	}
}

// applyMappings promotes mapped call arguments to array references indexed
// by the mapping variables, and rewrites the matching declarations in the
// clone.
func (e *LoopExtraction) applyMappings(prog *xir.Program, cloneDef *xir.FunctionDefinition) error {
	args := e.call.Child(xir.KindArguments)
	line := e.StartLine()

	for _, mapping := range e.mappings {
		e.log.Debugf("loop-extract: apply mapping over %d dimensions",
			mapping.MappedDimensions())
		for _, v := range mapping.Mapped {
			argument := findArgument(args, v.Arg)
			if argument == nil {
				continue
			}

			switch argument.Kind() {
			case xir.KindVar:
				if err := e.promoteArgument(prog, argument, mapping); err != nil {
					return err
				}
			case xir.KindArrayRef:
				return errors.NewIllegalTransformation(errors.CodeUnsupported,
					fmt.Sprintf("mapping of array reference argument %s is not supported", v.Arg),
					line)
			}

			if err := e.demoteDeclaration(prog, cloneDef, v, mapping); err != nil {
				return err
			}
		}
	}
	return nil
}

// promoteArgument rewrites a scalar variable argument of array type into an
// array reference subscripted by the mapping variables in declaration order.
func (e *LoopExtraction) promoteArgument(prog *xir.Program, argument *xir.Node, mapping directive.Mapping) error {
	basicType, ok := prog.TypeTable().Lookup(argument.Type())
	if !ok {
		return errors.NewIllegalTransformation(errors.CodeUnresolvedType,
			fmt.Sprintf("type %s of mapped argument %s cannot be resolved",
				argument.Type(), argument.Value()), e.StartLine())
	}
	if xir.Dimensions(basicType) < mapping.MappedDimensions() {
		return errors.NewIllegalTransformation(errors.CodeIllegalMapping,
			fmt.Sprintf("mapping dimensions too big for argument %s",
				argument.Value()), e.StartLine())
	}

	newArg := xir.NewNode(xir.KindArrayRef)
	newArg.SetType(basicType.Attr(xir.AttrRef))

	varRef := xir.NewNode(xir.KindVarRef)
	varRef.SetType(argument.Type())
	if err := xir.Append(varRef, xir.Clone(argument)); err != nil {
		return err
	}
	if err := xir.Append(newArg, varRef); err != nil {
		return err
	}

	callerDecls := e.callerDef.DeclTable()
	for _, mappingVar := range mapping.Mapping {
		index := xir.NewNode(xir.KindArrayIndex)
		indexVar := xir.NewNode(xir.KindVar)
		indexVar.SetAttr(xir.AttrScope, xir.ScopeLocal)
		indexVar.SetValue(mappingVar.Arg)
		if callerDecls != nil {
			if decl, ok := callerDecls.Lookup(mappingVar.Arg); ok {
				if declName := decl.Child(xir.KindName); declName != nil {
					indexVar.SetType(declName.Type())
				}
			}
		}
		if err := xir.Append(index, indexVar); err != nil {
			return err
		}
		if err := xir.Append(newArg, index); err != nil {
			return err
		}
	}
	return xir.Replace(argument, newArg)
}

// demoteDeclaration rewrites the mapped parameter's declaration in the
// clone. A parameter whose declared dimensionality equals the mapping count
// is demoted to the element type; a partial demotion is left in place with a
// warning.
func (e *LoopExtraction) demoteDeclaration(prog *xir.Program, cloneDef *xir.FunctionDefinition, v directive.MappingVar, mapping directive.Mapping) error {
	decls := cloneDef.DeclTable()
	if decls == nil {
		return nil
	}
	decl, ok := decls.Lookup(v.Fct)
	if !ok {
		return errors.NewIllegalTransformation(errors.CodeIllegalMapping,
			fmt.Sprintf("mapped variable %s is not declared in the called function", v.Fct),
			e.StartLine())
	}
	declName := decl.Child(xir.KindName)
	if declName == nil {
		return errors.NewInternalf("declaration of %s has no name", v.Fct)
	}
	declType, ok := prog.TypeTable().Lookup(declName.Type())
	if !ok {
		return errors.NewIllegalTransformation(errors.CodeUnresolvedType,
			fmt.Sprintf("type %s of mapped variable %s cannot be resolved",
				declName.Type(), v.Fct), e.StartLine())
	}

	if xir.Dimensions(declType) != mapping.MappedDimensions() {
		prog.AddWarning(fmt.Sprintf(
			"partial demotion of %s is not supported; declaration left unchanged", v.Fct),
			e.StartLine())
		return nil
	}

	ref := declType.Attr(xir.AttrRef)
	newDecl := xir.NewNode(xir.KindVarDecl)
	newName := xir.NewNode(xir.KindName)
	newName.SetValue(v.Fct)
	newName.SetType(ref)
	if err := xir.Append(newDecl, newName); err != nil {
		return err
	}
	if err := decls.Replace(newDecl); err != nil {
		return err
	}
	if symbols := cloneDef.SymbolTable(); symbols != nil {
		if id, ok := symbols.Lookup(v.Fct); ok {
			id.SetType(ref)
		}
	}
	return nil
}

// demoteArrayRefs replaces, in the clone's body, every array reference whose
// base is a mapped parameter and whose variable indices follow the mapping
// variables in order, by its base variable.
func (e *LoopExtraction) demoteArrayRefs(cloneDef *xir.FunctionDefinition) {
	for _, ref := range xir.FindAll(cloneDef.Body(), xir.KindArrayRef) {
		if ref.Parent() == nil {
			continue
		}
		varRef := ref.Child(xir.KindVarRef)
		if varRef == nil {
			continue
		}
		base := varRef.Child(xir.KindVar)
		if base == nil {
			continue
		}
		mapping, ok := e.fctMap[base.Value()]
		if !ok {
			continue
		}

		changeRef := true
		mappingIndex := 0
		for _, index := range ref.ChildrenOf(xir.KindArrayIndex) {
			indexVar := index.Child(xir.KindVar)
			if indexVar == nil {
				continue
			}
			if mappingIndex >= len(mapping.Mapping) {
				changeRef = false
				break
			}
			if indexVar.Value() == mapping.Mapping[mappingIndex].Fct {
				mappingIndex++
			} else {
				changeRef = false
			}
		}
		if changeRef {
			if err := xir.InsertBefore(ref, xir.Clone(base)); err == nil {
				xir.Delete(ref)
			}
		}
	}
}

// wrapAccelerator encloses the wrapped loop in accelerator start/end pragmas
// when the parallel option is set, and emits the additional accelerator
// option pragma when one was supplied.
func (e *LoopExtraction) wrapAccelerator(wrapLoop *xir.Node) error {
	dir := e.Directive()
	line := e.StartLine()
	if dir.HasParallel {
		start := newPragma("acc parallel", line)
		end := newPragma("acc end parallel", line)
		if err := xir.InsertAfter(e.Pragma(), start); err != nil {
			return err
		}
		if err := xir.InsertAfter(wrapLoop, end); err != nil {
			return err
		}
		if dir.AccOption != "" {
			return xir.InsertAfter(start, newPragma("acc "+dir.AccOption, line))
		}
		return nil
	}
	if dir.AccOption != "" {
		return xir.InsertAfter(e.Pragma(), newPragma("acc "+dir.AccOption, line))
	}
	return nil
}

func (e *LoopExtraction) callName() string {
	if name := e.call.Child(xir.KindName); name != nil {
		return name.Value()
	}
	return ""
}

// findArgument resolves an argument name in a call's argument list: a plain
// variable, or an array reference whose base matches.
func findArgument(args *xir.Node, name string) *xir.Node {
	if args == nil {
		return nil
	}
	for _, arg := range args.Children() {
		switch arg.Kind() {
		case xir.KindVar:
			if arg.Value() == name {
				return arg
			}
		case xir.KindArrayRef:
			if varRef := arg.Child(xir.KindVarRef); varRef != nil {
				if base := varRef.Child(xir.KindVar); base != nil && base.Value() == name {
					return arg
				}
			}
		}
	}
	return nil
}
