// Package transform implements the directive-driven IR transformations:
// loop fusion, loop extraction, loop interchange and the block
// transformations wrapping or removing code regions.
package transform

import (
	"claw/internal/engine"
)

// Class paths as they appear in configuration documents.
const (
	ClassLoopFusion      = "claw.transform.LoopFusion"
	ClassLoopExtraction  = "claw.transform.LoopExtraction"
	ClassLoopInterchange = "claw.transform.LoopInterchange"
	ClassUtilityRemove   = "claw.transform.UtilityRemove"
	ClassParallelize     = "claw.transform.Parallelize"
)

// Registry returns the transformation classes shipped with the translator.
func Registry() engine.Registry {
	return engine.Registry{
		ClassLoopFusion:      {New: NewLoopFusion},
		ClassLoopExtraction:  {New: NewLoopExtraction},
		ClassLoopInterchange: {New: NewLoopInterchange},
		ClassUtilityRemove:   {New: NewUtilityRemove, Block: true},
		ClassParallelize:     {New: NewParallelize, Block: true},
	}
}
