package engine

import (
	"claw/internal/config"
	"claw/internal/directive"
	"claw/internal/xir"
)

// Factory constructs a transformation instance from its triggering pragma and
// parsed directive; both are nil for translation-unit-triggered classes.
// Construction may fail on directive options the grammar admits but the
// class rejects.
type Factory func(pragma *xir.Node, dir *directive.Directive) (Transformation, error)

// Class is one registered transformation class.
type Class struct {
	New   Factory
	Block bool
}

// Registry resolves configuration class paths to transformation classes.
type Registry map[string]Class

// Resolve looks up a class path.
func (r Registry) Resolve(class string) (Class, bool) {
	c, ok := r[class]
	return c, ok
}

// ClassInfo adapts the registry for the configuration loader's class checks.
func (r Registry) ClassInfo(class string) (config.ClassInfo, bool) {
	c, ok := r[class]
	return config.ClassInfo{Block: c.Block}, ok
}
