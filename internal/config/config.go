// Package config loads and validates the translator configuration: which
// transformation groups run, in which order, and the global parameters
// consumed by the accelerator sub-configuration.
package config

import (
	"strconv"
)

// Recognized global parameter keys.
const (
	ParamDefaultTarget    = "default_target"
	ParamDefaultDirective = "default_directive"
	ParamMaxColumns       = "max_columns"
)

// GroupType classifies how instances of a transformation group interact.
type GroupType int

const (
	GroupIndependent GroupType = iota
	GroupDependent
)

func (t GroupType) String() string {
	if t == GroupDependent {
		return "dependent"
	}
	return "independent"
}

// TriggerType states what causes instantiation of a group's transformation.
type TriggerType int

const (
	TriggerDirective TriggerType = iota
	TriggerTranslationUnit
)

func (t TriggerType) String() string {
	if t == TriggerTranslationUnit {
		return "translation_unit"
	}
	return "directive"
}

// ClassInfo is what the loader needs to know about a transformation class:
// that it exists, and whether it is a block transformation.
type ClassInfo struct {
	Block bool
}

// Group is one transformation group: a name within a set, mapped to a
// transformation class.
type Group struct {
	Set     string
	Name    string
	Class   string
	Type    GroupType
	Trigger TriggerType
}

// Configuration is the resolved translator configuration. It is threaded
// explicitly through the pipeline; there is no process-wide state.
type Configuration struct {
	params map[string]string
	groups []*Group
	acc    *AccConfiguration
}

// Parameter returns the value of a global parameter, or "".
func (c *Configuration) Parameter(key string) string {
	return c.params[key]
}

// Groups returns the transformation groups in application order.
func (c *Configuration) Groups() []*Group {
	return c.groups
}

// Group resolves a group name, or nil.
func (c *Configuration) Group(name string) *Group {
	for _, g := range c.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Acc returns the accelerator sub-configuration.
func (c *Configuration) Acc() *AccConfiguration {
	return c.acc
}

// MaxColumns returns the max_columns parameter, or zero when unset.
func (c *Configuration) MaxColumns() int {
	columns, err := strconv.Atoi(c.params[ParamMaxColumns])
	if err != nil {
		return 0
	}
	return columns
}

// Target returns the configured default target.
func (c *Configuration) Target() string {
	return c.params[ParamDefaultTarget]
}

// Directive returns the configured default accelerator directive language.
func (c *Configuration) Directive() string {
	return c.params[ParamDefaultDirective]
}

// SetUserTarget overrides the target from the command line. Empty options
// are ignored.
func (c *Configuration) SetUserTarget(option string) {
	if option != "" {
		c.params[ParamDefaultTarget] = option
	}
}

// SetUserDirective overrides the directive language from the command line.
func (c *Configuration) SetUserDirective(option string) {
	if option != "" {
		c.params[ParamDefaultDirective] = option
	}
}
