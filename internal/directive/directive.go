// Package directive parses the text of translator pragmas into structured
// directive objects with typed clauses.
package directive

import (
	"strings"
)

// Prefix is the fixed pragma prefix of the directive family. The engine
// strips it before handing the remainder to Parse.
const Prefix = "claw"

// Kind identifies a directive.
type Kind int

const (
	KindNone Kind = iota
	KindLoopFusion
	KindLoopExtract
	KindLoopInterchange
	KindRemove
	KindParallelize
	KindArrayTransform
	KindKcache
)

var kindKeywords = map[Kind]string{
	KindLoopFusion:      "loop-fusion",
	KindLoopExtract:     "loop-extract",
	KindLoopInterchange: "loop-interchange",
	KindRemove:          "remove",
	KindParallelize:     "parallelize",
	KindArrayTransform:  "array-transform",
	KindKcache:          "kcache",
}

var keywordKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindKeywords))
	for kind, keyword := range kindKeywords {
		m[keyword] = kind
	}
	return m
}()

func (k Kind) String() string {
	if keyword, ok := kindKeywords[k]; ok {
		return keyword
	}
	return "none"
}

// IsBlock reports whether the kind delimits a region with a matching end
// directive.
func (k Kind) IsBlock() bool {
	return k == KindRemove || k == KindParallelize
}

// Range is the iteration space supplied by a range clause. A missing step
// defaults to "1". Bounds and step are expression text.
type Range struct {
	Induction string
	Lower     string
	Upper     string
	Step      string
}

// MappingVar names one variable of a mapping clause. Arg is the name at the
// call site; Fct the corresponding name inside the called function. Without
// an explicit pairing the two are equal.
type MappingVar struct {
	Arg string
	Fct string
}

func (v MappingVar) String() string {
	if v.Arg == v.Fct {
		return v.Arg
	}
	return v.Arg + "/" + v.Fct
}

// Mapping is one map clause: the mapped variables and the mapping variables
// they are subscripted by.
type Mapping struct {
	Mapped  []MappingVar
	Mapping []MappingVar
}

// MappedDimensions is the number of dimensions consumed by the mapping.
func (m Mapping) MappedDimensions() int { return len(m.Mapping) }

// Directive is the structured result of parsing one pragma.
type Directive struct {
	Kind Kind
	// End marks the terminator of a block directive.
	End  bool
	Line int

	// Range of a loop-extract clause; nil otherwise.
	Range *Range
	// Mappings of loop-extract map clauses, in clause order.
	Mappings []Mapping
	// GroupLabel links cooperating transformations.
	GroupLabel string
	// HasFusion marks the fusion flag of loop-extract.
	HasFusion bool
	// HasParallel marks the parallel flag of loop-extract.
	HasParallel bool
	// AccOption is the raw accelerator clause value, or "".
	AccOption string
	// NewOrder lists induction variables of a loop-interchange new-order
	// clause.
	NewOrder []string
	// Data lists the variables of a kcache data clause.
	Data []string
	// Induction lists the variables of an array-transform induction clause.
	Induction []string
}

// StripPrefix removes the directive prefix from raw pragma text. The second
// result is false when the pragma does not belong to the directive family.
func StripPrefix(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == Prefix {
		return "", true
	}
	if strings.HasPrefix(trimmed, Prefix+" ") {
		return strings.TrimSpace(trimmed[len(Prefix)+1:]), true
	}
	return "", false
}

// KindOfText determines the kind and end marker of directive text without a
// full parse. Used when scanning for block delimiters.
func KindOfText(text string) (kind Kind, end bool, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return KindNone, false, false
	}
	if fields[0] == "end" {
		if len(fields) < 2 {
			return KindNone, false, false
		}
		kind, ok = keywordKinds[fields[1]]
		return kind, true, ok
	}
	kind, ok = keywordKinds[fields[0]]
	return kind, false, ok
}
