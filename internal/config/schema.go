package config

import (
	"embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"claw/internal/errors"
)

// Configuration documents are YAML trees validated against CUE schemas before
// they are decoded. The schemas are closed: unknown fields are rejected.

const configSchema = `
#Config: close({
	version: =~"^[0-9]+\\.[0-9]+(\\.[0-9]+)?$"
	global?: close({
		type?:       "root" | "extension"
		parameters?: {[string]: string}
	})
	sets?:   [...string]
	groups?: [...close({set?: string, name: string})]
})
#Config
`

const setSchema = `
#TransformationSet: close({
	transformations: [...close({
		name:    string
		type:    "dependent" | "independent"
		trigger: "directive" | "translation_unit"
		class:   string
	})]
})
#TransformationSet
`

//go:embed defaults/claw-default.yaml defaults/claw-internal.yaml
var defaults embed.FS

// validateDocument checks a YAML document against a CUE schema.
func validateDocument(schemaSrc string, data []byte, name string) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.NewConfigurationf(
			"configuration document %s is not valid YAML: %v", name, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc)
	if err := schema.Err(); err != nil {
		return errors.NewInternalf("configuration schema does not compile: %v", err)
	}
	value := ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return errors.NewConfigurationf(
			"configuration document %s cannot be encoded: %v", name, err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return errors.NewConfigurationf(
			"configuration document %s is not well formatted: %v", name, err)
	}
	return nil
}
