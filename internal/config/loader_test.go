package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claw/internal/errors"
)

// acceptAll resolves every class path, flagging the block classes the
// shipped registry marks as such.
func acceptAll(class string) (ClassInfo, bool) {
	switch class {
	case "claw.transform.UtilityRemove", "claw.transform.Parallelize":
		return ClassInfo{Block: true}, true
	default:
		return ClassInfo{}, true
	}
}

func writeConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const testSet = `
transformations:
  - name: loop-fusion
    type: dependent
    trigger: directive
    class: claw.transform.LoopFusion
  - name: loop-extract
    type: independent
    trigger: directive
    class: claw.transform.LoopExtraction
`

const testRoot = `
version: "0.9.0"
global:
  type: root
  parameters:
    default_target: gpu
    default_directive: openacc
    max_columns: "80"
sets:
  - test-set
groups:
  - set: test-set
    name: loop-extract
  - set: test-set
    name: loop-fusion
`

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load(Options{Classes: acceptAll})
	require.NoError(t, err)

	assert.Equal(t, "gpu", cfg.Target())
	assert.Equal(t, "openacc", cfg.Directive())
	assert.Equal(t, 80, cfg.MaxColumns())
	assert.Equal(t, "parallel", cfg.Acc().ExecutionMode)

	groups := cfg.Groups()
	require.NotEmpty(t, groups)
	assert.Equal(t, "loop-extract", groups[0].Name)
	fusion := cfg.Group("loop-fusion")
	require.NotNil(t, fusion)
	assert.Equal(t, GroupDependent, fusion.Type)
	assert.Equal(t, TriggerDirective, fusion.Trigger)
}

func TestLoadRootConfiguration(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": testRoot,
		"test-set.yaml":     testSet,
	})

	cfg, err := Load(Options{Path: dir, Classes: acceptAll})
	require.NoError(t, err)
	require.Len(t, cfg.Groups(), 2)
	assert.Equal(t, "loop-extract", cfg.Groups()[0].Name)
	assert.Equal(t, "claw.transform.LoopFusion", cfg.Groups()[1].Class)
	assert.Equal(t, "test-set", cfg.Groups()[0].Set)
}

func TestLoadExtensionOverwritesParameters(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": testRoot,
		"test-set.yaml":     testSet,
		"user.yaml": `
version: "0.9.0"
global:
  type: extension
  parameters:
    default_target: cpu
`,
	})

	cfg, err := Load(Options{
		Path:     dir,
		UserFile: filepath.Join(dir, "user.yaml"),
		Classes:  acceptAll,
	})
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Target())
	// Untouched parameters and groups survive.
	assert.Equal(t, "openacc", cfg.Directive())
	assert.Len(t, cfg.Groups(), 2)
}

func TestLoadExtensionReplacesGroupOrder(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": testRoot,
		"test-set.yaml":     testSet,
		"user.yaml": `
version: "0.9.0"
global:
  type: extension
groups:
  - name: loop-fusion
`,
	})

	cfg, err := Load(Options{
		Path:     dir,
		UserFile: filepath.Join(dir, "user.yaml"),
		Classes:  acceptAll,
	})
	require.NoError(t, err)
	require.Len(t, cfg.Groups(), 1)
	assert.Equal(t, "loop-fusion", cfg.Groups()[0].Name)
}

func TestLoadFullUserConfigurationSkipsDefault(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"test-set.yaml": testSet,
		"user.yaml": `
version: "0.9.0"
global:
  type: root
  parameters:
    default_target: cpu
sets:
  - test-set
groups:
  - name: loop-fusion
`,
	})

	cfg, err := Load(Options{
		Path:     dir,
		UserFile: filepath.Join(dir, "user.yaml"),
		Classes:  acceptAll,
	})
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Target())
	assert.Equal(t, "", cfg.Directive())
	require.Len(t, cfg.Groups(), 1)
}

func TestLoadVersionMismatch(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.1.0"
sets:
  - test-set
groups:
  - name: loop-fusion
`,
		"test-set.yaml": testSet,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
	terr := err.(*errors.TranslationError)
	assert.Equal(t, errors.Configuration, terr.Kind)
	assert.Contains(t, terr.Message, "version")
}

func TestLoadRejectsMalformedVersion(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "not-a-version"
sets:
  - test-set
`,
		"test-set.yaml": testSet,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
}

func TestLoadRejectsUnknownGroup(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
sets:
  - test-set
groups:
  - name: does-not-exist
`,
		"test-set.yaml": testSet,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestLoadRejectsDuplicateGroup(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
sets:
  - test-set
groups:
  - name: loop-fusion
  - name: loop-fusion
`,
		"test-set.yaml": testSet,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uplicated")
}

func TestLoadRejectsMissingClass(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
sets:
  - test-set
groups:
  - name: loop-fusion
`,
		"test-set.yaml": testSet,
	})

	missing := func(string) (ClassInfo, bool) { return ClassInfo{}, false }
	_, err := Load(Options{Path: dir, Classes: missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestLoadRejectsTranslationUnitBlockTransformation(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
sets:
  - test-set
groups:
  - name: remove
`,
		"test-set.yaml": `
transformations:
  - name: remove
    type: independent
    trigger: translation_unit
    class: claw.transform.UtilityRemove
`,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block transformation")
}

func TestLoadRejectsRootWithoutSets(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
groups:
  - name: loop-fusion
`,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sets")
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown field",
			doc: `
version: "0.9.0"
surprise: true
sets:
  - test-set
`,
		},
		{
			name: "bad global type",
			doc: `
version: "0.9.0"
global:
  type: partial
sets:
  - test-set
`,
		},
		{
			name: "missing version",
			doc: `
sets:
  - test-set
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigDir(t, map[string]string{
				"claw-default.yaml": tt.doc,
				"test-set.yaml":     testSet,
			})
			_, err := Load(Options{Path: dir, Classes: acceptAll})
			require.Error(t, err)
			terr := err.(*errors.TranslationError)
			assert.Equal(t, errors.Configuration, terr.Kind)
		})
	}
}

func TestLoadRejectsBadSetDocument(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"claw-default.yaml": `
version: "0.9.0"
sets:
  - test-set
`,
		"test-set.yaml": `
transformations:
  - name: loop-fusion
    type: sideways
    trigger: directive
    class: claw.transform.LoopFusion
`,
	})

	_, err := Load(Options{Path: dir, Classes: acceptAll})
	require.Error(t, err)
}

func TestUserOverrides(t *testing.T) {
	cfg, err := Load(Options{Classes: acceptAll})
	require.NoError(t, err)

	cfg.SetUserTarget("cpu")
	cfg.SetUserDirective("openmp")
	assert.Equal(t, "cpu", cfg.Target())
	assert.Equal(t, "openmp", cfg.Directive())

	cfg.SetUserTarget("")
	assert.Equal(t, "cpu", cfg.Target())
}
