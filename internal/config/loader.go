package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"claw"
	"claw/internal/errors"
)

const (
	defaultConfigFile = "claw-default.yaml"
	yamlExt           = ".yaml"
	extensionType     = "extension"
)

// Options parameterize configuration loading.
type Options struct {
	// Path is the directory holding the default configuration and the
	// transformation set documents. When empty, the embedded defaults are
	// used.
	Path string
	// UserFile optionally points to an alternative configuration: either a
	// full root configuration or an extension amending the default one.
	UserFile string
	// Classes resolves a transformation class path. Required.
	Classes func(class string) (ClassInfo, bool)
}

type rawConfig struct {
	Version string `yaml:"version"`
	Global  struct {
		Type       string            `yaml:"type"`
		Parameters map[string]string `yaml:"parameters"`
	} `yaml:"global"`
	Sets   []string `yaml:"sets"`
	Groups []struct {
		Set  string `yaml:"set"`
		Name string `yaml:"name"`
	} `yaml:"groups"`
}

type rawSet struct {
	Transformations []struct {
		Name    string `yaml:"name"`
		Type    string `yaml:"type"`
		Trigger string `yaml:"trigger"`
		Class   string `yaml:"class"`
	} `yaml:"transformations"`
}

type loader struct {
	opts      Options
	params    map[string]string
	available map[string]*Group
	order     []*Group
}

// Load resolves the configuration. A user file that is an extension amends
// the default configuration; a full user root configuration replaces it.
// All returned errors are fatal configuration errors.
func Load(opts Options) (*Configuration, error) {
	if opts.Classes == nil {
		return nil, errors.NewInternal("configuration loader needs a class resolver")
	}
	l := &loader{
		opts:      opts,
		params:    make(map[string]string),
		available: make(map[string]*Group),
	}

	readDefault := true
	var userConf *rawConfig
	if opts.UserFile != "" {
		data, err := os.ReadFile(opts.UserFile)
		if err != nil {
			return nil, errors.NewConfigurationf(
				"cannot read configuration %s: %v", opts.UserFile, err)
		}
		userConf, err = l.validate(data, filepath.Base(opts.UserFile))
		if err != nil {
			return nil, err
		}
		readDefault = userConf.Global.Type == extensionType
	}

	if readDefault {
		data, err := l.readDocument(defaultConfigFile)
		if err != nil {
			return nil, err
		}
		defaultConf, err := l.validate(data, defaultConfigFile)
		if err != nil {
			return nil, err
		}
		if err := l.read(defaultConf, false); err != nil {
			return nil, err
		}
		if userConf != nil {
			if err := l.read(userConf, true); err != nil {
				return nil, err
			}
		}
	} else {
		if err := l.read(userConf, false); err != nil {
			return nil, err
		}
	}

	acc, err := newAccConfiguration(l.params)
	if err != nil {
		return nil, err
	}
	return &Configuration{params: l.params, groups: l.order, acc: acc}, nil
}

// readDocument loads a document from the configuration path, falling back to
// the embedded defaults when no path is configured.
func (l *loader) readDocument(name string) ([]byte, error) {
	if l.opts.Path == "" {
		data, err := defaults.ReadFile("defaults/" + name)
		if err != nil {
			return nil, errors.NewConfigurationf(
				"configuration document %s cannot be found", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Join(l.opts.Path, name))
	if err != nil {
		return nil, errors.NewConfigurationf(
			"configuration document %s cannot be found in %s", name, l.opts.Path)
	}
	return data, nil
}

// validate schema-checks a configuration document, checks its version and
// decodes it.
func (l *loader) validate(data []byte, name string) (*rawConfig, error) {
	if err := validateDocument(configSchema, data, name); err != nil {
		return nil, err
	}
	var conf rawConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, errors.NewConfigurationf(
			"configuration document %s cannot be decoded: %v", name, err)
	}
	if err := checkVersion(conf.Version); err != nil {
		return nil, err
	}
	return &conf, nil
}

// read merges one configuration document into the loader state. Extensions
// overwrite parameters, replace the sets when any are declared, and replace
// the group order when any groups are declared.
func (l *loader) read(conf *rawConfig, isExtension bool) error {
	for key, value := range conf.Global.Parameters {
		l.params[key] = value
	}

	if isExtension {
		if len(conf.Sets) > 0 {
			l.available = make(map[string]*Group)
			if err := l.readSets(conf.Sets); err != nil {
				return err
			}
		}
	} else {
		if len(conf.Sets) == 0 {
			return errors.NewConfiguration(
				"root configuration must declare transformation sets")
		}
		if err := l.readSets(conf.Sets); err != nil {
			return err
		}
	}

	if len(conf.Groups) > 0 {
		if isExtension {
			l.order = nil
		}
		for _, g := range conf.Groups {
			group, ok := l.available[g.Name]
			if !ok {
				return errors.NewConfigurationf(
					"no transformation found for %s in available transformation sets",
					g.Name)
			}
			if g.Set != "" && g.Set != group.Set {
				return errors.NewConfigurationf(
					"transformation %s belongs to set %s, not %s",
					g.Name, group.Set, g.Set)
			}
			for _, ordered := range l.order {
				if ordered == group {
					return errors.NewConfigurationf(
						"duplicated transformation group: %s", g.Name)
				}
			}
			l.order = append(l.order, group)
		}
	}
	return nil
}

// readSets loads and validates every declared transformation set document.
func (l *loader) readSets(names []string) error {
	for _, name := range names {
		data, err := l.readDocument(name + yamlExt)
		if err != nil {
			return err
		}
		if err := validateDocument(setSchema, data, name+yamlExt); err != nil {
			return err
		}
		var set rawSet
		if err := yaml.Unmarshal(data, &set); err != nil {
			return errors.NewConfigurationf(
				"transformation set %s cannot be decoded: %v", name, err)
		}
		if err := l.readTransformations(name, &set); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) readTransformations(setName string, set *rawSet) error {
	for _, t := range set.Transformations {
		group := &Group{Set: setName, Name: t.Name, Class: t.Class}
		switch t.Type {
		case "dependent":
			group.Type = GroupDependent
		case "independent":
			group.Type = GroupIndependent
		default:
			return errors.NewConfigurationf(
				"invalid group type %q for transformation %s", t.Type, t.Name)
		}
		switch t.Trigger {
		case "directive":
			group.Trigger = TriggerDirective
		case "translation_unit":
			group.Trigger = TriggerTranslationUnit
		default:
			return errors.NewConfigurationf(
				"invalid trigger type %q for transformation %s", t.Trigger, t.Name)
		}
		if group.Class == "" {
			return errors.NewConfigurationf(
				"transformation %s has no class", t.Name)
		}
		info, ok := l.opts.Classes(group.Class)
		if !ok {
			return errors.NewConfigurationf(
				"transformation class %s not available", group.Class)
		}
		if group.Trigger == TriggerTranslationUnit && info.Block {
			return errors.NewConfiguration(
				"translation unit trigger cannot be block transformation")
		}
		if _, exists := l.available[group.Name]; exists {
			return errors.NewConfigurationf(
				"transformation %s has name conflict", group.Name)
		}
		l.available[group.Name] = group
	}
	return nil
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.\d+)?$`)

// checkVersion rejects configuration documents whose declared version is
// lower than the translator version, compared on major.minor.
func checkVersion(configVersion string) error {
	configMajor, configMinor, err := majorMinor(configVersion)
	if err != nil {
		return err
	}
	engineMajor, engineMinor, err := majorMinor(claw.Version)
	if err != nil {
		return err
	}
	if configMajor < engineMajor ||
		(configMajor == engineMajor && configMinor < engineMinor) {
		return errors.NewConfigurationf(
			"configuration version is too small compared to translator version: >= %d.%d",
			engineMajor, engineMinor)
	}
	return nil
}

func majorMinor(version string) (int, int, error) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return 0, 0, errors.NewConfigurationf(
			"configuration version %q not well formatted", version)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return major, minor, nil
}

// Describe renders the loaded configuration for display.
func Describe(c *Configuration) string {
	out := fmt.Sprintf("Default accelerator directive: %s\nDefault target: %s\nTransformation order:\n",
		c.Directive(), c.Target())
	for i, g := range c.Groups() {
		out += fmt.Sprintf("  %2d) %-15s %-20s type:%-12s class:%s\n",
			i, g.Set, g.Name, g.Type, g.Class)
	}
	return out
}
