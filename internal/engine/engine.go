package engine

import (
	stderrors "errors"
	"fmt"

	"github.com/tliron/commonlog"

	"claw/internal/config"
	"claw/internal/directive"
	"claw/internal/errors"
	"claw/internal/xir"
)

// Translator applies the configured transformation pipeline to one program
// document. The configuration is an explicit dependency; a translator holds
// no global state and may be reused across documents.
type Translator struct {
	cfg      *config.Configuration
	registry Registry
	log      commonlog.Logger
}

// NewTranslator builds a translator over a loaded configuration and a class
// registry. The registry must contain every class the configuration names.
func NewTranslator(cfg *config.Configuration, registry Registry) *Translator {
	return &Translator{
		cfg:      cfg,
		registry: registry,
		log:      commonlog.GetLogger("claw.engine"),
	}
}

// Translate runs the pipeline: scan, analyze, pair and apply. Parse and
// analysis failures are recorded on the program and the pipeline continues;
// a transformation failure aborts with the error, leaving the document
// partially transformed.
func (t *Translator) Translate(prog *xir.Program) error {
	tr := NewTransformer(t.cfg)
	if err := t.scan(prog, tr); err != nil {
		return err
	}
	for _, group := range tr.groups {
		t.analyzeGroup(prog, tr, group)
	}
	for _, group := range tr.groups {
		// Late additions from earlier groups are analyzed here.
		t.analyzeGroup(prog, tr, group)
		group.sortQueue()

		var err error
		if group.cfg.Type == config.GroupDependent {
			err = t.applyDependent(prog, tr, group)
		} else {
			err = t.applyIndependent(prog, tr, group)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// scan walks the document's pragmas, parses directives and enqueues the
// configured transformations. Translation-unit-triggered groups are
// instantiated once per document.
func (t *Translator) scan(prog *xir.Program, tr *Transformer) error {
	for _, pragma := range prog.Pragmas() {
		text, ok := directive.StripPrefix(pragma.Value())
		if !ok {
			continue
		}
		dir, err := directive.Parse(text, pragma.LineNo())
		if err != nil {
			t.record(prog, err)
			continue
		}
		if dir.End {
			// End delimiters are consumed by their block's analysis.
			continue
		}
		group := t.cfg.Group(dir.Kind.String())
		if group == nil {
			prog.AddWarning(fmt.Sprintf(
				"no transformation group handles directive %q", dir.Kind),
				pragma.LineNo())
			continue
		}
		if group.Trigger != config.TriggerDirective {
			continue
		}
		class, ok := t.registry.Resolve(group.Class)
		if !ok {
			return errors.NewInternalf(
				"transformation class %s vanished from the registry", group.Class)
		}
		instance, err := class.New(pragma, dir)
		if err != nil {
			t.record(prog, err)
			continue
		}
		t.log.Debugf("queued %s from line %d", group.Name, pragma.LineNo())
		if err := tr.AddTransformation(group.Name, instance); err != nil {
			return err
		}
	}

	for _, group := range t.cfg.Groups() {
		if group.Trigger != config.TriggerTranslationUnit {
			continue
		}
		class, ok := t.registry.Resolve(group.Class)
		if !ok {
			return errors.NewInternalf(
				"transformation class %s vanished from the registry", group.Class)
		}
		instance, err := class.New(nil, nil)
		if err != nil {
			t.record(prog, err)
			continue
		}
		if err := tr.AddTransformation(group.Name, instance); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) analyzeGroup(prog *xir.Program, tr *Transformer, group *transformationGroup) {
	for _, instance := range group.queue {
		if instance.State() != StatePending {
			continue
		}
		if instance.Analyze(prog, tr) {
			instance.SetState(StateAnalyzed)
		} else {
			instance.SetState(StateDiscarded)
			t.log.Debugf("discarded %s from line %d after analysis",
				group.cfg.Name, instance.StartLine())
		}
	}
}

func (t *Translator) applyIndependent(prog *xir.Program, tr *Transformer, group *transformationGroup) error {
	for _, instance := range group.queue {
		if instance.State() != StateAnalyzed {
			continue
		}
		t.log.Debugf("applying %s from line %d", group.cfg.Name, instance.StartLine())
		if err := instance.Transform(prog, tr, nil); err != nil {
			return t.fatal(prog, err)
		}
		instance.SetState(StateTransformed)
	}
	return nil
}

// applyDependent pairs instances of a dependent class: each analyzed
// instance absorbs every later compatible instance, so chains of matching
// instances collapse into the first one. Instances left without a
// counterpart are discarded with a warning.
func (t *Translator) applyDependent(prog *xir.Program, tr *Transformer, group *transformationGroup) error {
	for i := 0; i < len(group.queue); i++ {
		master := group.queue[i]
		if master.State() != StateAnalyzed {
			continue
		}
		absorbed := false
		for j := i + 1; j < len(group.queue); j++ {
			other := group.queue[j]
			if other.State() != StateAnalyzed {
				continue
			}
			if !master.CanBeTransformedWith(prog, other) {
				continue
			}
			t.log.Debugf("applying %s pair from lines %d and %d",
				group.cfg.Name, master.StartLine(), other.StartLine())
			if err := master.Transform(prog, tr, other); err != nil {
				return t.fatal(prog, err)
			}
			other.SetState(StateTransformed)
			absorbed = true
		}
		if absorbed {
			master.SetState(StateTransformed)
		} else {
			master.SetState(StateDiscarded)
			prog.AddWarning(fmt.Sprintf(
				"%s transformation has no matching counterpart", group.cfg.Name),
				master.StartLine())
		}
	}
	return nil
}

// record routes a recoverable error to the program's diagnostics.
func (t *Translator) record(prog *xir.Program, err error) {
	var terr *errors.TranslationError
	if stderrors.As(err, &terr) {
		prog.AddError(terr.Message, terr.Line)
		return
	}
	prog.AddError(err.Error(), 0)
}

// fatal records the error and surfaces it to abort the pipeline.
func (t *Translator) fatal(prog *xir.Program, err error) error {
	var terr *errors.TranslationError
	if stderrors.As(err, &terr) {
		prog.AddError(terr.Message, terr.Line)
	}
	return err
}
