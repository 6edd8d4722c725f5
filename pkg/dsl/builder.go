package dsl

import (
	"regexp"
	"strings"

	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/script"
)

// Builder accumulates the lines and frames of one scenario. Mistakes
// are collected rather than returned from every chained call; Build
// reports all of them at once.
type Builder struct {
	name   string
	lines  []domain.Line
	frames []*domain.Frame
	errs   []error
}

// NewScenario starts a builder for the named scenario. Names are
// case-insensitive, matching the YAML loader.
func NewScenario(name string) *Builder {
	b := &Builder{name: strings.ToLower(strings.TrimSpace(name))}
	if b.name == "" {
		b.errs = append(b.errs, domain.Scriptf("", "scenario missing a name"))
	}
	return b
}

// Line appends a line the bot speaks. A line with no Expect options
// auto-advances.
func (b *Builder) Line(text string) *LineBuilder {
	b.lines = append(b.lines, domain.Line{Text: strings.TrimSpace(text)})
	return &LineBuilder{b: b, idx: len(b.lines) - 1}
}

// Frame declares a frame local to this scenario.
func (b *Builder) Frame(name string) *FrameBuilder {
	frame := &domain.Frame{Name: strings.ToLower(strings.TrimSpace(name))}
	if frame.Name == "" {
		b.errs = append(b.errs, domain.Scriptf(b.name, "frame with empty name"))
	}
	b.frames = append(b.frames, frame)
	return &FrameBuilder{b: b, frame: frame}
}

// Build compiles the scenario, reporting every accumulated defect.
// Cross-references (defer targets, response frames, template fields)
// are checked later, when the scenario joins a registry.
func (b *Builder) Build() (*domain.Scenario, error) {
	sc := &domain.Scenario{
		Name:   b.name,
		Lines:  b.lines,
		Frames: make(map[string]*domain.Frame, len(b.frames)),
	}
	errs := b.errs
	for _, frame := range b.frames {
		if _, dup := sc.Frames[frame.Name]; dup {
			errs = append(errs, domain.Scriptf(b.name, "duplicate frame %q", frame.Name))
			continue
		}
		if len(frame.Fields) == 0 {
			errs = append(errs, domain.Scriptf(b.name, "frame %q declares no fields", frame.Name))
		}
		for _, spec := range frame.Fields {
			if spec.Kind == "" {
				errs = append(errs, domain.Scriptf(b.name,
					"frame %q field %q: needs senses or a pattern", frame.Name, spec.Name))
			}
		}
		sc.Frames[frame.Name] = frame
	}
	if len(errs) > 0 {
		return nil, &script.AggregateError{Errors: errs}
	}
	return sc, nil
}

// BuildRegistry compiles every builder and assembles a validated
// registry, the same way the YAML loader does for a script directory.
func BuildRegistry(global map[string]*domain.Frame, builders ...*Builder) (*script.Registry, error) {
	scenarios := make([]*domain.Scenario, 0, len(builders))
	var errs []error
	for _, b := range builders {
		sc, err := b.Build()
		if err != nil {
			if agg, ok := err.(*script.AggregateError); ok {
				errs = append(errs, agg.Errors...)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		scenarios = append(scenarios, sc)
	}
	if len(errs) > 0 {
		return nil, &script.AggregateError{Errors: errs}
	}
	return script.NewRegistry(scenarios, global)
}

// LineBuilder configures the response options of one line.
type LineBuilder struct {
	b   *Builder
	idx int
}

// Expect adds a response option naming the frames an utterance must
// fill, in declaration order. The option's action defaults to
// advancing in place.
func (l *LineBuilder) Expect(frames ...string) *OptionBuilder {
	opt := domain.ResponseOption{Action: domain.Action{Kind: domain.ActionNone}}
	for _, f := range frames {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			opt.Frames = append(opt.Frames, f)
		}
	}
	if len(opt.Frames) == 0 {
		l.b.errs = append(l.b.errs, domain.Scriptf(l.b.name, "line %d: response option names no frame", l.idx))
	}
	line := &l.b.lines[l.idx]
	line.Responses = append(line.Responses, opt)
	return &OptionBuilder{line: l, opt: len(line.Responses) - 1}
}

// OptionBuilder configures the action of one response option.
type OptionBuilder struct {
	line *LineBuilder
	opt  int
}

func (o *OptionBuilder) option() *domain.ResponseOption {
	return &o.line.b.lines[o.line.idx].Responses[o.opt]
}

// Continue makes the option advance to the next line explicitly.
func (o *OptionBuilder) Continue() *OptionBuilder {
	o.option().Action = domain.Action{Kind: domain.ActionContinue}
	return o
}

// Defer makes the option suspend this scenario and run the target.
func (o *OptionBuilder) Defer(target string) *OptionBuilder {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		o.line.b.errs = append(o.line.b.errs,
			domain.Scriptf(o.line.b.name, "line %d: defer action missing target", o.line.idx))
	}
	o.option().Action = domain.Action{Kind: domain.ActionDefer, Target: target}
	return o
}

// Transfer marks the option as a hand-off: the stack is cleared and
// the session ends transferred once the current scenario finishes.
func (o *OptionBuilder) Transfer() *OptionBuilder {
	o.option().Transfer = true
	return o
}

// Expect adds a sibling option on the same line.
func (o *OptionBuilder) Expect(frames ...string) *OptionBuilder {
	return o.line.Expect(frames...)
}

// FrameBuilder configures the fields of one frame.
type FrameBuilder struct {
	b     *Builder
	frame *domain.Frame
}

// Field adds a field slot to the frame. Exactly one of Senses,
// AnySense, or Pattern must follow.
func (f *FrameBuilder) Field(name string) *FieldBuilder {
	spec := &domain.FieldSpec{Name: strings.ToLower(strings.TrimSpace(name))}
	if spec.Name == "" {
		f.b.errs = append(f.b.errs, domain.Scriptf(f.b.name, "frame %q: field with empty name", f.frame.Name))
	}
	if f.frame.Field(spec.Name) != nil {
		f.b.errs = append(f.b.errs, domain.Scriptf(f.b.name, "frame %q: duplicate field %q", f.frame.Name, spec.Name))
	}
	f.frame.Fields = append(f.frame.Fields, spec)
	return &FieldBuilder{frame: f, spec: spec}
}

// FieldBuilder configures one field spec.
type FieldBuilder struct {
	frame *FrameBuilder
	spec  *domain.FieldSpec
}

// Lexical restricts the field to the given part-of-speech tags.
func (f *FieldBuilder) Lexical(tags ...string) *FieldBuilder {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if f.spec.Lexical == nil {
			f.spec.Lexical = make(map[string]bool)
		}
		f.spec.Lexical[tag] = true
	}
	return f
}

// Senses makes the field semantic with the given seed senses.
func (f *FieldBuilder) Senses(seeds ...string) *FieldBuilder {
	f.requireUnset()
	f.spec.Kind = domain.FieldSemantic
	f.spec.Senses = make(map[domain.Sense]bool, len(seeds))
	for _, s := range seeds {
		s = strings.TrimSpace(s)
		if s != "" {
			f.spec.Senses[domain.Sense(s)] = true
		}
	}
	return f
}

// AnySense accepts any token passing the lexical filter.
func (f *FieldBuilder) AnySense() *FieldBuilder {
	f.requireUnset()
	f.spec.Kind = domain.FieldAny
	return f
}

// Pattern makes the field match a rigid text format. The expression is
// anchored to cover the whole token span, as in the YAML loader.
func (f *FieldBuilder) Pattern(expr string) *FieldBuilder {
	f.requireUnset()
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		f.frame.b.errs = append(f.frame.b.errs,
			domain.Scriptf(f.frame.b.name, "frame %q field %q: bad pattern: %v", f.frame.frame.Name, f.spec.Name, err))
		return f
	}
	f.spec.Kind = domain.FieldPattern
	f.spec.Pattern = re
	return f
}

// Field adds a sibling field on the same frame.
func (f *FieldBuilder) Field(name string) *FieldBuilder {
	return f.frame.Field(name)
}

func (f *FieldBuilder) requireUnset() {
	if f.spec.Kind != "" {
		f.frame.b.errs = append(f.frame.b.errs,
			domain.Scriptf(f.frame.b.name, "frame %q field %q: variant set twice", f.frame.frame.Name, f.spec.Name))
	}
}
