package script

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/framelab/scenic/pkg/domain"
)

// Parse decodes one YAML scenario document into domain form without
// registry-level validation. Callers assembling a registry by hand
// combine it with NewRegistry, which validates cross-references.
func Parse(raw []byte) (*domain.Scenario, error) {
	return parseScenario(raw)
}

// parseScenario decodes one YAML scenario document into domain form.
// Field specs are resolved to their tagged variant here, once.
func parseScenario(raw []byte) (*domain.Scenario, error) {
	var doc scenarioDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, domain.Scriptf("", "malformed YAML: %v", err)
	}

	name := strings.ToLower(strings.TrimSpace(doc.Name))
	sc := &domain.Scenario{
		Name:   name,
		Frames: make(map[string]*domain.Frame),
	}

	for _, fd := range doc.Frames {
		frame, err := parseFrame(name, fd)
		if err != nil {
			return nil, err
		}
		if _, dup := sc.Frames[frame.Name]; dup {
			return nil, domain.Scriptf(name, "duplicate frame %q", frame.Name)
		}
		sc.Frames[frame.Name] = frame
	}

	for i, ld := range doc.Lines {
		line := domain.Line{Text: strings.TrimSpace(ld.Text)}
		for _, rd := range ld.Responses {
			opt, err := parseResponse(name, i, rd)
			if err != nil {
				return nil, err
			}
			line.Responses = append(line.Responses, opt)
		}
		sc.Lines = append(sc.Lines, line)
	}

	return sc, nil
}

func parseResponse(scenario string, line int, rd responseDoc) (domain.ResponseOption, error) {
	var opt domain.ResponseOption

	for _, f := range strings.Split(rd.Frame, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			opt.Frames = append(opt.Frames, f)
		}
	}
	if len(opt.Frames) == 0 {
		return opt, domain.Scriptf(scenario, "line %d: response option names no frame", line)
	}

	action, err := parseAction(scenario, line, rd.Action)
	if err != nil {
		return opt, err
	}
	opt.Action = action
	opt.Transfer = rd.Transfer
	return opt, nil
}

func parseAction(scenario string, line int, raw string) (domain.Action, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return domain.Action{Kind: domain.ActionNone}, nil
	case raw == domain.ActionContinue:
		return domain.Action{Kind: domain.ActionContinue}, nil
	case strings.HasPrefix(raw, domain.ActionDefer+":"):
		target := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, domain.ActionDefer+":")))
		if target == "" {
			return domain.Action{}, domain.Scriptf(scenario, "line %d: defer action missing target", line)
		}
		return domain.Action{Kind: domain.ActionDefer, Target: target}, nil
	default:
		return domain.Action{}, domain.Scriptf(scenario, "line %d: unknown action %q", line, raw)
	}
}

func parseFrame(scenario string, fd frameDoc) (*domain.Frame, error) {
	name := strings.ToLower(strings.TrimSpace(fd.Name))
	if name == "" {
		return nil, domain.Scriptf(scenario, "frame with empty name")
	}
	frame := &domain.Frame{Name: name, Description: strings.TrimSpace(fd.Description)}

	if len(fd.Fields) == 0 {
		return nil, domain.Scriptf(scenario, "frame %q declares no fields", name)
	}
	seen := make(map[string]bool)
	for _, fld := range fd.Fields {
		spec, err := parseField(scenario, name, fld)
		if err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, domain.Scriptf(scenario, "frame %q: duplicate field %q", name, spec.Name)
		}
		seen[spec.Name] = true
		frame.Fields = append(frame.Fields, spec)
	}
	return frame, nil
}

// parseField resolves the optional attributes of a field spec into the
// pattern / semantic / any variant.
func parseField(scenario, frame string, fd fieldDoc) (*domain.FieldSpec, error) {
	name := strings.ToLower(strings.TrimSpace(fd.Name))
	if name == "" {
		return nil, domain.Scriptf(scenario, "frame %q: field with empty name", frame)
	}
	spec := &domain.FieldSpec{Name: name}

	if !fd.Lexical.wildcard() {
		for _, tag := range fd.Lexical {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if spec.Lexical == nil {
				spec.Lexical = make(map[string]bool)
			}
			spec.Lexical[tag] = true
		}
	}

	switch {
	case fd.Pattern != "":
		// Full-string match: patterns describe rigid formats, so a
		// partial hit inside the span must not count.
		re, err := regexp.Compile("^(?:" + fd.Pattern + ")$")
		if err != nil {
			return nil, domain.Scriptf(scenario, "frame %q field %q: bad pattern: %v", frame, name, err)
		}
		spec.Kind = domain.FieldPattern
		spec.Pattern = re
	case fd.Senses.wildcard():
		spec.Kind = domain.FieldAny
	case len(fd.Senses) > 0:
		spec.Kind = domain.FieldSemantic
		spec.Senses = make(map[domain.Sense]bool, len(fd.Senses))
		for _, s := range fd.Senses {
			s = strings.TrimSpace(s)
			if s != "" {
				spec.Senses[domain.Sense(s)] = true
			}
		}
	default:
		return nil, domain.Scriptf(scenario, "frame %q field %q: needs senses or a pattern", frame, name)
	}

	return spec, nil
}
