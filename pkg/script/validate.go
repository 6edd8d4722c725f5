package script

import (
	"regexp"

	"github.com/framelab/scenic/pkg/domain"
)

// templateRef matches $frame.field placeholders in line text.
var templateRef = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z_][a-zA-Z0-9_]*)`)

// validate runs the cross-reference checks that need the whole registry:
// dangling template references, unknown response frames, and unknown
// defer targets. Returns every defect found.
func (r *Registry) validate() []error {
	var errs []error

	// A template may read frames filled by a previously completed
	// scenario, so references resolve against every known frame, not
	// just the enclosing scenario's set.
	known := make(map[string]*domain.Frame)
	for name, f := range r.global {
		known[name] = f
	}
	for _, sc := range r.scenarios {
		for name, f := range sc.Frames {
			// Local shadowing across scenarios is tolerated here; exact
			// resolution happens per-scenario at run time.
			known[name] = f
		}
	}

	for _, sc := range r.scenarios {
		for i, line := range sc.Lines {
			for _, m := range templateRef.FindAllStringSubmatch(line.Text, -1) {
				frameName, fieldName := m[1], m[2]
				frame, ok := known[frameName]
				if !ok {
					errs = append(errs, domain.Scriptf(sc.Name, "line %d references undefined frame %q", i, frameName))
					continue
				}
				if frame.Field(fieldName) == nil {
					errs = append(errs, domain.Scriptf(sc.Name, "line %d references undefined field %q of frame %q", i, fieldName, frameName))
				}
			}

			for _, opt := range line.Responses {
				for _, frameName := range opt.Frames {
					if _, ok := r.Frame(sc.Name, frameName); !ok {
						errs = append(errs, domain.Scriptf(sc.Name, "line %d expects undefined frame %q", i, frameName))
					}
				}
				if opt.Action.Kind == domain.ActionDefer {
					if _, ok := r.scenarios[opt.Action.Target]; !ok {
						errs = append(errs, domain.Scriptf(sc.Name, "line %d defers to unknown scenario %q", i, opt.Action.Target))
					}
				}
			}
		}
	}

	return errs
}

// TemplateRefs extracts the (frame, field) pairs referenced by a line
// template, in order of appearance.
func TemplateRefs(text string) [][2]string {
	var out [][2]string
	for _, m := range templateRef.FindAllStringSubmatch(text, -1) {
		out = append(out, [2]string{m[1], m[2]})
	}
	return out
}

// ExpandTemplate replaces each $frame.field placeholder with the value
// the lookup returns. The first unresolvable reference stops expansion
// and is reported to the caller.
func ExpandTemplate(text string, lookup func(frame, field string) (string, bool)) (string, [2]string, bool) {
	var missing [2]string
	failed := false
	out := templateRef.ReplaceAllStringFunc(text, func(ref string) string {
		if failed {
			return ref
		}
		m := templateRef.FindStringSubmatch(ref)
		value, ok := lookup(m[1], m[2])
		if !ok {
			missing = [2]string{m[1], m[2]}
			failed = true
			return ref
		}
		return value
	})
	if failed {
		return "", missing, false
	}
	return out, missing, true
}
