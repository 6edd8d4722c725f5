// Package script loads scenario scripts and shared frame sets from
// YAML, resolving every field spec into its tagged variant and
// validating cross-references at load time. A loaded Registry is
// immutable and shared by all sessions.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/framelab/scenic/pkg/domain"
)

// Registry owns every loaded scenario plus the globally shared frames.
type Registry struct {
	scenarios map[string]*domain.Scenario
	global    map[string]*domain.Frame
}

// NewRegistry builds a registry directly from domain values, validating
// the same invariants the file loader does. Intended for tests and
// embedded use.
func NewRegistry(scenarios []*domain.Scenario, global map[string]*domain.Frame) (*Registry, error) {
	r := &Registry{
		scenarios: make(map[string]*domain.Scenario),
		global:    make(map[string]*domain.Frame),
	}
	for name, f := range global {
		r.global[name] = f
	}
	var errs []error
	for _, sc := range scenarios {
		if _, dup := r.scenarios[sc.Name]; dup {
			errs = append(errs, domain.Scriptf(sc.Name, "duplicate scenario name"))
			continue
		}
		r.scenarios[sc.Name] = sc
	}
	errs = append(errs, r.validate()...)
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return r, nil
}

// LoadDir reads every *.yaml / *.yml file under dir. Documents with a
// name and lines become scenarios; documents carrying only frames merge
// into the global frame set.
func LoadDir(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid script directory %q", dir)
	}

	r := &Registry{
		scenarios: make(map[string]*domain.Scenario),
		global:    make(map[string]*domain.Frame),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read script directory: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		if err := r.add(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
		}
	}

	errs = append(errs, r.validate()...)
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return r, nil
}

// add decodes one document and files it as a scenario or a global
// frame set.
func (r *Registry) add(raw []byte) error {
	var head struct {
		Name  string    `yaml:"name"`
		Lines yaml.Node `yaml:"lines"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return domain.Scriptf("", "malformed YAML: %v", err)
	}

	// Frames-only document: merge into the shared set.
	if head.Name == "" && head.Lines.IsZero() {
		var doc struct {
			Frames []frameDoc `yaml:"frames"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return domain.Scriptf("", "malformed YAML: %v", err)
		}
		for _, fd := range doc.Frames {
			frame, err := parseFrame("", fd)
			if err != nil {
				return err
			}
			if _, dup := r.global[frame.Name]; dup {
				return domain.Scriptf("", "duplicate global frame %q", frame.Name)
			}
			r.global[frame.Name] = frame
		}
		return nil
	}

	sc, err := parseScenario(raw)
	if err != nil {
		return err
	}
	if sc.Name == "" {
		return domain.Scriptf("", "scenario missing a name")
	}
	if _, dup := r.scenarios[sc.Name]; dup {
		return domain.Scriptf(sc.Name, "duplicate scenario name")
	}
	r.scenarios[sc.Name] = sc
	return nil
}

// Scenario fetches a scenario by name.
func (r *Registry) Scenario(name string) (*domain.Scenario, bool) {
	sc, ok := r.scenarios[strings.ToLower(name)]
	return sc, ok
}

// Frame resolves a frame name from inside a scenario: the scenario's
// local set shadows the global set.
func (r *Registry) Frame(scenario, name string) (*domain.Frame, bool) {
	if sc, ok := r.scenarios[scenario]; ok {
		if f := sc.Frame(name); f != nil {
			return f, true
		}
	}
	f, ok := r.global[name]
	return f, ok
}

// Names returns the loaded scenario names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scenarios))
	for n := range r.scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
