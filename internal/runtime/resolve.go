package runtime

import (
	"github.com/framelab/scenic/pkg/domain"
)

// Resolution is the outcome of a successful frame resolution: the
// selected response option and the completely filled instances of every
// frame it named.
type Resolution struct {
	Option    domain.ResponseOption
	Instances []*domain.Instance
}

// Resolve applies the matcher across the line's response options in
// declaration order and returns the first option whose frames all fill
// completely. The bool is false when no option is satisfied.
//
// Within one frame, fields claim disjoint token spans: a token consumed
// by an earlier field is invisible to later fields. A frame with any
// unfilled field is rejected whole; partial instances never escape.
func (e *Engine) resolve(scenario string, line *domain.Line, tokens []domain.Token) (*Resolution, bool) {
	for _, opt := range line.Responses {
		instances, ok := e.fillOption(scenario, opt, tokens)
		if ok {
			return &Resolution{Option: opt, Instances: instances}, true
		}
	}
	return nil, false
}

func (e *Engine) fillOption(scenario string, opt domain.ResponseOption, tokens []domain.Token) ([]*domain.Instance, bool) {
	instances := make([]*domain.Instance, 0, len(opt.Frames))
	for _, frameName := range opt.Frames {
		frame, ok := e.registry.Frame(scenario, frameName)
		if !ok {
			// Validated at load time; a miss here means a stale registry.
			return nil, false
		}
		inst, ok := e.fillFrame(frame, tokens)
		if !ok {
			return nil, false
		}
		instances = append(instances, inst)
	}
	return instances, true
}

// fillFrame matches every field of the frame against disjoint spans of
// the utterance.
func (e *Engine) fillFrame(frame *domain.Frame, tokens []domain.Token) (*domain.Instance, bool) {
	consumed := make([]bool, len(tokens))
	inst := domain.NewInstance(frame.Name)

	for _, spec := range frame.Fields {
		res := e.matcher.Match(tokens, consumed, spec)
		if !res.Matched {
			return nil, false
		}
		for i := res.Start; i < res.End; i++ {
			consumed[i] = true
		}
		value := domain.TokenSpan(tokens[res.Start:res.End]).Text()
		if value == "" {
			return nil, false
		}
		inst.Fields[spec.Name] = value
	}
	return inst, true
}
