package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/script"
)

const resolveScenario = `
name: intake
lines:
  - text: "What brings you in?"
    responses:
      - frame: emergency
        action: continue
      - frame: broad
        action: continue
frames:
  - name: emergency
    fields:
      - name: motivation
        lexical: "*"
        senses: [distress.n.01]
      - name: problem
        lexical: [NN]
        senses: [body_part.n.01]
  - name: broad
    fields:
      - name: anything
        lexical: "*"
        senses: "*"
  - name: greedy
    fields:
      - name: first
        lexical: "*"
        senses: [distress.n.01]
      - name: second
        lexical: "*"
        senses: [distress.n.01]
`

func resolveEngine(t *testing.T) *Engine {
	t.Helper()
	sc, err := script.Parse([]byte(resolveScenario))
	require.NoError(t, err)
	reg, err := script.NewRegistry([]*domain.Scenario{sc}, nil)
	require.NoError(t, err)
	return NewEngine(reg, clinicLexicon())
}

func TestResolve_DeclarationOrderWins(t *testing.T) {
	e := resolveEngine(t)
	sc, _ := e.Registry().Scenario("intake")
	line := &sc.Lines[0]

	// "chest pain" satisfies both emergency and broad; emergency is
	// declared first.
	res, ok := e.resolve("intake", line, tokens("chest", "pain"))
	require.True(t, ok)
	require.Len(t, res.Instances, 1)
	assert.Equal(t, "emergency", res.Instances[0].Frame)
	assert.Equal(t, "pain", res.Instances[0].Fields["motivation"])
	assert.Equal(t, "chest", res.Instances[0].Fields["problem"])
}

func TestResolve_PartialFillRejectsFrame(t *testing.T) {
	e := resolveEngine(t)
	sc, _ := e.Registry().Scenario("intake")
	line := &sc.Lines[0]

	// "pain" fills emergency.motivation but leaves problem empty, so
	// the whole frame is rejected and the broad fallback matches.
	res, ok := e.resolve("intake", line, tokens("pain"))
	require.True(t, ok)
	require.Len(t, res.Instances, 1)
	assert.Equal(t, "broad", res.Instances[0].Frame)
}

func TestResolve_NoMatch(t *testing.T) {
	e := resolveEngine(t)
	sc, _ := e.Registry().Scenario("intake")
	line := &sc.Lines[0]

	_, ok := e.resolve("intake", line, nil)
	assert.False(t, ok, "an empty utterance satisfies nothing")
}

func TestResolve_DisjointSpans(t *testing.T) {
	e := resolveEngine(t)
	frame, ok := e.Registry().Frame("intake", "greedy")
	require.True(t, ok)

	// Both fields want a distress sense, but only one token offers it;
	// the token consumed by the first field is invisible to the second.
	_, filled := e.fillFrame(frame, tokens("pain"))
	assert.False(t, filled)

	inst, filled := e.fillFrame(frame, tokens("pain", "ache"))
	require.True(t, filled)
	assert.Equal(t, "pain", inst.Fields["first"])
	assert.Equal(t, "ache", inst.Fields["second"])
}

func TestResolve_CompleteInstances(t *testing.T) {
	e := resolveEngine(t)
	sc, _ := e.Registry().Scenario("intake")
	line := &sc.Lines[0]

	res, ok := e.resolve("intake", line, tokens("chest", "pain"))
	require.True(t, ok)
	for _, inst := range res.Instances {
		frame, _ := e.Registry().Frame("intake", inst.Frame)
		for _, spec := range frame.Fields {
			assert.NotEmpty(t, inst.Fields[spec.Name], "field %s must be filled", spec.Name)
		}
	}
}
