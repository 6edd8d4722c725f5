package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/scenic/pkg/domain"
)

const greetScript = `
name: greet
lines:
  - text: "Who is this?"
    responses:
      - frame: caller
        action: continue
  - text: "Hello, $caller.name."
    responses:
      - frame: done_f
        action: "defer:farewell"
frames:
  - name: caller
    fields:
      - name: name
        lexical: [NNP]
        senses: "*"
`

const farewellScript = `
name: farewell
lines:
  - text: "Bye, $caller.name."
`

const sharedFrames = `
frames:
  - name: done_f
    fields:
      - name: answer
        senses: [affirmation.n.01]
`

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"greet.yaml":    greetScript,
		"farewell.yml":  farewellScript,
		"frames.yaml":   sharedFrames,
		"notes.txt":     "not a script",
		"readme.mdtext": "ignored",
	})

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"farewell", "greet"}, reg.Names())

	// Global frames resolve from any scenario.
	f, ok := reg.Frame("farewell", "done_f")
	require.True(t, ok)
	assert.Equal(t, "done_f", f.Name)

	// Local frames only resolve where declared.
	_, ok = reg.Frame("farewell", "caller")
	assert.False(t, ok)
	_, ok = reg.Frame("greet", "caller")
	assert.True(t, ok)
}

func TestLoadDir_InvalidDir(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadDir_CollectsEveryDefect(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"broken.yaml": `
name: broken
lines:
  - text: "Hi $ghost.name"
    responses:
      - frame: nobody
        action: "defer:nowhere"
`,
	})

	_, err := LoadDir(dir)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	// Dangling template, unknown response frame, unknown defer target.
	assert.Len(t, agg.Errors, 3)
}

func TestLoadDir_DuplicateScenario(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"a.yaml": "name: twin\nlines:\n  - text: \"a\"\n",
		"b.yaml": "name: twin\nlines:\n  - text: \"b\"\n",
	})
	_, err := LoadDir(dir)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
}

func TestNewRegistry_ValidatesTemplateFields(t *testing.T) {
	sc, err := Parse([]byte(`
name: a
lines:
  - text: "Hello $caller.surname"
frames:
  - name: caller
    fields:
      - name: name
        senses: "*"
`))
	require.NoError(t, err)

	_, err = NewRegistry([]*domain.Scenario{sc}, nil)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	var scriptErr *domain.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Contains(t, scriptErr.Detail, "surname")
}

func TestNewRegistry_LocalShadowsGlobal(t *testing.T) {
	sc, err := Parse([]byte(`
name: a
lines:
  - text: "q"
    responses:
      - frame: done_f
        action: continue
frames:
  - name: done_f
    fields:
      - name: local_answer
        senses: "*"
`))
	require.NoError(t, err)

	global := map[string]*domain.Frame{
		"done_f": {Name: "done_f", Fields: []*domain.FieldSpec{{
			Name:   "answer",
			Kind:   domain.FieldSemantic,
			Senses: map[domain.Sense]bool{"affirmation.n.01": true},
		}}},
	}
	reg, err := NewRegistry([]*domain.Scenario{sc}, global)
	require.NoError(t, err)

	f, ok := reg.Frame("a", "done_f")
	require.True(t, ok)
	assert.NotNil(t, f.Field("local_answer"))
	assert.Nil(t, f.Field("answer"))
}

func TestExpandTemplate(t *testing.T) {
	values := map[string]string{
		"caller.name": "John",
		"visit.day":   "Monday",
	}
	lookup := func(frame, field string) (string, bool) {
		v, ok := values[frame+"."+field]
		return v, ok
	}

	out, _, ok := ExpandTemplate("See you $visit.day, $caller.name.", lookup)
	require.True(t, ok)
	assert.Equal(t, "See you Monday, John.", out)

	_, missing, ok := ExpandTemplate("Hi $caller.title", lookup)
	assert.False(t, ok)
	assert.Equal(t, [2]string{"caller", "title"}, missing)
}
