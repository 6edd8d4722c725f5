package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/script"
)

func bookingBuilder() *Builder {
	b := NewScenario("Booking")

	b.Line("Who am I speaking with?").
		Expect("caller").Continue()

	b.Line("What do you need, $caller.name?").
		Expect("urgent").Defer("triage").Transfer().
		Expect("visit").Continue()

	b.Line("Noted your $visit.reason. Goodbye.")

	b.Frame("caller").
		Field("name").Lexical("NNP").AnySense()
	b.Frame("urgent").
		Field("problem").Senses("distress.n.01")
	b.Frame("visit").
		Field("reason").Senses("visit.n.01")

	return b
}

func TestBuilder_Build(t *testing.T) {
	sc, err := bookingBuilder().Build()
	require.NoError(t, err)

	assert.Equal(t, "booking", sc.Name)
	require.Len(t, sc.Lines, 3)

	// First line: one continue option.
	require.Len(t, sc.Lines[0].Responses, 1)
	assert.Equal(t, []string{"caller"}, sc.Lines[0].Responses[0].Frames)
	assert.Equal(t, domain.ActionContinue, sc.Lines[0].Responses[0].Action.Kind)

	// Second line: transfer-defer then plain continue, in order.
	require.Len(t, sc.Lines[1].Responses, 2)
	first := sc.Lines[1].Responses[0]
	assert.Equal(t, domain.ActionDefer, first.Action.Kind)
	assert.Equal(t, "triage", first.Action.Target)
	assert.True(t, first.Transfer)
	assert.False(t, sc.Lines[1].Responses[1].Transfer)

	// Last line auto-advances.
	assert.Empty(t, sc.Lines[2].Responses)

	caller := sc.Frame("caller")
	require.NotNil(t, caller)
	name := caller.Field("name")
	require.NotNil(t, name)
	assert.Equal(t, domain.FieldAny, name.Kind)
	assert.True(t, name.Lexical["NNP"])
}

func TestBuilder_PatternAnchored(t *testing.T) {
	b := NewScenario("a")
	b.Line("number?").Expect("contact").Continue()
	b.Frame("contact").
		Field("phone").Pattern(`\d{3}-\d{4}`)

	sc, err := b.Build()
	require.NoError(t, err)

	phone := sc.Frame("contact").Field("phone")
	assert.Equal(t, domain.FieldPattern, phone.Kind)
	assert.True(t, phone.Pattern.MatchString("555-1234"))
	assert.False(t, phone.Pattern.MatchString("x555-1234"))
}

func TestBuilder_CollectsEveryDefect(t *testing.T) {
	b := NewScenario("")
	b.Line("q").Expect().Defer("")
	b.Frame("f").
		Field("x"). // variant never set
		Field("x")  // duplicate
	b.Frame("f") // duplicate frame, no fields

	_, err := b.Build()
	var agg *script.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.GreaterOrEqual(t, len(agg.Errors), 5)
}

func TestBuilder_VariantSetTwice(t *testing.T) {
	b := NewScenario("a")
	b.Frame("f").
		Field("x").Senses("visit.n.01").AnySense()

	_, err := b.Build()
	var agg *script.AggregateError
	require.ErrorAs(t, err, &agg)
}

func TestBuilder_BadPattern(t *testing.T) {
	b := NewScenario("a")
	b.Frame("f").
		Field("x").Pattern("(unclosed")

	_, err := b.Build()
	require.Error(t, err)
}

func TestBuildRegistry(t *testing.T) {
	triage := NewScenario("triage")
	triage.Line("Connecting you to a nurse now.")

	reg, err := BuildRegistry(nil, bookingBuilder(), triage)
	require.NoError(t, err)
	assert.Equal(t, []string{"booking", "triage"}, reg.Names())

	f, ok := reg.Frame("booking", "visit")
	require.True(t, ok)
	assert.NotNil(t, f.Field("reason"))
}

func TestBuildRegistry_ValidatesCrossReferences(t *testing.T) {
	b := NewScenario("lonely")
	b.Line("q").Expect("nobody").Defer("nowhere")
	b.Line("bye $ghost.name")

	_, err := BuildRegistry(nil, b)
	var agg *script.AggregateError
	require.ErrorAs(t, err, &agg)
	// Unknown response frame, unknown defer target, dangling template.
	assert.Len(t, agg.Errors, 3)
}

func TestBuildRegistry_GlobalFrames(t *testing.T) {
	b := NewScenario("a")
	b.Line("done?").Expect("done_f").Continue()

	global := map[string]*domain.Frame{
		"done_f": {Name: "done_f", Fields: []*domain.FieldSpec{{
			Name:   "answer",
			Kind:   domain.FieldSemantic,
			Senses: map[domain.Sense]bool{"affirmation.n.01": true},
		}}},
	}
	reg, err := BuildRegistry(global, b)
	require.NoError(t, err)
	_, ok := reg.Frame("a", "done_f")
	assert.True(t, ok)
}
