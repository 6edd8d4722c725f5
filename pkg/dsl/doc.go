/*
Package dsl provides a fluent Go builder for constructing scenario
scripts programmatically, as an alternative to YAML files. It is useful
for dynamically generated scenarios, embedded deployments, and tests
that want type-checked scripts with IDE completion.

Example usage:

	b := dsl.NewScenario("booking")

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

	registry, err := dsl.BuildRegistry(nil, b, triageBuilder)
	// ... pass registry to scenic.New(...)
*/
package dsl
