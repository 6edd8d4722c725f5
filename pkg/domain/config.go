package domain

// Config carries the tunables the scenario scripts themselves do not
// specify. Values are explicit engine configuration, not inferred.
type Config struct {
	// MaxRetries is how many consecutive resolution failures on one
	// line are re-prompted before the session surfaces RetryExhausted.
	MaxRetries int

	// ClosureDepth bounds the hypernym closure walk through the
	// lexical resource, guaranteeing termination and bounded latency.
	ClosureDepth int

	// MaxStackDepth caps the defer stack, rejecting runaway defer
	// cycles as a script error instead of growing without bound.
	MaxStackDepth int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		ClosureDepth:  5,
		MaxStackDepth: 16,
	}
}

// Normalized fills zero fields with defaults so partial overrides stay
// usable.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.ClosureDepth <= 0 {
		c.ClosureDepth = def.ClosureDepth
	}
	if c.MaxStackDepth <= 0 {
		c.MaxStackDepth = def.MaxStackDepth
	}
	return c
}
