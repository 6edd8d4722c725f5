// Package cli holds the shared wiring behind the scenic commands:
// loading scripts and the lexicon, building the engine, and choosing
// the session store.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/framelab/scenic"
	"github.com/framelab/scenic/internal/metrics"
	"github.com/framelab/scenic/pkg/adapters/memory"
	"github.com/framelab/scenic/pkg/adapters/middleware"
	redisstore "github.com/framelab/scenic/pkg/adapters/redis"
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/lexicon"
	"github.com/framelab/scenic/pkg/observability"
	"github.com/framelab/scenic/pkg/ports"
	"github.com/framelab/scenic/pkg/script"
)

// EngineOptions collects the flags shared by run and serve.
type EngineOptions struct {
	ScriptsDir  string
	LexiconPath string
	MaxRetries  int
	Depth       int
	RedisAddr   string
	RedisTTL    time.Duration
	Metrics     bool
	// RedactPatterns are regexps of frame.field keys masked before the
	// state reaches the store.
	RedactPatterns []string
	// EncryptKey, when set, encrypts session state at rest. Must be
	// 32 bytes.
	EncryptKey []byte
	// Audit logs every engine lifecycle event through Logger.
	Audit  bool
	Logger *slog.Logger
}

// BuildEngine loads the scripts and lexicon and assembles the engine.
// The returned lexicon serves as the fallback tagger for transports.
func BuildEngine(opts EngineOptions) (*scenic.Engine, *lexicon.Static, error) {
	registry, err := script.LoadDir(opts.ScriptsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load scripts: %w", err)
	}

	lex, err := lexicon.Load(opts.LexiconPath)
	if err != nil {
		return nil, nil, err
	}

	cfg := domain.DefaultConfig()
	if opts.MaxRetries > 0 {
		cfg.MaxRetries = opts.MaxRetries
	}
	if opts.Depth > 0 {
		cfg.ClosureDepth = opts.Depth
	}

	engineOpts := []scenic.Option{
		scenic.WithConfig(cfg),
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, scenic.WithLogger(opts.Logger))
	}
	if opts.Metrics {
		m := metrics.New(prometheus.DefaultRegisterer)
		engineOpts = append(engineOpts, scenic.WithHooks(m.Hooks()))
	}
	if opts.Audit && opts.Logger != nil {
		stream := observability.NewStream(0)
		go observability.Log(opts.Logger, stream.Events())
		engineOpts = append(engineOpts, scenic.WithHooks(stream.Hooks()))
	}

	store, err := buildStore(opts)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		engineOpts = append(engineOpts, scenic.WithStore(store))
	}

	eng, err := scenic.New(registry, lex, engineOpts...)
	if err != nil {
		return nil, nil, err
	}
	return eng, lex, nil
}

// buildStore returns nil when the engine's default in-memory store
// suffices unwrapped.
func buildStore(opts EngineOptions) (ports.SessionStore, error) {
	var store ports.SessionStore
	if opts.RedisAddr != "" {
		store = redisstore.New(opts.RedisAddr, redisstore.WithTTL(opts.RedisTTL))
	}

	var mws []middleware.Middleware
	if len(opts.RedactPatterns) > 0 {
		redact, err := middleware.NewRedact(opts.RedactPatterns...)
		if err != nil {
			return nil, fmt.Errorf("redact patterns: %w", err)
		}
		mws = append(mws, redact)
	}
	if len(opts.EncryptKey) > 0 {
		encrypt, err := middleware.NewEncrypt(middleware.KeyConfig{ActiveKey: opts.EncryptKey})
		if err != nil {
			return nil, fmt.Errorf("session key: %w", err)
		}
		mws = append(mws, encrypt)
	}
	if len(mws) == 0 {
		return store, nil
	}
	if store == nil {
		store = memory.NewStore()
	}
	return middleware.Wrap(store, mws...), nil
}
