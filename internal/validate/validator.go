package validate

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Validator is the rule-validation capability. Implementations: the
// external tool and the structural fallback, selected at construction time.
type Validator interface {
	// Validate checks invoice XML against the business rules. It returns
	// an error only for infrastructure failures; rule violations are
	// findings inside the Result.
	Validate(ctx context.Context, xmlData []byte) (*Result, error)

	// Name identifies the implementation.
	Name() string
}

// Option configures validator construction.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger; zap.NewNop() by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

var toolUnavailableOnce sync.Once

// New probes the external tool and returns the richest available validator:
// the subprocess-backed one when the tool is runnable, otherwise the
// structural fallback. Unavailability is logged once per process lifetime.
func New(cfg ToolConfig, opts ...Option) Validator {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	if javaPath, ok := probeTool(cfg); ok {
		return newToolValidator(javaPath, cfg, o.logger)
	}

	toolUnavailableOnce.Do(func() {
		o.logger.Warn("validation tool unavailable, using structural fallback",
			zap.String("jar", cfg.JarPath),
			zap.String("scenario", cfg.ScenarioPath))
	})
	return NewFallbackValidator()
}
