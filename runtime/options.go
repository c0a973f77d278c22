package runtime

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// validate is shared by Config and the parameter structs; validator caches
// struct metadata per type.
var validate = validator.New()

// Config holds configuration for runtime creation
type Config struct {
	// Engine creates the heap. Defaults to goja.
	Engine engine.Engine `validate:"required"`

	// Logger receives lifecycle diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger `validate:"required"`

	// MaxRoots is the memory ceiling on rooted objects. 0 means unbounded.
	MaxRoots int `validate:"gte=0"`

	// MaxStringBytes bounds a single string conversion. 0 means unbounded.
	MaxStringBytes int `validate:"gte=0"`

	// MaxCallStackSize bounds script recursion. 0 means the engine default.
	MaxCallStackSize int `validate:"gte=0"`
}

// Option configures a Runtime.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Engine: engine.NewGojaEngine(),
		Logger: zap.NewNop(),
	}
}

func applyOptions(opts ...Option) (Config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, errors.InvalidArgument("New", err)
	}
	return cfg, nil
}

// WithEngine selects the engine backend.
func WithEngine(e engine.Engine) Option {
	return func(c *Config) {
		c.Engine = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMaxRoots caps the number of live rooted objects.
func WithMaxRoots(n int) Option {
	return func(c *Config) {
		c.MaxRoots = n
	}
}

// WithMaxStringBytes caps the size of a single host string sent to the engine.
func WithMaxStringBytes(n int) Option {
	return func(c *Config) {
		c.MaxStringBytes = n
	}
}

// WithMaxCallStackSize caps script recursion depth.
func WithMaxCallStackSize(n int) Option {
	return func(c *Config) {
		c.MaxCallStackSize = n
	}
}
