package kumi

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config is the environment-driven configuration of an Index or World.
type Config struct {
	InitialCapacity  int    `config:"KUMI_INITIAL_CAPACITY"`
	LogLevel         string `config:"KUMI_LOG_LEVEL"`
	VerifyInvariants bool   `config:"KUMI_VERIFY_INVARIANTS"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: defaultInitialCapacity,
		LogLevel:        "disabled",
	}
}

// LoadConfig reads the KUMI_* environment variables over DefaultConfig.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "failed to read config from environment")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, eris.Wrapf(err, "invalid KUMI_LOG_LEVEL %q", cfg.LogLevel)
	}
	return cfg, nil
}

// WithConfig applies cfg. A log level other than "disabled" installs a console
// logger on stderr at that level.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.InitialCapacity > 0 {
			o.capacity = cfg.InitialCapacity
		}
		o.verify = o.verify || cfg.VerifyInvariants
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil || level == zerolog.Disabled || level == zerolog.NoLevel {
			return
		}
		o.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Str("component", "kumi").Logger()
	}
}
