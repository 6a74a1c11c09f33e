package kumi

import (
	"github.com/rs/zerolog"
)

const defaultInitialCapacity = 1024

type options struct {
	logger   zerolog.Logger
	bus      *EventBus
	capacity int
	verify   bool
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zerolog.Nop(),
		capacity: defaultInitialCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures an Index or a World.
type Option func(*options)

// WithLogger sets the logger used for mapping and rebuild diagnostics. The default
// logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventBus makes the index publish GroupEntered and GroupExited events on bus
// for every group an entity joins or leaves.
func WithEventBus(bus *EventBus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithInitialCapacity presizes every storage for n entities.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithInvariantChecks verifies the storages after every mutation and panics on
// the first violation. It costs O(entities) per call and is meant for tests.
func WithInvariantChecks() Option {
	return func(o *options) {
		o.verify = true
	}
}
