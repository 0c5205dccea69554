package engine

import (
	"log/slog"

	"github.com/san-kum/spikeviz/internal/registry"
)

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithObserver(o FrameObserver) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithRegistry replaces the registry used to resolve policies and combine ops.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}
