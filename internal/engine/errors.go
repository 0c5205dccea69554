package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDataset indicates New was called without a dataset.
	ErrNoDataset = errors.New("engine: no dataset")

	// ErrEmptyDataset indicates a dataset without neurons to emit from.
	ErrEmptyDataset = errors.New("engine: dataset has no neurons")
)

// ConfigError reports which configuration field made engine setup fail.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}
