package config

import (
	"errors"
	"fmt"
)

// ErrUnknownNetwork is returned when the requested network name is not one of
// the recognized targets.
var ErrUnknownNetwork = errors.New("unknown network")

// MissingFieldError reports a required configuration field that could not be
// found in any configuration layer.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required configuration field %q", e.Field)
}

// InvalidFileError wraps a parse failure of one of the configuration files.
type InvalidFileError struct {
	Path string
	Err  error
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("invalid configuration file %s: %v", e.Path, e.Err)
}

func (e *InvalidFileError) Unwrap() error { return e.Err }
