// Package apperr defines the error taxonomy shared by all glossmd layers.
//
// Each typed error unwraps to one of the sentinels below, so callers can
// classify a failure with errors.Is without knowing which layer produced it.
package apperr

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Sentinel errors used across all layers.
var (
	ErrConfig          = errors.New("configuration error")
	ErrParse           = errors.New("parse error")
	ErrNotFound        = errors.New("not found")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrIO              = errors.New("i/o error")
)

// ConfigError collects every missing or invalid setting found during validation.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("config: %s", e.Problems[0])
	}
	var err error
	for _, p := range e.Problems {
		err = multierr.Append(err, errors.New(p))
	}
	return fmt.Sprintf("config: %d problems: %v", len(e.Problems), err)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// NewConfigError returns nil when problems is empty.
func NewConfigError(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Problems: problems}
}

// ParseError reports a malformed glossary, template or job file.
type ParseError struct {
	Path   string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %s", e.Path, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// NotFoundError reports a referenced file that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ModelInvocationError wraps a provider failure for one chunk.
type ModelInvocationError struct {
	Model string
	Chunk int
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model %s failed on chunk %d: %v", e.Model, e.Chunk+1, e.Err)
}

func (e *ModelInvocationError) Unwrap() []error {
	return []error{ErrModelInvocation, e.Err}
}

// IOError reports a failed read or write together with the attempted path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
