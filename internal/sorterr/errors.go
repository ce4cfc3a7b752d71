// Package sorterr defines the engine's typed error kinds (spec §7) and a
// cancellation-detection helper that tells a genuine failure apart from a
// context cancellation. Modeled on the reference
// project's own error package: small typed errors carrying enough context
// (path, operation) to reproduce, fanned in with go-multierror rather than
// losing all but one when several tasks fail at once.
package sorterr

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// IoError wraps an OS-level failure during open/read/write/seek/rename/unlink.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("io error during %s on %q: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// TruncatedError indicates a record header or payload was cut short by EOF.
type TruncatedError struct {
	Context string
	Path    string
}

func (e *TruncatedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("truncated %s", e.Context)
	}
	return fmt.Sprintf("truncated %s in %q", e.Context, e.Path)
}

// LengthExceedsBudgetError indicates a record declared a payload length
// larger than the caller's configured maximum allows.
type LengthExceedsBudgetError struct {
	Declared uint32
	Budget   uint32
}

func (e *LengthExceedsBudgetError) Error() string {
	return fmt.Sprintf("record declares length %d, exceeds budget %d", e.Declared, e.Budget)
}

// InvariantViolationError always indicates a bug: a run file was not
// sorted, a chunk boundary didn't land on a record edge, or a merge
// observed a non-monotonic output.
type InvariantViolationError struct {
	What    string
	Context string
}

func (e *InvariantViolationError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("invariant violation: %s", e.What)
	}
	return fmt.Sprintf("invariant violation: %s (%s)", e.What, e.Context)
}

// ConfigError indicates an invalid worker count, memory budget, or
// temporary directory.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// IsCancelation reports whether err is, or wraps, a context cancellation.
// multierror.Error values are unwrapped recursively so an aggregate error
// in which every member is a cancellation is itself reported as one.
func IsCancelation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, sub := range merr.Errors {
			if !IsCancelation(sub) {
				return false
			}
		}
		return len(merr.Errors) > 0
	}
	return false
}

// Append is a thin wrapper over multierror.Append kept here so call sites
// don't need to import hashicorp/go-multierror directly.
func Append(err error, errs ...error) *multierror.Error {
	return multierror.Append(err, errs...)
}
