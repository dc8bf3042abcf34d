// Package errors defines the closed error-kind taxonomy used throughout
// the HOBBS session runtime. Handlers branch on kind via errors.Is/As,
// never on message text.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds. Wrap these with fmt.Errorf("...: %w", ErrX) to attach
// detail while keeping errors.Is(err, ErrX) working.
var (
	ErrIo               = errors.New("io error")
	ErrAuth             = errors.New("authentication error")
	ErrPermission       = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrDatabase         = errors.New("database error")
	ErrLastSysOp        = errors.New("cannot demote or suspend the last active sysop")
	ErrCannotModifySelf = errors.New("cannot perform this action on your own account")
)

// RateLimited indicates a rate-limit gate denied an action. Carries the
// duration the caller should wait before retrying.
type RateLimited struct {
	RetryAfter time.Duration
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

// NewRateLimited builds a *RateLimited error.
func NewRateLimited(retryAfter time.Duration) error {
	return &RateLimited{RetryAfter: retryAfter}
}

// Io wraps an I/O-kind error with context.
func Io(context string, cause error) error {
	return fmt.Errorf("%s: %w: %v", context, ErrIo, cause)
}

// Auth wraps an authentication-kind error with context.
func Auth(context string) error {
	return fmt.Errorf("%s: %w", context, ErrAuth)
}

// Permission wraps a permission-kind error with context.
func Permission(context string) error {
	return fmt.Errorf("%s: %w", context, ErrPermission)
}

// Validation wraps a validation-kind error with context.
func Validation(context string) error {
	return fmt.Errorf("%s: %w", context, ErrValidation)
}

// NotFound wraps a not-found-kind error naming the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Database wraps a repository-kind error with context.
func Database(context string, cause error) error {
	return fmt.Errorf("%s: %w: %v", context, ErrDatabase, cause)
}

// IsFatal reports whether an error kind ends the session worker: only
// transport loss or protocol EOF qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIo)
}
