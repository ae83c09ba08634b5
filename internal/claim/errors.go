package claim

import (
	"errors"
	"fmt"
)

// Error kinds shared across the pipeline. Handlers map these to HTTP
// statuses; callers branch with errors.Is.
var (
	// ErrValidation marks malformed command input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing claim, field, assessment, or decision.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation attempted outside its required
	// lifecycle phase. Blocking, never silently skipped.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a stale-version write or a duplicate insert caught
	// by a uniqueness constraint. The caller must re-read and retry.
	ErrConflict = errors.New("conflict")

	// ErrExternal marks a fatal external-dependency failure (blob fetch,
	// policy system). The AI advisory pass degrades instead of returning this.
	ErrExternal = errors.New("external dependency failed")
)

// WrapError preserves a typed error kind with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// Errorf builds a new error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// IsKind reports whether err carries the given kind.
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
