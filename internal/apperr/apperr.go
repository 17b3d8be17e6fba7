// Package apperr holds the error kinds shared by every layer. Stores and
// services wrap these with %w; the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("could not validate credentials")
	ErrInactiveAccount  = errors.New("inactive user")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("not enough permissions")
	ErrConflict         = errors.New("conflict")
	ErrUnavailable      = errors.New("service unavailable")
)

// NotFound reports a missing (or not owned) entity, e.g. "invoice not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Conflict reports a uniqueness clash with a readable reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// ValidationError carries per-field messages keyed by the request field path.
type ValidationError struct {
	Fields map[string]string
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}

	return nil, false
}
