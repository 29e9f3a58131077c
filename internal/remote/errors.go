package remote

import (
	"errors"
	"fmt"
)

// ErrNoToken means no access token is configured. Calls fail with it
// before any network traffic happens.
var ErrNoToken = errors.New("no access token configured")

// AuthError means the remote rejected our credential. The guard clears
// the stored token when it sees one, and batch loops abort their
// remaining items since every further call would fail the same way.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d)", e.Status)
}

// NotFoundError means the requested resource or file does not exist.
// Callers treat it as "nothing to do" rather than an alarm.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// ConflictError means a write carried a stale conditional token and
// the remote refused it. The remote content is unchanged. Never
// auto-resolved; surfaced to the caller.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting update for %s: remote changed since last read", e.Path)
}

// NetworkError wraps transport failures (unreachable host, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("remote unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is any other non-success response from the remote service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote request failed: status %d: %s", e.Status, e.Message)
}

// IsAuth reports whether err is an authentication failure, including a
// missing token.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) || errors.Is(err, ErrNoToken)
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a stale-token write rejection.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
