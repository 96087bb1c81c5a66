package service

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input (oversized/empty/disallowed file,
// invalid plan, malformed request body). Never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AccessError reports a caller lacking ownership or entitlement.
type AccessError struct {
	Reason string
}

func (e *AccessError) Error() string {
	return e.Reason
}

// UpstreamError reports a non-success response from the AI, transcription
// or payment provider. The status is logged, not exposed to the caller.
type UpstreamError struct {
	Op     string
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Detail)
}

// PersistenceError reports a failed storage write for a primary record.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConsistencyError reports a detected version-number collision. It is
// fatal for the request and never resolved by overwriting.
type ConsistencyError struct {
	DocumentID    string
	VersionNumber int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("version %d already exists for document %s", e.VersionNumber, e.DocumentID)
}

// ErrNotFound is returned when a document cannot be resolved.
var ErrNotFound = errors.New("not found")

// ErrRateLimited is returned when a per-user usage window is exhausted.
var ErrRateLimited = errors.New("Muitas tentativas. Tente novamente em alguns minutos.")
