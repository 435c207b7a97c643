package models

import (
	"errors"
	"fmt"
)

// ValidationError marks a malformed intent, rejected before any venue call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid intent: %s %s", e.Field, e.Reason)
}

type ConflictKind string

const (
	ConflictAlreadyInPosition ConflictKind = "already_in_position"
	ConflictNoPosition        ConflictKind = "no_position"
	ConflictSideMismatch      ConflictKind = "side_mismatch"
)

// StateConflictError means the venue state does not allow the requested action.
type StateConflictError struct {
	Kind   ConflictKind
	Symbol string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("state conflict %s: %s", e.Symbol, e.Kind)
}

func IsConflict(err error, kind ConflictKind) bool {
	var sc *StateConflictError
	return errors.As(err, &sc) && sc.Kind == kind
}

// VenueError wraps a failed venue call. Transient failures (timeout, rate
// limit, 5xx) are safe to retry at the caller level; the engine itself never
// retries except the single take-profit retry in the entry flow.
type VenueError struct {
	Op        string
	Status    int
	Code      int
	Msg       string
	Transient bool
	Cause     error
}

func (e *VenueError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Cause != nil {
		return fmt.Sprintf("venue %s (%s): %v", e.Op, kind, e.Cause)
	}
	return fmt.Sprintf("venue %s (%s): http=%d code=%d msg=%s", e.Op, kind, e.Status, e.Code, e.Msg)
}

func (e *VenueError) Unwrap() error { return e.Cause }

func IsTransient(err error) bool {
	var ve *VenueError
	return errors.As(err, &ve) && ve.Transient
}

// Sizing failures.
var (
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrBalanceUnavailable = errors.New("balance unavailable")
)

// CompensationFailure means the close-on-stop-loss-failure action itself failed.
// The position is open and unprotected; surfaced distinctly so operators can
// alert on it.
type CompensationFailure struct {
	Symbol string
	Qty    float64
	Cause  error
}

func (e *CompensationFailure) Error() string {
	return fmt.Sprintf("UNPROTECTED POSITION %s qty=%.8f: compensating close failed: %v", e.Symbol, e.Qty, e.Cause)
}

func (e *CompensationFailure) Unwrap() error { return e.Cause }
