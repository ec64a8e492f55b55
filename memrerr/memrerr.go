// Package memrerr implements the structured error taxonomy: every
// core package returns a *memrerr.Error (or wraps a lower error with Wrap)
// carrying an error Kind, the offending method's identity, and a short
// human-readable reason, rather than a bare errors.New.
package memrerr

import (
	"errors"
	"fmt"

	"github.com/go-stack/stack"
)

// Kind identifies which taxonomy bucket an error belongs to.
// ConcurrentReadStarvation is deliberately omitted: it is recovered locally
// by the table's seqlock retry-then-shared-lock fallback and never surfaces
// to a caller.
type Kind uint8

const (
	// InvalidQuery covers unknown property paths, operator/type mismatches,
	// missing parameters, ambiguous built-ins, unaliased projections,
	// unmarked modifying queries, id-column assignment, and native queries.
	InvalidQuery Kind = iota
	// Argument covers wrong argument counts, out-of-range argument
	// indices, and wrong element types in a homogeneous IN collection.
	Argument
	// Cardinality covers a required-single-row result observing 0 or more
	// than one row.
	Cardinality
	// Capacity covers a column or table reaching an implementation-defined
	// maximum (e.g. the RowId range).
	Capacity
)

func (k Kind) String() string {
	switch k {
	case InvalidQuery:
		return "invalid-query"
	case Argument:
		return "argument"
	case Cardinality:
		return "cardinality"
	case Capacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Error is the structured error every core package returns.
type Error struct {
	Kind   Kind
	Method string // offending method identity, e.g. "UserRepository.findByAge"
	Reason string
	cause  error
	frame  stack.Call
}

// New builds an Error of the given kind, capturing the immediate caller's
// frame for diagnostic tooling (never printed into Error() itself).
func New(kind Kind, method, reason string) *Error {
	return &Error{
		Kind:   kind,
		Method: method,
		Reason: reason,
		frame:  callerFrame(),
	}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, method, reason string, cause error) *Error {
	return &Error{
		Kind:   kind,
		Method: method,
		Reason: reason,
		cause:  cause,
		frame:  callerFrame(),
	}
}

// callerFrame captures the first call site outside this package: skip 0 is
// callerFrame itself, 1 is New/Wrap, 2 is their caller.
func callerFrame() stack.Call {
	return stack.Caller(2)
}

// Frame returns the caller frame captured at construction time, for
// diagnostic tooling that wants file/line without parsing Error().
func (e *Error) Frame() stack.Call { return e.frame }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Method, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Method, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// Is supports errors.Is comparison by Kind alone (ignoring Method/Reason):
// errors.Is(err, target) holds when target is a *Error of the same Kind.
// KindOf below reads the Kind without building a target error.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf reports the Kind of err if it is (or wraps) a *memrerr.Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
