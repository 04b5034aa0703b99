// Package scherr defines the error taxonomy used across the scheduling
// core. Every error surfaced by the public API carries a Kind so callers
// can distinguish configuration mistakes from infeasibility from timeouts
// without parsing message text.
package scherr

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidEntity is a constructor-time invariant breach (negative
	// capacity, zero duration, bad enum, reversed shift, min > max
	// operators).
	InvalidEntity Kind = iota
	// InvalidProblem is an assembly-time integrity breach (dangling
	// reference, cycle, missing modes).
	InvalidProblem
	// InfeasibleModel means the solver proved no solution exists under
	// the current constraints.
	InfeasibleModel
	// Timeout means the solver exhausted its time budget without proving
	// optimality; a feasible solution may still have been returned.
	Timeout
	// Cancelled means the driver observed a cancellation signal.
	Cancelled
	// ConfigError means a multi-objective configuration violates its own
	// rules (weights don't sum to 1, duplicate lexicographic priorities,
	// malformed epsilon-constraint shape).
	ConfigError
)

func (k Kind) String() string {
	switch k {
	case InvalidEntity:
		return "InvalidEntity"
	case InvalidProblem:
		return "InvalidProblem"
	case InfeasibleModel:
		return "InfeasibleModel"
	case Timeout:
		return "Timeout"
	case Cancelled:
		return "Cancelled"
	case ConfigError:
		return "ConfigError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the scheduling core. It
// carries a Kind, a human-readable message, and the IDs of any offending
// entities so callers can report precisely what went wrong.
type Error struct {
	Kind    Kind
	Message string
	IDs     []string
	issues  *multierror.Error
}

func (e *Error) Error() string {
	if e.issues != nil && e.issues.Len() > 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.issues.Error())
	}
	if len(e.IDs) > 0 {
		return fmt.Sprintf("%s: %s (ids: %v)", e.Kind, e.Message, e.IDs)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the individual accumulated issues, if any, so callers can
// use errors.Is/errors.As against both the aggregate and any one issue.
func (e *Error) Unwrap() []error {
	if e.issues == nil {
		return nil
	}
	return e.issues.WrappedErrors()
}

// New creates a single-message Error of the given kind.
func New(kind Kind, message string, ids ...string) *Error {
	return &Error{Kind: kind, Message: message, IDs: ids}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// List accumulates validation issues and reports them as one Error of the
// given kind. Zero appended issues means Build returns nil, mirroring the
// "zero issues is the success condition" contract of problem assembly.
type List struct {
	kind   Kind
	issues *multierror.Error
}

// NewList creates an issue accumulator that will report as Kind if it ends
// up non-empty.
func NewList(kind Kind) *List {
	return &List{kind: kind}
}

// Add appends a formatted issue to the list.
func (l *List) Add(format string, args ...interface{}) {
	l.issues = multierror.Append(l.issues, fmt.Errorf(format, args...))
}

// Len reports how many issues have been recorded.
func (l *List) Len() int {
	if l.issues == nil {
		return 0
	}
	return l.issues.Len()
}

// Messages returns each recorded issue as a string, in order.
func (l *List) Messages() []string {
	if l.issues == nil {
		return nil
	}
	msgs := make([]string, len(l.issues.Errors))
	for i, e := range l.issues.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// Build returns nil if no issues were recorded, otherwise an *Error
// wrapping the full accumulated list.
func (l *List) Build() error {
	if l.Len() == 0 {
		return nil
	}
	return &Error{Kind: l.kind, Message: "validation failed", issues: l.issues}
}
