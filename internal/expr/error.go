package expr

import "fmt"

// The error taxonomy is closed: every failure an evaluation can produce is
// one of the types below, each rendering as a single line of diagnostic
// text. None are process-fatal; the caller decides whether to retry with
// different input.

// ParseError reports malformed source text. The grammar engine's own message
// is carried through unchanged.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return "Parse error: " + e.Message }

// UnsupportedError reports a construct that was recognized but is
// deliberately not implemented (function calls, closures, field access,
// dynamic indices, unrecognized cast targets, ...).
type UnsupportedError struct {
	Kind string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Unsupported expression: %s. This feature is not yet implemented.", e.Kind)
}

// UnknownVariableError reports a name with no binding in the environment.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("Unknown variable: '%s'", e.Name)
}

// TypeMismatchError is reserved for call sites that assert an expected type.
type TypeMismatchError struct {
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Type mismatch: expected %s, found %s", e.Expected, e.Found)
}

// InvalidOperationError reports operand types incompatible with an operator.
// For unary operators Right is empty.
type InvalidOperationError struct {
	Op    string
	Left  string
	Right string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("Cannot apply operator '%s' to types %s and %s", e.Op, e.Left, e.Right)
}

type DivisionByZeroError struct{}

func (*DivisionByZeroError) Error() string { return "Division by zero" }

// ErrDivisionByZero is the shared instance used by the evaluator; compare
// with errors.Is.
var ErrDivisionByZero = &DivisionByZeroError{}

// IndexOutOfBoundsError is reserved for future bounded-index support.
type IndexOutOfBoundsError struct {
	Index  int
	Length int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("Index out of bounds: index %d, length %d", e.Index, e.Length)
}

// NullPointerError is reserved.
type NullPointerError struct{}

func (*NullPointerError) Error() string { return "Null pointer dereference" }

var ErrNullPointer = &NullPointerError{}

// FieldNotFoundError is reserved.
type FieldNotFoundError struct {
	Field string
	Type  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("Field '%s' not found on type %s", e.Field, e.Type)
}

// InternalError reports checked-arithmetic overflow and invariant
// violations.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "Internal error: " + e.Message }

func unsupported(kind string) error {
	return &UnsupportedError{Kind: kind}
}

func unsupportedf(format string, args ...any) error {
	return &UnsupportedError{Kind: fmt.Sprintf(format, args...)}
}

func invalidOp(op, left, right string) error {
	return &InvalidOperationError{Op: op, Left: left, Right: right}
}
