package expiration

import (
	"errors"
	"fmt"
)

// Grammar sentinels returned by the date/time/duration parsers.
var (
	ErrDate     = errors.New("invalid date format")
	ErrTime     = errors.New("invalid time format")
	ErrDateTime = errors.New("invalid datetime format")
	ErrDuration = errors.New("invalid duration format")
)

// InvalidExpressionError reports a malformed unit-sum duration expression
// such as "1h 30x".
type InvalidExpressionError struct {
	Expression string
	Position   int
	Message    string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %q at position %d: %s", e.Expression, e.Position, e.Message)
}

// InvalidExpirationTypeError reports a value that cannot be interpreted as a
// cache expiration.
type InvalidExpirationTypeError struct {
	Value any
}

func (e *InvalidExpirationTypeError) Error() string {
	return fmt.Sprintf("invalid cache expiration value %v (%T)", e.Value, e.Value)
}

// InvalidSyncExpirationTypeError reports a value that only resolves to a
// context-bound policy, which blocking callers cannot evaluate.
type InvalidSyncExpirationTypeError struct {
	Value any
}

func (e *InvalidSyncExpirationTypeError) Error() string {
	return fmt.Sprintf("invalid cache expiration value %v (%T): it resolves to a context-bound expiration", e.Value, e.Value)
}
