package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound covers both missing records and records the caller is not
// allowed to see; handlers map it to 404 without distinguishing the two.
var ErrNotFound = errors.New("not found")

// ValidationError carries every violated rule so the client can report all
// problems at once, not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type PaymentGatewayError struct {
	Err error
}

func (e *PaymentGatewayError) Error() string {
	return fmt.Sprintf("payment gateway failure: %v", e.Err)
}

func (e *PaymentGatewayError) Unwrap() error { return e.Err }

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}
