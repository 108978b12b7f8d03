package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds produced by the pricing and lifecycle engine. Every
// ValidationError and StateTransitionError wraps exactly one of them, so
// callers branch with errors.Is.
var (
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrInvalidMargin           = errors.New("invalid margin")
	ErrInvalidCost             = errors.New("invalid cost")
	ErrInvalidItemRef          = errors.New("line must reference exactly one product or service")
	ErrMissingClient           = errors.New("client is required")
	ErrMissingCurrency         = errors.New("currency is required")
	ErrNoLineItems             = errors.New("at least one line item is required")
	ErrCurrencyMismatch        = errors.New("currency mismatch")
	ErrInvalidTax              = errors.New("invalid tax")
	ErrInvalidPeriod           = errors.New("invalid validity period")
	ErrNotFound                = errors.New("not found")
	ErrStaleSnapshot           = errors.New("stale snapshot")
	ErrInvalidTransition       = errors.New("invalid state transition")
	ErrForbidden               = errors.New("forbidden")
	ErrRoundingPolicyViolation = errors.New("rounding policy violation")
)

// ErrorCode is the stable machine-readable code attached to validation errors.
type ErrorCode string

const (
	CodeInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
	CodeInvalidPrice      ErrorCode = "INVALID_PRICE"
	CodeInvalidMargin     ErrorCode = "INVALID_MARGIN"
	CodeInvalidCost       ErrorCode = "INVALID_COST"
	CodeInvalidItemRef    ErrorCode = "INVALID_ITEM_REF"
	CodeMissingClient     ErrorCode = "MISSING_CLIENT"
	CodeMissingCurrency   ErrorCode = "MISSING_CURRENCY"
	CodeNoLineItems       ErrorCode = "NO_LINE_ITEMS"
	CodeCurrencyMismatch  ErrorCode = "CURRENCY_MISMATCH"
	CodeInvalidTax        ErrorCode = "INVALID_TAX"
	CodeInvalidPeriod     ErrorCode = "INVALID_PERIOD"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeStaleSnapshot     ErrorCode = "STALE_SNAPSHOT"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeRoundingPolicy    ErrorCode = "ROUNDING_POLICY_VIOLATION"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
)

var kindCodes = []struct {
	kind error
	code ErrorCode
}{
	{ErrInvalidQuantity, CodeInvalidQuantity},
	{ErrInvalidPrice, CodeInvalidPrice},
	{ErrInvalidMargin, CodeInvalidMargin},
	{ErrInvalidCost, CodeInvalidCost},
	{ErrInvalidItemRef, CodeInvalidItemRef},
	{ErrMissingClient, CodeMissingClient},
	{ErrMissingCurrency, CodeMissingCurrency},
	{ErrNoLineItems, CodeNoLineItems},
	{ErrCurrencyMismatch, CodeCurrencyMismatch},
	{ErrInvalidTax, CodeInvalidTax},
	{ErrInvalidPeriod, CodeInvalidPeriod},
	{ErrNotFound, CodeNotFound},
	{ErrStaleSnapshot, CodeStaleSnapshot},
	{ErrInvalidTransition, CodeInvalidTransition},
	{ErrForbidden, CodeForbidden},
	{ErrRoundingPolicyViolation, CodeRoundingPolicy},
}

// CodeOf returns the code for the first known kind found in err's chain.
func CodeOf(err error) ErrorCode {
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			return kc.code
		}
	}
	return CodeInvalidInput
}

// ValidationError is a recoverable problem with a draft. Line is set for
// line-level errors and holds the zero-based index of the offending line.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Line    *int      `json:"line,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// NewValidationError builds a draft-level error for field.
func NewValidationError(kind error, field, message string) ValidationError {
	return ValidationError{Code: CodeOf(kind), Field: field, Message: message, Err: kind}
}

// NewLineError builds an error attached to the line at index.
func NewLineError(index int, kind error, field, message string) ValidationError {
	ve := NewValidationError(kind, fmt.Sprintf("lines[%d].%s", index, field), message)
	ve.Line = &index
	return ve
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors aggregates every problem found in a single computation.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// StateTransitionError is returned when a lifecycle request is rejected.
// The budget is never partially mutated when one is returned.
type StateTransitionError struct {
	From BudgetState
	To   BudgetState
	Role Role
	Err  error
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s -> %s (role %s): %v", e.From, e.To, e.Role, e.Err)
}

func (e *StateTransitionError) Unwrap() error { return e.Err }

// AdvisoryCode identifies a non-fatal warning.
type AdvisoryCode string

const (
	AdvisoryNoTaxes          AdvisoryCode = "NO_TAXES_APPLIED"
	AdvisoryRoundingMismatch AdvisoryCode = "ROUNDING_RECONCILIATION"
)

// Advisory is a warning surfaced to the caller alongside a valid result.
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Message string       `json:"message"`
}
