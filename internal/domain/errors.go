package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every structured error below matches one or more of these with errors.Is.
var (
	ErrValidation          = errors.New("validation failure")
	ErrInvalidSplitInput   = errors.New("invalid split input")
	ErrSplitAmountMismatch = errors.New("split amounts do not match total")
	ErrUnassignedItem      = errors.New("item has no assignees")
	ErrUnknownMember       = errors.New("unknown member")
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

// ValidationError describes a malformed or missing input field
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SplitInputError is a strategy-specific constraint violation
type SplitInputError struct {
	Reason string
}

func (e *SplitInputError) Error() string {
	return e.Reason
}

func (e *SplitInputError) Unwrap() []error {
	return []error{ErrInvalidSplitInput, ErrValidation}
}

// SplitAmountMismatchError reports shares that do not add up to the expense total
type SplitAmountMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *SplitAmountMismatchError) Error() string {
	return fmt.Sprintf("split amounts sum to %s, expected %s", e.Actual.StringFixed(Scale), e.Expected.StringFixed(Scale))
}

func (e *SplitAmountMismatchError) Unwrap() []error {
	return []error{ErrSplitAmountMismatch, ErrInvalidSplitInput}
}

// UnassignedItemError reports an item nobody was assigned to
type UnassignedItemError struct {
	Index int
	Name  string
}

func (e *UnassignedItemError) Error() string {
	return fmt.Sprintf("item %d (%q) has no assigned members", e.Index+1, e.Name)
}

func (e *UnassignedItemError) Unwrap() []error {
	return []error{ErrUnassignedItem, ErrInvalidSplitInput}
}

// UnknownMemberError reports a reference to a member outside the group
type UnknownMemberError struct {
	MemberID  string
	ExpenseID string
}

func (e *UnknownMemberError) Error() string {
	if e.ExpenseID == "" {
		return fmt.Sprintf("unknown member %q", e.MemberID)
	}
	return fmt.Sprintf("expense %s references unknown member %q", e.ExpenseID, e.MemberID)
}

func (e *UnknownMemberError) Unwrap() error {
	return ErrUnknownMember
}

// InconsistencyError reports a violated ledger invariant
type InconsistencyError struct {
	ExpenseID string
	Expected  decimal.Decimal
	Actual    decimal.Decimal
	Reason    string
}

func (e *InconsistencyError) Error() string {
	msg := fmt.Sprintf("ledger inconsistency: %s (expected %s, got %s)",
		e.Reason, e.Expected.StringFixed(Scale), e.Actual.StringFixed(Scale))
	if e.ExpenseID != "" {
		msg += " in expense " + e.ExpenseID
	}
	return msg
}

func (e *InconsistencyError) Unwrap() error {
	return ErrLedgerInconsistency
}
