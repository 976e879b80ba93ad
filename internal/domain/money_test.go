package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fkhayef/splitledger/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNearlyEqual(t *testing.T) {
	assert.True(t, domain.NearlyEqual(d("100"), d("100.00")))
	assert.True(t, domain.NearlyEqual(d("100"), d("99.99")))
	assert.False(t, domain.NearlyEqual(d("100"), d("99.98")))
}

func TestIsNegligible(t *testing.T) {
	assert.True(t, domain.IsNegligible(d("0")))
	assert.True(t, domain.IsNegligible(d("-0.009")))
	assert.False(t, domain.IsNegligible(d("0.01")))
	assert.False(t, domain.IsNegligible(d("-0.01")))
}

func TestIsCurrencyAmount(t *testing.T) {
	assert.True(t, domain.IsCurrencyAmount(d("10.50")))
	assert.True(t, domain.IsCurrencyAmount(d("10.500")))
	assert.False(t, domain.IsCurrencyAmount(d("10.505")))
}

func TestPercentageOf(t *testing.T) {
	p := domain.PercentageOf(d("40"), d("100"))
	assert.True(t, p.Valid)
	assert.True(t, p.Decimal.Equal(d("40")))

	p = domain.PercentageOf(d("33.34"), d("100"))
	assert.True(t, p.Decimal.Equal(d("33.34")))

	assert.False(t, domain.PercentageOf(d("1"), decimal.Zero).Valid)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "60.00", domain.FormatAmount(d("60")))
	assert.Equal(t, "-0.50", domain.FormatAmount(d("-0.5")))
}

func TestErrorKinds(t *testing.T) {
	mismatch := &domain.SplitAmountMismatchError{Expected: d("100"), Actual: d("95")}
	assert.ErrorIs(t, mismatch, domain.ErrSplitAmountMismatch)
	assert.ErrorIs(t, mismatch, domain.ErrInvalidSplitInput)
	assert.Equal(t, "split amounts sum to 95.00, expected 100.00", mismatch.Error())

	unassigned := &domain.UnassignedItemError{Index: 0, Name: "Wine"}
	assert.ErrorIs(t, unassigned, domain.ErrUnassignedItem)
	assert.NotErrorIs(t, unassigned, domain.ErrSplitAmountMismatch)

	unknown := &domain.UnknownMemberError{MemberID: "z", ExpenseID: "e1"}
	assert.ErrorIs(t, unknown, domain.ErrUnknownMember)

	var target *domain.UnknownMemberError
	wrapped := errors.Join(domain.NewValidationError("amount", "must be positive"), unknown)
	assert.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "z", target.MemberID)
	assert.ErrorIs(t, wrapped, domain.ErrValidation)
}
