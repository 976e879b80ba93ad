package domain

import "github.com/shopspring/decimal"

// Scale is the number of decimal places of the smallest currency unit
const Scale int32 = 2

var (
	// Epsilon is one smallest currency unit
	Epsilon = decimal.New(1, -Scale)

	// Hundred is the percentage total
	Hundred = decimal.NewFromInt(100)
)

// NearlyEqual reports whether a and b differ by at most one currency unit
func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// IsNegligible reports whether d is smaller in magnitude than one currency unit
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}

// IsCurrencyAmount reports whether d has no precision below the smallest currency unit
func IsCurrencyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// PercentageOf derives amount as a percentage of total, rounded to two places
func PercentageOf(amount, total decimal.Decimal) decimal.NullDecimal {
	if total.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Div(total).Mul(Hundred).Round(2))
}

// Sum adds up a list of amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatAmount renders d with exactly two decimal places
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
