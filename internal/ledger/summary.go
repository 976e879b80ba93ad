package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// Summary holds spending statistics for a set of expenses
type Summary struct {
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
	Largest  decimal.Decimal `json:"largest"`
	Smallest decimal.Decimal `json:"smallest"`
}

// Summarize computes spending statistics. All fields are zero for an empty set.
func Summarize(expenses []domain.Expense) Summary {
	summary := Summary{
		Total:    decimal.Zero,
		Average:  decimal.Zero,
		Largest:  decimal.Zero,
		Smallest: decimal.Zero,
		Count:    len(expenses),
	}
	if len(expenses) == 0 {
		return summary
	}

	summary.Largest = expenses[0].Amount
	summary.Smallest = expenses[0].Amount
	for _, e := range expenses {
		summary.Total = summary.Total.Add(e.Amount)
		summary.Largest = decimal.Max(summary.Largest, e.Amount)
		summary.Smallest = decimal.Min(summary.Smallest, e.Amount)
	}
	summary.Average = summary.Total.Div(decimal.NewFromInt(int64(len(expenses)))).Round(domain.Scale)
	return summary
}
