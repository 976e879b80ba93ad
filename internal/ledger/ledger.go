// Package ledger turns a group's expenses into per-member balances.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// ComputeBalances aggregates expenses into one balance per member, in member order.
// The payer is credited with the expense amount and every split member is debited
// with their share; a payer without a split of their own is debited whatever the
// splits leave over. The call fails as a whole if any expense references an unknown
// member or if the balances do not sum to zero afterwards.
func ComputeBalances(members []domain.Member, expenses []domain.Expense) ([]domain.Balance, error) {
	balances, err := NewBalances(members)
	if err != nil {
		return nil, err
	}

	index := indexOf(balances)
	for i := range expenses {
		if err := post(balances, index, &expenses[i], 1); err != nil {
			return nil, err
		}
	}

	if err := Verify(balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// NewBalances returns a zero balance for every member
func NewBalances(members []domain.Member) ([]domain.Balance, error) {
	balances := make([]domain.Balance, len(members))
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		if seen[m.ID] {
			return nil, domain.NewValidationError("members", fmt.Sprintf("member %q listed more than once", m.ID))
		}
		seen[m.ID] = true
		balances[i] = domain.Balance{
			MemberID:   m.ID,
			MemberName: m.Name,
			Paid:       decimal.Zero,
			Owed:       decimal.Zero,
			Net:        decimal.Zero,
		}
	}
	return balances, nil
}

// Apply returns a copy of balances with the expense posted.
// The result is identical to recomputing over the extended expense set.
func Apply(balances []domain.Balance, expense domain.Expense) ([]domain.Balance, error) {
	return incremental(balances, &expense, 1)
}

// Revert returns a copy of balances with the expense's contribution removed.
// The result is identical to recomputing over the remaining expense set.
func Revert(balances []domain.Balance, expense domain.Expense) ([]domain.Balance, error) {
	return incremental(balances, &expense, -1)
}

func incremental(balances []domain.Balance, expense *domain.Expense, sign int64) ([]domain.Balance, error) {
	out := make([]domain.Balance, len(balances))
	copy(out, balances)

	if err := post(out, indexOf(out), expense, sign); err != nil {
		return nil, err
	}
	if err := Verify(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify checks that the balances of a closed group cancel out
func Verify(balances []domain.Balance) error {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Net)
	}
	if !domain.NearlyEqual(total, decimal.Zero) {
		return &domain.InconsistencyError{
			Expected: decimal.Zero,
			Actual:   total,
			Reason:   "balances do not sum to zero",
		}
	}
	return nil
}

// CheckExpense verifies an already split expense before it is posted.
// When the payer has a split of their own the splits must cover the amount;
// otherwise they may fall short and the payer keeps the rest as an implicit share.
func CheckExpense(expense *domain.Expense) error {
	for _, s := range expense.Splits {
		if s.Amount.IsNegative() {
			return &domain.InconsistencyError{
				ExpenseID: expense.ID,
				Expected:  decimal.Zero,
				Actual:    s.Amount,
				Reason:    fmt.Sprintf("negative split for member %s", s.MemberID),
			}
		}
	}

	total := expense.SplitTotal()
	if hasSplit(expense, expense.PaidBy) {
		if !domain.NearlyEqual(total, expense.Amount) {
			return &domain.InconsistencyError{
				ExpenseID: expense.ID,
				Expected:  expense.Amount,
				Actual:    total,
				Reason:    "splits do not sum to expense amount",
			}
		}
		return nil
	}

	if total.GreaterThan(expense.Amount.Add(domain.Epsilon)) {
		return &domain.InconsistencyError{
			ExpenseID: expense.ID,
			Expected:  expense.Amount,
			Actual:    total,
			Reason:    "splits exceed expense amount",
		}
	}
	return nil
}

// ImplicitShare is the part of the amount the payer owes themselves when they
// have no split of their own. It is zero when the payer's split is listed.
func ImplicitShare(expense *domain.Expense) decimal.Decimal {
	if hasSplit(expense, expense.PaidBy) {
		return decimal.Zero
	}
	residual := expense.Amount.Sub(expense.SplitTotal())
	if !residual.IsPositive() {
		return decimal.Zero
	}
	return residual
}

func hasSplit(expense *domain.Expense, memberID string) bool {
	for _, s := range expense.Splits {
		if s.MemberID == memberID {
			return true
		}
	}
	return false
}

// post adds (sign 1) or removes (sign -1) one expense. Every member reference
// is resolved before any balance is touched so a failure leaves balances as they were.
func post(balances []domain.Balance, index map[string]int, expense *domain.Expense, sign int64) error {
	if err := CheckExpense(expense); err != nil {
		return err
	}

	payer, ok := index[expense.PaidBy]
	if !ok {
		return &domain.UnknownMemberError{MemberID: expense.PaidBy, ExpenseID: expense.ID}
	}
	debtors := make([]int, len(expense.Splits))
	for i, s := range expense.Splits {
		at, ok := index[s.MemberID]
		if !ok {
			return &domain.UnknownMemberError{MemberID: s.MemberID, ExpenseID: expense.ID}
		}
		debtors[i] = at
	}

	factor := decimal.NewFromInt(sign)

	amount := expense.Amount.Mul(factor)
	balances[payer].Paid = balances[payer].Paid.Add(amount)
	balances[payer].Net = balances[payer].Net.Add(amount)

	for i, s := range expense.Splits {
		share := s.Amount.Mul(factor)
		at := debtors[i]
		balances[at].Owed = balances[at].Owed.Add(share)
		balances[at].Net = balances[at].Net.Sub(share)
	}

	if self := ImplicitShare(expense).Mul(factor); !self.IsZero() {
		balances[payer].Owed = balances[payer].Owed.Add(self)
		balances[payer].Net = balances[payer].Net.Sub(self)
	}
	return nil
}

func indexOf(balances []domain.Balance) map[string]int {
	index := make(map[string]int, len(balances))
	for i, b := range balances {
		index[b.MemberID] = i
	}
	return index
}

// Lookup returns a member id → net balance map
func Lookup(balances []domain.Balance) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		net[b.MemberID] = b.Net
	}
	return net
}
