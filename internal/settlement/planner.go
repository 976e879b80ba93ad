package settlement

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// position is one side of a pending settlement: a member and the magnitude still to move
type position struct {
	memberID string
	name     string
	amount   decimal.Decimal
}

// Plan returns the transfers that bring every balance to zero.
//
// Debtors are settled most negative first against creditors largest first;
// members with equal balances keep their input order. Each step moves the
// smaller of the two outstanding amounts, so at most len(balances)-1
// transfers are produced.
func Plan(balances []domain.Balance) ([]domain.Transfer, error) {
	var debtors, creditors []position
	for _, b := range balances {
		if domain.IsNegligible(b.Net) {
			continue
		}
		p := position{memberID: b.MemberID, name: b.MemberName, amount: b.Net.Abs()}
		if b.Net.IsNegative() {
			debtors = append(debtors, p)
		} else {
			creditors = append(creditors, p)
		}
	}

	// Both queues are ordered by descending magnitude
	byMagnitude := func(a, b position) int {
		return b.amount.Cmp(a.amount)
	}
	slices.SortStableFunc(debtors, byMagnitude)
	slices.SortStableFunc(creditors, byMagnitude)

	transfers := make([]domain.Transfer, 0, len(debtors)+len(creditors))
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor, creditor := debtors[0], creditors[0]
		amount := decimal.Min(debtor.amount, creditor.amount)

		transfers = append(transfers, domain.Transfer{
			From:     debtor.memberID,
			FromName: debtor.name,
			To:       creditor.memberID,
			ToName:   creditor.name,
			Amount:   amount,
		})

		debtors = settle(debtors, amount)
		creditors = settle(creditors, amount)
	}

	// Conservation holds within one unit, so at most that much may be left over
	if leftover := outstanding(debtors).Add(outstanding(creditors)); !domain.NearlyEqual(leftover, decimal.Zero) {
		return nil, &domain.InconsistencyError{
			Expected: decimal.Zero,
			Actual:   outstanding(creditors).Sub(outstanding(debtors)),
			Reason:   "balances left unsettled after planning",
		}
	}
	return transfers, nil
}

// settle reduces the head of queue by amount and drops it once it is negligible
func settle(queue []position, amount decimal.Decimal) []position {
	head := queue[0]
	head.amount = head.amount.Sub(amount)
	if domain.IsNegligible(head.amount) {
		return queue[1:]
	}
	return append([]position{head}, queue[1:]...)
}

func outstanding(queue []position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range queue {
		total = total.Add(p.amount)
	}
	return total
}

// Apply returns a copy of balances with every transfer executed in order.
// A transfer moves its amount from the debtor's negative balance toward zero
// and draws the creditor's positive balance down by the same amount.
func Apply(balances []domain.Balance, transfers []domain.Transfer) ([]domain.Balance, error) {
	out := make([]domain.Balance, len(balances))
	copy(out, balances)

	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.MemberID] = i
	}

	for _, t := range transfers {
		from, ok := index[t.From]
		if !ok {
			return nil, &domain.UnknownMemberError{MemberID: t.From}
		}
		to, ok := index[t.To]
		if !ok {
			return nil, &domain.UnknownMemberError{MemberID: t.To}
		}
		out[from].Net = out[from].Net.Add(t.Amount)
		out[to].Net = out[to].Net.Sub(t.Amount)
	}
	return out, nil
}

// Settled reports whether every balance is negligible
func Settled(balances []domain.Balance) bool {
	for _, b := range balances {
		if !domain.IsNegligible(b.Net) {
			return false
		}
	}
	return true
}
