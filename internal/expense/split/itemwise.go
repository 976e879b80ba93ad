package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// =============================================================================
// ITEM-WISE SPLIT STRATEGY
// Each item is shared equally by the members assigned to it
// =============================================================================

// ItemWiseStrategy implements the Strategy interface for item-wise splits
type ItemWiseStrategy struct{}

// Type returns the split type identifier
func (s *ItemWiseStrategy) Type() domain.Strategy {
	return domain.StrategyItemWise
}

// Validate checks if the inputs are valid for an item-wise split
func (s *ItemWiseStrategy) Validate(req Request) error {
	if err := validateTotal(req.Total); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	byID, err := lookup(req.Members)
	if err != nil {
		return err
	}

	sum := decimal.Zero
	for i, item := range req.Items {
		if item.Price.IsNegative() {
			return ErrNegativeAmount
		}
		if !domain.IsCurrencyAmount(item.Price) {
			return ErrSubUnitAmount
		}
		if len(item.AssignedTo) == 0 {
			return &domain.UnassignedItemError{Index: i, Name: item.Name}
		}
		seen := make(map[string]bool, len(item.AssignedTo))
		for _, id := range item.AssignedTo {
			if _, ok := byID[id]; !ok {
				return &domain.UnknownMemberError{MemberID: id}
			}
			if seen[id] {
				return duplicateEntry(id)
			}
			seen[id] = true
		}
		sum = sum.Add(item.Price)
	}

	if !domain.NearlyEqual(sum, req.Total) {
		return &domain.SplitAmountMismatchError{Expected: req.Total, Actual: sum}
	}
	return nil
}

// Calculate sums each member's portion of the items they were assigned.
// Members without any portion get no split.
func (s *ItemWiseStrategy) Calculate(req Request) ([]domain.Split, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	owed := make(map[string]decimal.Decimal, len(req.Members))
	for _, item := range req.Items {
		portions := divideEvenly(item.Price, len(item.AssignedTo))
		for i, id := range item.AssignedTo {
			owed[id] = owed[id].Add(portions[i])
		}
	}

	var ids []string
	var amounts []decimal.Decimal
	for _, m := range req.Members {
		amount, ok := owed[m.ID]
		if !ok || amount.IsZero() {
			continue
		}
		ids = append(ids, m.ID)
		amounts = append(amounts, amount)
	}
	absorbResidual(amounts, req.Total)

	byID, _ := lookup(req.Members)
	return buildSplits(ids, amounts, byID, req.Total), nil
}
