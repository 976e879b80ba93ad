package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() domain.Strategy {
	return domain.StrategyExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(req Request) error {
	if err := validateTotal(req.Total); err != nil {
		return err
	}
	if err := checkShares(req); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, share := range req.Shares {
		if share.Amount == nil {
			return ErrMissingExactAmount
		}
		if share.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		if !domain.IsCurrencyAmount(*share.Amount) {
			return ErrSubUnitAmount
		}
		sum = sum.Add(*share.Amount)
	}

	if !domain.NearlyEqual(sum, req.Total) {
		return &domain.SplitAmountMismatchError{Expected: req.Total, Actual: sum}
	}
	return nil
}

// Calculate returns the exact amounts specified for each participant.
// A difference of at most one cent is folded into the largest share.
func (s *ExactStrategy) Calculate(req Request) ([]domain.Split, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, len(req.Shares))
	for i, share := range req.Shares {
		amounts[i] = *share.Amount
	}
	absorbResidual(amounts, req.Total)

	byID, _ := lookup(req.Members)
	return buildSplits(shareIDs(req.Shares), amounts, byID, req.Total), nil
}
