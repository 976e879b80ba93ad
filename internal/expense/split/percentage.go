package split

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() domain.Strategy {
	return domain.StrategyPercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(req Request) error {
	if err := validateTotal(req.Total); err != nil {
		return err
	}
	if err := checkShares(req); err != nil {
		return err
	}
	_, err := resolvePercentages(req)
	return err
}

// Calculate divides the total amount based on each participant's percentage
func (s *PercentageStrategy) Calculate(req Request) ([]domain.Split, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	percentages, _ := resolvePercentages(req)
	amounts := allocate(req.Total, percentages)

	byID, _ := lookup(req.Members)
	return buildSplits(shareIDs(req.Shares), amounts, byID, req.Total), nil
}

// allocate truncates each share to currency scale and hands the leftover
// units to the shares with the largest truncated remainders (earlier share on ties)
func allocate(total decimal.Decimal, percentages []decimal.Decimal) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(percentages))
	remainders := make([]decimal.Decimal, len(percentages))
	for i, p := range percentages {
		exact := total.Mul(p).Div(domain.Hundred)
		amounts[i] = exact.Truncate(domain.Scale)
		remainders[i] = exact.Sub(amounts[i])
	}

	order := make([]int, len(amounts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return remainders[b].Cmp(remainders[a])
	})

	leftover := total.Sub(domain.Sum(amounts...)).Div(domain.Epsilon).IntPart()
	for k := int64(0); k < leftover; k++ {
		i := order[int(k)%len(order)]
		amounts[i] = amounts[i].Add(domain.Epsilon)
	}
	return amounts
}

// resolvePercentages returns one percentage per share. With AutoCompleteLast
// the final share receives whatever the others leave of 100; a percentage given
// for it must agree.
func resolvePercentages(req Request) ([]decimal.Decimal, error) {
	percentages := make([]decimal.Decimal, len(req.Shares))
	sum := decimal.Zero

	for i, share := range req.Shares {
		if req.AutoCompleteLast && i == len(req.Shares)-1 {
			break
		}
		if share.Percentage == nil {
			return nil, ErrMissingPercentage
		}
		p := *share.Percentage
		if p.IsNegative() || p.GreaterThan(domain.Hundred) {
			return nil, ErrPercentageOutOfRange
		}
		percentages[i] = p
		sum = sum.Add(p)
	}

	if req.AutoCompleteLast {
		last := domain.Hundred.Sub(sum)
		if last.IsNegative() {
			return nil, ErrInvalidPercentages
		}
		if given := req.Shares[len(req.Shares)-1].Percentage; given != nil && !given.Equal(last) {
			return nil, ErrCompletedPercentage
		}
		percentages[len(percentages)-1] = last
		return percentages, nil
	}

	if !sum.Equal(domain.Hundred) {
		return nil, ErrInvalidPercentages
	}
	return percentages, nil
}
