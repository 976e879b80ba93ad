package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
)

// Share is a caller-supplied entry for one member of a PERCENTAGE or EXACT split
type Share struct {
	MemberID   string           `json:"member_id" yaml:"member_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty" yaml:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *decimal.Decimal `json:"amount,omitempty" yaml:"amount,omitempty"`         // For EXACT split
}

// Request holds the inputs of a split calculation.
// Members are the participants of an EQUAL split and the set of
// valid references for every other strategy.
type Request struct {
	Total            decimal.Decimal
	Members          []domain.Member
	Shares           []Share
	Items            []domain.Item
	AutoCompleteLast bool
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the split amounts for all participants
	Calculate(req Request) ([]domain.Split, error)

	// Type returns the type identifier for this strategy
	Type() domain.Strategy

	// Validate checks if the inputs are valid for this strategy
	Validate(req Request) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType domain.Strategy) (Strategy, error) {
	switch splitType {
	case domain.StrategyEqual:
		return &EqualStrategy{}, nil
	case domain.StrategyPercentage:
		return &PercentageStrategy{}, nil
	case domain.StrategyExact:
		return &ExactStrategy{}, nil
	case domain.StrategyItemWise:
		return &ItemWiseStrategy{}, nil
	default:
		return nil, domain.NewValidationError("split_type", fmt.Sprintf("unknown split type: %s", splitType))
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(domain.Strategy(splitType))
}

// Compute divides req.Total with the named strategy
func (f *Factory) Compute(splitType domain.Strategy, req Request) ([]domain.Split, error) {
	strategy, err := f.Create(splitType)
	if err != nil {
		return nil, err
	}
	return strategy.Calculate(req)
}

var (
	ErrNoParticipants       = &domain.SplitInputError{Reason: "at least one participant is required"}
	ErrInvalidTotal         = &domain.SplitInputError{Reason: "total amount must be positive"}
	ErrSubUnitTotal         = &domain.SplitInputError{Reason: "total amount has more than two decimal places"}
	ErrNegativeAmount       = &domain.SplitInputError{Reason: "amounts cannot be negative"}
	ErrSubUnitAmount        = &domain.SplitInputError{Reason: "amounts cannot have more than two decimal places"}
	ErrMissingExactAmount   = &domain.SplitInputError{Reason: "exact amount required for all participants"}
	ErrMissingPercentage    = &domain.SplitInputError{Reason: "percentage value required for all participants"}
	ErrPercentageOutOfRange = &domain.SplitInputError{Reason: "percentage must be between 0 and 100"}
	ErrInvalidPercentages   = &domain.SplitInputError{Reason: "percentages must sum to 100"}
	ErrCompletedPercentage  = &domain.SplitInputError{Reason: "last percentage does not match the remainder of 100"}
	ErrNoItems              = &domain.SplitInputError{Reason: "at least one item is required"}
)

func validateTotal(total decimal.Decimal) error {
	if !total.IsPositive() {
		return ErrInvalidTotal
	}
	if !domain.IsCurrencyAmount(total) {
		return ErrSubUnitTotal
	}
	return nil
}

func duplicateEntry(memberID string) error {
	return &domain.SplitInputError{Reason: fmt.Sprintf("member %q listed more than once", memberID)}
}

// lookup indexes members by id, rejecting duplicates
func lookup(members []domain.Member) (map[string]domain.Member, error) {
	byID := make(map[string]domain.Member, len(members))
	for _, m := range members {
		if _, dup := byID[m.ID]; dup {
			return nil, duplicateEntry(m.ID)
		}
		byID[m.ID] = m
	}
	return byID, nil
}

// checkShares verifies that every share references a known member exactly once
func checkShares(req Request) error {
	if len(req.Shares) == 0 {
		return ErrNoParticipants
	}
	byID, err := lookup(req.Members)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(req.Shares))
	for _, s := range req.Shares {
		if _, ok := byID[s.MemberID]; !ok {
			return &domain.UnknownMemberError{MemberID: s.MemberID}
		}
		if seen[s.MemberID] {
			return duplicateEntry(s.MemberID)
		}
		seen[s.MemberID] = true
	}
	return nil
}

// divideEvenly splits total into n parts at currency scale.
// Leftover units go one at a time to the leading parts, so the parts
// sum to total exactly and differ by at most one unit.
func divideEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).Truncate(domain.Scale)
	leftover := total.Sub(base.Mul(count)).Div(domain.Epsilon).IntPart()

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = base
		if int64(i) < leftover {
			parts[i] = base.Add(domain.Epsilon)
		}
	}
	return parts
}

// absorbResidual adds target - sum(amounts) to the largest amount (first on ties)
func absorbResidual(amounts []decimal.Decimal, target decimal.Decimal) {
	if len(amounts) == 0 {
		return
	}
	residual := target.Sub(domain.Sum(amounts...))
	if residual.IsZero() {
		return
	}
	largest := 0
	for i, a := range amounts {
		if a.GreaterThan(amounts[largest]) {
			largest = i
		}
	}
	amounts[largest] = amounts[largest].Add(residual)
}

// buildSplits pairs member ids with their amounts
func buildSplits(ids []string, amounts []decimal.Decimal, byID map[string]domain.Member, total decimal.Decimal) []domain.Split {
	splits := make([]domain.Split, len(ids))
	for i, id := range ids {
		splits[i] = domain.Split{
			MemberID:   id,
			MemberName: byID[id].Name,
			Amount:     amounts[i],
			Percentage: domain.PercentageOf(amounts[i], total),
		}
	}
	return splits
}

func shareIDs(shares []Share) []string {
	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.MemberID
	}
	return ids
}

func memberIDs(members []domain.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
