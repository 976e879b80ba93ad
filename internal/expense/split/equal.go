package split

import "github.com/fkhayef/splitledger/internal/domain"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() domain.Strategy {
	return domain.StrategyEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(req Request) error {
	if len(req.Members) == 0 {
		return ErrNoParticipants
	}
	if err := validateTotal(req.Total); err != nil {
		return err
	}
	_, err := lookup(req.Members)
	return err
}

// Calculate divides the total evenly among all members.
// Remainder cents go to the first members in order.
func (s *EqualStrategy) Calculate(req Request) ([]domain.Split, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	byID, _ := lookup(req.Members)
	amounts := divideEvenly(req.Total, len(req.Members))

	return buildSplits(memberIDs(req.Members), amounts, byID, req.Total), nil
}
