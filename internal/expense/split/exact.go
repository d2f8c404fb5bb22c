package split

import "github.com/shopspring/decimal"

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Policy returns the split policy identifier
func (s *ExactStrategy) Policy() Policy {
	return PolicyExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	if err := validateTotal(total); err != nil {
		return err
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		if !p.Amount.Equal(p.Amount.Round(2)) {
			return ErrSubCentPrecision
		}
		sum = sum.Add(*p.Amount)
	}

	if sum.Sub(total).Abs().GreaterThan(mismatchTolerance) {
		return &MismatchError{Expected: total, Actual: sum}
	}

	return nil
}

// Calculate returns the amounts specified for each participant
func (s *ExactStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			UserID: p.UserID,
			Amount: *p.Amount,
		}
	}

	return shares, nil
}
