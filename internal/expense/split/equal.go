package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense evenly among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Policy returns the split policy identifier
func (s *EqualStrategy) Policy() Policy {
	return PolicyEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []Participant) error {
	if err := validateTotal(total); err != nil {
		return err
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// Calculate divides the total evenly among all participants. Division is done
// in whole cents: everyone gets the floor share, and the leftover cents are
// handed out one at a time in participant input order. That keeps the result
// deterministic and makes the shares sum to the total exactly.
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	cents := total.Shift(2).IntPart()
	count := int64(len(participants))
	base := cents / count
	remainder := cents % count

	shares := make([]Share, len(participants))
	for i, p := range participants {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = Share{
			UserID: p.UserID,
			Amount: decimal.New(c, -2),
		}
	}

	return shares, nil
}
