package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy defines how an expense is divided among its participants
type Policy string

const (
	PolicyEqual Policy = "EQUAL"
	PolicyExact Policy = "EXACT"
)

// Participant represents one user taking part in a split, with an explicit
// amount when the policy requires one
type Participant struct {
	UserID int64            `json:"user_id"`
	Amount *decimal.Decimal `json:"amount,omitempty"` // For EXACT policy
}

// Share represents the calculated owed amount for a single participant
type Share struct {
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Strategy is the interface that all split policies must implement
type Strategy interface {
	// Calculate computes the owed amounts for all participants. The returned
	// shares are in participant input order and sum to the total exactly.
	Calculate(total decimal.Decimal, participants []Participant) ([]Share, error)

	// Policy returns the policy identifier for this strategy
	Policy() Policy

	// Validate checks if the inputs are valid for this strategy
	Validate(total decimal.Decimal, participants []Participant) error
}

// Factory creates split strategies based on the requested policy
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation for the policy
func (f *Factory) Create(policy Policy) (Strategy, error) {
	switch policy {
	case PolicyEqual:
		return &EqualStrategy{}, nil
	case PolicyExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split policy: %s", policy)
	}
}

// CreateFromString creates a strategy from a string policy (useful for API requests)
func (f *Factory) CreateFromString(policy string) (Strategy, error) {
	return f.Create(Policy(policy))
}

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrSubCentPrecision = errors.New("amount cannot be finer than the minor currency unit")
	ErrNoParticipants   = errors.New("at least one participant is required")
	ErrMissingAmount    = errors.New("exact amount required for all participants")
	ErrNegativeAmount   = errors.New("split amounts cannot be negative")
)

// MismatchError reports an exact split whose amounts do not add up to the
// expense total. It carries both sums so the caller can correct the input.
type MismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("split amounts sum to %s, expected %s", e.Actual, e.Expected)
}

// mismatchTolerance absorbs client-side floating point rounding when
// validating exact splits. Stored amounts are still exact decimals.
var mismatchTolerance = decimal.New(1, -2)

// validateTotal rejects non-positive totals and totals carrying sub-cent digits
func validateTotal(total decimal.Decimal) error {
	if total.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !total.Equal(total.Round(2)) {
		return ErrSubCentPrecision
	}
	return nil
}
