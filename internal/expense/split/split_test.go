package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory()

	equal, err := f.Create(PolicyEqual)
	require.NoError(t, err)
	assert.Equal(t, PolicyEqual, equal.Policy())

	exact, err := f.CreateFromString("EXACT")
	require.NoError(t, err)
	assert.Equal(t, PolicyExact, exact.Policy())

	_, err = f.CreateFromString("PERCENTAGE")
	assert.Error(t, err)
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		want         []string
	}{
		{
			name:         "divides evenly",
			total:        "90.00",
			participants: []Participant{{UserID: 1}, {UserID: 2}, {UserID: 3}},
			want:         []string{"30", "30", "30"},
		},
		{
			name:         "leftover cents go to the first participants",
			total:        "100.00",
			participants: []Participant{{UserID: 1}, {UserID: 2}, {UserID: 3}},
			want:         []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "two leftover cents",
			total:        "0.05",
			participants: []Participant{{UserID: 7}, {UserID: 8}, {UserID: 9}},
			want:         []string{"0.02", "0.02", "0.01"},
		},
		{
			name:         "single participant owes everything",
			total:        "12.34",
			participants: []Participant{{UserID: 4}},
			want:         []string{"12.34"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := (&EqualStrategy{}).Calculate(d(tt.total), tt.participants)
			require.NoError(t, err)
			require.Len(t, shares, len(tt.want))

			sum := decimal.Zero
			for i, share := range shares {
				assert.Equal(t, tt.participants[i].UserID, share.UserID)
				assert.True(t, share.Amount.Equal(d(tt.want[i])),
					"share %d: got %s, want %s", i, share.Amount, tt.want[i])
				sum = sum.Add(share.Amount)
			}
			assert.True(t, sum.Equal(d(tt.total)), "shares must sum to the total")
		})
	}
}

func TestEqualSplitIsDeterministic(t *testing.T) {
	participants := []Participant{{UserID: 5}, {UserID: 2}, {UserID: 9}}
	first, err := (&EqualStrategy{}).Calculate(d("100.00"), participants)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := (&EqualStrategy{}).Calculate(d("100.00"), participants)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// The extra cent follows input order, not user ID
	assert.True(t, first[0].Amount.Equal(d("33.34")))
	assert.Equal(t, int64(5), first[0].UserID)
}

func TestEqualSplitValidation(t *testing.T) {
	s := &EqualStrategy{}

	_, err := s.Calculate(d("0"), []Participant{{UserID: 1}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Calculate(d("-5.00"), []Participant{{UserID: 1}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Calculate(d("10.001"), []Participant{{UserID: 1}})
	assert.ErrorIs(t, err, ErrSubCentPrecision)

	_, err = s.Calculate(d("10.00"), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestExactSplit(t *testing.T) {
	s := &ExactStrategy{}

	shares, err := s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("60.00")},
		{UserID: 2, Amount: dp("40.00")},
	})
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.True(t, shares[0].Amount.Equal(d("60.00")))
	assert.True(t, shares[1].Amount.Equal(d("40.00")))
}

func TestExactSplitMismatch(t *testing.T) {
	s := &ExactStrategy{}

	_, err := s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("40.00")},
		{UserID: 2, Amount: dp("50.00")},
	})
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, mismatch.Expected.Equal(d("100.00")))
	assert.True(t, mismatch.Actual.Equal(d("90.00")))
}

func TestExactSplitToleratesOneCentDrift(t *testing.T) {
	s := &ExactStrategy{}

	shares, err := s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("33.33")},
		{UserID: 2, Amount: dp("33.33")},
		{UserID: 3, Amount: dp("33.33")},
	})
	require.NoError(t, err)
	require.Len(t, shares, 3)
}

func TestExactSplitRejectsSubCentAmounts(t *testing.T) {
	s := &ExactStrategy{}

	// The raw amounts sum to the total exactly, but rounding them to whole
	// cents would drift the stored sum to 100.02
	_, err := s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("24.995")},
		{UserID: 2, Amount: dp("24.995")},
		{UserID: 3, Amount: dp("25.005")},
		{UserID: 4, Amount: dp("25.005")},
	})
	assert.ErrorIs(t, err, ErrSubCentPrecision)

	_, err = s.Calculate(d("10.00"), []Participant{
		{UserID: 1, Amount: dp("9.999")},
		{UserID: 2, Amount: dp("0.001")},
	})
	assert.ErrorIs(t, err, ErrSubCentPrecision)
}

func TestExactSplitValidation(t *testing.T) {
	s := &ExactStrategy{}

	_, err := s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("100.00")},
		{UserID: 2},
	})
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = s.Calculate(d("100.00"), []Participant{
		{UserID: 1, Amount: dp("110.00")},
		{UserID: 2, Amount: dp("-10.00")},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = s.Calculate(d("100.00"), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}
