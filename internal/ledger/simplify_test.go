package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	// A is owed 66.66, B owes 43.33, C owes 23.33
	balances := map[int64]decimal.Decimal{
		1: d("66.66"),
		2: d("-43.33"),
		3: d("-23.33"),
	}

	debts := Simplify(balances)
	require.Len(t, debts, 2)

	// Largest debtor first
	assert.Equal(t, int64(2), debts[0].FromUserID)
	assert.Equal(t, int64(1), debts[0].ToUserID)
	assert.True(t, debts[0].Amount.Equal(d("43.33")), "got %s", debts[0].Amount)

	assert.Equal(t, int64(3), debts[1].FromUserID)
	assert.Equal(t, int64(1), debts[1].ToUserID)
	assert.True(t, debts[1].Amount.Equal(d("23.33")), "got %s", debts[1].Amount)
}

func TestSimplifyCollapsesChains(t *testing.T) {
	// A owes B 30 and B owes C 30; one payment from A to C settles both
	balances := map[int64]decimal.Decimal{
		1: d("-30.00"),
		2: d("0"),
		3: d("30.00"),
	}

	debts := Simplify(balances)
	require.Len(t, debts, 1)
	assert.Equal(t, int64(1), debts[0].FromUserID)
	assert.Equal(t, int64(3), debts[0].ToUserID)
	assert.True(t, debts[0].Amount.Equal(d("30.00")))
}

func TestSimplifyClearsEveryBalance(t *testing.T) {
	balances := map[int64]decimal.Decimal{
		1: d("66.66"),
		2: d("-43.33"),
		3: d("-23.33"),
		4: d("15.50"),
		5: d("-15.50"),
	}

	debts := Simplify(balances)

	// Replaying the plan as settlements drives every balance to zero
	remaining := make(map[int64]decimal.Decimal, len(balances))
	for id, b := range balances {
		remaining[id] = b
	}
	for _, debt := range debts {
		remaining[debt.FromUserID] = remaining[debt.FromUserID].Add(debt.Amount)
		remaining[debt.ToUserID] = remaining[debt.ToUserID].Sub(debt.Amount)
	}
	for id, b := range remaining {
		assert.True(t, b.Abs().LessThan(d("0.01")), "user %d left with %s", id, b)
	}
}

func TestSimplifyPaymentCountBound(t *testing.T) {
	balances := map[int64]decimal.Decimal{
		1: d("10.00"),
		2: d("20.00"),
		3: d("-5.00"),
		4: d("-10.00"),
		5: d("-15.00"),
	}

	debts := Simplify(balances)
	assert.LessOrEqual(t, len(debts), 4, "at most n-1 payments for n non-zero balances")
}

func TestSimplifyIsDeterministic(t *testing.T) {
	balances := map[int64]decimal.Decimal{
		1: d("25.00"),
		2: d("25.00"),
		3: d("-25.00"),
		4: d("-25.00"),
	}

	first := Simplify(balances)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Simplify(balances))
	}

	// Equal amounts tie-break by ascending user ID
	require.Len(t, first, 2)
	assert.Equal(t, int64(3), first[0].FromUserID)
	assert.Equal(t, int64(1), first[0].ToUserID)
	assert.Equal(t, int64(4), first[1].FromUserID)
	assert.Equal(t, int64(2), first[1].ToUserID)
}

func TestSimplifyDropsResidualCents(t *testing.T) {
	balances := map[int64]decimal.Decimal{
		1: d("0.005"),
		2: d("-0.005"),
	}

	debts := Simplify(balances)
	assert.Empty(t, debts)
	assert.NotNil(t, debts)
}

func TestSimplifySettledGroup(t *testing.T) {
	balances := map[int64]decimal.Decimal{
		1: decimal.Zero,
		2: decimal.Zero,
	}

	debts := Simplify(balances)
	assert.Empty(t, debts)
	assert.NotNil(t, debts)
}
