package balance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/settleup/internal/expense"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/settlement"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeGroups struct {
	group   *group.Group
	members []*group.Member
}

func (f *fakeGroups) GetByID(ctx context.Context, id int64) (*group.Group, error) {
	if f.group == nil || f.group.ID != id {
		return nil, nil
	}
	return f.group, nil
}

func (f *fakeGroups) GetMembers(ctx context.Context, groupID int64) ([]*group.Member, error) {
	return f.members, nil
}

type fakeExpenses struct {
	expenses []*expense.Expense
}

func (f *fakeExpenses) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*expense.Expense, error) {
	return f.expenses, nil
}

type fakeSettlements struct {
	settlements []*settlement.Settlement
}

func (f *fakeSettlements) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*settlement.Settlement, error) {
	return f.settlements, nil
}

func newTestService(expenses []*expense.Expense, settlements []*settlement.Settlement) *Service {
	groups := &fakeGroups{
		group: &group.Group{ID: 1, Name: "Flat 4B"},
		members: []*group.Member{
			{GroupID: 1, UserID: 1, Name: "Alice"},
			{GroupID: 1, UserID: 2, Name: "Bob"},
			{GroupID: 1, UserID: 3, Name: "Carol"},
		},
	}
	return NewService(groups, &fakeExpenses{expenses: expenses}, &fakeSettlements{settlements: settlements})
}

func TestGetGroupSummary(t *testing.T) {
	expenses := []*expense.Expense{
		{
			ID:      1,
			GroupID: 1,
			PayerID: 1,
			Amount:  d("100.00"),
			Splits: []*expense.Split{
				{UserID: 1, Amount: d("33.34")},
				{UserID: 2, Amount: d("33.33")},
				{UserID: 3, Amount: d("33.33")},
			},
		},
	}
	settlements := []*settlement.Settlement{
		{ID: 1, GroupID: 1, PayerID: 3, PayeeID: 2, Amount: d("10.00")},
	}

	summary, err := newTestService(expenses, settlements).GetGroupSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.GroupID)
	assert.False(t, summary.Settled)

	require.Len(t, summary.Balances, 3)
	assert.Equal(t, "Alice", summary.Balances[0].Name)
	assert.True(t, summary.Balances[0].Amount.Equal(d("66.66")), "got %s", summary.Balances[0].Amount)
	assert.Equal(t, "Bob", summary.Balances[1].Name)
	assert.True(t, summary.Balances[1].Amount.Equal(d("-43.33")), "got %s", summary.Balances[1].Amount)
	assert.Equal(t, "Carol", summary.Balances[2].Name)
	assert.True(t, summary.Balances[2].Amount.Equal(d("-23.33")), "got %s", summary.Balances[2].Amount)

	require.Len(t, summary.SimplifiedDebts, 2)
	assert.Equal(t, "Bob", summary.SimplifiedDebts[0].FromUserName)
	assert.Equal(t, "Alice", summary.SimplifiedDebts[0].ToUserName)
	assert.True(t, summary.SimplifiedDebts[0].Amount.Equal(d("43.33")))
	assert.Equal(t, "Carol", summary.SimplifiedDebts[1].FromUserName)
	assert.Equal(t, "Alice", summary.SimplifiedDebts[1].ToUserName)
	assert.True(t, summary.SimplifiedDebts[1].Amount.Equal(d("23.33")))
}

func TestGetGroupSummarySettlementClearsMember(t *testing.T) {
	// Alice pays 90 split equally; Bob then settles his 30 directly with
	// Alice. Bob lands on exactly zero and one payment from Carol remains.
	expenses := []*expense.Expense{
		{
			ID:      1,
			GroupID: 1,
			PayerID: 1,
			Amount:  d("90.00"),
			Splits: []*expense.Split{
				{UserID: 1, Amount: d("30.00")},
				{UserID: 2, Amount: d("30.00")},
				{UserID: 3, Amount: d("30.00")},
			},
		},
	}
	settlements := []*settlement.Settlement{
		{ID: 1, GroupID: 1, PayerID: 2, PayeeID: 1, Amount: d("30.00")},
	}

	summary, err := newTestService(expenses, settlements).GetGroupSummary(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, summary.Balances, 3)
	assert.True(t, summary.Balances[0].Amount.Equal(d("30.00")), "Alice: got %s", summary.Balances[0].Amount)
	assert.True(t, summary.Balances[1].Amount.IsZero(), "Bob: got %s", summary.Balances[1].Amount)
	assert.True(t, summary.Balances[2].Amount.Equal(d("-30.00")), "Carol: got %s", summary.Balances[2].Amount)

	require.Len(t, summary.SimplifiedDebts, 1)
	assert.Equal(t, int64(3), summary.SimplifiedDebts[0].FromUserID)
	assert.Equal(t, "Carol", summary.SimplifiedDebts[0].FromUserName)
	assert.Equal(t, int64(1), summary.SimplifiedDebts[0].ToUserID)
	assert.Equal(t, "Alice", summary.SimplifiedDebts[0].ToUserName)
	assert.True(t, summary.SimplifiedDebts[0].Amount.Equal(d("30.00")))
	assert.False(t, summary.Settled)
}

func TestGetGroupSummarySettledGroup(t *testing.T) {
	summary, err := newTestService(nil, nil).GetGroupSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, summary.Settled)
	assert.Empty(t, summary.SimplifiedDebts)
	assert.NotNil(t, summary.SimplifiedDebts)

	// Members with zero balance still appear
	require.Len(t, summary.Balances, 3)
	for _, entry := range summary.Balances {
		assert.True(t, entry.Amount.IsZero())
	}
}

func TestGetGroupSummaryGroupNotFound(t *testing.T) {
	_, err := newTestService(nil, nil).GetGroupSummary(context.Background(), 42)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestGetGroupSummaryRefusesInconsistentData(t *testing.T) {
	// A split referencing a non-member means the stored data is corrupt
	expenses := []*expense.Expense{
		{
			ID:      1,
			GroupID: 1,
			PayerID: 1,
			Amount:  d("10.00"),
			Splits: []*expense.Split{
				{UserID: 99, Amount: d("10.00")},
			},
		},
	}

	_, err := newTestService(expenses, nil).GetGroupSummary(context.Background(), 1)
	require.Error(t, err)

	var consistency *ledger.ConsistencyError
	assert.ErrorAs(t, err, &consistency)
}
