package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/settleup/internal/expense/split"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/settlement"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStore struct {
	expenses     map[int64]*Expense
	createdWith  []split.Share
	deletedIDs   []int64
	activeByTime []*Expense
}

func (f *fakeStore) CreateWithSplits(ctx context.Context, payerID int64, req *CreateExpenseRequest, shares []split.Share) (*Expense, error) {
	f.createdWith = shares
	e := &Expense{
		ID:          1,
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Description: req.Description,
		Amount:      req.Amount,
		SplitType:   split.Policy(req.SplitType),
		CreatedAt:   time.Now(),
	}
	for i, share := range shares {
		e.Splits = append(e.Splits, &Split{ID: int64(i + 1), ExpenseID: 1, UserID: share.UserID, Amount: share.Amount})
	}
	return e, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Expense, error) {
	return f.expenses[id], nil
}

func (f *fakeStore) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	return f.activeByTime, len(f.activeByTime), nil
}

func (f *fakeStore) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*Expense, error) {
	return f.activeByTime, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, id int64) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeGroups struct {
	group     *group.Group
	memberIDs []int64
}

func (f *fakeGroups) GetByID(ctx context.Context, id int64) (*group.Group, error) {
	if f.group == nil || f.group.ID != id {
		return nil, nil
	}
	return f.group, nil
}

func (f *fakeGroups) GetMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	return f.memberIDs, nil
}

type fakeSettlements struct {
	settlements []*settlement.Settlement
}

func (f *fakeSettlements) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*settlement.Settlement, error) {
	return f.settlements, nil
}

func newTestService(store *fakeStore, settlements []*settlement.Settlement) *Service {
	groups := &fakeGroups{
		group:     &group.Group{ID: 1, Name: "Flat 4B"},
		memberIDs: []int64{1, 2, 3},
	}
	return NewService(store, groups, &fakeSettlements{settlements: settlements}, split.NewFactory())
}

func TestCreateEqualSplit(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil)

	expense, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		GroupID:     1,
		Description: "Groceries",
		Amount:      d("100.00"),
		SplitType:   "EQUAL",
		Participants: []*split.Participant{
			{UserID: 1}, {UserID: 2}, {UserID: 3},
		},
	})
	require.NoError(t, err)

	require.Len(t, store.createdWith, 3)
	assert.True(t, store.createdWith[0].Amount.Equal(d("33.34")))
	assert.True(t, store.createdWith[1].Amount.Equal(d("33.33")))
	assert.True(t, store.createdWith[2].Amount.Equal(d("33.33")))

	// The payer keeps their own share when listed as a participant
	assert.Equal(t, int64(1), expense.Splits[0].UserID)
}

func TestCreateUnknownSplitType(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	_, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		GroupID:      1,
		Description:  "Groceries",
		Amount:       d("100.00"),
		SplitType:    "PERCENTAGE",
		Participants: []*split.Participant{{UserID: 1}},
	})
	assert.Error(t, err)
}

func TestCreateGroupNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	_, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		GroupID:      42,
		Description:  "Groceries",
		Amount:       d("100.00"),
		SplitType:    "EQUAL",
		Participants: []*split.Participant{{UserID: 1}},
	})
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestCreateRejectsNonMembers(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	_, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		GroupID:     1,
		Description: "Groceries",
		Amount:      d("100.00"),
		SplitType:   "EQUAL",
		Participants: []*split.Participant{
			{UserID: 2}, {UserID: 99},
		},
	})
	require.Error(t, err)

	var nonMember *NonMemberError
	require.ErrorAs(t, err, &nonMember)
	assert.Equal(t, []int64{99}, nonMember.UserIDs)
}

func TestCreateExactMismatchPropagates(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	forty := d("40.00")
	fifty := d("50.00")
	_, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		GroupID:     1,
		Description: "Dinner",
		Amount:      d("100.00"),
		SplitType:   "EXACT",
		Participants: []*split.Participant{
			{UserID: 1, Amount: &forty},
			{UserID: 2, Amount: &fifty},
		},
	})
	require.Error(t, err)

	var mismatch *split.MismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestDeleteOnlyByPayer(t *testing.T) {
	store := &fakeStore{
		expenses: map[int64]*Expense{
			7: {ID: 7, GroupID: 1, PayerID: 2, Amount: d("10.00")},
		},
	}
	svc := newTestService(store, nil)

	err := svc.Delete(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrNotPayer)
	assert.Empty(t, store.deletedIDs)

	err = svc.Delete(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, store.deletedIDs)
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	err := svc.Delete(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestGroupHistoryMergesAndSorts(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		activeByTime: []*Expense{
			{ID: 1, GroupID: 1, PayerID: 1, Description: "Groceries", Amount: d("60.00"), PayerName: "Alice", CreatedAt: base},
			{ID: 2, GroupID: 1, PayerID: 2, Description: "Taxi", Amount: d("20.00"), PayerName: "Bob", CreatedAt: base.Add(2 * time.Hour)},
		},
	}
	settlements := []*settlement.Settlement{
		{ID: 5, GroupID: 1, PayerID: 3, PayeeID: 1, Amount: d("15.00"), PayerName: "Carol", PayeeName: "Alice", CreatedAt: base.Add(time.Hour)},
	}
	svc := newTestService(store, settlements)

	history, err := svc.GroupHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "EXPENSE", history[0].Type)
	assert.Equal(t, "Taxi", history[0].Description)

	assert.Equal(t, "SETTLEMENT", history[1].Type)
	assert.Equal(t, "Carol paid Alice", history[1].Description)

	assert.Equal(t, "EXPENSE", history[2].Type)
	assert.Equal(t, "Groceries", history[2].Description)
}

func TestGroupHistoryGroupNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	_, err := svc.GroupHistory(context.Background(), 42)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}
