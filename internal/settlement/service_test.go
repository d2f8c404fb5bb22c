package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/settleup/internal/group"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStore struct {
	settlements map[int64]*Settlement
	created     *Settlement
	deletedIDs  []int64
}

func (f *fakeStore) Create(ctx context.Context, payerID int64, req *CreateSettlementRequest) (*Settlement, error) {
	f.created = &Settlement{
		ID:        1,
		GroupID:   req.GroupID,
		PayerID:   payerID,
		PayeeID:   req.PayeeID,
		Amount:    req.Amount,
		CreatedAt: time.Now(),
	}
	return f.created, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	return f.settlements[id], nil
}

func (f *fakeStore) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Settlement, int, error) {
	return nil, 0, nil
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

func newTestService(store *fakeStore) *Service {
	groups := &fakeGroups{
		group:     &group.Group{ID: 1, Name: "Flat 4B"},
		memberIDs: []int64{1, 2, 3},
	}
	return NewService(store, groups)
}

func TestRecord(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	settlement, err := svc.Record(context.Background(), 3, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("10.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), settlement.PayerID)
	assert.Equal(t, int64(2), settlement.PayeeID)
	assert.True(t, settlement.Amount.Equal(d("10.00")))
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Record(context.Background(), 3, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("0"),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(context.Background(), 3, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("-5.00"),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordRejectsSubCentAmount(t *testing.T) {
	svc := newTestService(&fakeStore{})

	// 10.005 would be silently rounded by the NUMERIC(12,2) column
	_, err := svc.Record(context.Background(), 3, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("10.005"),
	})
	assert.ErrorIs(t, err, ErrSubCentPrecision)
}

func TestRecordRejectsSelfSettlement(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Record(context.Background(), 2, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("10.00"),
	})
	assert.ErrorIs(t, err, ErrSelfSettlement)
}

func TestRecordGroupNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Record(context.Background(), 1, &CreateSettlementRequest{
		GroupID: 42,
		PayeeID: 2,
		Amount:  d("10.00"),
	})
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestRecordRequiresBothPartiesToBeMembers(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Record(context.Background(), 1, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 99,
		Amount:  d("10.00"),
	})
	assert.ErrorIs(t, err, group.ErrMemberNotFound)

	_, err = svc.Record(context.Background(), 99, &CreateSettlementRequest{
		GroupID: 1,
		PayeeID: 2,
		Amount:  d("10.00"),
	})
	assert.ErrorIs(t, err, group.ErrMemberNotFound)
}

func TestDeleteOnlyByPayer(t *testing.T) {
	store := &fakeStore{
		settlements: map[int64]*Settlement{
			7: {ID: 7, GroupID: 1, PayerID: 3, PayeeID: 2, Amount: d("10.00")},
		},
	}
	svc := newTestService(store)

	err := svc.Delete(context.Background(), 7, 2)
	assert.ErrorIs(t, err, ErrNotPayer)
	assert.Empty(t, store.deletedIDs)

	err = svc.Delete(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, store.deletedIDs)
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{})

	err := svc.Delete(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrSettlementNotFound)
}
