package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/group"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrInvalidAmount      = errors.New("settlement amount must be greater than zero")
	ErrSubCentPrecision   = errors.New("settlement amount cannot be finer than the minor currency unit")
	ErrSelfSettlement     = errors.New("payer and payee must be different users")
	ErrNotPayer           = errors.New("only the payer can delete a settlement")
)

// Store is the persistence surface the settlement service depends on
type Store interface {
	Create(ctx context.Context, payerID int64, req *CreateSettlementRequest) (*Settlement, error)
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Settlement, int, error)
	SoftDelete(ctx context.Context, id int64) error
}

// GroupStore resolves group existence and membership
type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Service handles settlement business logic
type Service struct {
	repo   Store
	groups GroupStore
}

// NewService creates a new settlement service with dependencies injected
func NewService(repo Store, groups GroupStore) *Service {
	return &Service{repo: repo, groups: groups}
}

// Record validates and persists a repayment from the acting user to the payee
func (s *Service) Record(ctx context.Context, payerID int64, req *CreateSettlementRequest) (*Settlement, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, ErrSubCentPrecision
	}
	if payerID == req.PayeeID {
		return nil, ErrSelfSettlement
	}

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}

	memberIDs, err := s.groups.GetMemberIDs(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	members := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}
	if !members[payerID] || !members[req.PayeeID] {
		return nil, group.ErrMemberNotFound
	}

	return s.repo.Create(ctx, payerID, req)
}

// GetByID retrieves a settlement
func (s *Service) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByGroupID retrieves settlements for a group, paginated
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// Delete soft-deletes a settlement. Only the payer may delete.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if settlement == nil {
		return ErrSettlementNotFound
	}

	if settlement.PayerID != userID {
		return ErrNotPayer
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettlementNotFound
		}
		return err
	}
	return nil
}
