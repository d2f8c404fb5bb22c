package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fkhayef/settleup/internal/expense/split"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/settlement"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotPayer        = errors.New("only the payer can delete an expense")
)

// NonMemberError reports users referenced by an expense who are not members
// of the target group
type NonMemberError struct {
	GroupID int64
	UserIDs []int64
}

func (e *NonMemberError) Error() string {
	return fmt.Sprintf("users %v are not members of group %d", e.UserIDs, e.GroupID)
}

// Store is the persistence surface the expense service depends on
type Store interface {
	CreateWithSplits(ctx context.Context, payerID int64, req *CreateExpenseRequest, shares []split.Share) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
	ListActiveByGroupID(ctx context.Context, groupID int64) ([]*Expense, error)
	SoftDelete(ctx context.Context, id int64) error
}

// GroupStore resolves group existence and membership
type GroupStore interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// SettlementSource lists a group's active settlements, used for the
// combined activity history
type SettlementSource interface {
	ListActiveByGroupID(ctx context.Context, groupID int64) ([]*settlement.Settlement, error)
}

// Service handles expense business logic
type Service struct {
	repo         Store
	groups       GroupStore
	settlements  SettlementSource
	splitFactory *split.Factory
}

// NewService creates a new expense service with dependencies injected
func NewService(repo Store, groups GroupStore, settlements SettlementSource, splitFactory *split.Factory) *Service {
	return &Service{
		repo:         repo,
		groups:       groups,
		settlements:  settlements,
		splitFactory: splitFactory,
	}
}

// Create validates the request, calculates the splits with the requested
// policy and persists expense plus splits as one atomic unit
func (s *Service) Create(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*Expense, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
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

	var nonMembers []int64
	seen := make(map[int64]bool)
	if !members[payerID] {
		nonMembers = append(nonMembers, payerID)
		seen[payerID] = true
	}
	for _, p := range req.Participants {
		if !members[p.UserID] && !seen[p.UserID] {
			nonMembers = append(nonMembers, p.UserID)
			seen[p.UserID] = true
		}
	}
	if len(nonMembers) > 0 {
		return nil, &NonMemberError{GroupID: req.GroupID, UserIDs: nonMembers}
	}

	participants := make([]split.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = *p
	}

	shares, err := strategy.Calculate(req.Amount, participants)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateWithSplits(ctx, payerID, req, shares)
}

// GetByID retrieves an expense with its splits
func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListByGroupID retrieves expenses for a group, paginated
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// GroupHistory returns a group's expenses and settlements merged into one
// activity feed, newest first
func (s *Service) GroupHistory(ctx context.Context, groupID int64) ([]*HistoryEntryResponse, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}

	expenses, err := s.repo.ListActiveByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.ListActiveByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	type datedEntry struct {
		at    time.Time
		entry *HistoryEntryResponse
	}

	entries := make([]datedEntry, 0, len(expenses)+len(settlements))
	for _, e := range expenses {
		resp := e.ToResponse()
		entries = append(entries, datedEntry{
			at: e.CreatedAt,
			entry: &HistoryEntryResponse{
				ID:          e.ID,
				Type:        "EXPENSE",
				Description: e.Description,
				Amount:      e.Amount,
				PayerName:   e.PayerName,
				CreatedAt:   resp.CreatedAt,
				Splits:      resp.Splits,
			},
		})
	}
	for _, st := range settlements {
		entries = append(entries, datedEntry{
			at: st.CreatedAt,
			entry: &HistoryEntryResponse{
				ID:          st.ID,
				Type:        "SETTLEMENT",
				Description: fmt.Sprintf("%s paid %s", st.PayerName, st.PayeeName),
				Amount:      st.Amount,
				PayerName:   st.PayerName,
				CreatedAt:   st.CreatedAt.Format("2006-01-02T15:04:05Z"),
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})

	result := make([]*HistoryEntryResponse, len(entries))
	for i, de := range entries {
		result[i] = de.entry
	}
	return result, nil
}

// Delete soft-deletes an expense and its splits. Only the payer may delete.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	if expense.PayerID != userID {
		return ErrNotPayer
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}
