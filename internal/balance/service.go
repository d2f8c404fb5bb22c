package balance

import (
	"context"

	"github.com/fkhayef/settleup/internal/expense"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/settlement"
)

// GroupSource resolves group existence and membership
type GroupSource interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetMembers(ctx context.Context, groupID int64) ([]*group.Member, error)
}

// ExpenseSource lists a group's active expenses with their splits
type ExpenseSource interface {
	ListActiveByGroupID(ctx context.Context, groupID int64) ([]*expense.Expense, error)
}

// SettlementSource lists a group's active settlements
type SettlementSource interface {
	ListActiveByGroupID(ctx context.Context, groupID int64) ([]*settlement.Settlement, error)
}

// Service derives balance summaries from stored expenses and settlements.
// It holds no state of its own; every request recomputes from the live data.
type Service struct {
	groups      GroupSource
	expenses    ExpenseSource
	settlements SettlementSource
}

// NewService creates a new balance service with dependencies injected
func NewService(groups GroupSource, expenses ExpenseSource, settlements SettlementSource) *Service {
	return &Service{
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
	}
}

// GetGroupSummary computes every member's net balance and the simplified
// debts that would settle the group
func (s *Service) GetGroupSummary(ctx context.Context, groupID int64) (*GroupSummary, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}

	members, err := s.groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.ListActiveByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.ListActiveByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]int64, len(members))
	names := make(map[int64]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		names[m.UserID] = m.Name
	}

	ledgerExpenses := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		splits := make([]ledger.Split, len(e.Splits))
		for j, sp := range e.Splits {
			splits[j] = ledger.Split{UserID: sp.UserID, Amount: sp.Amount}
		}
		ledgerExpenses[i] = ledger.Expense{
			ID:      e.ID,
			PayerID: e.PayerID,
			Amount:  e.Amount,
			Splits:  splits,
		}
	}

	ledgerSettlements := make([]ledger.Settlement, len(settlements))
	for i, st := range settlements {
		ledgerSettlements[i] = ledger.Settlement{
			ID:      st.ID,
			PayerID: st.PayerID,
			PayeeID: st.PayeeID,
			Amount:  st.Amount,
		}
	}

	balances, err := ledger.ComputeBalances(memberIDs, ledgerExpenses, ledgerSettlements)
	if err != nil {
		return nil, err
	}
	debts := ledger.Simplify(balances)

	// Members come back ordered by user ID, so the entries are too. Zero
	// balances stay in the list: a member who owes nothing is still part of
	// the group's picture.
	entries := make([]*BalanceEntry, len(members))
	for i, m := range members {
		entries[i] = &BalanceEntry{
			UserID: m.UserID,
			Name:   m.Name,
			Amount: balances[m.UserID].Round(2),
		}
	}

	debtEntries := make([]*DebtEntry, len(debts))
	for i, d := range debts {
		debtEntries[i] = &DebtEntry{
			FromUserID:   d.FromUserID,
			FromUserName: names[d.FromUserID],
			ToUserID:     d.ToUserID,
			ToUserName:   names[d.ToUserID],
			Amount:       d.Amount,
		}
	}

	return &GroupSummary{
		GroupID:         groupID,
		Balances:        entries,
		SimplifiedDebts: debtEntries,
		Settled:         len(debts) == 0,
	}, nil
}
