package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      int64                `json:"group_id" validate:"required"`
	Description  string               `json:"description" validate:"required,min=1,max=255"`
	Amount       decimal.Decimal      `json:"amount" validate:"required"`
	SplitType    string               `json:"split_type" validate:"required,oneof=EQUAL EXACT"`
	Participants []*split.Participant `json:"participants" validate:"required,min=1"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          int64            `json:"id"`
	GroupID     int64            `json:"group_id"`
	PayerID     int64            `json:"payer_id"`
	PayerName   string           `json:"payer_name,omitempty"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	SplitType   split.Policy     `json:"split_type"`
	CreatedAt   string           `json:"created_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID        int64           `json:"id"`
	ExpenseID int64           `json:"expense_id"`
	UserID    int64           `json:"user_id"`
	UserName  string          `json:"user_name,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// HistoryEntryResponse represents one entry in a group's activity history:
// either an expense or a settlement, newest first
type HistoryEntryResponse struct {
	ID          int64            `json:"id"`
	Type        string           `json:"type"` // EXPENSE or SETTLEMENT
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	PayerName   string           `json:"payer_name"`
	CreatedAt   string           `json:"created_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		Description: e.Description,
		Amount:      e.Amount,
		SplitType:   e.SplitType,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if len(e.Splits) > 0 {
		resp.Splits = make([]*SplitResponse, len(e.Splits))
		for i, s := range e.Splits {
			resp.Splits[i] = s.ToResponse()
		}
	}
	return resp
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		UserName:  s.UserName,
		Amount:    s.Amount,
	}
}
