package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/settleup/internal/expense/split"
)

// Expense represents a shared expense in a group. Expenses are immutable
// once recorded, except for soft deletion.
type Expense struct {
	ID          int64           `json:"id"`
	GroupID     int64           `json:"group_id"`
	PayerID     int64           `json:"payer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SplitType   split.Policy    `json:"split_type"` // EQUAL, EXACT
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"-"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`

	// Populated when splits are loaded alongside the expense
	Splits []*Split `json:"splits,omitempty"`
}

// Split represents a single user's owed share of an expense
type Split struct {
	ID        int64           `json:"id"`
	ExpenseID int64           `json:"expense_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`

	// Populated via JOIN
	UserName string `json:"user_name,omitempty"`
}
