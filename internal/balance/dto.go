package balance

import "github.com/shopspring/decimal"

// BalanceEntry is one member's net position in a group. Positive means the
// group owes the user, negative means the user owes the group.
type BalanceEntry struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DebtEntry is one suggested repayment in the simplified debt graph
type DebtEntry struct {
	FromUserID   int64           `json:"from_user_id"`
	FromUserName string          `json:"from_user_name"`
	ToUserID     int64           `json:"to_user_id"`
	ToUserName   string          `json:"to_user_name"`
	Amount       decimal.Decimal `json:"amount"`
}

// GroupSummary is the full balance view of a group: every member's net
// position plus the minimal set of payments that would clear them all
type GroupSummary struct {
	GroupID         int64           `json:"group_id"`
	Balances        []*BalanceEntry `json:"balances"`
	SimplifiedDebts []*DebtEntry    `json:"simplified_debts"`
	Settled         bool            `json:"settled"`
}
