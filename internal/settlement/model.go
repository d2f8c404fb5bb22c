package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a direct repayment between two group members.
// Settlements are immutable once recorded, except for soft deletion.
type Settlement struct {
	ID        int64           `json:"id"`
	GroupID   int64           `json:"group_id"`
	PayerID   int64           `json:"payer_id"` // Who hands over the money
	PayeeID   int64           `json:"payee_id"` // Who receives it
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt *time.Time      `json:"-"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
	PayeeName string `json:"payee_name,omitempty"`
}
