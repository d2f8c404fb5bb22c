// Package ledger derives net balances from a group's expense and settlement
// history and suggests the payments that clear them. Everything here is a
// pure computation over its inputs: no storage, no caching, no state.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnit is one cent, the smallest representable currency amount.
// Residual balances below it are treated as zero.
var minorUnit = decimal.New(1, -2)

// Split is one user's owed share of an expense.
type Split struct {
	UserID int64
	Amount decimal.Decimal
}

// Expense is the read-side view of a stored expense: who paid the total and
// how it was divided.
type Expense struct {
	ID      int64
	PayerID int64
	Amount  decimal.Decimal
	Splits  []Split
}

// Settlement is a recorded out-of-band repayment from payer to payee.
type Settlement struct {
	ID      int64
	PayerID int64
	PayeeID int64
	Amount  decimal.Decimal
}

// ConsistencyError reports stored data that violates the invariants the
// persistence layer is supposed to guarantee (an expense without splits,
// split sums drifting from the expense total, references outside the member
// set). Balances must never be computed from such data.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "ledger: inconsistent transaction data: " + e.Reason
}

// ComputeBalances folds the expenses and settlements of a group into a net
// balance per member. Positive means the group owes the user, negative means
// the user owes the group; the balances of a group always sum to zero.
//
// The fold credits each expense's payer with the full amount and debits every
// split owner with their share, so a payer who participates in their own
// expense nets out without special-casing. A settlement credits its payer and
// debits its payee. Decimal addition is associative and commutative, so the
// result is independent of input order.
func ComputeBalances(memberIDs []int64, expenses []Expense, settlements []Settlement) (map[int64]decimal.Decimal, error) {
	balances := make(map[int64]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = decimal.Zero
	}

	for _, e := range expenses {
		if len(e.Splits) == 0 {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("expense %d has no splits", e.ID)}
		}
		if _, ok := balances[e.PayerID]; !ok {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("expense %d payer %d is not a group member", e.ID, e.PayerID)}
		}

		sum := decimal.Zero
		for _, sp := range e.Splits {
			if _, ok := balances[sp.UserID]; !ok {
				return nil, &ConsistencyError{Reason: fmt.Sprintf("expense %d split references non-member user %d", e.ID, sp.UserID)}
			}
			sum = sum.Add(sp.Amount)
		}
		if sum.Sub(e.Amount).Abs().GreaterThan(minorUnit) {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("expense %d splits sum to %s, expense total is %s", e.ID, sum, e.Amount)}
		}

		balances[e.PayerID] = balances[e.PayerID].Add(e.Amount)
		for _, sp := range e.Splits {
			balances[sp.UserID] = balances[sp.UserID].Sub(sp.Amount)
		}
	}

	for _, s := range settlements {
		if s.PayerID == s.PayeeID {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("settlement %d has identical payer and payee %d", s.ID, s.PayerID)}
		}
		if _, ok := balances[s.PayerID]; !ok {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("settlement %d payer %d is not a group member", s.ID, s.PayerID)}
		}
		if _, ok := balances[s.PayeeID]; !ok {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("settlement %d payee %d is not a group member", s.ID, s.PayeeID)}
		}

		// The payer owed money and paid some back, so their balance rises;
		// the payee was owed and received, so theirs falls.
		balances[s.PayerID] = balances[s.PayerID].Add(s.Amount)
		balances[s.PayeeID] = balances[s.PayeeID].Sub(s.Amount)
	}

	return balances, nil
}
