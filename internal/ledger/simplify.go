package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Debt is one suggested payment in a plan that clears every balance.
type Debt struct {
	FromUserID int64
	ToUserID   int64
	Amount     decimal.Decimal
}

// party is one side of the matching: a user and how much they still owe or
// are still owed.
type party struct {
	userID int64
	open   decimal.Decimal
}

// Simplify turns net balances into an ordered list of payments that, if all
// executed, drive every balance to zero.
//
// It greedily matches the debtor with the largest outstanding debt against
// the creditor with the largest outstanding credit, transferring the smaller
// of the two amounts each round. Ties are broken by ascending user ID so the
// same balances always produce the same plan. Every round fully clears at
// least one side, which bounds the plan at n-1 payments for n non-zero
// balances. Greedy matching is not guaranteed to be the globally minimal
// plan (that is a set-partition problem), but it is always correct.
//
// Balances within one cent of zero are dropped rather than emitted as
// near-zero debts.
func Simplify(balances map[int64]decimal.Decimal) []Debt {
	var debtors, creditors []party
	for id, b := range balances {
		switch {
		case b.GreaterThanOrEqual(minorUnit):
			creditors = append(creditors, party{userID: id, open: b})
		case b.LessThanOrEqual(minorUnit.Neg()):
			debtors = append(debtors, party{userID: id, open: b.Neg()})
		}
	}

	debts := []Debt{}
	for len(debtors) > 0 && len(creditors) > 0 {
		sortByOpenAmount(debtors)
		sortByOpenAmount(creditors)

		d := &debtors[0]
		c := &creditors[0]

		transfer := decimal.Min(d.open, c.open)
		debts = append(debts, Debt{
			FromUserID: d.userID,
			ToUserID:   c.userID,
			Amount:     transfer,
		})

		d.open = d.open.Sub(transfer)
		c.open = c.open.Sub(transfer)
		if d.open.LessThan(minorUnit) {
			debtors = debtors[1:]
		}
		if c.open.LessThan(minorUnit) {
			creditors = creditors[1:]
		}
	}

	return debts
}

// sortByOpenAmount orders parties by largest outstanding amount first, then
// by ascending user ID for equal amounts.
func sortByOpenAmount(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if !parties[i].open.Equal(parties[j].open) {
			return parties[i].open.GreaterThan(parties[j].open)
		}
		return parties[i].userID < parties[j].userID
	})
}
