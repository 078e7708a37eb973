package core

import "github.com/shopspring/decimal"

const (
	// DirectionReturn means the traveler owes money back to the payer.
	DirectionReturn SettlementDirection = "return"
	// DirectionReimburse means the traveler is owed a reimbursement.
	DirectionReimburse SettlementDirection = "reimburse"
	// DirectionBalanced means advance and spend match exactly.
	DirectionBalanced SettlementDirection = "balanced"
)

type (
	SettlementDirection string

	CategoryAmount struct {
		Category Category
		Amount   decimal.Decimal
	}

	// Summary is the derived ledger view of a trip: total spend, remaining
	// balance in base and local currency, and the per-category breakdown.
	// It is recomputed on every read and carries no state of its own.
	Summary struct {
		TripID       string
		TotalSpent   decimal.Decimal
		Balance      decimal.Decimal
		BalanceLocal decimal.Decimal
		Direction    SettlementDirection
		ByCategory   []CategoryAmount
	}
)

// Summarize computes the settlement for a trip over its expenses.
// Expenses belonging to other trips are ignored.
func Summarize(t Trip, expenses []Expense) Summary {
	total := decimal.Zero
	byCat := map[Category]decimal.Decimal{}
	var order []Category
	for _, e := range expenses {
		if e.TripID != t.ID {
			continue
		}
		total = total.Add(e.AmountBase)
		if _, seen := byCat[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCat[e.Category] = byCat[e.Category].Add(e.AmountBase)
	}

	balance := t.AdvanceAmount.Sub(total)
	s := Summary{
		TripID:       t.ID,
		TotalSpent:   total,
		Balance:      balance,
		BalanceLocal: balance.Mul(t.InitialRate).Round(MoneyPrecision),
		Direction:    direction(balance),
	}
	for _, c := range order {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Category: c, Amount: byCat[c]})
	}
	return s
}

func direction(balance decimal.Decimal) SettlementDirection {
	switch balance.Sign() {
	case 1:
		return DirectionReturn
	case -1:
		return DirectionReimburse
	default:
		return DirectionBalanced
	}
}
