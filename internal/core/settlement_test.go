package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func expenseFor(trip string, cat Category, orig, rate string) Expense {
	o, _ := decimal.NewFromString(orig)
	r, _ := decimal.NewFromString(rate)
	e := Expense{
		TripID:         trip,
		Date:           time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Category:       cat,
		AmountOriginal: o,
		Currency:       "EUR",
		ExchangeRate:   r,
		PaymentMethod:  PaymentCash,
	}
	return e.WithDerived()
}

func TestSummarizeScenario(t *testing.T) {
	// Advance 1000 USD, 50 USD at rate 1 plus 100 EUR at rate 1.1
	// yields 160 spent and 840 still to return.
	trip := validTrip()
	trip.AdvanceAmount = decimal.NewFromInt(1000)

	expenses := []Expense{
		expenseFor(trip.ID, CategoryMeal, "50", "1"),
		expenseFor(trip.ID, CategoryTransport, "100", "1.1"),
	}
	if !expenses[0].AmountBase.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("first base = %s, want 50", expenses[0].AmountBase)
	}
	if !expenses[1].AmountBase.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("second base = %s, want 110", expenses[1].AmountBase)
	}

	s := Summarize(trip, expenses)
	if !s.TotalSpent.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("total = %s, want 160", s.TotalSpent)
	}
	if !s.Balance.Equal(decimal.NewFromInt(840)) {
		t.Fatalf("balance = %s, want 840", s.Balance)
	}
	if s.Direction != DirectionReturn {
		t.Fatalf("direction = %s, want %s", s.Direction, DirectionReturn)
	}
}

func TestSummarizeIgnoresOtherTrips(t *testing.T) {
	trip := validTrip()
	expenses := []Expense{
		expenseFor(trip.ID, CategoryMeal, "10", "1"),
		expenseFor("other-trip", CategoryMeal, "999", "1"),
	}
	s := Summarize(trip, expenses)
	if !s.TotalSpent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("total = %s, want 10", s.TotalSpent)
	}
}

func TestSummarizeDirections(t *testing.T) {
	trip := validTrip()
	cases := []struct {
		advance string
		spent   string
		want    SettlementDirection
	}{
		{"100", "40", DirectionReturn},
		{"100", "140", DirectionReimburse},
		{"100", "100", DirectionBalanced},
	}
	for _, tc := range cases {
		trip.AdvanceAmount, _ = decimal.NewFromString(tc.advance)
		s := Summarize(trip, []Expense{expenseFor(trip.ID, CategoryOther, tc.spent, "1")})
		if s.Direction != tc.want {
			t.Fatalf("advance %s spent %s: direction = %s, want %s", tc.advance, tc.spent, s.Direction, tc.want)
		}
	}
}

func TestSummarizeLocalBalance(t *testing.T) {
	trip := validTrip()
	trip.AdvanceAmount = decimal.NewFromInt(100)
	trip.InitialRate = decimal.NewFromFloat(0.92)
	s := Summarize(trip, []Expense{expenseFor(trip.ID, CategoryMeal, "60", "1")})
	if !s.BalanceLocal.Equal(decimal.NewFromFloat(36.80)) {
		t.Fatalf("local balance = %s, want 36.80", s.BalanceLocal)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	trip := validTrip()
	s := Summarize(trip, []Expense{
		expenseFor(trip.ID, CategoryMeal, "10", "1"),
		expenseFor(trip.ID, CategoryLodging, "80", "1"),
		expenseFor(trip.ID, CategoryMeal, "5", "1"),
	})
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.ByCategory))
	}
	if s.ByCategory[0].Category != CategoryMeal || !s.ByCategory[0].Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("meal bucket = %s %s", s.ByCategory[0].Category, s.ByCategory[0].Amount)
	}
}
