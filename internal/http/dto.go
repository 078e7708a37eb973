package http

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"viaggi/internal/core"
)

// tripPayload is the wire form of a trip. Decimals travel as quoted
// strings, dates as YYYY-MM-DD.
type tripPayload struct {
	ID            string          `json:"id,omitempty"`
	Traveler      string          `json:"traveler"`
	Name          string          `json:"name"`
	Destination   string          `json:"destination"`
	LocalCurrency string          `json:"local_currency"`
	BaseCurrency  string          `json:"base_currency"`
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
	InitialRate   decimal.Decimal `json:"initial_rate"`
	StartDate     string          `json:"start_date"`
	Status        string          `json:"status,omitempty"`
}

func (p tripPayload) toCore() (core.Trip, error) {
	startDate, err := parseDate(p.StartDate)
	if err != nil {
		return core.Trip{}, fmt.Errorf("invalid start_date: %w", err)
	}

	status := core.TripStatus(strings.ToLower(strings.TrimSpace(p.Status)))
	if p.Status == "" {
		status = core.StatusActive
	}

	return core.Trip{
		ID:            p.ID,
		Traveler:      sanitizeInput(p.Traveler),
		Name:          sanitizeInput(p.Name),
		Destination:   sanitizeInput(p.Destination),
		LocalCurrency: strings.ToUpper(strings.TrimSpace(p.LocalCurrency)),
		BaseCurrency:  strings.ToUpper(strings.TrimSpace(p.BaseCurrency)),
		AdvanceAmount: p.AdvanceAmount,
		InitialRate:   p.InitialRate,
		StartDate:     startDate,
		Status:        status,
	}, nil
}

func tripToPayload(t core.Trip) tripPayload {
	return tripPayload{
		ID:            t.ID,
		Traveler:      t.Traveler,
		Name:          t.Name,
		Destination:   t.Destination,
		LocalCurrency: t.LocalCurrency,
		BaseCurrency:  t.BaseCurrency,
		AdvanceAmount: t.AdvanceAmount,
		InitialRate:   t.InitialRate,
		StartDate:     t.StartDate.Format(dateLayout),
		Status:        string(t.Status),
	}
}

// expensePayload is the wire form of an expense. Receipt bytes travel
// base64-encoded; amount_base is derived server-side and ignored on input.
type expensePayload struct {
	ID             string          `json:"id,omitempty"`
	TripID         string          `json:"trip_id,omitempty"`
	Date           string          `json:"date"`
	Category       string          `json:"category"`
	Merchant       string          `json:"merchant"`
	AmountOriginal decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	AmountBase     decimal.Decimal `json:"amount_base"`
	PaymentMethod  string          `json:"payment_method"`
	Receipt        []byte          `json:"receipt,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Verified       bool            `json:"verified"`
}

func (p expensePayload) toCore(tripID string) (core.Expense, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid date: %w", err)
	}

	return core.Expense{
		ID:             p.ID,
		TripID:         tripID,
		Date:           date,
		Category:       core.Category(strings.ToLower(strings.TrimSpace(p.Category))),
		Merchant:       sanitizeInput(p.Merchant),
		AmountOriginal: p.AmountOriginal,
		Currency:       strings.ToUpper(strings.TrimSpace(p.Currency)),
		ExchangeRate:   p.ExchangeRate,
		PaymentMethod:  core.PaymentMethod(strings.ToLower(strings.TrimSpace(p.PaymentMethod))),
		Receipt:        p.Receipt,
		Notes:          sanitizeInput(p.Notes),
		Verified:       p.Verified,
	}, nil
}

func expenseToPayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:             e.ID,
		TripID:         e.TripID,
		Date:           e.Date.Format(dateLayout),
		Category:       string(e.Category),
		Merchant:       e.Merchant,
		AmountOriginal: e.AmountOriginal,
		Currency:       e.Currency,
		ExchangeRate:   e.ExchangeRate,
		AmountBase:     e.AmountBase,
		PaymentMethod:  string(e.PaymentMethod),
		Receipt:        e.Receipt,
		Notes:          e.Notes,
		Verified:       e.Verified,
	}
}

type categoryAmountPayload struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type summaryPayload struct {
	TripID       string                  `json:"trip_id"`
	TotalSpent   decimal.Decimal         `json:"total_spent"`
	Balance      decimal.Decimal         `json:"balance"`
	BalanceLocal decimal.Decimal         `json:"balance_local"`
	Direction    string                  `json:"direction"`
	ByCategory   []categoryAmountPayload `json:"by_category"`
}

func summaryToPayload(s core.Summary) summaryPayload {
	byCat := make([]categoryAmountPayload, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		byCat = append(byCat, categoryAmountPayload{
			Category: string(c.Category),
			Amount:   c.Amount,
		})
	}
	return summaryPayload{
		TripID:       s.TripID,
		TotalSpent:   s.TotalSpent,
		Balance:      s.Balance,
		BalanceLocal: s.BalanceLocal,
		Direction:    string(s.Direction),
		ByCategory:   byCat,
	}
}
