package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive TripStatus = "active"
	StatusClosed TripStatus = "closed"
)

const (
	CategoryMeal          Category = "meal"
	CategoryTransport     Category = "transport"
	CategoryLodging       Category = "lodging"
	CategoryFlight        Category = "flight"
	CategorySupplies      Category = "supplies"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentPersonalCard  PaymentMethod = "personal_card"
	PaymentCorporateCard PaymentMethod = "corporate_card"
)

type (
	TripStatus    string
	Category      string
	PaymentMethod string

	Trip struct {
		ID            string
		Traveler      string
		Name          string
		Destination   string
		LocalCurrency string
		BaseCurrency  string
		AdvanceAmount decimal.Decimal
		InitialRate   decimal.Decimal
		StartDate     time.Time
		Status        TripStatus
	}

	Expense struct {
		ID             string
		TripID         string
		Date           time.Time
		Category       Category
		Merchant       string
		AmountOriginal decimal.Decimal
		Currency       string
		ExchangeRate   decimal.Decimal
		// AmountBase is derived from AmountOriginal and ExchangeRate on
		// every save; it is never set independently.
		AmountBase    decimal.Decimal
		PaymentMethod PaymentMethod
		Receipt       []byte
		Notes         string
		Verified      bool
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidRate     = errors.New("invalid exchange rate")
	ErrInvalidStatus   = errors.New("invalid trip status")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPayment  = errors.New("invalid payment method")
	ErrEmptyName       = errors.New("empty trip name")
	ErrEmptyTraveler   = errors.New("empty traveler name")
	ErrEmptyCurrency   = errors.New("empty currency code")
	ErrEmptyTripRef    = errors.New("expense has no trip reference")
)

func (s TripStatus) Valid() bool {
	return s == StatusActive || s == StatusClosed
}

func (c Category) Valid() bool {
	switch c {
	case CategoryMeal, CategoryTransport, CategoryLodging, CategoryFlight,
		CategorySupplies, CategoryEntertainment, CategoryOther:
		return true
	}
	return false
}

// ParseCategory maps free-form input onto the closed category enum.
// Unrecognized values fall back to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentPersonalCard, PaymentCorporateCard:
		return true
	}
	return false
}

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Traveler) == "" {
		return ErrEmptyTraveler
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("trip name too long (max 200 characters)")
	}
	if !validCurrency(t.BaseCurrency) || !validCurrency(t.LocalCurrency) {
		return ErrEmptyCurrency
	}
	if t.AdvanceAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.InitialRate.IsPositive() {
		return ErrInvalidRate
	}
	if t.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.TripID) == "" {
		return ErrEmptyTripRef
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(e.Merchant) > 200 {
		return errors.New("merchant too long (max 200 characters)")
	}
	if !e.AmountOriginal.IsPositive() {
		return ErrInvalidAmount
	}
	if !validCurrency(e.Currency) {
		return ErrEmptyCurrency
	}
	if !e.ExchangeRate.IsPositive() {
		return ErrInvalidRate
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	return nil
}

// WithDerived returns a copy of the expense with AmountBase recomputed.
// Callers must persist the returned value, never the original.
func (e Expense) WithDerived() Expense {
	e.AmountBase = BaseAmount(e.AmountOriginal, e.ExchangeRate)
	return e
}

func validCurrency(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
