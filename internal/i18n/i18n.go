// Package i18n maps UI string keys to localized text. Lookup of a missing
// key returns the key verbatim so untranslated strings stay visible instead
// of disappearing.
package i18n

import "strings"

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleItalian Locale = "it"

	DefaultLocale = LocaleEnglish
)

func (l Locale) Valid() bool {
	switch l {
	case LocaleEnglish, LocaleItalian:
		return true
	}
	return false
}

// ParseLocale normalizes free-form input ("en-US", "IT") onto a supported
// locale, defaulting to English.
func ParseLocale(s string) Locale {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	l := Locale(s)
	if l.Valid() {
		return l
	}
	return DefaultLocale
}

var translations = map[Locale]map[string]string{
	LocaleEnglish: {
		"category.meal":          "Meals",
		"category.transport":     "Transport",
		"category.lodging":       "Lodging",
		"category.flight":        "Flights",
		"category.supplies":      "Supplies",
		"category.entertainment": "Entertainment",
		"category.other":         "Other",

		"payment.cash":           "Cash / advance",
		"payment.personal_card":  "Personal card",
		"payment.corporate_card": "Corporate card",

		"status.active": "Active",
		"status.closed": "Closed",

		"settlement.return":    "To return",
		"settlement.reimburse": "To reimburse",
		"settlement.balanced":  "Balanced",

		"export.trip":           "Trip",
		"export.traveler":       "Traveler",
		"export.destination":    "Destination",
		"export.start_date":     "Start date",
		"export.status":         "Status",
		"export.base_currency":  "Base currency",
		"export.local_currency": "Local currency",
		"export.advance":        "Advance",
		"export.initial_rate":   "Initial rate",
		"export.total_spent":    "Total spent",
		"export.balance":        "Balance",
		"export.balance_local":  "Balance (local)",
		"export.settlement":     "Settlement",
		"export.date":           "Date",
		"export.category":       "Category",
		"export.merchant":       "Merchant",
		"export.amount":         "Amount",
		"export.currency":       "Currency",
		"export.rate":           "Rate",
		"export.payment":        "Payment",
		"export.notes":          "Notes",
		"export.verified":       "Verified",
		"export.yes":            "yes",
		"export.no":             "no",
	},
	LocaleItalian: {
		"category.meal":          "Pasti",
		"category.transport":     "Trasporti",
		"category.lodging":       "Alloggio",
		"category.flight":        "Voli",
		"category.supplies":      "Forniture",
		"category.entertainment": "Intrattenimento",
		"category.other":         "Altro",

		"payment.cash":           "Contanti / anticipo",
		"payment.personal_card":  "Carta personale",
		"payment.corporate_card": "Carta aziendale",

		"status.active": "Attivo",
		"status.closed": "Chiuso",

		"settlement.return":    "Da restituire",
		"settlement.reimburse": "Da rimborsare",
		"settlement.balanced":  "In pareggio",

		"export.trip":           "Viaggio",
		"export.traveler":       "Viaggiatore",
		"export.destination":    "Destinazione",
		"export.start_date":     "Data di inizio",
		"export.status":         "Stato",
		"export.base_currency":  "Valuta base",
		"export.local_currency": "Valuta locale",
		"export.advance":        "Anticipo",
		"export.initial_rate":   "Cambio iniziale",
		"export.total_spent":    "Totale speso",
		"export.balance":        "Saldo",
		"export.balance_local":  "Saldo (locale)",
		"export.settlement":     "Liquidazione",
		"export.date":           "Data",
		"export.category":       "Categoria",
		"export.merchant":       "Esercente",
		"export.amount":         "Importo",
		"export.currency":       "Valuta",
		"export.rate":           "Cambio",
		"export.payment":        "Pagamento",
		"export.notes":          "Note",
		"export.verified":       "Verificata",
		"export.yes":            "sì",
		"export.no":             "no",
	},
}

// T translates a key for the given locale. An unknown locale falls back to
// English; an unknown key comes back verbatim.
func T(locale Locale, key string) string {
	table, ok := translations[locale]
	if !ok {
		table = translations[DefaultLocale]
	}
	if s, ok := table[key]; ok {
		return s
	}
	// A key missing from the locale may still exist in the default table.
	if locale != DefaultLocale {
		if s, ok := translations[DefaultLocale][key]; ok {
			return s
		}
	}
	return key
}
