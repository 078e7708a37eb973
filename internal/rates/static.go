package rates

import "github.com/shopspring/decimal"

// Static fallback rates for common pairs, used when no API token is
// configured or the provider is unreachable. Values are indicative only.
var staticTable = map[string]string{
	"USD/EUR": "0.92",
	"EUR/USD": "1.09",
	"USD/GBP": "0.79",
	"GBP/USD": "1.27",
	"USD/JPY": "148",
	"JPY/USD": "0.0068",
	"USD/CHF": "0.88",
	"CHF/USD": "1.14",
	"EUR/GBP": "0.85",
	"GBP/EUR": "1.17",
	"EUR/CHF": "0.96",
	"CHF/EUR": "1.04",
	"EUR/JPY": "161",
	"JPY/EUR": "0.0062",
}

func staticRate(from, to string) (decimal.Decimal, bool) {
	s, ok := staticTable[from+"/"+to]
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
