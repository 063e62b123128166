package model

// Setting keys recognized by the settings store.
const (
	SettingCurrency    = "currency"
	SettingSavingsGoal = "savings_goal"
)

// DefaultCurrency is the currency seeded on first initialization.
const DefaultCurrency = "USD"

// SupportedCurrencies is the closed set of currency labels.
// No conversion is performed; the code is only displayed next to amounts.
var SupportedCurrencies = []string{"USD", "EUR", "INR", "GBP", "JPY"}

// IsSupportedCurrency reports whether code is in SupportedCurrencies.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"INR": "₹",
	"GBP": "£",
	"JPY": "¥",
}

// CurrencySymbol returns the display symbol for code and whether one is known.
func CurrencySymbol(code string) (string, bool) {
	s, ok := currencySymbols[code]
	return s, ok
}

// CurrencyDecimals is the number of minor-unit digits shown for code.
func CurrencyDecimals(code string) int32 {
	if code == "JPY" {
		return 0
	}
	return 2
}
