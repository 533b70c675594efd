package utils

import "github.com/shopspring/decimal"

// FormatMoney keeps consistent two-decimal formatting for currency fields.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
