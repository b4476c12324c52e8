package formatting

import "github.com/shopspring/decimal"

// FormatPrice форматирует сумму в рублях с копейками
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " ₽"
}

// FormatPriceShort форматирует сумму без копеек если они равны 0
func FormatPriceShort(amount decimal.Decimal) string {
	if amount.IsInteger() {
		return amount.StringFixed(0) + " ₽"
	}
	return amount.StringFixed(2) + " ₽"
}
