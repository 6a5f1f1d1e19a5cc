package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate は運賃に対する税率
var TaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

// Price は基本運賃・車種倍率・割引率から運賃と税額を計算する
// ticketPrice = basePrice × multiplier × (1 − discount/100)
// ticketTax = ticketPrice × TaxRate
// いずれも小数第2位に丸める
func Price(basePrice, multiplier, discountPercent decimal.Decimal) (ticketPrice, ticketTax decimal.Decimal) {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	ticketPrice = basePrice.Mul(multiplier).Mul(factor).Round(2)
	ticketTax = ticketPrice.Mul(TaxRate).Round(2)
	return ticketPrice, ticketTax
}

// Age は予約時点の年齢を暦年の差で返す
// 誕生日を迎えたかどうかは考慮しない
func Age(dateOfBirth, now time.Time) int {
	return now.Year() - dateOfBirth.Year()
}

// Refund は合計金額と違約金率から払い戻し額を計算する
// refund = totalAmount × (1 − penalty/100)
func Refund(totalAmount, penaltyPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(penaltyPercent.Div(hundred))
	return totalAmount.Mul(factor).Round(2)
}
