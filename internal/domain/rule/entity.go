package rule

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgeDiscount は年齢帯ごとの割引ルールを表す
// 年齢帯 [MinAge, MaxAge] は他のルールと重複しない
type AgeDiscount struct {
	ID                 string
	MinAge             int
	MaxAge             int
	DiscountPercentage decimal.Decimal
	Description        string
}

// Validate は割引ルールの検証を行う
func (d *AgeDiscount) Validate() error {
	if d.MinAge < 0 {
		return ErrInvalidAgeRange
	}
	if d.MaxAge < d.MinAge {
		return ErrInvalidAgeRange
	}
	if d.DiscountPercentage.IsNegative() || d.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercentage
	}
	return nil
}

// Cancellation はキャンセル時の違約金ルールを表す
// DaysBeforeDeparture は「出発の何日前か」の閾値
type Cancellation struct {
	ID                  string
	DaysBeforeDeparture int
	PenaltyPercentage   decimal.Decimal
	Description         string
}

// Validate は違約金ルールの検証を行う
func (c *Cancellation) Validate() error {
	if c.DaysBeforeDeparture < 0 {
		return ErrInvalidThreshold
	}
	if c.PenaltyPercentage.IsNegative() || c.PenaltyPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercentage
	}
	return nil
}

// LookupDiscount は年齢を含む帯のルールを返す
// どの帯にも含まれない場合は ErrNoDiscountRule を返す（0%への暗黙のフォールバックはしない）
func LookupDiscount(rules []*AgeDiscount, age int) (*AgeDiscount, error) {
	for _, r := range rules {
		if age >= r.MinAge && age <= r.MaxAge {
			return r, nil
		}
	}
	return nil, ErrNoDiscountRule
}

// LookupCancellation は daysBefore 以下で最大の閾値を持つルールを返す
// 該当するルールがない場合は ErrNoCancellationRule を返す
func LookupCancellation(rules []*Cancellation, daysBefore int) (*Cancellation, error) {
	var best *Cancellation
	for _, r := range rules {
		if r.DaysBeforeDeparture > daysBefore {
			continue
		}
		if best == nil || r.DaysBeforeDeparture > best.DaysBeforeDeparture {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNoCancellationRule
	}
	return best, nil
}

// DaysBeforeDeparture は出発までの日数を整数日に切り捨てて返す
// 出発済みの場合は負の値になる
func DaysBeforeDeparture(departure, now time.Time) int {
	return int(departure.Sub(now).Hours() / 24)
}
