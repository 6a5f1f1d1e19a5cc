package rule

import "errors"

// Rule ドメインのエラー定義
var (
	ErrNoDiscountRule     = errors.New("年齢に該当する割引ルールが見つかりません")
	ErrNoCancellationRule = errors.New("該当するキャンセルルールが見つかりません")
	ErrRuleNotFound       = errors.New("ルールが見つかりません")
	ErrInvalidAgeRange    = errors.New("年齢帯の指定が不正です")
	ErrInvalidThreshold   = errors.New("出発前日数は0以上である必要があります")
	ErrInvalidPercentage  = errors.New("パーセンテージは0から100の範囲である必要があります")
)
