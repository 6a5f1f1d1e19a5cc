package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatNotAvailable   = errors.New("座席は予約できません")
	ErrSeatNumberTaken    = errors.New("同じ便に同じ座席番号が既に存在します")
	ErrTripIDRequired     = errors.New("便IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
)
