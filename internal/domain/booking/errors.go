package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrAlreadyCancelled   = errors.New("予約は既にキャンセルされています")
	ErrSeatTaken          = errors.New("座席は他のトランザクションによって確保されました")
	ErrEmployeeIDRequired = errors.New("従業員IDは必須です")
	ErrNoLines            = errors.New("予約には1席以上の明細が必要です")
)

// SeatConflictError は要求された座席の一部が既に予約済みであることを表す
// 競合した座席IDをすべて保持する
type SeatConflictError struct {
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("座席 %s は既に予約されています", strings.Join(e.SeatIDs, ", "))
}
