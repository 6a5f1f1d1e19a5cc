package trip

import "errors"

// Trip ドメインのエラー定義
var (
	ErrTripNotFound          = errors.New("便が見つかりません")
	ErrTripNotBookable       = errors.New("便は予約可能な状態ではありません")
	ErrTripAlreadyExists     = errors.New("同じバス・同じ出発時刻の便が既に存在します")
	ErrNoAvailableSeats      = errors.New("空席数が不足しています")
	ErrBusIDRequired         = errors.New("バスIDは必須です")
	ErrRouteIDRequired       = errors.New("路線IDは必須です")
	ErrDepartureTimeRequired = errors.New("出発時刻は必須です")
	ErrInvalidArrivalTime    = errors.New("到着時刻は出発時刻より後である必要があります")
	ErrInvalidTotalSeats     = errors.New("座席数は1以上である必要があります")
)
