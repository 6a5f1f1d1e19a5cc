package bus

import "errors"

// Bus ドメインのエラー定義
var (
	ErrBusNotFound       = errors.New("バスが見つかりません")
	ErrBusTypeNotFound   = errors.New("車種が見つかりません")
	ErrBusInUse          = errors.New("便が存在するバスは削除できません")
	ErrBusCodeRequired   = errors.New("バスコードは必須です")
	ErrTypeIDRequired    = errors.New("車種IDは必須です")
	ErrTypeNameRequired  = errors.New("車種名は必須です")
	ErrInvalidMultiplier = errors.New("運賃倍率は1.0以上である必要があります")
	ErrInvalidTotalSeats = errors.New("座席数は1以上である必要があります")
)
