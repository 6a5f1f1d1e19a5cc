package route

import "errors"

// Route ドメインのエラー定義
var (
	ErrRouteNotFound     = errors.New("路線が見つかりません")
	ErrRouteCodeRequired = errors.New("路線コードは必須です")
	ErrLocationRequired  = errors.New("出発地と到着地は必須です")
	ErrInvalidDistance   = errors.New("距離は0より大きい必要があります")
	ErrInvalidBasePrice  = errors.New("基本運賃は0より大きい必要があります")
	ErrInvalidStopOrder  = errors.New("停車順は1以上である必要があります")
)
