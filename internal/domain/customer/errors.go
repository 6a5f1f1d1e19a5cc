package customer

import "errors"

// Customer ドメインのエラー定義
var (
	ErrCustomerNotFound      = errors.New("乗客が見つかりません")
	ErrMissingCustomerFields = errors.New("新規乗客には氏名と生年月日が必須です")
)
