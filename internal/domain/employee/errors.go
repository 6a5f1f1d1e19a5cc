package employee

import "errors"

// Employee ドメインのエラー定義
var (
	ErrEmployeeNotFound   = errors.New("従業員が見つかりません")
	ErrUnauthorized       = errors.New("従業員を特定できないか権限がありません")
	ErrUsernameTaken      = errors.New("ユーザー名は既に使用されています")
	ErrInvalidCredentials = errors.New("ユーザー名またはパスワードが正しくありません")
	ErrUsernameRequired   = errors.New("ユーザー名は必須です")
	ErrPasswordRequired   = errors.New("パスワードは必須です")
	ErrNameRequired       = errors.New("氏名は必須です")
	ErrInvalidRole        = errors.New("権限はadminまたはemployeeである必要があります")
)
