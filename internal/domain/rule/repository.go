package rule

import "context"

// Repository はルールリポジトリのインターフェース
type Repository interface {
	// ListAgeDiscounts は割引ルール一覧を取得する
	ListAgeDiscounts(ctx context.Context) ([]*AgeDiscount, error)

	// CreateAgeDiscount は割引ルールを作成する
	CreateAgeDiscount(ctx context.Context, d *AgeDiscount) error

	// DeleteAgeDiscount は割引ルールを削除する
	DeleteAgeDiscount(ctx context.Context, id string) error

	// ListCancellations はキャンセルルール一覧を取得する
	ListCancellations(ctx context.Context) ([]*Cancellation, error)

	// CreateCancellation はキャンセルルールを作成する
	CreateCancellation(ctx context.Context, c *Cancellation) error

	// DeleteCancellation はキャンセルルールを削除する
	DeleteCancellation(ctx context.Context, id string) error
}
