package employee

import "context"

// Repository は従業員リポジトリのインターフェース
type Repository interface {
	// Create は新しい従業員を作成する
	Create(ctx context.Context, e *Employee) error

	// GetByID はIDから従業員を取得する
	GetByID(ctx context.Context, id string) (*Employee, error)

	// GetByUsername はユーザー名から従業員を取得する
	GetByUsername(ctx context.Context, username string) (*Employee, error)

	// List は従業員一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Employee, error)

	// Update は従業員を更新する
	Update(ctx context.Context, e *Employee) error

	// Delete は従業員を削除する
	Delete(ctx context.Context, id string) error
}
