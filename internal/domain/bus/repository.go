package bus

import "context"

// Repository は車両リポジトリのインターフェース
type Repository interface {
	// Create は新しい車両を作成する
	Create(ctx context.Context, b *Bus) error

	// GetByID はIDから車両を取得する
	GetByID(ctx context.Context, id string) (*Bus, error)

	// List は車両一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Bus, error)

	// Update は車両を更新する
	Update(ctx context.Context, b *Bus) error

	// Delete は車両を削除する（便が存在する場合は ErrBusInUse）
	Delete(ctx context.Context, id string) error
}

// TypeRepository は車種リポジトリのインターフェース
type TypeRepository interface {
	// Create は新しい車種を作成する
	Create(ctx context.Context, t *BusType) error

	// GetByID はIDから車種を取得する
	GetByID(ctx context.Context, id string) (*BusType, error)

	// List は車種一覧を取得する
	List(ctx context.Context) ([]*BusType, error)
}
