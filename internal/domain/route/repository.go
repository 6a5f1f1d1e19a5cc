package route

import "context"

// Repository は路線リポジトリのインターフェース
type Repository interface {
	// Create は新しい路線を作成する
	Create(ctx context.Context, r *Route) error

	// GetByID はIDから路線を取得する
	GetByID(ctx context.Context, id string) (*Route, error)

	// List は路線一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Route, error)

	// Update は路線を更新する
	Update(ctx context.Context, r *Route) error

	// Delete は路線を削除する
	Delete(ctx context.Context, id string) error

	// ListStops は路線の停留所一覧を停車順で取得する
	ListStops(ctx context.Context, routeID string) ([]*Stop, error)

	// AddStop は路線に停留所を追加する
	AddStop(ctx context.Context, s *Stop) error
}
