package customer

import (
	"context"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

// Repository は乗客リポジトリのインターフェース
type Repository interface {
	// Create は新しい乗客を作成する（予約トランザクション内で使用するためトランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, c *Customer) error

	// GetByID はIDから乗客を取得する
	GetByID(ctx context.Context, id string) (*Customer, error)

	// List は乗客一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Customer, error)
}
