package seat

import (
	"context"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// Create は新しい座席を作成する（トランザクション必須）
	// 便の座席容量の加算と同一トランザクション内で適用すること
	Create(ctx context.Context, tx transaction.Tx, seat *Seat) error

	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByTripID は便IDから座席一覧を取得する
	GetByTripID(ctx context.Context, tripID string) ([]*Seat, error)

	// ClaimSeats は座席を予約済みに更新する（トランザクション必須）
	// 1席でも利用不可の座席が含まれる場合は全体が失敗する
	ClaimSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// ReleaseSeats は座席を解放する（トランザクション必須）
	ReleaseSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error

	// CountAvailableByTripID は便の空席数を取得する
	CountAvailableByTripID(ctx context.Context, tripID string) (int, error)
}
