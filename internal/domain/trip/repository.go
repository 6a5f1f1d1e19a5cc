package trip

import (
	"context"
	"time"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

// SearchCriteria は便検索の条件を表す
type SearchCriteria struct {
	StartLocation string
	EndLocation   string
	DepartureDate time.Time
}

// Repository は便リポジトリのインターフェース
type Repository interface {
	// Create は新しい便を作成する（トランザクション必須）
	// 座席の初期化と同一トランザクション内で適用すること
	Create(ctx context.Context, tx transaction.Tx, trip *Trip) error

	// GetByID はIDから便を取得する
	GetByID(ctx context.Context, id string) (*Trip, error)

	// GetPricingInfo は運賃計算用に便・路線・車種を結合して取得する
	GetPricingInfo(ctx context.Context, id string) (*PricingInfo, error)

	// List は便一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Trip, error)

	// Search は出発地・到着地・日付で予約可能な便を検索する
	Search(ctx context.Context, criteria SearchCriteria) ([]*Trip, error)

	// UpdateStatus は便の状態を更新する
	UpdateStatus(ctx context.Context, id string, status Status) error

	// DecrementAvailableSeats は空席数カウンターを減算する（トランザクション必須）
	// 座席フラグの変更と同一トランザクション内で適用すること
	DecrementAvailableSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error

	// IncrementAvailableSeats は空席数カウンターを加算する（トランザクション必須）
	IncrementAvailableSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error

	// AddTotalSeats は座席提供時に座席容量と空席数を加算する（トランザクション必須）
	// 座席行の作成と同一トランザクション内で適用すること
	AddTotalSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error
}
