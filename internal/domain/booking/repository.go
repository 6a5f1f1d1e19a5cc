package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

// Ticket は発券用に予約・乗客・座席・便・路線・バスを結合した読み取りモデル
type Ticket struct {
	BookingID        string
	BookingDate      time.Time
	Status           Status
	TotalAmount      decimal.Decimal
	TotalTax         decimal.Decimal
	RefundAmount     *decimal.Decimal
	CancellationDate *time.Time
	Items            []TicketItem
}

// TicketItem は発券用の明細1件を表す
type TicketItem struct {
	CustomerName  string
	DateOfBirth   time.Time
	Email         string
	PhoneNumber   string
	StartLocation string
	EndLocation   string
	BusNumber     string
	SeatNumber    string
	DepartureTime time.Time
	TicketPrice   decimal.Decimal
	TicketTax     decimal.Decimal
}

// PeriodSummary はレポート用の期間集計を表す
type PeriodSummary struct {
	Period           string
	TotalTickets     int
	TotalRevenue     decimal.Decimal
	TotalTax         decimal.Decimal
	CancelledTickets int
	TotalRefund      decimal.Decimal
}

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は予約と全明細を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を明細付きで取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// FindActiveSeatIDs は指定座席のうち有効な明細に参照されているものを返す
	// 予約前の一括競合チェックに使用する
	FindActiveSeatIDs(ctx context.Context, seatIDs []string) ([]string, error)

	// MarkCancelled はキャンセル状態・払い戻し額を永続化し明細を無効化する（トランザクション必須）
	MarkCancelled(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetTicket は発券用の結合済み読み取りモデルを取得する
	GetTicket(ctx context.Context, id string) (*Ticket, error)

	// SummarizeByMonth は全予約を月単位で集計する
	SummarizeByMonth(ctx context.Context) ([]*PeriodSummary, error)

	// SummarizeMonth は指定年月の集計を取得する
	SummarizeMonth(ctx context.Context, year, month int) (*PeriodSummary, error)

	// SummarizeDay は指定年月日の集計を取得する
	SummarizeDay(ctx context.Context, year, month, day int) (*PeriodSummary, error)
}
