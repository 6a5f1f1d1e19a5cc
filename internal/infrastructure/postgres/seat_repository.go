package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

type seatRow struct {
	ID          string    `db:"id"`
	TripID      string    `db:"trip_id"`
	SeatNumber  string    `db:"seat_number"`
	IsAvailable bool      `db:"is_available"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, TripID: r.TripID, SeatNumber: r.SeatNumber,
		IsAvailable: r.IsAvailable,
		CreatedAt:   r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, tx transaction.Tx, s *seat.Seat) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO seats (trip_id, seat_number, is_available, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, s.TripID, s.SeatNumber, s.IsAvailable, s.CreatedAt, s.UpdatedAt).Scan(&s.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return seat.ErrSeatNumberTaken
		}
		return fmt.Errorf("座席作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 500
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, sqlxTx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBulkBatch(ctx context.Context, tx *sqlx.Tx, seats []*seat.Seat) error {
	query := `INSERT INTO seats (trip_id, seat_number, is_available, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, s.TripID, s.SeatNumber, s.IsAvailable, s.CreatedAt, s.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return seat.ErrSeatNumberTaken
		}
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	query := `SELECT id, trip_id, seat_number, is_available, created_at, updated_at FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByTripID(ctx context.Context, tripID string) ([]*seat.Seat, error) {
	query := `SELECT id, trip_id, seat_number, is_available, created_at, updated_at FROM seats WHERE trip_id = $1 ORDER BY seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, tripID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

// ClaimSeats は条件付き一括UPDATEで座席を確保する
// 更新行数が要求数と一致しない場合は1席以上が既に確保されている
func (r *SeatRepository) ClaimSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET is_available = FALSE, updated_at = NOW() WHERE id = ANY($1) AND is_available`
	result, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席確保に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatNotAvailable
	}
	return nil
}

func (r *SeatRepository) ReleaseSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET is_available = TRUE, updated_at = NOW() WHERE id = ANY($1)`
	if _, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) CountAvailableByTripID(ctx context.Context, tripID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE trip_id = $1 AND is_available`, tripID)
	return count, err
}

var _ seat.Repository = (*SeatRepository)(nil)
