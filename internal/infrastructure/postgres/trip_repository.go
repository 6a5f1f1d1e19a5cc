package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

type tripRow struct {
	ID             string     `db:"id"`
	BusID          string     `db:"bus_id"`
	RouteID        string     `db:"route_id"`
	DepartureTime  time.Time  `db:"departure_time"`
	ArrivalTime    *time.Time `db:"arrival_time"`
	TotalSeats     int        `db:"total_seats"`
	AvailableSeats int        `db:"available_seats"`
	Status         string     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *tripRow) toEntity() *trip.Trip {
	return &trip.Trip{
		ID: r.ID, BusID: r.BusID, RouteID: r.RouteID,
		DepartureTime: r.DepartureTime, ArrivalTime: r.ArrivalTime,
		TotalSeats: r.TotalSeats, AvailableSeats: r.AvailableSeats,
		Status:    trip.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type tripPricingRow struct {
	TripID          string          `db:"trip_id"`
	DepartureTime   time.Time       `db:"departure_time"`
	Status          string          `db:"status"`
	BasePrice       decimal.Decimal `db:"base_price"`
	PriceMultiplier decimal.Decimal `db:"price_multiplier"`
}

type TripRepository struct{ db *sqlx.DB }

func NewTripRepository(db *sqlx.DB) *TripRepository { return &TripRepository{db: db} }

func (r *TripRepository) Create(ctx context.Context, tx transaction.Tx, t *trip.Trip) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO trips (bus_id, route_id, departure_time, arrival_time, total_seats, available_seats, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, t.BusID, t.RouteID, t.DepartureTime, t.ArrivalTime, t.TotalSeats, t.AvailableSeats, string(t.Status), t.CreatedAt, t.UpdatedAt).Scan(&t.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return trip.ErrTripAlreadyExists
		}
		return fmt.Errorf("便作成に失敗: %w", err)
	}
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	query := `SELECT id, bus_id, route_id, departure_time, arrival_time, total_seats, available_seats, status, created_at, updated_at FROM trips WHERE id = $1`
	var row tripRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trip.ErrTripNotFound
		}
		return nil, fmt.Errorf("便取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetPricingInfo は便・路線・車種を結合し運賃計算に必要な値だけを取得する
// 遅延ロードに頼らず必要な読み取りを1クエリで行う
func (r *TripRepository) GetPricingInfo(ctx context.Context, id string) (*trip.PricingInfo, error) {
	query := `SELECT t.id AS trip_id, t.departure_time, t.status, r.base_price, bt.price_multiplier
		FROM trips t
		JOIN routes r ON r.id = t.route_id
		JOIN buses b ON b.id = t.bus_id
		JOIN bus_types bt ON bt.id = b.type_id
		WHERE t.id = $1`
	var row tripPricingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trip.ErrTripNotFound
		}
		return nil, fmt.Errorf("運賃情報取得に失敗: %w", err)
	}
	return &trip.PricingInfo{
		TripID:          row.TripID,
		DepartureTime:   row.DepartureTime,
		Status:          trip.Status(row.Status),
		BasePrice:       row.BasePrice,
		PriceMultiplier: row.PriceMultiplier,
	}, nil
}

func (r *TripRepository) List(ctx context.Context, limit, offset int) ([]*trip.Trip, error) {
	query := `SELECT id, bus_id, route_id, departure_time, arrival_time, total_seats, available_seats, status, created_at, updated_at FROM trips ORDER BY departure_time LIMIT $1 OFFSET $2`
	var rows []tripRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("便一覧取得に失敗: %w", err)
	}
	trips := make([]*trip.Trip, len(rows))
	for i, row := range rows {
		trips[i] = row.toEntity()
	}
	return trips, nil
}

func (r *TripRepository) Search(ctx context.Context, criteria trip.SearchCriteria) ([]*trip.Trip, error) {
	query := `SELECT t.id, t.bus_id, t.route_id, t.departure_time, t.arrival_time, t.total_seats, t.available_seats, t.status, t.created_at, t.updated_at
		FROM trips t
		JOIN routes r ON r.id = t.route_id
		WHERE r.start_location = $1 AND r.end_location = $2
		  AND t.departure_time >= $3 AND t.departure_time < $4
		  AND t.status = 'scheduled'
		ORDER BY t.departure_time`
	dayStart, dayEnd := departureDayWindow(criteria.DepartureDate)
	var rows []tripRow
	if err := r.db.SelectContext(ctx, &rows, query, criteria.StartLocation, criteria.EndLocation, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("便検索に失敗: %w", err)
	}
	trips := make([]*trip.Trip, len(rows))
	for i, row := range rows {
		trips[i] = row.toEntity()
	}
	return trips, nil
}

// departureDayWindow は検索日のタイムゾーンにおけるその日の開始と翌日の開始を返す
// UTC基準の切り捨てでは非UTCの日付で日界がずれるため暦日で計算する
func departureDayWindow(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status trip.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE trips SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("便状態更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return trip.ErrTripNotFound
	}
	return nil
}

// DecrementAvailableSeats は空席数を減算する
// 座席フラグの更新と同一トランザクションで呼ぶこと
func (r *TripRepository) DecrementAvailableSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE trips SET available_seats = available_seats - $2, updated_at = NOW() WHERE id = $1 AND available_seats >= $2`
	result, err := sqlxTx.ExecContext(ctx, query, tripID, n)
	if err != nil {
		return fmt.Errorf("空席数減算に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return trip.ErrNoAvailableSeats
	}
	return nil
}

func (r *TripRepository) IncrementAvailableSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE trips SET available_seats = available_seats + $2, updated_at = NOW() WHERE id = $1`
	result, err := sqlxTx.ExecContext(ctx, query, tripID, n)
	if err != nil {
		return fmt.Errorf("空席数加算に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return trip.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) AddTotalSeats(ctx context.Context, tx transaction.Tx, tripID string, n int) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE trips SET total_seats = total_seats + $2, available_seats = available_seats + $2, updated_at = NOW() WHERE id = $1`
	result, err := sqlxTx.ExecContext(ctx, query, tripID, n)
	if err != nil {
		return fmt.Errorf("座席容量更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return trip.ErrTripNotFound
	}
	return nil
}

var _ trip.Repository = (*TripRepository)(nil)
