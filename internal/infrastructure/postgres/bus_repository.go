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

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/bus"
)

type busRow struct {
	ID         string    `db:"id"`
	BusCode    string    `db:"bus_code"`
	BusNumber  string    `db:"bus_number"`
	TypeID     string    `db:"type_id"`
	TotalSeats int       `db:"total_seats"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *busRow) toEntity() *bus.Bus {
	return &bus.Bus{
		ID: r.ID, BusCode: r.BusCode, BusNumber: r.BusNumber,
		TypeID: r.TypeID, TotalSeats: r.TotalSeats,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type busTypeRow struct {
	ID              string          `db:"id"`
	TypeName        string          `db:"type_name"`
	PriceMultiplier decimal.Decimal `db:"price_multiplier"`
}

type BusRepository struct{ db *sqlx.DB }

func NewBusRepository(db *sqlx.DB) *BusRepository { return &BusRepository{db: db} }

func (r *BusRepository) Create(ctx context.Context, b *bus.Bus) error {
	query := `INSERT INTO buses (bus_code, bus_number, type_id, total_seats, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, b.BusCode, b.BusNumber, b.TypeID, b.TotalSeats, b.CreatedAt, b.UpdatedAt).Scan(&b.ID); err != nil {
		return fmt.Errorf("バス作成に失敗: %w", err)
	}
	return nil
}

func (r *BusRepository) GetByID(ctx context.Context, id string) (*bus.Bus, error) {
	query := `SELECT id, bus_code, bus_number, type_id, total_seats, created_at, updated_at FROM buses WHERE id = $1`
	var row busRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bus.ErrBusNotFound
		}
		return nil, fmt.Errorf("バス取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BusRepository) List(ctx context.Context, limit, offset int) ([]*bus.Bus, error) {
	query := `SELECT id, bus_code, bus_number, type_id, total_seats, created_at, updated_at FROM buses ORDER BY bus_code LIMIT $1 OFFSET $2`
	var rows []busRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("バス一覧取得に失敗: %w", err)
	}
	buses := make([]*bus.Bus, len(rows))
	for i, row := range rows {
		buses[i] = row.toEntity()
	}
	return buses, nil
}

func (r *BusRepository) Update(ctx context.Context, b *bus.Bus) error {
	query := `UPDATE buses SET bus_code = $1, bus_number = $2, type_id = $3, total_seats = $4, updated_at = $5 WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, b.BusCode, b.BusNumber, b.TypeID, b.TotalSeats, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("バス更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return bus.ErrBusNotFound
	}
	return nil
}

// Delete はバスを削除する
// 便から外部キー参照されている場合は ErrBusInUse を返す
func (r *BusRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM buses WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23503" {
			return bus.ErrBusInUse
		}
		return fmt.Errorf("バス削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return bus.ErrBusNotFound
	}
	return nil
}

type BusTypeRepository struct{ db *sqlx.DB }

func NewBusTypeRepository(db *sqlx.DB) *BusTypeRepository { return &BusTypeRepository{db: db} }

func (r *BusTypeRepository) Create(ctx context.Context, t *bus.BusType) error {
	query := `INSERT INTO bus_types (type_name, price_multiplier) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.TypeName, t.PriceMultiplier).Scan(&t.ID); err != nil {
		return fmt.Errorf("車種作成に失敗: %w", err)
	}
	return nil
}

func (r *BusTypeRepository) GetByID(ctx context.Context, id string) (*bus.BusType, error) {
	query := `SELECT id, type_name, price_multiplier FROM bus_types WHERE id = $1`
	var row busTypeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bus.ErrBusTypeNotFound
		}
		return nil, fmt.Errorf("車種取得に失敗: %w", err)
	}
	return &bus.BusType{ID: row.ID, TypeName: row.TypeName, PriceMultiplier: row.PriceMultiplier}, nil
}

func (r *BusTypeRepository) List(ctx context.Context) ([]*bus.BusType, error) {
	query := `SELECT id, type_name, price_multiplier FROM bus_types ORDER BY type_name`
	var rows []busTypeRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("車種一覧取得に失敗: %w", err)
	}
	types := make([]*bus.BusType, len(rows))
	for i, row := range rows {
		types[i] = &bus.BusType{ID: row.ID, TypeName: row.TypeName, PriceMultiplier: row.PriceMultiplier}
	}
	return types, nil
}

var (
	_ bus.Repository     = (*BusRepository)(nil)
	_ bus.TypeRepository = (*BusTypeRepository)(nil)
)
