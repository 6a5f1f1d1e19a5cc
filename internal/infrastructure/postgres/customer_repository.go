package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

type customerRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	DateOfBirth time.Time `db:"date_of_birth"`
	Email       string    `db:"email"`
	PhoneNumber string    `db:"phone_number"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *customerRow) toEntity() *customer.Customer {
	return &customer.Customer{
		ID: r.ID, Name: r.Name, DateOfBirth: r.DateOfBirth,
		Email: r.Email, PhoneNumber: r.PhoneNumber,
		CreatedAt: r.CreatedAt,
	}
}

type CustomerRepository struct{ db *sqlx.DB }

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository { return &CustomerRepository{db: db} }

// Create は乗客を作成する
// 予約トランザクション内のインライン作成で呼ばれるためトランザクション必須
func (r *CustomerRepository) Create(ctx context.Context, tx transaction.Tx, c *customer.Customer) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO customers (name, date_of_birth, email, phone_number, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, c.Name, c.DateOfBirth, c.Email, c.PhoneNumber, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("乗客作成に失敗: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	query := `SELECT id, name, date_of_birth, email, phone_number, created_at FROM customers WHERE id = $1`
	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("乗客取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*customer.Customer, error) {
	query := `SELECT id, name, date_of_birth, email, phone_number, created_at FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var rows []customerRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("乗客一覧取得に失敗: %w", err)
	}
	customers := make([]*customer.Customer, len(rows))
	for i, row := range rows {
		customers[i] = row.toEntity()
	}
	return customers, nil
}

var _ customer.Repository = (*CustomerRepository)(nil)
