package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
)

type employeeRow struct {
	ID             string    `db:"id"`
	Username       string    `db:"username"`
	PasswordHash   string    `db:"password_hash"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	PhoneNumber    string    `db:"phone_number"`
	Qualifications string    `db:"qualifications"`
	Role           string    `db:"role"`
	Age            *int      `db:"age"`
	Location       string    `db:"location"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *employeeRow) toEntity() *employee.Employee {
	return &employee.Employee{
		ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash,
		Name: r.Name, Email: r.Email, PhoneNumber: r.PhoneNumber,
		Qualifications: r.Qualifications,
		Role:           employee.Role(r.Role),
		Age:            r.Age, Location: r.Location,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type EmployeeRepository struct{ db *sqlx.DB }

func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository { return &EmployeeRepository{db: db} }

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	query := `INSERT INTO employees (username, password_hash, name, email, phone_number, qualifications, role, age, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		e.Username, e.PasswordHash, e.Name, e.Email, e.PhoneNumber,
		e.Qualifications, string(e.Role), e.Age, e.Location,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return employee.ErrUsernameTaken
		}
		return fmt.Errorf("従業員作成に失敗: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	query := `SELECT id, username, password_hash, name, email, phone_number, qualifications, role, age, location, created_at, updated_at FROM employees WHERE id = $1`
	var row employeeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("従業員取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	query := `SELECT id, username, password_hash, name, email, phone_number, qualifications, role, age, location, created_at, updated_at FROM employees WHERE username = $1`
	var row employeeRow
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("従業員取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*employee.Employee, error) {
	query := `SELECT id, username, password_hash, name, email, phone_number, qualifications, role, age, location, created_at, updated_at FROM employees ORDER BY username LIMIT $1 OFFSET $2`
	var rows []employeeRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("従業員一覧取得に失敗: %w", err)
	}
	employees := make([]*employee.Employee, len(rows))
	for i, row := range rows {
		employees[i] = row.toEntity()
	}
	return employees, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	query := `UPDATE employees SET name = $1, email = $2, phone_number = $3, qualifications = $4, role = $5, age = $6, location = $7, password_hash = $8, updated_at = $9 WHERE id = $10`
	result, err := r.db.ExecContext(ctx, query,
		e.Name, e.Email, e.PhoneNumber, e.Qualifications,
		string(e.Role), e.Age, e.Location, e.PasswordHash,
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("従業員更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("従業員削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

var _ employee.Repository = (*EmployeeRepository)(nil)
