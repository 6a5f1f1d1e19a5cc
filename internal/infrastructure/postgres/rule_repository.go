package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/rule"
)

type ageDiscountRow struct {
	ID                 string          `db:"id"`
	MinAge             int             `db:"min_age"`
	MaxAge             int             `db:"max_age"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage"`
	Description        string          `db:"description"`
}

type cancellationRow struct {
	ID                  string          `db:"id"`
	DaysBeforeDeparture int             `db:"days_before_departure"`
	PenaltyPercentage   decimal.Decimal `db:"penalty_percentage"`
	Description         string          `db:"description"`
}

type RuleRepository struct{ db *sqlx.DB }

func NewRuleRepository(db *sqlx.DB) *RuleRepository { return &RuleRepository{db: db} }

func (r *RuleRepository) ListAgeDiscounts(ctx context.Context) ([]*rule.AgeDiscount, error) {
	query := `SELECT id, min_age, max_age, discount_percentage, description FROM age_discount_rules ORDER BY min_age`
	var rows []ageDiscountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("割引ルール取得に失敗: %w", err)
	}
	rules := make([]*rule.AgeDiscount, len(rows))
	for i, row := range rows {
		rules[i] = &rule.AgeDiscount{
			ID: row.ID, MinAge: row.MinAge, MaxAge: row.MaxAge,
			DiscountPercentage: row.DiscountPercentage,
			Description:        row.Description,
		}
	}
	return rules, nil
}

func (r *RuleRepository) CreateAgeDiscount(ctx context.Context, d *rule.AgeDiscount) error {
	query := `INSERT INTO age_discount_rules (min_age, max_age, discount_percentage, description) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, d.MinAge, d.MaxAge, d.DiscountPercentage, d.Description).Scan(&d.ID); err != nil {
		return fmt.Errorf("割引ルール作成に失敗: %w", err)
	}
	return nil
}

func (r *RuleRepository) DeleteAgeDiscount(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM age_discount_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("割引ルール削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return rule.ErrRuleNotFound
	}
	return nil
}

func (r *RuleRepository) ListCancellations(ctx context.Context) ([]*rule.Cancellation, error) {
	query := `SELECT id, days_before_departure, penalty_percentage, description FROM cancellation_rules ORDER BY days_before_departure`
	var rows []cancellationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("キャンセルルール取得に失敗: %w", err)
	}
	rules := make([]*rule.Cancellation, len(rows))
	for i, row := range rows {
		rules[i] = &rule.Cancellation{
			ID:                  row.ID,
			DaysBeforeDeparture: row.DaysBeforeDeparture,
			PenaltyPercentage:   row.PenaltyPercentage,
			Description:         row.Description,
		}
	}
	return rules, nil
}

func (r *RuleRepository) CreateCancellation(ctx context.Context, c *rule.Cancellation) error {
	query := `INSERT INTO cancellation_rules (days_before_departure, penalty_percentage, description) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.DaysBeforeDeparture, c.PenaltyPercentage, c.Description).Scan(&c.ID); err != nil {
		return fmt.Errorf("キャンセルルール作成に失敗: %w", err)
	}
	return nil
}

func (r *RuleRepository) DeleteCancellation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cancellation_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("キャンセルルール削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return rule.ErrRuleNotFound
	}
	return nil
}

var _ rule.Repository = (*RuleRepository)(nil)
