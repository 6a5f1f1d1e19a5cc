package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/route"
)

type routeRow struct {
	ID            string          `db:"id"`
	RouteCode     string          `db:"route_code"`
	StartLocation string          `db:"start_location"`
	EndLocation   string          `db:"end_location"`
	Distance      decimal.Decimal `db:"distance"`
	BasePrice     decimal.Decimal `db:"base_price"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r *routeRow) toEntity() *route.Route {
	return &route.Route{
		ID: r.ID, RouteCode: r.RouteCode,
		StartLocation: r.StartLocation, EndLocation: r.EndLocation,
		Distance: r.Distance, BasePrice: r.BasePrice,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type stopRow struct {
	ID           string `db:"id"`
	RouteID      string `db:"route_id"`
	StopLocation string `db:"stop_location"`
	StopOrder    int    `db:"stop_order"`
}

type RouteRepository struct{ db *sqlx.DB }

func NewRouteRepository(db *sqlx.DB) *RouteRepository { return &RouteRepository{db: db} }

func (r *RouteRepository) Create(ctx context.Context, rt *route.Route) error {
	query := `INSERT INTO routes (route_code, start_location, end_location, distance, base_price, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, rt.RouteCode, rt.StartLocation, rt.EndLocation, rt.Distance, rt.BasePrice, rt.CreatedAt, rt.UpdatedAt).Scan(&rt.ID); err != nil {
		return fmt.Errorf("路線作成に失敗: %w", err)
	}
	return nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id string) (*route.Route, error) {
	query := `SELECT id, route_code, start_location, end_location, distance, base_price, created_at, updated_at FROM routes WHERE id = $1`
	var row routeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, route.ErrRouteNotFound
		}
		return nil, fmt.Errorf("路線取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RouteRepository) List(ctx context.Context, limit, offset int) ([]*route.Route, error) {
	query := `SELECT id, route_code, start_location, end_location, distance, base_price, created_at, updated_at FROM routes ORDER BY route_code LIMIT $1 OFFSET $2`
	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("路線一覧取得に失敗: %w", err)
	}
	routes := make([]*route.Route, len(rows))
	for i, row := range rows {
		routes[i] = row.toEntity()
	}
	return routes, nil
}

func (r *RouteRepository) Update(ctx context.Context, rt *route.Route) error {
	query := `UPDATE routes SET route_code = $1, start_location = $2, end_location = $3, distance = $4, base_price = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query, rt.RouteCode, rt.StartLocation, rt.EndLocation, rt.Distance, rt.BasePrice, rt.UpdatedAt, rt.ID)
	if err != nil {
		return fmt.Errorf("路線更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return route.ErrRouteNotFound
	}
	return nil
}

func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("路線削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return route.ErrRouteNotFound
	}
	return nil
}

func (r *RouteRepository) ListStops(ctx context.Context, routeID string) ([]*route.Stop, error) {
	query := `SELECT id, route_id, stop_location, stop_order FROM route_stops WHERE route_id = $1 ORDER BY stop_order`
	var rows []stopRow
	if err := r.db.SelectContext(ctx, &rows, query, routeID); err != nil {
		return nil, fmt.Errorf("停留所一覧取得に失敗: %w", err)
	}
	stops := make([]*route.Stop, len(rows))
	for i, row := range rows {
		stops[i] = &route.Stop{ID: row.ID, RouteID: row.RouteID, StopLocation: row.StopLocation, StopOrder: row.StopOrder}
	}
	return stops, nil
}

func (r *RouteRepository) AddStop(ctx context.Context, s *route.Stop) error {
	query := `INSERT INTO route_stops (route_id, stop_location, stop_order) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, s.RouteID, s.StopLocation, s.StopOrder).Scan(&s.ID); err != nil {
		return fmt.Errorf("停留所追加に失敗: %w", err)
	}
	return nil
}

var _ route.Repository = (*RouteRepository)(nil)
