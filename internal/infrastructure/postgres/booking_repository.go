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

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID               string              `db:"id"`
	EmployeeID       string              `db:"employee_id"`
	BookingDate      time.Time           `db:"booking_date"`
	TotalAmount      decimal.Decimal     `db:"total_amount"`
	TotalTax         decimal.Decimal     `db:"total_tax"`
	Status           string              `db:"status"`
	CancellationDate *time.Time          `db:"cancellation_date"`
	RefundAmount     decimal.NullDecimal `db:"refund_amount"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}

type bookingLineRow struct {
	ID          string          `db:"id"`
	BookingID   string          `db:"booking_id"`
	SeatID      string          `db:"seat_id"`
	CustomerID  string          `db:"customer_id"`
	TicketPrice decimal.Decimal `db:"ticket_price"`
	TicketTax   decimal.Decimal `db:"ticket_tax"`
	Active      bool            `db:"active"`
}

func (r *bookingRow) toEntity(lines []*booking.Line) *booking.Booking {
	b := &booking.Booking{
		ID: r.ID, EmployeeID: r.EmployeeID, BookingDate: r.BookingDate,
		TotalAmount: r.TotalAmount, TotalTax: r.TotalTax,
		Status:           booking.Status(r.Status),
		CancellationDate: r.CancellationDate,
		Lines:            lines,
		CreatedAt:        r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
	if r.RefundAmount.Valid {
		refund := r.RefundAmount.Decimal
		b.RefundAmount = &refund
	}
	return b
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository { return &BookingRepository{db: db} }

// Create は予約と全明細を同一トランザクション内で作成する
// 明細の seat_id には有効明細に対する部分一意制約があり、競合時は ErrSeatTaken になる
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO bookings (employee_id, booking_date, total_amount, total_tax, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, b.EmployeeID, b.BookingDate, b.TotalAmount, b.TotalTax, string(b.Status), b.CreatedAt, b.UpdatedAt).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	for _, line := range b.Lines {
		line.BookingID = b.ID
		lineQuery := `INSERT INTO booking_lines (booking_id, seat_id, customer_id, ticket_price, ticket_tax, active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := sqlxTx.QueryRowContext(ctx, lineQuery, line.BookingID, line.SeatID, line.CustomerID, line.TicketPrice, line.TicketTax, line.Active).Scan(&line.ID); err != nil {
			if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
				return booking.ErrSeatTaken
			}
			return fmt.Errorf("予約明細作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT id, employee_id, booking_date, total_amount, total_tax, status, cancellation_date, refund_amount, created_at, updated_at FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(lines), nil
}

// FindActiveSeatIDs は要求座席のうち有効明細に参照されているものを一括で返す
// 1件ずつではなく1クエリで検査し、部分適用を避ける
func (r *BookingRepository) FindActiveSeatIDs(ctx context.Context, seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	var conflicting []string
	query := `SELECT seat_id FROM booking_lines WHERE seat_id = ANY($1) AND active ORDER BY seat_id`
	if err := r.db.SelectContext(ctx, &conflicting, query, pq.Array(seatIDs)); err != nil {
		return nil, fmt.Errorf("座席競合チェックに失敗: %w", err)
	}
	return conflicting, nil
}

func (r *BookingRepository) MarkCancelled(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	refund := decimal.NullDecimal{}
	if b.RefundAmount != nil {
		refund = decimal.NewNullDecimal(*b.RefundAmount)
	}
	query := `UPDATE bookings SET status = $1, cancellation_date = $2, refund_amount = $3, updated_at = $4 WHERE id = $5 AND status = 'confirmed'`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.CancellationDate, refund, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約キャンセル更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrAlreadyCancelled
	}
	if _, err := sqlxTx.ExecContext(ctx, `UPDATE booking_lines SET active = FALSE WHERE booking_id = $1`, b.ID); err != nil {
		return fmt.Errorf("予約明細無効化に失敗: %w", err)
	}
	return nil
}

type ticketHeaderRow struct {
	BookingID        string              `db:"booking_id"`
	BookingDate      time.Time           `db:"booking_date"`
	Status           string              `db:"status"`
	TotalAmount      decimal.Decimal     `db:"total_amount"`
	TotalTax         decimal.Decimal     `db:"total_tax"`
	RefundAmount     decimal.NullDecimal `db:"refund_amount"`
	CancellationDate *time.Time          `db:"cancellation_date"`
}

type ticketItemRow struct {
	CustomerName  string          `db:"customer_name"`
	DateOfBirth   time.Time       `db:"date_of_birth"`
	Email         string          `db:"email"`
	PhoneNumber   string          `db:"phone_number"`
	StartLocation string          `db:"start_location"`
	EndLocation   string          `db:"end_location"`
	BusNumber     string          `db:"bus_number"`
	SeatNumber    string          `db:"seat_number"`
	DepartureTime time.Time       `db:"departure_time"`
	TicketPrice   decimal.Decimal `db:"ticket_price"`
	TicketTax     decimal.Decimal `db:"ticket_tax"`
}

// GetTicket は発券に必要な行を明示的な結合で取得する
func (r *BookingRepository) GetTicket(ctx context.Context, id string) (*booking.Ticket, error) {
	var header ticketHeaderRow
	headerQuery := `SELECT id AS booking_id, booking_date, status, total_amount, total_tax, refund_amount, cancellation_date FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &header, headerQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("発券情報取得に失敗: %w", err)
	}

	itemQuery := `SELECT c.name AS customer_name, c.date_of_birth, c.email, c.phone_number,
		rt.start_location, rt.end_location, bs.bus_number, s.seat_number, t.departure_time,
		bl.ticket_price, bl.ticket_tax
		FROM booking_lines bl
		JOIN customers c ON c.id = bl.customer_id
		JOIN seats s ON s.id = bl.seat_id
		JOIN trips t ON t.id = s.trip_id
		JOIN routes rt ON rt.id = t.route_id
		JOIN buses bs ON bs.id = t.bus_id
		WHERE bl.booking_id = $1
		ORDER BY s.seat_number`
	var itemRows []ticketItemRow
	if err := r.db.SelectContext(ctx, &itemRows, itemQuery, id); err != nil {
		return nil, fmt.Errorf("発券明細取得に失敗: %w", err)
	}

	ticket := &booking.Ticket{
		BookingID:        header.BookingID,
		BookingDate:      header.BookingDate,
		Status:           booking.Status(header.Status),
		TotalAmount:      header.TotalAmount,
		TotalTax:         header.TotalTax,
		CancellationDate: header.CancellationDate,
		Items:            make([]booking.TicketItem, len(itemRows)),
	}
	if header.RefundAmount.Valid {
		refund := header.RefundAmount.Decimal
		ticket.RefundAmount = &refund
	}
	for i, item := range itemRows {
		ticket.Items[i] = booking.TicketItem{
			CustomerName:  item.CustomerName,
			DateOfBirth:   item.DateOfBirth,
			Email:         item.Email,
			PhoneNumber:   item.PhoneNumber,
			StartLocation: item.StartLocation,
			EndLocation:   item.EndLocation,
			BusNumber:     item.BusNumber,
			SeatNumber:    item.SeatNumber,
			DepartureTime: item.DepartureTime,
			TicketPrice:   item.TicketPrice,
			TicketTax:     item.TicketTax,
		}
	}
	return ticket, nil
}

type summaryRow struct {
	Period           string          `db:"period"`
	TotalTickets     int             `db:"total_tickets"`
	TotalRevenue     decimal.Decimal `db:"total_revenue"`
	TotalTax         decimal.Decimal `db:"total_tax"`
	CancelledTickets int             `db:"cancelled_tickets"`
	TotalRefund      decimal.Decimal `db:"total_refund"`
}

func (r *summaryRow) toEntity() *booking.PeriodSummary {
	return &booking.PeriodSummary{
		Period: r.Period, TotalTickets: r.TotalTickets,
		TotalRevenue: r.TotalRevenue, TotalTax: r.TotalTax,
		CancelledTickets: r.CancelledTickets, TotalRefund: r.TotalRefund,
	}
}

// SummarizeByMonth は予約を月単位で集計する
// 合計金額は予約単位の値のため、明細との結合で重複加算しないよう予約ごとに集約してから合算する
func (r *BookingRepository) SummarizeByMonth(ctx context.Context) ([]*booking.PeriodSummary, error) {
	query := `SELECT to_char(p.month, 'YYYY-MM') AS period,
			SUM(p.tickets)::int AS total_tickets,
			SUM(p.total_amount) AS total_revenue,
			SUM(p.total_tax) AS total_tax,
			SUM(p.cancelled_tickets)::int AS cancelled_tickets,
			SUM(p.refund) AS total_refund
		FROM (` + perBookingSummary + `) p
		GROUP BY p.month
		ORDER BY period`
	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("月次集計に失敗: %w", err)
	}
	summaries := make([]*booking.PeriodSummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.toEntity()
	}
	return summaries, nil
}

// perBookingSummary は予約1件を1行に集約するサブクエリ
const perBookingSummary = `SELECT date_trunc('month', b.booking_date) AS month,
		date_trunc('day', b.booking_date) AS day,
		b.total_amount,
		b.total_tax,
		COUNT(bl.id) AS tickets,
		CASE WHEN b.status = 'cancelled' THEN COUNT(bl.id) ELSE 0 END AS cancelled_tickets,
		CASE WHEN b.status = 'cancelled' THEN COALESCE(b.refund_amount, 0) ELSE 0 END AS refund
	FROM bookings b
	LEFT JOIN booking_lines bl ON bl.booking_id = b.id
	GROUP BY b.id`

func (r *BookingRepository) SummarizeMonth(ctx context.Context, year, month int) (*booking.PeriodSummary, error) {
	query := `SELECT to_char(p.month, 'YYYY-MM') AS period,
			SUM(p.tickets)::int AS total_tickets,
			SUM(p.total_amount) AS total_revenue,
			SUM(p.total_tax) AS total_tax,
			SUM(p.cancelled_tickets)::int AS cancelled_tickets,
			SUM(p.refund) AS total_refund
		FROM (` + perBookingSummary + `) p
		WHERE EXTRACT(YEAR FROM p.month) = $1 AND EXTRACT(MONTH FROM p.month) = $2
		GROUP BY p.month`
	var row summaryRow
	if err := r.db.GetContext(ctx, &row, query, year, month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("月次集計に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) SummarizeDay(ctx context.Context, year, month, day int) (*booking.PeriodSummary, error) {
	query := `SELECT to_char(p.day, 'YYYY-MM-DD') AS period,
			SUM(p.tickets)::int AS total_tickets,
			SUM(p.total_amount) AS total_revenue,
			SUM(p.total_tax) AS total_tax,
			SUM(p.cancelled_tickets)::int AS cancelled_tickets,
			SUM(p.refund) AS total_refund
		FROM (` + perBookingSummary + `) p
		WHERE EXTRACT(YEAR FROM p.day) = $1 AND EXTRACT(MONTH FROM p.day) = $2 AND EXTRACT(DAY FROM p.day) = $3
		GROUP BY p.day`
	var row summaryRow
	if err := r.db.GetContext(ctx, &row, query, year, month, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("日次集計に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) getLines(ctx context.Context, bookingID string) ([]*booking.Line, error) {
	var rows []bookingLineRow
	query := `SELECT id, booking_id, seat_id, customer_id, ticket_price, ticket_tax, active FROM booking_lines WHERE booking_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, bookingID); err != nil {
		return nil, fmt.Errorf("予約明細取得に失敗: %w", err)
	}
	lines := make([]*booking.Line, len(rows))
	for i, row := range rows {
		lines[i] = &booking.Line{
			ID: row.ID, BookingID: row.BookingID, SeatID: row.SeatID,
			CustomerID: row.CustomerID, TicketPrice: row.TicketPrice,
			TicketTax: row.TicketTax, Active: row.Active,
		}
	}
	return lines, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
