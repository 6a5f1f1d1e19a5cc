package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking は従業員が実行した予約トランザクションを表す
// TotalAmount / TotalTax は作成時に明細から合算され、以後再計算されない
type Booking struct {
	ID               string
	EmployeeID       string
	BookingDate      time.Time
	TotalAmount      decimal.Decimal
	TotalTax         decimal.Decimal
	Status           Status
	CancellationDate *time.Time
	RefundAmount     *decimal.Decimal
	Lines            []*Line
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Line は予約内の1座席分の明細を表す
// Active は親予約がキャンセルされたときのみ false になる
type Line struct {
	ID          string
	BookingID   string
	SeatID      string
	CustomerID  string
	TicketPrice decimal.Decimal
	TicketTax   decimal.Decimal
	Active      bool
}

// NewBooking は新しい予約を作成する
func NewBooking(employeeID string) *Booking {
	now := time.Now()
	return &Booking{
		EmployeeID:  employeeID,
		BookingDate: now,
		TotalAmount: decimal.Zero,
		TotalTax:    decimal.Zero,
		Status:      StatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddLine は明細を追加し合計金額・合計税額を加算する
func (b *Booking) AddLine(seatID, customerID string, ticketPrice, ticketTax decimal.Decimal) {
	b.Lines = append(b.Lines, &Line{
		SeatID:      seatID,
		CustomerID:  customerID,
		TicketPrice: ticketPrice,
		TicketTax:   ticketTax,
		Active:      true,
	})
	b.TotalAmount = b.TotalAmount.Add(ticketPrice)
	b.TotalTax = b.TotalTax.Add(ticketTax)
}

// SeatIDs は全明細の座席IDを返す
func (b *Booking) SeatIDs() []string {
	ids := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		ids[i] = l.SeatID
	}
	return ids
}

// IsCancelled は予約がキャンセル済みかを返す
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Cancel は予約をキャンセル状態にし払い戻し額を記録する
func (b *Booking) Cancel(refundAmount decimal.Decimal, at time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.CancellationDate = &at
	b.RefundAmount = &refundAmount
	b.UpdatedAt = at
	for _, l := range b.Lines {
		l.Active = false
	}
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EmployeeID == "" {
		return ErrEmployeeIDRequired
	}
	if len(b.Lines) == 0 {
		return ErrNoLines
	}
	return nil
}
