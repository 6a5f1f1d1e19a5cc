package trip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は便の状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDeparted  Status = "departed"
	StatusCancelled Status = "cancelled"
)

// Trip は特定のバスが特定の路線を特定の時刻に運行する便を表す
// AvailableSeats は座席の is_available フラグと常に一致していなければならない
type Trip struct {
	ID             string
	BusID          string
	RouteID        string
	DepartureTime  time.Time
	ArrivalTime    *time.Time
	TotalSeats     int
	AvailableSeats int
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTrip は新しい便を作成する
// 座席は便作成時に全席分が初期化されるため、空席数は座席容量と同数で始まる
func NewTrip(busID, routeID string, departureTime time.Time, arrivalTime *time.Time, totalSeats int) *Trip {
	now := time.Now()
	return &Trip{
		BusID:          busID,
		RouteID:        routeID,
		DepartureTime:  departureTime,
		ArrivalTime:    arrivalTime,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsBookable は便が予約可能な状態かを返す
func (t *Trip) IsBookable() bool {
	return t.Status == StatusScheduled
}

// Validate は便の検証を行う
func (t *Trip) Validate() error {
	if t.BusID == "" {
		return ErrBusIDRequired
	}
	if t.RouteID == "" {
		return ErrRouteIDRequired
	}
	if t.DepartureTime.IsZero() {
		return ErrDepartureTimeRequired
	}
	if t.ArrivalTime != nil && t.ArrivalTime.Before(t.DepartureTime) {
		return ErrInvalidArrivalTime
	}
	if t.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}

// PricingInfo は運賃計算に必要な便・路線・車種の情報を表す
// 予約コーディネーターが1回の読み取りで参照する読み取り専用モデル
type PricingInfo struct {
	TripID          string
	DepartureTime   time.Time
	Status          Status
	BasePrice       decimal.Decimal
	PriceMultiplier decimal.Decimal
}
