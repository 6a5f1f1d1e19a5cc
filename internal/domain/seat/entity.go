package seat

import "time"

// Seat は便内の座席エンティティを表す
// 座席番号は同一便内で一意
type Seat struct {
	ID          string
	TripID      string
	SeatNumber  string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(tripID, seatNumber string) *Seat {
	now := time.Now()
	return &Seat{
		TripID:      tripID,
		SeatNumber:  seatNumber,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.TripID == "" {
		return ErrTripIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	return nil
}
