package handler

import (
	"context"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetTicketData(ctx context.Context, id string) (*booking.Ticket, error)
}

// TicketServiceInterface は発券サービスのインターフェース
type TicketServiceInterface interface {
	RenderTicket(ctx context.Context, bookingID string) ([]byte, string, error)
}

// TripServiceInterface は便サービスのインターフェース
type TripServiceInterface interface {
	CreateTrip(ctx context.Context, input application.CreateTripInput) (*trip.Trip, error)
	GetTrip(ctx context.Context, id string) (*trip.Trip, error)
	ListTrips(ctx context.Context, limit, offset int) ([]*trip.Trip, error)
	SearchTrips(ctx context.Context, criteria trip.SearchCriteria) ([]*trip.Trip, error)
	UpdateTripStatus(ctx context.Context, id string, status trip.Status) error
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	CreateSeat(ctx context.Context, tripID, seatNumber string) (*seat.Seat, error)
	CreateSeats(ctx context.Context, tripID string, seatNumbers []string) ([]*seat.Seat, error)
	ListSeats(ctx context.Context, tripID string) ([]*seat.Seat, error)
	GetAvailableCount(ctx context.Context, tripID string) (int, error)
}

// AuthServiceInterface は認証サービスのインターフェース
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (string, *employee.Employee, error)
	Register(ctx context.Context, actorUsername string, input application.RegisterEmployeeInput) (*employee.Employee, error)
}

// ReportServiceInterface はレポートサービスのインターフェース
type ReportServiceInterface interface {
	MonthlySummaries(ctx context.Context) ([]*booking.PeriodSummary, error)
	MonthSummary(ctx context.Context, year, month int) (*booking.PeriodSummary, error)
	DaySummary(ctx context.Context, year, month, day int) (*booking.PeriodSummary, error)
}
