package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/bus"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/route"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

// TripService は便の作成・検索を提供する
type TripService struct {
	txManager transaction.Manager
	tripRepo  trip.Repository
	busRepo   bus.Repository
	routeRepo route.Repository
	seatRepo  seat.Repository
}

func NewTripService(txManager transaction.Manager, tr trip.Repository, br bus.Repository, rr route.Repository, sr seat.Repository) *TripService {
	return &TripService{txManager: txManager, tripRepo: tr, busRepo: br, routeRepo: rr, seatRepo: sr}
}

// CreateTripInput は便作成の入力
type CreateTripInput struct {
	BusID         string
	RouteID       string
	DepartureTime time.Time
	ArrivalTime   *time.Time
}

// CreateTrip は便を作成し、バスの座席数分の座席を初期化する
// 便と座席は単一トランザクションで確定し、座席のない便が残らないようにする
// 同じバス・同じ出発時刻の便は一意制約で拒否される
func (s *TripService) CreateTrip(ctx context.Context, input CreateTripInput) (*trip.Trip, error) {
	b, err := s.busRepo.GetByID(ctx, input.BusID)
	if err != nil {
		return nil, err
	}
	if _, err := s.routeRepo.GetByID(ctx, input.RouteID); err != nil {
		return nil, err
	}

	t := trip.NewTrip(b.ID, input.RouteID, input.DepartureTime, input.ArrivalTime, b.TotalSeats)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.tripRepo.Create(ctx, tx, t); err != nil {
		return nil, err
	}
	seats := make([]*seat.Seat, b.TotalSeats)
	for i := 0; i < b.TotalSeats; i++ {
		seats[i] = seat.NewSeat(t.ID, fmt.Sprintf("%d", i+1))
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return t, nil
}

func (s *TripService) GetTrip(ctx context.Context, id string) (*trip.Trip, error) {
	return s.tripRepo.GetByID(ctx, id)
}

func (s *TripService) ListTrips(ctx context.Context, limit, offset int) ([]*trip.Trip, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.tripRepo.List(ctx, limit, offset)
}

// SearchTrips は出発地・到着地・日付で予約可能な便を検索する
func (s *TripService) SearchTrips(ctx context.Context, criteria trip.SearchCriteria) ([]*trip.Trip, error) {
	return s.tripRepo.Search(ctx, criteria)
}

func (s *TripService) UpdateTripStatus(ctx context.Context, id string, status trip.Status) error {
	if status != trip.StatusScheduled && status != trip.StatusDeparted && status != trip.StatusCancelled {
		return trip.ErrTripNotBookable
	}
	return s.tripRepo.UpdateStatus(ctx, id, status)
}
