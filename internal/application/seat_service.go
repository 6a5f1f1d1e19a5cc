package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
	redisinfra "github.com/sanosuguru/go-bus-ticket-booking/internal/infrastructure/redis"
)

// 空席数キャッシュのTTL
const seatCountCacheTTL = 30 * time.Second

// SeatService は座席の管理と空席数の照会を提供する
type SeatService struct {
	txManager transaction.Manager
	seatRepo  seat.Repository
	tripRepo  trip.Repository
	seatCache *redisinfra.SeatCache
}

func NewSeatService(txManager transaction.Manager, sr seat.Repository, tr trip.Repository, sc *redisinfra.SeatCache) *SeatService {
	return &SeatService{txManager: txManager, seatRepo: sr, tripRepo: tr, seatCache: sc}
}

// CreateSeat は便に座席を1席追加し、便の座席容量も加算する
// 座席行の作成と容量の加算は単一トランザクションで確定する
func (s *SeatService) CreateSeat(ctx context.Context, tripID, seatNumber string) (*seat.Seat, error) {
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	st := seat.NewSeat(tripID, seatNumber)
	if err := st.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.seatRepo.Create(ctx, tx, st); err != nil {
		return nil, err
	}
	if err := s.tripRepo.AddTotalSeats(ctx, tx, tripID, 1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	s.invalidate(ctx, tripID)
	return st, nil
}

// CreateSeats は便に複数座席を一括追加する
func (s *SeatService) CreateSeats(ctx context.Context, tripID string, seatNumbers []string) ([]*seat.Seat, error) {
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	seats := make([]*seat.Seat, len(seatNumbers))
	for i, num := range seatNumbers {
		st := seat.NewSeat(tripID, num)
		if err := st.Validate(); err != nil {
			return nil, err
		}
		seats[i] = st
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return nil, err
	}
	if err := s.tripRepo.AddTotalSeats(ctx, tx, tripID, len(seats)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	s.invalidate(ctx, tripID)
	return seats, nil
}

func (s *SeatService) ListSeats(ctx context.Context, tripID string) ([]*seat.Seat, error) {
	return s.seatRepo.GetByTripID(ctx, tripID)
}

// GetAvailableCount は便の空席数を返す
// キャッシュミス時はDBから取得してキャッシュを温める
func (s *SeatService) GetAvailableCount(ctx context.Context, tripID string) (int, error) {
	if s.seatCache != nil {
		// キャッシュミス・障害時はDBにフォールバック
		if count, err := s.seatCache.GetAvailableCount(ctx, tripID); err == nil {
			return count, nil
		}
	}
	count, err := s.seatRepo.CountAvailableByTripID(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if s.seatCache != nil {
		_ = s.seatCache.SetAvailableCount(ctx, tripID, count, seatCountCacheTTL)
	}
	return count, nil
}

func (s *SeatService) invalidate(ctx context.Context, tripID string) {
	if s.seatCache != nil {
		_ = s.seatCache.Invalidate(ctx, tripID)
	}
}
