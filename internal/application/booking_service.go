package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/rule"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
	redislock "github.com/sanosuguru/go-bus-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/pkg/metrics"
)

// BookingService は予約トランザクションとキャンセルを調整する
type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	seatRepo     seat.Repository
	tripRepo     trip.Repository
	customerRepo customer.Repository
	employeeRepo employee.Repository
	ruleRepo     rule.Repository
	lockManager  *redislock.LockManager
	seatCache    *redislock.SeatCache
	metrics      *metrics.Metrics
}

func NewBookingService(
	txManager transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	tr trip.Repository,
	cr customer.Repository,
	er employee.Repository,
	rr rule.Repository,
	lm *redislock.LockManager,
	sc *redislock.SeatCache,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager: txManager, bookingRepo: br, seatRepo: sr, tripRepo: tr,
		customerRepo: cr, employeeRepo: er, ruleRepo: rr,
		lockManager: lm, seatCache: sc, metrics: m,
	}
}

// CustomerInput はインライン作成する乗客の入力
type CustomerInput struct {
	Name        string
	DateOfBirth time.Time
	Email       string
	PhoneNumber string
}

// BookingLineInput は予約1明細分の入力
// CustomerID か Customer のどちらか一方を指定する
type BookingLineInput struct {
	SeatID     string
	CustomerID string
	Customer   *CustomerInput
}

// CreateBookingInput は予約作成の入力
type CreateBookingInput struct {
	EmployeeUsername string
	Lines            []BookingLineInput
}

// CreateBooking は複数座席の予約を単一トランザクションで作成する
// 事前の一括競合チェックで衝突座席を全て報告し、確定時は条件付きUPDATEと
// 部分一意制約で同時実行に対して二重確保を防ぐ
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	b, err := s.createBooking(ctx, input)
	s.countBooking(err)
	return b, err
}

func (s *BookingService) createBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	emp, err := s.employeeRepo.GetByUsername(ctx, input.EmployeeUsername)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, employee.ErrUnauthorized
		}
		return nil, fmt.Errorf("従業員取得に失敗: %w", err)
	}
	if !emp.CanBook() {
		return nil, employee.ErrUnauthorized
	}

	if len(input.Lines) == 0 {
		return nil, booking.ErrNoLines
	}
	seatIDs := make([]string, len(input.Lines))
	for i, line := range input.Lines {
		seatIDs[i] = line.SeatID
	}
	if dups := duplicateIDs(seatIDs); len(dups) > 0 {
		return nil, &booking.SeatConflictError{SeatIDs: dups}
	}

	// 有効明細との競合を1クエリで検査し、衝突座席を全て報告する
	conflicting, err := s.bookingRepo.FindActiveSeatIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(conflicting) > 0 {
		return nil, &booking.SeatConflictError{SeatIDs: conflicting}
	}

	// 分散ロックを取得（座席IDをソートしてデッドロックを防止）
	if s.lockManager != nil {
		lock, err := s.acquireSeatLock(ctx, seatIDs)
		if err != nil {
			return nil, err
		}
		defer lock.Release(ctx)
	}

	now := time.Now()

	discountRules, err := s.ruleRepo.ListAgeDiscounts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b := booking.NewBooking(emp.ID)
	pricingByTrip := make(map[string]*trip.PricingInfo)
	seatsByTrip := make(map[string]int)

	for _, line := range input.Lines {
		st, err := s.seatRepo.GetByID(ctx, line.SeatID)
		if err != nil {
			return nil, err
		}
		if !st.IsAvailable {
			return nil, fmt.Errorf("座席 %s: %w", st.ID, seat.ErrSeatNotAvailable)
		}

		info, ok := pricingByTrip[st.TripID]
		if !ok {
			info, err = s.tripRepo.GetPricingInfo(ctx, st.TripID)
			if err != nil {
				return nil, err
			}
			if info.Status != trip.StatusScheduled || !info.DepartureTime.After(now) {
				return nil, trip.ErrTripNotBookable
			}
			pricingByTrip[st.TripID] = info
		}

		cust, err := s.resolveCustomer(ctx, tx, line)
		if err != nil {
			return nil, err
		}

		age := pricing.Age(cust.DateOfBirth, now)
		discount, err := rule.LookupDiscount(discountRules, age)
		if err != nil {
			return nil, err
		}

		price, tax := pricing.Price(info.BasePrice, info.PriceMultiplier, discount.DiscountPercentage)
		b.AddLine(st.ID, cust.ID, price, tax)
		seatsByTrip[st.TripID]++
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := s.seatRepo.ClaimSeats(ctx, tx, seatIDs); err != nil {
		return nil, err
	}
	for tripID, n := range seatsByTrip {
		if err := s.tripRepo.DecrementAvailableSeats(ctx, tx, tripID, n); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateSeatCache(ctx, seatsByTrip)
	return b, nil
}

// CancelBooking は予約をキャンセルし払い戻し額を計算する
// 違約金率は出発までの日数（整数日切り捨て）に対する最大の閾値ルールで決まる
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.cancelBooking(ctx, bookingID)
	s.countCancellation(err)
	return b, err
}

func (s *BookingService) cancelBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.IsCancelled() {
		return nil, booking.ErrAlreadyCancelled
	}
	if len(b.Lines) == 0 {
		return nil, booking.ErrNoLines
	}

	// 予約内の便は共通のため先頭明細の座席から出発時刻を引く
	firstSeat, err := s.seatRepo.GetByID(ctx, b.Lines[0].SeatID)
	if err != nil {
		return nil, err
	}
	tr, err := s.tripRepo.GetByID(ctx, firstSeat.TripID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	daysBefore := rule.DaysBeforeDeparture(tr.DepartureTime, now)
	cancellationRules, err := s.ruleRepo.ListCancellations(ctx)
	if err != nil {
		return nil, err
	}
	penalty, err := rule.LookupCancellation(cancellationRules, daysBefore)
	if err != nil {
		return nil, err
	}
	refund := pricing.Refund(b.TotalAmount, penalty.PenaltyPercentage)

	if err := b.Cancel(refund, now); err != nil {
		return nil, err
	}

	seatsByTrip := make(map[string]int)
	for _, line := range b.Lines {
		st, err := s.seatRepo.GetByID(ctx, line.SeatID)
		if err != nil {
			return nil, err
		}
		seatsByTrip[st.TripID]++
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.MarkCancelled(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := s.seatRepo.ReleaseSeats(ctx, tx, b.SeatIDs()); err != nil {
		return nil, err
	}
	for tripID, n := range seatsByTrip {
		if err := s.tripRepo.IncrementAvailableSeats(ctx, tx, tripID, n); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateSeatCache(ctx, seatsByTrip)
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// GetTicketData は発券用の結合済み読み取りモデルを返す
func (s *BookingService) GetTicketData(ctx context.Context, id string) (*booking.Ticket, error) {
	return s.bookingRepo.GetTicket(ctx, id)
}

func (s *BookingService) resolveCustomer(ctx context.Context, tx transaction.Tx, line BookingLineInput) (*customer.Customer, error) {
	if line.CustomerID != "" {
		return s.customerRepo.GetByID(ctx, line.CustomerID)
	}
	if line.Customer == nil {
		return nil, customer.ErrMissingCustomerFields
	}
	cust := customer.NewCustomer(line.Customer.Name, line.Customer.DateOfBirth, line.Customer.Email, line.Customer.PhoneNumber)
	if err := cust.Validate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, tx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

func (s *BookingService) acquireSeatLock(ctx context.Context, seatIDs []string) (*redislock.DistributedLock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, buildSeatLockKey(seatIDs), 10*time.Second, 3, 100*time.Millisecond)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, redislock.ErrLockNotAcquired) {
			return nil, &booking.SeatConflictError{SeatIDs: seatIDs}
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	return lock, nil
}

func (s *BookingService) invalidateSeatCache(ctx context.Context, seatsByTrip map[string]int) {
	if s.seatCache == nil {
		return
	}
	for tripID := range seatsByTrip {
		// キャッシュ無効化の失敗は予約結果に影響させない
		_ = s.seatCache.Invalidate(ctx, tripID)
	}
}

func (s *BookingService) countBooking(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingsTotal.WithLabelValues(bookingStatusLabel(err)).Inc()
}

func (s *BookingService) countCancellation(err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrBookingNotFound), errors.Is(err, booking.ErrAlreadyCancelled):
		status = "not_found"
	case errors.Is(err, rule.ErrNoCancellationRule):
		status = "no_rule"
	default:
		status = "error"
	}
	s.metrics.CancellationsTotal.WithLabelValues(status).Inc()
}

func bookingStatusLabel(err error) string {
	var conflict *booking.SeatConflictError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &conflict),
		errors.Is(err, booking.ErrSeatTaken),
		errors.Is(err, seat.ErrSeatNotAvailable):
		return "seat_conflict"
	case errors.Is(err, booking.ErrNoLines),
		errors.Is(err, customer.ErrMissingCustomerFields),
		errors.Is(err, rule.ErrNoDiscountRule),
		errors.Is(err, trip.ErrTripNotBookable):
		return "validation_error"
	default:
		return "error"
	}
}

// buildSeatLockKey は座席IDからロックキーを生成（ソートしてデッドロック防止）
func buildSeatLockKey(seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "seats:" + strings.Join(sorted, ",")
}

func duplicateIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var dups []string
	for _, id := range ids {
		if seen[id] {
			dups = append(dups, id)
			continue
		}
		seen[id] = true
	}
	return dups
}
