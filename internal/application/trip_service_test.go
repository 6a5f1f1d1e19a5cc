package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/bus"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/route"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

// === Mock implementations ===

// MockBusRepository implements bus.Repository
type MockBusRepository struct {
	mock.Mock
}

func (m *MockBusRepository) Create(ctx context.Context, b *bus.Bus) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusRepository) GetByID(ctx context.Context, id string) (*bus.Bus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bus.Bus), args.Error(1)
}

func (m *MockBusRepository) List(ctx context.Context, limit, offset int) ([]*bus.Bus, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bus.Bus), args.Error(1)
}

func (m *MockBusRepository) Update(ctx context.Context, b *bus.Bus) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRouteRepository implements route.Repository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Create(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id string) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) List(ctx context.Context, limit, offset int) ([]*route.Route, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRouteRepository) ListStops(ctx context.Context, routeID string) ([]*route.Stop, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Stop), args.Error(1)
}

func (m *MockRouteRepository) AddStop(ctx context.Context, s *route.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// === Test helper ===

type tripTestDeps struct {
	txManager *MockTxManager
	tx        *MockTx
	tripRepo  *MockTripRepository
	busRepo   *MockBusRepository
	routeRepo *MockRouteRepository
	seatRepo  *MockSeatRepository
	service   *TripService
}

func newTripTestDeps() *tripTestDeps {
	deps := &tripTestDeps{
		txManager: new(MockTxManager),
		tx:        new(MockTx),
		tripRepo:  new(MockTripRepository),
		busRepo:   new(MockBusRepository),
		routeRepo: new(MockRouteRepository),
		seatRepo:  new(MockSeatRepository),
	}
	deps.service = NewTripService(deps.txManager, deps.tripRepo, deps.busRepo, deps.routeRepo, deps.seatRepo)
	return deps
}

func testBus() *bus.Bus {
	return &bus.Bus{ID: "bus-1", BusCode: "EXP-001", TypeID: "type-1", TotalSeats: 3}
}

func testRoute() *route.Route {
	return &route.Route{
		ID: "route-1", RouteCode: "TYO-OSA",
		StartLocation: "東京", EndLocation: "大阪",
		Distance:  decimal.RequireFromString("500"),
		BasePrice: decimal.RequireFromString("50"),
	}
}

// === Tests ===

func TestTripService_CreateTrip_Success(t *testing.T) {
	deps := newTripTestDeps()
	ctx := context.Background()

	deps.busRepo.On("GetByID", ctx, "bus-1").Return(testBus(), nil)
	deps.routeRepo.On("GetByID", ctx, "route-1").Return(testRoute(), nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.tripRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*trip.Trip")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*trip.Trip).ID = "trip-1"
		}).Return(nil)
	// バスの座席数分の座席が同一トランザクションで初期化される
	deps.seatRepo.On("CreateBulk", ctx, deps.tx, mock.MatchedBy(func(seats []*seat.Seat) bool {
		if len(seats) != 3 {
			return false
		}
		for _, st := range seats {
			if st.TripID != "trip-1" || !st.IsAvailable {
				return false
			}
		}
		return true
	})).Return(nil)

	created, err := deps.service.CreateTrip(ctx, CreateTripInput{
		BusID:         "bus-1",
		RouteID:       "route-1",
		DepartureTime: time.Now().Add(72 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, "trip-1", created.ID)
	assert.Equal(t, 3, created.TotalSeats)
	assert.Equal(t, 3, created.AvailableSeats)
	deps.tx.AssertCalled(t, "Commit")
	deps.seatRepo.AssertExpectations(t)
}

func TestTripService_CreateTrip_RollbackOnSeatInitFailure(t *testing.T) {
	deps := newTripTestDeps()
	ctx := context.Background()

	deps.busRepo.On("GetByID", ctx, "bus-1").Return(testBus(), nil)
	deps.routeRepo.On("GetByID", ctx, "route-1").Return(testRoute(), nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)

	deps.tripRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*trip.Trip")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*trip.Trip).ID = "trip-1"
		}).Return(nil)

	dbErr := errors.New("db down")
	deps.seatRepo.On("CreateBulk", ctx, deps.tx, mock.Anything).Return(dbErr)

	// 座席初期化が失敗した場合、便自体も残ってはならない
	_, err := deps.service.CreateTrip(ctx, CreateTripInput{
		BusID:         "bus-1",
		RouteID:       "route-1",
		DepartureTime: time.Now().Add(72 * time.Hour),
	})

	assert.ErrorIs(t, err, dbErr)
	deps.tx.AssertNotCalled(t, "Commit")
	deps.tx.AssertCalled(t, "Rollback")
}

func TestTripService_CreateTrip_UnknownBus(t *testing.T) {
	deps := newTripTestDeps()
	ctx := context.Background()

	deps.busRepo.On("GetByID", ctx, "ghost").Return(nil, bus.ErrBusNotFound)

	_, err := deps.service.CreateTrip(ctx, CreateTripInput{
		BusID:         "ghost",
		RouteID:       "route-1",
		DepartureTime: time.Now().Add(72 * time.Hour),
	})

	assert.ErrorIs(t, err, bus.ErrBusNotFound)
	deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestTripService_UpdateTripStatus_RejectsUnknownStatus(t *testing.T) {
	deps := newTripTestDeps()
	ctx := context.Background()

	err := deps.service.UpdateTripStatus(ctx, "trip-1", trip.Status("boarding"))

	assert.ErrorIs(t, err, trip.ErrTripNotBookable)
	deps.tripRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
