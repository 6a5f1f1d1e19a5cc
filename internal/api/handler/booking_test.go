package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
)

// MockBookingService implements BookingServiceInterface
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetTicketData(ctx context.Context, id string) (*booking.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Ticket), args.Error(1)
}

// MockTicketService implements TicketServiceInterface
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) RenderTicket(ctx context.Context, bookingID string) ([]byte, string, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func confirmedBooking() *booking.Booking {
	b := booking.NewBooking("emp-1")
	b.ID = "booking-1"
	b.AddLine("seat-1", "cust-1", decimal.RequireFromString("50.00"), decimal.RequireFromString("5.00"))
	return b
}

func TestBookingHandler_Create(t *testing.T) {
	t.Run("予約を作成して201を返す", func(t *testing.T) {
		e := NewTestEcho()
		svc := new(MockBookingService)
		h := NewBookingHandler(svc, new(MockTicketService))

		svc.On("CreateBooking", mock.Anything, mock.MatchedBy(func(input application.CreateBookingInput) bool {
			return input.EmployeeUsername == "alice" &&
				len(input.Lines) == 1 &&
				input.Lines[0].SeatID == "seat-1" &&
				input.Lines[0].Customer != nil &&
				input.Lines[0].Customer.Name == "山田太郎"
		})).Return(confirmedBooking(), nil)

		body := `{"lines":[{"seat_id":"seat-1","customer":{"name":"山田太郎","date_of_birth":"1990-04-01"}}]}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUsername, "alice")

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_amount":"50.00"`)
		assert.Contains(t, rec.Body.String(), `"total_tax":"5.00"`)
		svc.AssertExpectations(t)
	})

	t.Run("座席競合で409を返す", func(t *testing.T) {
		e := NewTestEcho()
		svc := new(MockBookingService)
		h := NewBookingHandler(svc, new(MockTicketService))

		svc.On("CreateBooking", mock.Anything, mock.Anything).
			Return(nil, &booking.SeatConflictError{SeatIDs: []string{"seat-1"}})

		body := `{"lines":[{"seat_id":"seat-1","customer_id":"cust-1"}]}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUsername, "alice")

		err := h.Create(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})

	t.Run("明細なしはバリデーションエラー", func(t *testing.T) {
		e := NewTestEcho()
		h := NewBookingHandler(new(MockBookingService), new(MockTicketService))

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"lines":[]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUsername, "alice")

		assert.Error(t, h.Create(c))
	})

	t.Run("不正な生年月日は400", func(t *testing.T) {
		e := NewTestEcho()
		h := NewBookingHandler(new(MockBookingService), new(MockTicketService))

		body := `{"lines":[{"seat_id":"seat-1","customer":{"name":"山田太郎","date_of_birth":"01/04/1990"}}]}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUsername, "alice")

		err := h.Create(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	t.Run("存在しない予約は404", func(t *testing.T) {
		e := NewTestEcho()
		svc := new(MockBookingService)
		h := NewBookingHandler(svc, new(MockTicketService))

		svc.On("GetBooking", mock.Anything, "missing").Return(nil, booking.ErrBookingNotFound)

		req := httptest.NewRequest(http.MethodGet, "/bookings/missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := h.GetByID(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	t.Run("キャンセルして払い戻し額を返す", func(t *testing.T) {
		e := NewTestEcho()
		svc := new(MockBookingService)
		h := NewBookingHandler(svc, new(MockTicketService))

		b := confirmedBooking()
		require.NoError(t, b.Cancel(decimal.RequireFromString("50.00"), time.Now()))
		svc.On("CancelBooking", mock.Anything, "booking-1").Return(b, nil)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		require.NoError(t, h.Cancel(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
		assert.Contains(t, rec.Body.String(), `"refund_amount":"50.00"`)
	})

	t.Run("キャンセル済みは409", func(t *testing.T) {
		e := NewTestEcho()
		svc := new(MockBookingService)
		h := NewBookingHandler(svc, new(MockTicketService))

		svc.On("CancelBooking", mock.Anything, "booking-1").
			Return(nil, booking.ErrAlreadyCancelled)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")

		err := h.Cancel(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})
}

func TestBookingHandler_Ticket(t *testing.T) {
	e := NewTestEcho()
	svc := new(MockBookingService)
	ts := new(MockTicketService)
	h := NewBookingHandler(svc, ts)

	ts.On("RenderTicket", mock.Anything, "booking-1").
		Return([]byte("%PDF-1.4"), "ticket_booking-1.pdf", nil)

	req := httptest.NewRequest(http.MethodGet, "/bookings/booking-1/ticket", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("booking-1")

	require.NoError(t, h.Ticket(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "ticket_booking-1.pdf")
}
