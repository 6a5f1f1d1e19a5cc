package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/rule"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

type BookingHandler struct {
	service       BookingServiceInterface
	ticketService TicketServiceInterface
}

func NewBookingHandler(s BookingServiceInterface, ts TicketServiceInterface) *BookingHandler {
	return &BookingHandler{service: s, ticketService: ts}
}

type BookingCustomerRequest struct {
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
}

type BookingLineRequest struct {
	SeatID     string                  `json:"seat_id" validate:"required"`
	CustomerID string                  `json:"customer_id"`
	Customer   *BookingCustomerRequest `json:"customer"`
}

type CreateBookingRequest struct {
	Lines []BookingLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type BookingLineResponse struct {
	ID          string `json:"id"`
	SeatID      string `json:"seat_id"`
	CustomerID  string `json:"customer_id"`
	TicketPrice string `json:"ticket_price"`
	TicketTax   string `json:"ticket_tax"`
	Active      bool   `json:"active"`
}

type BookingResponse struct {
	ID               string                `json:"id"`
	EmployeeID       string                `json:"employee_id"`
	BookingDate      time.Time             `json:"booking_date"`
	TotalAmount      string                `json:"total_amount"`
	TotalTax         string                `json:"total_tax"`
	Status           string                `json:"status"`
	CancellationDate *time.Time            `json:"cancellation_date,omitempty"`
	RefundAmount     *string               `json:"refund_amount,omitempty"`
	Lines            []BookingLineResponse `json:"lines"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID,
		EmployeeID:       b.EmployeeID,
		BookingDate:      b.BookingDate,
		TotalAmount:      b.TotalAmount.StringFixed(2),
		TotalTax:         b.TotalTax.StringFixed(2),
		Status:           string(b.Status),
		CancellationDate: b.CancellationDate,
		Lines:            make([]BookingLineResponse, len(b.Lines)),
	}
	if b.RefundAmount != nil {
		refund := b.RefundAmount.StringFixed(2)
		resp.RefundAmount = &refund
	}
	for i, l := range b.Lines {
		resp.Lines[i] = BookingLineResponse{
			ID: l.ID, SeatID: l.SeatID, CustomerID: l.CustomerID,
			TicketPrice: l.TicketPrice.StringFixed(2),
			TicketTax:   l.TicketTax.StringFixed(2),
			Active:      l.Active,
		}
	}
	return resp
}

// Create godoc
// @Summary 予約を作成
// @Description 複数座席の予約を単一トランザクションで作成します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が既に予約済み"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := application.CreateBookingInput{
		EmployeeUsername: middleware.Username(c),
		Lines:            make([]application.BookingLineInput, len(req.Lines)),
	}
	for i, line := range req.Lines {
		input.Lines[i] = application.BookingLineInput{
			SeatID:     line.SeatID,
			CustomerID: line.CustomerID,
		}
		if line.Customer != nil {
			dob, err := time.Parse("2006-01-02", line.Customer.DateOfBirth)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "生年月日はYYYY-MM-DD形式で指定してください")
			}
			input.Lines[i].Customer = &application.CustomerInput{
				Name:        line.Customer.Name,
				DateOfBirth: dob,
				Email:       line.Customer.Email,
				PhoneNumber: line.Customer.PhoneNumber,
			}
		}
	}

	b, err := h.service.CreateBooking(c.Request().Context(), input)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし違約金ルールに基づく払い戻し額を計算します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "キャンセル済み"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Ticket godoc
// @Summary 乗車券PDFを取得
// @Tags bookings
// @Produce application/pdf
// @Param id path string true "予約ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/ticket [get]
func (h *BookingHandler) Ticket(c echo.Context) error {
	data, filename, err := h.ticketService.RenderTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// mapBookingError はドメインエラーをHTTPエラーに変換する
func mapBookingError(err error) error {
	var conflict *booking.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.Is(err, booking.ErrSeatTaken), errors.Is(err, seat.ErrSeatNotAvailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, seat.ErrSeatNotFound),
		errors.Is(err, trip.ErrTripNotFound),
		errors.Is(err, customer.ErrCustomerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, employee.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrNoLines),
		errors.Is(err, customer.ErrMissingCustomerFields),
		errors.Is(err, rule.ErrNoDiscountRule),
		errors.Is(err, rule.ErrNoCancellationRule),
		errors.Is(err, trip.ErrTripNotBookable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
