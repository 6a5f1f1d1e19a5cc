package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type CreateSeatRequest struct {
	TripID     string `json:"trip_id" validate:"required"`
	SeatNumber string `json:"seat_number" validate:"required"`
}

type CreateSeatsRequest struct {
	TripID      string   `json:"trip_id" validate:"required"`
	SeatNumbers []string `json:"seat_numbers" validate:"required,min=1"`
}

type SeatResponse struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	SeatNumber  string    `json:"seat_number"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, TripID: s.TripID, SeatNumber: s.SeatNumber,
		IsAvailable: s.IsAvailable, CreatedAt: s.CreatedAt,
	}
}

// Create godoc
// @Summary 座席を追加
// @Tags seats
// @Accept json
// @Produce json
// @Param request body CreateSeatRequest true "座席情報"
// @Success 201 {object} SeatResponse
// @Failure 409 {object} map[string]string "座席番号重複"
// @Router /seats [post]
func (h *SeatHandler) Create(c echo.Context) error {
	var req CreateSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.CreateSeat(c.Request().Context(), req.TripID, req.SeatNumber)
	if err != nil {
		return mapSeatError(err)
	}
	return c.JSON(http.StatusCreated, toSeatResponse(s))
}

// CreateBulk godoc
// @Summary 座席を一括追加
// @Tags seats
// @Accept json
// @Produce json
// @Param request body CreateSeatsRequest true "座席情報"
// @Success 201 {array} SeatResponse
// @Failure 409 {object} map[string]string "座席番号重複"
// @Router /seats/bulk [post]
func (h *SeatHandler) CreateBulk(c echo.Context) error {
	var req CreateSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seats, err := h.service.CreateSeats(c.Request().Context(), req.TripID, req.SeatNumbers)
	if err != nil {
		return mapSeatError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListByTrip godoc
// @Summary 便の座席一覧を取得
// @Tags seats
// @Produce json
// @Param trip_id path string true "便ID"
// @Success 200 {array} SeatResponse
// @Router /trips/{trip_id}/seats [get]
func (h *SeatHandler) ListByTrip(c echo.Context) error {
	seats, err := h.service.ListSeats(c.Request().Context(), c.Param("trip_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

type AvailableCountResponse struct {
	TripID         string `json:"trip_id"`
	AvailableSeats int    `json:"available_seats"`
}

// AvailableCount godoc
// @Summary 便の空席数を取得
// @Description キャッシュ付きで便の空席数を返します
// @Tags seats
// @Produce json
// @Param trip_id path string true "便ID"
// @Success 200 {object} AvailableCountResponse
// @Router /trips/{trip_id}/seats/available [get]
func (h *SeatHandler) AvailableCount(c echo.Context) error {
	tripID := c.Param("trip_id")
	count, err := h.service.GetAvailableCount(c.Request().Context(), tripID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{TripID: tripID, AvailableSeats: count})
}

func mapSeatError(err error) error {
	switch {
	case errors.Is(err, seat.ErrSeatNumberTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, trip.ErrTripNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, seat.ErrTripIDRequired), errors.Is(err, seat.ErrSeatNumberRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
