package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/bus"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/route"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/trip"
)

type TripHandler struct {
	service TripServiceInterface
}

func NewTripHandler(s TripServiceInterface) *TripHandler {
	return &TripHandler{service: s}
}

type CreateTripRequest struct {
	BusID         string  `json:"bus_id" validate:"required"`
	RouteID       string  `json:"route_id" validate:"required"`
	DepartureTime string  `json:"departure_time" validate:"required"`
	ArrivalTime   *string `json:"arrival_time"`
}

type TripResponse struct {
	ID             string     `json:"id"`
	BusID          string     `json:"bus_id"`
	RouteID        string     `json:"route_id"`
	DepartureTime  time.Time  `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time,omitempty"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	Status         string     `json:"status"`
}

func toTripResponse(t *trip.Trip) TripResponse {
	return TripResponse{
		ID: t.ID, BusID: t.BusID, RouteID: t.RouteID,
		DepartureTime: t.DepartureTime, ArrivalTime: t.ArrivalTime,
		TotalSeats: t.TotalSeats, AvailableSeats: t.AvailableSeats,
		Status: string(t.Status),
	}
}

// Create godoc
// @Summary 便を作成
// @Description 便を作成しバスの座席数分の座席を初期化します
// @Tags trips
// @Accept json
// @Produce json
// @Param request body CreateTripRequest true "便情報"
// @Success 201 {object} TripResponse
// @Failure 409 {object} map[string]string "同じバス・出発時刻の便が存在"
// @Router /trips [post]
func (h *TripHandler) Create(c echo.Context) error {
	var req CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "出発時刻はRFC3339形式で指定してください")
	}
	var arrival *time.Time
	if req.ArrivalTime != nil {
		t, err := time.Parse(time.RFC3339, *req.ArrivalTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "到着時刻はRFC3339形式で指定してください")
		}
		arrival = &t
	}

	t, err := h.service.CreateTrip(c.Request().Context(), application.CreateTripInput{
		BusID: req.BusID, RouteID: req.RouteID,
		DepartureTime: departure, ArrivalTime: arrival,
	})
	if err != nil {
		switch {
		case errors.Is(err, trip.ErrTripAlreadyExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, bus.ErrBusNotFound), errors.Is(err, route.ErrRouteNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toTripResponse(t))
}

// GetByID godoc
// @Summary 便を取得
// @Tags trips
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {object} TripResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id} [get]
func (h *TripHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTrip(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTripResponse(t))
}

// List godoc
// @Summary 便一覧を取得
// @Tags trips
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} TripResponse
// @Router /trips [get]
func (h *TripHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	trips, err := h.service.ListTrips(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]TripResponse, len(trips))
	for i, t := range trips {
		resp[i] = toTripResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary 便を検索
// @Description 出発地・到着地・日付で予約可能な便を検索します
// @Tags trips
// @Produce json
// @Param from query string true "出発地"
// @Param to query string true "到着地"
// @Param date query string true "出発日（YYYY-MM-DD）"
// @Success 200 {array} TripResponse
// @Router /trips/search [get]
func (h *TripHandler) Search(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "出発地と到着地は必須です")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "出発日はYYYY-MM-DD形式で指定してください")
	}
	trips, err := h.service.SearchTrips(c.Request().Context(), trip.SearchCriteria{
		StartLocation: from, EndLocation: to, DepartureDate: date,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]TripResponse, len(trips))
	for i, t := range trips {
		resp[i] = toTripResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

type UpdateTripStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled departed cancelled"`
}

// UpdateStatus godoc
// @Summary 便の状態を更新
// @Tags trips
// @Accept json
// @Param id path string true "便ID"
// @Param request body UpdateTripStatusRequest true "状態"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/status [put]
func (h *TripHandler) UpdateStatus(c echo.Context) error {
	var req UpdateTripStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.UpdateTripStatus(c.Request().Context(), c.Param("id"), trip.Status(req.Status)); err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
