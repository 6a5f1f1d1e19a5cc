package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/route"
)

// RouteHandler は路線の参照データを管理する
type RouteHandler struct {
	routeRepo route.Repository
}

func NewRouteHandler(rr route.Repository) *RouteHandler {
	return &RouteHandler{routeRepo: rr}
}

type CreateRouteRequest struct {
	RouteCode     string `json:"route_code" validate:"required"`
	StartLocation string `json:"start_location" validate:"required"`
	EndLocation   string `json:"end_location" validate:"required"`
	Distance      string `json:"distance" validate:"required"`
	BasePrice     string `json:"base_price" validate:"required"`
}

type RouteResponse struct {
	ID            string `json:"id"`
	RouteCode     string `json:"route_code"`
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
	Distance      string `json:"distance"`
	BasePrice     string `json:"base_price"`
}

func toRouteResponse(r *route.Route) RouteResponse {
	return RouteResponse{
		ID: r.ID, RouteCode: r.RouteCode,
		StartLocation: r.StartLocation, EndLocation: r.EndLocation,
		Distance: r.Distance.String(), BasePrice: r.BasePrice.StringFixed(2),
	}
}

func (h *RouteHandler) Create(c echo.Context) error {
	var req CreateRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	distance, err := decimal.NewFromString(req.Distance)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "距離は数値で指定してください")
	}
	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "基本運賃は数値で指定してください")
	}
	r := route.NewRoute(req.RouteCode, req.StartLocation, req.EndLocation, distance, basePrice)
	if err := r.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.routeRepo.Create(c.Request().Context(), r); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toRouteResponse(r))
}

func (h *RouteHandler) GetByID(c echo.Context) error {
	r, err := h.routeRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toRouteResponse(r))
}

func (h *RouteHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	routes, err := h.routeRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]RouteResponse, len(routes))
	for i, r := range routes {
		resp[i] = toRouteResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RouteHandler) Delete(c echo.Context) error {
	if err := h.routeRepo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type AddStopRequest struct {
	StopLocation string `json:"stop_location" validate:"required"`
	StopOrder    int    `json:"stop_order" validate:"required,min=1"`
}

type StopResponse struct {
	ID           string `json:"id"`
	RouteID      string `json:"route_id"`
	StopLocation string `json:"stop_location"`
	StopOrder    int    `json:"stop_order"`
}

func (h *RouteHandler) AddStop(c echo.Context) error {
	var req AddStopRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s := &route.Stop{RouteID: c.Param("id"), StopLocation: req.StopLocation, StopOrder: req.StopOrder}
	if err := s.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.routeRepo.AddStop(c.Request().Context(), s); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, StopResponse{
		ID: s.ID, RouteID: s.RouteID, StopLocation: s.StopLocation, StopOrder: s.StopOrder,
	})
}

func (h *RouteHandler) ListStops(c echo.Context) error {
	stops, err := h.routeRepo.ListStops(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]StopResponse, len(stops))
	for i, s := range stops {
		resp[i] = StopResponse{ID: s.ID, RouteID: s.RouteID, StopLocation: s.StopLocation, StopOrder: s.StopOrder}
	}
	return c.JSON(http.StatusOK, resp)
}
