package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/bus"
)

// BusHandler は車両・車種の参照データを管理する
// 調整ロジックを持たないためリポジトリを直接使う
type BusHandler struct {
	busRepo  bus.Repository
	typeRepo bus.TypeRepository
}

func NewBusHandler(br bus.Repository, tr bus.TypeRepository) *BusHandler {
	return &BusHandler{busRepo: br, typeRepo: tr}
}

type CreateBusRequest struct {
	BusCode    string `json:"bus_code" validate:"required"`
	BusNumber  string `json:"bus_number"`
	TypeID     string `json:"type_id" validate:"required"`
	TotalSeats int    `json:"total_seats" validate:"required,min=1"`
}

type BusResponse struct {
	ID         string `json:"id"`
	BusCode    string `json:"bus_code"`
	BusNumber  string `json:"bus_number"`
	TypeID     string `json:"type_id"`
	TotalSeats int    `json:"total_seats"`
}

func toBusResponse(b *bus.Bus) BusResponse {
	return BusResponse{
		ID: b.ID, BusCode: b.BusCode, BusNumber: b.BusNumber,
		TypeID: b.TypeID, TotalSeats: b.TotalSeats,
	}
}

func (h *BusHandler) Create(c echo.Context) error {
	var req CreateBusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if _, err := h.typeRepo.GetByID(c.Request().Context(), req.TypeID); err != nil {
		if errors.Is(err, bus.ErrBusTypeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	b := bus.NewBus(req.BusCode, req.BusNumber, req.TypeID, req.TotalSeats)
	if err := b.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.busRepo.Create(c.Request().Context(), b); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toBusResponse(b))
}

func (h *BusHandler) GetByID(c echo.Context) error {
	b, err := h.busRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bus.ErrBusNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBusResponse(b))
}

func (h *BusHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	buses, err := h.busRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BusResponse, len(buses))
	for i, b := range buses {
		resp[i] = toBusResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BusHandler) Delete(c echo.Context) error {
	if err := h.busRepo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, bus.ErrBusNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, bus.ErrBusInUse):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateBusTypeRequest struct {
	TypeName        string `json:"type_name" validate:"required"`
	PriceMultiplier string `json:"price_multiplier" validate:"required"`
}

type BusTypeResponse struct {
	ID              string `json:"id"`
	TypeName        string `json:"type_name"`
	PriceMultiplier string `json:"price_multiplier"`
}

func (h *BusHandler) CreateType(c echo.Context) error {
	var req CreateBusTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	multiplier, err := decimal.NewFromString(req.PriceMultiplier)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "運賃倍率は数値で指定してください")
	}
	t := &bus.BusType{TypeName: req.TypeName, PriceMultiplier: multiplier}
	if err := t.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.typeRepo.Create(c.Request().Context(), t); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, BusTypeResponse{
		ID: t.ID, TypeName: t.TypeName, PriceMultiplier: t.PriceMultiplier.String(),
	})
}

func (h *BusHandler) ListTypes(c echo.Context) error {
	types, err := h.typeRepo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BusTypeResponse, len(types))
	for i, t := range types {
		resp[i] = BusTypeResponse{ID: t.ID, TypeName: t.TypeName, PriceMultiplier: t.PriceMultiplier.String()}
	}
	return c.JSON(http.StatusOK, resp)
}
