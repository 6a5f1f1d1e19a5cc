package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/rule"
)

// RuleHandler は割引ルール・キャンセルルールを管理する
type RuleHandler struct {
	ruleRepo rule.Repository
}

func NewRuleHandler(rr rule.Repository) *RuleHandler {
	return &RuleHandler{ruleRepo: rr}
}

type CreateAgeDiscountRequest struct {
	MinAge             int    `json:"min_age" validate:"min=0"`
	MaxAge             int    `json:"max_age" validate:"required"`
	DiscountPercentage string `json:"discount_percentage" validate:"required"`
	Description        string `json:"description"`
}

type AgeDiscountResponse struct {
	ID                 string `json:"id"`
	MinAge             int    `json:"min_age"`
	MaxAge             int    `json:"max_age"`
	DiscountPercentage string `json:"discount_percentage"`
	Description        string `json:"description"`
}

func (h *RuleHandler) ListAgeDiscounts(c echo.Context) error {
	rules, err := h.ruleRepo.ListAgeDiscounts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]AgeDiscountResponse, len(rules))
	for i, r := range rules {
		resp[i] = AgeDiscountResponse{
			ID: r.ID, MinAge: r.MinAge, MaxAge: r.MaxAge,
			DiscountPercentage: r.DiscountPercentage.String(),
			Description:        r.Description,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RuleHandler) CreateAgeDiscount(c echo.Context) error {
	var req CreateAgeDiscountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	percentage, err := decimal.NewFromString(req.DiscountPercentage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "割引率は数値で指定してください")
	}
	d := &rule.AgeDiscount{
		MinAge: req.MinAge, MaxAge: req.MaxAge,
		DiscountPercentage: percentage, Description: req.Description,
	}
	if err := d.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.ruleRepo.CreateAgeDiscount(c.Request().Context(), d); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, AgeDiscountResponse{
		ID: d.ID, MinAge: d.MinAge, MaxAge: d.MaxAge,
		DiscountPercentage: d.DiscountPercentage.String(),
		Description:        d.Description,
	})
}

func (h *RuleHandler) DeleteAgeDiscount(c echo.Context) error {
	if err := h.ruleRepo.DeleteAgeDiscount(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, rule.ErrRuleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateCancellationRequest struct {
	DaysBeforeDeparture int    `json:"days_before_departure" validate:"min=0"`
	PenaltyPercentage   string `json:"penalty_percentage" validate:"required"`
	Description         string `json:"description"`
}

type CancellationResponse struct {
	ID                  string `json:"id"`
	DaysBeforeDeparture int    `json:"days_before_departure"`
	PenaltyPercentage   string `json:"penalty_percentage"`
	Description         string `json:"description"`
}

func (h *RuleHandler) ListCancellations(c echo.Context) error {
	rules, err := h.ruleRepo.ListCancellations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]CancellationResponse, len(rules))
	for i, r := range rules {
		resp[i] = CancellationResponse{
			ID: r.ID, DaysBeforeDeparture: r.DaysBeforeDeparture,
			PenaltyPercentage: r.PenaltyPercentage.String(),
			Description:       r.Description,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RuleHandler) CreateCancellation(c echo.Context) error {
	var req CreateCancellationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	percentage, err := decimal.NewFromString(req.PenaltyPercentage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "違約金率は数値で指定してください")
	}
	cr := &rule.Cancellation{
		DaysBeforeDeparture: req.DaysBeforeDeparture,
		PenaltyPercentage:   percentage,
		Description:         req.Description,
	}
	if err := cr.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.ruleRepo.CreateCancellation(c.Request().Context(), cr); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, CancellationResponse{
		ID: cr.ID, DaysBeforeDeparture: cr.DaysBeforeDeparture,
		PenaltyPercentage: cr.PenaltyPercentage.String(),
		Description:       cr.Description,
	})
}

func (h *RuleHandler) DeleteCancellation(c echo.Context) error {
	if err := h.ruleRepo.DeleteCancellation(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, rule.ErrRuleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
