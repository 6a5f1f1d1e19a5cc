package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
)

type ReportHandler struct {
	service ReportServiceInterface
}

func NewReportHandler(s ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: s}
}

type PeriodSummaryResponse struct {
	Period           string `json:"period"`
	TotalTickets     int    `json:"total_tickets"`
	TotalRevenue     string `json:"total_revenue"`
	TotalTax         string `json:"total_tax"`
	CancelledTickets int    `json:"cancelled_tickets"`
	TotalRefund      string `json:"total_refund"`
}

func toPeriodSummaryResponse(s *booking.PeriodSummary) PeriodSummaryResponse {
	return PeriodSummaryResponse{
		Period:           s.Period,
		TotalTickets:     s.TotalTickets,
		TotalRevenue:     s.TotalRevenue.StringFixed(2),
		TotalTax:         s.TotalTax.StringFixed(2),
		CancelledTickets: s.CancelledTickets,
		TotalRefund:      s.TotalRefund.StringFixed(2),
	}
}

// Monthly godoc
// @Summary 月次集計一覧を取得
// @Tags reports
// @Produce json
// @Success 200 {array} PeriodSummaryResponse
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c echo.Context) error {
	summaries, err := h.service.MonthlySummaries(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]PeriodSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = toPeriodSummaryResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// Month godoc
// @Summary 指定月の集計を取得
// @Tags reports
// @Produce json
// @Param year query int true "年"
// @Param month query int true "月"
// @Success 200 {object} PeriodSummaryResponse
// @Failure 404 {object} map[string]string
// @Router /reports/month [get]
func (h *ReportHandler) Month(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "年は整数で指定してください")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "月は1から12の整数で指定してください")
	}
	summary, err := h.service.MonthSummary(c.Request().Context(), year, month)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "指定期間の予約がありません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPeriodSummaryResponse(summary))
}

// Day godoc
// @Summary 指定日の集計を取得
// @Tags reports
// @Produce json
// @Param year query int true "年"
// @Param month query int true "月"
// @Param day query int true "日"
// @Success 200 {object} PeriodSummaryResponse
// @Failure 404 {object} map[string]string
// @Router /reports/day [get]
func (h *ReportHandler) Day(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "年は整数で指定してください")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "月は1から12の整数で指定してください")
	}
	day, err := strconv.Atoi(c.QueryParam("day"))
	if err != nil || day < 1 || day > 31 {
		return echo.NewHTTPError(http.StatusBadRequest, "日は1から31の整数で指定してください")
	}
	summary, err := h.service.DaySummary(c.Request().Context(), year, month, day)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "指定期間の予約がありません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPeriodSummaryResponse(summary))
}
