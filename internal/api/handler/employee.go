package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
)

// EmployeeHandler は従業員の参照データを管理する
// 登録は AuthHandler.Register が担う
type EmployeeHandler struct {
	employeeRepo employee.Repository
}

func NewEmployeeHandler(er employee.Repository) *EmployeeHandler {
	return &EmployeeHandler{employeeRepo: er}
}

type EmployeeDetailResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Qualifications string `json:"qualifications"`
	Role           string `json:"role"`
	Age            *int   `json:"age,omitempty"`
	Location       string `json:"location"`
}

func toEmployeeDetailResponse(e *employee.Employee) EmployeeDetailResponse {
	return EmployeeDetailResponse{
		ID: e.ID, Username: e.Username, Name: e.Name,
		Email: e.Email, PhoneNumber: e.PhoneNumber,
		Qualifications: e.Qualifications, Role: string(e.Role),
		Age: e.Age, Location: e.Location,
	}
}

func (h *EmployeeHandler) GetByID(c echo.Context) error {
	e, err := h.employeeRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEmployeeDetailResponse(e))
}

func (h *EmployeeHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	employees, err := h.employeeRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]EmployeeDetailResponse, len(employees))
	for i, e := range employees {
		resp[i] = toEmployeeDetailResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	if err := h.employeeRepo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
