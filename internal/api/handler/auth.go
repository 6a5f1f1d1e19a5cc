package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
)

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(s AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: s}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RegisterRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required,min=8"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	PhoneNumber    string `json:"phone_number"`
	Qualifications string `json:"qualifications"`
	Role           string `json:"role" validate:"required,oneof=admin employee"`
	Age            *int   `json:"age"`
	Location       string `json:"location"`
}

type EmployeeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login godoc
// @Summary ログイン
// @Description ユーザー名とパスワードでアクセストークンを発行します
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "認証情報"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	token, emp, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, employee.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Username: emp.Username,
		Role:     string(emp.Role),
	})
}

// Register godoc
// @Summary 従業員を登録
// @Description 新しい従業員を登録します（管理者のみ）
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "従業員情報"
// @Success 201 {object} EmployeeResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "ユーザー名重複"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	emp, err := h.service.Register(c.Request().Context(), middleware.Username(c), application.RegisterEmployeeInput{
		Username:       req.Username,
		Password:       req.Password,
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Qualifications: req.Qualifications,
		Role:           employee.Role(req.Role),
		Age:            req.Age,
		Location:       req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, employee.ErrUsernameTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, employee.ErrInvalidRole),
			errors.Is(err, employee.ErrUsernameRequired),
			errors.Is(err, employee.ErrNameRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, EmployeeResponse{
		ID: emp.ID, Username: emp.Username, Name: emp.Name, Role: string(emp.Role),
	})
}
