package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
)

const (
	// コンテキストキー
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// TokenVerifier はアクセストークンを検証する
type TokenVerifier interface {
	VerifyToken(tokenString string) (*application.Claims, error)
}

// JWTAuth は Bearer トークンを検証しユーザー名と権限をコンテキストに載せる
func JWTAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}
			claims, err := verifier.VerifyToken(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}
			c.Set(ContextKeyUsername, claims.Username)
			c.Set(ContextKeyRole, claims.Role)
			return next(c)
		}
	}
}

// RequireRoles は指定した権限を持つ場合のみ通過させる
// JWTAuth の後段で使用する
func RequireRoles(roles ...employee.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			for _, r := range roles {
				if role == string(r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "この操作を行う権限がありません")
		}
	}
}

// Username はコンテキストから認証済みユーザー名を取り出す
func Username(c echo.Context) string {
	username, _ := c.Get(ContextKeyUsername).(string)
	return username
}
