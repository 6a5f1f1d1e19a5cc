package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/config"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
)

// AuthService は従業員の認証とトークン発行を提供する
type AuthService struct {
	employeeRepo employee.Repository
	jwtConfig    config.JWTConfig
}

func NewAuthService(er employee.Repository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{employeeRepo: er, jwtConfig: jwtConfig}
}

// Claims はアクセストークンのクレーム
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login はユーザー名とパスワードを検証しアクセストークンを発行する
// 失敗理由は攻撃者に手がかりを与えないよう ErrInvalidCredentials に統一する
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *employee.Employee, error) {
	emp, err := s.employeeRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return "", nil, employee.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("従業員取得に失敗: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return "", nil, employee.ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Username: emp.Username,
		Role:     string(emp.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("トークン署名に失敗: %w", err)
	}
	return signed, emp, nil
}

// RegisterEmployeeInput は従業員登録の入力
type RegisterEmployeeInput struct {
	Username       string
	Password       string
	Name           string
	Email          string
	PhoneNumber    string
	Qualifications string
	Role           employee.Role
	Age            *int
	Location       string
}

// Register は新しい従業員を登録する（管理者のみ）
func (s *AuthService) Register(ctx context.Context, actorUsername string, input RegisterEmployeeInput) (*employee.Employee, error) {
	actor, err := s.employeeRepo.GetByUsername(ctx, actorUsername)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, employee.ErrUnauthorized
		}
		return nil, fmt.Errorf("従業員取得に失敗: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, employee.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードハッシュ化に失敗: %w", err)
	}

	emp := employee.NewEmployee(input.Username, string(hash), input.Name, input.Role)
	emp.Email = input.Email
	emp.PhoneNumber = input.PhoneNumber
	emp.Qualifications = input.Qualifications
	emp.Age = input.Age
	emp.Location = input.Location
	if err := emp.Validate(); err != nil {
		return nil, err
	}
	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// VerifyToken はアクセストークンを検証しクレームを返す
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("予期しない署名方式: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, employee.ErrUnauthorized
	}
	return claims, nil
}
