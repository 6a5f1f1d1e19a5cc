package employee

import "time"

// Role は従業員の権限を表す
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Employee は予約操作を行う従業員エンティティを表す
type Employee struct {
	ID             string
	Username       string
	PasswordHash   string
	Name           string
	Email          string
	PhoneNumber    string
	Qualifications string
	Role           Role
	Age            *int
	Location       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEmployee は新しい従業員を作成する
func NewEmployee(username, passwordHash, name string, role Role) *Employee {
	now := time.Now()
	return &Employee{
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin は管理者権限を持つかを返す
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// CanBook は予約操作が可能な権限かを返す
func (e *Employee) CanBook() bool {
	return e.Role == RoleAdmin || e.Role == RoleEmployee
}

// Validate は従業員の検証を行う
func (e *Employee) Validate() error {
	if e.Username == "" {
		return ErrUsernameRequired
	}
	if e.PasswordHash == "" {
		return ErrPasswordRequired
	}
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.Role != RoleAdmin && e.Role != RoleEmployee {
		return ErrInvalidRole
	}
	return nil
}
