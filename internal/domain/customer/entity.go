package customer

import "time"

// Customer は乗客エンティティを表す
// 作成後は変更されない
type Customer struct {
	ID          string
	Name        string
	DateOfBirth time.Time
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
}

// NewCustomer は新しい乗客を作成する
func NewCustomer(name string, dateOfBirth time.Time, email, phoneNumber string) *Customer {
	return &Customer{
		Name:        name,
		DateOfBirth: dateOfBirth,
		Email:       email,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now(),
	}
}

// Validate は乗客の検証を行う
// インライン作成には氏名と生年月日が必須
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrMissingCustomerFields
	}
	if c.DateOfBirth.IsZero() {
		return ErrMissingCustomerFields
	}
	return nil
}
