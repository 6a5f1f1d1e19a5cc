package bus

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusType は車種と運賃倍率を表す
type BusType struct {
	ID              string
	TypeName        string
	PriceMultiplier decimal.Decimal
}

// Validate は車種の検証を行う
func (t *BusType) Validate() error {
	if t.TypeName == "" {
		return ErrTypeNameRequired
	}
	if t.PriceMultiplier.LessThan(decimal.NewFromInt(1)) {
		return ErrInvalidMultiplier
	}
	return nil
}

// Bus は車両エンティティを表す
type Bus struct {
	ID         string
	BusCode    string
	BusNumber  string
	TypeID     string
	TotalSeats int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBus は新しい車両を作成する
func NewBus(busCode, busNumber, typeID string, totalSeats int) *Bus {
	now := time.Now()
	return &Bus{
		BusCode:    busCode,
		BusNumber:  busNumber,
		TypeID:     typeID,
		TotalSeats: totalSeats,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate は車両の検証を行う
func (b *Bus) Validate() error {
	if b.BusCode == "" {
		return ErrBusCodeRequired
	}
	if b.TypeID == "" {
		return ErrTypeIDRequired
	}
	if b.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}
