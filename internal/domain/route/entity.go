package route

import (
	"time"

	"github.com/shopspring/decimal"
)

// Route は路線エンティティを表す
type Route struct {
	ID            string
	RouteCode     string
	StartLocation string
	EndLocation   string
	Distance      decimal.Decimal
	BasePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRoute は新しい路線を作成する
func NewRoute(routeCode, startLocation, endLocation string, distance, basePrice decimal.Decimal) *Route {
	now := time.Now()
	return &Route{
		RouteCode:     routeCode,
		StartLocation: startLocation,
		EndLocation:   endLocation,
		Distance:      distance,
		BasePrice:     basePrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate は路線の検証を行う
func (r *Route) Validate() error {
	if r.RouteCode == "" {
		return ErrRouteCodeRequired
	}
	if r.StartLocation == "" || r.EndLocation == "" {
		return ErrLocationRequired
	}
	if !r.Distance.IsPositive() {
		return ErrInvalidDistance
	}
	if !r.BasePrice.IsPositive() {
		return ErrInvalidBasePrice
	}
	return nil
}

// Stop は路線上の停留所を表す
type Stop struct {
	ID           string
	RouteID      string
	StopLocation string
	StopOrder    int
}

// Validate は停留所の検証を行う
func (s *Stop) Validate() error {
	if s.StopLocation == "" {
		return ErrLocationRequired
	}
	if s.StopOrder < 1 {
		return ErrInvalidStopOrder
	}
	return nil
}
