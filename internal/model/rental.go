package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rental is the dependent record a merge migrates between customers
type Rental struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	VehicleID  string          `json:"vehicleId"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
