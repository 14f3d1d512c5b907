package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is customer model entity
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerStats is the aggregate over customer rentals, recomputed on demand
type CustomerStats struct {
	RentalCount  int             `json:"rentalCount"`
	FirstRental  *time.Time      `json:"firstRental"`
	LastRental   *time.Time      `json:"lastRental"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// CustomerWithStats is the unit duplicate detection and merge suggestion operate on
type CustomerWithStats struct {
	Customer
	Stats CustomerStats `json:"stats"`
}
