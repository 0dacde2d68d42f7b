package prepaid

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a catalog offer of prepaid court hours.
type Package struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	AmountHours  int             `db:"amount_hours" json:"amount_hours"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Discount     decimal.Decimal `db:"discount" json:"discount"`
	ValidityDays int             `db:"validity_days" json:"validity_days"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// UserPackage is a purchased, consumable instance of a catalog package.
// Invariants: 0 <= remaining <= initial; remaining == 0 forces active=false;
// active is also forced false once the expiration date passes.
type UserPackage struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	PackageID      int64     `db:"package_id" json:"package_id"`
	InitialHours   int       `db:"initial_hours" json:"initial_hours"`
	RemainingHours int       `db:"remaining_hours" json:"remaining_hours"`
	PurchaseDate   time.Time `db:"purchase_date" json:"purchase_date"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
	Active         bool      `db:"active" json:"active"`
}

func (up *UserPackage) IsExpired(now time.Time) bool {
	return now.After(up.ExpirationDate)
}

type CreatePackageRequest struct {
	Name         string `json:"name" binding:"required"`
	AmountHours  int    `json:"amount_hours" binding:"required,min=1"`
	Price        string `json:"price" binding:"required"`
	Discount     string `json:"discount"`
	ValidityDays int    `json:"validity_days" binding:"required,min=1"`
}

type PurchaseRequest struct {
	UserID    int64 `json:"user_id" binding:"required"`
	PackageID int64 `json:"package_id" binding:"required"`
}
