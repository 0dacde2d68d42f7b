package court

import (
	"time"

	"github.com/shopspring/decimal"
)

type Court struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	SportType    string          `db:"sport_type" json:"sport_type"`
	Capacity     int             `db:"capacity" json:"capacity"`
	BaseHourRate decimal.Decimal `db:"base_hour_rate" json:"base_hour_rate"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

type CreateCourtRequest struct {
	Name         string `json:"name" binding:"required"`
	SportType    string `json:"sport_type" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
	BaseHourRate string `json:"base_hour_rate" binding:"required"`
}

type UpdateCourtRequest struct {
	Name         string `json:"name" binding:"required"`
	SportType    string `json:"sport_type" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
	BaseHourRate string `json:"base_hour_rate" binding:"required"`
	Active       *bool  `json:"active" binding:"required"`
}
