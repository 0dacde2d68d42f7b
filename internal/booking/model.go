package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Booking is a reservation of a court for a half-open [start,end) window on a
// date. Only CONFIRMED bookings block availability; COMPLETED and CANCELLED
// are terminal. Recurrent bookings share a parent id: the series anchor
// stores its own id there, every sibling stores the anchor's.
type Booking struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	CourtID   int64     `db:"court_id" json:"court_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Status    Status    `db:"status" json:"status"`

	BasePrice  decimal.Decimal `db:"base_price" json:"base_price"`
	Surcharge  decimal.Decimal `db:"surcharge" json:"surcharge"`
	Discount   decimal.Decimal `db:"discount" json:"discount"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`

	Recurrent       bool   `db:"recurrent" json:"recurrent"`
	ParentBookingID *int64 `db:"parent_booking_id" json:"parent_booking_id,omitempty"`

	UsedPackage   bool   `db:"used_package" json:"used_package"`
	UserPackageID *int64 `db:"user_package_id" json:"user_package_id,omitempty"`
	HoursDeducted int    `db:"hours_deducted" json:"hours_deducted"`

	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	CancelledAt        *time.Time       `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string          `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	PenaltyAmount      *decimal.Decimal `db:"penalty_amount" json:"penalty_amount,omitempty"`
}

type CreateBookingRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	CourtID    int64  `json:"court_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	UsePackage bool   `json:"use_package"`
}

type CancelBookingRequest struct {
	Reason             string `json:"reason"`
	CancelAllRecurrent bool   `json:"cancel_all_recurrent"`
}

type RecurrentBookingRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	CourtID    int64  `json:"court_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Weeks      int    `json:"weeks" binding:"required"`
	UsePackage bool   `json:"use_package"`
}

// CancellationResult reports the financial outcome of a cancellation.
type CancellationResult struct {
	Booking           Booking         `json:"booking"`
	PenaltyPercentage int             `json:"penalty_percentage"`
	PenaltyAmount     decimal.Decimal `json:"penalty_amount"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	HoursRefunded     int             `json:"hours_refunded"`
	SiblingsCancelled int             `json:"siblings_cancelled"`
}

const (
	OccurrenceSuccess = "SUCCESS"
	OccurrenceFailed  = "FAILED"
)

// OccurrenceResult is the outcome of a single week inside a recurrent series.
type OccurrenceResult struct {
	Week      int             `json:"week"`
	Date      string          `json:"date"`
	Status    string          `json:"status"`
	BookingID *int64          `json:"booking_id,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Reason    string          `json:"reason,omitempty"`
}

type SeriesResult struct {
	ParentBookingID *int64             `json:"parent_booking_id,omitempty"`
	SuccessCount    int                `json:"success_count"`
	FailCount       int                `json:"fail_count"`
	TotalPrice      decimal.Decimal    `json:"total_price"`
	Occurrences     []OccurrenceResult `json:"occurrences"`
}

// FreeSlot is an open 1-hour window with its estimated dynamic price.
type FreeSlot struct {
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
	PriceFactor    decimal.Decimal `json:"price_factor"`
}

type OccupiedSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilityResponse struct {
	CourtID       int64          `json:"court_id"`
	Date          string         `json:"date"`
	FreeSlots     []FreeSlot     `json:"free_slots"`
	OccupiedSlots []OccupiedSlot `json:"occupied_slots"`
}

// ReminderBooking joins a soon-to-start booking with the contact details the
// reminder notification needs.
type ReminderBooking struct {
	BookingID int64     `db:"id"`
	UserEmail string    `db:"email"`
	UserName  string    `db:"user_name"`
	CourtName string    `db:"court_name"`
	Date      time.Time `db:"date"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
}
