package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]Booking, error)
	ListByUserAndStatus(ctx context.Context, userID int64, status Status) ([]Booking, error)

	// ExistsOverlapping reports whether any CONFIRMED booking on the court
	// and date overlaps the half-open [start,end) window.
	ExistsOverlapping(ctx context.Context, courtID int64, date, start, end time.Time) (bool, error)
	// ConfirmedByCourtAndDate returns CONFIRMED bookings ordered by start time.
	ConfirmedByCourtAndDate(ctx context.Context, courtID int64, date time.Time) ([]Booking, error)

	UpdateCancellation(ctx context.Context, id int64, cancelledAt time.Time, reason string, penalty decimal.Decimal) error
	SetParentBooking(ctx context.Context, id, parentID int64) error
	// SiblingsConfirmed returns the still-CONFIRMED members of a series,
	// excluding the booking that initiated the bulk cancellation.
	SiblingsConfirmed(ctx context.Context, parentID, excludeID int64) ([]Booking, error)

	// CompletePast transitions every CONFIRMED booking whose end is strictly
	// before now to COMPLETED and returns the number of rows updated.
	CompletePast(ctx context.Context, now time.Time) (int64, error)
	// StartingBetween returns CONFIRMED bookings starting inside [from,to)
	// with the user and court details needed for reminders.
	StartingBetween(ctx context.Context, from, to time.Time) ([]ReminderBooking, error)
}
