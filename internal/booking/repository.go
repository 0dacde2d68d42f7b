package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/db"
)

var ErrBookingNotFound = errors.New("booking not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, user_id, court_id, date, start_time, end_time, status,
	base_price, surcharge, discount, total_price,
	recurrent, parent_booking_id, used_package, user_package_id, hours_deducted,
	created_at, cancelled_at, cancellation_reason, penalty_amount`

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (user_id, court_id, date, start_time, end_time, status,
			base_price, surcharge, discount, total_price,
			recurrent, parent_booking_id, used_package, user_package_id, hours_deducted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.UserID, b.CourtID, b.Date, b.StartTime, b.EndTime, b.Status,
		b.BasePrice, b.Surcharge, b.Discount, b.TotalPrice,
		b.Recurrent, b.ParentBookingID, b.UsedPackage, b.UserPackageID, b.HoursDeducted,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings WHERE user_id = $1
		ORDER BY date DESC, start_time DESC`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByUserAndStatus(ctx context.Context, userID int64, status Status) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings WHERE user_id = $1 AND status = $2
		ORDER BY date DESC, start_time DESC`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID, status)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ExistsOverlapping(ctx context.Context, courtID int64, date, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE court_id = $1 AND date = $2 AND status = 'CONFIRMED'
			  AND start_time < $4 AND end_time > $3
		)
	`

	return db.Exists(ctx, r.db, query, courtID, date, start, end)
}

func (r *repository) ConfirmedByCourtAndDate(ctx context.Context, courtID int64, date time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE court_id = $1 AND date = $2 AND status = 'CONFIRMED'
		ORDER BY start_time ASC`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, courtID, date)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) UpdateCancellation(ctx context.Context, id int64, cancelledAt time.Time, reason string, penalty decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'CANCELLED', cancelled_at = $1, cancellation_reason = $2, penalty_amount = $3
		 WHERE id = $4 AND status = 'CONFIRMED'`,
		cancelledAt, reason, penalty, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) SetParentBooking(ctx context.Context, id, parentID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET parent_booking_id = $1 WHERE id = $2`,
		parentID, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) SiblingsConfirmed(ctx context.Context, parentID, excludeID int64) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE parent_booking_id = $1 AND id <> $2 AND status = 'CONFIRMED'
		ORDER BY date ASC`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, parentID, excludeID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'COMPLETED'
		 WHERE status = 'CONFIRMED' AND date + end_time < $1`,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *repository) StartingBetween(ctx context.Context, from, to time.Time) ([]ReminderBooking, error) {
	query := `
		SELECT b.id, u.email, u.name AS user_name, c.name AS court_name,
		       b.date, b.start_time, b.end_time
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN courts c ON c.id = b.court_id
		WHERE b.status = 'CONFIRMED'
		  AND b.date + b.start_time >= $1 AND b.date + b.start_time < $2
		ORDER BY b.date ASC, b.start_time ASC
	`

	var reminders []ReminderBooking
	err := r.db.SelectContext(ctx, &reminders, query, from, to)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}
