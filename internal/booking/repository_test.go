package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBookingMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestExistsOverlapping(t *testing.T) {
	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	start := time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("overlap found", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(2), date, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsOverlapping(context.Background(), 2, date, start, end)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("slot free", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(2), date, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsOverlapping(context.Background(), 2, date, start, end)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateCancellation(t *testing.T) {
	cancelledAt := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	penalty := decimal.NewFromFloat(46.80)

	t.Run("marks the booking cancelled", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		mock.ExpectExec("UPDATE bookings").
			WithArgs(cancelledAt, "cancelled by user", penalty, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateCancellation(context.Background(), 7, cancelledAt, "cancelled by user", penalty)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no confirmed booking to cancel", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		mock.ExpectExec("UPDATE bookings").
			WithArgs(cancelledAt, "cancelled by user", penalty, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateCancellation(context.Background(), 7, cancelledAt, "cancelled by user", penalty)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestSetParentBooking(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET parent_booking_id = $1 WHERE id = $2`)).
		WithArgs(int64(3), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetParentBooking(context.Background(), 3, 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletePast(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	now := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE bookings").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.CompletePast(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestStartingBetween(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	from := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	columns := []string{"id", "email", "user_name", "court_name", "date", "start_time", "end_time"}
	mock.ExpectQuery("SELECT (.+) FROM bookings b").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "ana@example.com", "Ana", "Center Court",
				time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
				time.Date(0, 1, 1, 8, 30, 0, 0, time.UTC),
				time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)))

	reminders, err := repo.StartingBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "ana@example.com", reminders[0].UserEmail)
	assert.Equal(t, "Center Court", reminders[0].CourtName)
}
