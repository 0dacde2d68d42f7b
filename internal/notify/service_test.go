package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

func newTestService(rdb *redis.Client) *Service {
	return &Service{
		redis:    rdb,
		from:     "noreply@courtbook.com",
		fromName: "CourtBook Team",
		smtpHost: "smtp.test.com",
		smtpPort: "587",
		smtpUser: "test@example.com",
		smtpPass: "password",
	}
}

func TestSend(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	// Regexp matcher: the payload carries a timestamp.
	mock.Regexp().ExpectLPush("notifications", `.*`).SetVal(1)

	svc := newTestService(db)

	err := svc.Send(ctx, "user@example.com", "User", "Hello", "Test body")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingConfirmation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("notifications", `.*`).SetVal(1)

	svc := newTestService(db)

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	start := time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 20, 0, 0, 0, time.UTC)

	err := svc.BookingConfirmation(ctx, "user@example.com", "User", "Center Court", date, start, end, decimal.NewFromInt(156))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancellation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("notifications", `.*`).SetVal(1)

	svc := newTestService(db)

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	start := time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 20, 0, 0, 0, time.UTC)

	err := svc.BookingCancellation(ctx, "user@example.com", "User", "Center Court", date, start, end, decimal.NewFromFloat(109.20))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingReminder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("notifications", `.*`).SetVal(1)

	svc := newTestService(db)

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	start := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC)

	err := svc.BookingReminder(ctx, "user@example.com", "User", "Court 2", date, start, end)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotAvailable(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("notifications", `.*`).SetVal(1)

	svc := newTestService(db)

	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	start := time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC)

	err := svc.SlotAvailable(ctx, "user@example.com", "User", "Center Court", date, start, end, 30)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen("notifications").SetVal(5)

	svc := newTestService(db)

	length := svc.QueueLength(ctx)
	assert.Equal(t, int64(5), length)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLengthZero(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen("notifications").SetVal(0)

	svc := newTestService(db)

	length := svc.QueueLength(ctx)
	assert.Equal(t, int64(0), length)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("notifications", `.*`).SetErr(assert.AnError)

	svc := newTestService(db)

	err := svc.Send(ctx, "user@example.com", "User", "Hello", "Test body")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
