package waitlist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/court"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

var testNow = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.Local)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeslot.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustClock(t *testing.T, s string) time.Time {
	t.Helper()
	c, err := timeslot.ParseClock(s)
	require.NoError(t, err)
	return c
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, e *WaitingEntry) (*WaitingEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		if args.Error(1) != nil {
			return nil, args.Error(1)
		}
		created := *e
		created.ID = 100
		return &created, nil
	}
	return args.Get(0).(*WaitingEntry), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*WaitingEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WaitingEntry), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64) ([]WaitingEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitingEntry), args.Error(1)
}

func (m *MockRepository) CountForSlot(ctx context.Context, courtID int64, date, start, end time.Time) (int, error) {
	args := m.Called(ctx, courtID, date, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) PendingForSlot(ctx context.Context, courtID int64, date, start, end time.Time) ([]WaitingEntry, error) {
	args := m.Called(ctx, courtID, date, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitingEntry), args.Error(1)
}

func (m *MockRepository) MarkNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) error {
	args := m.Called(ctx, id, notifiedAt, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) ClearNotification(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ExpiredNotifications(ctx context.Context, now time.Time) ([]WaitingEntry, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WaitingEntry), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockCourtRepository struct {
	mock.Mock
}

func (m *MockCourtRepository) Create(ctx context.Context, c *court.Court) (*court.Court, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*court.Court), args.Error(1)
}

func (m *MockCourtRepository) GetByID(ctx context.Context, id int64) (*court.Court, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*court.Court), args.Error(1)
}

func (m *MockCourtRepository) GetAll(ctx context.Context) ([]court.Court, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]court.Court), args.Error(1)
}

func (m *MockCourtRepository) Update(ctx context.Context, c *court.Court) (*court.Court, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*court.Court), args.Error(1)
}

func (m *MockCourtRepository) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SlotAvailable(ctx context.Context, email, name, courtName string, date, start, end time.Time, minutesToRespond int) error {
	args := m.Called(ctx, email, name, courtName, date, start, end, minutesToRespond)
	return args.Error(0)
}

type serviceMocks struct {
	repo     *MockRepository
	users    *MockUserRepository
	courts   *MockCourtRepository
	notifier *MockNotifier
}

func newTestService() (*service, *serviceMocks) {
	m := &serviceMocks{
		repo:     new(MockRepository),
		users:    new(MockUserRepository),
		courts:   new(MockCourtRepository),
		notifier: new(MockNotifier),
	}

	svc := &service{
		repo:           m.repo,
		userRepo:       m.users,
		courtRepo:      m.courts,
		notifier:       m.notifier,
		responseWindow: 30 * time.Minute,
		purgeAfterDays: 30,
		now:            func() time.Time { return testNow },
	}

	return svc, m
}

func testUser(id int64) *user.User {
	return &user.User{ID: id, Name: "Alice", Email: "alice@example.com", Membership: user.MembershipNone, Active: true}
}

func testCourt() *court.Court {
	return &court.Court{ID: 2, Name: "Center Court", BaseHourRate: decimal.NewFromInt(50), Active: true}
}

func slotEntry(id, userID int64, requestedAt time.Time) WaitingEntry {
	return WaitingEntry{
		ID:           id,
		UserID:       userID,
		CourtID:      2,
		DesiredDate:  time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local),
		DesiredStart: time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
		DesiredEnd:   time.Date(0, 1, 1, 11, 0, 0, 0, time.UTC),
		RequestDate:  requestedAt,
	}
}

func TestEnqueue_RejectsPastSlot(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:       1,
		CourtID:      2,
		DesiredDate:  mustDate(t, "2026-01-04"),
		DesiredStart: mustClock(t, "10:00"),
		DesiredEnd:   mustClock(t, "11:00"),
	})

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestEnqueue_ReportsQueuePosition(t *testing.T) {
	svc, m := newTestService()

	date := mustDate(t, "2026-01-10")
	start := mustClock(t, "10:00")
	end := mustClock(t, "11:00")

	m.users.On("GetByID", mock.Anything, int64(1)).Return(testUser(1), nil)
	m.courts.On("GetByID", mock.Anything, int64(2)).Return(testCourt(), nil)
	m.repo.On("CountForSlot", mock.Anything, int64(2), date, start, end).Return(2, nil)
	m.repo.On("Create", mock.Anything, mock.Anything).Return(nil, nil)

	resp, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:       1,
		CourtID:      2,
		DesiredDate:  date,
		DesiredStart: start,
		DesiredEnd:   end,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.PositionInQueue)
	assert.Equal(t, testNow, resp.RequestDate)
}

func TestTriggerCascade_NotifiesHeadOnly(t *testing.T) {
	svc, m := newTestService()

	a := slotEntry(1, 10, testNow.Add(-3*time.Hour))
	b := slotEntry(2, 11, testNow.Add(-2*time.Hour))
	c := slotEntry(3, 12, testNow.Add(-time.Hour))

	m.repo.On("PendingForSlot", mock.Anything, int64(2), a.DesiredDate, a.DesiredStart, a.DesiredEnd).
		Return([]WaitingEntry{a, b, c}, nil)
	m.repo.On("MarkNotified", mock.Anything, a.ID, testNow, testNow.Add(30*time.Minute)).Return(nil)
	m.users.On("GetByID", mock.Anything, a.UserID).Return(testUser(a.UserID), nil)
	m.courts.On("GetByID", mock.Anything, int64(2)).Return(testCourt(), nil)
	m.notifier.On("SlotAvailable", mock.Anything, "alice@example.com", "Alice", "Center Court",
		a.DesiredDate, a.DesiredStart, a.DesiredEnd, 30).Return(nil)

	err := svc.TriggerCascade(context.Background(), 2, a.DesiredDate, a.DesiredStart, a.DesiredEnd)
	require.NoError(t, err)

	m.repo.AssertCalled(t, "MarkNotified", mock.Anything, a.ID, testNow, testNow.Add(30*time.Minute))
	m.repo.AssertNotCalled(t, "MarkNotified", mock.Anything, b.ID, mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "MarkNotified", mock.Anything, c.ID, mock.Anything, mock.Anything)
	m.notifier.AssertNumberOfCalls(t, "SlotAvailable", 1)
}

func TestTriggerCascade_EmptyQueueIsNoop(t *testing.T) {
	svc, m := newTestService()

	date := mustDate(t, "2026-01-10")
	start := mustClock(t, "10:00")
	end := mustClock(t, "11:00")

	m.repo.On("PendingForSlot", mock.Anything, int64(2), date, start, end).Return([]WaitingEntry{}, nil)

	err := svc.TriggerCascade(context.Background(), 2, date, start, end)
	require.NoError(t, err)
	m.repo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExpireNotifications_AdvancesToNextInLine(t *testing.T) {
	svc, m := newTestService()

	// A was notified but never responded; B joined after A.
	expiry := testNow.Add(-time.Minute)
	a := slotEntry(1, 10, testNow.Add(-3*time.Hour))
	a.Notified = true
	a.NotificationExpiry = &expiry
	b := slotEntry(2, 11, testNow.Add(-2*time.Hour))

	m.repo.On("ExpiredNotifications", mock.Anything, testNow).Return([]WaitingEntry{a}, nil)
	m.repo.On("ClearNotification", mock.Anything, a.ID).Return(nil)

	// After the revert, A is unnotified again and sorts first by request
	// date, but the re-trigger must skip it and notify B.
	reverted := a
	reverted.Notified = false
	reverted.NotificationExpiry = nil
	m.repo.On("PendingForSlot", mock.Anything, int64(2), a.DesiredDate, a.DesiredStart, a.DesiredEnd).
		Return([]WaitingEntry{reverted, b}, nil)
	m.repo.On("MarkNotified", mock.Anything, b.ID, testNow, testNow.Add(30*time.Minute)).Return(nil)
	m.users.On("GetByID", mock.Anything, b.UserID).Return(testUser(b.UserID), nil)
	m.courts.On("GetByID", mock.Anything, int64(2)).Return(testCourt(), nil)
	m.notifier.On("SlotAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, 30).Return(nil)

	processed, err := svc.ExpireNotifications(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, processed)
	m.repo.AssertCalled(t, "MarkNotified", mock.Anything, b.ID, testNow, testNow.Add(30*time.Minute))
	m.repo.AssertNotCalled(t, "MarkNotified", mock.Anything, a.ID, mock.Anything, mock.Anything)
}

func TestGetEntry_Position(t *testing.T) {
	svc, m := newTestService()

	t.Run("notified entry is always position one", func(t *testing.T) {
		a := slotEntry(1, 10, testNow.Add(-3*time.Hour))
		a.Notified = true
		m.repo.On("GetByID", mock.Anything, a.ID).Return(&a, nil).Once()

		resp, err := svc.GetEntry(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.PositionInQueue)
	})

	t.Run("unnotified entry ranks by request date", func(t *testing.T) {
		a := slotEntry(1, 10, testNow.Add(-3*time.Hour))
		b := slotEntry(2, 11, testNow.Add(-2*time.Hour))

		m.repo.On("GetByID", mock.Anything, b.ID).Return(&b, nil).Once()
		m.repo.On("PendingForSlot", mock.Anything, int64(2), b.DesiredDate, b.DesiredStart, b.DesiredEnd).
			Return([]WaitingEntry{a, b}, nil).Once()

		resp, err := svc.GetEntry(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.PositionInQueue)
	})
}

func TestRemove_NotFound(t *testing.T) {
	svc, m := newTestService()

	m.repo.On("Delete", mock.Anything, int64(42)).Return(ErrEntryNotFound)

	err := svc.Remove(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPurgeOld(t *testing.T) {
	svc, m := newTestService()

	cutoff := time.Date(2025, time.December, 6, 0, 0, 0, 0, time.Local)
	m.repo.On("DeleteOlderThan", mock.Anything, cutoff).Return(int64(4), nil)

	count, err := svc.PurgeOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
