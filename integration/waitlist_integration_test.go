package booking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/booking"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/court"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/prepaid"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/waitlist"
)

func TestWaitlistCascade_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	ctx := context.Background()

	userRepo := user.NewRepository(db)
	courtRepo := court.NewRepository(db)
	prepaidRepo := prepaid.NewRepository(db)
	waitlistRepo := waitlist.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	prepaidService := prepaid.NewService(prepaidRepo, userRepo)
	waitlistService := waitlist.NewService(waitlistRepo, userRepo, courtRepo, nil, 30*time.Minute, 30)
	bookingService := booking.NewService(bookingRepo, userRepo, courtRepo, prepaidService, waitlistService, nil)

	holder := seedUser(t, db, user.MembershipVIP)
	c := seedCourt(t, db)

	var waiters []*user.User
	for i := 0; i < 2; i++ {
		w, err := userRepo.Create(ctx, &user.User{
			Name:       fmt.Sprintf("Waiter %d", i+1),
			Email:      fmt.Sprintf("waiter%d@example.com", i+1),
			Membership: user.MembershipBasic,
			Active:     true,
		})
		require.NoError(t, err)
		waiters = append(waiters, w)
	}

	date, err := timeslot.ParseDate(time.Now().AddDate(0, 0, 1).Format("2006-01-02"))
	require.NoError(t, err)
	start, _ := timeslot.ParseClock("18:00")
	end, _ := timeslot.ParseClock("20:00")

	// Holder takes the slot
	b, err := bookingService.Create(ctx, booking.CreateInput{
		UserID:    holder.ID,
		CourtID:   c.ID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)

	// Two users queue up for the same slot
	first, err := waitlistService.Enqueue(ctx, waitlist.EnqueueInput{
		UserID: waiters[0].ID, CourtID: c.ID,
		DesiredDate: date, DesiredStart: start, DesiredEnd: end,
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.PositionInQueue)

	second, err := waitlistService.Enqueue(ctx, waitlist.EnqueueInput{
		UserID: waiters[1].ID, CourtID: c.ID,
		DesiredDate: date, DesiredStart: start, DesiredEnd: end,
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.PositionInQueue)

	// Cancellation frees the slot and notifies only the head of the queue
	_, err = bookingService.Cancel(ctx, b.ID, "", false)
	require.NoError(t, err)

	headAfter, err := waitlistService.GetEntry(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, headAfter.Notified)
	require.NotNil(t, headAfter.NotificationExpiry)

	secondAfter, err := waitlistService.GetEntry(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, secondAfter.Notified)
	require.Equal(t, 1, secondAfter.PositionInQueue)
}
