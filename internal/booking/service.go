package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/court"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/metrics"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/prepaid"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/pricing"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"

	"github.com/shopspring/decimal"
)

const (
	openHour  = 6
	closeHour = 23

	minDurationHours = 1
	maxDurationHours = 4

	minAdvance = 2 * time.Hour

	minSeriesWeeks = 2
	maxSeriesWeeks = 12
)

// PackageLedger is the slice of the prepaid service the booking flow needs.
type PackageLedger interface {
	BestAvailable(ctx context.Context, userID int64) (*prepaid.UserPackage, error)
	Deduct(ctx context.Context, userPackageID int64, hours int) error
	Refund(ctx context.Context, userPackageID int64, hours int) error
}

// WaitlistCascade is triggered after a cancellation frees a slot.
type WaitlistCascade interface {
	TriggerCascade(ctx context.Context, courtID int64, date, start, end time.Time) error
}

// Notifier delivers booking lifecycle messages. All sends are
// fire-and-forget; failures are logged and never fail the operation.
type Notifier interface {
	BookingConfirmation(ctx context.Context, email, name, courtName string, date, start, end time.Time, total decimal.Decimal) error
	BookingCancellation(ctx context.Context, email, name, courtName string, date, start, end time.Time, refund decimal.Decimal) error
	BookingReminder(ctx context.Context, email, name, courtName string, date, start, end time.Time) error
}

type CreateInput struct {
	UserID     int64
	CourtID    int64
	Date       time.Time
	StartTime  time.Time
	EndTime    time.Time
	UsePackage bool
}

type SeriesInput struct {
	UserID     int64
	CourtID    int64
	StartDate  time.Time
	StartTime  time.Time
	EndTime    time.Time
	Weeks      int
	UsePackage bool
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Booking, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	ListByUser(ctx context.Context, userID int64, status string) ([]Booking, error)
	Cancel(ctx context.Context, id int64, reason string, cancelAllRecurrent bool) (*CancellationResult, error)
	Availability(ctx context.Context, courtID int64, date time.Time) (*AvailabilityResponse, error)
	CreateSeries(ctx context.Context, input SeriesInput) (*SeriesResult, error)
	CompletePastBookings(ctx context.Context) (int64, error)
	SendUpcomingReminders(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	userRepo  user.Repository
	courtRepo court.Repository
	ledger    PackageLedger
	waitlist  WaitlistCascade
	notifier  Notifier
	locks     *slotLock
	now       func() time.Time
}

func NewService(
	repo Repository,
	userRepo user.Repository,
	courtRepo court.Repository,
	ledger PackageLedger,
	waitlist WaitlistCascade,
	notifier Notifier,
) Service {
	return &service{
		repo:      repo,
		userRepo:  userRepo,
		courtRepo: courtRepo,
		ledger:    ledger,
		waitlist:  waitlist,
		notifier:  notifier,
		locks:     newSlotLock(),
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Booking, error) {
	return s.createOne(ctx, input, false, nil)
}

/// createOne runs the full creation pipeline for a single occurrence:
// validate, lock the (court, date) schedule page, check overlap, price,
// deduct package hours if requested, persist. A failed insert after a
// successful deduction refunds the hours so no partial mutation survives.
func (s *service) createOne(ctx context.Context, input CreateInput, recurrent bool, parentID *int64) (*Booking, error) {
	u, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found with id: %d", input.UserID)
		}
		return nil, err
	}
	if !u.Active {
		return nil, apperr.Conflict("user %d is not active", u.ID)
	}

	c, err := s.courtRepo.GetByID(ctx, input.CourtID)
	if err != nil {
		if errors.Is(err, court.ErrCourtNotFound) {
			return nil, apperr.NotFound("court not found with id: %d", input.CourtID)
		}
		return nil, err
	}
	if !c.Active {
		return nil, apperr.Conflict("court %q is not active", c.Name)
	}

	hours, err := s.validateWindow(input.Date, input.StartTime, input.EndTime, u.Membership)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(input.CourtID, input.Date)
	defer unlock()

	taken, err := s.repo.ExistsOverlapping(ctx, input.CourtID, input.Date, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("court is already booked for the requested time")
	}

	b := &Booking{
		UserID:          input.UserID,
		CourtID:         input.CourtID,
		Date:            input.Date,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Status:          StatusConfirmed,
		Recurrent:       recurrent,
		ParentBookingID: parentID,
	}

	payment := "standard"
	if input.UsePackage {
		payment = "package"

		up, err := s.ledger.BestAvailable(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Deduct(ctx, up.ID, hours); err != nil {
			return nil, err
		}

		// Package bookings keep the base price for audit but charge nothing.
		b.BasePrice = c.BaseHourRate.Mul(decimal.NewFromInt(int64(hours)))
		b.Surcharge = decimal.Zero
		b.Discount = decimal.Zero
		b.TotalPrice = decimal.Zero
		b.UsedPackage = true
		b.UserPackageID = &up.ID
		b.HoursDeducted = hours
	} else {
		quote := pricing.Calculate(c.BaseHourRate, input.Date, input.StartTime, input.EndTime, u.Membership.DiscountFraction(), recurrent)
		b.BasePrice = quote.BasePrice
		b.Surcharge = quote.Surcharge
		b.Discount = quote.Discount
		b.TotalPrice = quote.Total
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		if b.UsedPackage && b.UserPackageID != nil {
			if refundErr := s.ledger.Refund(ctx, *b.UserPackageID, hours); refundErr != nil {
				logger.Error("failed to refund hours after aborted booking",
					"user_package_id", *b.UserPackageID, "hours", hours, "error", refundErr)
			}
		}
		return nil, err
	}

	metrics.RecordBooking(string(created.Status), payment)
	logger.Info("booking created",
		"booking_id", created.ID,
		"user_id", created.UserID,
		"court_id", created.CourtID,
		"date", timeslot.FormatDate(created.Date),
		"total", created.TotalPrice,
		"payment", payment,
	)

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmation(ctx, u.Email, u.Name, c.Name,
			created.Date, created.StartTime, created.EndTime, created.TotalPrice); err != nil {
			logger.Error("failed to send booking confirmation", "booking_id", created.ID, "error", err)
		}
	}

	return created, nil
}

// validateWindow checks the operating-hours window, duration bounds, lead
// time and the membership advance ceiling. It returns the whole-hour
// duration on success.
func (s *service) validateWindow(date, start, end time.Time, membership user.Membership) (int, error) {
	startMin := timeslot.ClockMinutes(start)
	endMin := timeslot.ClockMinutes(end)

	if startMin >= endMin {
		return 0, apperr.Validation("start time must be before end time")
	}
	if startMin < openHour*60 {
		return 0, apperr.Validation("bookings start no earlier than %02d:00", openHour)
	}
	if endMin > closeHour*60 {
		return 0, apperr.Validation("bookings end no later than %02d:00", closeHour)
	}

	if (endMin-startMin)%60 != 0 {
		return 0, apperr.Validation("booking duration must be a whole number of hours")
	}
	hours := (endMin - startMin) / 60
	if hours < minDurationHours || hours > maxDurationHours {
		return 0, apperr.Validation("booking duration must be between %d and %d hours", minDurationHours, maxDurationHours)
	}

	now := s.now()
	startAt := timeslot.Combine(date, start)
	if startAt.Before(now.Add(minAdvance)) {
		return 0, apperr.Validation("bookings require at least %d hours notice", int(minAdvance.Hours()))
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	maxDays := membership.MaxAdvanceDays()
	if int(date.Sub(today).Hours()/24) > maxDays {
		return 0, apperr.Validation("%s membership allows booking at most %d days in advance", membership, maxDays)
	}

	return hours, nil
}

func (s *service) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperr.NotFound("booking not found with id: %d", id)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64, status string) ([]Booking, error) {
	if status == "" {
		return s.repo.ListByUser(ctx, userID)
	}

	st := Status(status)
	switch st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
	default:
		return nil, apperr.Validation("unknown booking status: %s", status)
	}

	return s.repo.ListByUserAndStatus(ctx, userID, st)
}

func (s *service) Cancel(ctx context.Context, id int64, reason string, cancelAllRecurrent bool) (*CancellationResult, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperr.NotFound("booking not found with id: %d", id)
		}
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, apperr.Conflict("only confirmed bookings can be cancelled, booking %d is %s", b.ID, b.Status)
	}

	u, err := s.userRepo.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hoursInAdvance := timeslot.Combine(b.Date, b.StartTime).Sub(now).Hours()
	pct := penaltyPercentage(u.Membership, hoursInAdvance)

	penalty := b.TotalPrice.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
	refund := b.TotalPrice.Sub(penalty)

	if reason == "" {
		reason = "cancelled by user"
	}
	if err := s.repo.UpdateCancellation(ctx, b.ID, now, reason, penalty); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperr.Conflict("booking %d was already cancelled or completed", b.ID)
		}
		return nil, err
	}

	hoursRefunded := 0
	if b.UsedPackage && b.UserPackageID != nil && pct < 50 {
		if err := s.ledger.Refund(ctx, *b.UserPackageID, b.HoursDeducted); err != nil {
			logger.Error("failed to refund package hours on cancellation",
				"booking_id", b.ID, "user_package_id", *b.UserPackageID, "error", err)
		} else {
			hoursRefunded = b.HoursDeducted
		}
	}

	siblings := 0
	if cancelAllRecurrent && b.ParentBookingID != nil {
		siblings = s.cancelSiblings(ctx, *b.ParentBookingID, b.ID, now)
	}

	metrics.RecordCancellation(penaltyTier(pct))
	logger.Info("booking cancelled",
		"booking_id", b.ID,
		"penalty_percentage", pct,
		"penalty", penalty,
		"refund", refund,
		"siblings_cancelled", siblings,
	)

	s.triggerCascade(ctx, b)

	if s.notifier != nil {
		c, err := s.courtRepo.GetByID(ctx, b.CourtID)
		courtName := ""
		if err == nil {
			courtName = c.Name
		}
		if err := s.notifier.BookingCancellation(ctx, u.Email, u.Name, courtName,
			b.Date, b.StartTime, b.EndTime, refund); err != nil {
			logger.Error("failed to send cancellation notification", "booking_id", b.ID, "error", err)
		}
	}

	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = &reason
	b.PenaltyAmount = &penalty

	return &CancellationResult{
		Booking:           *b,
		PenaltyPercentage: pct,
		PenaltyAmount:     penalty,
		RefundAmount:      refund,
		HoursRefunded:     hoursRefunded,
		SiblingsCancelled: siblings,
	}, nil
}

// cancelSiblings bulk-cancels every still-confirmed member of a series.
// Bulk cancellation is penalty-free; a single sibling's failure is logged
// and does not stop the rest.
func (s *service) cancelSiblings(ctx context.Context, parentID, excludeID int64, now time.Time) int {
	siblings, err := s.repo.SiblingsConfirmed(ctx, parentID, excludeID)
	if err != nil {
		logger.Error("failed to list series siblings", "parent_booking_id", parentID, "error", err)
		return 0
	}

	cancelled := 0
	for i := range siblings {
		sib := &siblings[i]
		if err := s.repo.UpdateCancellation(ctx, sib.ID, now, "recurrent series cancelled", decimal.Zero); err != nil {
			logger.Error("failed to cancel series sibling", "booking_id", sib.ID, "error", err)
			continue
		}

		if sib.UsedPackage && sib.UserPackageID != nil {
			if err := s.ledger.Refund(ctx, *sib.UserPackageID, sib.HoursDeducted); err != nil {
				logger.Error("failed to refund sibling package hours", "booking_id", sib.ID, "error", err)
			}
		}

		s.triggerCascade(ctx, sib)
		cancelled++
	}

	return cancelled
}

func (s *service) triggerCascade(ctx context.Context, b *Booking) {
	if s.waitlist == nil {
		return
	}
	if err := s.waitlist.TriggerCascade(ctx, b.CourtID, b.Date, b.StartTime, b.EndTime); err != nil {
		logger.Error("failed to trigger waiting list cascade", "booking_id", b.ID, "error", err)
	}
}

// penaltyPercentage maps the cancellation lead time to a penalty tier.
// A past booking has negative hoursInAdvance and falls in the 50% bucket.
func penaltyPercentage(membership user.Membership, hoursInAdvance float64) int {
	switch {
	case membership == user.MembershipVIP && hoursInAdvance >= 12:
		return 0
	case hoursInAdvance >= 24:
		return 0
	case hoursInAdvance >= 12:
		return 30
	default:
		return 50
	}
}

func penaltyTier(pct int) string {
	switch pct {
	case 0:
		return "none"
	case 30:
		return "partial"
	default:
		return "full"
	}
}

func (s *service) Availability(ctx context.Context, courtID int64, date time.Time) (*AvailabilityResponse, error) {
	c, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, court.ErrCourtNotFound) {
			return nil, apperr.NotFound("court not found with id: %d", courtID)
		}
		return nil, err
	}

	confirmed, err := s.repo.ConfirmedByCourtAndDate(ctx, courtID, date)
	if err != nil {
		return nil, err
	}

	resp := &AvailabilityResponse{
		CourtID:       courtID,
		Date:          timeslot.FormatDate(date),
		FreeSlots:     []FreeSlot{},
		OccupiedSlots: make([]OccupiedSlot, 0, len(confirmed)),
	}

	for i := range confirmed {
		resp.OccupiedSlots = append(resp.OccupiedSlots, OccupiedSlot{
			StartTime: timeslot.FormatClock(confirmed[i].StartTime),
			EndTime:   timeslot.FormatClock(confirmed[i].EndTime),
		})
	}

	for hour := openHour; hour < closeHour; hour++ {
		start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.Local)
		end := start.Add(time.Hour)

		free := true
		for i := range confirmed {
			if timeslot.Overlaps(start, end, confirmed[i].StartTime, confirmed[i].EndTime) {
				free = false
				break
			}
		}
		if !free {
			continue
		}

		resp.FreeSlots = append(resp.FreeSlots, FreeSlot{
			StartTime:      timeslot.FormatClock(start),
			EndTime:        timeslot.FormatClock(end),
			EstimatedPrice: pricing.Estimate(c.BaseHourRate, date, start, end),
			PriceFactor:    pricing.Factor(date, start),
		})
	}

	return resp, nil
}

// CreateSeries books the same weekly slot for N consecutive weeks. Each
// occurrence is attempted independently: a conflict or package failure in
// one week is recorded and the remaining weeks still proceed. The first
// successful occurrence anchors the series and stores its own id as parent.
func (s *service) CreateSeries(ctx context.Context, input SeriesInput) (*SeriesResult, error) {
	if input.Weeks < minSeriesWeeks || input.Weeks > maxSeriesWeeks {
		return nil, apperr.Validation("recurrent series must span between %d and %d weeks", minSeriesWeeks, maxSeriesWeeks)
	}

	result := &SeriesResult{
		TotalPrice:  decimal.Zero,
		Occurrences: make([]OccurrenceResult, 0, input.Weeks),
	}

	var anchorID *int64
	for week := 0; week < input.Weeks; week++ {
		date := input.StartDate.AddDate(0, 0, 7*week)

		b, err := s.createOne(ctx, CreateInput{
			UserID:     input.UserID,
			CourtID:    input.CourtID,
			Date:       date,
			StartTime:  input.StartTime,
			EndTime:    input.EndTime,
			UsePackage: input.UsePackage,
		}, true, anchorID)
		if err != nil {
			result.FailCount++
			result.Occurrences = append(result.Occurrences, OccurrenceResult{
				Week:   week + 1,
				Date:   timeslot.FormatDate(date),
				Status: OccurrenceFailed,
				Total:  decimal.Zero,
				Reason: err.Error(),
			})
			logger.Error("recurrent occurrence failed",
				"week", week+1, "date", timeslot.FormatDate(date), "error", err)
			continue
		}

		if anchorID == nil {
			anchorID = &b.ID
			if err := s.repo.SetParentBooking(ctx, b.ID, b.ID); err != nil {
				logger.Error("failed to anchor recurrent series", "booking_id", b.ID, "error", err)
			}
			b.ParentBookingID = anchorID
		}

		result.SuccessCount++
		result.TotalPrice = result.TotalPrice.Add(b.TotalPrice)
		result.Occurrences = append(result.Occurrences, OccurrenceResult{
			Week:      week + 1,
			Date:      timeslot.FormatDate(date),
			Status:    OccurrenceSuccess,
			BookingID: &b.ID,
			Total:     b.TotalPrice,
		})
	}

	result.ParentBookingID = anchorID

	logger.Info("recurrent series created",
		"weeks", input.Weeks,
		"succeeded", result.SuccessCount,
		"failed", result.FailCount,
		"total", result.TotalPrice,
	)

	return result, nil
}

func (s *service) CompletePastBookings(ctx context.Context) (int64, error) {
	count, err := s.repo.CompletePast(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("past bookings completed", "count", count)
	}

	return count, nil
}

// SendUpcomingReminders notifies users whose confirmed bookings start within
// the next hour.
func (s *service) SendUpcomingReminders(ctx context.Context) (int, error) {
	now := s.now()
	upcoming, err := s.repo.StartingBetween(ctx, now, now.Add(time.Hour))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range upcoming {
		r := &upcoming[i]
		if s.notifier == nil {
			break
		}
		if err := s.notifier.BookingReminder(ctx, r.UserEmail, r.UserName, r.CourtName, r.Date, r.StartTime, r.EndTime); err != nil {
			logger.Error("failed to send booking reminder", "booking_id", r.BookingID, "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}
