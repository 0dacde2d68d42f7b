package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/court"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/metrics"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"
)

// Notifier delivers the slot-available message to the head of the queue.
// Delivery is fire-and-forget: a failure never blocks the cascade.
type Notifier interface {
	SlotAvailable(ctx context.Context, email, name, courtName string, date, start, end time.Time, minutesToRespond int) error
}

type EnqueueInput struct {
	UserID       int64
	CourtID      int64
	DesiredDate  time.Time
	DesiredStart time.Time
	DesiredEnd   time.Time
}

type Service interface {
	Enqueue(ctx context.Context, input EnqueueInput) (*EntryResponse, error)
	GetEntry(ctx context.Context, id int64) (*EntryResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]EntryResponse, error)
	TriggerCascade(ctx context.Context, courtID int64, date, start, end time.Time) error
	ExpireNotifications(ctx context.Context) (int, error)
	Remove(ctx context.Context, id int64) error
	PurgeOld(ctx context.Context) (int64, error)
}

type service struct {
	repo           Repository
	userRepo       user.Repository
	courtRepo      court.Repository
	notifier       Notifier
	responseWindow time.Duration
	purgeAfterDays int
	now            func() time.Time
}

func NewService(
	repo Repository,
	userRepo user.Repository,
	courtRepo court.Repository,
	notifier Notifier,
	responseWindow time.Duration,
	purgeAfterDays int,
) Service {
	return &service{
		repo:           repo,
		userRepo:       userRepo,
		courtRepo:      courtRepo,
		notifier:       notifier,
		responseWindow: responseWindow,
		purgeAfterDays: purgeAfterDays,
		now:            time.Now,
	}
}

func (s *service) Enqueue(ctx context.Context, input EnqueueInput) (*EntryResponse, error) {
	now := s.now()

	desired := timeslot.Combine(input.DesiredDate, input.DesiredStart)
	if desired.Before(now) {
		return nil, apperr.Validation("cannot join the waiting list for a past time slot")
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found with id: %d", input.UserID)
		}
		return nil, err
	}

	if _, err := s.courtRepo.GetByID(ctx, input.CourtID); err != nil {
		if errors.Is(err, court.ErrCourtNotFound) {
			return nil, apperr.NotFound("court not found with id: %d", input.CourtID)
		}
		return nil, err
	}

	// The position counts every existing entry for the key, including
	// notified ones still inside their response window.
	count, err := s.repo.CountForSlot(ctx, input.CourtID, input.DesiredDate, input.DesiredStart, input.DesiredEnd)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &WaitingEntry{
		UserID:       input.UserID,
		CourtID:      input.CourtID,
		DesiredDate:  input.DesiredDate,
		DesiredStart: input.DesiredStart,
		DesiredEnd:   input.DesiredEnd,
		RequestDate:  now,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user added to waiting list",
		"entry_id", created.ID,
		"user_id", input.UserID,
		"court_id", input.CourtID,
		"position", count+1,
	)

	return &EntryResponse{WaitingEntry: *created, PositionInQueue: count + 1}, nil
}

func (s *service) GetEntry(ctx context.Context, id int64) (*EntryResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, apperr.NotFound("waiting list entry not found with id: %d", id)
		}
		return nil, err
	}

	position, err := s.position(ctx, entry)
	if err != nil {
		return nil, err
	}

	return &EntryResponse{WaitingEntry: *entry, PositionInQueue: position}, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]EntryResponse, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		position, err := s.position(ctx, &entries[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, EntryResponse{WaitingEntry: entries[i], PositionInQueue: position})
	}

	return responses, nil
}

// TriggerCascade notifies the head of the queue for a freed slot. Callers
// invoke it after a cancellation persists; it is a no-op when nobody waits.
func (s *service) TriggerCascade(ctx context.Context, courtID int64, date, start, end time.Time) error {
	return s.cascade(ctx, courtID, date, start, end, 0)
}

func (s *service) cascade(ctx context.Context, courtID int64, date, start, end time.Time, excludeID int64) error {
	entries, err := s.repo.PendingForSlot(ctx, courtID, date, start, end)
	if err != nil {
		return err
	}

	var head *WaitingEntry
	for i := range entries {
		if entries[i].ID == excludeID {
			continue
		}
		head = &entries[i]
		break
	}

	if head == nil {
		logger.Debug("no users waiting for slot", "court_id", courtID, "date", timeslot.FormatDate(date))
		return nil
	}

	now := s.now()
	expiresAt := now.Add(s.responseWindow)
	if err := s.repo.MarkNotified(ctx, head.ID, now, expiresAt); err != nil {
		return err
	}

	s.sendNotification(ctx, head, date, start, end)

	logger.Info("waiting list entry notified",
		"entry_id", head.ID,
		"user_id", head.UserID,
		"expires_at", expiresAt,
	)

	return nil
}

// ExpireNotifications reverts entries whose response window has closed and
// immediately re-triggers the cascade for the freed key. The just-reverted
// entry is excluded from its own re-trigger so it cannot be re-notified in
// the same pass even though it has the oldest request date again.
func (s *service) ExpireNotifications(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpiredNotifications(ctx, s.now())
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range expired {
		entry := &expired[i]
		if !entry.IsNotificationExpired(s.now()) {
			continue
		}

		if err := s.repo.ClearNotification(ctx, entry.ID); err != nil {
			logger.Error("failed to revert expired notification", "entry_id", entry.ID, "error", err)
			continue
		}

		metrics.RecordWaitlistNotification("expired")
		logger.Info("notification expired without response, trying next in queue",
			"entry_id", entry.ID,
			"user_id", entry.UserID,
		)

		if err := s.cascade(ctx, entry.CourtID, entry.DesiredDate, entry.DesiredStart, entry.DesiredEnd, entry.ID); err != nil {
			logger.Error("failed to re-trigger cascade", "entry_id", entry.ID, "error", err)
		}

		processed++
	}

	return processed, nil
}

func (s *service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return apperr.NotFound("waiting list entry not found with id: %d", id)
		}
		return err
	}

	logger.Info("waiting list entry removed", "entry_id", id)
	return nil
}

func (s *service) PurgeOld(ctx context.Context) (int64, error) {
	now := s.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -s.purgeAfterDays)

	count, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("purged old waiting list entries", "count", count, "cutoff", timeslot.FormatDate(cutoff))
	}

	return count, nil
}

// position reports 1 for a notified entry, otherwise the 1-based FIFO rank
// among unnotified entries sharing the key.
func (s *service) position(ctx context.Context, entry *WaitingEntry) (int, error) {
	if entry.Notified {
		return 1, nil
	}

	pending, err := s.repo.PendingForSlot(ctx, entry.CourtID, entry.DesiredDate, entry.DesiredStart, entry.DesiredEnd)
	if err != nil {
		return 0, err
	}

	for i := range pending {
		if pending[i].ID == entry.ID {
			return i + 1, nil
		}
	}

	return len(pending) + 1, nil
}

func (s *service) sendNotification(ctx context.Context, entry *WaitingEntry, date, start, end time.Time) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.GetByID(ctx, entry.UserID)
	if err != nil {
		logger.Error("failed to load user for notification", "user_id", entry.UserID, "error", err)
		metrics.RecordWaitlistNotification("failed")
		return
	}

	courtName := ""
	if c, err := s.courtRepo.GetByID(ctx, entry.CourtID); err == nil {
		courtName = c.Name
	}

	minutes := int(s.responseWindow.Minutes())
	if err := s.notifier.SlotAvailable(ctx, u.Email, u.Name, courtName, date, start, end, minutes); err != nil {
		logger.Error("failed to send slot-available notification", "entry_id", entry.ID, "error", err)
		metrics.RecordWaitlistNotification("failed")
		return
	}

	metrics.RecordWaitlistNotification("sent")
}
