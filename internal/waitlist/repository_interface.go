package waitlist

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *WaitingEntry) (*WaitingEntry, error)
	GetByID(ctx context.Context, id int64) (*WaitingEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]WaitingEntry, error)

	// CountForSlot counts every entry for the key, notified or not; it backs
	// the position reported to a new entrant.
	CountForSlot(ctx context.Context, courtID int64, date, start, end time.Time) (int, error)
	// PendingForSlot returns unnotified entries for the key in FIFO order.
	PendingForSlot(ctx context.Context, courtID int64, date, start, end time.Time) ([]WaitingEntry, error)

	MarkNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) error
	ClearNotification(ctx context.Context, id int64) error
	ExpiredNotifications(ctx context.Context, now time.Time) ([]WaitingEntry, error)

	Delete(ctx context.Context, id int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
