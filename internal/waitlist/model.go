package waitlist

import "time"

// WaitingEntry is a request for a slot that is currently taken. Entries for
// the same (court, date, window) key form a FIFO queue ordered by RequestDate.
type WaitingEntry struct {
	ID                 int64      `db:"id" json:"id"`
	UserID             int64      `db:"user_id" json:"user_id"`
	CourtID            int64      `db:"court_id" json:"court_id"`
	DesiredDate        time.Time  `db:"desired_date" json:"desired_date"`
	DesiredStart       time.Time  `db:"desired_start_time" json:"desired_start_time"`
	DesiredEnd         time.Time  `db:"desired_end_time" json:"desired_end_time"`
	RequestDate        time.Time  `db:"request_date" json:"request_date"`
	Notified           bool       `db:"notified" json:"notified"`
	NotificationDate   *time.Time `db:"notification_date" json:"notification_date,omitempty"`
	NotificationExpiry *time.Time `db:"notification_expiration_date" json:"notification_expiration_date,omitempty"`
}

// IsNotificationExpired reports whether a notified entry's response window
// has closed without the user claiming the slot.
func (e *WaitingEntry) IsNotificationExpired(now time.Time) bool {
	return e.Notified && e.NotificationExpiry != nil && now.After(*e.NotificationExpiry)
}

type EnqueueRequest struct {
	UserID       int64  `json:"user_id" binding:"required"`
	CourtID      int64  `json:"court_id" binding:"required"`
	DesiredDate  string `json:"desired_date" binding:"required"`
	DesiredStart string `json:"desired_start_time" binding:"required"`
	DesiredEnd   string `json:"desired_end_time" binding:"required"`
}

type EntryResponse struct {
	WaitingEntry
	PositionInQueue int `json:"position_in_queue"`
}
