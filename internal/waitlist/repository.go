package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrEntryNotFound = errors.New("waiting list entry not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const entryColumns = `id, user_id, court_id, desired_date, desired_start_time, desired_end_time,
	request_date, notified, notification_date, notification_expiration_date`

func (r *repository) Create(ctx context.Context, e *WaitingEntry) (*WaitingEntry, error) {
	query := `
		INSERT INTO waiting_list (user_id, court_id, desired_date, desired_start_time, desired_end_time, request_date, notified)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING ` + entryColumns

	var created WaitingEntry
	err := r.db.GetContext(ctx, &created, query,
		e.UserID, e.CourtID, e.DesiredDate, e.DesiredStart, e.DesiredEnd, e.RequestDate)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*WaitingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM waiting_list WHERE id = $1`

	var e WaitingEntry
	err := r.db.GetContext(ctx, &e, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	return &e, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]WaitingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM waiting_list WHERE user_id = $1 ORDER BY request_date DESC`

	var entries []WaitingEntry
	err := r.db.SelectContext(ctx, &entries, query, userID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) CountForSlot(ctx context.Context, courtID int64, date, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM waiting_list
		WHERE court_id = $1 AND desired_date = $2 AND desired_start_time = $3 AND desired_end_time = $4
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, courtID, date, start, end)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) PendingForSlot(ctx context.Context, courtID int64, date, start, end time.Time) ([]WaitingEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM waiting_list
		WHERE court_id = $1 AND desired_date = $2 AND desired_start_time = $3 AND desired_end_time = $4
		  AND notified = false
		ORDER BY request_date ASC`

	var entries []WaitingEntry
	err := r.db.SelectContext(ctx, &entries, query, courtID, date, start, end)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) MarkNotified(ctx context.Context, id int64, notifiedAt, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE waiting_list
		 SET notified = true, notification_date = $1, notification_expiration_date = $2
		 WHERE id = $3`,
		notifiedAt, expiresAt, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (r *repository) ClearNotification(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE waiting_list
		 SET notified = false, notification_date = NULL, notification_expiration_date = NULL
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (r *repository) ExpiredNotifications(ctx context.Context, now time.Time) ([]WaitingEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM waiting_list
		WHERE notified = true AND notification_expiration_date < $1
		ORDER BY notification_expiration_date ASC`

	var entries []WaitingEntry
	err := r.db.SelectContext(ctx, &entries, query, now)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM waiting_list WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM waiting_list WHERE desired_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
