package court

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCourtNotFound = errors.New("court not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Court) (*Court, error) {
	query := `
		INSERT INTO courts (name, sport_type, capacity, base_hour_rate, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, sport_type, capacity, base_hour_rate, active, created_at
	`

	var created Court
	err := r.db.GetContext(ctx, &created, query, c.Name, c.SportType, c.Capacity, c.BaseHourRate, c.Active)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Court, error) {
	query := `
		SELECT id, name, sport_type, capacity, base_hour_rate, active, created_at
		FROM courts
		WHERE id = $1
	`

	var c Court
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Court, error) {
	query := `
		SELECT id, name, sport_type, capacity, base_hour_rate, active, created_at
		FROM courts
		ORDER BY name
	`

	var courts []Court
	err := r.db.SelectContext(ctx, &courts, query)
	if err != nil {
		return nil, err
	}

	return courts, nil
}

func (r *repository) Update(ctx context.Context, c *Court) (*Court, error) {
	query := `
		UPDATE courts
		SET name = $1, sport_type = $2, capacity = $3, base_hour_rate = $4, active = $5
		WHERE id = $6
		RETURNING id, name, sport_type, capacity, base_hour_rate, active, created_at
	`

	var updated Court
	err := r.db.GetContext(ctx, &updated, query, c.Name, c.SportType, c.Capacity, c.BaseHourRate, c.Active, c.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE courts SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCourtNotFound
	}

	return nil
}
