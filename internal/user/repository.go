package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, membership, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, membership, active, created_at
	`

	var created User
	err := r.db.GetContext(ctx, &created, query, u.Name, u.Email, u.Membership, u.Active)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, membership, active, created_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) GetAll(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, name, email, membership, active, created_at
		FROM users
		ORDER BY created_at DESC
	`

	var users []User
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) Update(ctx context.Context, u *User) (*User, error) {
	query := `
		UPDATE users
		SET name = $1, membership = $2, active = $3
		WHERE id = $4
		RETURNING id, name, email, membership, active, created_at
	`

	var updated User
	err := r.db.GetContext(ctx, &updated, query, u.Name, u.Membership, u.Active, u.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	return db.Exists(ctx, r.db, query, email)
}
