package prepaid

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPackageNotFound     = errors.New("package not found")
	ErrUserPackageNotFound = errors.New("user package not found")
	ErrInsufficientHours   = errors.New("package has insufficient hours or is expired")
	ErrNoAvailablePackage  = errors.New("no available package")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePackage(ctx context.Context, p *Package) (*Package, error) {
	query := `
		INSERT INTO packages (name, amount_hours, price, discount, validity_days, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, amount_hours, price, discount, validity_days, active, created_at
	`

	var created Package
	err := r.db.GetContext(ctx, &created, query, p.Name, p.AmountHours, p.Price, p.Discount, p.ValidityDays, p.Active)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetPackageByID(ctx context.Context, id int64) (*Package, error) {
	query := `
		SELECT id, name, amount_hours, price, discount, validity_days, active, created_at
		FROM packages
		WHERE id = $1
	`

	var p Package
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListPackages(ctx context.Context, activeOnly bool) ([]Package, error) {
	query := `
		SELECT id, name, amount_hours, price, discount, validity_days, active, created_at
		FROM packages
	`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY amount_hours`

	var packages []Package
	err := r.db.SelectContext(ctx, &packages, query)
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *repository) CreateUserPackage(ctx context.Context, up *UserPackage) (*UserPackage, error) {
	query := `
		INSERT INTO user_packages (user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
	`

	var created UserPackage
	err := r.db.GetContext(ctx, &created, query,
		up.UserID, up.PackageID, up.InitialHours, up.RemainingHours, up.PurchaseDate, up.ExpirationDate, up.Active)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetUserPackageByID(ctx context.Context, id int64) (*UserPackage, error) {
	query := `
		SELECT id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
		FROM user_packages
		WHERE id = $1
	`

	var up UserPackage
	err := r.db.GetContext(ctx, &up, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserPackageNotFound
		}
		return nil, err
	}

	return &up, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]UserPackage, error) {
	query := `
		SELECT id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
		FROM user_packages
		WHERE user_id = $1
	`
	if activeOnly {
		query += ` AND active = true`
	}
	query += ` ORDER BY purchase_date DESC`

	var packages []UserPackage
	err := r.db.SelectContext(ctx, &packages, query, userID)
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *repository) BestAvailable(ctx context.Context, userID int64, now time.Time) (*UserPackage, error) {
	query := `
		SELECT id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
		FROM user_packages
		WHERE user_id = $1
		  AND active = true
		  AND expiration_date >= $2
		  AND remaining_hours > 0
		ORDER BY remaining_hours DESC
		LIMIT 1
	`

	var up UserPackage
	err := r.db.GetContext(ctx, &up, query, userID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoAvailablePackage
		}
		return nil, err
	}

	return &up, nil
}

// DeductHours subtracts hours inside a transaction holding a row lock so a
// concurrent deduction cannot drive the balance negative. A package drained
// to zero is deactivated in the same statement batch.
func (r *repository) DeductHours(ctx context.Context, id int64, hours int, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var up UserPackage
	err = tx.QueryRowxContext(ctx,
		`SELECT id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
		 FROM user_packages
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	).StructScan(&up)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserPackageNotFound
		}
		return err
	}

	if !up.Active || up.IsExpired(now) || up.RemainingHours < hours {
		return ErrInsufficientHours
	}

	remaining := up.RemainingHours - hours
	_, err = tx.ExecContext(ctx,
		`UPDATE user_packages
		 SET remaining_hours = $1, active = $2
		 WHERE id = $3`,
		remaining, remaining > 0, id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RefundHours adds hours back and reactivates the package. Refunding an
// expired package is a no-op; the hours are forfeited.
func (r *repository) RefundHours(ctx context.Context, id int64, hours int, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var up UserPackage
	err = tx.QueryRowxContext(ctx,
		`SELECT id, user_id, package_id, initial_hours, remaining_hours, purchase_date, expiration_date, active
		 FROM user_packages
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	).StructScan(&up)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserPackageNotFound
		}
		return err
	}

	if up.IsExpired(now) {
		return tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_packages
		 SET remaining_hours = remaining_hours + $1, active = true
		 WHERE id = $2`,
		hours, id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ExpireActive(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_packages
		 SET active = false
		 WHERE active = true AND expiration_date < $1`,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
