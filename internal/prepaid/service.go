package prepaid

import (
	"context"
	"errors"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/metrics"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"
)

type Service interface {
	Purchase(ctx context.Context, userID, packageID int64) (*UserPackage, error)
	GetUserPackage(ctx context.Context, id int64) (*UserPackage, error)
	ListUserPackages(ctx context.Context, userID int64, activeOnly bool) ([]UserPackage, error)
	BestAvailable(ctx context.Context, userID int64) (*UserPackage, error)
	Deduct(ctx context.Context, userPackageID int64, hours int) error
	Refund(ctx context.Context, userPackageID int64, hours int) error
	SweepExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
	now      func() time.Time
}

func NewService(repo Repository, userRepo user.Repository) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *service) Purchase(ctx context.Context, userID, packageID int64) (*UserPackage, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found with id: %d", userID)
		}
		return nil, err
	}

	pkg, err := s.repo.GetPackageByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, apperr.NotFound("package not found with id: %d", packageID)
		}
		return nil, err
	}
	if !pkg.Active {
		return nil, apperr.Conflict("package %q is no longer offered", pkg.Name)
	}

	now := s.now()
	created, err := s.repo.CreateUserPackage(ctx, &UserPackage{
		UserID:         userID,
		PackageID:      packageID,
		InitialHours:   pkg.AmountHours,
		RemainingHours: pkg.AmountHours,
		PurchaseDate:   now,
		ExpirationDate: now.AddDate(0, 0, pkg.ValidityDays),
		Active:         true,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("package purchased",
		"user_package_id", created.ID,
		"user_id", userID,
		"package_id", packageID,
		"hours", created.InitialHours,
	)

	return created, nil
}

func (s *service) GetUserPackage(ctx context.Context, id int64) (*UserPackage, error) {
	up, err := s.repo.GetUserPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserPackageNotFound) {
			return nil, apperr.NotFound("user package not found with id: %d", id)
		}
		return nil, err
	}
	return up, nil
}

func (s *service) ListUserPackages(ctx context.Context, userID int64, activeOnly bool) ([]UserPackage, error) {
	return s.repo.ListByUser(ctx, userID, activeOnly)
}

func (s *service) BestAvailable(ctx context.Context, userID int64) (*UserPackage, error) {
	up, err := s.repo.BestAvailable(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, ErrNoAvailablePackage) {
			return nil, apperr.NotFound("no available package for user %d", userID)
		}
		return nil, err
	}
	return up, nil
}

func (s *service) Deduct(ctx context.Context, userPackageID int64, hours int) error {
	err := s.repo.DeductHours(ctx, userPackageID, hours, s.now())
	if err != nil {
		metrics.RecordPackageDeduction("failed")
		if errors.Is(err, ErrUserPackageNotFound) {
			return apperr.NotFound("user package not found with id: %d", userPackageID)
		}
		if errors.Is(err, ErrInsufficientHours) {
			return apperr.Conflict("package has insufficient hours or is expired")
		}
		return err
	}

	metrics.RecordPackageDeduction("ok")
	return nil
}

func (s *service) Refund(ctx context.Context, userPackageID int64, hours int) error {
	err := s.repo.RefundHours(ctx, userPackageID, hours, s.now())
	if err != nil {
		if errors.Is(err, ErrUserPackageNotFound) {
			return apperr.NotFound("user package not found with id: %d", userPackageID)
		}
		return err
	}

	logger.Info("package hours refunded", "user_package_id", userPackageID, "hours", hours)
	return nil
}

func (s *service) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireActive(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("expired packages deactivated", "count", count)
	}

	return count, nil
}
