package prepaid

import (
	"context"
	"time"
)

type Repository interface {
	CreatePackage(ctx context.Context, p *Package) (*Package, error)
	GetPackageByID(ctx context.Context, id int64) (*Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]Package, error)

	CreateUserPackage(ctx context.Context, up *UserPackage) (*UserPackage, error)
	GetUserPackageByID(ctx context.Context, id int64) (*UserPackage, error)
	ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]UserPackage, error)
	BestAvailable(ctx context.Context, userID int64, now time.Time) (*UserPackage, error)

	DeductHours(ctx context.Context, id int64, hours int, now time.Time) error
	RefundHours(ctx context.Context, id int64, hours int, now time.Time) error
	ExpireActive(ctx context.Context, now time.Time) (int64, error)
}
