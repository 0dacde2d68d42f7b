package court

import "context"

type Repository interface {
	Create(ctx context.Context, c *Court) (*Court, error)
	GetByID(ctx context.Context, id int64) (*Court, error)
	GetAll(ctx context.Context) ([]Court, error)
	Update(ctx context.Context, c *Court) (*Court, error)
	Deactivate(ctx context.Context, id int64) error
}
