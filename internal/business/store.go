package business

import "context"

type Store interface {
	Create(ctx context.Context, b *Business) error
	ByID(ctx context.Context, id string) (Business, error)
	ByName(ctx context.Context, name string) (Business, error)
	// ByNameOrEmail matches either column exactly.
	ByNameOrEmail(ctx context.Context, s string) (Business, error)
	Save(ctx context.Context, b *Business) error
	SetPassword(ctx context.Context, id, hash string, force bool) error
	SetStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context) ([]Overview, error)
}
