package orders

import (
	"context"

	"github.com/dukapilot/biashara360/internal/inventory"
)

// Tx extends the inventory transaction so a confirmation can debit stock
// and change the order status atomically.
type Tx interface {
	inventory.Tx
	InsertOrder(ctx context.Context, o *Order) error
	LockOrder(ctx context.Context, businessID, id string) (Order, error)
	SaveStatus(ctx context.Context, o *Order) error
}

type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ListOrders(ctx context.Context, businessID string, status Status) ([]Order, error)
	GetOrder(ctx context.Context, businessID, id string) (Order, error)
	StatusTotals(ctx context.Context, businessID string) ([]StatusTotal, error)
}
