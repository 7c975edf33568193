package inventory

import "context"

// Tx is the set of writes the ledger performs inside one transaction.
// LockProduct must hold the row until the transaction ends.
type Tx interface {
	InsertProduct(ctx context.Context, p *Product) error
	LockProduct(ctx context.Context, businessID, id string) (Product, error)
	SaveProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, businessID, id string) error
	AppendMovement(ctx context.Context, m Movement) error
}

type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	ListProducts(ctx context.Context, businessID string, f Filter) ([]Product, error)
	GetProduct(ctx context.Context, businessID, id string) (Product, error)
	ProductsByIDs(ctx context.Context, businessID string, ids []string) ([]Product, error)
	RecentMovements(ctx context.Context, productID string, limit int) ([]Movement, error)
	Categories(ctx context.Context, businessID string) ([]string, error)
}
