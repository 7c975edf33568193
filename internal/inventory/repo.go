package inventory

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, business_id, name, description, category, price, cost,
	quantity_bought, quantity_sold, quantity_remaining, images, is_published, created_at, updated_at`

const movementColumns = `id, product_id, business_id, movement_type, quantity,
	previous_stock, new_stock, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (Product, error) {
	var p Product
	err := r.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost,
		&p.QuantityBought, &p.QuantitySold, &p.QuantityRemaining, &p.Images, &p.IsPublished,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanMovement(r rowScanner) (Movement, error) {
	var m Movement
	err := r.Scan(&m.ID, &m.ProductID, &m.BusinessID, &m.Type, &m.Quantity,
		&m.PreviousStock, &m.NewStock, &m.Notes, &m.CreatedAt)
	return m, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Product, error) { return scanProduct(r) })
}

// Repo is the Postgres Store.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(ctx, &PGTx{Tx: tx})
	})
}

func (r *Repo) ListProducts(ctx context.Context, businessID string, f Filter) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE business_id=$1`
	args := []any{businessID}
	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(" AND category=$%d", len(args))
	}
	if f.Published != nil {
		args = append(args, *f.Published)
		q += fmt.Sprintf(" AND is_published=$%d", len(args))
	}
	if f.Search != "" {
		args = append(args, postgres.ContainsPattern(f.Search))
		q += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, postgres.MapError(err, "product")
	}
	return collectProducts(rows)
}

func (r *Repo) GetProduct(ctx context.Context, businessID, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 AND business_id=$2`, id, businessID)
	p, err := scanProduct(row)
	if err != nil {
		return Product{}, postgres.MapError(err, "product")
	}
	return p, nil
}

func (r *Repo) ProductsByIDs(ctx context.Context, businessID string, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products
		WHERE business_id=$1 AND id::text = ANY($2) ORDER BY quantity_remaining, name`, businessID, ids)
	if err != nil {
		return nil, postgres.MapError(err, "product")
	}
	return collectProducts(rows)
}

func (r *Repo) RecentMovements(ctx context.Context, productID string, limit int) ([]Movement, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id=$1 ORDER BY created_at DESC LIMIT $2`, productID, limit)
	if err != nil {
		return nil, postgres.MapError(err, "stock movement")
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Movement, error) { return scanMovement(r) })
}

func (r *Repo) Categories(ctx context.Context, businessID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT category FROM products WHERE business_id=$1 ORDER BY category`, businessID)
	if err != nil {
		return nil, postgres.MapError(err, "product")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// PGTx implements Tx on a pgx transaction. The order workflow embeds it so
// a confirmation debits stock in the same transaction as its status change.
type PGTx struct{ Tx pgx.Tx }

func (t *PGTx) InsertProduct(ctx context.Context, p *Product) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	err := t.Tx.QueryRow(ctx, `
		INSERT INTO products(id, business_id, name, description, category, price, cost,
			quantity_bought, quantity_sold, quantity_remaining, images, is_published)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		p.ID, p.BusinessID, p.Name, p.Description, p.Category, p.Price, p.Cost,
		p.QuantityBought, p.QuantitySold, p.QuantityRemaining, p.Images, p.IsPublished,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return postgres.MapError(err, "product")
}

func (t *PGTx) LockProduct(ctx context.Context, businessID, id string) (Product, error) {
	row := t.Tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products
		WHERE id=$1 AND business_id=$2 FOR UPDATE`, id, businessID)
	p, err := scanProduct(row)
	if err != nil {
		return Product{}, postgres.MapError(err, "product")
	}
	return p, nil
}

func (t *PGTx) SaveProduct(ctx context.Context, p *Product) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	err := t.Tx.QueryRow(ctx, `
		UPDATE products SET name=$3, description=$4, category=$5, price=$6, cost=$7,
			quantity_bought=$8, quantity_sold=$9, quantity_remaining=$10, images=$11,
			is_published=$12, updated_at=now()
		WHERE id=$1 AND business_id=$2
		RETURNING updated_at`,
		p.ID, p.BusinessID, p.Name, p.Description, p.Category, p.Price, p.Cost,
		p.QuantityBought, p.QuantitySold, p.QuantityRemaining, p.Images, p.IsPublished,
	).Scan(&p.UpdatedAt)
	return postgres.MapError(err, "product")
}

func (t *PGTx) DeleteProduct(ctx context.Context, businessID, id string) error {
	ct, err := t.Tx.Exec(ctx, `DELETE FROM products WHERE id=$1 AND business_id=$2`, id, businessID)
	if err != nil {
		return postgres.MapError(err, "product")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (t *PGTx) AppendMovement(ctx context.Context, m Movement) error {
	_, err := t.Tx.Exec(ctx, `
		INSERT INTO stock_movements(id, product_id, business_id, movement_type, quantity,
			previous_stock, new_stock, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.ProductID, m.BusinessID, string(m.Type), m.Quantity,
		m.PreviousStock, m.NewStock, m.Notes, m.CreatedAt,
	)
	return postgres.MapError(err, "stock movement")
}
