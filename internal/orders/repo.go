package orders

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, business_id, customer_name, customer_phone, customer_email, delivery_type,
	delivery_lat, delivery_lng, delivery_address, total_amount, status, mpesa_code,
	payment_confirmed, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanOrder(r pgx.Row) (Order, error) {
	var o Order
	err := r.Scan(&o.ID, &o.BusinessID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.DeliveryType, &o.DeliveryLat, &o.DeliveryLng, &o.DeliveryAddress, &o.TotalAmount,
		&o.Status, &o.MpesaCode, &o.PaymentConfirmed, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// loadItems fills Items of every order in list with one query.
func loadItems(ctx context.Context, q querier, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	idx := make(map[string]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		idx[list[i].ID] = i
		list[i].Items = []Item{}
	}
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price_at_purchase
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id::text = ANY($1)
		ORDER BY oi.order_id, oi.position`, ids)
	if err != nil {
		return postgres.MapError(err, "order item")
	}
	items, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Item, error) {
		var it Item
		err := r.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtPurchase)
		return it, err
	})
	if err != nil {
		return err
	}
	for _, it := range items {
		o := &list[idx[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return nil
}

func getOrder(ctx context.Context, q querier, businessID, id string, lock bool) (Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 AND business_id=$2`
	if lock {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, id, businessID))
	if err != nil {
		return Order{}, postgres.MapError(err, "order")
	}
	one := []Order{o}
	if err := loadItems(ctx, q, one); err != nil {
		return Order{}, err
	}
	return one[0], nil
}

// Repo is the Postgres Store.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(ctx, &PGTx{PGTx: &inventory.PGTx{Tx: tx}})
	})
}

func (r *Repo) ListOrders(ctx context.Context, businessID string, status Status) ([]Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE business_id=$1`
	args := []any{businessID}
	if status != "" {
		args = append(args, string(status))
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, postgres.MapError(err, "order")
	}
	out, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Order, error) { return scanOrder(r) })
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, r.DB, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetOrder(ctx context.Context, businessID, id string) (Order, error) {
	return getOrder(ctx, r.DB, businessID, id, false)
}

func (r *Repo) StatusTotals(ctx context.Context, businessID string) ([]StatusTotal, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT status, count(*), COALESCE(sum(total_amount), 0)
		FROM orders WHERE business_id=$1 GROUP BY status`, businessID)
	if err != nil {
		return nil, postgres.MapError(err, "order")
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (StatusTotal, error) {
		var st StatusTotal
		err := r.Scan(&st.Status, &st.Count, &st.Revenue)
		return st, err
	})
}

// PGTx adds order statements to the inventory transaction.
type PGTx struct{ *inventory.PGTx }

func (t *PGTx) InsertOrder(ctx context.Context, o *Order) error {
	err := t.Tx.QueryRow(ctx, `
		INSERT INTO orders(id, business_id, customer_name, customer_phone, customer_email,
			delivery_type, delivery_lat, delivery_lng, delivery_address, total_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		o.ID, o.BusinessID, o.CustomerName, o.CustomerPhone, o.CustomerEmail,
		string(o.DeliveryType), o.DeliveryLat, o.DeliveryLng, o.DeliveryAddress, o.TotalAmount, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, "order")
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		if _, err := t.Tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, position, quantity, price_at_purchase)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, o.ID, it.ProductID, i, it.Quantity, it.PriceAtPurchase,
		); err != nil {
			return postgres.MapError(err, "order item")
		}
	}
	return nil
}

func (t *PGTx) LockOrder(ctx context.Context, businessID, id string) (Order, error) {
	return getOrder(ctx, t.Tx, businessID, id, true)
}

func (t *PGTx) SaveStatus(ctx context.Context, o *Order) error {
	err := t.Tx.QueryRow(ctx, `
		UPDATE orders SET status=$3, mpesa_code=$4, payment_confirmed=$5, updated_at=now()
		WHERE id=$1 AND business_id=$2
		RETURNING updated_at`,
		o.ID, o.BusinessID, string(o.Status), o.MpesaCode, o.PaymentConfirmed,
	).Scan(&o.UpdatedAt)
	return postgres.MapError(err, "order")
}
