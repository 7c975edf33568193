package marketplace

import (
	"context"
	"fmt"

	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `p.id, p.business_id, p.name, p.description, p.category, p.price, p.cost,
	p.quantity_bought, p.quantity_sold, p.quantity_remaining, p.images, p.is_published, p.created_at, p.updated_at`

const cardColumns = `b.id, b.business_name, b.description, b.logo, b.phone, b.location_lat, b.location_lng,
	b.location_address, b.mpesa_number, b.till_number, b.paybill_number`

func productDest(p *inventory.Product) []any {
	return []any{&p.ID, &p.BusinessID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost,
		&p.QuantityBought, &p.QuantitySold, &p.QuantityRemaining, &p.Images, &p.IsPublished,
		&p.CreatedAt, &p.UpdatedAt}
}

func cardDest(b *BusinessCard) []any {
	return []any{&b.ID, &b.BusinessName, &b.Description, &b.Logo, &b.Phone, &b.LocationLat, &b.LocationLng,
		&b.LocationAddress, &b.MpesaNumber, &b.TillNumber, &b.PaybillNumber}
}

func scanListing(r pgx.Row) (Listing, error) {
	var l Listing
	err := r.Scan(append(productDest(&l.Product), cardDest(&l.Business)...)...)
	return l, err
}

// Repo is the Postgres Store.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Listings(ctx context.Context, q Query) ([]Listing, error) {
	sql := `SELECT ` + productColumns + `, ` + cardColumns + `
		FROM products p JOIN businesses b ON b.id = p.business_id
		WHERE p.is_published AND p.quantity_remaining > 0`
	var args []any
	if q.Category != "" {
		args = append(args, q.Category)
		sql += fmt.Sprintf(" AND p.category=$%d", len(args))
	}
	if q.Search != "" {
		args = append(args, postgres.ContainsPattern(q.Search))
		sql += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	sql += " ORDER BY p.created_at DESC"

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "product")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Listing, error) { return scanListing(row) })
}

func (r *Repo) Listing(ctx context.Context, productID string) (Listing, error) {
	l, err := scanListing(r.DB.QueryRow(ctx, `SELECT `+productColumns+`, `+cardColumns+`
		FROM products p JOIN businesses b ON b.id = p.business_id
		WHERE p.id=$1 AND p.is_published`, productID))
	if err != nil {
		return Listing{}, postgres.MapError(err, "product")
	}
	return l, nil
}

func (r *Repo) ActiveBusiness(ctx context.Context, id string) (BusinessCard, error) {
	var b BusinessCard
	err := r.DB.QueryRow(ctx, `SELECT `+cardColumns+` FROM businesses b WHERE b.id=$1 AND b.status='ACTIVE'`, id).
		Scan(cardDest(&b)...)
	if err != nil {
		return BusinessCard{}, postgres.MapError(err, "business")
	}
	return b, nil
}

func (r *Repo) PublishedProducts(ctx context.Context, businessID string) ([]inventory.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products p
		WHERE p.business_id=$1 AND p.is_published ORDER BY p.created_at DESC`, businessID)
	if err != nil {
		return nil, postgres.MapError(err, "product")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Product, error) {
		var p inventory.Product
		err := row.Scan(productDest(&p)...)
		return p, err
	})
}

const reviewColumns = `id, business_id, customer_name, rating, comment, is_approved, created_at`

func ScanReview(r pgx.Row) (Review, error) {
	var v Review
	err := r.Scan(&v.ID, &v.BusinessID, &v.CustomerName, &v.Rating, &v.Comment, &v.IsApproved, &v.CreatedAt)
	return v, err
}

func (r *Repo) ApprovedReviews(ctx context.Context, businessID string, limit int) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE business_id=$1 AND is_approved ORDER BY created_at DESC LIMIT $2`, businessID, limit)
	if err != nil {
		return nil, postgres.MapError(err, "review")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Review, error) { return ScanReview(row) })
}

func (r *Repo) InsertReview(ctx context.Context, v *Review) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO reviews(id, business_id, customer_name, rating, comment, is_approved)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at`,
		v.ID, v.BusinessID, v.CustomerName, v.Rating, v.Comment, v.IsApproved,
	).Scan(&v.CreatedAt)
	return postgres.MapError(err, "review")
}

func (r *Repo) InsertComplaint(ctx context.Context, c *Complaint) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO complaints(id, business_id, customer_name, customer_email, description, status)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at, updated_at`,
		c.ID, c.BusinessID, c.CustomerName, c.CustomerEmail, c.Description, string(c.Status),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return postgres.MapError(err, "complaint")
}
