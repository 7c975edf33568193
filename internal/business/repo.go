package business

import (
	"context"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, business_name, business_email, password_hash, phone, logo, description,
	location_lat, location_lng, location_address, mpesa_number, till_number, paybill_number,
	status, force_password_change, created_at, updated_at`

func scan(r pgx.Row, extra ...any) (Business, error) {
	var b Business
	dest := []any{&b.ID, &b.BusinessName, &b.BusinessEmail, &b.PasswordHash, &b.Phone, &b.Logo,
		&b.Description, &b.LocationLat, &b.LocationLng, &b.LocationAddress, &b.MpesaNumber,
		&b.TillNumber, &b.PaybillNumber, &b.Status, &b.ForcePasswordChange, &b.CreatedAt, &b.UpdatedAt}
	err := r.Scan(append(dest, extra...)...)
	return b, err
}

// Repo is the Postgres Store.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, b *Business) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO businesses(id, business_name, business_email, password_hash, phone, status, force_password_change)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		b.ID, b.BusinessName, b.BusinessEmail, b.PasswordHash, b.Phone, string(b.Status), b.ForcePasswordChange,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return postgres.MapError(err, "business")
}

func (r *Repo) one(ctx context.Context, where string, arg any) (Business, error) {
	b, err := scan(r.DB.QueryRow(ctx, `SELECT `+columns+` FROM businesses WHERE `+where, arg))
	if err != nil {
		return Business{}, postgres.MapError(err, "business")
	}
	return b, nil
}

func (r *Repo) ByID(ctx context.Context, id string) (Business, error) {
	return r.one(ctx, `id=$1`, id)
}

func (r *Repo) ByName(ctx context.Context, name string) (Business, error) {
	return r.one(ctx, `business_name=$1`, name)
}

func (r *Repo) ByNameOrEmail(ctx context.Context, s string) (Business, error) {
	return r.one(ctx, `business_name=$1 OR business_email=$1 LIMIT 1`, s)
}

func (r *Repo) Save(ctx context.Context, b *Business) error {
	err := r.DB.QueryRow(ctx, `
		UPDATE businesses SET phone=$2, logo=$3, description=$4, location_lat=$5, location_lng=$6,
			location_address=$7, mpesa_number=$8, till_number=$9, paybill_number=$10, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		b.ID, b.Phone, b.Logo, b.Description, b.LocationLat, b.LocationLng,
		b.LocationAddress, b.MpesaNumber, b.TillNumber, b.PaybillNumber,
	).Scan(&b.UpdatedAt)
	return postgres.MapError(err, "business")
}

func (r *Repo) SetPassword(ctx context.Context, id, hash string, force bool) error {
	return r.exec(ctx, `UPDATE businesses SET password_hash=$2, force_password_change=$3, updated_at=now() WHERE id=$1`,
		id, hash, force)
}

func (r *Repo) SetStatus(ctx context.Context, id string, status Status) error {
	return r.exec(ctx, `UPDATE businesses SET status=$2, updated_at=now() WHERE id=$1`, id, string(status))
}

func (r *Repo) exec(ctx context.Context, sql string, args ...any) error {
	ct, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "business")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("business not found")
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]Overview, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+columns+`,
			(SELECT count(*) FROM products p WHERE p.business_id = b.id),
			(SELECT count(*) FROM orders o WHERE o.business_id = b.id)
		FROM businesses b ORDER BY created_at DESC`)
	if err != nil {
		return nil, postgres.MapError(err, "business")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Overview, error) {
		var o Overview
		b, err := scan(row, &o.ProductCount, &o.OrderCount)
		o.Business = b
		return o, err
	})
}
