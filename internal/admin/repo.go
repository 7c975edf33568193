package admin

import (
	"context"

	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/dukapilot/biashara360/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres Store.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	err := r.DB.QueryRow(ctx, `SELECT
			(SELECT count(*) FROM businesses),
			(SELECT count(*) FROM businesses WHERE status='ACTIVE'),
			(SELECT count(*) FROM businesses WHERE status='SUSPENDED'),
			(SELECT count(*) FROM products),
			(SELECT count(*) FROM orders),
			(SELECT count(*) FROM complaints WHERE status='PENDING')`).
		Scan(&d.TotalBusinesses, &d.ActiveBusinesses, &d.SuspendedBusinesses,
			&d.TotalProducts, &d.TotalOrders, &d.PendingComplaints)
	if err != nil {
		return Dashboard{}, postgres.MapError(err, "dashboard")
	}
	return d, nil
}

const complaintColumns = `c.id, c.business_id, c.customer_name, c.customer_email, c.description,
	c.status, c.resolution, c.created_at, c.updated_at`

func complaintDest(c *marketplace.Complaint) []any {
	return []any{&c.ID, &c.BusinessID, &c.CustomerName, &c.CustomerEmail, &c.Description,
		&c.Status, &c.Resolution, &c.CreatedAt, &c.UpdatedAt}
}

func (r *Repo) Complaints(ctx context.Context) ([]ComplaintView, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+complaintColumns+`, b.business_name, b.business_email
		FROM complaints c JOIN businesses b ON b.id = c.business_id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, postgres.MapError(err, "complaint")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ComplaintView, error) {
		var v ComplaintView
		err := row.Scan(append(complaintDest(&v.Complaint), &v.BusinessName, &v.BusinessEmail)...)
		return v, err
	})
}

func (r *Repo) UpdateComplaint(ctx context.Context, id string, status marketplace.ComplaintStatus, resolution *string) (marketplace.Complaint, error) {
	var c marketplace.Complaint
	err := r.DB.QueryRow(ctx, `
		UPDATE complaints c SET status=$2, resolution=COALESCE($3, c.resolution), updated_at=now()
		WHERE c.id=$1
		RETURNING `+complaintColumns, id, string(status), resolution).
		Scan(complaintDest(&c)...)
	if err != nil {
		return marketplace.Complaint{}, postgres.MapError(err, "complaint")
	}
	return c, nil
}

func (r *Repo) Reviews(ctx context.Context) ([]ReviewView, error) {
	rows, err := r.DB.Query(ctx, `SELECT r.id, r.business_id, r.customer_name, r.rating, r.comment,
			r.is_approved, r.created_at, b.business_name
		FROM reviews r JOIN businesses b ON b.id = r.business_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, postgres.MapError(err, "review")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ReviewView, error) {
		var v ReviewView
		err := row.Scan(&v.ID, &v.BusinessID, &v.CustomerName, &v.Rating, &v.Comment,
			&v.IsApproved, &v.CreatedAt, &v.BusinessName)
		return v, err
	})
}

func (r *Repo) SetReviewApproval(ctx context.Context, id string, approved bool) (marketplace.Review, error) {
	v, err := marketplace.ScanReview(r.DB.QueryRow(ctx, `
		UPDATE reviews SET is_approved=$2 WHERE id=$1
		RETURNING id, business_id, customer_name, rating, comment, is_approved, created_at`, id, approved))
	if err != nil {
		return marketplace.Review{}, postgres.MapError(err, "review")
	}
	return v, nil
}
