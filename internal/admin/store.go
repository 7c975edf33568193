package admin

import (
	"context"

	"github.com/dukapilot/biashara360/internal/marketplace"
)

type Store interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	Complaints(ctx context.Context) ([]ComplaintView, error)
	// UpdateComplaint leaves the resolution untouched when it is nil.
	UpdateComplaint(ctx context.Context, id string, status marketplace.ComplaintStatus, resolution *string) (marketplace.Complaint, error)
	Reviews(ctx context.Context) ([]ReviewView, error)
	SetReviewApproval(ctx context.Context, id string, approved bool) (marketplace.Review, error)
}
