package marketplace

import (
	"context"

	"github.com/dukapilot/biashara360/internal/inventory"
)

type Store interface {
	// Listings returns published in-stock products matching q, newest first.
	Listings(ctx context.Context, q Query) ([]Listing, error)
	Listing(ctx context.Context, productID string) (Listing, error)
	ActiveBusiness(ctx context.Context, id string) (BusinessCard, error)
	PublishedProducts(ctx context.Context, businessID string) ([]inventory.Product, error)
	// ApprovedReviews returns at most limit approved reviews, newest first.
	ApprovedReviews(ctx context.Context, businessID string, limit int) ([]Review, error)
	InsertReview(ctx context.Context, r *Review) error
	InsertComplaint(ctx context.Context, c *Complaint) error
}
