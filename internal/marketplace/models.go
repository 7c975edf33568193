// Package marketplace serves the public catalogue: cross-business product
// search ranked by distance, storefronts, reviews and complaints.
package marketplace

import (
	"time"

	"github.com/dukapilot/biashara360/internal/inventory"
)

// BusinessCard is the public face of a business shown next to its products.
type BusinessCard struct {
	ID              string   `json:"id"`
	BusinessName    string   `json:"business_name"`
	Description     string   `json:"description"`
	Logo            string   `json:"logo"`
	Phone           string   `json:"phone"`
	LocationLat     *float64 `json:"location_lat"`
	LocationLng     *float64 `json:"location_lng"`
	LocationAddress string   `json:"location_address"`
	MpesaNumber     string   `json:"mpesa_number"`
	TillNumber      string   `json:"till_number"`
	PaybillNumber   string   `json:"paybill_number"`
}

type Listing struct {
	inventory.Product
	Business BusinessCard `json:"business"`
	// Distance in km from the caller; nil when either side has no location.
	Distance *float64 `json:"distance"`
}

type Review struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "PENDING"
	ComplaintResolved ComplaintStatus = "RESOLVED"
)

type Complaint struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"business_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Description   string          `json:"description"`
	Status        ComplaintStatus `json:"status"`
	Resolution    string          `json:"resolution"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Storefront struct {
	Business     BusinessCard        `json:"business"`
	Products     []inventory.Product `json:"products"`
	Reviews      []Review            `json:"reviews"`
	AvgRating    float64             `json:"avg_rating"`
	TotalReviews int                 `json:"total_reviews"`
}

type ReviewInput struct {
	BusinessID   string `json:"business_id" validate:"required"`
	CustomerName string `json:"customer_name" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment"`
}

type ComplaintInput struct {
	BusinessID    string `json:"business_id" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	Description   string `json:"description" validate:"required"`
}

// Query filters the public listing. Lat and Lng are both set or both nil.
type Query struct {
	Search   string
	Category string
	Lat      *float64
	Lng      *float64
}
