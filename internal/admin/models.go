// Package admin is the platform operator's reporting and moderation surface.
package admin

import "github.com/dukapilot/biashara360/internal/marketplace"

type Dashboard struct {
	TotalBusinesses     int `json:"total_businesses"`
	ActiveBusinesses    int `json:"active_businesses"`
	SuspendedBusinesses int `json:"suspended_businesses"`
	TotalProducts       int `json:"total_products"`
	TotalOrders         int `json:"total_orders"`
	PendingComplaints   int `json:"pending_complaints"`
}

type ComplaintView struct {
	marketplace.Complaint
	BusinessName  string `json:"business_name"`
	BusinessEmail string `json:"business_email"`
}

type ReviewView struct {
	marketplace.Review
	BusinessName string `json:"business_name"`
}

type ComplaintUpdate struct {
	Status     string  `json:"status" validate:"required,oneof=PENDING RESOLVED"`
	Resolution *string `json:"resolution"`
}
