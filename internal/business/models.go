// Package business owns the tenant accounts: profile, status and
// credentials of each business.
package business

import (
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusActive, StatusSuspended:
		return st, nil
	}
	return "", apperr.Validation("invalid business status %q", s)
}

type Business struct {
	ID                  string    `json:"id"`
	BusinessName        string    `json:"business_name"`
	BusinessEmail       string    `json:"business_email"`
	PasswordHash        string    `json:"-"`
	Phone               string    `json:"phone"`
	Logo                string    `json:"logo"`
	Description         string    `json:"description"`
	LocationLat         *float64  `json:"location_lat"`
	LocationLng         *float64  `json:"location_lng"`
	LocationAddress     string    `json:"location_address"`
	MpesaNumber         string    `json:"mpesa_number"`
	TillNumber          string    `json:"till_number"`
	PaybillNumber       string    `json:"paybill_number"`
	Status              Status    `json:"status"`
	ForcePasswordChange bool      `json:"force_password_change"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Summary is the account view returned on register and login.
type Summary struct {
	ID                  string `json:"id"`
	BusinessName        string `json:"business_name"`
	BusinessEmail       string `json:"business_email"`
	Status              Status `json:"status"`
	ForcePasswordChange bool   `json:"force_password_change"`
}

func (b Business) Summary() Summary {
	return Summary{
		ID:                  b.ID,
		BusinessName:        b.BusinessName,
		BusinessEmail:       b.BusinessEmail,
		Status:              b.Status,
		ForcePasswordChange: b.ForcePasswordChange,
	}
}

// ProfilePatch carries the self-service profile fields present in a PATCH.
type ProfilePatch struct {
	Phone           *string  `json:"phone"`
	Logo            *string  `json:"logo" validate:"omitempty,url"`
	Description     *string  `json:"description"`
	LocationLat     *float64 `json:"location_lat" validate:"omitempty,latitude"`
	LocationLng     *float64 `json:"location_lng" validate:"omitempty,longitude"`
	LocationAddress *string  `json:"location_address"`
	MpesaNumber     *string  `json:"mpesa_number"`
	TillNumber      *string  `json:"till_number"`
	PaybillNumber   *string  `json:"paybill_number"`
}

// Apply copies the present fields onto b.
func (p ProfilePatch) Apply(b *Business) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&b.Phone, p.Phone)
	set(&b.Logo, p.Logo)
	set(&b.Description, p.Description)
	set(&b.LocationAddress, p.LocationAddress)
	set(&b.MpesaNumber, p.MpesaNumber)
	set(&b.TillNumber, p.TillNumber)
	set(&b.PaybillNumber, p.PaybillNumber)
	if p.LocationLat != nil {
		b.LocationLat = p.LocationLat
	}
	if p.LocationLng != nil {
		b.LocationLng = p.LocationLng
	}
}

// Overview is one row of the admin business listing.
type Overview struct {
	Business
	ProductCount int `json:"product_count"`
	OrderCount   int `json:"order_count"`
}
