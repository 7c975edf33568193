package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryType string

const (
	DeliveryDelivery DeliveryType = "DELIVERY"
	DeliveryPickup   DeliveryType = "PICKUP"
)

func (d DeliveryType) Valid() bool { return d == DeliveryDelivery || d == DeliveryPickup }

type Order struct {
	ID               string          `json:"id"`
	BusinessID       string          `json:"business_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	CustomerEmail    string          `json:"customer_email"`
	DeliveryType     DeliveryType    `json:"delivery_type"`
	DeliveryLat      *float64        `json:"delivery_lat"`
	DeliveryLng      *float64        `json:"delivery_lng"`
	DeliveryAddress  string          `json:"delivery_address"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           Status          `json:"status"`
	MpesaCode        string          `json:"mpesa_code"`
	PaymentConfirmed bool            `json:"payment_confirmed"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []Item          `json:"items"`
}

type Item struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

type ItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type CreateInput struct {
	BusinessID      string       `json:"business_id" validate:"required"`
	CustomerName    string       `json:"customer_name" validate:"required"`
	CustomerPhone   string       `json:"customer_phone" validate:"required"`
	CustomerEmail   string       `json:"customer_email" validate:"omitempty,email"`
	DeliveryType    DeliveryType `json:"delivery_type" validate:"required,oneof=DELIVERY PICKUP"`
	DeliveryLat     *float64     `json:"delivery_lat" validate:"omitempty,latitude"`
	DeliveryLng     *float64     `json:"delivery_lng" validate:"omitempty,longitude"`
	DeliveryAddress string       `json:"delivery_address"`
	Items           []ItemInput  `json:"items" validate:"required,min=1,dive"`
}

// StatusTotal is one row of the per-status aggregate.
type StatusTotal struct {
	Status  Status
	Count   int
	Revenue decimal.Decimal
}

type Stats struct {
	TotalOrders  int             `json:"total_orders"`
	Pending      int             `json:"pending"`
	Confirmed    int             `json:"confirmed"`
	Shipped      int             `json:"shipped"`
	Delivered    int             `json:"delivered"`
	Cancelled    int             `json:"cancelled"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
