package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementPurchase   MovementType = "PURCHASE"
	MovementSale       MovementType = "SALE"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

const (
	DefaultCategory = "Uncategorized"
	LowStockLevel   = 10
)

// BulkMarkup is applied to the derived unit cost of bulk onboarded items.
var BulkMarkup = decimal.RequireFromString("1.3")

type Product struct {
	ID                string          `json:"id"`
	BusinessID        string          `json:"business_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	QuantityBought    int             `json:"quantity_bought"`
	QuantitySold      int             `json:"quantity_sold"`
	QuantityRemaining int             `json:"quantity_remaining"`
	Images            []string        `json:"images"`
	IsPublished       bool            `json:"is_published"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Movement is one immutable row of the stock ledger.
type Movement struct {
	ID            string       `json:"id"`
	ProductID     string       `json:"product_id"`
	BusinessID    string       `json:"business_id"`
	Type          MovementType `json:"movement_type"`
	Quantity      int          `json:"quantity"`
	PreviousStock int          `json:"previous_stock"`
	NewStock      int          `json:"new_stock"`
	Notes         string       `json:"notes"`
	CreatedAt     time.Time    `json:"created_at"`
}

type ProductInput struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	Category       string          `json:"category" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	QuantityBought int             `json:"quantity_bought" validate:"gte=0"`
	Images         []string        `json:"images" validate:"omitempty,dive,required"`
	IsPublished    bool            `json:"is_published"`
}

// ProductPatch carries only the fields present in a PATCH body.
type ProductPatch struct {
	Name           *string          `json:"name" validate:"omitempty,min=1"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category" validate:"omitempty,min=1"`
	Price          *decimal.Decimal `json:"price"`
	Cost           *decimal.Decimal `json:"cost"`
	QuantityBought *int             `json:"quantity_bought" validate:"omitempty,gte=0"`
	Images         *[]string        `json:"images"`
	IsPublished    *bool            `json:"is_published"`
}

type BulkItem struct {
	Name           string          `json:"name" validate:"required"`
	QuantityBought int             `json:"quantity_bought" validate:"gt=0"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

type Filter struct {
	Category  string
	Search    string
	Published *bool
}

type ProductDetail struct {
	Product
	StockMovements []Movement `json:"stock_movements"`
}

type Summary struct {
	TotalProducts int             `json:"total_products"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStock      int             `json:"low_stock"`
	OutOfStock    int             `json:"out_of_stock"`
	Products      []Product       `json:"products"`
}
