package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/events"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const recentMovementLimit = 10

type Service struct {
	Store  Store
	Events *events.Emitter
	Alerts *LowStockSet
	// Redis holds the storefront caches dropped after product changes.
	Redis *redis.Client
}

func NewService(store Store, ev *events.Emitter, alerts *LowStockSet, rdb *redis.Client) *Service {
	return &Service{Store: store, Events: ev, Alerts: alerts, Redis: rdb}
}

func (s *Service) CreateProduct(ctx context.Context, businessID string, in ProductInput) (Product, error) {
	if err := validateInput(in); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Cost:        in.Cost,
		Images:      in.Images,
		IsPublished: in.IsPublished,
	}

	var moved []Movement
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		ms, err := insertWithStock(ctx, tx, &p, in.QuantityBought, "Initial stock purchase")
		moved = ms
		return err
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	PublishMovements(ctx, s.Events, moved)
	business.InvalidateStorefront(ctx, s.Redis, businessID)
	return p, nil
}

// BulkOnboard creates all items in one transaction; the first failing item
// aborts the whole batch.
func (s *Service) BulkOnboard(ctx context.Context, businessID string, items []BulkItem) ([]Product, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}
	products := make([]Product, 0, len(items))
	for i, it := range items {
		p, err := bulkProduct(businessID, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		products = append(products, p)
	}

	var moved []Movement
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		moved = moved[:0]
		for i := range products {
			ms, err := insertWithStock(ctx, tx, &products[i], items[i].QuantityBought, "Bulk onboard")
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			moved = append(moved, ms...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk onboard: %w", err)
	}
	PublishMovements(ctx, s.Events, moved)
	business.InvalidateStorefront(ctx, s.Redis, businessID)
	return products, nil
}

// bulkProduct derives unit economics: cost = total/qty, price = cost*1.3.
func bulkProduct(businessID string, it BulkItem) (Product, error) {
	if strings.TrimSpace(it.Name) == "" {
		return Product{}, apperr.Validation("name is required")
	}
	if it.QuantityBought <= 0 {
		return Product{}, apperr.Validation("quantity_bought must be greater than 0")
	}
	if it.TotalCost.IsNegative() {
		return Product{}, apperr.Validation("total_cost cannot be negative")
	}
	unitCost := it.TotalCost.Div(decimal.NewFromInt(int64(it.QuantityBought)))
	return Product{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Name:       strings.TrimSpace(it.Name),
		Category:   DefaultCategory,
		Cost:       unitCost.Round(2),
		Price:      unitCost.Mul(BulkMarkup).Round(2),
		Images:     []string{},
	}, nil
}

func insertWithStock(ctx context.Context, tx Tx, p *Product, qty int, note string) ([]Movement, error) {
	var ms []Movement
	if qty > 0 {
		m, err := Purchase(p, qty, note)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if err := tx.InsertProduct(ctx, p); err != nil {
		return nil, err
	}
	for _, m := range ms {
		if err := tx.AppendMovement(ctx, m); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func (s *Service) ListProducts(ctx context.Context, businessID string, f Filter) ([]Product, error) {
	return s.Store.ListProducts(ctx, businessID, f)
}

func (s *Service) GetProduct(ctx context.Context, businessID, id string) (ProductDetail, error) {
	p, err := s.Store.GetProduct(ctx, businessID, id)
	if err != nil {
		return ProductDetail{}, err
	}
	ms, err := s.Store.RecentMovements(ctx, id, recentMovementLimit)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{Product: p, StockMovements: ms}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, businessID, id string, patch ProductPatch) (Product, error) {
	var (
		out   Product
		moved []Movement
	)
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.LockProduct(ctx, businessID, id)
		if err != nil {
			return err
		}
		if err := applyPatch(&p, patch); err != nil {
			return err
		}
		moved = nil
		if patch.QuantityBought != nil {
			m, ok, err := Adjust(&p, *patch.QuantityBought)
			if err != nil {
				return err
			}
			if ok {
				if err := tx.AppendMovement(ctx, m); err != nil {
					return err
				}
				moved = append(moved, m)
			}
		}
		if err := tx.SaveProduct(ctx, &p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	PublishMovements(ctx, s.Events, moved)
	business.InvalidateStorefront(ctx, s.Redis, businessID)
	return out, nil
}

func applyPatch(p *Product, patch ProductPatch) error {
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return apperr.Validation("name cannot be empty")
		}
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return apperr.Validation("category cannot be empty")
		}
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return apperr.Validation("price cannot be negative")
		}
		p.Price = *patch.Price
	}
	if patch.Cost != nil {
		if patch.Cost.IsNegative() {
			return apperr.Validation("cost cannot be negative")
		}
		p.Cost = *patch.Cost
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.IsPublished != nil {
		p.IsPublished = *patch.IsPublished
	}
	return nil
}

func (s *Service) RecordSale(ctx context.Context, businessID, id string, qty int, notes string) (Product, error) {
	if qty <= 0 {
		return Product{}, apperr.Validation("quantity must be greater than 0")
	}
	var (
		out Product
		m   Movement
	)
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.LockProduct(ctx, businessID, id)
		if err != nil {
			return err
		}
		if m, err = Sale(&p, qty, notes); err != nil {
			return err
		}
		if err := tx.SaveProduct(ctx, &p); err != nil {
			return err
		}
		if err := tx.AppendMovement(ctx, m); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("record sale: %w", err)
	}
	PublishMovements(ctx, s.Events, []Movement{m})
	business.InvalidateStorefront(ctx, s.Redis, businessID)
	return out, nil
}

func (s *Service) DeleteProduct(ctx context.Context, businessID, id string) error {
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteProduct(ctx, businessID, id)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	business.InvalidateStorefront(ctx, s.Redis, businessID)
	if s.Alerts != nil {
		if err := s.Alerts.Remove(ctx, businessID, id); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("low stock cleanup failed")
		}
	}
	return nil
}

func (s *Service) InventorySummary(ctx context.Context, businessID string) (Summary, error) {
	products, err := s.Store.ListProducts(ctx, businessID, Filter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(products), nil
}

// Summarize values stock at cost and counts low/out-of-stock products.
func Summarize(products []Product) Summary {
	sum := Summary{TotalProducts: len(products), TotalValue: decimal.Zero, Products: products}
	for _, p := range products {
		sum.TotalValue = sum.TotalValue.Add(p.Cost.Mul(decimal.NewFromInt(int64(p.QuantityRemaining))))
		if p.QuantityRemaining < LowStockLevel {
			sum.LowStock++
		}
		if p.QuantityRemaining == 0 {
			sum.OutOfStock++
		}
	}
	return sum
}

func (s *Service) Categories(ctx context.Context, businessID string) ([]string, error) {
	return s.Store.Categories(ctx, businessID)
}

// LowStock lists the products the stock watcher has flagged.
func (s *Service) LowStock(ctx context.Context, businessID string) ([]Product, error) {
	if s.Alerts == nil {
		return []Product{}, nil
	}
	ids, err := s.Alerts.Members(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("low stock set: %w", err)
	}
	return s.Store.ProductsByIDs(ctx, businessID, ids)
}

func validateInput(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("name is required")
	case strings.TrimSpace(in.Category) == "":
		return apperr.Validation("category is required")
	case in.Price.IsNegative() || in.Cost.IsNegative():
		return apperr.Validation("price and cost cannot be negative")
	case in.QuantityBought < 0:
		return apperr.Validation("quantity_bought cannot be negative")
	}
	return nil
}

// PublishMovements emits one StockMoved event per committed movement.
func PublishMovements(ctx context.Context, e *events.Emitter, ms []Movement) {
	for _, m := range ms {
		e.Emit(ctx, events.TopicStockMoved, events.EventStockMoved, m.ProductID, events.StockMovedPayload{
			MovementID:    m.ID,
			ProductID:     m.ProductID,
			BusinessID:    m.BusinessID,
			MovementType:  string(m.Type),
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Notes:         m.Notes,
		})
	}
}
