package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/events"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service struct {
	Store  Store
	Events *events.Emitter
	// Redis backs idempotent creation and storefront invalidation; nil
	// disables both.
	Redis *redis.Client
}

func NewService(store Store, ev *events.Emitter, rdb *redis.Client) *Service {
	return &Service{Store: store, Events: ev, Redis: rdb}
}

// Create validates the cart against current stock and prices and stores a
// PENDING order. Stock is only debited on confirmation. A repeated
// idemKey returns the first order with existed set.
func (s *Service) Create(ctx context.Context, in CreateInput, idemKey string) (o Order, existed bool, err error) {
	if err := validateCreate(in); err != nil {
		return Order{}, false, err
	}

	var ikey string
	if idemKey != "" && s.Redis != nil {
		ikey = fmt.Sprintf(redisx.KeyIdemOrderCreate, in.BusinessID, idemKey)
		id, err := s.Redis.Get(ctx, ikey).Result()
		switch {
		case err == nil:
			prev, err := s.Store.GetOrder(ctx, in.BusinessID, id)
			if err == nil {
				return prev, true, nil
			}
			if !apperr.Is(err, apperr.KindNotFound) {
				return Order{}, false, err
			}
		case !errors.Is(err, redis.Nil):
			log.Warn().Err(err).Msg("idempotency lookup failed")
		}
	}

	need, ids := cartQuantities(in.Items)
	o = Order{
		ID:              uuid.NewString(),
		BusinessID:      in.BusinessID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		DeliveryType:    in.DeliveryType,
		DeliveryLat:     in.DeliveryLat,
		DeliveryLng:     in.DeliveryLng,
		DeliveryAddress: in.DeliveryAddress,
		Status:          StatusPending,
	}
	err = s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		products := make(map[string]inventory.Product, len(ids))
		for _, id := range ids {
			p, err := tx.LockProduct(ctx, in.BusinessID, id)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return apperr.NotFound("product %s not found", id)
				}
				return err
			}
			if need[id] > p.QuantityRemaining {
				return apperr.InsufficientStock(id, need[id], p.QuantityRemaining)
			}
			products[id] = p
		}

		o.TotalAmount = decimal.Zero
		o.Items = make([]Item, 0, len(in.Items))
		for _, it := range in.Items {
			p := products[it.ProductID]
			o.Items = append(o.Items, Item{
				ID:              uuid.NewString(),
				OrderID:         o.ID,
				ProductID:       p.ID,
				ProductName:     p.Name,
				Quantity:        it.Quantity,
				PriceAtPurchase: p.Price,
			})
			o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		return tx.InsertOrder(ctx, &o)
	})
	if err != nil {
		return Order{}, false, fmt.Errorf("create order: %w", err)
	}

	if ikey != "" {
		if err := s.Redis.Set(ctx, ikey, o.ID, redisx.TTLIdempotency).Err(); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("idempotency store failed")
		}
	}
	s.Events.Emit(ctx, events.TopicOrderCreated, events.EventOrderCreated, o.ID, createdPayload(o))
	return o, false, nil
}

func validateCreate(in CreateInput) error {
	switch {
	case in.BusinessID == "":
		return apperr.Validation("business_id is required")
	case strings.TrimSpace(in.CustomerName) == "":
		return apperr.Validation("customer_name is required")
	case strings.TrimSpace(in.CustomerPhone) == "":
		return apperr.Validation("customer_phone is required")
	case !in.DeliveryType.Valid():
		return apperr.Validation("delivery_type must be DELIVERY or PICKUP")
	case len(in.Items) == 0:
		return apperr.Validation("items must not be empty")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return apperr.Validation("item %d: product_id is required", i)
		}
		if it.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be greater than 0", i)
		}
	}
	return nil
}

// cartQuantities sums quantities per product. ids is sorted so concurrent
// transactions lock rows in the same order.
func cartQuantities(items []ItemInput) (map[string]int, []string) {
	need := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := need[it.ProductID]; !ok {
			ids = append(ids, it.ProductID)
		}
		need[it.ProductID] += it.Quantity
	}
	sort.Strings(ids)
	return need, ids
}

func (s *Service) List(ctx context.Context, businessID string, status string) ([]Order, error) {
	var st Status
	if status != "" {
		var err error
		if st, err = ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.Store.ListOrders(ctx, businessID, st)
}

func (s *Service) Get(ctx context.Context, businessID, id string) (Order, error) {
	return s.Store.GetOrder(ctx, businessID, id)
}

// UpdateStatus moves an order along the status table. Confirming a PENDING
// order debits every item in the same transaction; if any item cannot be
// covered nothing changes and the order stays PENDING.
func (s *Service) UpdateStatus(ctx context.Context, businessID, id string, status Status, mpesaCode string) (Order, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Order{}, err
	}
	var (
		out   Order
		from  Status
		moved []inventory.Movement
	)
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, businessID, id)
		if err != nil {
			return err
		}
		from = o.Status
		if !CanTransition(from, status) {
			return apperr.Validation("invalid transition from %s to %s", from, status)
		}

		moved = nil
		if from == StatusPending && status == StatusConfirmed {
			if moved, err = debitItems(ctx, tx, o); err != nil {
				return err
			}
		}

		o.Status = status
		if code := strings.TrimSpace(mpesaCode); code != "" {
			o.MpesaCode = code
			o.PaymentConfirmed = true
		}
		if err := tx.SaveStatus(ctx, &o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}

	s.Events.Emit(ctx, events.TopicOrderStatusChanged, events.EventOrderStatusChanged, out.ID, events.OrderStatusChangedPayload{
		OrderID:          out.ID,
		BusinessID:       out.BusinessID,
		From:             string(from),
		To:               string(out.Status),
		PaymentConfirmed: out.PaymentConfirmed,
	})
	inventory.PublishMovements(ctx, s.Events, moved)
	if len(moved) > 0 {
		business.InvalidateStorefront(ctx, s.Redis, out.BusinessID)
	}
	return out, nil
}

// debitItems applies one ledger sale per item, locking products in id order.
func debitItems(ctx context.Context, tx Tx, o Order) ([]inventory.Movement, error) {
	items := append([]Item(nil), o.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	note := "Order " + o.ID
	moved := make([]inventory.Movement, 0, len(items))
	for _, it := range items {
		p, err := tx.LockProduct(ctx, o.BusinessID, it.ProductID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("product %s no longer exists", it.ProductID)
			}
			return nil, err
		}
		m, err := inventory.Sale(&p, it.Quantity, note)
		if err != nil {
			return nil, err
		}
		if err := tx.SaveProduct(ctx, &p); err != nil {
			return nil, err
		}
		if err := tx.AppendMovement(ctx, m); err != nil {
			return nil, err
		}
		moved = append(moved, m)
	}
	return moved, nil
}

// Stats counts orders per status. Revenue excludes cancelled orders.
func (s *Service) Stats(ctx context.Context, businessID string) (Stats, error) {
	totals, err := s.Store.StatusTotals(ctx, businessID)
	if err != nil {
		return Stats{}, fmt.Errorf("order stats: %w", err)
	}
	return Tally(totals), nil
}

func Tally(totals []StatusTotal) Stats {
	st := Stats{TotalRevenue: decimal.Zero}
	for _, t := range totals {
		st.TotalOrders += t.Count
		switch t.Status {
		case StatusPending:
			st.Pending += t.Count
		case StatusConfirmed:
			st.Confirmed += t.Count
		case StatusShipped:
			st.Shipped += t.Count
		case StatusDelivered:
			st.Delivered += t.Count
		case StatusCancelled:
			st.Cancelled += t.Count
		}
		if t.Status != StatusCancelled {
			st.TotalRevenue = st.TotalRevenue.Add(t.Revenue)
		}
	}
	return st
}

func createdPayload(o Order) events.OrderCreatedPayload {
	items := make([]events.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderItem{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		})
	}
	return events.OrderCreatedPayload{
		OrderID:     o.ID,
		BusinessID:  o.BusinessID,
		Items:       items,
		TotalAmount: o.TotalAmount,
	}
}
