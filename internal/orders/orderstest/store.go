// Package orderstest provides an in-memory orders.Store sharing product
// state with an inventorytest.Store.
package orderstest

import (
	"context"
	"sort"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/inventory/inventorytest"
	"github.com/dukapilot/biashara360/internal/orders"
	"github.com/shopspring/decimal"
)

// Store keeps orders under the inventory store's mutex so a transaction
// spanning both commits or discards them together.
type Store struct {
	Inv    *inventorytest.Store
	Orders map[string]orders.Order
}

func New(inv *inventorytest.Store) *Store {
	return &Store{Inv: inv, Orders: map[string]orders.Order{}}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	s.Inv.Mu.Lock()
	defer s.Inv.Mu.Unlock()

	tx := &Tx{Tx: s.Inv.Snapshot(), s: s, orders: make(map[string]orders.Order, len(s.Orders))}
	for k, v := range s.Orders {
		tx.orders[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.Inv.Apply(tx.Tx)
	s.Orders = tx.orders
	for _, o := range s.Orders {
		for _, it := range o.Items {
			s.Inv.Referenced[it.ProductID] = true
		}
	}
	return nil
}

func (s *Store) ListOrders(_ context.Context, businessID string, status orders.Status) ([]orders.Order, error) {
	s.Inv.Mu.Lock()
	defer s.Inv.Mu.Unlock()
	out := []orders.Order{}
	for _, o := range s.Orders {
		if o.BusinessID == businessID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetOrder(_ context.Context, businessID, id string) (orders.Order, error) {
	s.Inv.Mu.Lock()
	defer s.Inv.Mu.Unlock()
	o, ok := s.Orders[id]
	if !ok || o.BusinessID != businessID {
		return orders.Order{}, apperr.NotFound("order not found")
	}
	return o, nil
}

func (s *Store) StatusTotals(_ context.Context, businessID string) ([]orders.StatusTotal, error) {
	s.Inv.Mu.Lock()
	defer s.Inv.Mu.Unlock()
	by := map[orders.Status]*orders.StatusTotal{}
	for _, o := range s.Orders {
		if o.BusinessID != businessID {
			continue
		}
		t, ok := by[o.Status]
		if !ok {
			t = &orders.StatusTotal{Status: o.Status, Revenue: decimal.Zero}
			by[o.Status] = t
		}
		t.Count++
		t.Revenue = t.Revenue.Add(o.TotalAmount)
	}
	out := make([]orders.StatusTotal, 0, len(by))
	for _, t := range by {
		out = append(out, *t)
	}
	return out, nil
}

// Order returns the committed state of one order.
func (s *Store) Order(id string) orders.Order {
	s.Inv.Mu.Lock()
	defer s.Inv.Mu.Unlock()
	return s.Orders[id]
}

type Tx struct {
	*inventorytest.Tx
	s      *Store
	orders map[string]orders.Order
}

func (t *Tx) InsertOrder(_ context.Context, o *orders.Order) error {
	if _, ok := t.orders[o.ID]; ok {
		return apperr.Conflict("order already exists")
	}
	o.CreatedAt = t.s.Inv.Tick()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	t.orders[o.ID] = *o
	return nil
}

func (t *Tx) LockOrder(_ context.Context, businessID, id string) (orders.Order, error) {
	o, ok := t.orders[id]
	if !ok || o.BusinessID != businessID {
		return orders.Order{}, apperr.NotFound("order not found")
	}
	return o, nil
}

func (t *Tx) SaveStatus(_ context.Context, o *orders.Order) error {
	if _, ok := t.orders[o.ID]; !ok {
		return apperr.NotFound("order not found")
	}
	o.UpdatedAt = t.s.Inv.Tick()
	t.orders[o.ID] = *o
	return nil
}
