package orders_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/events"
	"github.com/dukapilot/biashara360/internal/events/eventstest"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/inventory/inventorytest"
	"github.com/dukapilot/biashara360/internal/orders"
	"github.com/dukapilot/biashara360/internal/orders/orderstest"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const biz = "biz-1"

type fixture struct {
	inv    *inventorytest.Store
	store  *orderstest.Store
	svc    *orders.Service
	events *eventstest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inv := inventorytest.New()
	store := orderstest.New(inv)
	ev, rec := eventstest.Emitter()
	return &fixture{inv: inv, store: store, svc: orders.NewService(store, ev, nil), events: rec}
}

func (f *fixture) seed(id string, price string, stock int) {
	f.inv.Seed(inventory.Product{
		ID: id, BusinessID: biz, Name: "Product " + id, Category: "General",
		Price: decimal.RequireFromString(price), QuantityBought: stock, QuantityRemaining: stock,
	})
}

func cart(items ...orders.ItemInput) orders.CreateInput {
	return orders.CreateInput{
		BusinessID:    biz,
		CustomerName:  "Amina",
		CustomerPhone: "0712345678",
		DeliveryType:  orders.DeliveryPickup,
		Items:         items,
	}
}

func TestCreateThenConfirmDebitsStock(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "100", 5)
	ctx := context.Background()

	o, existed, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 3}), "")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.True(t, decimal.NewFromInt(300).Equal(o.TotalAmount), o.TotalAmount.String())
	require.Len(t, o.Items, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(o.Items[0].PriceAtPurchase))
	assert.Equal(t, "Product p1", o.Items[0].ProductName)
	assert.Equal(t, 5, f.inv.Product("p1").QuantityRemaining, "creation must not touch stock")
	assert.Empty(t, f.inv.MovementsOf("p1"))

	confirmed, err := f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, confirmed.Status)

	p := f.inv.Product("p1")
	assert.Equal(t, 2, p.QuantityRemaining)
	assert.Equal(t, 3, p.QuantitySold)
	ms := f.inv.MovementsOf("p1")
	require.Len(t, ms, 1)
	assert.Equal(t, inventory.MovementSale, ms[0].Type)
	assert.Equal(t, 3, ms[0].Quantity)
	assert.Equal(t, 5, ms[0].PreviousStock)
	assert.Equal(t, 2, ms[0].NewStock)
	assert.Equal(t, "Order "+o.ID, ms[0].Notes)

	created := eventstest.Of[events.OrderCreatedPayload](f.events, events.TopicOrderCreated)
	require.Len(t, created, 1)
	assert.Equal(t, o.ID, created[0].OrderID)
	changed := eventstest.Of[events.OrderStatusChangedPayload](f.events, events.TopicOrderStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "PENDING", changed[0].From)
	assert.Equal(t, "CONFIRMED", changed[0].To)
	assert.Len(t, eventstest.Of[events.StockMovedPayload](f.events, events.TopicStockMoved), 1)
}

func TestCreateChecksSummedQuantity(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 5)

	_, _, err := f.svc.Create(context.Background(), cart(
		orders.ItemInput{ProductID: "p1", Quantity: 3},
		orders.ItemInput{ProductID: "p1", Quantity: 3},
	), "")
	require.True(t, apperr.Is(err, apperr.KindInsufficientStock))

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.StockShortage{ProductID: "p1", Required: 6, Available: 5}, e.Details)
	assert.Empty(t, f.store.Orders)
}

func TestCreateRejectsUnknownOrForeignProduct(t *testing.T) {
	f := newFixture(t)
	f.inv.Seed(inventory.Product{ID: "foreign", BusinessID: "other", QuantityBought: 9, QuantityRemaining: 9})

	_, _, err := f.svc.Create(context.Background(), cart(orders.ItemInput{ProductID: "missing", Quantity: 1}), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, _, err = f.svc.Create(context.Background(), cart(orders.ItemInput{ProductID: "foreign", Quantity: 1}), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 5)

	tests := map[string]func(in *orders.CreateInput){
		"no items":      func(in *orders.CreateInput) { in.Items = nil },
		"zero quantity": func(in *orders.CreateInput) { in.Items[0].Quantity = 0 },
		"bad delivery":  func(in *orders.CreateInput) { in.DeliveryType = "COURIER" },
		"no customer":   func(in *orders.CreateInput) { in.CustomerName = " " },
		"no phone":      func(in *orders.CreateInput) { in.CustomerPhone = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := cart(orders.ItemInput{ProductID: "p1", Quantity: 1})
			mutate(&in)
			_, _, err := f.svc.Create(context.Background(), in, "")
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)
		})
	}
}

func TestConfirmFailureLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	f.seed("a", "10", 5)
	f.seed("b", "20", 5)
	ctx := context.Background()

	o, _, err := f.svc.Create(ctx, cart(
		orders.ItemInput{ProductID: "a", Quantity: 2},
		orders.ItemInput{ProductID: "b", Quantity: 4},
	), "")
	require.NoError(t, err)

	// stock of b drops after the order was placed
	_, err = inventory.NewService(f.inv, nil, nil, nil).RecordSale(ctx, biz, "b", 3, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusConfirmed, "ABC123")
	require.True(t, apperr.Is(err, apperr.KindInsufficientStock))

	got := f.store.Order(o.ID)
	assert.Equal(t, orders.StatusPending, got.Status)
	assert.False(t, got.PaymentConfirmed)
	assert.Equal(t, 5, f.inv.Product("a").QuantityRemaining)
	assert.Empty(t, f.inv.MovementsOf("a"))
	assert.Len(t, f.inv.MovementsOf("b"), 1)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 5)
	ctx := context.Background()

	o, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 1}), "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusDelivered, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateStatus(ctx, biz, o.ID, orders.Status("LOST"), "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	paid, err := f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusPending, "QWE12RTY")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, paid.Status)
	assert.True(t, paid.PaymentConfirmed)
	assert.Equal(t, "QWE12RTY", paid.MpesaCode)
	assert.Equal(t, 5, f.inv.Product("p1").QuantityRemaining)

	cancelled, err := f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.PaymentConfirmed)

	_, err = f.svc.UpdateStatus(ctx, biz, o.ID, orders.StatusConfirmed, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 5, f.inv.Product("p1").QuantityRemaining)

	_, err = f.svc.UpdateStatus(ctx, "other", o.ID, orders.StatusCancelled, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFullLifecycleDebitsOnce(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 5)
	ctx := context.Background()

	o, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 2}), "")
	require.NoError(t, err)
	for _, st := range []orders.Status{orders.StatusConfirmed, orders.StatusShipped, orders.StatusDelivered} {
		_, err := f.svc.UpdateStatus(ctx, biz, o.ID, st, "")
		require.NoError(t, err, st)
	}
	assert.Equal(t, 3, f.inv.Product("p1").QuantityRemaining)
	assert.Len(t, f.inv.MovementsOf("p1"), 1)
}

func TestConcurrentConfirmationsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 4)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		o, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 3}), "")
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.svc.UpdateStatus(ctx, biz, id, orders.StatusConfirmed, ""); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, f.inv.Product("p1").QuantityRemaining)
}

func TestCreateIsIdempotentPerKey(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t)
	f.svc.Redis = redisx.New(mr.Addr())
	f.seed("p1", "10", 5)
	ctx := context.Background()
	in := cart(orders.ItemInput{ProductID: "p1", Quantity: 1})

	first, existed, err := f.svc.Create(ctx, in, "key-1")
	require.NoError(t, err)
	assert.False(t, existed)

	again, existed, err := f.svc.Create(ctx, in, "key-1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.ID, again.ID)

	other, existed, err := f.svc.Create(ctx, in, "key-2")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Len(t, f.store.Orders, 2)
}

func TestListAndStats(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "100", 50)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		o, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: i + 1}), "")
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := f.svc.UpdateStatus(ctx, biz, ids[1], orders.StatusConfirmed, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, biz, ids[3], orders.StatusCancelled, "")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, biz, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")

	pending, err := f.svc.List(ctx, biz, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.List(ctx, biz, "nope")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	st, err := f.svc.Stats(ctx, biz)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalOrders)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 1, st.Confirmed)
	assert.Equal(t, 1, st.Cancelled)
	assert.True(t, decimal.NewFromInt(600).Equal(st.TotalRevenue), st.TotalRevenue.String())

	got, err := f.svc.Get(ctx, biz, ids[0])
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	_, err = f.svc.Get(ctx, "other", ids[0])
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestOrderedProductCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	f.seed("p1", "10", 5)
	ctx := context.Background()

	_, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 1}), "")
	require.NoError(t, err)

	err = inventory.NewService(f.inv, nil, nil, nil).DeleteProduct(ctx, biz, "p1")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestConfirmationDropsStorefrontCache(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t)
	f.svc.Redis = redisx.New(mr.Addr())
	f.seed("p1", "10", 2)
	ctx := context.Background()
	key := fmt.Sprintf(redisx.KeyStorefront, biz)

	kept, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 1}), "")
	require.NoError(t, err)
	sold, _, err := f.svc.Create(ctx, cart(orders.ItemInput{ProductID: "p1", Quantity: 2}), "")
	require.NoError(t, err)

	require.NoError(t, mr.Set(key, "{}"))
	_, err = f.svc.UpdateStatus(ctx, biz, kept.ID, orders.StatusCancelled, "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key), "no stock moved")

	_, err = f.svc.UpdateStatus(ctx, biz, sold.ID, orders.StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, 0, f.inv.Product("p1").QuantityRemaining)
	assert.False(t, mr.Exists(key))
}
