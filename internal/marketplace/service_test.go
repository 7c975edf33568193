package marketplace_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/dukapilot/biashara360/internal/marketplace"
	"github.com/dukapilot/biashara360/internal/redisx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu         sync.Mutex
	businesses map[string]marketplace.BusinessCard
	inactive   map[string]bool
	products   []inventory.Product
	reviews    []marketplace.Review
	complaints []marketplace.Complaint
	clock      time.Time
	calls      int
}

func newMemStore() *memStore {
	return &memStore{
		businesses: map[string]marketplace.BusinessCard{},
		inactive:   map[string]bool{},
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addProduct(p inventory.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = m.tick()
	m.products = append(m.products, p)
}

func (m *memStore) Listings(_ context.Context, q marketplace.Query) ([]marketplace.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []marketplace.Listing{}
	for _, p := range m.products {
		if !p.IsPublished || p.QuantityRemaining <= 0 {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, marketplace.Listing{Product: p, Business: m.businesses[p.BusinessID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Listing(_ context.Context, id string) (marketplace.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id && p.IsPublished {
			return marketplace.Listing{Product: p, Business: m.businesses[p.BusinessID]}, nil
		}
	}
	return marketplace.Listing{}, apperr.NotFound("product not found")
}

func (m *memStore) ActiveBusiness(_ context.Context, id string) (marketplace.BusinessCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	b, ok := m.businesses[id]
	if !ok || m.inactive[id] {
		return marketplace.BusinessCard{}, apperr.NotFound("business not found")
	}
	return b, nil
}

func (m *memStore) PublishedProducts(_ context.Context, businessID string) ([]inventory.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []inventory.Product{}
	for i := len(m.products) - 1; i >= 0; i-- {
		if p := m.products[i]; p.BusinessID == businessID && p.IsPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ApprovedReviews(_ context.Context, businessID string, limit int) ([]marketplace.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []marketplace.Review{}
	for i := len(m.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		if r := m.reviews[i]; r.BusinessID == businessID && r.IsApproved {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) InsertReview(_ context.Context, r *marketplace.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = m.tick()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memStore) InsertComplaint(_ context.Context, c *marketplace.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.complaints = append(m.complaints, *c)
	return nil
}

func ptr(f float64) *float64 { return &f }

func published(id, businessID, name string) inventory.Product {
	return inventory.Product{ID: id, BusinessID: businessID, Name: name, Category: "General",
		QuantityBought: 5, QuantityRemaining: 5, IsPublished: true}
}

func TestListProductsRanksByDistance(t *testing.T) {
	store := newMemStore()
	store.businesses["origin"] = marketplace.BusinessCard{ID: "origin", LocationLat: ptr(0), LocationLng: ptr(0)}
	store.businesses["near"] = marketplace.BusinessCard{ID: "near", LocationLat: ptr(1), LocationLng: ptr(1)}
	store.businesses["unknown"] = marketplace.BusinessCard{ID: "unknown"}
	// creation order puts the unlocated product newest
	store.addProduct(published("p-origin", "origin", "Maize"))
	store.addProduct(published("p-near", "near", "Beans"))
	store.addProduct(published("p-unknown", "unknown", "Rice"))
	svc := marketplace.NewService(store, nil)

	q, err := marketplace.ParseQuery("", "", "0", "0")
	require.NoError(t, err)
	ls, err := svc.ListProducts(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, ls, 3)
	assert.Equal(t, "p-origin", ls[0].ID)
	assert.Equal(t, "p-near", ls[1].ID)
	assert.Equal(t, "p-unknown", ls[2].ID)
	assert.Nil(t, ls[2].Distance)

	plain, err := svc.ListProducts(context.Background(), marketplace.Query{})
	require.NoError(t, err)
	assert.Equal(t, "p-unknown", plain[0].ID, "newest first without coordinates")
	assert.Nil(t, plain[0].Distance)
}

func TestListProductsHidesUnpublishedAndSoldOut(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1"}
	store.addProduct(published("ok", "b1", "Milk"))
	hidden := published("hidden", "b1", "Milk powder")
	hidden.IsPublished = false
	store.addProduct(hidden)
	soldOut := published("sold", "b1", "Milk tea")
	soldOut.QuantityRemaining = 0
	store.addProduct(soldOut)

	ls, err := marketplace.NewService(store, nil).ListProducts(context.Background(), marketplace.Query{Search: "MILK"})
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "ok", ls[0].ID)
}

func TestStorefrontAveragesTenMostRecentApproved(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1", BusinessName: "Duka"}
	for i := 0; i < 10; i++ {
		store.reviews = append(store.reviews, marketplace.Review{ID: fmt.Sprint("r", i), BusinessID: "b1", Rating: 5, IsApproved: true})
	}
	store.reviews = append(store.reviews,
		marketplace.Review{ID: "pending", BusinessID: "b1", Rating: 1, IsApproved: false},
		marketplace.Review{ID: "latest", BusinessID: "b1", Rating: 1, IsApproved: true},
	)
	store.addProduct(published("p1", "b1", "Sugar"))
	soldOut := published("p2", "b1", "Salt")
	soldOut.QuantityRemaining = 0
	store.addProduct(soldOut)

	sf, err := marketplace.NewService(store, nil).Storefront(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, 10, sf.TotalReviews)
	require.Len(t, sf.Reviews, 10)
	assert.Equal(t, "latest", sf.Reviews[0].ID)
	assert.InDelta(t, 4.6, sf.AvgRating, 1e-9)
	assert.Len(t, sf.Products, 2, "storefront lists sold out published products")
}

func TestStorefrontInactiveBusiness(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1"}
	store.inactive["b1"] = true

	_, err := marketplace.NewService(store, nil).Storefront(context.Background(), "b1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStorefrontIsCachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1"}
	svc := marketplace.NewService(store, rdb)
	ctx := context.Background()

	first, err := svc.Storefront(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalReviews)

	store.reviews = append(store.reviews, marketplace.Review{ID: "r1", BusinessID: "b1", Rating: 4, IsApproved: true})
	cached, err := svc.Storefront(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, cached.TotalReviews)
	assert.Equal(t, 1, store.calls)

	business.InvalidateStorefront(ctx, rdb, "b1")
	fresh, err := svc.Storefront(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalReviews)
	assert.InDelta(t, 4.0, fresh.AvgRating, 1e-9)

	mr.FastForward(redisx.TTLStorefront + time.Second)
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyStorefront, "b1")))
}

func TestSubmitReview(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1"}
	svc := marketplace.NewService(store, nil)
	ctx := context.Background()

	r, err := svc.SubmitReview(ctx, marketplace.ReviewInput{BusinessID: "b1", CustomerName: "Wanjiru", Rating: 4, Comment: "fresh"})
	require.NoError(t, err)
	assert.False(t, r.IsApproved)
	assert.NotEmpty(t, r.ID)

	for _, rating := range []int{0, 6, -1} {
		_, err = svc.SubmitReview(ctx, marketplace.ReviewInput{BusinessID: "b1", CustomerName: "x", Rating: rating})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "rating %d", rating)
	}
	_, err = svc.SubmitReview(ctx, marketplace.ReviewInput{BusinessID: "ghost", CustomerName: "x", Rating: 3})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	sf, err := svc.Storefront(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, sf.Reviews, "unapproved reviews stay hidden")
}

func TestSubmitComplaint(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1"}
	svc := marketplace.NewService(store, nil)

	c, err := svc.SubmitComplaint(context.Background(), marketplace.ComplaintInput{
		BusinessID: "b1", CustomerName: "Otieno", Description: "late delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, marketplace.ComplaintPending, c.Status)
	assert.Len(t, store.complaints, 1)

	_, err = svc.SubmitComplaint(context.Background(), marketplace.ComplaintInput{BusinessID: "b1", CustomerName: "Otieno"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetProduct(t *testing.T) {
	store := newMemStore()
	store.businesses["b1"] = marketplace.BusinessCard{ID: "b1", Phone: "0722"}
	store.addProduct(published("p1", "b1", "Eggs"))
	hidden := published("p2", "b1", "Hidden")
	hidden.IsPublished = false
	store.addProduct(hidden)
	svc := marketplace.NewService(store, nil)

	l, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "0722", l.Business.Phone)

	_, err = svc.GetProduct(context.Background(), "p2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
