// Package inventorytest provides an in-memory inventory.Store for tests.
package inventorytest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/inventory"
)

// Store serializes transactions with a single mutex, mirroring the row
// locks the Postgres implementation takes. A transaction works on a copy
// that is published only when fn succeeds.
type Store struct {
	Mu sync.Mutex

	Products  map[string]inventory.Product
	Movements []inventory.Movement
	// Referenced marks products used by an order item; deleting them fails.
	Referenced map[string]bool
	// FailInsert, when set, is consulted before each product insert.
	FailInsert func(p inventory.Product) error

	clock time.Time
}

func New() *Store {
	return &Store{
		Products:   map[string]inventory.Product{},
		Referenced: map[string]bool{},
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Tick returns a strictly increasing timestamp. Callers must hold Mu.
func (s *Store) Tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Snapshot starts a transaction view. Callers must hold Mu.
func (s *Store) Snapshot() *Tx {
	products := make(map[string]inventory.Product, len(s.Products))
	for k, v := range s.Products {
		products[k] = v
	}
	return &Tx{s: s, products: products, movements: slices.Clone(s.Movements)}
}

// Apply publishes a transaction view. Callers must hold Mu.
func (s *Store) Apply(tx *Tx) {
	s.Products = tx.products
	s.Movements = tx.movements
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx inventory.Tx) error) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	tx := s.Snapshot()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.Apply(tx)
	return nil
}

func (s *Store) ListProducts(_ context.Context, businessID string, f inventory.Filter) ([]inventory.Product, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := []inventory.Product{}
	for _, p := range s.Products {
		if p.BusinessID != businessID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Published != nil && p.IsPublished != *f.Published {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, businessID, id string) (inventory.Product, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	p, ok := s.Products[id]
	if !ok || p.BusinessID != businessID {
		return inventory.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

func (s *Store) ProductsByIDs(_ context.Context, businessID string, ids []string) ([]inventory.Product, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := []inventory.Product{}
	for _, id := range ids {
		if p, ok := s.Products[id]; ok && p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuantityRemaining < out[j].QuantityRemaining })
	return out, nil
}

func (s *Store) RecentMovements(_ context.Context, productID string, limit int) ([]inventory.Movement, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := []inventory.Movement{}
	for i := len(s.Movements) - 1; i >= 0 && len(out) < limit; i-- {
		if s.Movements[i].ProductID == productID {
			out = append(out, s.Movements[i])
		}
	}
	return out, nil
}

func (s *Store) Categories(_ context.Context, businessID string) ([]string, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.Products {
		if p.BusinessID == businessID && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MovementsOf returns the committed movements of one product, oldest first.
func (s *Store) MovementsOf(productID string) []inventory.Movement {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	var out []inventory.Movement
	for _, m := range s.Movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Product returns the committed state of one product.
func (s *Store) Product(id string) inventory.Product {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Products[id]
}

// Seed stores p directly, outside the ledger.
func (s *Store) Seed(p inventory.Product) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Tick()
	}
	s.Products[p.ID] = p
}

type Tx struct {
	s         *Store
	products  map[string]inventory.Product
	movements []inventory.Movement
}

func (t *Tx) InsertProduct(_ context.Context, p *inventory.Product) error {
	if t.s.FailInsert != nil {
		if err := t.s.FailInsert(*p); err != nil {
			return err
		}
	}
	if _, ok := t.products[p.ID]; ok {
		return apperr.Conflict("product already exists")
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = t.s.Tick()
	p.UpdatedAt = p.CreatedAt
	t.products[p.ID] = *p
	return nil
}

func (t *Tx) LockProduct(_ context.Context, businessID, id string) (inventory.Product, error) {
	p, ok := t.products[id]
	if !ok || p.BusinessID != businessID {
		return inventory.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

func (t *Tx) SaveProduct(_ context.Context, p *inventory.Product) error {
	old, ok := t.products[p.ID]
	if !ok || old.BusinessID != p.BusinessID {
		return apperr.NotFound("product not found")
	}
	if p.QuantityRemaining < 0 {
		return apperr.Validation("product violates a constraint")
	}
	p.UpdatedAt = t.s.Tick()
	t.products[p.ID] = *p
	return nil
}

func (t *Tx) DeleteProduct(_ context.Context, businessID, id string) error {
	p, ok := t.products[id]
	if !ok || p.BusinessID != businessID {
		return apperr.NotFound("product not found")
	}
	if t.s.Referenced[id] {
		return apperr.Conflict("product is referenced by other records")
	}
	delete(t.products, id)
	return nil
}

func (t *Tx) AppendMovement(_ context.Context, m inventory.Movement) error {
	if _, ok := t.products[m.ProductID]; !ok {
		return apperr.Conflict("stock movement is referenced by other records")
	}
	if m.Quantity <= 0 {
		return apperr.Validation("stock movement violates a constraint")
	}
	t.movements = append(t.movements, m)
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
