// Package businesstest provides an in-memory business.Store.
package businesstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/business"
)

type Store struct {
	mu    sync.Mutex
	items map[string]business.Business
	clock time.Time

	// Counts feeds the product and order counters of List.
	Counts map[string][2]int
}

func New() *Store {
	return &Store{
		items:  map[string]business.Business{},
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Counts: map[string][2]int{},
	}
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Create(_ context.Context, b *business.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.items {
		if o.BusinessName == b.BusinessName || o.BusinessEmail == b.BusinessEmail {
			return apperr.Conflict("business already exists")
		}
	}
	b.CreatedAt = s.tick()
	b.UpdatedAt = b.CreatedAt
	s.items[b.ID] = *b
	return nil
}

func (s *Store) find(match func(business.Business) bool) (business.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.items {
		if match(b) {
			return b, nil
		}
	}
	return business.Business{}, apperr.NotFound("business not found")
}

func (s *Store) ByID(_ context.Context, id string) (business.Business, error) {
	return s.find(func(b business.Business) bool { return b.ID == id })
}

func (s *Store) ByName(_ context.Context, name string) (business.Business, error) {
	return s.find(func(b business.Business) bool { return b.BusinessName == name })
}

func (s *Store) ByNameOrEmail(_ context.Context, v string) (business.Business, error) {
	return s.find(func(b business.Business) bool { return b.BusinessName == v || b.BusinessEmail == v })
}

func (s *Store) update(id string, fn func(b *business.Business)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return apperr.NotFound("business not found")
	}
	fn(&b)
	b.UpdatedAt = s.tick()
	s.items[id] = b
	return nil
}

func (s *Store) Save(_ context.Context, b *business.Business) error {
	in := *b
	err := s.update(b.ID, func(cur *business.Business) {
		// profile columns only
		cur.Phone, cur.Logo, cur.Description = in.Phone, in.Logo, in.Description
		cur.LocationLat, cur.LocationLng, cur.LocationAddress = in.LocationLat, in.LocationLng, in.LocationAddress
		cur.MpesaNumber, cur.TillNumber, cur.PaybillNumber = in.MpesaNumber, in.TillNumber, in.PaybillNumber
	})
	if err == nil {
		b.UpdatedAt = s.Get(b.ID).UpdatedAt
	}
	return err
}

func (s *Store) SetPassword(_ context.Context, id, hash string, force bool) error {
	return s.update(id, func(b *business.Business) {
		b.PasswordHash = hash
		b.ForcePasswordChange = force
	})
}

func (s *Store) SetStatus(_ context.Context, id string, status business.Status) error {
	return s.update(id, func(b *business.Business) { b.Status = status })
}

func (s *Store) List(_ context.Context) ([]business.Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]business.Overview, 0, len(s.items))
	for _, b := range s.items {
		c := s.Counts[b.ID]
		out = append(out, business.Overview{Business: b, ProductCount: c[0], OrderCount: c[1]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Put stores b directly.
func (s *Store) Put(b business.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.tick()
	}
	s.items[b.ID] = b
}

func (s *Store) Get(id string) business.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}
