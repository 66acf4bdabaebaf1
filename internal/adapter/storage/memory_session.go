package storage

import (
	"context"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

type MemorySessionStore struct {
	mu      sync.Mutex
	carts   map[string]domain.Cart
	flashes map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		carts:   make(map[string]domain.Cart),
		flashes: make(map[string]string),
	}
}

func (s *MemorySessionStore) LoadCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[sessionID].Clone(), nil
}

func (s *MemorySessionStore) SaveCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart.IsEmpty() {
		delete(s.carts, sessionID)
		return nil
	}
	s.carts[sessionID] = cart.Clone()
	return nil
}

func (s *MemorySessionStore) PopCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[sessionID].Clone()
	delete(s.carts, sessionID)
	return cart, nil
}

func (s *MemorySessionStore) SetFlash(ctx context.Context, sessionID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes[sessionID] = message
	return nil
}

func (s *MemorySessionStore) PopFlash(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.flashes[sessionID]
	delete(s.flashes, sessionID)
	return msg, nil
}
