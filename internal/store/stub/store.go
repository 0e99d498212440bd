// Package stub provides a scripted in-memory AccountStore for testing.
package stub

import (
	"context"
	"sync"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
	"github.com/0xtechnoir/ore-alt-client/internal/store"
)

// Store implements store.AccountStore from an in-memory map.
type Store struct {
	mu       sync.Mutex
	accounts map[game.Pubkey][]byte
	errs     map[game.Pubkey]error
	fetches  int
}

// NewStore creates a new stub account store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[game.Pubkey][]byte),
		errs:     make(map[game.Pubkey]error),
	}
}

// Fetch returns scripted data or error for the address.
func (s *Store) Fetch(_ context.Context, addr game.Pubkey) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++

	if err, ok := s.errs[addr]; ok {
		return nil, err
	}
	data, ok := s.accounts[addr]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// SetAccount scripts the data returned for an address.
func (s *Store) SetAccount(addr game.Pubkey, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[addr] = data
	delete(s.errs, addr)
}

// FailWith scripts an error for an address. A nil err clears it.
func (s *Store) FailWith(addr game.Pubkey, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, addr)
		return
	}
	s.errs[addr] = err
}

// Delete removes an address so fetches report ErrNotFound.
func (s *Store) Delete(addr game.Pubkey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, addr)
	delete(s.errs, addr)
}

// Fetches returns the number of Fetch calls made so far.
func (s *Store) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}
