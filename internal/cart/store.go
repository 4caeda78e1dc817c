package cart

import (
	"errors"
	"math"
	"sync"
)

// MaxLineQuantity caps a single cart line. Purchases negate the quantity into
// an int delta, so the cap must fit in 31 bits on every platform.
const MaxLineQuantity = math.MaxInt32

var (
	ErrEmptyToken      = errors.New("cart: empty token")
	ErrInvalidQuantity = errors.New("cart: quantity out of range")
)

// Entry is one pending-purchase line in a cart.
type Entry struct {
	ItemID   uint `json:"item_id"`
	Quantity uint `json:"quantity"`
}

// Store keeps one ordered entry list per session token. A single mutex guards
// the whole map; per-token contention is low enough that sharding isn't worth
// the fan-out.
type Store struct {
	mu    sync.Mutex
	carts map[string][]Entry
}

func NewStore() *Store {
	return &Store{carts: make(map[string][]Entry)}
}

// AddItem merges quantity into an existing line for itemID or appends a new
// one. The store is identity-agnostic: callers are expected to have resolved
// the token against the session registry already.
func (s *Store) AddItem(token string, itemID, quantity uint) error {
	if token == "" {
		return ErrEmptyToken
	}
	if quantity == 0 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[token]
	for i := range entries {
		if entries[i].ItemID == itemID {
			if quantity > MaxLineQuantity-entries[i].Quantity {
				return ErrInvalidQuantity
			}
			entries[i].Quantity += quantity
			return nil
		}
	}
	s.carts[token] = append(entries, Entry{ItemID: itemID, Quantity: quantity})
	return nil
}

// RemoveItem drops the line for itemID. Absent line or absent cart is a no-op.
func (s *Store) RemoveItem(token string, itemID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.carts[token]
	if !ok {
		return
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ItemID != itemID {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(s.carts, token)
		return
	}
	s.carts[token] = kept
}

// Get returns a copy of the cart. An absent cart reads as empty.
func (s *Store) Get(token string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[token]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Clear empties the cart. Idempotent.
func (s *Store) Clear(token string) {
	s.mu.Lock()
	delete(s.carts, token)
	s.mu.Unlock()
}

// SnapshotAndClear reads and empties the cart in one critical section, so a
// concurrent AddItem lands either in the snapshot or in the fresh cart, never
// nowhere.
func (s *Store) SnapshotAndClear(token string) []Entry {
	s.mu.Lock()
	entries := s.carts[token]
	delete(s.carts, token)
	s.mu.Unlock()
	return entries
}
