package session

import (
	"sync"

	"github.com/lunashop/cart-go/internal/cart"
)

// State caches the last authoritative cart the server returned and
// guards against out-of-order responses: every outgoing mutation takes
// a sequence number from Begin, and Apply discards any response whose
// sequence is older than the newest one already applied. Without this,
// two rapid mutations could settle in network arrival order and the
// stale response would win.
type State struct {
	mu      sync.Mutex
	nextSeq uint64
	applied uint64
	cart    *cart.Cart
}

// Begin reserves the sequence number for one outgoing mutation.
func (s *State) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	return s.nextSeq
}

// Apply replaces the cached cart with c, unless a response with a newer
// sequence has already been applied. Reports whether c was applied.
func (s *State) Apply(seq uint64, c *cart.Cart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		return false
	}
	s.applied = seq
	s.cart = c
	return true
}

// Cart returns the cached authoritative cart, if any response has been
// applied yet.
func (s *State) Cart() (*cart.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil, false
	}
	return s.cart, true
}

// Reset forgets the cached cart and restarts the sequence window.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq = 0
	s.applied = 0
	s.cart = nil
}
