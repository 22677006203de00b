package token

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known tokens.
type Registry struct {
	byID     map[ID]*Token
	bySymbol map[string]*Token
	anchor   *Token
	mu       sync.RWMutex
}

// NewRegistry creates a new empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[ID]*Token),
		bySymbol: make(map[string]*Token),
	}
}

// Register adds a token to the registry.
// Panics if a token with the same ID is already registered, or if a second
// anchor token is registered.
func (r *Registry) Register(t *Token) {
	if t == nil {
		panic("token: cannot register nil token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := t.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("token: %s already registered", id))
	}
	if t.IsAnchor() {
		if r.anchor != nil {
			panic(fmt.Sprintf("token: anchor already registered (%s), cannot register %s", r.anchor.Symbol(), t.Symbol()))
		}
		r.anchor = t
	}

	r.byID[id] = t
	r.bySymbol[t.Symbol()] = t
}

// Get retrieves a token by its ID.
func (r *Registry) Get(id ID) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	return t, ok
}

// MustGet retrieves a token by its ID, panics if not found.
func (r *Registry) MustGet(id ID) *Token {
	t, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("token: %s not found in registry", id))
	}
	return t
}

// GetBySymbol retrieves a token by its ticker symbol.
func (r *Registry) GetBySymbol(symbol string) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.bySymbol[symbol]
	return t, ok
}

// Resolve retrieves a token by contract identifier string.
func (r *Registry) Resolve(contractID string) (*Token, bool) {
	id, err := ParseID(contractID)
	if err != nil {
		return nil, false
	}
	return r.Get(id)
}

// Anchor returns the registered BTC-pegged anchor token, or nil if none.
func (r *Registry) Anchor() *Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.anchor
}

// Stablecoins returns all registered stablecoins.
func (r *Registry) Stablecoins() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Token
	for _, t := range r.byID {
		if t.IsStablecoin() {
			result = append(result, t)
		}
	}
	return result
}

// All returns all registered tokens.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Token, 0, len(r.byID))
	for _, t := range r.byID {
		result = append(result, t)
	}
	return result
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Has returns true if a token with the given ID is registered.
func (r *Registry) Has(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}
