package token

// Token represents the metadata of a Stacks fungible token.
// It is a reference entity with stable identity (ID).
// The symbol is NOT identity - just metadata for display.
type Token struct {
	id         ID
	symbol     string
	name       string
	decimals   uint8
	stablecoin bool
	anchor     bool
}

// Option configures optional token attributes.
type Option func(*Token)

// WithName sets a human-readable name.
func WithName(name string) Option {
	return func(t *Token) { t.name = name }
}

// AsStablecoin marks the token as a USD-pegged stablecoin. Stablecoins are
// pinned to 1.0 USD by policy instead of being priced from pool reserves.
func AsStablecoin() Option {
	return func(t *Token) { t.stablecoin = true }
}

// AsAnchor marks the token as the BTC-pegged anchor asset all other prices
// are expressed against. Exactly one token per registry should carry this.
func AsAnchor() Option {
	return func(t *Token) { t.anchor = true }
}

// New creates a new Token with the given parameters.
func New(id ID, symbol string, decimals uint8, opts ...Option) *Token {
	if symbol == "" {
		panic("token: empty symbol")
	}
	if decimals > 30 {
		panic("token: suspicious decimals (>30)")
	}

	t := &Token{
		id:       id,
		symbol:   symbol,
		decimals: decimals,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the unique identifier for this token.
func (t *Token) ID() ID {
	return t.id
}

// Symbol returns the ticker symbol (e.g., "sBTC", "aeUSDC").
func (t *Token) Symbol() string {
	return t.symbol
}

// Name returns the human-readable name (e.g., "Wrapped Bitcoin").
func (t *Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

// Decimals returns the number of decimal places.
func (t *Token) Decimals() uint8 {
	return t.decimals
}

// IsStablecoin returns true if the token is a declared USD stablecoin.
func (t *Token) IsStablecoin() bool {
	return t.stablecoin
}

// IsAnchor returns true if the token is the BTC-pegged anchor asset.
func (t *Token) IsAnchor() bool {
	return t.anchor
}

// IsNative returns true if this is the native STX coin.
func (t *Token) IsNative() bool {
	return t.id.IsNative()
}

// String returns a human-readable representation.
func (t *Token) String() string {
	return t.symbol
}

// Equals compares two Tokens by their ID.
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id.Equals(other.id)
}
