// Package token provides a type-safe model for Stacks fungible tokens.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (API, parsing, display).
package token

import (
	"fmt"
	"strings"
)

// ID uniquely identifies a token by its contract principal, e.g.
// "SP3Y2ZSH8P7D50B0VBTSX11S7XSG24M1VB9YFQA4K.token-aeusdc" or, with an
// explicit asset name, "SP....contract::asset". The native coin is "stx".
// This is the TRUE identity - not the symbol.
type ID struct {
	principal string // "" = native STX
	asset     string // optional ::asset-name qualifier
}

// nativeID is the reserved identifier for the chain's native coin.
const nativeID = "stx"

// c32 address prefixes for standard and multisig principals.
var principalPrefixes = []string{"SP", "SM", "ST", "SN"}

// NewNativeID returns the ID of the native STX coin.
func NewNativeID() ID {
	return ID{}
}

// ParseID parses a contract identifier string into an ID.
// Accepted forms: "stx", "ADDR.contract-name", "ADDR.contract-name::asset".
func ParseID(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("token: empty contract identifier")
	}
	if strings.EqualFold(s, nativeID) {
		return NewNativeID(), nil
	}

	principal := s
	asset := ""
	if i := strings.Index(s, "::"); i >= 0 {
		principal, asset = s[:i], s[i+2:]
		if asset == "" {
			return ID{}, fmt.Errorf("token: empty asset name in %q", s)
		}
	}

	addr, contract, ok := strings.Cut(principal, ".")
	if !ok || contract == "" {
		return ID{}, fmt.Errorf("token: %q is not a contract principal", s)
	}
	if !validAddress(addr) {
		return ID{}, fmt.Errorf("token: invalid principal address in %q", s)
	}
	if !validContractName(contract) {
		return ID{}, fmt.Errorf("token: invalid contract name in %q", s)
	}

	return ID{principal: principal, asset: asset}, nil
}

// MustParseID parses a contract identifier and panics on failure.
// Intended for package-level well-known token declarations.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// validAddress reports whether addr looks like a c32check Stacks address.
func validAddress(addr string) bool {
	if len(addr) < 3 || len(addr) > 41 {
		return false
	}
	hasPrefix := false
	for _, p := range principalPrefixes {
		if strings.HasPrefix(addr, p) {
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return false
	}
	for _, r := range addr[2:] {
		// c32 alphabet: 0-9 and A-Z excluding I, L, O, U
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z' && r != 'I' && r != 'L' && r != 'O' && r != 'U':
		default:
			return false
		}
	}
	return true
}

// validContractName reports whether name is a legal Clarity contract name.
func validContractName(name string) bool {
	if len(name) == 0 || len(name) > 128 {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r == '-' || r == '_':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsNative returns true if this is the native STX coin.
func (id ID) IsNative() bool {
	return id.principal == ""
}

// Principal returns the contract principal ("ADDR.contract"), empty for STX.
func (id ID) Principal() string {
	return id.principal
}

// AssetName returns the explicit ::asset qualifier, if any.
func (id ID) AssetName() string {
	return id.asset
}

// String returns the canonical contract identifier.
func (id ID) String() string {
	if id.IsNative() {
		return nativeID
	}
	if id.asset != "" {
		return id.principal + "::" + id.asset
	}
	return id.principal
}

// Equals compares two IDs for equality.
func (id ID) Equals(other ID) bool {
	return id.principal == other.principal && id.asset == other.asset
}
