// Package interfaces defines the core interfaces and types for the LUW coordination registry.
// It provides the contract between different components without implementation details.
package interfaces

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies a wallet or a deployed contract on the ledger.
type Address = common.Address

// NewAddressFromHex parses a 40-char hex address, with or without the 0x prefix.
func NewAddressFromHex(addr string) (Address, error) {
	clean := strings.TrimPrefix(addr, "0x")
	if len(clean) != 40 {
		return Address{}, errors.New("invalid address length: hex string must be 40 characters")
	}
	if !common.IsHexAddress(clean) {
		return Address{}, fmt.Errorf("invalid hex address: %s", addr)
	}
	return common.HexToAddress(clean), nil
}

// OptionalAddress is an address that may be unset. The zero value is unset;
// the zero address is a valid, set value.
type OptionalAddress struct {
	addr Address
	set  bool
}

// SomeAddress returns a set OptionalAddress.
func SomeAddress(addr Address) OptionalAddress {
	return OptionalAddress{addr: addr, set: true}
}

// NoAddress returns an unset OptionalAddress.
func NoAddress() OptionalAddress {
	return OptionalAddress{}
}

// Get returns the address and whether it is set.
func (o OptionalAddress) Get() (Address, bool) {
	return o.addr, o.set
}

// IsSet reports whether an address is present.
func (o OptionalAddress) IsSet() bool {
	return o.set
}

// Matches reports whether the option is set and equal to addr.
func (o OptionalAddress) Matches(addr Address) bool {
	return o.set && o.addr == addr
}

func (o OptionalAddress) String() string {
	if !o.set {
		return "<unset>"
	}
	return o.addr.Hex()
}
