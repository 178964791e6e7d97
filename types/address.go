package types

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

const AddressLength = 32

// Address identifies a participant, an asset mint or a custody account.
// Its text form is base58.
type Address [AddressLength]byte

// ZeroAddress is never a valid participant.
var ZeroAddress Address

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("failed to decode base58 address %q: %w", s, err)
	}
	if len(raw) != AddressLength {
		return ZeroAddress, fmt.Errorf("invalid address length %d for %q", len(raw), s)
	}
	return BytesToAddress(raw), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == ZeroAddress }

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Less orders addresses bytewise, used to take locks in a stable order.
func (a Address) Less(b Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
