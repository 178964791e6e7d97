// Package capability derives program-owned custody addresses.
//
// A derived address is the SHA-256 of its seeds, a one byte bump, the
// program id and a fixed marker. The bump is chosen so the digest is not a
// valid edwards25519 point, which means no private key can exist for it and
// only the program, by presenting the same seeds, can authorize moves out of
// it.
package capability

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"

	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/types"
)

const (
	MaxSeedLength = 32
	MaxSeeds      = 16

	pdaMarker = "ProgramDerivedAddress"
)

// CreateAddress computes the derived address for seeds and bump. It fails if
// the digest lands on the curve.
func CreateAddress(program types.Address, seeds [][]byte, bump uint8) (types.Address, error) {
	addr, onCurve, err := createAddress(program, seeds, bump)
	if err != nil {
		return types.ZeroAddress, err
	}
	if onCurve {
		return types.ZeroAddress, serr.NewError(serr.ErrCodeInvalidCapability, "derived address is on curve")
	}
	return addr, nil
}

// FindAddress searches bumps from 255 down and returns the first address
// that is off the curve.
func FindAddress(program types.Address, seeds [][]byte) (types.Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, onCurve, err := createAddress(program, seeds, uint8(bump))
		if err != nil {
			return types.ZeroAddress, 0, err
		}
		if !onCurve {
			return addr, uint8(bump), nil
		}
	}
	return types.ZeroAddress, 0, serr.NewError(serr.ErrCodeInvalidCapability, "no viable bump found")
}

func createAddress(program types.Address, seeds [][]byte, bump uint8) (types.Address, bool, error) {
	if len(seeds) > MaxSeeds-1 {
		return types.ZeroAddress, false, serr.Newf(serr.ErrCodeInvalidCapability, "too many seeds: %d", len(seeds))
	}

	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return types.ZeroAddress, false, serr.Newf(serr.ErrCodeInvalidCapability, "seed %d exceeds %d bytes", i, MaxSeedLength)
		}
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	sum := h.Sum(nil)
	return types.BytesToAddress(sum), isOnCurve(sum), nil
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// Capability is the keyless signing token for one derived address: the label,
// the owning identity, optional extra scope and the stored bump. Presenting
// it to the ledger authorizes moves out of Address(program).
type Capability struct {
	Label string
	Owner types.Address
	Scope []types.Address
	Bump  uint8
}

func (c Capability) Seeds() [][]byte {
	seeds := make([][]byte, 0, 2+len(c.Scope))
	seeds = append(seeds, []byte(c.Label), c.Owner.Bytes())
	for _, s := range c.Scope {
		seeds = append(seeds, s.Bytes())
	}
	return seeds
}

// Address recomputes the derived address from the token.
func (c Capability) Address(program types.Address) (types.Address, error) {
	return CreateAddress(program, c.Seeds(), c.Bump)
}

func (c Capability) String() string {
	return fmt.Sprintf("%s/%s/%d", c.Label, c.Owner, c.Bump)
}

// Derive finds the bump for label/owner/scope and returns the capability
// together with its address.
func Derive(program types.Address, label string, owner types.Address, scope ...types.Address) (Capability, types.Address, error) {
	c := Capability{Label: label, Owner: owner, Scope: scope}
	addr, bump, err := FindAddress(program, c.Seeds())
	if err != nil {
		return Capability{}, types.ZeroAddress, err
	}
	c.Bump = bump
	return c, addr, nil
}
