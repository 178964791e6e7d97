package ledger

import (
	"github.com/mezonai/stakeledger/types"
)

// Authority is what a caller presents to move funds out of an address. It
// resolves to the address it is allowed to sign for.
type Authority interface {
	Address(program types.Address) (types.Address, error)
}

// SignerAuthority is an external user's own signature.
type SignerAuthority types.Address

func (s SignerAuthority) Address(types.Address) (types.Address, error) {
	return types.Address(s), nil
}
