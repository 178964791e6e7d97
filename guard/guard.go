// Package guard checks that the caller of an operation owns the record it
// acts on. A mismatch is always Unauthorized.
package guard

import (
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/types"
)

// RequireAdmin passes iff caller is the pool admin
func RequireAdmin(pool *types.Pool, caller types.Address) error {
	if pool == nil {
		return serr.ErrPoolNotInitialized
	}
	if caller.IsZero() || caller != pool.Admin {
		return serr.Newf(serr.ErrCodeUnauthorized, "%s is not the pool admin", caller)
	}
	return nil
}

// RequireOwner passes iff caller owns acc
func RequireOwner(acc *types.StakeAccount, caller types.Address) error {
	if acc == nil {
		return serr.ErrAccountNotFound
	}
	if caller.IsZero() || caller != acc.Owner {
		return serr.Newf(serr.ErrCodeUnauthorized, "%s does not own stake account %s", caller, acc.Address)
	}
	return nil
}
