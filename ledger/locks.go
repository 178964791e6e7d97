package ledger

import (
	"sort"
	"sync"

	"github.com/mezonai/stakeledger/types"
)

// AccountLocks hands out one mutex per address. Callers touching several
// records lock them together through Lock, which always acquires in address
// order so two operations sharing records cannot deadlock.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[types.Address]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[types.Address]*sync.Mutex)}
}

// Lock acquires the locks for addrs and returns the function releasing them.
func (al *AccountLocks) Lock(addrs ...types.Address) func() {
	ordered := al.ordered(addrs)
	for _, lk := range ordered {
		lk.Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].Unlock()
		}
	}
}

func (al *AccountLocks) ordered(addrs []types.Address) []*sync.Mutex {
	uniq := make(map[types.Address]struct{}, len(addrs))
	for _, a := range addrs {
		if a.IsZero() {
			continue
		}
		uniq[a] = struct{}{}
	}

	sorted := make([]types.Address, 0, len(uniq))
	for a := range uniq {
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	locks := make([]*sync.Mutex, 0, len(sorted))
	al.mu.Lock()
	for _, a := range sorted {
		lk, ok := al.locks[a]
		if !ok {
			lk = &sync.Mutex{}
			al.locks[a] = lk
		}
		locks = append(locks, lk)
	}
	al.mu.Unlock()
	return locks
}
