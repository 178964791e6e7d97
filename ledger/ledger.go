package ledger

import (
	"fmt"

	"github.com/mezonai/stakeledger/accrual"
	"github.com/mezonai/stakeledger/db"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

// Bank holds token balances keyed by (asset, address). All mutation goes
// through a Session so that a failed operation leaves nothing behind.
type Bank struct {
	program   types.Address
	balances  store.BalanceStore
	txManager *db.DBTxManager
	locks     *AccountLocks
}

func NewBank(program types.Address, balances store.BalanceStore, txManager *db.DBTxManager, locks *AccountLocks) *Bank {
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &Bank{
		program:   program,
		balances:  balances,
		txManager: txManager,
		locks:     locks,
	}
}

// Balance returns the committed balance of addr in asset
func (b *Bank) Balance(asset, addr types.Address) (uint64, error) {
	return b.balances.Get(asset, addr)
}

// Begin opens a staging session over the committed balances
func (b *Bank) Begin() *Session {
	return &Session{
		bank:  b,
		dirty: make(map[balanceKey]*entry),
	}
}

// Credit mints amount of asset to addr. It stands in for the external token
// program when seeding user wallets.
func (b *Bank) Credit(asset, addr types.Address, amount uint64) error {
	if amount == 0 {
		return serr.ErrInvalidAmount
	}

	unlock := b.locks.Lock(addr)
	defer unlock()

	err := b.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		s := b.Begin()
		current, err := s.Balance(asset, addr)
		if err != nil {
			return err
		}
		next, err := accrual.Add(current, amount)
		if err != nil {
			return err
		}
		s.set(asset, addr, next)
		return s.Flush(batch)
	})
	if err != nil {
		return err
	}

	logx.Info("LEDGER", fmt.Sprintf("Credited %d of %s to %s", amount, asset, addr))
	return nil
}

type balanceKey struct {
	asset types.Address
	addr  types.Address
}

type entry struct {
	amount   uint64
	released bool
}

// Session is an uncommitted overlay of balance changes. It is not safe for
// concurrent use; callers hold the account locks for everything they touch.
type Session struct {
	bank  *Bank
	dirty map[balanceKey]*entry
	order []balanceKey
}

// Balance reads through the overlay
func (s *Session) Balance(asset, addr types.Address) (uint64, error) {
	if e, ok := s.dirty[balanceKey{asset, addr}]; ok {
		if e.released {
			return 0, nil
		}
		return e.amount, nil
	}
	return s.bank.balances.Get(asset, addr)
}

func (s *Session) set(asset, addr types.Address, amount uint64) {
	k := balanceKey{asset, addr}
	e, ok := s.dirty[k]
	if !ok {
		e = &entry{}
		s.dirty[k] = e
		s.order = append(s.order, k)
	}
	e.amount = amount
	e.released = false
}

func (s *Session) authorize(src types.Address, auth Authority) error {
	if auth == nil {
		return serr.ErrUnauthorized
	}
	signer, err := auth.Address(s.bank.program)
	if err != nil {
		return err
	}
	if signer != src {
		return serr.Newf(serr.ErrCodeUnauthorized, "authority %s cannot sign for %s", signer, src)
	}
	return nil
}

// Move transfers amount of asset from src to dst. auth must resolve to src.
func (s *Session) Move(src, dst, asset types.Address, amount uint64, auth Authority) error {
	if amount == 0 {
		return serr.ErrInvalidAmount
	}
	if err := s.authorize(src, auth); err != nil {
		return err
	}

	srcBalance, err := s.Balance(asset, src)
	if err != nil {
		return err
	}
	if srcBalance < amount {
		return serr.Newf(serr.ErrCodeInsufficientBalance, "%s holds %d, needs %d", src, srcBalance, amount)
	}
	if src == dst {
		return nil
	}

	dstBalance, err := s.Balance(asset, dst)
	if err != nil {
		return err
	}
	nextDst, err := accrual.Add(dstBalance, amount)
	if err != nil {
		return err
	}

	s.set(asset, src, srcBalance-amount)
	s.set(asset, dst, nextDst)
	logx.Debug("LEDGER", fmt.Sprintf("Staged move of %d %s from %s to %s", amount, asset, src, dst))
	return nil
}

// Release closes the balance record of addr, sending whatever it still holds
// to dst. The residual is returned.
func (s *Session) Release(asset, addr, dst types.Address, auth Authority) (uint64, error) {
	if err := s.authorize(addr, auth); err != nil {
		return 0, err
	}

	residual, err := s.Balance(asset, addr)
	if err != nil {
		return 0, err
	}
	if residual > 0 && dst != addr {
		if err := s.Move(addr, dst, asset, residual, auth); err != nil {
			return 0, err
		}
	}

	k := balanceKey{asset, addr}
	e, ok := s.dirty[k]
	if !ok {
		e = &entry{}
		s.dirty[k] = e
		s.order = append(s.order, k)
	}
	e.amount = 0
	e.released = true
	return residual, nil
}

// Flush stages every touched balance into batch
func (s *Session) Flush(batch db.DatabaseBatch) error {
	for _, k := range s.order {
		e := s.dirty[k]
		if e.released {
			s.bank.balances.StageDelete(batch, k.asset, k.addr)
			continue
		}
		if err := s.bank.balances.StagePut(batch, types.Balance{Asset: k.asset, Address: k.addr, Amount: e.amount}); err != nil {
			return err
		}
	}
	return nil
}
