package ledger

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakeledger/capability"
	"github.com/mezonai/stakeledger/config"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

var (
	program = config.DefaultParams().ProgramID
	asset   = types.BytesToAddress([]byte{0xa5})
	alice   = types.BytesToAddress([]byte{1})
	bob     = types.BytesToAddress([]byte{2})
)

func newBank(t *testing.T) (*Bank, *store.Stores) {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(stores.MustClose)
	return NewBank(program, stores.Balances, stores.TxManager, nil), stores
}

func commit(t *testing.T, stores *store.Stores, s *Session) {
	t.Helper()
	require.NoError(t, stores.TxManager.WithBatch(s.Flush))
}

func TestBank_Credit(t *testing.T) {
	bank, _ := newBank(t)

	require.NoError(t, bank.Credit(asset, alice, 100))
	require.NoError(t, bank.Credit(asset, alice, 50))

	bal, err := bank.Balance(asset, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), bal)

	assert.ErrorIs(t, bank.Credit(asset, alice, 0), serr.ErrInvalidAmount)
	assert.ErrorIs(t, bank.Credit(asset, alice, math.MaxUint64), serr.ErrOverflow)
}

func TestSession_MoveWithSigner(t *testing.T) {
	bank, stores := newBank(t)
	require.NoError(t, bank.Credit(asset, alice, 100))

	s := bank.Begin()
	require.NoError(t, s.Move(alice, bob, asset, 40, SignerAuthority(alice)))

	// nothing visible before commit
	bal, err := bank.Balance(asset, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	commit(t, stores, s)

	bal, err = bank.Balance(asset, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), bal)
	bal, err = bank.Balance(asset, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bal)
}

func TestSession_MoveRejections(t *testing.T) {
	bank, _ := newBank(t)
	require.NoError(t, bank.Credit(asset, alice, 100))

	s := bank.Begin()
	assert.ErrorIs(t, s.Move(alice, bob, asset, 10, SignerAuthority(bob)), serr.ErrUnauthorized)
	assert.ErrorIs(t, s.Move(alice, bob, asset, 10, nil), serr.ErrUnauthorized)
	assert.ErrorIs(t, s.Move(alice, bob, asset, 101, SignerAuthority(alice)), serr.ErrInsufficientBalance)
	assert.ErrorIs(t, s.Move(alice, bob, asset, 0, SignerAuthority(alice)), serr.ErrInvalidAmount)

	bal, err := s.Balance(asset, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
}

func TestSession_MoveWithCapability(t *testing.T) {
	bank, stores := newBank(t)

	vaultCap, vault, err := capability.Derive(program, config.LabelVault, alice, asset)
	require.NoError(t, err)
	require.NoError(t, bank.Credit(asset, vault, 500))

	s := bank.Begin()
	// the vault has no key, only its capability signs for it
	assert.ErrorIs(t, s.Move(vault, bob, asset, 1, SignerAuthority(bob)), serr.ErrUnauthorized)

	otherCap, _, err := capability.Derive(program, config.LabelVault, bob, asset)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Move(vault, bob, asset, 1, otherCap), serr.ErrUnauthorized)

	require.NoError(t, s.Move(vault, bob, asset, 200, vaultCap))
	commit(t, stores, s)

	bal, err := bank.Balance(asset, vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), bal)
}

func TestSession_Release(t *testing.T) {
	bank, stores := newBank(t)

	treasuryCap, treasury, err := capability.Derive(program, config.LabelTreasury, alice)
	require.NoError(t, err)
	require.NoError(t, bank.Credit(asset, treasury, 77))

	s := bank.Begin()
	_, err = s.Release(asset, treasury, bob, SignerAuthority(bob))
	assert.ErrorIs(t, err, serr.ErrUnauthorized)

	residual, err := s.Release(asset, treasury, bob, treasuryCap)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), residual)
	commit(t, stores, s)

	exists, err := stores.Balances.Exists(asset, treasury)
	require.NoError(t, err)
	assert.False(t, exists)

	bal, err := bank.Balance(asset, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), bal)
}

func TestAccountLocks_OrderIndependent(t *testing.T) {
	locks := NewAccountLocks()
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(alice, bob)
			counter++
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locks.Lock(bob, alice, bob)
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
}
