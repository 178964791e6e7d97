package staking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakeledger/clock"
	"github.com/mezonai/stakeledger/config"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/events"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

const genesisTime = int64(1_700_000_000)

var (
	admin      = types.BytesToAddress([]byte{0xad})
	alice      = types.BytesToAddress([]byte{0xa1})
	bob        = types.BytesToAddress([]byte{0xb0})
	stakeMint  = types.BytesToAddress([]byte{0x11})
	rewardMint = types.BytesToAddress([]byte{0x22})
	extraMint  = types.BytesToAddress([]byte{0x33})
	ctx        = context.Background()
)

type fixture struct {
	engine *Engine
	clock  *clock.FixedClock
	stores *store.Stores
	bus    *events.EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(stores.MustClose)

	clk := clock.NewFixedClock(genesisTime)
	bus := events.NewEventBus()
	engine, err := NewEngine(config.DefaultParams(), stores, Options{Clock: clk, EventBus: bus})
	require.NoError(t, err)

	return &fixture{engine: engine, clock: clk, stores: stores, bus: bus}
}

// newPool initializes a pool paying rate per unit per second with the given
// lock, and funds the treasury with treasury reward units
func newPool(t *testing.T, rate uint64, lock int64, treasury uint64) *fixture {
	t.Helper()
	f := newFixture(t)
	_, err := f.engine.InitializePool(ctx, admin, rate, lock, stakeMint, rewardMint)
	require.NoError(t, err)
	if treasury > 0 {
		f.credit(t, rewardMint, admin, treasury)
		require.NoError(t, f.engine.FundTreasury(ctx, admin, treasury))
	}
	return f
}

func (f *fixture) credit(t *testing.T, asset, addr types.Address, amount uint64) {
	t.Helper()
	require.NoError(t, f.engine.Bank().Credit(asset, addr, amount))
}

func (f *fixture) balance(t *testing.T, addr, asset types.Address) uint64 {
	t.Helper()
	bal, err := f.engine.Balance(addr, asset)
	require.NoError(t, err)
	return bal
}

func (f *fixture) treasury(t *testing.T) uint64 {
	t.Helper()
	bal, err := f.engine.TreasuryBalance()
	require.NoError(t, err)
	return bal
}

func (f *fixture) vault(t *testing.T, asset types.Address) uint64 {
	t.Helper()
	bal, err := f.engine.VaultBalance(asset)
	require.NoError(t, err)
	return bal
}

func (f *fixture) account(t *testing.T, owner, asset types.Address) *types.StakeAccount {
	t.Helper()
	acc, err := f.engine.StakeAccount(owner, asset)
	require.NoError(t, err)
	return acc
}

func TestInitializePool(t *testing.T) {
	f := newFixture(t)

	pool, err := f.engine.InitializePool(ctx, admin, 5, 3_600, stakeMint, rewardMint)
	require.NoError(t, err)

	expected, _, err := PoolAddress(config.DefaultParams(), stakeMint)
	require.NoError(t, err)
	assert.Equal(t, expected, pool.Address)
	assert.Equal(t, expected, f.engine.PoolAddress())
	assert.Equal(t, admin, pool.Admin)
	assert.Equal(t, genesisTime, pool.CreatedAt)
	require.Len(t, pool.SupportedAssets, 1)
	assert.Equal(t, stakeMint, pool.SupportedAssets[0].Asset)
	assert.Equal(t, uint64(5), pool.SupportedAssets[0].RewardRate)
	assert.False(t, pool.Treasury.IsZero())

	stored, err := f.engine.Pool()
	require.NoError(t, err)
	assert.Equal(t, pool, stored)

	_, err = f.engine.InitializePool(ctx, bob, 1, 0, stakeMint, rewardMint)
	assert.ErrorIs(t, err, serr.ErrPoolAlreadyInitialized)

	// one pool per engine
	_, err = f.engine.InitializePool(ctx, admin, 1, 0, extraMint, rewardMint)
	assert.ErrorIs(t, err, serr.ErrPoolAlreadyInitialized)
}

func TestInitializePool_RejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.InitializePool(ctx, admin, 1, -1, stakeMint, rewardMint)
	assert.ErrorIs(t, err, serr.ErrInvalidConfig)
	_, err = f.engine.InitializePool(ctx, admin, 1, 0, types.ZeroAddress, rewardMint)
	assert.ErrorIs(t, err, serr.ErrInvalidConfig)
	_, err = f.engine.InitializePool(ctx, types.ZeroAddress, 1, 0, stakeMint, rewardMint)
	assert.ErrorIs(t, err, serr.ErrUnauthorized)

	_, err = f.engine.Pool()
	assert.ErrorIs(t, err, serr.ErrPoolNotInitialized)
}

func TestOperationsWithoutPool(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.engine.Stake(ctx, alice, stakeMint, 1), serr.ErrPoolNotInitialized)
	_, err := f.engine.ClaimRewards(ctx, alice, stakeMint)
	assert.ErrorIs(t, err, serr.ErrPoolNotInitialized)
	assert.ErrorIs(t, f.engine.FundTreasury(ctx, admin, 1), serr.ErrPoolNotInitialized)
}

func TestAddSupportedToken(t *testing.T) {
	f := newPool(t, 1, 0, 0)

	require.NoError(t, f.engine.AddSupportedToken(ctx, admin, extraMint, 9))
	err := f.engine.AddSupportedToken(ctx, admin, extraMint, 9)
	assert.ErrorIs(t, err, serr.ErrTokenAlreadySupported)

	pool, err := f.engine.Pool()
	require.NoError(t, err)
	require.Len(t, pool.SupportedAssets, 2)
	entry := pool.SupportedAssets[1]
	assert.Equal(t, extraMint, entry.Asset)
	assert.Equal(t, uint64(9), entry.RewardRate)
	assert.Equal(t, uint64(0), entry.TotalStaked)
	assert.NotEqual(t, pool.SupportedAssets[0].Vault, entry.Vault)

	// the staking asset is already registered
	assert.ErrorIs(t, f.engine.AddSupportedToken(ctx, admin, stakeMint, 1), serr.ErrTokenAlreadySupported)
	assert.ErrorIs(t, f.engine.AddSupportedToken(ctx, bob, types.BytesToAddress([]byte{0x44}), 1), serr.ErrUnauthorized)
}

func TestAddSupportedToken_RegistryFull(t *testing.T) {
	f := newPool(t, 1, 0, 0)
	limit := f.engine.Params().MaxSupportedAssets

	for i := 1; i < limit; i++ {
		require.NoError(t, f.engine.AddSupportedToken(ctx, admin, types.BytesToAddress([]byte{0x50, byte(i)}), 1))
	}
	err := f.engine.AddSupportedToken(ctx, admin, types.BytesToAddress([]byte{0x60}), 1)
	assert.ErrorIs(t, err, serr.ErrRegistryFull)

	pool, err := f.engine.Pool()
	require.NoError(t, err)
	assert.Len(t, pool.SupportedAssets, limit)
}

func TestUpdateAdmin(t *testing.T) {
	f := newPool(t, 1, 0, 0)

	assert.ErrorIs(t, f.engine.UpdateAdmin(ctx, bob, bob), serr.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.UpdateAdmin(ctx, admin, types.ZeroAddress), serr.ErrInvalidConfig)
	require.NoError(t, f.engine.UpdateAdmin(ctx, admin, bob))

	pool, err := f.engine.Pool()
	require.NoError(t, err)
	assert.Equal(t, bob, pool.Admin)

	assert.ErrorIs(t, f.engine.AddSupportedToken(ctx, admin, extraMint, 1), serr.ErrUnauthorized)
	assert.NoError(t, f.engine.AddSupportedToken(ctx, bob, extraMint, 1))
}

func TestUpdateRewardRate(t *testing.T) {
	f := newPool(t, 1, 0, 0)
	require.NoError(t, f.engine.AddSupportedToken(ctx, admin, extraMint, 1))

	require.NoError(t, f.engine.UpdateRewardRate(ctx, admin, stakeMint, 7))
	require.NoError(t, f.engine.UpdateRewardRate(ctx, admin, extraMint, 3))
	assert.ErrorIs(t, f.engine.UpdateRewardRate(ctx, admin, types.BytesToAddress([]byte{0x77}), 3), serr.ErrUnsupportedToken)
	assert.ErrorIs(t, f.engine.UpdateRewardRate(ctx, bob, stakeMint, 3), serr.ErrUnauthorized)

	pool, err := f.engine.Pool()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), pool.RewardRate)
	assert.Equal(t, uint64(7), pool.SupportedAssets[0].RewardRate)
	assert.Equal(t, uint64(3), pool.SupportedAssets[1].RewardRate)
}

func TestFundTreasury(t *testing.T) {
	f := newPool(t, 1, 0, 0)
	f.credit(t, rewardMint, admin, 1_000)

	assert.ErrorIs(t, f.engine.FundTreasury(ctx, admin, 0), serr.ErrInvalidAmount)
	assert.ErrorIs(t, f.engine.FundTreasury(ctx, admin, 1_001), serr.ErrInsufficientBalance)

	f.credit(t, rewardMint, bob, 10)
	assert.ErrorIs(t, f.engine.FundTreasury(ctx, bob, 10), serr.ErrUnauthorized)

	require.NoError(t, f.engine.FundTreasury(ctx, admin, 600))
	assert.Equal(t, uint64(600), f.treasury(t))
	assert.Equal(t, uint64(400), f.balance(t, admin, rewardMint))
	assert.Equal(t, uint64(10), f.balance(t, bob, rewardMint))
}

func TestClosePool_ReturnsTreasuryToAdmin(t *testing.T) {
	f := newPool(t, 1, 0, 0)
	f.credit(t, rewardMint, admin, 10_000)
	require.NoError(t, f.engine.FundTreasury(ctx, admin, 7_500))

	before := f.balance(t, admin, rewardMint)
	pre := f.treasury(t)
	pool, err := f.engine.Pool()
	require.NoError(t, err)

	_, err = f.engine.ClosePool(ctx, bob)
	assert.ErrorIs(t, err, serr.ErrUnauthorized)

	residual, err := f.engine.ClosePool(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, pre, residual)
	assert.Equal(t, before+pre, f.balance(t, admin, rewardMint))

	exists, err := f.stores.Balances.Exists(rewardMint, pool.Treasury)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.engine.Pool()
	assert.ErrorIs(t, err, serr.ErrPoolNotInitialized)
	_, err = f.engine.ClosePool(ctx, admin)
	assert.ErrorIs(t, err, serr.ErrPoolNotInitialized)
}

func TestClosePool_RefusesWhileStaked(t *testing.T) {
	f := newPool(t, 0, 0, 0)
	f.credit(t, stakeMint, alice, 100)
	require.NoError(t, f.engine.Stake(ctx, alice, stakeMint, 100))

	_, err := f.engine.ClosePool(ctx, admin)
	assert.ErrorIs(t, err, serr.ErrStakeOutstanding)

	_, err = f.engine.Unstake(ctx, alice, stakeMint, 100)
	require.NoError(t, err)
	_, err = f.engine.ClosePool(ctx, admin)
	assert.NoError(t, err)
}

func TestClosePool_ThenReinitialize(t *testing.T) {
	f := newPool(t, 1, 0, 0)
	_, err := f.engine.ClosePool(ctx, admin)
	require.NoError(t, err)

	_, err = f.engine.InitializePool(ctx, bob, 2, 0, extraMint, rewardMint)
	require.NoError(t, err)
	pool, err := f.engine.Pool()
	require.NoError(t, err)
	assert.Equal(t, bob, pool.Admin)
}

func TestClosePool_ReinitializeSameAssetStartsFreshAccounts(t *testing.T) {
	f := newPool(t, 0, 100, 0)
	f.credit(t, stakeMint, alice, 100)
	require.NoError(t, f.engine.Stake(ctx, alice, stakeMint, 100))
	f.clock.Advance(100)
	_, err := f.engine.Unstake(ctx, alice, stakeMint, 100)
	require.NoError(t, err)
	_, err = f.engine.ClosePool(ctx, admin)
	require.NoError(t, err)

	all, err := f.stores.Accounts.List()
	require.NoError(t, err)
	assert.Empty(t, all)

	const week = int64(604_800)
	_, err = f.engine.InitializePool(ctx, admin, 0, week, stakeMint, rewardMint)
	require.NoError(t, err)
	accounts, err := f.engine.StakeAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	require.NoError(t, f.engine.Stake(ctx, alice, stakeMint, 100))
	acc := f.account(t, alice, stakeMint)
	assert.Equal(t, f.clock.Now()+week, acc.UnlockTime)
	assert.Equal(t, f.clock.Now(), acc.RecentUpdateTime)
	assert.Zero(t, acc.ClaimPoints)
	assert.Equal(t, f.engine.PoolAddress(), acc.Pool)

	_, err = f.engine.Unstake(ctx, alice, stakeMint, 100)
	assert.ErrorIs(t, err, serr.ErrStakeLocked)
}

func TestInitializePool_ConcurrentBindsOnePool(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, asset := range []types.Address{stakeMint, extraMint} {
			wg.Add(1)
			go func(j int, asset types.Address) {
				defer wg.Done()
				_, errs[j] = f.engine.InitializePool(ctx, admin, 1, 0, asset, rewardMint)
			}(j, asset)
		}
		wg.Wait()

		winner := stakeMint
		if errs[0] != nil {
			winner = extraMint
			require.NoError(t, errs[1])
			assert.ErrorIs(t, errs[0], serr.ErrPoolAlreadyInitialized)
		} else {
			assert.ErrorIs(t, errs[1], serr.ErrPoolAlreadyInitialized)
		}

		pool, err := f.engine.Pool()
		require.NoError(t, err)
		assert.Equal(t, winner, pool.StakingAsset)
	}
}

func TestStakeAccounts_RequiresPool(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.StakeAccounts()
	assert.ErrorIs(t, err, serr.ErrPoolNotInitialized)
}

func TestEngine_PublishesAfterCommit(t *testing.T) {
	f := newPool(t, 1, 0, 1_000)
	_, ch := f.bus.SubscribeActor(alice)

	f.credit(t, stakeMint, alice, 50)
	assert.Error(t, f.engine.Stake(ctx, alice, stakeMint, 51))
	require.NoError(t, f.engine.Stake(ctx, alice, stakeMint, 50))

	select {
	case ev := <-ch:
		require.Equal(t, events.EventStaked, ev.Type())
		staked := ev.(*events.Staked)
		assert.Equal(t, uint64(50), staked.Amount)
		assert.Equal(t, f.engine.PoolAddress(), staked.Pool())
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
	assert.Len(t, ch, 0)
}
