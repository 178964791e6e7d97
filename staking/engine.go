package staking

import (
	"context"
	"fmt"
	"sync"

	"github.com/mezonai/stakeledger/clock"
	"github.com/mezonai/stakeledger/config"
	"github.com/mezonai/stakeledger/db"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/events"
	"github.com/mezonai/stakeledger/ledger"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/monitoring"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

const (
	OpInitializePool    = "initialize_pool"
	OpAddSupportedToken = "add_supported_token"
	OpUpdateRewardRate  = "update_reward_rate"
	OpUpdateAdmin       = "update_admin"
	OpFundTreasury      = "fund_treasury"
	OpStake             = "stake"
	OpUnstake           = "unstake"
	OpClaimRewards      = "claim_rewards"
	OpClosePool         = "close_pool"
)

// Options carries the optional collaborators of an Engine
type Options struct {
	// Clock defaults to the system clock
	Clock clock.Clock
	// EventBus receives an event after every committed operation
	EventBus *events.EventBus
	// Pool binds the engine to an existing pool. Left zero, the engine binds
	// to the pool created by InitializePool.
	Pool types.Address
}

// Engine runs the staking operations against one pool. Every operation is
// all-or-nothing: records are copied, mutated and written together with the
// ledger moves in a single batch, so a failure at any step leaves the stored
// state untouched.
type Engine struct {
	params    config.Params
	pools     store.PoolStore
	accounts  store.StakeAccountStore
	txManager *db.DBTxManager
	bank      *ledger.Bank
	locks     *ledger.AccountLocks
	clock     clock.Clock
	eventBus  *events.EventBus

	// initMu serializes InitializePool so that only one pool gets bound
	initMu sync.Mutex
	mu     sync.RWMutex
	pool   types.Address
}

func NewEngine(params config.Params, stores *store.Stores, opts Options) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, serr.NewError(serr.ErrCodeInvalidConfig, err.Error())
	}
	if stores == nil {
		return nil, fmt.Errorf("stores cannot be nil")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	locks := ledger.NewAccountLocks()
	return &Engine{
		params:    params,
		pools:     stores.Pools,
		accounts:  stores.Accounts,
		txManager: stores.TxManager,
		bank:      ledger.NewBank(params.ProgramID, stores.Balances, stores.TxManager, locks),
		locks:     locks,
		clock:     clk,
		eventBus:  opts.EventBus,
		pool:      opts.Pool,
	}, nil
}

func (e *Engine) Params() config.Params { return e.params }

// Bank exposes the custody ledger the engine moves funds through
func (e *Engine) Bank() *ledger.Bank { return e.bank }

// PoolAddress returns the bound pool address, zero if none yet
func (e *Engine) PoolAddress() types.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pool
}

func (e *Engine) bind(pool types.Address) {
	e.mu.Lock()
	e.pool = pool
	e.mu.Unlock()
}

// Pool returns a copy of the pool record
func (e *Engine) Pool() (*types.Pool, error) {
	addr := e.PoolAddress()
	if addr.IsZero() {
		return nil, serr.ErrPoolNotInitialized
	}
	return e.loadPool(addr)
}

// StakeAccount returns owner's stake account for asset
func (e *Engine) StakeAccount(owner, asset types.Address) (*types.StakeAccount, error) {
	pool := e.PoolAddress()
	if pool.IsZero() {
		return nil, serr.ErrPoolNotInitialized
	}
	addr, _, err := StakeAccountAddress(e.params, owner, pool, asset)
	if err != nil {
		return nil, err
	}
	acc, err := e.accounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, serr.ErrAccountNotFound
	}
	return acc, nil
}

// StakeAccounts lists the stake accounts of the bound pool
func (e *Engine) StakeAccounts() ([]*types.StakeAccount, error) {
	pool := e.PoolAddress()
	if pool.IsZero() {
		return nil, serr.ErrPoolNotInitialized
	}
	return e.accounts.ListByPool(pool)
}

// VaultBalance returns what the custody vault of asset holds
func (e *Engine) VaultBalance(asset types.Address) (uint64, error) {
	pool, err := e.Pool()
	if err != nil {
		return 0, err
	}
	i, ok := pool.FindAsset(asset)
	if !ok {
		return 0, serr.ErrUnsupportedToken
	}
	return e.bank.Balance(asset, pool.SupportedAssets[i].Vault)
}

// TreasuryBalance returns the reward reserve
func (e *Engine) TreasuryBalance() (uint64, error) {
	pool, err := e.Pool()
	if err != nil {
		return 0, err
	}
	return e.bank.Balance(pool.RewardAsset, pool.Treasury)
}

// Balance returns an external wallet balance
func (e *Engine) Balance(addr, asset types.Address) (uint64, error) {
	return e.bank.Balance(asset, addr)
}

func (e *Engine) loadPool(addr types.Address) (*types.Pool, error) {
	pool, err := e.pools.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, serr.ErrPoolNotInitialized
	}
	return pool, nil
}

// lockPool takes the pool lock. All operations go through it first, so the
// extra locks taken by lockMore are always acquired in the same order.
func (e *Engine) lockPool(ctx context.Context) (types.Address, func(), error) {
	if err := ctx.Err(); err != nil {
		return types.ZeroAddress, nil, err
	}
	addr := e.PoolAddress()
	if addr.IsZero() {
		return types.ZeroAddress, nil, serr.ErrPoolNotInitialized
	}
	return addr, e.locks.Lock(addr), nil
}

func (e *Engine) lockMore(pool types.Address, addrs ...types.Address) func() {
	rest := make([]types.Address, 0, len(addrs))
	for _, a := range addrs {
		if a != pool {
			rest = append(rest, a)
		}
	}
	return e.locks.Lock(rest...)
}

// commit writes the staged records and the ledger session in one batch
func (e *Engine) commit(sess *ledger.Session, stage func(batch db.DatabaseBatch) error) error {
	return e.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		if stage != nil {
			if err := stage(batch); err != nil {
				return err
			}
		}
		if sess == nil {
			return nil
		}
		return sess.Flush(batch)
	})
}

func (e *Engine) publish(event events.StakingEvent) {
	if e.eventBus != nil {
		e.eventBus.Publish(event)
	}
}

func (e *Engine) record(op string, err error) {
	monitoring.RecordOperation(op, err)
	if err != nil {
		logx.Warn("STAKING", fmt.Sprintf("%s failed: %v", op, err))
	}
}

func (e *Engine) reportTreasury(pool *types.Pool) {
	bal, err := e.bank.Balance(pool.RewardAsset, pool.Treasury)
	if err != nil {
		logx.Error("STAKING", "Failed to read treasury balance: ", err)
		return
	}
	monitoring.SetTreasuryBalance(bal)
}
