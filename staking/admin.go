package staking

import (
	"context"
	"fmt"

	"github.com/mezonai/stakeledger/db"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/events"
	"github.com/mezonai/stakeledger/guard"
	"github.com/mezonai/stakeledger/ledger"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/monitoring"
	"github.com/mezonai/stakeledger/types"
)

// InitializePool creates the pool for stakingAsset with caller as admin. The
// staking asset becomes entry 0 of the asset registry at rewardRate.
func (e *Engine) InitializePool(ctx context.Context, caller types.Address, rewardRate uint64, lockDuration int64, stakingAsset, rewardAsset types.Address) (pool *types.Pool, err error) {
	defer func() { e.record(OpInitializePool, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if caller.IsZero() {
		return nil, serr.NewError(serr.ErrCodeUnauthorized, "admin cannot be empty")
	}
	if stakingAsset.IsZero() || rewardAsset.IsZero() {
		return nil, serr.NewError(serr.ErrCodeInvalidConfig, "assets cannot be empty")
	}
	if lockDuration < 0 {
		return nil, serr.Newf(serr.ErrCodeInvalidConfig, "lock duration %d is negative", lockDuration)
	}

	addr, poolBump, err := PoolAddress(e.params, stakingAsset)
	if err != nil {
		return nil, err
	}

	e.initMu.Lock()
	defer e.initMu.Unlock()
	if bound := e.PoolAddress(); !bound.IsZero() && bound != addr {
		existing, err := e.pools.GetByAddr(bound)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, serr.Newf(serr.ErrCodePoolAlreadyInitialized, "engine already serves pool %s", bound)
		}
	}

	unlock := e.locks.Lock(addr)
	defer unlock()

	existing, err := e.pools.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serr.ErrPoolAlreadyInitialized
	}

	treasury, treasuryBump, err := deriveTreasury(e.params, addr)
	if err != nil {
		return nil, err
	}
	vault, vaultBump, err := deriveVault(e.params, addr, stakingAsset)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	pool = &types.Pool{
		Address:      addr,
		Admin:        caller,
		StakingAsset: stakingAsset,
		RewardAsset:  rewardAsset,
		RewardRate:   rewardRate,
		LockDuration: lockDuration,
		Treasury:     treasury,
		PoolBump:     poolBump,
		TreasuryBump: treasuryBump,
		SupportedAssets: []types.SupportedAsset{{
			Asset:      stakingAsset,
			Vault:      vault,
			VaultBump:  vaultBump,
			RewardRate: rewardRate,
		}},
		CreatedAt: now,
	}

	err = e.commit(nil, func(batch db.DatabaseBatch) error {
		return e.pools.StagePut(batch, pool)
	})
	if err != nil {
		return nil, err
	}
	e.bind(addr)

	logx.Info("STAKING", fmt.Sprintf("Pool %s initialized | admin=%s | staking_asset=%s | reward_asset=%s | reward_rate=%d | lock_duration=%d",
		addr, caller, stakingAsset, rewardAsset, rewardRate, lockDuration))
	e.publish(events.NewPoolInitialized(pool, now))
	return pool.Clone(), nil
}

// AddSupportedToken registers asset with its own vault and reward rate
func (e *Engine) AddSupportedToken(ctx context.Context, caller, asset types.Address, rewardRate uint64) (err error) {
	defer func() { e.record(OpAddSupportedToken, err) }()

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return err
	}
	if err := guard.RequireAdmin(pool, caller); err != nil {
		return err
	}
	if asset.IsZero() {
		return serr.NewError(serr.ErrCodeInvalidConfig, "asset cannot be empty")
	}
	if _, ok := pool.FindAsset(asset); ok {
		return serr.ErrTokenAlreadySupported
	}
	if len(pool.SupportedAssets) >= e.params.MaxSupportedAssets {
		return serr.Newf(serr.ErrCodeRegistryFull, "registry holds %d assets", len(pool.SupportedAssets))
	}

	vault, vaultBump, err := deriveVault(e.params, addr, asset)
	if err != nil {
		return err
	}

	next := pool.Clone()
	next.SupportedAssets = append(next.SupportedAssets, types.SupportedAsset{
		Asset:      asset,
		Vault:      vault,
		VaultBump:  vaultBump,
		RewardRate: rewardRate,
	})

	err = e.commit(nil, func(batch db.DatabaseBatch) error {
		return e.pools.StagePut(batch, next)
	})
	if err != nil {
		return err
	}

	logx.Info("STAKING", fmt.Sprintf("Token %s added to pool %s | reward_rate=%d | vault=%s", asset, addr, rewardRate, vault))
	e.publish(events.NewTokenAdded(addr, caller, asset, rewardRate, e.clock.Now()))
	return nil
}

// UpdateRewardRate changes the rate of a registered asset. Time not yet
// accrued by an account is paid at the new rate.
func (e *Engine) UpdateRewardRate(ctx context.Context, caller, asset types.Address, rewardRate uint64) (err error) {
	defer func() { e.record(OpUpdateRewardRate, err) }()

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return err
	}
	if err := guard.RequireAdmin(pool, caller); err != nil {
		return err
	}
	i, ok := pool.FindAsset(asset)
	if !ok {
		return serr.ErrUnsupportedToken
	}

	next := pool.Clone()
	next.SupportedAssets[i].RewardRate = rewardRate
	if asset == next.StakingAsset {
		next.RewardRate = rewardRate
	}

	err = e.commit(nil, func(batch db.DatabaseBatch) error {
		return e.pools.StagePut(batch, next)
	})
	if err != nil {
		return err
	}

	logx.Info("STAKING", fmt.Sprintf("Reward rate of %s set to %d", asset, rewardRate))
	return nil
}

// UpdateAdmin hands the pool over to newAdmin
func (e *Engine) UpdateAdmin(ctx context.Context, caller, newAdmin types.Address) (err error) {
	defer func() { e.record(OpUpdateAdmin, err) }()

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return err
	}
	if err := guard.RequireAdmin(pool, caller); err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return serr.NewError(serr.ErrCodeInvalidConfig, "new admin cannot be empty")
	}

	next := pool.Clone()
	next.Admin = newAdmin

	err = e.commit(nil, func(batch db.DatabaseBatch) error {
		return e.pools.StagePut(batch, next)
	})
	if err != nil {
		return err
	}

	logx.Info("STAKING", fmt.Sprintf("Pool %s admin changed from %s to %s", addr, caller, newAdmin))
	e.publish(events.NewAdminUpdated(addr, caller, newAdmin, e.clock.Now()))
	return nil
}

// FundTreasury moves amount of the reward asset from the admin to the
// treasury
func (e *Engine) FundTreasury(ctx context.Context, caller types.Address, amount uint64) (err error) {
	defer func() { e.record(OpFundTreasury, err) }()

	if amount == 0 {
		return serr.ErrInvalidAmount
	}

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return err
	}
	if err := guard.RequireAdmin(pool, caller); err != nil {
		return err
	}

	unlockRest := e.lockMore(addr, caller, pool.Treasury)
	defer unlockRest()

	sess := e.bank.Begin()
	if err := sess.Move(caller, pool.Treasury, pool.RewardAsset, amount, ledger.SignerAuthority(caller)); err != nil {
		return err
	}
	balance, err := sess.Balance(pool.RewardAsset, pool.Treasury)
	if err != nil {
		return err
	}
	if err := e.commit(sess, nil); err != nil {
		return err
	}

	logx.Info("STAKING", fmt.Sprintf("Treasury %s funded with %d | balance=%d", pool.Treasury, amount, balance))
	monitoring.SetTreasuryBalance(balance)
	e.publish(events.NewTreasuryFunded(addr, caller, amount, balance, e.clock.Now()))
	return nil
}

// ClosePool pays the remaining treasury to the admin, releases the custody
// records and deletes the pool together with its stake accounts. It refuses
// while any asset is still staked.
func (e *Engine) ClosePool(ctx context.Context, caller types.Address) (residual uint64, err error) {
	defer func() { e.record(OpClosePool, err) }()

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return 0, err
	}
	if err := guard.RequireAdmin(pool, caller); err != nil {
		return 0, err
	}
	for _, entry := range pool.SupportedAssets {
		if entry.TotalStaked > 0 {
			return 0, serr.Newf(serr.ErrCodeStakeOutstanding, "%d of %s still staked", entry.TotalStaked, entry.Asset)
		}
	}

	accounts, err := e.accounts.ListByPool(addr)
	if err != nil {
		return 0, err
	}

	held := []types.Address{caller, pool.Treasury}
	for _, entry := range pool.SupportedAssets {
		held = append(held, entry.Vault)
	}
	for _, acc := range accounts {
		if acc.StakedAmount > 0 {
			return 0, serr.Newf(serr.ErrCodeStakeOutstanding, "account %s still stakes %d", acc.Address, acc.StakedAmount)
		}
		held = append(held, acc.Address)
	}
	unlockRest := e.lockMore(addr, held...)
	defer unlockRest()

	sess := e.bank.Begin()
	residual, err = sess.Release(pool.RewardAsset, pool.Treasury, caller, treasuryCapability(pool))
	if err != nil {
		return 0, err
	}
	for _, entry := range pool.SupportedAssets {
		if _, err := sess.Release(entry.Asset, entry.Vault, caller, vaultCapability(pool, entry)); err != nil {
			return 0, err
		}
	}

	err = e.commit(sess, func(batch db.DatabaseBatch) error {
		for _, acc := range accounts {
			e.accounts.StageDelete(batch, acc.Address)
		}
		e.pools.StageDelete(batch, addr)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logx.Info("STAKING", fmt.Sprintf("Pool %s closed | residual=%d returned to %s | accounts_removed=%d", addr, residual, caller, len(accounts)))
	monitoring.SetTreasuryBalance(0)
	e.publish(events.NewPoolClosed(addr, caller, residual, e.clock.Now()))
	return residual, nil
}
