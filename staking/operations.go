package staking

import (
	"context"
	"fmt"

	"github.com/mezonai/stakeledger/accrual"
	"github.com/mezonai/stakeledger/db"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/events"
	"github.com/mezonai/stakeledger/guard"
	"github.com/mezonai/stakeledger/ledger"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/monitoring"
	"github.com/mezonai/stakeledger/types"
)

// Stake escrows amount of asset from caller into the asset's vault. The first
// stake creates caller's account and starts its lock period.
func (e *Engine) Stake(ctx context.Context, caller, asset types.Address, amount uint64) (err error) {
	defer func() { e.record(OpStake, err) }()

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
	i, ok := pool.FindAsset(asset)
	if !ok {
		return serr.ErrUnsupportedToken
	}
	entry := pool.SupportedAssets[i]

	accAddr, accBump, err := StakeAccountAddress(e.params, caller, addr, asset)
	if err != nil {
		return err
	}
	unlockRest := e.lockMore(addr, accAddr, caller, entry.Vault)
	defer unlockRest()

	now := e.clock.Now()
	stored, err := e.accounts.GetByAddr(accAddr)
	if err != nil {
		return err
	}

	var acc *types.StakeAccount
	if stored == nil {
		unlockTime, err := accrual.AddDuration(now, pool.LockDuration)
		if err != nil {
			return err
		}
		acc = &types.StakeAccount{
			Address:          accAddr,
			Pool:             addr,
			Owner:            caller,
			Asset:            asset,
			RecentUpdateTime: now,
			UnlockTime:       unlockTime,
			Bump:             accBump,
		}
	} else {
		if err := guard.RequireOwner(stored, caller); err != nil {
			return err
		}
		acc = stored.Clone()
	}

	if err := accrual.Update(acc, now, e.params); err != nil {
		return err
	}

	sess := e.bank.Begin()
	if err := sess.Move(caller, entry.Vault, asset, amount, ledger.SignerAuthority(caller)); err != nil {
		return err
	}

	if acc.StakedAmount, err = accrual.Add(acc.StakedAmount, amount); err != nil {
		return err
	}
	next := pool.Clone()
	if next.SupportedAssets[i].TotalStaked, err = accrual.Add(entry.TotalStaked, amount); err != nil {
		return err
	}

	err = e.commit(sess, func(batch db.DatabaseBatch) error {
		if err := e.accounts.StagePut(batch, acc); err != nil {
			return err
		}
		return e.pools.StagePut(batch, next)
	})
	if err != nil {
		return err
	}

	logx.Info("STAKING", fmt.Sprintf("Staked %d of %s by %s | total_staked=%d | points=%d",
		amount, asset, caller, acc.StakedAmount, acc.ClaimPoints/e.params.PointsPerUnitPerDay))
	monitoring.SetTotalStaked(asset.String(), next.SupportedAssets[i].TotalStaked)
	e.publish(events.NewStaked(addr, acc, amount, now))
	return nil
}

// Unstake returns amount of asset from the vault to caller once the lock has
// expired, and pays the reward earned by amount since the last update out of
// the treasury.
func (e *Engine) Unstake(ctx context.Context, caller, asset types.Address, amount uint64) (reward uint64, err error) {
	defer func() { e.record(OpUnstake, err) }()

	if amount == 0 {
		return 0, serr.ErrInvalidAmount
	}

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return 0, err
	}
	i, ok := pool.FindAsset(asset)
	if !ok {
		return 0, serr.ErrUnsupportedToken
	}
	entry := pool.SupportedAssets[i]

	accAddr, _, err := StakeAccountAddress(e.params, caller, addr, asset)
	if err != nil {
		return 0, err
	}
	unlockRest := e.lockMore(addr, accAddr, caller, entry.Vault, pool.Treasury)
	defer unlockRest()

	stored, err := e.accounts.GetByAddr(accAddr)
	if err != nil {
		return 0, err
	}
	if err := guard.RequireOwner(stored, caller); err != nil {
		return 0, err
	}
	if amount > stored.StakedAmount {
		return 0, serr.Newf(serr.ErrCodeInsufficientStake, "staked %d, requested %d", stored.StakedAmount, amount)
	}

	now := e.clock.Now()
	if now < stored.UnlockTime {
		return 0, serr.Newf(serr.ErrCodeStakeLocked, "locked until %d", stored.UnlockTime)
	}

	acc := stored.Clone()
	elapsed, err := accrual.Elapsed(acc.RecentUpdateTime, now)
	if err != nil {
		return 0, err
	}
	if err := accrual.Update(acc, now, e.params); err != nil {
		return 0, err
	}
	if reward, err = accrual.Reward(amount, elapsed, entry.RewardRate); err != nil {
		return 0, err
	}

	sess := e.bank.Begin()
	if err := sess.Move(entry.Vault, caller, asset, amount, vaultCapability(pool, entry)); err != nil {
		return 0, err
	}
	if reward > 0 {
		if err := sess.Move(pool.Treasury, caller, pool.RewardAsset, reward, treasuryCapability(pool)); err != nil {
			return 0, err
		}
	}

	if acc.StakedAmount, err = accrual.Sub(acc.StakedAmount, amount); err != nil {
		return 0, err
	}
	next := pool.Clone()
	if next.SupportedAssets[i].TotalStaked, err = accrual.Sub(entry.TotalStaked, amount); err != nil {
		return 0, err
	}

	err = e.commit(sess, func(batch db.DatabaseBatch) error {
		if err := e.accounts.StagePut(batch, acc); err != nil {
			return err
		}
		return e.pools.StagePut(batch, next)
	})
	if err != nil {
		return 0, err
	}

	logx.Info("STAKING", fmt.Sprintf("Unstaked %d of %s by %s | reward=%d | total_staked=%d | points=%d",
		amount, asset, caller, reward, acc.StakedAmount, acc.ClaimPoints/e.params.PointsPerUnitPerDay))
	monitoring.SetTotalStaked(asset.String(), next.SupportedAssets[i].TotalStaked)
	if reward > 0 {
		monitoring.AddRewardsPaid(reward)
		e.reportTreasury(pool)
	}
	e.publish(events.NewUnstaked(addr, acc, amount, reward, now))
	return reward, nil
}

// ClaimRewards pays staked × elapsed × rate out of the treasury and resets the
// account's points. The staked balance is not touched.
func (e *Engine) ClaimRewards(ctx context.Context, caller, asset types.Address) (reward uint64, err error) {
	defer func() { e.record(OpClaimRewards, err) }()

	addr, unlock, err := e.lockPool(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	pool, err := e.loadPool(addr)
	if err != nil {
		return 0, err
	}
	i, ok := pool.FindAsset(asset)
	if !ok {
		return 0, serr.ErrUnsupportedToken
	}
	entry := pool.SupportedAssets[i]

	accAddr, _, err := StakeAccountAddress(e.params, caller, addr, asset)
	if err != nil {
		return 0, err
	}
	unlockRest := e.lockMore(addr, accAddr, caller, pool.Treasury)
	defer unlockRest()

	stored, err := e.accounts.GetByAddr(accAddr)
	if err != nil {
		return 0, err
	}
	if err := guard.RequireOwner(stored, caller); err != nil {
		return 0, err
	}

	now := e.clock.Now()
	acc := stored.Clone()
	elapsed, err := accrual.Elapsed(acc.RecentUpdateTime, now)
	if err != nil {
		return 0, err
	}
	if err := accrual.Update(acc, now, e.params); err != nil {
		return 0, err
	}
	if reward, err = accrual.Reward(acc.StakedAmount, elapsed, entry.RewardRate); err != nil {
		return 0, err
	}

	sess := e.bank.Begin()
	if reward > 0 {
		if err := sess.Move(pool.Treasury, caller, pool.RewardAsset, reward, treasuryCapability(pool)); err != nil {
			return 0, err
		}
	}
	acc.ClaimPoints = 0

	err = e.commit(sess, func(batch db.DatabaseBatch) error {
		return e.accounts.StagePut(batch, acc)
	})
	if err != nil {
		return 0, err
	}

	logx.Info("STAKING", fmt.Sprintf("Rewards claimed by %s for %s | reward=%d", caller, asset, reward))
	if reward > 0 {
		monitoring.AddRewardsPaid(reward)
		e.reportTreasury(pool)
	}
	e.publish(events.NewRewardsClaimed(addr, acc, reward, now))
	return reward, nil
}
