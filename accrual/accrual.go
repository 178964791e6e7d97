// Package accrual implements lazy, time-weighted reward accounting. Nothing
// ticks in the background: every mutating operation calls Update before it
// reads or changes a stake balance.
package accrual

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/stakeledger/config"
	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/types"
)

// Update accrues points on acc for the time elapsed since its last update and
// moves RecentUpdateTime to now. On error acc is left untouched.
func Update(acc *types.StakeAccount, now int64, p config.Params) error {
	elapsed, err := Elapsed(acc.RecentUpdateTime, now)
	if err != nil {
		return err
	}

	points := acc.ClaimPoints
	if elapsed > 0 && acc.StakedAmount > 0 {
		earned, err := PointsEarned(acc.StakedAmount, elapsed, p)
		if err != nil {
			return err
		}
		if points, err = Add(points, earned); err != nil {
			return err
		}
	}

	acc.ClaimPoints = points
	acc.RecentUpdateTime = now
	return nil
}

// Elapsed returns to-from in seconds. Time moving backwards is an error.
func Elapsed(from, to int64) (uint64, error) {
	if to < from {
		return 0, serr.Newf(serr.ErrCodeInvalidTimestamp, "now %d is before last update %d", to, from)
	}
	return uint64(to) - uint64(from), nil
}

// PointsEarned is staked × elapsed × PointsPerUnitPerDay ÷ AssetUnitScale ÷
// SecondsPerDay with floor division. The remainder is dropped.
func PointsEarned(staked, elapsed uint64, p config.Params) (uint64, error) {
	v, err := mul(staked, elapsed, p.PointsPerUnitPerDay)
	if err != nil {
		return 0, err
	}
	v.Div(v, uint256.NewInt(p.AssetUnitScale))
	v.Div(v, uint256.NewInt(p.SecondsPerDay))
	return toUint64(v)
}

// Reward is base × elapsed × rate, the payout owed for holding base units for
// elapsed seconds at rate reward units per unit per second.
func Reward(base, elapsed, rate uint64) (uint64, error) {
	if base == 0 || elapsed == 0 || rate == 0 {
		return 0, nil
	}
	v, err := mul(base, elapsed, rate)
	if err != nil {
		return 0, err
	}
	return toUint64(v)
}

func mul(a, b, c uint64) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow {
		return nil, serr.ErrOverflow
	}
	if _, overflow = v.MulOverflow(v, uint256.NewInt(c)); overflow {
		return nil, serr.ErrOverflow
	}
	return v, nil
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, serr.Newf(serr.ErrCodeOverflow, "value %s exceeds 64 bits", v.Dec())
	}
	return v.Uint64(), nil
}
