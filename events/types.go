package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mezonai/stakeledger/types"
)

// EventType is an enum-like string type for staking events
type EventType string

const (
	EventPoolInitialized EventType = "PoolInitialized"
	EventTokenAdded      EventType = "TokenAdded"
	EventAdminUpdated    EventType = "AdminUpdated"
	EventTreasuryFunded  EventType = "TreasuryFunded"
	EventStaked          EventType = "Staked"
	EventUnstaked        EventType = "Unstaked"
	EventRewardsClaimed  EventType = "RewardsClaimed"
	EventPoolClosed      EventType = "PoolClosed"
)

// StakingEvent is published after an operation has been committed
type StakingEvent interface {
	ID() string
	Type() EventType
	Timestamp() time.Time
	Pool() types.Address
	// Actor is the caller that triggered the operation
	Actor() types.Address
}

type base struct {
	id        string
	eventType EventType
	pool      types.Address
	actor     types.Address
	timestamp time.Time
}

func newBase(t EventType, pool, actor types.Address, at int64) base {
	return base{
		id:        uuid.Must(uuid.NewV7()).String(),
		eventType: t,
		pool:      pool,
		actor:     actor,
		timestamp: time.Unix(at, 0).UTC(),
	}
}

func (b base) ID() string { return b.id }
func (b base) Type() EventType { return b.eventType }
func (b base) Timestamp() time.Time { return b.timestamp }
func (b base) Pool() types.Address { return b.pool }
func (b base) Actor() types.Address { return b.actor }

type PoolInitialized struct {
	base
	StakingAsset types.Address
	RewardAsset  types.Address
	RewardRate   uint64
	LockDuration int64
}

func NewPoolInitialized(pool *types.Pool, at int64) *PoolInitialized {
	return &PoolInitialized{
		base:         newBase(EventPoolInitialized, pool.Address, pool.Admin, at),
		StakingAsset: pool.StakingAsset,
		RewardAsset:  pool.RewardAsset,
		RewardRate:   pool.RewardRate,
		LockDuration: pool.LockDuration,
	}
}

type TokenAdded struct {
	base
	Asset      types.Address
	RewardRate uint64
}

func NewTokenAdded(pool, admin, asset types.Address, rewardRate uint64, at int64) *TokenAdded {
	return &TokenAdded{
		base:       newBase(EventTokenAdded, pool, admin, at),
		Asset:      asset,
		RewardRate: rewardRate,
	}
}

type AdminUpdated struct {
	base
	NewAdmin types.Address
}

func NewAdminUpdated(pool, oldAdmin, newAdmin types.Address, at int64) *AdminUpdated {
	return &AdminUpdated{
		base:     newBase(EventAdminUpdated, pool, oldAdmin, at),
		NewAdmin: newAdmin,
	}
}

type TreasuryFunded struct {
	base
	Amount  uint64
	Balance uint64
}

func NewTreasuryFunded(pool, funder types.Address, amount, balance uint64, at int64) *TreasuryFunded {
	return &TreasuryFunded{
		base:    newBase(EventTreasuryFunded, pool, funder, at),
		Amount:  amount,
		Balance: balance,
	}
}

type Staked struct {
	base
	Asset        types.Address
	Amount       uint64
	StakedAmount uint64
	UnlockTime   int64
}

func NewStaked(pool types.Address, acc *types.StakeAccount, amount uint64, at int64) *Staked {
	return &Staked{
		base:         newBase(EventStaked, pool, acc.Owner, at),
		Asset:        acc.Asset,
		Amount:       amount,
		StakedAmount: acc.StakedAmount,
		UnlockTime:   acc.UnlockTime,
	}
}

type Unstaked struct {
	base
	Asset        types.Address
	Amount       uint64
	Reward       uint64
	StakedAmount uint64
}

func NewUnstaked(pool types.Address, acc *types.StakeAccount, amount, reward uint64, at int64) *Unstaked {
	return &Unstaked{
		base:         newBase(EventUnstaked, pool, acc.Owner, at),
		Asset:        acc.Asset,
		Amount:       amount,
		Reward:       reward,
		StakedAmount: acc.StakedAmount,
	}
}

type RewardsClaimed struct {
	base
	Asset  types.Address
	Reward uint64
}

func NewRewardsClaimed(pool types.Address, acc *types.StakeAccount, reward uint64, at int64) *RewardsClaimed {
	return &RewardsClaimed{
		base:   newBase(EventRewardsClaimed, pool, acc.Owner, at),
		Asset:  acc.Asset,
		Reward: reward,
	}
}

type PoolClosed struct {
	base
	Residual uint64
}

func NewPoolClosed(pool, admin types.Address, residual uint64, at int64) *PoolClosed {
	return &PoolClosed{
		base:     newBase(EventPoolClosed, pool, admin, at),
		Residual: residual,
	}
}
