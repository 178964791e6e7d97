package staking

import (
	"github.com/mezonai/stakeledger/capability"
	"github.com/mezonai/stakeledger/config"
	"github.com/mezonai/stakeledger/types"
)

// PoolAddress returns the address of the pool staking stakingAsset.
func PoolAddress(p config.Params, stakingAsset types.Address) (types.Address, uint8, error) {
	c, addr, err := capability.Derive(p.ProgramID, config.LabelPool, stakingAsset)
	return addr, c.Bump, err
}

// StakeAccountAddress returns the address of owner's stake account for asset
// in pool.
func StakeAccountAddress(p config.Params, owner, pool, asset types.Address) (types.Address, uint8, error) {
	c, addr, err := capability.Derive(p.ProgramID, config.LabelStake, owner, pool, asset)
	return addr, c.Bump, err
}

func deriveTreasury(p config.Params, pool types.Address) (types.Address, uint8, error) {
	c, addr, err := capability.Derive(p.ProgramID, config.LabelTreasury, pool)
	return addr, c.Bump, err
}

func deriveVault(p config.Params, pool, asset types.Address) (types.Address, uint8, error) {
	c, addr, err := capability.Derive(p.ProgramID, config.LabelVault, pool, asset)
	return addr, c.Bump, err
}

// treasuryCapability rebuilds the signing token of the treasury from the
// pool record alone.
func treasuryCapability(pool *types.Pool) capability.Capability {
	return capability.Capability{
		Label: config.LabelTreasury,
		Owner: pool.Address,
		Bump:  pool.TreasuryBump,
	}
}

func vaultCapability(pool *types.Pool, entry types.SupportedAsset) capability.Capability {
	return capability.Capability{
		Label: config.LabelVault,
		Owner: pool.Address,
		Scope: []types.Address{entry.Asset},
		Bump:  entry.VaultBump,
	}
}
