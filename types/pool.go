package types

// SupportedAsset is one entry of the pool's asset registry. Each asset
// escrows into its own vault, addressed by a capability derived from the
// pool address and the asset.
type SupportedAsset struct {
	Asset       Address `json:"asset"`
	Vault       Address `json:"vault"`
	VaultBump   uint8   `json:"vault_bump"`
	RewardRate  uint64  `json:"reward_rate"`
	TotalStaked uint64  `json:"total_staked"`
}

// Pool is the admin-controlled configuration of a staking deployment.
// Entry 0 of SupportedAssets is always the staking asset.
type Pool struct {
	Address         Address          `json:"address"`
	Admin           Address          `json:"admin"`
	StakingAsset    Address          `json:"staking_asset"`
	RewardAsset     Address          `json:"reward_asset"`
	RewardRate      uint64           `json:"reward_rate"`   // reward units per staked unit per second
	LockDuration    int64            `json:"lock_duration"` // seconds
	Treasury        Address          `json:"treasury"`
	PoolBump        uint8            `json:"pool_bump"`
	TreasuryBump    uint8            `json:"treasury_bump"`
	SupportedAssets []SupportedAsset `json:"supported_assets"`
	CreatedAt       int64            `json:"created_at"`
}

// FindAsset returns the registry index of asset.
func (p *Pool) FindAsset(asset Address) (int, bool) {
	for i := range p.SupportedAssets {
		if p.SupportedAssets[i].Asset == asset {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy so an operation can mutate it and discard it on
// failure.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	cp := *p
	cp.SupportedAssets = make([]SupportedAsset, len(p.SupportedAssets))
	copy(cp.SupportedAssets, p.SupportedAssets)
	return &cp
}
