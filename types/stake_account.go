package types

// StakeAccount is the per-owner, per-asset ledger record. Pool is the pool
// the account was opened in; closing that pool deletes the account.
type StakeAccount struct {
	Address          Address `json:"address"`
	Pool             Address `json:"pool"`
	Owner            Address `json:"owner"`
	Asset            Address `json:"asset"`
	StakedAmount     uint64  `json:"staked_amount"`
	ClaimPoints      uint64  `json:"claim_points"`
	RecentUpdateTime int64   `json:"recent_update_time"`
	UnlockTime       int64   `json:"unlock_time"`
	Bump             uint8   `json:"bump"`
}

func (a *StakeAccount) Clone() *StakeAccount {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Balance is the amount of one asset held by one address in the custody
// ledger.
type Balance struct {
	Asset   Address `json:"asset"`
	Address Address `json:"address"`
	Amount  uint64  `json:"amount"`
}
