package store

import (
	"fmt"

	"github.com/mezonai/stakeledger/db"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/types"
)

type StakeAccountStore interface {
	// GetByAddr returns the stake account, or nil if it does not exist
	GetByAddr(addr types.Address) (*types.StakeAccount, error)
	StagePut(batch db.DatabaseBatch, acc *types.StakeAccount) error
	// StageDelete removes the stake account record in batch
	StageDelete(batch db.DatabaseBatch, addr types.Address)
	// List returns every stake account, in key order
	List() ([]*types.StakeAccount, error)
	// ListByPool returns the stake accounts opened in pool
	ListByPool(pool types.Address) ([]*types.StakeAccount, error)
}

type GenericStakeAccountStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericStakeAccountStore(dbProvider db.DatabaseProvider) (*GenericStakeAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericStakeAccountStore{dbProvider: dbProvider}, nil
}

func (ss *GenericStakeAccountStore) GetByAddr(addr types.Address) (*types.StakeAccount, error) {
	data, err := ss.dbProvider.Get(stakeKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get stake account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var acc types.StakeAccount
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stake account %s: %w", addr, err)
	}
	return &acc, nil
}

func (ss *GenericStakeAccountStore) StagePut(batch db.DatabaseBatch, acc *types.StakeAccount) error {
	data, err := jsonx.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal stake account: %w", err)
	}
	batch.Put(stakeKey(acc.Address), data)
	return nil
}

func (ss *GenericStakeAccountStore) StageDelete(batch db.DatabaseBatch, addr types.Address) {
	batch.Delete(stakeKey(addr))
}

func (ss *GenericStakeAccountStore) ListByPool(pool types.Address) ([]*types.StakeAccount, error) {
	all, err := ss.List()
	if err != nil {
		return nil, err
	}
	var accounts []*types.StakeAccount
	for _, acc := range all {
		if acc.Pool == pool {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (ss *GenericStakeAccountStore) List() ([]*types.StakeAccount, error) {
	iterable, ok := ss.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("provider %T does not support iteration", ss.dbProvider)
	}

	var (
		accounts []*types.StakeAccount
		decodeErr error
	)
	err := iterable.IteratePrefix([]byte(PrefixStake), func(key, value []byte) bool {
		var acc types.StakeAccount
		if err := jsonx.Unmarshal(value, &acc); err != nil {
			logx.Error("STAKE_STORE", "Failed to decode ", string(key), ": ", err)
			decodeErr = fmt.Errorf("failed to unmarshal %s: %w", key, err)
			return false
		}
		accounts = append(accounts, &acc)
		return true
	})
	if err != nil {
		return nil, err
	}
	return accounts, decodeErr
}

func stakeKey(addr types.Address) []byte {
	return []byte(PrefixStake + addr.String())
}
