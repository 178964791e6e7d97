package store

import (
	"fmt"

	"github.com/mezonai/stakeledger/db"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/types"
)

type BalanceStore interface {
	// Get returns the amount of asset held by addr, zero if no record exists
	Get(asset, addr types.Address) (uint64, error)
	// Exists reports whether a balance record exists, even a zero one
	Exists(asset, addr types.Address) (bool, error)
	StagePut(batch db.DatabaseBatch, bal types.Balance) error
	StageDelete(batch db.DatabaseBatch, asset, addr types.Address)
}

type GenericBalanceStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericBalanceStore(dbProvider db.DatabaseProvider) (*GenericBalanceStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericBalanceStore{dbProvider: dbProvider}, nil
}

func (bs *GenericBalanceStore) Get(asset, addr types.Address) (uint64, error) {
	data, err := bs.dbProvider.Get(balanceKey(asset, addr))
	if err != nil {
		return 0, fmt.Errorf("could not get balance %s/%s from db: %w", asset, addr, err)
	}
	if data == nil {
		return 0, nil
	}

	var bal types.Balance
	if err := jsonx.Unmarshal(data, &bal); err != nil {
		return 0, fmt.Errorf("failed to unmarshal balance %s/%s: %w", asset, addr, err)
	}
	return bal.Amount, nil
}

func (bs *GenericBalanceStore) Exists(asset, addr types.Address) (bool, error) {
	return bs.dbProvider.Has(balanceKey(asset, addr))
}

func (bs *GenericBalanceStore) StagePut(batch db.DatabaseBatch, bal types.Balance) error {
	data, err := jsonx.Marshal(bal)
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}
	batch.Put(balanceKey(bal.Asset, bal.Address), data)
	return nil
}

func (bs *GenericBalanceStore) StageDelete(batch db.DatabaseBatch, asset, addr types.Address) {
	batch.Delete(balanceKey(asset, addr))
}

func balanceKey(asset, addr types.Address) []byte {
	return []byte(PrefixBalance + asset.String() + ":" + addr.String())
}
