package store

import (
	"fmt"

	"github.com/mezonai/stakeledger/db"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/types"
)

type PoolStore interface {
	// GetByAddr returns the pool, or nil if it does not exist
	GetByAddr(addr types.Address) (*types.Pool, error)
	// StagePut writes pool into batch; nothing is visible until the batch
	// is committed
	StagePut(batch db.DatabaseBatch, pool *types.Pool) error
	// StageDelete removes the pool record in batch
	StageDelete(batch db.DatabaseBatch, addr types.Address)
}

type GenericPoolStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericPoolStore(dbProvider db.DatabaseProvider) (*GenericPoolStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericPoolStore{dbProvider: dbProvider}, nil
}

func (ps *GenericPoolStore) GetByAddr(addr types.Address) (*types.Pool, error) {
	data, err := ps.dbProvider.Get(poolKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get pool %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var pool types.Pool
	if err := jsonx.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool %s: %w", addr, err)
	}
	return &pool, nil
}

func (ps *GenericPoolStore) StagePut(batch db.DatabaseBatch, pool *types.Pool) error {
	data, err := jsonx.Marshal(pool)
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	batch.Put(poolKey(pool.Address), data)
	return nil
}

func (ps *GenericPoolStore) StageDelete(batch db.DatabaseBatch, addr types.Address) {
	batch.Delete(poolKey(addr))
}

func poolKey(addr types.Address) []byte {
	return []byte(PrefixPool + addr.String())
}
