package store

import (
	"fmt"

	"github.com/mezonai/stakeledger/db"
	"github.com/mezonai/stakeledger/logx"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// MemoryStoreType uses LevelDB on in-memory storage
	MemoryStoreType StoreType = "memory"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"

	// BoltStoreType keeps everything in one bbolt file under Directory
	BoltStoreType StoreType = "bolt"

	// PostgresStoreType uses a key/value table in PostgreSQL
	PostgresStoreType StoreType = "postgres"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`

	// RedisAddr and RedisDB select the Redis server for RedisStoreType
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db"`

	// PostgresDSN and PostgresTable select the table for PostgresStoreType
	PostgresDSN   string `json:"postgres_dsn" yaml:"postgres_dsn"`
	PostgresTable string `json:"postgres_table" yaml:"postgres_table"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	case PostgresStoreType:
		if sc.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn cannot be empty")
		}
		return nil
	case MemoryStoreType:
		return nil
	case "":
		return fmt.Errorf("store type cannot be empty")
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// Stores bundles every store built on one provider together with the batch
// manager that commits across them.
type Stores struct {
	Provider  db.DatabaseProvider
	TxManager *db.DBTxManager
	Pools     PoolStore
	Accounts  StakeAccountStore
	Balances  BalanceStore
}

// MustClose closes the shared provider.
func (s *Stores) MustClose() {
	if err := s.Provider.Close(); err != nil {
		logx.Error("STORE", "Failed to close db provider:", err.Error())
	}
}

// CreateStores opens the provider described by config and builds the stores
func CreateStores(config *StoreConfig) (*Stores, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	stores, err := NewStores(provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	return stores, nil
}

// NewStores builds the stores on an already opened provider
func NewStores(provider db.DatabaseProvider) (*Stores, error) {
	pools, err := NewGenericPoolStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool store: %w", err)
	}
	accounts, err := NewGenericStakeAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create stake account store: %w", err)
	}
	balances, err := NewGenericBalanceStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance store: %w", err)
	}

	return &Stores{
		Provider:  provider,
		TxManager: db.NewDBTxManager(provider),
		Pools:     pools,
		Accounts:  accounts,
		Balances:  balances,
	}, nil
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddr, config.RedisDB)
	case BoltStoreType:
		return db.NewBoltProvider(config.Directory)
	case PostgresStoreType:
		return db.NewPostgresProvider(config.PostgresDSN, config.PostgresTable)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
