package config

// AssetConfig is an additional asset registered right after pool creation.
type AssetConfig struct {
	Asset      string `yaml:"asset"`
	RewardRate uint64 `yaml:"reward_rate"`
}

// GenesisBalance seeds an external balance through the ledger faucet.
type GenesisBalance struct {
	Address string `yaml:"address"`
	Asset   string `yaml:"asset"`
	Amount  uint64 `yaml:"amount"`
}

// PoolGenesis holds the configuration from pool.yml
type PoolGenesis struct {
	ProgramID       string           `yaml:"program_id"`
	Admin           string           `yaml:"admin"`
	StakingAsset    string           `yaml:"staking_asset"`
	RewardAsset     string           `yaml:"reward_asset"`
	RewardRate      uint64           `yaml:"reward_rate"`
	LockDuration    int64            `yaml:"lock_duration"`
	SupportedAssets []AssetConfig    `yaml:"supported_assets"`
	Balances        []GenesisBalance `yaml:"balances"`
}

// ConfigFile is the top-level structure for pool.yml
type ConfigFile struct {
	Pool PoolGenesis `yaml:"pool"`
}

type StoreConfig struct {
	Type          string `ini:"type"`
	Directory     string `ini:"directory"`
	RedisAddr     string `ini:"redis_addr"`
	RedisDB       int    `ini:"redis_db"`
	PostgresDSN   string `ini:"postgres_dsn"`
	PostgresTable string `ini:"postgres_table"`
}

type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
}

type MetricsConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

type ClockConfig struct {
	NTPServer string `ini:"ntp_server"`
}

// NodeConfig is the content of config.ini.
type NodeConfig struct {
	Store   StoreConfig
	Log     LogConfig
	Metrics MetricsConfig
	Clock   ClockConfig
}
