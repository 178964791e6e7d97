package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/types"
)

// LoadPoolGenesis reads and parses the pool.yml file
func LoadPoolGenesis(path string) (*PoolGenesis, error) {
	logx.Info("CONFIG", "LoadPoolGenesis called with path: ", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pool genesis")
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, errors.Wrap(err, "failed to decode pool genesis YAML")
	}
	if err := cfgFile.Pool.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded pool genesis: staking_asset=%s reward_rate=%d lock_duration=%ds extra_assets=%d",
		cfgFile.Pool.StakingAsset, cfgFile.Pool.RewardRate, cfgFile.Pool.LockDuration, len(cfgFile.Pool.SupportedAssets)))
	return &cfgFile.Pool, nil
}

// Validate checks every address field parses and the lock is not negative.
func (g *PoolGenesis) Validate() error {
	fields := map[string]string{
		"admin":         g.Admin,
		"staking_asset": g.StakingAsset,
		"reward_asset":  g.RewardAsset,
	}
	if g.ProgramID != "" {
		fields["program_id"] = g.ProgramID
	}
	for name, value := range fields {
		if _, err := types.ParseAddress(value); err != nil {
			return errors.WithMessage(err, "invalid "+name)
		}
	}
	for i, a := range g.SupportedAssets {
		if _, err := types.ParseAddress(a.Asset); err != nil {
			return errors.WithMessagef(err, "invalid supported_assets[%d]", i)
		}
	}
	for i, b := range g.Balances {
		if _, err := types.ParseAddress(b.Address); err != nil {
			return errors.WithMessagef(err, "invalid balances[%d].address", i)
		}
		if _, err := types.ParseAddress(b.Asset); err != nil {
			return errors.WithMessagef(err, "invalid balances[%d].asset", i)
		}
	}
	if g.LockDuration < 0 {
		return fmt.Errorf("lock_duration cannot be negative: %d", g.LockDuration)
	}
	return nil
}

// Params builds the process-wide constants for this genesis.
func (g *PoolGenesis) Params() Params {
	if g.ProgramID == "" {
		return DefaultParams()
	}
	return NewParams(types.MustParseAddress(g.ProgramID))
}

// LoadNodeConfig reads the node settings from an .ini file
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	nodeCfg := &NodeConfig{
		Store: StoreConfig{Type: "leveldb", Directory: "./data/stakeledger", RedisAddr: "localhost:6379"},
	}
	sections := []struct {
		name   string
		target interface{}
	}{
		{"store", &nodeCfg.Store},
		{"log", &nodeCfg.Log},
		{"metrics", &nodeCfg.Metrics},
		{"clock", &nodeCfg.Clock},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, errors.Wrapf(err, "failed to map [%s] section", s.name)
		}
	}
	return nodeCfg, nil
}
