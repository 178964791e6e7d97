package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/mezonai/stakeledger/clock"
	"github.com/mezonai/stakeledger/config"
	"github.com/mezonai/stakeledger/events"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/staking"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

// app is everything a command needs, opened from the config files and flags
type app struct {
	genesis *config.PoolGenesis
	node    *config.NodeConfig
	params  config.Params
	stores  *store.Stores
	engine  *staking.Engine
	bus     *events.EventBus
	events  <-chan events.StakingEvent
}

func openApp() (*app, error) {
	genesis, err := config.LoadPoolGenesis(globalFlags.PoolConfig)
	if err != nil {
		return nil, err
	}

	node := &config.NodeConfig{Store: config.StoreConfig{Type: string(store.LevelDBStoreType), Directory: "./data/stakeledger"}}
	if _, statErr := os.Stat(globalFlags.NodeConfig); statErr == nil {
		if node, err = config.LoadNodeConfig(globalFlags.NodeConfig); err != nil {
			return nil, err
		}
	} else {
		logx.Warn("CMD", "Node config not found, using defaults: ", globalFlags.NodeConfig)
	}
	logx.Configure(node.Log.File, node.Log.MaxSizeMB, node.Log.MaxAgeDays)

	params := genesis.Params()
	stores, err := store.CreateStores(&store.StoreConfig{
		Type:          store.StoreType(node.Store.Type),
		Directory:     node.Store.Directory,
		RedisAddr:     node.Store.RedisAddr,
		RedisDB:       node.Store.RedisDB,
		PostgresDSN:   node.Store.PostgresDSN,
		PostgresTable: node.Store.PostgresTable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stores")
	}

	poolAddr, err := resolvePool(params, genesis)
	if err != nil {
		stores.MustClose()
		return nil, err
	}

	bus := events.NewEventBus()
	engine, err := staking.NewEngine(params, stores, staking.Options{
		Clock:    newClock(node.Clock),
		EventBus: bus,
		Pool:     poolAddr,
	})
	if err != nil {
		stores.MustClose()
		return nil, err
	}

	_, committed := bus.Subscribe()
	return &app{
		genesis: genesis,
		node:    node,
		params:  params,
		stores:  stores,
		engine:  engine,
		bus:     bus,
		events:  committed,
	}, nil
}

func (a *app) Close() {
	a.stores.MustClose()
}

func resolvePool(params config.Params, genesis *config.PoolGenesis) (types.Address, error) {
	if globalFlags.Pool != "" {
		return types.ParseAddress(globalFlags.Pool)
	}
	stakingAsset, err := types.ParseAddress(genesis.StakingAsset)
	if err != nil {
		return types.ZeroAddress, err
	}
	addr, _, err := staking.PoolAddress(params, stakingAsset)
	return addr, err
}

func newClock(cfg config.ClockConfig) clock.Clock {
	if globalFlags.Now > 0 {
		return clock.NewFixedClock(globalFlags.Now)
	}
	if cfg.NTPServer == "" {
		return clock.SystemClock{}
	}
	c := clock.NewNTPClock(cfg.NTPServer)
	// an unreachable server leaves the local clock uncorrected
	_ = c.Sync()
	return c
}

// signer returns the --signer address, which every mutating command needs
func signer() (types.Address, error) {
	if globalFlags.Signer == "" {
		return types.ZeroAddress, fmt.Errorf("--signer is required")
	}
	return types.ParseAddress(globalFlags.Signer)
}

// assetOrStaking parses raw, defaulting to the pool's staking asset
func (a *app) assetOrStaking(raw string) (types.Address, error) {
	if raw != "" {
		return types.ParseAddress(raw)
	}
	return types.ParseAddress(a.genesis.StakingAsset)
}

// printEvents writes the events committed so far to stdout
func (a *app) printEvents() {
	for {
		select {
		case ev := <-a.events:
			body, err := jsonx.Marshal(ev)
			if err != nil {
				logx.Error("CMD", "Failed to encode event: ", err)
				continue
			}
			fmt.Printf("%s %s %s\n", ev.Type(), ev.ID(), body)
		default:
			return
		}
	}
}

// withApp opens the app around fn
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := fn(a); err != nil {
		return err
	}
	a.printEvents()
	return nil
}
