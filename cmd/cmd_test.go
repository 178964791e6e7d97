package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakeledger/config"
	"github.com/mezonai/stakeledger/staking"
	"github.com/mezonai/stakeledger/store"
	"github.com/mezonai/stakeledger/types"
)

const (
	testAdmin        = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	testStakingAsset = "8Z2Ky7D9GwEwGk6qzj4zJZpHqWcwSXYx5xV8N1NwoTm1"
	testRewardAsset  = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func writeConfigs(t *testing.T) (poolPath, nodePath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")

	poolPath = filepath.Join(dir, "pool.yml")
	require.NoError(t, os.WriteFile(poolPath, []byte(`pool:
  admin: `+testAdmin+`
  staking_asset: `+testStakingAsset+`
  reward_asset: `+testRewardAsset+`
  reward_rate: 1
  lock_duration: 10
  balances:
    - address: `+testAdmin+`
      asset: `+testRewardAsset+`
      amount: 1000000
`), 0o644))

	nodePath = filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(nodePath, []byte(`[store]
type = leveldb
directory = `+dataDir+`

[log]
file = `+filepath.Join(dir, "stakeledger.log")+`
`), 0o644))
	return poolPath, nodePath, dataDir
}

func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "stakeledger %v", args)
}

func TestCLI_StakeLifecycle(t *testing.T) {
	poolPath, nodePath, dataDir := writeConfigs(t)
	common := []string{"--config", poolPath, "--node-config", nodePath, "--signer", testAdmin}
	with := func(args ...string) []string { return append(args, common...) }

	run(t, with("init-pool", "--now", "1000")...)
	run(t, with("fund-treasury", "500_000", "--now", "1000")...)
	run(t, with("credit", testAdmin, "1_000", "--now", "1000")...)
	run(t, with("stake", "600", "--now", "1000")...)
	run(t, with("unstake", "100", "--now", "1010")...)
	run(t, with("show", "--owner", testAdmin, "--now", "1010")...)

	stores, err := store.CreateStores(&store.StoreConfig{Type: store.LevelDBStoreType, Directory: dataDir})
	require.NoError(t, err)
	defer stores.MustClose()

	params := config.DefaultParams()
	stakingAsset := types.MustParseAddress(testStakingAsset)
	poolAddr, _, err := staking.PoolAddress(params, stakingAsset)
	require.NoError(t, err)

	pool, err := stores.Pools.GetByAddr(poolAddr)
	require.NoError(t, err)
	require.NotNil(t, pool)
	assert.Equal(t, uint64(500), pool.SupportedAssets[0].TotalStaked)

	treasury, err := stores.Balances.Get(types.MustParseAddress(testRewardAsset), pool.Treasury)
	require.NoError(t, err)
	// 100 unstaked after 10 seconds at rate 1
	assert.Equal(t, uint64(500_000-1_000), treasury)
}

func TestSigner_Required(t *testing.T) {
	globalFlags.Signer = ""
	_, err := signer()
	assert.Error(t, err)

	globalFlags.Signer = testAdmin
	addr, err := signer()
	require.NoError(t, err)
	assert.Equal(t, testAdmin, addr.String())
	globalFlags.Signer = ""
}
