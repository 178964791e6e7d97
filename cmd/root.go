package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakeledger/logx"
)

var rootCmd = &cobra.Command{
	Use:   "stakeledger",
	Short: "Staking ledger CLI",
	Long: `Command line interface for a single-pool staking ledger: escrow stakes,
accrue time-weighted rewards and pay them out of an admin-funded treasury.`,
	SilenceUsage: true,
}

var globalFlags struct {
	PoolConfig string
	NodeConfig string
	Pool       string
	Signer     string
	Now        int64
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&globalFlags.PoolConfig, "config", "c", "config/pool.yml", "Pool genesis file")
	flags.StringVar(&globalFlags.NodeConfig, "node-config", "config/config.ini", "Node settings file")
	flags.StringVar(&globalFlags.Pool, "pool", "", "Pool address, derived from the staking asset when empty")
	flags.StringVarP(&globalFlags.Signer, "signer", "s", "", "Address of the caller")
	flags.Int64Var(&globalFlags.Now, "now", 0, "Override the current unix time")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
