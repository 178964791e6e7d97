package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakeledger/types"
	"github.com/mezonai/stakeledger/utils"
)

var initPoolConfig struct {
	SkipBalances bool
}

var initPoolCmd = &cobra.Command{
	Use:   "init-pool",
	Short: "Create the pool described by the genesis file",
	Long: `Creates the pool with the signer as admin (the genesis admin when --signer is
empty), registers the extra supported assets and seeds the genesis balances.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			g := a.genesis
			adminRaw := globalFlags.Signer
			if adminRaw == "" {
				adminRaw = g.Admin
			}
			admin, err := types.ParseAddress(adminRaw)
			if err != nil {
				return err
			}
			stakingAsset := types.MustParseAddress(g.StakingAsset)
			rewardAsset := types.MustParseAddress(g.RewardAsset)

			ctx := context.Background()
			pool, err := a.engine.InitializePool(ctx, admin, g.RewardRate, g.LockDuration, stakingAsset, rewardAsset)
			if err != nil {
				return err
			}
			for _, extra := range g.SupportedAssets {
				if err := a.engine.AddSupportedToken(ctx, admin, types.MustParseAddress(extra.Asset), extra.RewardRate); err != nil {
					return err
				}
			}

			if !initPoolConfig.SkipBalances {
				for _, b := range g.Balances {
					if err := a.engine.Bank().Credit(types.MustParseAddress(b.Asset), types.MustParseAddress(b.Address), b.Amount); err != nil {
						return err
					}
				}
			}

			fmt.Printf("Pool %s created\n  admin:    %s\n  treasury: %s\n", pool.Address, pool.Admin, pool.Treasury)
			return nil
		})
	},
}

var addTokenCmd = &cobra.Command{
	Use:   "add-token <asset> <reward_rate>",
	Short: "Register an additional stakeable asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			asset, err := types.ParseAddress(args[0])
			if err != nil {
				return err
			}
			rate, err := utils.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return a.engine.AddSupportedToken(context.Background(), caller, asset, rate)
		})
	},
}

var setRateCmd = &cobra.Command{
	Use:   "set-rate <asset> <reward_rate>",
	Short: "Change the reward rate of a registered asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			asset, err := types.ParseAddress(args[0])
			if err != nil {
				return err
			}
			rate, err := utils.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return a.engine.UpdateRewardRate(context.Background(), caller, asset, rate)
		})
	},
}

var updateAdminCmd = &cobra.Command{
	Use:   "update-admin <new_admin>",
	Short: "Hand the pool over to a new admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			newAdmin, err := types.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return a.engine.UpdateAdmin(context.Background(), caller, newAdmin)
		})
	},
}

var fundTreasuryCmd = &cobra.Command{
	Use:   "fund-treasury <amount>",
	Short: "Move reward tokens from the admin into the treasury",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return a.engine.FundTreasury(context.Background(), caller, amount)
		})
	},
}

var closePoolCmd = &cobra.Command{
	Use:   "close-pool",
	Short: "Return the treasury to the admin and remove the pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			residual, err := a.engine.ClosePool(context.Background(), caller)
			if err != nil {
				return err
			}
			fmt.Printf("Pool closed, %s returned to %s\n", utils.FormatAmount(residual), caller)
			return nil
		})
	},
}

func init() {
	initPoolCmd.Flags().BoolVar(&initPoolConfig.SkipBalances, "skip-balances", false, "Do not seed the genesis balances")

	rootCmd.AddCommand(initPoolCmd, addTokenCmd, setRateCmd, updateAdminCmd, fundTreasuryCmd, closePoolCmd)
}
