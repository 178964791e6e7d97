package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakeledger/utils"
)

var assetFlag string

var stakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Escrow tokens into the pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			asset, err := a.assetOrStaking(assetFlag)
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return a.engine.Stake(context.Background(), caller, asset, amount)
		})
	},
}

var unstakeCmd = &cobra.Command{
	Use:   "unstake <amount>",
	Short: "Withdraw staked tokens after the lock period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			asset, err := a.assetOrStaking(assetFlag)
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(args[0])
			if err != nil {
				return err
			}
			reward, err := a.engine.Unstake(context.Background(), caller, asset, amount)
			if err != nil {
				return err
			}
			fmt.Printf("Unstaked %s, reward %s\n", utils.FormatAmount(amount), utils.FormatAmount(reward))
			return nil
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Collect the rewards earned since the last update",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			caller, err := signer()
			if err != nil {
				return err
			}
			asset, err := a.assetOrStaking(assetFlag)
			if err != nil {
				return err
			}
			reward, err := a.engine.ClaimRewards(context.Background(), caller, asset)
			if err != nil {
				return err
			}
			fmt.Printf("Claimed %s\n", utils.FormatAmount(reward))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{stakeCmd, unstakeCmd, claimCmd} {
		c.Flags().StringVarP(&assetFlag, "asset", "a", "", "Asset to act on, the staking asset when empty")
		rootCmd.AddCommand(c)
	}
}
