package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/types"
	"github.com/mezonai/stakeledger/utils"
)

var showConfig struct {
	Owner string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pool, its custody balances and optionally one owner's accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			pool, err := a.engine.Pool()
			if err != nil {
				return err
			}
			body, err := jsonx.MarshalIndent(pool)
			if err != nil {
				return err
			}
			fmt.Println(string(body))

			treasury, err := a.engine.TreasuryBalance()
			if err != nil {
				return err
			}
			fmt.Printf("treasury %s: %s\n", utils.ShortenLog(pool.Treasury.String()), utils.FormatAmount(treasury))
			for _, entry := range pool.SupportedAssets {
				vault, err := a.engine.VaultBalance(entry.Asset)
				if err != nil {
					return err
				}
				fmt.Printf("vault %s (%s): %s\n", utils.ShortenLog(entry.Vault.String()), utils.ShortenLog(entry.Asset.String()), utils.FormatAmount(vault))
			}

			if showConfig.Owner == "" {
				return nil
			}
			owner, err := types.ParseAddress(showConfig.Owner)
			if err != nil {
				return err
			}
			return showOwner(a, pool, owner)
		})
	},
}

func showOwner(a *app, pool *types.Pool, owner types.Address) error {
	assets := []types.Address{pool.RewardAsset}
	for _, entry := range pool.SupportedAssets {
		assets = append(assets, entry.Asset)

		acc, err := a.engine.StakeAccount(owner, entry.Asset)
		if serr.CodeOf(err) == serr.ErrCodeAccountNotFound {
			continue
		}
		if err != nil {
			return err
		}
		body, err := jsonx.MarshalIndent(acc)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
	}

	for _, asset := range assets {
		bal, err := a.engine.Balance(owner, asset)
		if err != nil {
			return err
		}
		fmt.Printf("wallet %s: %s\n", utils.ShortenLog(asset.String()), utils.FormatAmount(bal))
	}
	return nil
}

var creditCmd = &cobra.Command{
	Use:   "credit <address> <amount>",
	Short: "Mint tokens to an address (test faucet)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			addr, err := types.ParseAddress(args[0])
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(args[1])
			if err != nil {
				return err
			}
			asset, err := a.assetOrStaking(creditAsset)
			if err != nil {
				return err
			}
			if err := a.engine.Bank().Credit(asset, addr, amount); err != nil {
				return err
			}
			fmt.Printf("Credited %s to %s\n", utils.FormatAmount(amount), addr)
			return nil
		})
	},
}

var creditAsset string

func init() {
	showCmd.Flags().StringVarP(&showConfig.Owner, "owner", "o", "", "Also print this owner's stake accounts and wallet")
	creditCmd.Flags().StringVarP(&creditAsset, "asset", "a", "", "Asset to mint, the staking asset when empty")

	rootCmd.AddCommand(showCmd, creditCmd)
}
