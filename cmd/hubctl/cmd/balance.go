package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the connected account and its balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := setupApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.session.Connect(ctx); err != nil {
			return err
		}

		state := a.session.State()
		fmt.Println("Account:", state.Account.Hex())
		fmt.Printf("Balance: %s ETH\n", a.controller.BalanceDecimal())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
