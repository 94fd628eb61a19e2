package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and verify the ledger setup",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := setupApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		account, err := a.session.Connect(ctx)
		if err != nil {
			return err
		}

		chainID, err := a.cli.ChainID(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Connected.")
		fmt.Println("Account: ", account.Hex())
		fmt.Println("Chain ID:", chainID)

		result := a.ledger.VerifyDeployment(ctx)
		if result.Err != nil {
			return result.Err
		}
		fmt.Println("Contract: OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
