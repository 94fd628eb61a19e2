package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the hub contract deployment and show contract info",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := setupApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		result := a.ledger.VerifyDeployment(ctx)
		fmt.Println("Contract deployed: ", result.Exists)
		fmt.Println("Functions present:", result.FunctionsExist)
		if result.Err != nil {
			return result.Err
		}

		info, err := a.ledger.ContractInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Owner:           ", info.Owner.Hex())
		fmt.Println("Platform wallet: ", info.PlatformWallet.Hex())
		fmt.Println("Payment token:   ", info.PaymentToken.Hex())
		fmt.Printf("Platform fee:     %s%%\n", info.PlatformFeePercentage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
