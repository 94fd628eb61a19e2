package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase <resource-id>",
	Short: "Purchase a listed resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resourceID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid resource id %q", args[0])
		}

		ctx, cancel := commandContext()
		defer cancel()

		a, err := setupApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.controller.ConnectAndLoad(ctx); err != nil {
			return err
		}

		if err := a.controller.Purchase(ctx, resourceID); err != nil {
			return err
		}

		fmt.Printf("Resource %d purchased. Balance: %s ETH\n",
			resourceID, a.controller.BalanceDecimal())

		// 购买后归属已从账本重新派生，给出检索地址
		snap := a.controller.Snapshot()
		for _, e := range snap.Entries {
			if e.Resource.ID == resourceID && e.Owned {
				fmt.Println("Content URL:", a.controller.ResolveContent(e.Resource.ContentID))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purchaseCmd)
}
