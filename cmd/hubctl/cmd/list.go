package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/auraCodesKM/resourcehub-sdk-go/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources in the Resource Hub catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		snap := a.controller.Snapshot()
		if len(snap.Entries) == 0 {
			fmt.Println("No resources found in the catalog.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRICE (ETH)\tLISTED\tOWNED")
		for _, e := range snap.Entries {
			owned := fmt.Sprintf("%v", e.Owned)
			if e.OwnershipDegraded {
				owned = "unknown"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\t%s\n",
				e.Resource.ID,
				e.Resource.Title,
				e.Resource.Category,
				utils.FormatWeiDecimal(e.Resource.PriceWei),
				e.Resource.Listed,
				owned)
		}
		w.Flush()

		if snap.Degraded {
			fmt.Println("\nWarning: ownership could not be confirmed for some entries.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
