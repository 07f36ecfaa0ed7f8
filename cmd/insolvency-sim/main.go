// Command insolvency-sim reads {"assets_usd", "liabilities_usd", "loss_usd"}
// from stdin and prints the post-loss balance and solvency status as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bounty-recon/internal/impact"
)

var rootCmd = &cobra.Command{
	Use:           "insolvency-sim < balance.json",
	Short:         "Check whether a loss leaves a protocol insolvent",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := impact.ReadBalanceSheet(cmd.InOrStdin())
		if err != nil {
			return err
		}
		result, err := impact.Insolvency(sheet)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
