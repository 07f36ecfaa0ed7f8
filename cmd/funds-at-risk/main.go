// Command funds-at-risk reads [{"amount": ..., "price_usd": ...}] from stdin
// and prints the total USD value with two decimals.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bounty-recon/internal/impact"
)

var rootCmd = &cobra.Command{
	Use:           "funds-at-risk < positions.json",
	Short:         "Sum amount × price_usd over the positions on stdin",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := impact.ReadPositions(cmd.InOrStdin())
		if err != nil {
			return err
		}
		total, err := impact.FundsAtRisk(positions)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), total)
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
