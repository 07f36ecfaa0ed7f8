// Command update-kpis prints event counts per target from the automation KPI log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bounty-recon/internal/kpi"
	"bounty-recon/internal/logging"
)

var (
	logPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "update-kpis",
	Short:         "Summarize the JSONL KPI log as [target, count] pairs",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		summary, err := kpi.SummarizeFile(logPath)
		if err != nil {
			return err
		}
		if summary.Skipped > 0 {
			logger.Debug("skipped malformed KPI lines", zap.String("path", logPath), zap.Int("lines", summary.Skipped))
		}
		return kpi.Render(cmd.OutOrStdout(), summary)
	},
}

func init() {
	rootCmd.Flags().StringVar(&logPath, "log", kpi.DefaultLogPath, "JSONL event log")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
