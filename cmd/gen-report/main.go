// Command gen-report prints a Markdown recon summary of one or more enriched
// target JSON files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"bounty-recon/internal/logging"
	"bounty-recon/internal/reporting"
)

var errUsage = errors.New("usage")

var (
	render  bool
	format  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gen-report <file.json> [file.json ...]",
	Short: "Summarize enriched target files as Markdown",
	Long: `Each input may be a list of targets, an object with a "targets" list (the
refresh-tvl output), or a single target object. Missing paths are skipped and
unreadable files are reported on stderr. Output goes to stdout.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errUsage
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

func init() {
	rootCmd.Flags().BoolVar(&render, "render", false, "render the Markdown for the terminal")
	rootCmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or csv")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println("Usage: gen-report <file1.json> [file2.json ...]")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	summary := reporting.NewGenerator(logger).Generate(args)

	var out string
	switch format {
	case "markdown", "md":
		out = reporting.RenderMarkdown(summary)
		if render {
			out, err = renderTerminal(out)
			if err != nil {
				return err
			}
		}
	case "csv":
		out = reporting.RenderCSV(summary)
	default:
		return fmt.Errorf("unknown format %q (want markdown or csv)", format)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func renderTerminal(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
