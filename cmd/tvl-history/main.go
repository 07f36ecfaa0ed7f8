// Command tvl-history prints the recorded refresh history of one target:
// run snapshots from PostgreSQL and live TVL points from ClickHouse.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bounty-recon/internal/config"
	"bounty-recon/internal/domain"
	"bounty-recon/internal/enrich"
	"bounty-recon/internal/logging"
	chstore "bounty-recon/internal/storage/clickhouse"
	pgstore "bounty-recon/internal/storage/postgres"
)

var (
	name          string
	limit         int
	since         time.Duration
	postgresDSN   string
	clickhouseDSN string
	configPath    string
	envFile       string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:           "tvl-history --name <target>",
	Short:         "Show stored refresh snapshots and live TVL points for a target",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHistory,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&name, "name", "", "target name, e.g. Aave")
	f.IntVar(&limit, "limit", 20, "max snapshots to show (0 for all)")
	f.DurationVar(&since, "since", 30*24*time.Hour, "TVL point window ending now")
	f.StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL DSN (env "+config.EnvPostgresDSN+")")
	f.StringVar(&clickhouseDSN, "clickhouse-dsn", "", "ClickHouse DSN (env "+config.EnvClickhouseDSN+")")
	f.StringVar(&configPath, "config", "", "optional YAML config file")
	f.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = rootCmd.MarkFlagRequired("name")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	config.LoadEnvFile(envFile)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("postgres-dsn") {
		cfg.Storage.PostgresDSN = postgresDSN
	}
	if cmd.Flags().Changed("clickhouse-dsn") {
		cfg.Storage.ClickhouseDSN = clickhouseDSN
	}
	if cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickhouseDSN == "" {
		return errors.New("no store configured: set --postgres-dsn and/or --clickhouse-dsn")
	}

	out := cmd.OutOrStdout()

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()

		history, err := pgstore.NewSnapshotStore(pool).GetTargetHistory(ctx, name, limit)
		if err != nil {
			return fmt.Errorf("load snapshots: %w", err)
		}
		logger.Debug("loaded snapshots", zap.String("name", name), zap.Int("count", len(history)))
		printSnapshots(out, history)
	}

	if dsn := cfg.Storage.ClickhouseDSN; dsn != "" {
		slug, ok := enrich.SlugFor(name)
		if !ok {
			logger.Warn("target has no DefiLlama slug, skipping TVL points", zap.String("name", name))
			return nil
		}

		conn, err := chstore.NewConn(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close()

		end := time.Now().UTC()
		points, err := chstore.NewTVLTimeseriesStore(conn).GetBySlug(ctx, slug, end.Add(-since), end)
		if err != nil {
			return fmt.Errorf("load TVL points: %w", err)
		}
		printPoints(out, slug, points)
	}
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printSnapshots(w io.Writer, history []*domain.TargetSnapshot) {
	fmt.Fprintf(w, "Snapshots for %s (%d)\n", name, len(history))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GENERATED", "RUN", "PRIORITY", "RISK", "TVL", "BOUNTY", "SOURCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, s := range history {
		t.Row(
			s.GeneratedAt.Format(time.RFC3339),
			s.RunID,
			string(s.Priority),
			strconv.Itoa(s.RiskScore),
			wholeDollars(s.TVLUSD),
			wholeDollars(s.MaxBountyUSD),
			s.TVLSource,
		)
	}
	fmt.Fprintln(w, t.Render())
}

// wholeDollars renders v rounded to the nearest dollar with thousands separators.
func wholeDollars(v float64) string {
	return "$" + humanize.Commaf(math.Round(v))
}

func printPoints(w io.Writer, slug string, points []*domain.TVLPoint) {
	fmt.Fprintf(w, "Live TVL for %s (%d points)\n", slug, len(points))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("OBSERVED", "TVL", "CHANGE", "RUN")
	var prev float64
	for _, p := range points {
		change := ""
		if prev > 0 {
			change = enrich.FormatChange((p.TVLUSD - prev) / prev * 100)
		}
		prev = p.TVLUSD
		t.Row(
			humanize.Time(p.ObservedAt),
			enrich.FormatUSD(p.TVLUSD),
			change,
			p.RunID,
		)
	}
	fmt.Fprintln(w, t.Render())
}
