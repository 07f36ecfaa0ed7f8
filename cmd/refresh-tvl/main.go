// Command refresh-tvl enriches a bounty target list with live DefiLlama TVL,
// priority and risk fields, and writes the sorted report as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bounty-recon/internal/config"
	"bounty-recon/internal/defillama"
	"bounty-recon/internal/logging"
	"bounty-recon/internal/observability"
	"bounty-recon/internal/pipeline"
	"bounty-recon/internal/storage"
	chstore "bounty-recon/internal/storage/clickhouse"
	"bounty-recon/internal/storage/migrations"
	pgstore "bounty-recon/internal/storage/postgres"
)

const metricsNamespace = "bounty_recon"

var errUsage = errors.New("usage")

var (
	configPath    string
	envFile       string
	verbose       bool
	baseURL       string
	timeout       string
	postgresDSN   string
	clickhouseDSN string
	pushgateway   string
)

var rootCmd = &cobra.Command{
	Use:   "refresh-tvl <targets.yml> <output.json>",
	Short: "Refresh bounty targets with live TVL, priority and risk score",
	Long: `Reads a YAML (or JSON) list of bug bounty targets, overlays live TVL from
DefiLlama for known protocols, classifies priority, computes a heuristic risk
score, and writes the targets sorted by priority and TVL with run statistics.

A DefiLlama outage is not fatal: stored TVL values are kept and the run completes.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errUsage
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRefresh,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "optional YAML config file")
	f.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging (env "+config.EnvVerbose+")")
	f.StringVar(&baseURL, "base-url", "", "DefiLlama API base URL (env "+config.EnvDefiLlamaBaseURL+")")
	f.StringVar(&timeout, "timeout", "", "DefiLlama request timeout, e.g. 30s (env "+config.EnvDefiLlamaTimeout+")")
	f.StringVar(&postgresDSN, "postgres-dsn", "", "record run snapshots in PostgreSQL (env "+config.EnvPostgresDSN+")")
	f.StringVar(&clickhouseDSN, "clickhouse-dsn", "", "record live TVL points in ClickHouse (env "+config.EnvClickhouseDSN+")")
	f.StringVar(&pushgateway, "pushgateway", "", "push run metrics to this Pushgateway (env "+config.EnvPushgatewayURL+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "Usage: refresh-tvl <targets.yml> <output.json>")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics(metricsNamespace)

	client := defillama.NewHTTPClient(
		defillama.WithBaseURL(cfg.DefiLlama.BaseURL),
		defillama.WithTimeout(cfg.FetchTimeout()),
		defillama.WithLogger(logger),
		defillama.WithMetrics(metrics),
	)

	recorder, closeStores := openRecorder(ctx, cfg, logger, metrics)
	defer closeStores()

	refresh := pipeline.NewRefresh(client, logger).
		WithMetrics(metrics).
		WithRecorder(recorder)

	if _, err := refresh.Execute(ctx, args[0], args[1], os.Stderr); err != nil {
		return err
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logger.Warn("failed to push metrics", zap.String("url", cfg.Metrics.PushgatewayURL), zap.Error(err))
		}
	}
	return nil
}

// loadConfig layers defaults, the optional config file, the environment
// (after the dotenv file) and finally explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	config.LoadEnvFile(envFile)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("base-url") {
		cfg.DefiLlama.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		cfg.DefiLlama.Timeout = timeout
	}
	if flags.Changed("postgres-dsn") {
		cfg.Storage.PostgresDSN = postgresDSN
	}
	if flags.Changed("clickhouse-dsn") {
		cfg.Storage.ClickhouseDSN = clickhouseDSN
	}
	if flags.Changed("pushgateway") {
		cfg.Metrics.PushgatewayURL = pushgateway
	}
	return cfg, nil
}

// openRecorder connects the configured history stores. A store that cannot be
// reached is skipped with a warning; the refresh itself never depends on it.
func openRecorder(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*pipeline.Recorder, func()) {
	var (
		snapshots storage.SnapshotStore
		tvl       storage.TVLTimeseriesStore
		closers   []func()
	)

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err == nil {
			err = migrations.RunPostgresMigrations(ctx, pool)
			if err != nil {
				pool.Close()
			}
		}
		if err != nil {
			metrics.RecordStoreError("snapshots")
			logger.Warn("snapshot store unavailable", zap.Error(err))
		} else {
			snapshots = pgstore.NewSnapshotStore(pool)
			closers = append(closers, pool.Close)
		}
	}

	if dsn := cfg.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			metrics.RecordStoreError("tvl_timeseries")
			logger.Warn("TVL timeseries store unavailable", zap.Error(err))
		} else {
			tvl = chstore.NewTVLTimeseriesStore(conn)
			closers = append(closers, func() { _ = conn.Close() })
		}
	}

	if snapshots == nil && tvl == nil {
		return nil, func() {}
	}

	recorder := pipeline.NewRecorder(snapshots, tvl, logger).WithMetrics(metrics)
	return recorder, func() {
		for _, c := range closers {
			c()
		}
	}
}
