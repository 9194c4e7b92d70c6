package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/pokemon-export/internal/exporter"
	"github.com/Sternrassler/pokemon-export/pkg/config"
	"github.com/Sternrassler/pokemon-export/pkg/logging"
	"github.com/Sternrassler/pokemon-export/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		// Usage errors only; export failures are logged and never fail the process.
		fmt.Fprintln(os.Stderr, err)
	}
}

type options struct {
	configPath  string
	baseURL     string
	output      string
	mode        string
	pageSize    int
	logLevel    string
	pretty      bool
	cache       string
	redisAddr   string
	rate        float64
	metricsFile string
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pokemon-export",
		Short: "Export every record of a paginated pokemon API to CSV.",
		Long: `Fetches {base_url}/pokemon to discover the record count, collects every
page of results and writes them to a CSV file whose header follows the
first record's field order.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			run(cmd.Context(), cfg, logOutput)
			return nil
		},
	}

	bindFlags(cmd.Flags(), opts)

	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (env "+config.EnvBaseURL+")")
	flags.StringVarP(&opts.output, "output", "o", "", "CSV output path (default results.csv)")
	flags.StringVar(&opts.mode, "mode", "", "pagination mode: paged or compat")
	flags.IntVar(&opts.pageSize, "page-size", 0, "records per page request (default 20)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable console logs")
	flags.StringVar(&opts.cache, "cache", "", "response cache: none, memory or redis")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the redis cache (env "+config.EnvRedisURL+")")
	flags.Float64Var(&opts.rate, "rate", 0, "max requests per second (0 = unlimited)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
}

// loadConfig applies defaults, the config file, the environment and then any
// flags that were set explicitly.
func loadConfig(flags *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if flags.Changed("base-url") {
		cfg.API.BaseURL = opts.baseURL
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}
	if flags.Changed("mode") {
		cfg.API.Mode = opts.mode
	}
	if flags.Changed("page-size") {
		cfg.API.PageSize = opts.pageSize
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = opts.pretty
	}
	if flags.Changed("cache") {
		cfg.Cache.Backend = opts.cache
	}
	if flags.Changed("redis-addr") {
		cfg.Cache.RedisAddr = opts.redisAddr
	}
	if flags.Changed("rate") {
		cfg.API.RatePerSecond = opts.rate
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}

	return cfg, nil
}

// run performs the export. Every failure is logged; none is returned.
func run(ctx context.Context, cfg *config.Config, logOutput io.Writer) exporter.Report {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: logOutput,
	})

	var report exporter.Report
	runner, cleanup, err := exporter.Build(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		logger.Error().Err(err).Msg("Exporter not started")
	} else {
		report = runner.Run(ctx)
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics textfile")
		}
	}

	return report
}
