package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/iatifetch/internal/cache"
	"github.com/nao1215/iatifetch/internal/config"
	"github.com/nao1215/iatifetch/internal/database"
	"github.com/nao1215/iatifetch/internal/fetch"
	"github.com/nao1215/iatifetch/internal/ingest"
	"github.com/nao1215/iatifetch/internal/log"
	"github.com/nao1215/iatifetch/internal/model"
	"github.com/nao1215/iatifetch/internal/registry"
	"github.com/nao1215/iatifetch/internal/report"
)

// app bundles the wired components for one CLI invocation.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *database.Store
	orchestrator *registry.Orchestrator

	// closers run in reverse order on Close.
	closers []func() error
}

// Close releases the app's resources.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("cleanup failed", "error", err)
		}
	}
}

// newApp wires the cache, store, fetcher, scheduler, pipeline, and
// orchestrator from a validated config.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var responseCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redisCache.Close)
		responseCache = redisCache
		logger.Info("redis cache connected", "addr", cfg.RedisAddr)
	} else {
		responseCache = cache.NewMemory()
		logger.Info("using in-memory cache; responses will not survive this run")
	}

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	logger.Info("database opened", "dir", cfg.DBDir)

	client := fetch.NewHTTPClient(fetch.ClientConfig{
		Timeout:     cfg.Timeout,
		InsecureTLS: cfg.Insecure,
	})
	if cfg.Insecure {
		logger.Warn("TLS certificate verification disabled")
	}

	fetcher := fetch.NewFetcher(responseCache,
		fetch.WithHTTPClient(client),
		fetch.WithRequestLog(store),
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Timeout),
	)
	scheduler := fetch.NewScheduler(fetcher, int64(cfg.Concurrency),
		fetch.WithSchedulerLogger(logger),
		fetch.WithDelay(cfg.Delay),
	)
	pipeline := ingest.NewPipeline(store, fetcher,
		ingest.WithPipelineLogger(logger),
		ingest.WithActivities(cfg.IncludeActivities),
		ingest.WithOrganisations(cfg.IncludeOrganisations),
		ingest.WithUpdate(cfg.Update),
		ingest.WithDefaultLanguage(cfg.DefaultLanguage),
		ingest.WithBatchLimit(cfg.IngestBatch),
	)

	a.orchestrator = registry.NewOrchestrator(fetcher, scheduler, responseCache,
		registry.WithStore(store),
		registry.WithPipeline(pipeline),
		registry.WithLogger(logger),
		registry.WithAPIRoot(cfg.APIRoot),
		registry.WithCodelistIndexURL(cfg.CodelistIndexURL),
		registry.WithRows(cfg.Rows),
	)
	return a, nil
}

// runCommand is the shared execution path of the crawl-family commands:
// build the config, wire the app, dispatch, and write the report.
func runCommand(cmd *cobra.Command, kind registry.CommandKind) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	command := registry.Command{
		Kind: kind,
		Crawl: registry.CrawlOptions{
			Refresh:       cfg.Refresh,
			ExcludeCached: cfg.ExcludeCached,
		},
	}

	sum := model.NewSummary()
	runErr := a.orchestrator.Dispatch(ctx, command, sum)
	sum.Finish()

	if err := writeReport(cfg, sum.Snapshot()); err != nil {
		logger.Error("failed to write report", "error", err)
	}
	return runErr
}

// writeReport renders the summary in the configured format and destination.
func writeReport(cfg *config.Config, counts model.Counts) error {
	out := os.Stdout
	if cfg.ReportFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.ReportFile), 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		f, err := os.Create(cfg.ReportFile) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithIndent())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}

	_, err := w.Write(counts)
	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, applying config
// file overrides first so explicit flags win.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPathFlag

	// If the user explicitly specified a config file, error when missing.
	// Otherwise silently run on defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		f.Apply(cfg)
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	flags := cmd.Flags()
	if flags.Changed("api-root") {
		if cfg.APIRoot, err = flags.GetString("api-root"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rows") {
		if cfg.Rows, err = flags.GetInt("rows"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.Delay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("redis") {
		if cfg.RedisAddr, err = flags.GetString("redis"); err != nil {
			return nil, err
		}
	}

	if cfg.Refresh, err = flags.GetBool("refresh"); err != nil {
		return nil, err
	}
	if cfg.ExcludeCached, err = flags.GetBool("exclude-cached"); err != nil {
		return nil, err
	}
	if cfg.Insecure, err = flags.GetBool("insecure"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if flags.Lookup("index") != nil && flags.Changed("index") {
		if cfg.CodelistIndexURL, err = flags.GetString("index"); err != nil {
			return nil, err
		}
	}

	// Ingest-only flags exist on a subset of commands.
	if flags.Lookup("no-update") != nil {
		noUpdate, err := flags.GetBool("no-update")
		if err != nil {
			return nil, err
		}
		cfg.Update = !noUpdate
	}
	if flags.Lookup("no-activities") != nil {
		noActivities, err := flags.GetBool("no-activities")
		if err != nil {
			return nil, err
		}
		cfg.IncludeActivities = !noActivities
	}
	if flags.Lookup("no-organisations") != nil {
		noOrganisations, err := flags.GetBool("no-organisations")
		if err != nil {
			return nil, err
		}
		cfg.IncludeOrganisations = !noOrganisations
	}
	if flags.Lookup("language") != nil {
		if lang, err := flags.GetString("language"); err == nil && lang != "" {
			cfg.DefaultLanguage = lang
		} else if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// addCommonFlags registers the flags shared by the crawl-family commands.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("api-root", "a", config.DefaultAPIRoot,
		"Registry API root URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum concurrent fetches")
	cmd.Flags().IntP("rows", "r", config.DefaultRows,
		"package_search page size (must cover the largest publisher)")
	cmd.Flags().DurationP("delay", "d", 0,
		"Pause between request starts")
	cmd.Flags().Bool("refresh", false,
		"Evict cached responses before fetching")
	cmd.Flags().Bool("exclude-cached", false,
		"Skip XML resources that are already cached")
	cmd.Flags().Bool("insecure", false,
		"Disable TLS certificate verification")
	cmd.Flags().String("redis", "",
		"Redis address for the response cache (e.g., 127.0.0.1:6379)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the SQLite database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .iatifetch in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}
