package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crawlmd/crawlmd/internal/config"
	"github.com/crawlmd/crawlmd/internal/crawl"
	"github.com/crawlmd/crawlmd/internal/database"
	"github.com/crawlmd/crawlmd/internal/engine"
	"github.com/crawlmd/crawlmd/internal/log"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl websites and save their content as markdown",
		Long: `Crawl fetches one or more websites breadth-first and writes each site's
content to a structured markdown file.

Pages that return 404 or 403, or whose content is an error page, are
counted in the final statistics but excluded from the report. Every
report is plain ASCII.

Examples:
  # Crawl a site two levels deep (the default)
  crawlmd crawl https://example.com

  # Crawl several sites concurrently
  crawlmd crawl --batch 4 https://a.example https://b.example

  # Follow links to other hosts
  crawlmd crawl --include-external https://example.com

  # Choose the output location and extraction strategy
  crawlmd crawl -o docs.md --strategy text https://example.com

Configuration file (.crawlmd) example:
  max_depth: 3
  requests_per_second: 1.0
  results_dir: ./crawl_results
  history: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link-following depth from the start page")
	cmd.Flags().BoolP("include-external", "e", false,
		"Follow links to hosts other than the start page's")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Maximum requests per second")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().StringP("strategy", "s", config.DefaultStrategy,
		"Content extraction strategy (markdown or text)")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt exclusion rules")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatch,
		"Number of concurrent crawls")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crawlmd in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (single url only)")
	cmd.Flags().String("results-dir", "",
		"Directory for default-named reports")
	cmd.Flags().Bool("no-history", false,
		"Do not record crawl outcomes in the history database")

	return cmd
}

// crawlFlags carries per-invocation settings that live outside Config.
type crawlFlags struct {
	outputFile string
	batchSize  int
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, flags, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if len(args) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}
	if flags.outputFile != "" && len(args) > 1 {
		return errors.New("--output requires a single url")
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	cfg.Verbose = verbose

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, flags, args, logger)
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

// buildCrawlConfig creates a Config from cobra command flags, with the
// configuration file applied first so flags the user set win.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, crawlFlags, error) {
	cfg := config.NewConfig()
	var flags crawlFlags

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, flags, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise a missing file just means defaults.
	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, flags, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if configPathFlag != "" {
		return nil, flags, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	// Flags override file values only when explicitly set.
	if cmd.Flags().Changed("max-depth") {
		if cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("include-external") {
		if cfg.IncludeExternal, err = cmd.Flags().GetBool("include-external"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("rate") {
		if cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("strategy") {
		if cfg.Strategy, err = cmd.Flags().GetString("strategy"); err != nil {
			return nil, flags, err
		}
	}
	if cmd.Flags().Changed("results-dir") {
		if cfg.ResultsDir, err = cmd.Flags().GetString("results-dir"); err != nil {
			return nil, flags, err
		}
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, flags, err
	}
	cfg.RespectRobots = cfg.RespectRobots && !noRobots

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, flags, err
	}
	cfg.History = cfg.History && !noHistory

	if flags.outputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, flags, err
	}
	if flags.batchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, flags, err
	}

	return cfg, flags, nil
}

// runCrawl executes the crawl against all targets.
func runCrawl(ctx context.Context, cfg *config.Config, flags crawlFlags, targets []string, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", targets,
		"maxDepth", cfg.MaxDepth,
		"batchSize", flags.batchSize,
		"history", cfg.History,
	)

	opts := []crawl.Option{
		crawl.WithLogger(logger),
		crawl.WithResultsDir(cfg.ResultsDir),
	}

	// Open the history database if outcome recording is enabled
	if cfg.History {
		db, err := database.Open(cfg.DataDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "path", db.Path())
		opts = append(opts, crawl.WithHistory(db))
	}

	orchestrator := crawl.New(newEngine(cfg), opts...)

	// Use concurrent crawling if multiple targets
	if len(targets) > 1 && flags.batchSize > 1 {
		return runBatchCrawl(ctx, cfg, flags, targets, orchestrator)
	}

	// Single target or sequential crawling
	return runSequentialCrawl(ctx, cfg, flags, targets, orchestrator)
}

// newEngine builds the HTTP crawl engine from the configuration.
func newEngine(cfg *config.Config) *engine.HTTPEngine {
	return engine.NewHTTPEngine(
		engine.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		engine.WithUserAgent(cfg.UserAgent),
		engine.WithMaxPages(cfg.MaxPages),
		engine.WithRequestsPerSecond(cfg.RequestsPerSecond),
		engine.WithRobotsPolicy(cfg.RespectRobots),
	)
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, flags crawlFlags, targets []string, orchestrator *crawl.Orchestrator) error {
	var failed int
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		outcome := orchestrator.Run(ctx, crawl.Request{
			URL:             target,
			MaxDepth:        cfg.MaxDepth,
			IncludeExternal: cfg.IncludeExternal,
			Verbose:         cfg.Verbose,
			OutputFile:      flags.outputFile,
			Strategy:        cfg.Strategy,
		})

		if outcome.Failed() {
			failed++
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %s\n", target, outcome.Err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s (%d successful, %d failed)\n",
			elapsed.Round(time.Millisecond),
			outcome.Stats.SuccessfulPages, outcome.Stats.FailedPages)
		fmt.Printf("Results saved to: %s\n\n", outcome.FilePath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d crawls failed", failed, len(targets))
	}
	return nil
}

// runBatchCrawl crawls multiple targets concurrently. Output is serialized
// so interleaved crawls do not garble the terminal.
func runBatchCrawl(ctx context.Context, cfg *config.Config, flags crawlFlags, targets []string, orchestrator *crawl.Orchestrator) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(targets), flags.batchSize)

	startTime := time.Now()

	var (
		mu     sync.Mutex
		failed int
		done   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(flags.batchSize)

	for _, target := range targets {
		g.Go(func() error {
			outcome := orchestrator.Run(gctx, crawl.Request{
				URL:             target,
				MaxDepth:        cfg.MaxDepth,
				IncludeExternal: cfg.IncludeExternal,
				Verbose:         cfg.Verbose,
				Strategy:        cfg.Strategy,
			})

			mu.Lock()
			defer mu.Unlock()
			done++

			if outcome.Failed() {
				failed++
				fmt.Fprintf(os.Stderr, "[%d/%d] Crawl error for %s: %s\n",
					done, len(targets), target, outcome.Err)
				return nil
			}

			fmt.Printf("[%d/%d] Crawl completed: %s\n", done, len(targets), target)
			fmt.Printf("Results saved to: %s\n", outcome.FilePath)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d crawls failed", failed, len(targets))
	}
	return nil
}
