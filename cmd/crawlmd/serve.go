package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crawlmd/crawlmd/internal/config"
	"github.com/crawlmd/crawlmd/internal/crawl"
	"github.com/crawlmd/crawlmd/internal/database"
	"github.com/crawlmd/crawlmd/internal/log"
	"github.com/crawlmd/crawlmd/internal/tool"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the crawl tool to MCP clients",
		Long: `Serve exposes the crawl capability as an MCP tool.

With the stdio transport (the default) the server speaks MCP over standard
input and output, which is how MCP clients usually launch tool servers.
With the sse transport it listens for Server-Sent Events connections on
localhost.

All logging goes to stderr so the stdio protocol stream stays clean.

Examples:
  # Serve over stdio (for MCP client integration)
  crawlmd serve

  # Serve over SSE on the default port
  crawlmd serve --transport sse

  # Serve over SSE on a custom port
  crawlmd serve --transport sse --port 9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("transport", "t", config.DefaultTransport,
		"MCP transport (stdio or sse)")
	cmd.Flags().IntP("port", "p", config.DefaultServePort,
		"Listen port for the sse transport")
	cmd.Flags().String("results-dir", "",
		"Directory for default-named reports")
	cmd.Flags().Bool("no-history", false,
		"Do not record crawl outcomes in the history database")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	if cfg.Transport, err = cmd.Flags().GetString("transport"); err != nil {
		return err
	}
	if cfg.Port, err = cmd.Flags().GetInt("port"); err != nil {
		return err
	}
	if cmd.Flags().Changed("results-dir") {
		if cfg.ResultsDir, err = cmd.Flags().GetString("results-dir"); err != nil {
			return err
		}
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.History = !noHistory

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Logging must stay on stderr: stdout belongs to the stdio transport.
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	return runServe(cfg, logger)
}

// runServe builds the orchestrator stack and serves it on the configured
// transport until the client disconnects or the listener fails.
func runServe(cfg *config.Config, logger *slog.Logger) error {
	opts := []crawl.Option{
		crawl.WithLogger(logger),
		crawl.WithResultsDir(cfg.ResultsDir),
	}

	if cfg.History {
		db, err := database.Open(cfg.DataDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		opts = append(opts, crawl.WithHistory(db))
	}

	orchestrator := crawl.New(newEngine(cfg), opts...)
	adapter := tool.NewAdapter(orchestrator, tool.WithAdapterLogger(logger))
	server := tool.NewServer(adapter, getVersion())

	switch cfg.Transport {
	case config.TransportSSE:
		logger.Info("serving MCP over SSE", "port", cfg.Port)
		return tool.ServeSSE(server, cfg.Port)
	default:
		logger.Info("serving MCP over stdio")
		return tool.ServeStdio(server)
	}
}
