package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crawlmd.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawlmd",
		Short: "Website crawler that saves content as structured markdown",
		Long: `crawlmd crawls websites breadth-first and saves their content as a single
structured markdown file. Every artifact it produces (reports, logs, tool
output) is plain ASCII.

Run crawls directly with 'crawlmd crawl', or expose the crawl capability
to MCP clients with 'crawlmd serve'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
