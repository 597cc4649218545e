package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlmd/crawlmd/internal/config"
	"github.com/crawlmd/crawlmd/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl outcomes",
		Long: `History lists past crawl invocations recorded in the history database,
newest first. Failed crawls are recorded too, with the stage that failed.

Examples:
  # Show the ten most recent crawls
  crawlmd history

  # Show the last three crawls as JSON
  crawlmd history --limit 3 --json

  # Show the pages of one recorded crawl
  crawlmd history --pages 42`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of crawls to list")
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of text")
	cmd.Flags().Int64("pages", 0, "List the pages of the crawl with this ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	crawlID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}

	// Open read-only: a missing database means nothing was recorded yet.
	db, err := database.Open(config.XDGDataDir(), database.Options{})
	if err != nil {
		return fmt.Errorf("no crawl history found: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if crawlID != 0 {
		pages, err := db.PagesForCrawl(ctx, crawlID)
		if err != nil {
			return err
		}
		if asJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(pages)
		}
		for _, p := range pages {
			fmt.Fprintf(out, "[%s] %3d depth=%d %s\n",
				p.Classification, p.StatusCode, p.Depth, p.URL)
		}
		return nil
	}

	records, err := db.RecentCrawls(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No crawls recorded yet.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(out, "#%d  %s  %s\n", r.ID, r.StartTime.Format(time.RFC3339), r.StartURL)
		if r.Error != "" {
			fmt.Fprintf(out, "    failed: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(out, "    %d pages (%d successful, %d failed, %d not found, %d forbidden) in %.2fs\n",
			r.TotalPages, r.SuccessfulPages, r.FailedPages,
			r.NotFoundPages, r.ForbiddenPages, r.DurationSeconds)
		fmt.Fprintf(out, "    %s\n", r.FilePath)
	}
	return nil
}
