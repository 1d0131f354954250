package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	syncSince        string
	syncNoInvalidate bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push changed products into the search index",
	Long: `Upserts every product updated at or after --since into the search index.
When anything was written, running servers are told to recompute their facet
metadata unless --no-invalidate is given.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncSince, "since", "", "RFC 3339 watermark, e.g. 2024-01-01T00:00:00Z")
	syncCmd.Flags().BoolVar(&syncNoInvalidate, "no-invalidate", false, "do not broadcast a facet invalidation")
	_ = syncCmd.MarkFlagRequired("since")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	since, err := time.Parse(time.RFC3339, syncSince)
	if err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}

	return withRuntime(cmd.Context(), func(rt runtime) error {
		count, err := rt.Sync(cmd.Context(), since)
		if err != nil {
			return fmt.Errorf("sync failed after %d products: %w", count, err)
		}
		cmd.Printf("Synced %d products.\n", count)

		if count == 0 || syncNoInvalidate {
			return nil
		}
		return publish(cmd, rt)
	})
}

func publish(cmd *cobra.Command, rt runtime) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := rt.PublishInvalidation(ctx); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	cmd.Println("Facet invalidation published.")
	return nil
}
