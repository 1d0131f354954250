package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect and refresh facet metadata",
}

var metaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the facet metadata computed from the catalog",
	Args:  cobra.NoArgs,
	RunE:  runMetaShow,
}

var metaRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Tell every running server to recompute facet metadata",
	Args:  cobra.NoArgs,
	RunE:  runMetaRefresh,
}

func init() {
	metaCmd.AddCommand(metaShowCmd)
	metaCmd.AddCommand(metaRefreshCmd)
	rootCmd.AddCommand(metaCmd)
}

func runMetaShow(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), func(rt runtime) error {
		meta, err := rt.ComputeMeta(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute search meta: %w", err)
		}
		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	})
}

func runMetaRefresh(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), func(rt runtime) error {
		meta, err := rt.ComputeMeta(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute search meta: %w", err)
		}
		cmd.Printf("Brands: %d, categories: %d, colors: %d\n", len(meta.Brands), len(meta.Categories), len(meta.Colors))
		return publish(cmd, rt)
	})
}
