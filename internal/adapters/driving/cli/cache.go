package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cacheAccount string
	cacheExpired bool
	cacheResults bool
	cacheJSON    bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the listing and result caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache occupancy",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached site listings and optionally cached results",
	RunE:  runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "output as JSON")

	cacheClearCmd.Flags().StringVar(&cacheAccount, "account", "", "drop only this account's listing")
	cacheClearCmd.Flags().BoolVar(&cacheResults, "results", false, "also purge the disk-backed result cache")
	cacheClearCmd.Flags().BoolVar(&cacheExpired, "expired", false, "purge only expired result entries")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("site catalog not configured")
	}

	out := map[string]any{"listing": catalogService.CacheStats()}
	if resultCache != nil {
		stats, err := resultCache.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading result cache stats: %w", err)
		}
		out["results"] = stats
	}

	if cacheJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	listing := catalogService.CacheStats()
	cmd.Printf("Listing cache: %d entries (%d valid, %d expired), TTL %ds\n",
		listing.TotalEntries, listing.ValidEntries, listing.ExpiredEntries, listing.TTLSeconds)
	if resultCache != nil {
		stats, err := resultCache.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading result cache stats: %w", err)
		}
		cmd.Printf("Result cache:  %d entries (%d valid, %d expired), %d bytes\n",
			stats.TotalEntries, stats.ValidEntries, stats.ExpiredEntries, stats.SizeBytes)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("site catalog not configured")
	}

	catalogService.Invalidate(cacheAccount)
	if cacheAccount == "" {
		cmd.Println("Listing cache cleared.")
	} else {
		cmd.Printf("Listing cache cleared for %s.\n", cacheAccount)
	}

	if cacheResults || cacheExpired {
		if resultCache == nil {
			return errors.New("result cache not configured")
		}
		n, err := resultCache.Purge(cmd.Context(), cacheExpired)
		if err != nil {
			return fmt.Errorf("purging result cache: %w", err)
		}
		cmd.Printf("Purged %d result entr(ies).\n", n)
	}
	return nil
}
