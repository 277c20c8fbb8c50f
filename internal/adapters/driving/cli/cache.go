package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the speech audio cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and age",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired entries and enforce size limits",
	Long: `Remove entries not used within the age limit, then evict the least
recently used entries until the count and size limits hold.

Limits default to the configured values; flags override them for this run.`,
	Args: cobra.NoArgs,
	RunE: runCacheCleanup,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached entry",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

// Flags for cache commands.
var (
	cacheMaxAgeDays int
	cacheMaxCount   int
	cacheMaxSizeMB  int
	cacheClearYes   bool
)

func init() {
	cacheCleanupCmd.Flags().IntVar(&cacheMaxAgeDays, "max-age-days", 0, "Maximum entry age in days")
	cacheCleanupCmd.Flags().IntVar(&cacheMaxCount, "max-count", 0, "Maximum number of entries")
	cacheCleanupCmd.Flags().IntVar(&cacheMaxSizeMB, "max-size-mb", 0, "Maximum total size in megabytes")
	cacheClearCmd.Flags().BoolVarP(&cacheClearYes, "yes", "y", false, "Skip confirmation")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	stats, err := maintenanceService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}
	printCacheStats(cmd, stats.Cache)
	return nil
}

func runCacheCleanup(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	limits := cleanupLimits(cmd)
	report, err := maintenanceService.CleanupCache(cmd.Context(), limits)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}

	cmd.Printf("Removed %d entries (%d expired, %d evicted), freed %s\n",
		report.Removed(), report.ExpiredRemoved, report.EvictedRemoved, formatBytes(report.BytesFreed))
	cmd.Printf("Remaining: %d entries, %s\n", report.Remaining, formatBytes(report.RemainingBytes))
	return nil
}

// cleanupLimits starts from the configured limits and applies any flags
// set on the command line.
func cleanupLimits(cmd *cobra.Command) domain.CacheLimits {
	limits := domain.DefaultCacheLimits()
	if settingsService != nil {
		limits = settingsService.Runtime().Cache
	}
	if cmd.Flags().Changed("max-age-days") {
		limits.MaxAgeDays = cacheMaxAgeDays
	}
	if cmd.Flags().Changed("max-count") {
		limits.MaxCount = cacheMaxCount
	}
	if cmd.Flags().Changed("max-size-mb") {
		limits.MaxSizeMB = cacheMaxSizeMB
	}
	return limits
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	if !cacheClearYes {
		ok, err := confirm(cmd, "Remove all cached audio?")
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	n, err := maintenanceService.ClearCache(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Printf("Removed %d entries\n", n)
	return nil
}

func printCacheStats(cmd *cobra.Command, stats domain.CacheStats) {
	cmd.Println("Audio cache")
	cmd.Println("===========")
	cmd.Printf("  Entries: %d\n", stats.Entries)
	cmd.Printf("  Size:    %s\n", formatBytes(stats.TotalBytes))
	if stats.Entries > 0 {
		cmd.Printf("  Oldest:  %s (%s)\n", formatTime(stats.Oldest), formatAge(stats.Oldest))
		cmd.Printf("  Newest:  %s (%s)\n", formatTime(stats.Newest), formatAge(stats.Newest))
	}
}
