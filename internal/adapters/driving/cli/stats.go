package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage diagnostics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	stats, err := maintenanceService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println("Storage")
	cmd.Println("=======")
	cmd.Printf("  Database:      %s\n", stats.Path)
	cmd.Printf("  Connections:   %d in use, %d available, %d open (max %d)\n",
		stats.InUse, stats.Available, stats.Total, stats.Max)
	cmd.Printf("  Conversations: %d\n", stats.Conversations)
	cmd.Println()

	printCacheStats(cmd, stats.Cache)
	return nil
}
