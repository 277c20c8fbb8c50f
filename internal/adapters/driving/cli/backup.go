package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [path]",
	Short: "Copy the database to a file",
	Long: `Write a consistent copy of the database to path. Pending write-ahead
log pages are folded into the copy first.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [path]",
	Short: "Replace the database with a backup",
	Long: `Replace the current database with the SQLite file at path.
All data written since that backup is lost.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

// restoreYes skips the restore confirmation.
var restoreYes bool

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Skip confirmation")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	if err := maintenanceService.Backup(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	cmd.Printf("Backup written to %s\n", args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if maintenanceService == nil {
		return errNotConfigured("maintenance")
	}

	if !restoreYes {
		ok, err := confirm(cmd, fmt.Sprintf("Replace the current database with %s?", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := maintenanceService.Restore(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	cmd.Printf("Database restored from %s\n", args[0])

	// Older backups may predate columns the current schema expects.
	if startupService != nil {
		report, err := startupService.Start(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to upgrade restored database: %w", err)
		}
		if report.Migration.Changed() {
			cmd.Printf("Upgraded schema: added %d column(s)\n", len(report.Migration.Added))
		}
	}
	return nil
}
