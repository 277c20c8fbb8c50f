package cli

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the database",
	Long: `Create the database if it does not exist, add any columns missing from
older versions and protect API keys stored in plain text.

Every other command does this implicitly; init reports what changed.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	report := startupReport
	if report == nil {
		if startupService == nil {
			return errNotConfigured("startup")
		}
		r, err := startupService.Start(cmd.Context())
		if err != nil {
			return err
		}
		report = &r
	}

	cmd.Println("Database ready")
	cmd.Println()

	if len(report.Migration.Added) == 0 {
		cmd.Println("  Schema: up to date")
	} else {
		cmd.Printf("  Schema: added %d column(s)\n", len(report.Migration.Added))
		for _, col := range report.Migration.Added {
			cmd.Printf("    + %s\n", col)
		}
	}
	for _, failure := range report.Migration.Failed {
		cmd.Printf("    ! %s.%s: %v\n", failure.Table, failure.Column, failure.Err)
	}

	if report.SecretsErr != nil {
		cmd.Printf("  Secrets: not checked (%v)\n", report.SecretsErr)
	} else {
		cmd.Printf("  Secrets: %d checked, %d protected, %d failed\n",
			report.Secrets.Scanned, report.Secrets.Protected, report.Secrets.Failed)
	}
	return nil
}
