package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/logger"
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run cache cleanup in the foreground",
	Long: `Run an audio cache cleanup pass now and then on every cleanup interval
until interrupted. Edits to the config file take effect without a restart.`,
	Args: cobra.NoArgs,
	RunE: runMaintain,
}

func init() {
	rootCmd.AddCommand(maintainCmd)
}

func runMaintain(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if cacheMaintainer == nil {
		return errNotConfigured("cache maintenance")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if settingsService != nil {
		go func() {
			err := settingsService.Watch(ctx, func() {
				logger.Info("Configuration changed, reloading cache limits")
				cacheMaintainer.Reload()
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watching configuration: %v", err)
			}
		}()
	}

	cmd.Println("Cache maintenance running. Press Ctrl+C to stop.")
	err := cacheMaintainer.Start(ctx)
	if last := cacheMaintainer.LastRun(); last != nil {
		if last.Success() {
			cmd.Printf("Last pass at %s removed %d entries\n", formatTime(last.EndedAt), last.Report.Removed())
		} else {
			cmd.Printf("Last pass at %s failed: %s\n", formatTime(last.EndedAt), last.Error)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("cache maintenance stopped: %w", err)
	}
	return nil
}
