package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change window preferences and the runtime configuration.

Window preferences live in the database. Runtime values such as the cache
limits live in the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a window preference",
	Long: `Change a window preference stored in the database.

Keys:
  topmost      - Keep the window above other windows
  taskbar      - Show the window in the taskbar
  animations   - Enable UI animations
  dark-theme   - Use the dark colour scheme`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Set the audio cache limits",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCache,
}

// Flags for settings cache.
var (
	settingsMaxAgeDays int
	settingsMaxCount   int
	settingsMaxSizeMB  int
)

func init() {
	settingsCacheCmd.Flags().IntVar(&settingsMaxAgeDays, "max-age-days", 0, "Maximum entry age in days")
	settingsCacheCmd.Flags().IntVar(&settingsMaxCount, "max-count", 0, "Maximum number of entries")
	settingsCacheCmd.Flags().IntVar(&settingsMaxSizeMB, "max-size-mb", 0, "Maximum total size in megabytes")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsCacheCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	runtime := settingsService.Runtime()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Window]")
	cmd.Printf("  Topmost:     %s\n", yesNo(settings.Topmost))
	cmd.Printf("  Taskbar:     %s\n", yesNo(settings.ShowInTaskbar))
	cmd.Printf("  Animations:  %s\n", yesNo(settings.AnimationsEnabled))
	cmd.Printf("  Dark theme:  %s\n", yesNo(settings.DarkTheme))
	cmd.Printf("  Updated:     %s\n", formatTime(settings.UpdatedAt))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Environment:  %s\n", runtime.Environment.Description())
	if runtime.DataDir != "" {
		cmd.Printf("  Data dir:     %s\n", runtime.DataDir)
	}
	cmd.Printf("  Busy timeout: %s\n", runtime.BusyTimeout)
	cmd.Println()

	cmd.Println("[Audio cache]")
	cmd.Printf("  Max age:          %d days\n", runtime.Cache.MaxAgeDays)
	cmd.Printf("  Max entries:      %d\n", runtime.Cache.MaxCount)
	cmd.Printf("  Max size:         %d MB\n", runtime.Cache.MaxSizeMB)
	cmd.Printf("  Cleanup interval: %s\n", runtime.CleanupInterval)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	value, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid value %q: expected true or false", args[1])
	}

	settings, err := settingsService.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(settings, args[0], value); err != nil {
		return err
	}
	if err := settingsService.Save(cmd.Context(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s set to %s\n", args[0], yesNo(value))
	return nil
}

func applySetting(settings *domain.AppSettings, key string, value bool) error {
	switch strings.ToLower(key) {
	case "topmost":
		settings.Topmost = value
	case "taskbar":
		settings.ShowInTaskbar = value
	case "animations":
		settings.AnimationsEnabled = value
	case "dark-theme":
		settings.DarkTheme = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func runSettingsCache(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	limits := settingsService.Runtime().Cache
	if cmd.Flags().Changed("max-age-days") {
		limits.MaxAgeDays = settingsMaxAgeDays
	}
	if cmd.Flags().Changed("max-count") {
		limits.MaxCount = settingsMaxCount
	}
	if cmd.Flags().Changed("max-size-mb") {
		limits.MaxSizeMB = settingsMaxSizeMB
	}

	if err := settingsService.SetCacheLimits(limits); err != nil {
		return fmt.Errorf("failed to save cache limits: %w", err)
	}
	cmd.Printf("Cache limits: %d days, %d entries, %d MB\n", limits.MaxAgeDays, limits.MaxCount, limits.MaxSizeMB)
	return nil
}
