// Package cli provides the murmur command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// version is set at build time or by SetVersion.
var version = "dev"

// Global flags.
var (
	dataDirFlag    string
	configPathFlag string
	verboseFlag    bool
)

// Services bundles the core services the commands drive.
type Services struct {
	Startup       driving.StartupService
	Settings      driving.SettingsService
	Maintenance   driving.MaintenanceService
	Conversations driving.ConversationService
	Providers     driving.ProviderService
	Speech        driving.SpeechService
	Maintainer    driving.CacheMaintainer
}

// Options carries the global flags to a Bootstrap.
type Options struct {
	DataDir    string
	ConfigPath string
	Verbose    bool
}

// Bootstrap opens storage and builds the services for a command run.
// The returned function releases what Bootstrap opened.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	bootstrap     Bootstrap
	closeServices func() error
	servicesReady bool
	startupReport *domain.StartupReport
)

// Service references used by commands. Nil means not configured.
var (
	startupService      driving.StartupService
	settingsService     driving.SettingsService
	maintenanceService  driving.MaintenanceService
	conversationService driving.ConversationService
	providerService     driving.ProviderService
	speechService       driving.SpeechService
	cacheMaintainer     driving.CacheMaintainer
)

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Local storage for the murmur desktop assistant",
	Long: `murmur manages the assistant's local database: settings, provider
configurations, conversations and the synthesized speech cache.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding the database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to the config directory")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects ready services and skips Bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	startupService = s.Startup
	settingsService = s.Settings
	maintenanceService = s.Maintenance
	conversationService = s.Conversations
	providerService = s.Providers
	speechService = s.Speech
	cacheMaintainer = s.Maintainer
	servicesReady = s.Startup != nil || s.Settings != nil || s.Maintenance != nil ||
		s.Conversations != nil || s.Providers != nil || s.Speech != nil || s.Maintainer != nil
	startupReport = nil
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer releaseServices()

	return rootCmd.ExecuteContext(ctx)
}

// ensureServices bootstraps storage and runs the startup sequence once
// per process. Without a Bootstrap it leaves injected services as they are.
func ensureServices(cmd *cobra.Command) error {
	if servicesReady || bootstrap == nil {
		return nil
	}

	svc, closer, err := bootstrap(cmd.Context(), Options{
		DataDir:    dataDirFlag,
		ConfigPath: configPathFlag,
		Verbose:    verboseFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	SetServices(svc)
	closeServices = closer

	if startupService == nil {
		return nil
	}
	report, err := startupService.Start(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to prepare database: %w", err)
	}
	startupReport = &report
	return nil
}

func releaseServices() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("closing storage: %v", err)
	}
	closeServices = nil
}

// errNotConfigured reports a missing service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
