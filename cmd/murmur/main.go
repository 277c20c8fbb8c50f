// Command murmur manages the local storage of the murmur desktop assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/murmur/internal/adapters/driven/config/file"
	"github.com/custodia-labs/murmur/internal/adapters/driven/secrets"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/murmur/internal/adapters/driven/tts/openai"
	"github.com/custodia-labs/murmur/internal/adapters/driving/cli"
	"github.com/custodia-labs/murmur/internal/core/services"
	"github.com/custodia-labs/murmur/internal/logger"
)

// version is set by the build.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap reads the config file, resolves the data directory and wires
// the services over a SQLite store. The schema is prepared by the CLI.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	settings := services.NewSettingsService(configStore, nil)
	runtime := settings.Runtime()
	if opts.Verbose || runtime.Verbose {
		logger.SetVerbose(true)
	}

	dataDir := runtime.DataDir
	if opts.DataDir != "" {
		dataDir = opts.DataDir
	}
	paths := sqlite.NewPathProvider(runtime.Environment, dataDir)
	resolved, err := paths.DataDir()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Data directory: %s", resolved)

	protector, err := secrets.Open(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("opening key file: %w", err)
	}

	store, err := sqlite.NewStore(sqlite.Options{
		Paths:       paths,
		Protector:   protector,
		BusyTimeout: runtime.BusyTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	synth, err := openai.NewSynthesizer(openai.Config{Revealer: protector})
	if err != nil {
		return nil, nil, errors.Join(err, store.Close())
	}

	settings = services.NewSettingsService(configStore, store.Settings())
	cache := store.AudioCache()

	return &cli.Services{
		Startup:       services.NewStartupService(store),
		Settings:      settings,
		Maintenance:   services.NewMaintenanceService(store, cache, store.Conversations()),
		Conversations: services.NewConversationService(store.Conversations()),
		Providers:     services.NewProviderService(store.APIConfigs(), store.TTSConfigs()),
		Speech:        services.NewSpeechService(cache, synth, store.TTSConfigs()),
		Maintainer:    services.NewCacheMaintainer(cache, settings),
	}, store.Close, nil
}
