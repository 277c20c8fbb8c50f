package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/adapters/driven/secrets"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/services"
	"github.com/custodia-labs/murmur/internal/logger"
)

// fakeSynthesizer returns fixed audio and counts calls.
type fakeSynthesizer struct {
	calls int
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string, _ domain.TTSConfiguration) ([]byte, error) {
	f.calls++
	return []byte("audio:" + text), nil
}

// testEnv is a fully wired command environment backed by a temporary database.
type testEnv struct {
	store  *sqlite.Store
	config *memory.ConfigStore
	synth  *fakeSynthesizer
}

// setupTestCLI wires real services over a temporary SQLite database and
// injects them into the command tree.
func setupTestCLI(t *testing.T) *testEnv {
	t.Helper()

	logger.SetOutput(io.Discard)

	protector, err := secrets.New(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	store, err := sqlite.NewStore(sqlite.Options{
		Paths:     sqlite.NewPathProvider(domain.EnvironmentProduction, t.TempDir()),
		Protector: protector,
	})
	require.NoError(t, err)

	config := memory.NewConfigStore()
	settings := services.NewSettingsService(config, store.Settings())
	startup := services.NewStartupService(store)
	_, err = startup.Start(context.Background())
	require.NoError(t, err)

	synth := &fakeSynthesizer{}
	SetServices(&Services{
		Startup:       startup,
		Settings:      settings,
		Maintenance:   services.NewMaintenanceService(store, store.AudioCache(), store.Conversations()),
		Conversations: services.NewConversationService(store.Conversations()),
		Providers:     services.NewProviderService(store.APIConfigs(), store.TTSConfigs()),
		Speech:        services.NewSpeechService(store.AudioCache(), synth, store.TTSConfigs()),
		Maintainer:    services.NewCacheMaintainer(store.AudioCache(), settings),
	})

	origInteractive := isInteractive
	isInteractive = func() bool { return false }

	t.Cleanup(func() {
		isInteractive = origInteractive
		SetServices(nil)
		assert.NoError(t, store.Close())
		logger.SetOutput(os.Stderr)
	})

	return &testEnv{store: store, config: config, synth: synth}
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag in the tree to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
