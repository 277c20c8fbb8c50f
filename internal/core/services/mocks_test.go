package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockDatabase implements driven.Database for testing.
type mockDatabase struct {
	migration  domain.MigrationReport
	initErr    error
	secrets    domain.SecretReport
	secretsErr error
	backupErr  error
	restoreErr error
	stats      driven.PoolStats

	initCalls   int
	secretCalls int
	backupPath  string
	restorePath string
}

func (m *mockDatabase) Initialize(_ context.Context) (domain.MigrationReport, error) {
	m.initCalls++
	return m.migration, m.initErr
}

func (m *mockDatabase) MigrateSecrets(_ context.Context) (domain.SecretReport, error) {
	m.secretCalls++
	return m.secrets, m.secretsErr
}

func (m *mockDatabase) Backup(_ context.Context, path string) error {
	m.backupPath = path
	return m.backupErr
}

func (m *mockDatabase) Restore(_ context.Context, path string) error {
	m.restorePath = path
	return m.restoreErr
}

func (m *mockDatabase) PoolStats() driven.PoolStats { return m.stats }

func (m *mockDatabase) Path() string { return "/tmp/murmur.db" }

// mockConversationStore implements driven.ConversationStore for testing.
type mockConversationStore struct {
	mu       sync.Mutex
	convs    map[int64]*domain.Conversation
	messages map[int64][]domain.Message
	nextID   int64
	listErr  error
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{
		convs:    make(map[int64]*domain.Conversation),
		messages: make(map[int64][]domain.Message),
	}
}

func (m *mockConversationStore) Create(_ context.Context, conv *domain.Conversation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	conv.ID = m.nextID
	now := time.Now()
	conv.CreatedAt, conv.UpdatedAt = now, now
	c := *conv
	m.convs[c.ID] = &c
	return c.ID, nil
}

func (m *mockConversationStore) Get(_ context.Context, id int64) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	cp.MessageCount = len(m.messages[id])
	return &cp, nil
}

func (m *mockConversationStore) List(_ context.Context, _ domain.ConversationOrder) ([]domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Conversation, 0, len(m.convs))
	for _, c := range m.convs {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockConversationStore) Rename(_ context.Context, id int64, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Title = title
	return nil
}

func (m *mockConversationStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.convs, id)
	delete(m.messages, id)
	return nil
}

func (m *mockConversationStore) SaveMessage(_ context.Context, msg *domain.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[msg.ConversationID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	c.UpdatedAt = msg.CreatedAt
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	return msg.ID, nil
}

func (m *mockConversationStore) ListMessages(_ context.Context, conversationID int64) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.messages[conversationID]...), nil
}

func (m *mockConversationStore) CountMessages(_ context.Context, conversationID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[conversationID]), nil
}

// mockSettingsStore implements driven.SettingsStore for testing.
type mockSettingsStore struct {
	settings *domain.AppSettings
	saveErr  error
}

func (m *mockSettingsStore) Get(_ context.Context) (*domain.AppSettings, error) {
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	s := *m.settings
	return &s, nil
}

func (m *mockSettingsStore) Save(_ context.Context, settings *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	s := *settings
	m.settings = &s
	return nil
}

// mockSynthesizer implements driven.Synthesizer for testing.
type mockSynthesizer struct {
	calls atomic.Int32
	audio []byte
	err   error

	// gate, when set, blocks Synthesize until closed.
	gate chan struct{}
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, _ domain.TTSConfiguration) ([]byte, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

// mockAudioCache implements driven.AudioCache with failure injection.
type mockAudioCache struct {
	driven.AudioCache

	getErr     error
	putErr     error
	cleanupErr error
	cleanups   atomic.Int32
}

func (m *mockAudioCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.AudioCache.Get(ctx, key)
}

func (m *mockAudioCache) Put(ctx context.Context, key string, audio []byte, cfg domain.TTSCacheConfig) error {
	if m.putErr != nil {
		return m.putErr
	}
	return m.AudioCache.Put(ctx, key, audio, cfg)
}

func (m *mockAudioCache) Cleanup(ctx context.Context, limits domain.CacheLimits) (domain.CleanupReport, error) {
	m.cleanups.Add(1)
	if m.cleanupErr != nil {
		return domain.CleanupReport{}, m.cleanupErr
	}
	return m.AudioCache.Cleanup(ctx, limits)
}

// staticRuntime implements RuntimeSource for testing.
type staticRuntime struct {
	mu  sync.Mutex
	cfg domain.RuntimeConfig
}

func (s *staticRuntime) Runtime() domain.RuntimeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *staticRuntime) set(cfg domain.RuntimeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// mockAPIConfigStore implements driven.APIConfigStore for testing.
type mockAPIConfigStore struct {
	mu      sync.Mutex
	configs map[int64]domain.APIConfiguration
	nextID  int64
}

func newMockAPIConfigStore() *mockAPIConfigStore {
	return &mockAPIConfigStore{configs: make(map[int64]domain.APIConfiguration)}
}

func (m *mockAPIConfigStore) Save(_ context.Context, cfg *domain.APIConfiguration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.ID == 0 {
		m.nextID++
		cfg.ID = m.nextID
	} else if _, ok := m.configs[cfg.ID]; !ok {
		return 0, domain.ErrNotFound
	}
	m.configs[cfg.ID] = *cfg
	return cfg.ID, nil
}

func (m *mockAPIConfigStore) Get(_ context.Context, id int64) (*domain.APIConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cfg, nil
}

func (m *mockAPIConfigStore) List(_ context.Context) ([]domain.APIConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.APIConfiguration, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAPIConfigStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.configs, id)
	return nil
}

// mockTTSConfigStore implements driven.TTSConfigStore for testing.
type mockTTSConfigStore struct {
	mu      sync.Mutex
	configs map[int64]domain.TTSConfiguration
	nextID  int64
}

func newMockTTSConfigStore() *mockTTSConfigStore {
	return &mockTTSConfigStore{configs: make(map[int64]domain.TTSConfiguration)}
}

func (m *mockTTSConfigStore) Save(_ context.Context, cfg *domain.TTSConfiguration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.ID == 0 {
		m.nextID++
		cfg.ID = m.nextID
	} else if _, ok := m.configs[cfg.ID]; !ok {
		return 0, domain.ErrNotFound
	}
	if cfg.IsActive {
		m.deactivateOthers(cfg.ID)
	}
	m.configs[cfg.ID] = *cfg
	return cfg.ID, nil
}

func (m *mockTTSConfigStore) Get(_ context.Context, id int64) (*domain.TTSConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cfg, nil
}

func (m *mockTTSConfigStore) List(_ context.Context) ([]domain.TTSConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TTSConfiguration, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTTSConfigStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.configs, id)
	return nil
}

func (m *mockTTSConfigStore) GetActive(_ context.Context) (*domain.TTSConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cfg := range m.configs {
		if cfg.IsActive {
			return &cfg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTTSConfigStore) SetActive(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.deactivateOthers(id)
	cfg.IsActive = true
	m.configs[id] = cfg
	return nil
}

func (m *mockTTSConfigStore) deactivateOthers(id int64) {
	for otherID, cfg := range m.configs {
		if otherID != id && cfg.IsActive {
			cfg.IsActive = false
			m.configs[otherID] = cfg
		}
	}
}
