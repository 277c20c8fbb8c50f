package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure CacheMaintainer implements the interface.
var _ driving.CacheMaintainer = (*CacheMaintainer)(nil)

// RuntimeSource supplies the current runtime configuration.
// SettingsService satisfies it.
type RuntimeSource interface {
	Runtime() domain.RuntimeConfig
}

// CacheMaintainer runs audio cache cleanup in the background.
// A pass runs on start and then every cleanup interval.
type CacheMaintainer struct {
	cache  driven.AudioCache
	source RuntimeSource

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	reloadCh chan struct{}
	wg       sync.WaitGroup
	last     *domain.MaintenanceRun
	now      func() time.Time
}

// NewCacheMaintainer creates a maintainer that reads limits from source.
func NewCacheMaintainer(cache driven.AudioCache, source RuntimeSource) *CacheMaintainer {
	return &CacheMaintainer{
		cache:    cache,
		source:   source,
		reloadCh: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Start begins the maintenance loop. This method blocks until Stop is
// called or ctx is cancelled.
func (m *CacheMaintainer) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.wg.Add(1)
	m.mu.Unlock()

	defer m.wg.Done()
	err := m.run(ctx, stopCh)

	m.mu.Lock()
	if m.stopCh == stopCh {
		m.running = false
	}
	m.mu.Unlock()
	return err
}

// Stop shuts the loop down and waits for an in-flight pass to finish.
func (m *CacheMaintainer) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

// Reload asks the loop to re-read its interval and run a pass.
// Calls made while a reload is pending are coalesced.
func (m *CacheMaintainer) Reload() {
	select {
	case m.reloadCh <- struct{}{}:
	default:
	}
}

// LastRun returns the most recent pass, or nil before the first one.
func (m *CacheMaintainer) LastRun() *domain.MaintenanceRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	run := *m.last
	return &run
}

// RunOnce performs a single cleanup pass with the current limits.
func (m *CacheMaintainer) RunOnce(ctx context.Context) domain.MaintenanceRun {
	limits := m.source.Runtime().Cache
	run := domain.MaintenanceRun{
		StartedAt: m.now(),
		Limits:    limits,
	}

	report, err := m.cache.Cleanup(ctx, limits)
	run.EndedAt = m.now()
	if err != nil {
		run.Error = err.Error()
		logger.Warn("cache maintenance failed: %v", err)
	} else {
		run.Report = report
		if report.Removed() > 0 {
			logger.Info("cache maintenance removed %d entries (%d expired, %d evicted), freed %d bytes",
				report.Removed(), report.ExpiredRemoved, report.EvictedRemoved, report.BytesFreed)
		}
	}

	m.mu.Lock()
	m.last = &run
	m.mu.Unlock()
	return run
}

func (m *CacheMaintainer) run(ctx context.Context, stopCh <-chan struct{}) error {
	m.RunOnce(ctx)

	interval := m.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			m.RunOnce(ctx)
		case <-m.reloadCh:
			if next := m.interval(); next != interval {
				logger.Debug("cache maintenance interval changed to %s", next)
				interval = next
				ticker.Reset(interval)
			}
			m.RunOnce(ctx)
		}
	}
}

func (m *CacheMaintainer) interval() time.Duration {
	interval := m.source.Runtime().CleanupInterval
	if interval <= 0 {
		return domain.DefaultRuntimeConfig().CleanupInterval
	}
	return interval
}
