// Package mirror keeps a local directory in sync with the latest NAQFC
// forecast cycle, fetching each configured product as new 06Z/12Z runs
// appear and notifying downstream consumers.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/archive"
	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher downloads one resolved artifact into a destination directory.
type Fetcher interface {
	Fetch(ctx context.Context, sources naqfc.SourceSet, destDir string) (archive.Result, error)
}

// Notifier publishes artifact notifications. A nil Notifier disables them.
type Notifier interface {
	Notify(ctx context.Context, artifacts []naqfc.Artifact) error
}

// Config selects what the mirror keeps in sync.
type Config struct {
	Domain        naqfc.Domain
	Products      []string
	BiasCorrected bool
	DestDir       string
	PollInterval  time.Duration
}

// Mirror polls for new forecast cycles and fetches their artifacts.
type Mirror struct {
	fetcher  Fetcher
	notifier Notifier
	cfg      Config
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready     atomic.Bool
	lastCycle time.Time
}

// New creates a Mirror. Pass a nil notifier to disable notifications.
func New(fetcher Fetcher, notifier Notifier, cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Mirror {
	return &Mirror{
		fetcher:  fetcher,
		notifier: notifier,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one cycle has been fully
// mirrored, or an error describing why the service is not yet ready.
func (m *Mirror) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("no forecast cycle mirrored yet")
	}
	return nil
}

// Run executes the poll-fetch-notify loop until the context is cancelled.
// A cycle that fails partway is retried on the next tick.
func (m *Mirror) Run(ctx context.Context) error {
	m.logger.Info("mirror started",
		"domain", m.cfg.Domain,
		"products", m.cfg.Products,
		"poll_interval", m.cfg.PollInterval,
	)
	m.metrics.MirrorRunning.Set(1)
	defer m.metrics.MirrorRunning.Set(0)

	for {
		cycle := naqfc.LatestCycleBefore(m.clock.Now())
		if cycle.After(m.lastCycle) {
			if m.processCycle(ctx, cycle) {
				m.lastCycle = cycle
				m.ready.Store(true)
				m.metrics.CyclesCompleted.Inc()
			}
		}

		if !m.wait(ctx) {
			m.logger.Info("mirror stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// processCycle fetches every configured product for the cycle and publishes
// one notification per fetched artifact. Returns true only when all
// products landed, so a partial cycle is retried.
func (m *Mirror) processCycle(ctx context.Context, cycle time.Time) bool {
	m.logger.Info("new forecast cycle", "cycle", cycle, "domain", m.cfg.Domain)

	artifacts := make([]naqfc.Artifact, 0, len(m.cfg.Products))
	complete := true

	for _, product := range m.cfg.Products {
		req := naqfc.Request{
			Cycle:         cycle,
			Product:       product,
			Domain:        m.cfg.Domain,
			BiasCorrected: m.cfg.BiasCorrected,
		}
		sources, err := naqfc.Resolve(req)
		if err != nil {
			// Config-level mistake; retrying will not help, but the
			// remaining products can still land.
			m.logger.Error("resolve failed", "product", product, "error", err)
			m.metrics.FetchErrors.Inc()
			continue
		}

		result, err := m.fetcher.Fetch(ctx, sources, m.cfg.DestDir)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			m.logger.Warn("fetch failed",
				"product", product,
				"cycle", cycle,
				"error", err,
			)
			m.metrics.FetchErrors.Inc()
			complete = false
			continue
		}

		artifacts = append(artifacts, naqfc.Artifact{
			Product:       product,
			Domain:        m.cfg.Domain,
			Cycle:         cycle,
			Version:       naqfc.ResolveVersion(cycle),
			BiasCorrected: m.cfg.BiasCorrected,
			Source:        result.Source,
			Path:          result.Path,
			Bytes:         result.Bytes,
			FetchedAt:     m.clock.Now().UTC(),
		})
	}

	if m.notifier != nil && len(artifacts) > 0 {
		if err := m.notifier.Notify(ctx, artifacts); err != nil {
			m.logger.Error("notify failed", "cycle", cycle, "error", err)
			complete = false
		}
	}

	return complete && len(artifacts) > 0
}

// wait sleeps one poll interval. Returns false if the context is cancelled.
func (m *Mirror) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-m.clock.After(m.cfg.PollInterval):
		return true
	}
}
