// Package archive downloads resolved forecast artifacts from the NAQFC
// archives. AWS is tried first because it keeps the full historical
// archive; NOMADS only serves the current operational run.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
)

// ErrNotAvailable is returned when no archive has the requested artifact.
var ErrNotAvailable = errors.New("artifact not available from any source")

const maxDownloadAttempts = 3

// Result describes a completed download.
type Result struct {
	Path   string
	Source string // "aws" or "nomads"
	Bytes  int64
}

// Retriever fetches grib2 artifacts over HTTP with an existence-probe
// cache and per-source retry.
type Retriever struct {
	httpClient *http.Client
	probes     *probeCache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewRetriever creates a Retriever. timeout bounds a single download
// request; probeCacheSize bounds the positive-probe LRU.
func NewRetriever(timeout time.Duration, probeCacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Retriever {
	return &Retriever{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		probes:  newProbeCache(probeCacheSize),
		metrics: metrics,
		logger:  logger,
	}
}

type candidate struct {
	source string
	url    string
}

// Fetch downloads the artifact described by sources into destDir, trying
// AWS then NOMADS. The file is written to a temp path and renamed into
// place, so a partial download never shadows a complete one.
func (r *Retriever) Fetch(ctx context.Context, sources naqfc.SourceSet, destDir string) (Result, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create dest dir: %w", err)
	}
	dest := filepath.Join(destDir, sources.LocalFilename)

	candidates := []candidate{
		{source: "aws", url: sources.AWS},
		{source: "nomads", url: sources.NOMADS},
	}

	for _, c := range candidates {
		found, err := r.probe(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, err
			}
			r.logger.Warn("probe failed", "source", c.source, "url", c.url, "error", err)
			continue
		}
		if !found {
			r.logger.Debug("artifact not present", "source", c.source, "url", c.url)
			continue
		}

		n, err := r.download(ctx, c, dest)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, err
			}
			r.metrics.Downloads.WithLabelValues(c.source, "error").Inc()
			r.logger.Warn("download failed", "source", c.source, "url", c.url, "error", err)
			continue
		}

		r.metrics.Downloads.WithLabelValues(c.source, "success").Inc()
		r.metrics.DownloadBytes.Add(float64(n))
		r.logger.Info("artifact fetched", "source", c.source, "path", dest, "bytes", n)
		return Result{Path: dest, Source: c.source, Bytes: n}, nil
	}

	return Result{}, fmt.Errorf("%w: %s", ErrNotAvailable, sources.LocalFilename)
}

// probe checks whether the URL exists, consulting the positive-result
// cache first. Only found results are cached: a miss on NOMADS can turn
// into a hit once the operational run lands.
func (r *Retriever) probe(ctx context.Context, c candidate) (bool, error) {
	if r.probes.hasPositive(c.url) {
		r.metrics.ProbeCache.WithLabelValues("hit").Inc()
		return true, nil
	}
	r.metrics.ProbeCache.WithLabelValues("miss").Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("create probe request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.metrics.Probes.WithLabelValues(c.source, "error").Inc()
		return false, fmt.Errorf("probe %s: %w", c.source, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		r.metrics.Probes.WithLabelValues(c.source, "found").Inc()
		r.probes.markPositive(c.url)
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		// S3 answers 403 for missing keys on buckets without ListBucket.
		r.metrics.Probes.WithLabelValues(c.source, "missing").Inc()
		return false, nil
	default:
		r.metrics.Probes.WithLabelValues(c.source, "error").Inc()
		return false, fmt.Errorf("probe %s: status %d", c.source, resp.StatusCode)
	}
}

// download GETs the URL into dest, retrying transient failures with
// exponential backoff.
func (r *Retriever) download(ctx context.Context, c candidate, dest string) (int64, error) {
	backoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxDownloadAttempts; attempt++ {
		start := time.Now()
		n, err := r.downloadOnce(ctx, c.url, dest)
		if err == nil {
			r.metrics.DownloadDuration.WithLabelValues(c.source).Observe(time.Since(start).Seconds())
			return n, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return 0, err
		}
		r.logger.Warn("download attempt failed",
			"source", c.source,
			"attempt", attempt,
			"error", err,
		)
		if !sleepWithContext(ctx, backoff) {
			return 0, ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}

	return 0, fmt.Errorf("download after %d attempts: %w", maxDownloadAttempts, lastErr)
}

func (r *Retriever) downloadOnce(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("copy body: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename into place: %w", err)
	}

	return n, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
