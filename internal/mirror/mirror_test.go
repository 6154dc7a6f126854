package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/archive"
	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []naqfc.SourceSet
	fail  map[string]error // keyed by LocalFilename
}

func (f *fakeFetcher) Fetch(_ context.Context, sources naqfc.SourceSet, destDir string) (archive.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sources)
	if err, ok := f.fail[sources.LocalFilename]; ok {
		return archive.Result{}, err
	}
	return archive.Result{
		Path:   destDir + "/" + sources.LocalFilename,
		Source: "aws",
		Bytes:  42,
	}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu      sync.Mutex
	batches [][]naqfc.Artifact
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, artifacts []naqfc.Artifact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, artifacts)
	return n.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Domain:        naqfc.DomainCONUS,
		Products:      []string{"max_8hr_o3", "ave_1hr_pm25"},
		BiasCorrected: true,
		DestDir:       "data",
		PollInterval:  time.Minute,
	}
}

func newTestMirror(f Fetcher, n Notifier, clock clockwork.Clock) *Mirror {
	return New(f, n, testConfig(), clock, discardLogger(), observability.NewMetricsForTesting())
}

func TestProcessCycle_FetchesAllProductsAndNotifies(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC))
	fetcher := &fakeFetcher{}
	notifier := &fakeNotifier{}
	m := newTestMirror(fetcher, notifier, clock)

	cycle := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	require.True(t, m.processCycle(context.Background(), cycle))

	assert.Equal(t, 2, fetcher.callCount())
	assert.Contains(t, fetcher.calls[0].AWS, "aqm.t12z.max_8hr_o3_bc")
	assert.Contains(t, fetcher.calls[1].AWS, "aqm.t12z.ave_1hr_pm25_bc")

	require.Len(t, notifier.batches, 1)
	batch := notifier.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "max_8hr_o3", batch[0].Product)
	assert.Equal(t, naqfc.AQMv6, batch[0].Version)
	assert.Equal(t, cycle, batch[0].Cycle)
	assert.Equal(t, "aws", batch[0].Source)
	assert.Equal(t, int64(42), batch[0].Bytes)
	assert.Equal(t, clock.Now().UTC(), batch[0].FetchedAt)
}

func TestProcessCycle_PartialFailureIsIncomplete(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC))
	fetcher := &fakeFetcher{fail: map[string]error{
		"aqm.t12z.ave_1hr_pm25_bc.20240426.227.grib2": errors.New("nomads down"),
	}}
	notifier := &fakeNotifier{}
	m := newTestMirror(fetcher, notifier, clock)

	cycle := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	assert.False(t, m.processCycle(context.Background(), cycle))

	// The artifact that did land is still announced.
	require.Len(t, notifier.batches, 1)
	require.Len(t, notifier.batches[0], 1)
	assert.Equal(t, "max_8hr_o3", notifier.batches[0][0].Product)
}

func TestProcessCycle_NotifyFailureIsIncomplete(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC))
	m := newTestMirror(&fakeFetcher{}, &fakeNotifier{err: errors.New("broker unreachable")}, clock)

	cycle := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	assert.False(t, m.processCycle(context.Background(), cycle))
}

func TestProcessCycle_NilNotifier(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC))
	m := newTestMirror(&fakeFetcher{}, nil, clock)

	cycle := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	assert.True(t, m.processCycle(context.Background(), cycle))
}

func TestCheckReadiness(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC))
	m := newTestMirror(&fakeFetcher{}, nil, clock)

	require.Error(t, m.CheckReadiness(context.Background()))

	m.ready.Store(true)
	assert.NoError(t, m.CheckReadiness(context.Background()))
}

func TestRun_FetchesLatestCycleThenStops(t *testing.T) {
	fetcher := &fakeFetcher{}
	notifier := &fakeNotifier{}
	cfg := testConfig()
	cfg.PollInterval = 5 * time.Millisecond
	m := New(fetcher, notifier, cfg, clockwork.NewRealClock(), discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// The first tick mirrors the current latest cycle exactly once.
	require.Eventually(t, func() bool { return m.CheckReadiness(ctx) == nil }, time.Second, time.Millisecond)
	assert.Equal(t, 2, fetcher.callCount())

	// Subsequent ticks see no newer cycle and fetch nothing.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 2, fetcher.callCount())

	cancel()
	require.NoError(t, <-done)
}

func TestRun_RetriesIncompleteCycle(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]error{}}
	// Fail everything initially so the cycle stays incomplete.
	now := naqfc.LatestCycleBefore(time.Now())
	date := now.Format("20060102")
	hour := now.Format("15")
	fetcher.fail["aqm.t"+hour+"z.max_8hr_o3_bc."+date+".227.grib2"] = errors.New("transient")

	cfg := testConfig()
	cfg.PollInterval = 5 * time.Millisecond
	m := New(fetcher, nil, cfg, clockwork.NewRealClock(), discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Incomplete cycles are reattempted on following ticks.
	require.Eventually(t, func() bool { return fetcher.callCount() >= 4 }, time.Second, time.Millisecond)
	require.Error(t, m.CheckReadiness(ctx))

	// Let the failing product recover; the cycle then completes.
	fetcher.mu.Lock()
	delete(fetcher.fail, "aqm.t"+hour+"z.max_8hr_o3_bc."+date+".227.grib2")
	fetcher.mu.Unlock()

	require.Eventually(t, func() bool { return m.CheckReadiness(ctx) == nil }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
