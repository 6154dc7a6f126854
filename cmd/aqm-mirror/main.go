// Command aqm-mirror keeps a local directory in sync with the latest NAQFC
// forecast cycle and optionally announces fetched artifacts on a Kafka
// topic. Operational endpoints (/healthz, /readyz, /metrics) are served on
// HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/naqfc-fetch/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/naqfc-fetch/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/naqfc-fetch/internal/adapter/kafka"
	"github.com/couchcryptid/naqfc-fetch/internal/config"
	"github.com/couchcryptid/naqfc-fetch/internal/mirror"
	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/couchcryptid/naqfc-fetch/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	domain := naqfc.Domain(strings.ToLower(cfg.MirrorDomain))
	if _, err := naqfc.GridCode(domain); err != nil {
		logger.Error("invalid MIRROR_DOMAIN", "domain", cfg.MirrorDomain, "error", err)
		os.Exit(1)
	}
	for _, product := range cfg.MirrorProducts {
		if !naqfc.ProductAdvertised(domain, product) {
			logger.Warn("product not advertised for domain; fetches may 404",
				"product", product, "domain", domain)
		}
	}

	// Notifications are feature-flagged via NOTIFY_ENABLED / KAFKA_BROKERS.
	var notifier mirror.Notifier
	if cfg.NotifyEnabled {
		n := kafkaadapter.NewNotifier(cfg, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("artifact notifications enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("artifact notifications disabled")
	}

	retriever := archive.NewRetriever(cfg.DownloadTimeout, cfg.ProbeCacheSize, metrics, logger)

	m := mirror.New(retriever, notifier, mirror.Config{
		Domain:        domain,
		Products:      cfg.MirrorProducts,
		BiasCorrected: cfg.BiasCorrected,
		DestDir:       cfg.DestDir,
		PollInterval:  cfg.PollInterval,
	}, clockwork.NewRealClock(), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := m.Run(ctx); err != nil {
			logger.Error("mirror error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
